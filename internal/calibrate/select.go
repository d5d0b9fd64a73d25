package calibrate

import (
	"errors"
	"fmt"
	"log"

	"joybind/internal/window"
)

// ErrNoWindow is returned when the operator stops before choosing a window.
var ErrNoWindow = errors.New("no window selected")

// PreviewFunc shows the current contents of a window.
type PreviewFunc func(h window.Handle) error

// SelectWindow asks the operator to hover the target window, optionally
// previews it, and returns it once confirmed. Lookup and preview failures are
// logged and the operator is asked again.
func SelectWindow(p *Prompter, loc *window.Locator, preview PreviewFunc) (window.Info, error) {
	for {
		more, err := p.Confirm("position cursor over window")
		if err != nil {
			return window.Info{}, err
		}
		if !more {
			return window.Info{}, ErrNoWindow
		}
		set, err := loc.FromCursor()
		if err != nil {
			log.Printf("Calibrate: window under cursor: %v", err)
			continue
		}
		for _, h := range set.Sorted() {
			info, err := loc.Describe(h)
			if err != nil {
				log.Printf("Calibrate: describe %s: %v", h, err)
				continue
			}
			for preview != nil {
				show, err := p.Confirm("show window?")
				if err != nil {
					return window.Info{}, err
				}
				if !show {
					break
				}
				if err := preview(h); err != nil {
					log.Printf("Calibrate: preview %s: %v", h, err)
				}
			}
			ok, err := p.Confirm(fmt.Sprintf("choose window %s?", info))
			if err != nil {
				return window.Info{}, err
			}
			if ok {
				return info, nil
			}
		}
	}
}
