// Package tray provides the system tray front end using getlantern/systray.
package tray

import (
	"encoding/binary"
	"sync"

	"github.com/getlantern/systray"
)

// noParent marks a top-level menu item.
const noParent = -1

// MenuItem represents a menu item
type MenuItem struct {
	ID       int
	Title    string
	Tooltip  string
	Parent   int
	Hidden   bool
	Callback func()
	item     *systray.MenuItem
}

// Entry describes one item of a submenu set with SetSubMenu.
type Entry struct {
	Title    string
	Tooltip  string
	Callback func()
}

// Tray manages the system tray icon and menu
type Tray struct {
	title   string
	tooltip string
	onReady func()
	quitCh  chan struct{}

	mu      sync.Mutex
	items   []*MenuItem
	running bool
}

// New creates a new system tray. onReady runs once the menu exists.
func New(title, tooltip string, onReady func()) *Tray {
	return &Tray{
		title:   title,
		tooltip: tooltip,
		onReady: onReady,
		quitCh:  make(chan struct{}),
	}
}

// AddMenuItem adds a top-level menu item and returns its id
func (t *Tray) AddMenuItem(title, tooltip string, callback func()) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.add(&MenuItem{Title: title, Tooltip: tooltip, Parent: noParent, Callback: callback})
}

// AddSubMenuItem adds an item below the item with id parent
func (t *Tray) AddSubMenuItem(parent int, title, tooltip string, callback func()) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.add(&MenuItem{Title: title, Tooltip: tooltip, Parent: parent, Callback: callback})
}

// add appends mi, creating it in the live menu when the tray is running. t.mu must be held.
func (t *Tray) add(mi *MenuItem) int {
	mi.ID = len(t.items)
	t.items = append(t.items, mi)
	if t.running {
		t.show(mi)
	}
	return mi.ID
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, nil) // nil indicates separator
}

// Items returns the menu entries in order; separators are nil.
func (t *Tray) Items() []*MenuItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*MenuItem(nil), t.items...)
}

// SetItemTitle changes the label of a menu item once the tray is running
func (t *Tray) SetItemTitle(id int, title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id < 0 || id >= len(t.items) || t.items[id] == nil {
		return
	}
	t.items[id].Title = title
	if t.items[id].item != nil {
		t.items[id].item.SetTitle(title)
	}
}

// SetSubMenu makes entries the visible children of parent, in order. Existing
// children are relabelled, surplus ones hidden, and missing ones added.
func (t *Tray) SetSubMenu(parent int, entries []Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var children []*MenuItem
	for _, mi := range t.items {
		if mi != nil && mi.Parent == parent {
			children = append(children, mi)
		}
	}
	for i, mi := range children {
		if i >= len(entries) {
			mi.Hidden = true
			mi.Callback = nil
			if mi.item != nil {
				mi.item.Hide()
			}
			continue
		}
		e := entries[i]
		mi.Title, mi.Tooltip, mi.Callback, mi.Hidden = e.Title, e.Tooltip, e.Callback, false
		if mi.item != nil {
			mi.item.SetTitle(e.Title)
			mi.item.SetTooltip(e.Tooltip)
			mi.item.Show()
		}
	}
	for i := len(children); i < len(entries); i++ {
		e := entries[i]
		t.add(&MenuItem{Title: e.Title, Tooltip: e.Tooltip, Parent: parent, Callback: e.Callback})
	}
}

// Run starts the tray event loop (blocks until Stop)
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() { close(t.quitCh) })
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	systray.SetTitle(t.title)
	systray.SetTooltip(t.tooltip)
	systray.SetIcon(getIcon())

	t.mu.Lock()
	for _, mi := range t.items {
		if mi == nil {
			systray.AddSeparator()
			continue
		}
		t.show(mi)
	}
	t.running = true
	t.mu.Unlock()

	if t.onReady != nil {
		t.onReady()
	}
}

// show creates the systray item for mi and starts its click loop. t.mu must be held.
func (t *Tray) show(mi *MenuItem) {
	if mi.Parent != noParent && t.items[mi.Parent] != nil && t.items[mi.Parent].item != nil {
		mi.item = t.items[mi.Parent].item.AddSubMenuItem(mi.Title, mi.Tooltip)
	} else {
		mi.item = systray.AddMenuItem(mi.Title, mi.Tooltip)
	}
	if mi.Hidden {
		mi.item.Hide()
	}
	go t.dispatch(mi)
}

func (t *Tray) dispatch(mi *MenuItem) {
	for {
		select {
		case <-mi.item.ClickedCh:
			t.mu.Lock()
			cb := mi.Callback
			t.mu.Unlock()
			if cb != nil {
				cb()
			}
		case <-t.quitCh:
			return
		}
	}
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}

const iconSize = 16

// getIcon returns a 16x16 32-bit ICO: a filled disc on a transparent background.
func getIcon() []byte {
	const (
		dirSize    = 6 + 16
		headerSize = 40
		pixelSize  = iconSize * iconSize * 4
		maskSize   = iconSize * 4 // 1 bpp rows padded to 32 bits
	)
	icon := make([]byte, dirSize+headerSize+pixelSize+maskSize)
	le := binary.LittleEndian

	// ICONDIR + ICONDIRENTRY
	le.PutUint16(icon[2:], 1) // type: icon
	le.PutUint16(icon[4:], 1) // count
	icon[6], icon[7] = iconSize, iconSize
	le.PutUint16(icon[10:], 1)  // planes
	le.PutUint16(icon[12:], 32) // bpp
	le.PutUint32(icon[14:], headerSize+pixelSize+maskSize)
	le.PutUint32(icon[18:], dirSize)

	// BITMAPINFOHEADER; height covers the XOR and AND bitmaps.
	h := icon[dirSize:]
	le.PutUint32(h[0:], headerSize)
	le.PutUint32(h[4:], iconSize)
	le.PutUint32(h[8:], iconSize*2)
	le.PutUint16(h[12:], 1)
	le.PutUint16(h[14:], 32)
	le.PutUint32(h[20:], pixelSize)

	// BGRA pixels, bottom-up.
	px := icon[dirSize+headerSize:]
	const c = iconSize/2 - 0.5
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			if dx*dx+dy*dy > 7*7 {
				continue
			}
			i := (y*iconSize + x) * 4
			px[i], px[i+1], px[i+2], px[i+3] = 0xD0, 0x70, 0x20, 0xFF
		}
	}
	return icon
}
