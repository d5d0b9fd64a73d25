// Package window locates top-level OS windows by handle, title, class or owning process.
package window

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Handle identifies an OS window. It is not owned by this package.
type Handle uintptr

func (h Handle) String() string {
	return fmt.Sprintf("0x%X", uintptr(h))
}

// ParseHandle accepts decimal or 0x-prefixed hexadecimal handles.
func ParseHandle(s string) (Handle, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid window handle %q", s)
	}
	return Handle(v), nil
}

// Point is a screen position in virtual desktop coordinates.
type Point struct {
	X int32
	Y int32
}

// Info is a snapshot of a window's identity. It goes stale as soon as the window changes.
type Info struct {
	Handle    Handle `json:"handle" yaml:"handle"`
	Title     string `json:"title" yaml:"title"`
	Class     string `json:"class" yaml:"class"`
	ProcessID uint32 `json:"process_id" yaml:"process_id"`
	ThreadID  uint32 `json:"thread_id" yaml:"thread_id"`
}

func (i Info) String() string {
	return fmt.Sprintf("%s title=%q class=%q pid=%d tid=%d", i.Handle, i.Title, i.Class, i.ProcessID, i.ThreadID)
}

// System is the subset of the windowing subsystem the locator consumes.
type System interface {
	// Windows returns every top-level window handle.
	Windows() ([]Handle, error)
	// Find performs an exact lookup; empty strings are treated as "any".
	Find(title, class string) (Handle, error)
	Title(h Handle) (string, error)
	Class(h Handle) (string, error)
	// Owner returns the owning thread and process ids.
	Owner(h Handle) (threadID, processID uint32, err error)
	CursorPos() (Point, error)
	FromPoint(p Point) (Handle, error)
}

// Filter selects windows. Zero-valued fields are ignored.
type Filter struct {
	Handle     Handle
	Title      string
	Class      string
	TitleRegex string
	ClassRegex string
	ProcessID  uint32
}

// IsEmpty reports whether no criterion is set.
func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

// Set is an unordered collection of window handles.
type Set map[Handle]struct{}

// Add inserts h.
func (s Set) Add(h Handle) { s[h] = struct{}{} }

// Has reports whether h is present.
func (s Set) Has(h Handle) bool {
	_, ok := s[h]
	return ok
}

// Sorted returns the handles in ascending order.
func (s Set) Sorted() []Handle {
	out := make([]Handle, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Locator finds windows through a System.
type Locator struct {
	sys System
}

// NewLocator creates a locator over sys.
func NewLocator(sys System) *Locator {
	return &Locator{sys: sys}
}

// Find returns the union of all windows matched by f. An empty filter yields an
// empty set. Any OS failure aborts the whole call.
func (l *Locator) Find(f Filter) (Set, error) {
	result := make(Set)
	if f.IsEmpty() {
		return result, nil
	}

	var titleRe, classRe *regexp.Regexp
	var err error
	if f.TitleRegex != "" {
		if titleRe, err = regexp.Compile(f.TitleRegex); err != nil {
			return nil, fmt.Errorf("title pattern: %w", err)
		}
	}
	if f.ClassRegex != "" {
		if classRe, err = regexp.Compile(f.ClassRegex); err != nil {
			return nil, fmt.Errorf("class pattern: %w", err)
		}
	}

	if f.Handle != 0 {
		result.Add(f.Handle)
	}

	if f.Title != "" || f.Class != "" {
		h, err := l.sys.Find(f.Title, f.Class)
		if err != nil {
			return nil, err
		}
		result.Add(h)
	}

	if f.ProcessID == 0 && titleRe == nil && classRe == nil {
		return result, nil
	}

	handles, err := l.sys.Windows()
	if err != nil {
		return nil, err
	}
	for _, h := range handles {
		if f.ProcessID != 0 {
			_, pid, err := l.sys.Owner(h)
			if err != nil {
				return nil, err
			}
			if pid == f.ProcessID {
				log.Printf("Window: %s owned by pid %d", h, pid)
				result.Add(h)
			}
		}
		if titleRe != nil {
			title, err := l.sys.Title(h)
			if err != nil {
				return nil, err
			}
			if titleRe.MatchString(title) {
				log.Printf("Window: %s title %q matches %q", h, title, f.TitleRegex)
				result.Add(h)
			}
		}
		if classRe != nil {
			class, err := l.sys.Class(h)
			if err != nil {
				return nil, err
			}
			if classRe.MatchString(class) {
				log.Printf("Window: %s class %q matches %q", h, class, f.ClassRegex)
				result.Add(h)
			}
		}
	}
	return result, nil
}

// FromCursor returns exactly the window currently under the mouse pointer.
func (l *Locator) FromCursor() (Set, error) {
	p, err := l.sys.CursorPos()
	if err != nil {
		return nil, err
	}
	h, err := l.sys.FromPoint(p)
	if err != nil {
		return nil, err
	}
	return Set{h: {}}, nil
}

// Describe reads the identity of a single window.
func (l *Locator) Describe(h Handle) (Info, error) {
	info := Info{Handle: h}
	var err error
	if info.ThreadID, info.ProcessID, err = l.sys.Owner(h); err != nil {
		return Info{}, err
	}
	if info.Title, err = l.sys.Title(h); err != nil {
		return Info{}, err
	}
	if info.Class, err = l.sys.Class(h); err != nil {
		return Info{}, err
	}
	return info, nil
}

// ProcessWindows describes every top-level window owned by pid.
func (l *Locator) ProcessWindows(pid uint32) ([]Info, error) {
	set, err := l.Find(Filter{ProcessID: pid})
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(set))
	for _, h := range set.Sorted() {
		info, err := l.Describe(h)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
