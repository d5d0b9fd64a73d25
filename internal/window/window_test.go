package window

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joybind/internal/syserr"
)

type fakeWindow struct {
	title string
	class string
	pid   uint32
	tid   uint32
}

type fakeSystem struct {
	windows   map[Handle]fakeWindow
	order     []Handle
	enumErr   error
	cursor    Point
	atCursor  Handle
	enumCalls int
}

func newFakeSystem() *fakeSystem {
	s := &fakeSystem{windows: make(map[Handle]fakeWindow)}
	s.add(0x10, fakeWindow{title: "Untitled - Notepad", class: "Notepad", pid: 100, tid: 1})
	s.add(0x20, fakeWindow{title: "Calculator", class: "ApplicationFrameWindow", pid: 200, tid: 2})
	s.add(0x30, fakeWindow{title: "notes.txt - Notepad", class: "Notepad", pid: 100, tid: 3})
	s.add(0x40, fakeWindow{title: "", class: "Shell_TrayWnd", pid: 300, tid: 4})
	return s
}

func (s *fakeSystem) add(h Handle, w fakeWindow) {
	s.windows[h] = w
	s.order = append(s.order, h)
}

func (s *fakeSystem) Windows() ([]Handle, error) {
	s.enumCalls++
	if s.enumErr != nil {
		return nil, s.enumErr
	}
	return append([]Handle(nil), s.order...), nil
}

func (s *fakeSystem) Find(title, class string) (Handle, error) {
	for _, h := range s.order {
		w := s.windows[h]
		if (title == "" || w.title == title) && (class == "" || w.class == class) {
			return h, nil
		}
	}
	return 0, syserr.New("FindWindowW", nil)
}

func (s *fakeSystem) Title(h Handle) (string, error) { return s.windows[h].title, nil }

func (s *fakeSystem) Class(h Handle) (string, error) {
	w, ok := s.windows[h]
	if !ok {
		return "", syserr.New("GetClassNameW", nil)
	}
	return w.class, nil
}

func (s *fakeSystem) Owner(h Handle) (uint32, uint32, error) {
	w, ok := s.windows[h]
	if !ok {
		return 0, 0, syserr.New("GetWindowThreadProcessId", nil)
	}
	return w.tid, w.pid, nil
}

func (s *fakeSystem) CursorPos() (Point, error)         { return s.cursor, nil }
func (s *fakeSystem) FromPoint(p Point) (Handle, error) { return s.atCursor, nil }

func TestFindEmptyFilter(t *testing.T) {
	sys := newFakeSystem()
	set, err := NewLocator(sys).Find(Filter{})
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.Zero(t, sys.enumCalls)
}

func TestFindByProcessID(t *testing.T) {
	sys := newFakeSystem()
	set, err := NewLocator(sys).Find(Filter{ProcessID: 100})
	require.NoError(t, err)
	assert.Equal(t, []Handle{0x10, 0x30}, set.Sorted())

	set, err = NewLocator(sys).Find(Filter{ProcessID: 999})
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestFindByHandleIsVerbatim(t *testing.T) {
	set, err := NewLocator(newFakeSystem()).Find(Filter{Handle: 0xBEEF})
	require.NoError(t, err)
	assert.True(t, set.Has(0xBEEF))
	assert.Len(t, set, 1)
}

func TestFindExact(t *testing.T) {
	loc := NewLocator(newFakeSystem())

	set, err := loc.Find(Filter{Title: "Calculator"})
	require.NoError(t, err)
	assert.Equal(t, []Handle{0x20}, set.Sorted())

	set, err = loc.Find(Filter{Title: "notes.txt - Notepad", Class: "Notepad"})
	require.NoError(t, err)
	assert.Equal(t, []Handle{0x30}, set.Sorted())

	_, err = loc.Find(Filter{Title: "missing"})
	assert.True(t, syserr.IsOSError(err))
}

func TestFindRegexIsUnanchored(t *testing.T) {
	loc := NewLocator(newFakeSystem())

	set, err := loc.Find(Filter{TitleRegex: "Notepad"})
	require.NoError(t, err)
	assert.Equal(t, []Handle{0x10, 0x30}, set.Sorted())

	set, err = loc.Find(Filter{ClassRegex: "^Shell"})
	require.NoError(t, err)
	assert.Equal(t, []Handle{0x40}, set.Sorted())
}

func TestFindUnion(t *testing.T) {
	set, err := NewLocator(newFakeSystem()).Find(Filter{
		Handle:     0x20,
		TitleRegex: "notes",
		ProcessID:  300,
	})
	require.NoError(t, err)
	assert.Equal(t, []Handle{0x20, 0x30, 0x40}, set.Sorted())
}

func TestFindInvalidRegex(t *testing.T) {
	_, err := NewLocator(newFakeSystem()).Find(Filter{TitleRegex: "("})
	assert.Error(t, err)
}

func TestFindEnumerationFailureReturnsNothing(t *testing.T) {
	sys := newFakeSystem()
	sys.enumErr = syserr.New("EnumWindows", errors.New("access denied"))

	set, err := NewLocator(sys).Find(Filter{Handle: 0x10, ProcessID: 100})
	assert.Nil(t, set)
	assert.True(t, syserr.IsOSError(err))
}

func TestFromCursor(t *testing.T) {
	sys := newFakeSystem()
	sys.cursor = Point{X: 10, Y: 20}
	sys.atCursor = 0x20

	set, err := NewLocator(sys).FromCursor()
	require.NoError(t, err)
	assert.Equal(t, []Handle{0x20}, set.Sorted())
}

func TestProcessWindows(t *testing.T) {
	infos, err := NewLocator(newFakeSystem()).ProcessWindows(100)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, Info{Handle: 0x10, Title: "Untitled - Notepad", Class: "Notepad", ProcessID: 100, ThreadID: 1}, infos[0])
	assert.Equal(t, "notes.txt - Notepad", infos[1].Title)
}

func TestParseHandle(t *testing.T) {
	h, err := ParseHandle("0x1A2B")
	require.NoError(t, err)
	assert.Equal(t, Handle(0x1A2B), h)

	h, err = ParseHandle(" 4096 ")
	require.NoError(t, err)
	assert.Equal(t, Handle(4096), h)
	assert.Equal(t, "0x1000", h.String())

	_, err = ParseHandle("window")
	assert.Error(t, err)
}

func TestPointArgs(t *testing.T) {
	p := Point{X: -2, Y: 300}

	wide := pointArgs(p, 8)
	require.Len(t, wide, 1)
	assert.Equal(t, uint64(0x0000012C_FFFFFFFE), uint64(wide[0]))

	narrow := pointArgs(p, 4)
	assert.Equal(t, []uintptr{0xFFFFFFFE, 300}, narrow)
}
