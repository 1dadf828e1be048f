package headless

import (
	"strings"

	"github.com/username/ruwps/internal/native"
)

// Menu is a native menu held in memory.
type Menu struct {
	b         *Backend
	Handle    native.HMENU
	Popup     bool
	Items     []native.MenuItem
	destroyed bool
}

// Destroyed reports whether DestroyMenu released the menu.
func (m *Menu) Destroyed() bool {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	return m.destroyed
}

// Label strips the accelerator hint that follows a tab.
func Label(caption string) string {
	if i := strings.IndexByte(caption, '\t'); i >= 0 {
		return caption[:i]
	}
	return caption
}

// Labels lists the captions of the menu, with "-" for separators.
func (m *Menu) Labels() []string {
	out := make([]string, 0, len(m.Items))
	for _, it := range m.Items {
		if it.Flags&native.MF_SEPARATOR != 0 {
			out = append(out, "-")
			continue
		}
		out = append(out, Label(it.Caption))
	}
	return out
}

// Sub returns the submenu attached to the item with the given label.
func (m *Menu) Sub(label string) *Menu {
	it, ok := m.item(label)
	if !ok || it.Flags&native.MF_POPUP == 0 {
		return nil
	}
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	return m.b.menus[it.Submenu]
}

func (m *Menu) item(label string) (native.MenuItem, bool) {
	for _, it := range m.Items {
		if it.Flags&native.MF_SEPARATOR == 0 && Label(it.Caption) == label {
			return it, true
		}
	}
	return native.MenuItem{}, false
}

// Find walks submenus by label and returns the item at the end of path.
func (m *Menu) Find(path ...string) (native.MenuItem, bool) {
	cur := m
	for i, label := range path {
		if cur == nil {
			return native.MenuItem{}, false
		}
		if i == len(path)-1 {
			return cur.item(label)
		}
		cur = cur.Sub(label)
	}
	return native.MenuItem{}, false
}

// Select returns a popup hook choosing the item at path, or dismissing the
// popup when the item is missing or grayed.
func Select(path ...string) func(*Menu) uint32 {
	return func(m *Menu) uint32 {
		it, ok := m.Find(path...)
		if !ok || it.Flags&(native.MF_GRAYED|native.MF_POPUP|native.MF_SEPARATOR) != 0 {
			return 0
		}
		return it.ID
	}
}

func (b *Backend) newMenu(popup bool) (native.HMENU, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	op := "CreateMenu"
	if popup {
		op = "CreatePopupMenu"
	}
	if err := b.fail(op); err != nil {
		return 0, err
	}
	h := native.HMENU(b.handle())
	b.menus[h] = &Menu{b: b, Handle: h, Popup: popup}
	return h, nil
}

func (b *Backend) CreateMenu() (native.HMENU, error) { return b.newMenu(false) }

func (b *Backend) CreatePopupMenu() (native.HMENU, error) { return b.newMenu(true) }

func (b *Backend) AppendMenu(menu native.HMENU, item native.MenuItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("AppendMenu"); err != nil {
		return err
	}
	m, ok := b.menus[menu]
	if !ok || m.destroyed {
		b.invalid++
		return native.Fail("AppendMenu", nil)
	}
	m.Items = append(m.Items, item)
	return nil
}

func (b *Backend) DestroyMenu(menu native.HMENU) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyMenu(menu)
}

func (b *Backend) destroyMenu(menu native.HMENU) {
	m, ok := b.menus[menu]
	if !ok || m.destroyed {
		b.invalid++
		return
	}
	m.destroyed = true
	for _, it := range m.Items {
		if it.Flags&native.MF_POPUP != 0 {
			b.destroyMenu(it.Submenu)
		}
	}
}

func (b *Backend) SetMenuBar(hwnd native.HWND, menu native.HMENU) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[hwnd]
	if !ok || w.destroyed {
		b.invalid++
		return native.Fail("SetMenu", nil)
	}
	w.menuBar = menu
	return nil
}

// TrackPopupMenu hands the menu to the OnPopup hook; the returned command is
// reported only after the popup is considered closed.
func (b *Backend) TrackPopupMenu(menu native.HMENU, hwnd native.HWND, pt native.Point) uint32 {
	b.mu.Lock()
	b.popups++
	m, ok := b.menus[menu]
	if !ok || m.destroyed {
		b.invalid++
		b.mu.Unlock()
		return 0
	}
	hook := b.onPopup
	b.mu.Unlock()
	if hook == nil {
		return 0
	}
	return hook(m)
}

// Menu returns the menu behind handle h.
func (b *Backend) Menu(h native.HMENU) *Menu {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.menus[h]
}

// LiveMenus counts top-level and submenus that were not destroyed.
func (b *Backend) LiveMenus() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.menus {
		if !m.destroyed {
			n++
		}
	}
	return n
}

func (b *Backend) CreateAcceleratorTable(accels []native.Accel) (native.HACCEL, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("CreateAcceleratorTable"); err != nil {
		return 0, err
	}
	h := native.HACCEL(b.handle())
	b.accels[h] = append([]native.Accel(nil), accels...)
	return h, nil
}

func (b *Backend) DestroyAcceleratorTable(accel native.HACCEL) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accels[accel]; !ok {
		b.invalid++
		return
	}
	delete(b.accels, accel)
}

// Accelerators returns a copy of the table behind h.
func (b *Backend) Accelerators(h native.HACCEL) []native.Accel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]native.Accel(nil), b.accels[h]...)
}

func (b *Backend) LoadBitmap(path string, size int) (native.HBITMAP, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("LoadBitmap"); err != nil {
		return 0, err
	}
	h := native.HBITMAP(b.handle())
	b.bitmaps[h] = path
	return h, nil
}

func (b *Backend) DeleteBitmap(bmp native.HBITMAP) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.bitmaps[bmp]; !ok {
		b.invalid++
		return
	}
	delete(b.bitmaps, bmp)
}

// Bitmap returns the file a live bitmap was loaded from.
func (b *Backend) Bitmap(h native.HBITMAP) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.bitmaps[h]
	return p, ok
}
