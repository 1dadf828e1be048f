package menu

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native"
)

// IconSize is the edge in pixels menu bitmaps are scaled to.
const IconSize = 16

// MaxCommands is the number of selectable entries one compiled menu can
// hold. WM_COMMAND carries command ids in 16 bits.
const MaxCommands = 0xFFFF

// Compiled is the native form of one menu snapshot. Command ids are assigned
// per snapshot, counting from 1, so they fit WM_COMMAND whatever the entry
// identities have grown to. Destroy releases every resource it holds; it
// must only be called once a newer Compiled has been installed in its place.
type Compiled struct {
	Menu  native.HMENU
	Accel native.HACCEL
	Bar   bool

	items   map[uint32]*Entry
	bitmaps []native.HBITMAP
	factory native.MenuFactory
}

// Lookup resolves a command id of this snapshot to the entry it was
// compiled from.
func (c *Compiled) Lookup(cmd uint32) (*Entry, bool) {
	e, ok := c.items[cmd]
	return e, ok
}

// Len counts the selectable command ids in the compiled menu.
func (c *Compiled) Len() int { return len(c.items) }

// IDs returns the compiled command ids. Order is unspecified.
func (c *Compiled) IDs() []uint32 {
	ids := make([]uint32, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	return ids
}

// Destroy releases the native menu tree, the accelerator table and the item
// bitmaps.
func (c *Compiled) Destroy() {
	if c == nil || c.factory == nil {
		return
	}
	if c.Menu != 0 {
		c.factory.DestroyMenu(c.Menu)
	}
	if c.Accel != 0 {
		c.factory.DestroyAcceleratorTable(c.Accel)
	}
	for _, b := range c.bitmaps {
		c.factory.DeleteBitmap(b)
	}
	c.factory = nil
}

// Compiler turns menu models into native menus.
type Compiler struct {
	factory native.MenuFactory
	logger  *zap.Logger
}

// NewCompiler returns a compiler creating resources through factory.
func NewCompiler(factory native.MenuFactory, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{factory: factory, logger: logger}
}

// Compile builds a popup menu, or a menu bar when bar is set, from the
// children of root.
func (c *Compiler) Compile(root *Entry, bar bool) (*Compiled, error) {
	out := &Compiled{Bar: bar, items: make(map[uint32]*Entry), factory: c.factory}
	var (
		h   native.HMENU
		err error
	)
	if bar {
		h, err = c.factory.CreateMenu()
	} else {
		h, err = c.factory.CreatePopupMenu()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create menu: %w", err)
	}
	out.Menu = h

	var accels []native.Accel
	if err := c.build(out, h, root, &accels); err != nil {
		out.Destroy()
		return nil, err
	}
	if len(accels) > 0 {
		table, err := c.factory.CreateAcceleratorTable(accels)
		if err != nil {
			out.Destroy()
			return nil, fmt.Errorf("failed to create accelerator table: %w", err)
		}
		out.Accel = table
	}
	c.logger.Debug("Compiled menu",
		zap.Bool("bar", bar),
		zap.Int("items", len(out.items)),
		zap.Int("accelerators", len(accels)))
	return out, nil
}

func (c *Compiler) build(out *Compiled, h native.HMENU, parent *Entry, accels *[]native.Accel) error {
	for _, e := range parent.Children() {
		item := native.MenuItem{Caption: e.title}
		switch {
		case e.kind == KindSeparator:
			item = native.MenuItem{Flags: native.MF_SEPARATOR}
		case e.IsSubmenu():
			sub, err := c.factory.CreatePopupMenu()
			if err != nil {
				return fmt.Errorf("failed to create submenu %q: %w", e.title, err)
			}
			if err := c.build(out, sub, e, accels); err != nil {
				c.factory.DestroyMenu(sub)
				return err
			}
			item.Flags = native.MF_POPUP
			item.Submenu = sub
			item.ID = 0
		default:
			if len(out.items) >= MaxCommands {
				return fmt.Errorf("failed to add menu item %q: more than %d entries", e.title, MaxCommands)
			}
			item.ID = uint32(len(out.items) + 1)
			item.Flags = native.MF_STRING
			if !e.enabled || e.callback == nil {
				item.Flags |= native.MF_GRAYED
			}
			if e.checked {
				item.Flags |= native.MF_CHECKED
			}
			if e.shortcut != "" {
				c.shortcut(e, &item, accels)
			}
			out.items[item.ID] = e
		}
		if e.icon != "" && e.kind != KindSeparator {
			bmp, err := c.factory.LoadBitmap(e.icon, IconSize)
			if err != nil {
				c.logger.Warn("Failed to load menu icon",
					zap.String("title", e.title),
					zap.String("icon", e.icon),
					zap.Error(err))
			} else {
				item.Bitmap = bmp
				out.bitmaps = append(out.bitmaps, bmp)
			}
		}
		if err := c.factory.AppendMenu(h, item); err != nil {
			if item.Submenu != 0 {
				c.factory.DestroyMenu(item.Submenu)
			}
			return fmt.Errorf("failed to append menu item %q: %w", e.title, err)
		}
	}
	return nil
}

func (c *Compiler) shortcut(e *Entry, item *native.MenuItem, accels *[]native.Accel) {
	sc, err := ParseShortcut(e.shortcut)
	if err != nil {
		c.logger.Warn("Ignoring menu shortcut", zap.String("title", e.title), zap.Error(err))
		return
	}
	item.Caption = e.title + "\t" + sc.Display
	*accels = append(*accels, native.Accel{
		Virt: sc.Virt | native.FVIRTKEY,
		Key:  sc.Key,
		Cmd:  uint16(item.ID),
	})
}
