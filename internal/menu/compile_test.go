package menu

import (
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native"
	"github.com/username/ruwps/internal/native/headless"
)

func TestParseShortcut(t *testing.T) {
	tests := []struct {
		in      string
		virt    uint8
		key     uint16
		display string
		wantErr bool
	}{
		{in: "Ctrl+S", virt: native.FCONTROL, key: 'S', display: "Ctrl+S"},
		{in: "cmd+shift+n", virt: native.FCONTROL | native.FSHIFT, key: 'N', display: "Ctrl+Shift+N"},
		{in: "Alt+F4", virt: native.FALT, key: native.VK_F1 + 3, display: "Alt+F4"},
		{in: "Del", key: native.VK_DELETE, display: "Del"},
		{in: "Ctrl++", virt: native.FCONTROL, key: native.VK_OEM_PLUS, display: "Ctrl++"},
		{in: "Ctrl+Minus", virt: native.FCONTROL, key: native.VK_OEM_MINUS, display: "Ctrl+-"},
		{in: "F24", key: native.VK_F1 + 23, display: "F24"},
		{in: "Ctrl+7", virt: native.FCONTROL, key: '7', display: "Ctrl+7"},
		{in: "", wantErr: true},
		{in: "Hyper+K", wantErr: true},
		{in: "Ctrl+F25", wantErr: true},
		{in: "Ctrl+@", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sc, err := ParseShortcut(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseShortcut(%q) = %+v, want error", tt.in, sc)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseShortcut(%q) error = %v", tt.in, err)
			}
			if sc.Virt != tt.virt || sc.Key != tt.key || sc.Display != tt.display {
				t.Errorf("ParseShortcut(%q) = %+v, want virt=%#x key=%#x display=%q",
					tt.in, sc, tt.virt, tt.key, tt.display)
			}
		})
	}
}

func TestCompiler_Compile(t *testing.T) {
	b := headless.New()
	logger, _ := zap.NewDevelopment()
	m := NewModel(logger)
	noop := func(*Entry) {}

	err := m.Replace(
		Item{Title: "Open", Callback: noop, Shortcut: "Ctrl+O"},
		Item{Title: "Check", Callback: noop, Checked: true},
		"Inert",
		Item{Title: "Off", Callback: noop, Disabled: true},
		nil,
		Sub{Title: "More", Items: []any{Item{Title: "Deep", Callback: noop, Icon: "deep.bmp"}}},
		Sub{Title: "Empty"},
	)
	if err != nil {
		t.Fatal(err)
	}

	c, err := NewCompiler(b, logger).Compile(m.Root(), false)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	top := b.Menu(c.Menu)
	if !top.Popup {
		t.Error("top-level menu is not a popup")
	}
	want := []string{"Open", "Check", "Inert", "Off", "-", "More", "Empty"}
	if got := top.Labels(); !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}

	flags := func(path ...string) uint32 {
		it, ok := top.Find(path...)
		if !ok {
			t.Fatalf("item %v missing", path)
		}
		return it.Flags
	}
	if f := flags("Open"); f&native.MF_GRAYED != 0 {
		t.Errorf("Open flags = %#x, want enabled", f)
	}
	if f := flags("Check"); f&native.MF_CHECKED == 0 {
		t.Errorf("Check flags = %#x, want checked", f)
	}
	if f := flags("Inert"); f&native.MF_GRAYED == 0 {
		t.Errorf("Inert flags = %#x, want grayed", f)
	}
	if f := flags("Off"); f&native.MF_GRAYED == 0 {
		t.Errorf("Off flags = %#x, want grayed", f)
	}
	if got := top.Sub("Empty"); got == nil || len(got.Items) != 0 {
		t.Errorf("Empty submenu = %+v, want present and empty", got)
	}

	open, _ := top.Find("Open")
	if open.Caption != "Open\tCtrl+O" {
		t.Errorf("Open caption = %q", open.Caption)
	}
	deep, _ := top.Find("More", "Deep")
	if path, ok := b.Bitmap(deep.Bitmap); !ok || path != "deep.bmp" {
		t.Errorf("Deep bitmap = %q %v", path, ok)
	}

	// One identity per selectable leaf, submenu containers and separators excluded.
	if c.Len() != 5 {
		t.Errorf("compiled ids = %d, want 5", c.Len())
	}
	seen := make(map[*Entry]bool)
	for _, id := range c.IDs() {
		e, _ := c.Lookup(id)
		if id == 0 || id > MaxCommands || seen[e] || e.IsSubmenu() || e.Kind() == KindSeparator {
			t.Errorf("id %d maps to %v", id, e)
		}
		seen[e] = true
	}
	if e, _ := c.Lookup(open.ID); e != m.Root().Get("Open") {
		t.Errorf("Open item id %d maps to %v", open.ID, e)
	}

	accels := b.Accelerators(c.Accel)
	wantAccel := []native.Accel{{Virt: native.FVIRTKEY | native.FCONTROL, Key: 'O', Cmd: uint16(open.ID)}}
	if !reflect.DeepEqual(accels, wantAccel) {
		t.Errorf("accelerators = %+v, want %+v", accels, wantAccel)
	}

	c.Destroy()
	if b.LiveMenus() != 0 {
		t.Errorf("live menus after Destroy = %d", b.LiveMenus())
	}
	if _, ok := b.Bitmap(deep.Bitmap); ok {
		t.Error("bitmap survived Destroy")
	}
	c.Destroy()
	if b.Invalid() != 0 {
		t.Errorf("invalid handle uses = %d", b.Invalid())
	}
}

func TestCompiler_MenuBar(t *testing.T) {
	b := headless.New()
	m := NewModel(nil)
	if err := m.Replace(Sub{Title: "File", Items: []any{"Quit"}}); err != nil {
		t.Fatal(err)
	}
	c, err := NewCompiler(b, nil).Compile(m.Root(), true)
	if err != nil {
		t.Fatal(err)
	}
	if b.Menu(c.Menu).Popup {
		t.Error("menu bar compiled as popup")
	}
	if c.Accel != 0 {
		t.Error("accelerator table created without shortcuts")
	}
}

func TestCompiler_ResourceFailure(t *testing.T) {
	b := headless.New()
	m := NewModel(nil)
	if err := m.Replace("a", Sub{Title: "s", Items: []any{"b"}}); err != nil {
		t.Fatal(err)
	}

	b.FailNext("AppendMenu", nil)
	_, err := NewCompiler(b, nil).Compile(m.Root(), false)
	if !errors.Is(err, native.ErrResource) {
		t.Fatalf("Compile() error = %v, want ErrResource", err)
	}
	if b.LiveMenus() != 0 {
		t.Errorf("live menus after failure = %d", b.LiveMenus())
	}
}

func TestCompiler_IconFailureIsNotFatal(t *testing.T) {
	b := headless.New()
	m := NewModel(nil)
	m.Root().AddItem(Item{Title: "pic", Icon: "missing.bmp", Callback: func(*Entry) {}})

	b.FailNext("LoadBitmap", nil)
	c, err := NewCompiler(b, nil).Compile(m.Root(), false)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if it, _ := b.Menu(c.Menu).Find("pic"); it.Bitmap != 0 {
		t.Errorf("bitmap = %#x, want none", it.Bitmap)
	}
}

func TestCompiler_CommandIDsAreCompact(t *testing.T) {
	b := headless.New()
	m := NewModel(nil)
	noop := func(*Entry) {}
	old := m.Root().AddItem(Item{Title: "Old", Shortcut: "Ctrl+O", Callback: noop})
	lastID.Add(1 << 16)
	newer := m.Root().AddItem(Item{Title: "New", Shortcut: "Ctrl+N", Callback: noop})
	if newer.ID() <= MaxCommands {
		t.Fatalf("identities did not pass 16 bits: %d", newer.ID())
	}

	c, err := NewCompiler(b, nil).Compile(m.Root(), true)
	if err != nil {
		t.Fatal(err)
	}
	bar := b.Menu(c.Menu)
	for _, want := range []*Entry{old, newer} {
		it, ok := bar.Find(want.Title())
		if !ok {
			t.Fatalf("%s not compiled", want.Title())
		}
		if it.ID == 0 || it.ID > MaxCommands {
			t.Errorf("%s command id = %d", want.Title(), it.ID)
		}
		// WM_COMMAND delivers only the low word.
		if e, _ := c.Lookup(uint32(uint16(it.ID))); e != want {
			t.Errorf("%s command id %d resolves to %v", want.Title(), it.ID, e)
		}
	}
	if got := len(b.Accelerators(c.Accel)); got != 2 {
		t.Errorf("accelerators = %d, want 2", got)
	}
}
