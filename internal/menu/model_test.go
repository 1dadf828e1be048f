package menu

import (
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func titles(es []*Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Title()
	}
	return out
}

func TestModel_AppendPreservesOrder(t *testing.T) {
	m := NewModel(zap.NewNop())
	noop := func(*Entry) {}

	err := m.Replace(
		"Inert",
		Item{Title: "Action", Callback: noop},
		nil,
		Sub{Title: "Servers", Items: []any{"alpha", "beta", Separator{}, "gamma"}},
		map[string]any{"Tools": []any{"one", map[string]any{"Nested": []any{"deep"}}}},
		[]any{"flat1", "flat2"},
	)
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	want := []string{"Inert", "Action", "-", "Servers", "Tools", "flat1", "flat2"}
	if got := titles(m.Root().Children()); !reflect.DeepEqual(got, want) {
		t.Errorf("root = %v, want %v", got, want)
	}
	want = []string{"alpha", "beta", "-", "gamma"}
	if got := titles(m.Root().Get("Servers").Children()); !reflect.DeepEqual(got, want) {
		t.Errorf("Servers = %v, want %v", got, want)
	}
	if e := m.Root().Lookup("Tools", "Nested", "deep"); e == nil {
		t.Error("Lookup(Tools, Nested, deep) = nil")
	}
	if k := m.Root().Get("Servers").Kind(); k != KindSubmenu {
		t.Errorf("Servers kind = %v, want submenu", k)
	}
}

func TestModel_ParseErrorsKeepTheRest(t *testing.T) {
	m := NewModel(nil)

	err := m.Replace("first", 42, map[string]any{"a": nil, "b": nil}, "last")
	var perrs ParseErrors
	if !errors.As(err, &perrs) {
		t.Fatalf("Replace() error = %v, want ParseErrors", err)
	}
	if len(perrs) != 2 {
		t.Errorf("len(errors) = %d, want 2", len(perrs))
	}
	if got := m.Root().Keys(); !reflect.DeepEqual(got, []string{"first", "last"}) {
		t.Errorf("keys = %v", got)
	}

	err = m.Replace(Sub{Title: "S", Items: []any{"ok", 3.5}})
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Replace() error = %v, want *ParseError", err)
	}
	if !reflect.DeepEqual(perr.Path, []string{"S"}) {
		t.Errorf("Path = %v, want [S]", perr.Path)
	}
}

func TestModel_IdentityNeverReused(t *testing.T) {
	m := NewModel(nil)
	a := m.Root().AddItem(Item{Title: "a"})
	id := a.ID()
	m.Root().Remove("a")

	if a.Alive() {
		t.Error("removed entry still alive")
	}
	if _, ok := m.Entry(id); ok {
		t.Error("removed id still resolves")
	}
	b := m.Root().AddItem(Item{Title: "a"})
	if b.ID() <= id {
		t.Errorf("new id %d not greater than removed id %d", b.ID(), id)
	}

	// Setters on a detached handle do nothing.
	a.SetTitle("ghost")
	if got := m.Root().Get("a").Title(); got != "a" {
		t.Errorf("title = %q, want a", got)
	}
}

func TestModel_EnsureCreatesOnlyMissingSuffix(t *testing.T) {
	m := NewModel(nil)
	if err := m.Replace("Top", Sub{Title: "File", Items: []any{"Open", "Close"}}, "Bottom"); err != nil {
		t.Fatal(err)
	}
	file := m.Root().Get("File")
	openID := file.Get("Open").ID()
	before := m.Len()

	leaf := m.Root().Ensure("File", "Recent", "doc.txt")
	if leaf == nil || leaf.Title() != "doc.txt" {
		t.Fatalf("Ensure() = %v", leaf)
	}
	if got := m.Len() - before; got != 2 {
		t.Errorf("created %d entries, want 2", got)
	}
	if got := m.Root().Keys(); !reflect.DeepEqual(got, []string{"Top", "File", "Bottom"}) {
		t.Errorf("root keys = %v", got)
	}
	if got := file.Keys(); !reflect.DeepEqual(got, []string{"Open", "Close", "Recent"}) {
		t.Errorf("File keys = %v", got)
	}
	if file.Get("Open").ID() != openID {
		t.Error("existing sibling replaced")
	}
	if again := m.Root().Ensure("File", "Recent", "doc.txt"); again != leaf {
		t.Error("Ensure on existing path returned a different entry")
	}
}

func TestModel_ToggleRoundTrip(t *testing.T) {
	m := NewModel(nil)
	e := m.Root().AddItem(Item{Title: "x", Checked: true})

	for i := 0; i < 4; i++ {
		e.SetState(!e.State())
		e.SetEnabled(!e.Enabled())
	}
	if !e.State() || !e.Enabled() {
		t.Errorf("after even toggles state=%v enabled=%v, want true true", e.State(), e.Enabled())
	}
}

func TestModel_OnChangeOncePerCall(t *testing.T) {
	m := NewModel(nil)
	changes := 0
	m.OnChange(func() { changes++ })

	if err := m.Replace("a", "b", Sub{Title: "c", Items: []any{"d"}}); err != nil {
		t.Fatal(err)
	}
	if changes != 1 {
		t.Errorf("Replace notified %d times, want 1", changes)
	}

	m.Root().Get("a").SetTitle("A")
	m.Root().Remove("b")
	m.Root().Remove("missing")
	if changes != 3 {
		t.Errorf("changes = %d, want 3", changes)
	}
}

func TestModel_KeysAndReplaceInPlace(t *testing.T) {
	m := NewModel(nil)
	root := m.Root()
	root.AddItem(Item{Title: "Same", Key: "k1"})
	root.AddItem(Item{Title: "Same", Key: "k2"})
	root.AddItem(Item{Title: "Other"})

	old := root.Get("k1")
	root.AddItem(Item{Title: "Replaced", Key: "k1"})
	if old.Alive() {
		t.Error("replaced entry still alive")
	}
	if got := titles(root.Children()); !reflect.DeepEqual(got, []string{"Replaced", "Same", "Other"}) {
		t.Errorf("children = %v", got)
	}

	def := root.SetDefault("k2", Item{Title: "ignored"})
	if def.Title() != "Same" {
		t.Errorf("SetDefault returned %q, want existing entry", def.Title())
	}
	added := root.SetDefault("new", Item{Title: "Fresh"})
	if added.Key() != "new" || root.Last() != added {
		t.Errorf("SetDefault added %v", added)
	}
}

func TestItem_TitleCarriesShortcut(t *testing.T) {
	m := NewModel(nil)
	e := m.Root().AddItem(Item{Title: "Save\tCtrl+S"})
	if e.Title() != "Save" || e.Shortcut() != "Ctrl+S" || e.Key() != "Save" {
		t.Errorf("got title=%q shortcut=%q key=%q", e.Title(), e.Shortcut(), e.Key())
	}
}
