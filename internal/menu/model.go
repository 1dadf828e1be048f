// Package menu holds the tray menu as an ordered tree of entries and
// compiles it into native menu resources.
//
// Entries live in an arena owned by the Model and are addressed by an ID
// drawn from a process-wide monotonic counter, so a stale ID can never alias
// a live entry. Children of an entry form an ordered map keyed by a stable
// key (the title unless the caller supplies one).
package menu

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// ID identifies an entry for the lifetime of the process.
type ID uint32

var lastID atomic.Uint32

func nextID() ID {
	return ID(lastID.Add(1))
}

// Kind distinguishes the three entry shapes.
type Kind uint8

const (
	KindItem Kind = iota
	KindSeparator
	KindSubmenu
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindSeparator:
		return "separator"
	case KindSubmenu:
		return "submenu"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Callback runs on the UI thread when an entry is selected.
type Callback func(*Entry)

// Model is the root of a menu tree.
type Model struct {
	entries  map[ID]*Entry
	root     *Entry
	onChange func()
	batch    int
	dirty    bool
	logger   *zap.Logger
}

// NewModel returns an empty menu.
func NewModel(logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{entries: make(map[ID]*Entry), logger: logger}
	m.root = m.newEntry(KindSubmenu, "", "")
	return m
}

// Root returns the top level of the menu.
func (m *Model) Root() *Entry { return m.root }

// Entry resolves an identity to a live entry.
func (m *Model) Entry(id ID) (*Entry, bool) {
	e, ok := m.entries[id]
	return e, ok
}

// Len counts live entries, the root excluded.
func (m *Model) Len() int { return len(m.entries) - 1 }

// OnChange registers the function invoked after every visible mutation,
// before the mutating call returns.
func (m *Model) OnChange(fn func()) { m.onChange = fn }

// Replace clears the menu and appends values in order.
func (m *Model) Replace(values ...any) error {
	return m.root.Update(values...)
}

func (m *Model) newEntry(kind Kind, key, title string) *Entry {
	e := &Entry{
		model:    m,
		id:       nextID(),
		kind:     kind,
		key:      key,
		title:    title,
		enabled:  true,
		children: make(map[string]ID),
	}
	m.entries[e.id] = e
	return e
}

// update groups the mutations done by fn into a single change notification.
func (m *Model) update(fn func()) {
	m.batch++
	defer func() {
		m.batch--
		if m.batch == 0 && m.dirty {
			m.dirty = false
			if m.onChange != nil {
				m.onChange()
			}
		}
	}()
	fn()
	m.dirty = true
}

func (m *Model) release(e *Entry) {
	for _, key := range e.order {
		if c, ok := m.entries[e.children[key]]; ok {
			m.release(c)
		}
	}
	delete(m.entries, e.id)
	e.model = nil
	e.parent = 0
}

// Entry is a live handle on one menu entry. Once removed from its model every
// setter becomes a no-op.
type Entry struct {
	model    *Model
	id       ID
	kind     Kind
	key      string
	parent   ID
	title    string
	shortcut string
	icon     string
	checked  bool
	enabled  bool
	callback Callback
	order    []string
	children map[string]ID
}

func (e *Entry) String() string {
	return fmt.Sprintf("<%s %d: %q>", e.kind, e.id, e.title)
}

func (e *Entry) ID() ID             { return e.id }
func (e *Entry) Kind() Kind         { return e.kind }
func (e *Entry) Key() string        { return e.key }
func (e *Entry) Title() string      { return e.title }
func (e *Entry) Shortcut() string   { return e.shortcut }
func (e *Entry) Icon() string       { return e.icon }
func (e *Entry) State() bool        { return e.checked }
func (e *Entry) Enabled() bool      { return e.enabled }
func (e *Entry) Callback() Callback { return e.callback }

// Alive reports whether the entry still belongs to a model.
func (e *Entry) Alive() bool { return e.model != nil }

// IsSubmenu reports whether the entry compiles to a submenu: declared as one,
// or an item that gained children.
func (e *Entry) IsSubmenu() bool {
	return e.kind == KindSubmenu || (e.kind == KindItem && len(e.order) > 0)
}

// Parent returns the containing entry, nil for the root or a removed entry.
func (e *Entry) Parent() *Entry {
	if e.model == nil {
		return nil
	}
	p, ok := e.model.entries[e.parent]
	if !ok || p == e {
		return nil
	}
	return p
}

func (e *Entry) set(fn func()) {
	if e.model == nil {
		return
	}
	e.model.update(fn)
}

func (e *Entry) SetTitle(title string) { e.set(func() { e.title = title }) }

func (e *Entry) SetShortcut(s string) { e.set(func() { e.shortcut = s }) }

// SetIcon sets the path of the bitmap drawn next to the title; empty removes it.
func (e *Entry) SetIcon(path string) { e.set(func() { e.icon = path }) }

func (e *Entry) SetState(checked bool) { e.set(func() { e.checked = checked }) }

func (e *Entry) SetEnabled(enabled bool) { e.set(func() { e.enabled = enabled }) }

// SetCallback binds cb; an entry without a callback is shown grayed.
func (e *Entry) SetCallback(cb Callback) { e.set(func() { e.callback = cb }) }

// Selectable reports whether a selection of the entry runs its callback.
func (e *Entry) Selectable() bool {
	return e.model != nil && e.kind == KindItem && e.enabled && e.callback != nil
}

// Invoke runs the callback when the entry is selectable.
func (e *Entry) Invoke() bool {
	if !e.Selectable() {
		return false
	}
	e.callback(e)
	return true
}

// Keys returns the child keys in display order.
func (e *Entry) Keys() []string {
	return append([]string(nil), e.order...)
}

// Len counts direct children.
func (e *Entry) Len() int { return len(e.order) }

// Children returns the direct children in display order.
func (e *Entry) Children() []*Entry {
	if e.model == nil {
		return nil
	}
	out := make([]*Entry, 0, len(e.order))
	for _, key := range e.order {
		if c, ok := e.model.entries[e.children[key]]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Last returns the last child or nil.
func (e *Entry) Last() *Entry {
	if e.model == nil || len(e.order) == 0 {
		return nil
	}
	return e.model.entries[e.children[e.order[len(e.order)-1]]]
}

// Get returns the child stored under key.
func (e *Entry) Get(key string) *Entry {
	if e.model == nil {
		return nil
	}
	id, ok := e.children[key]
	if !ok {
		return nil
	}
	return e.model.entries[id]
}

// Lookup follows a path of keys without creating anything.
func (e *Entry) Lookup(path ...string) *Entry {
	cur := e
	for _, key := range path {
		if cur = cur.Get(key); cur == nil {
			return nil
		}
	}
	return cur
}

// Ensure follows a path of keys, creating the missing suffix. Missing
// intermediate steps become submenus, a missing leaf becomes an inert item.
func (e *Entry) Ensure(path ...string) *Entry {
	if e.model == nil {
		return nil
	}
	cur := e
	e.model.update(func() {
		for i, key := range path {
			next := cur.Get(key)
			if next == nil {
				kind := KindSubmenu
				if i == len(path)-1 {
					kind = KindItem
				}
				next = cur.attach(cur.model.newEntry(kind, key, key))
			}
			cur = next
		}
	})
	return cur
}

// attach appends child under its key. An existing child with the same key is
// released and replaced in place.
func (e *Entry) attach(child *Entry) *Entry {
	child.parent = e.id
	if old, ok := e.children[child.key]; ok {
		if c, ok := e.model.entries[old]; ok {
			e.model.release(c)
		}
	} else {
		e.order = append(e.order, child.key)
	}
	e.children[child.key] = child.id
	return child
}

// AddItem appends an item built from it and returns its handle.
func (e *Entry) AddItem(it Item) *Entry {
	if e.model == nil {
		return nil
	}
	var child *Entry
	e.model.update(func() { child = e.attach(e.model.fromItem(it)) })
	return child
}

// AddSubmenu appends an empty submenu.
func (e *Entry) AddSubmenu(title string) *Entry {
	if e.model == nil {
		return nil
	}
	var child *Entry
	e.model.update(func() { child = e.attach(e.model.newEntry(KindSubmenu, title, title)) })
	return child
}

// AddSeparator appends a separator.
func (e *Entry) AddSeparator() *Entry {
	if e.model == nil {
		return nil
	}
	var child *Entry
	e.model.update(func() { child = e.attach(e.model.newSeparator()) })
	return child
}

func (m *Model) newSeparator() *Entry {
	e := m.newEntry(KindSeparator, "", "-")
	e.key = fmt.Sprintf("-%d", e.id)
	return e
}

// SetDefault returns the child under key, adding it from it when missing.
func (e *Entry) SetDefault(key string, it Item) *Entry {
	if c := e.Get(key); c != nil {
		return c
	}
	it.Key = key
	return e.AddItem(it)
}

// Remove deletes the child stored under key and all its descendants.
func (e *Entry) Remove(key string) bool {
	if e.model == nil {
		return false
	}
	id, ok := e.children[key]
	if !ok {
		return false
	}
	e.model.update(func() {
		if c, ok := e.model.entries[id]; ok {
			e.model.release(c)
		}
		delete(e.children, key)
		for i, k := range e.order {
			if k == key {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
	})
	return true
}

// Clear removes every child.
func (e *Entry) Clear() {
	if e.model == nil {
		return
	}
	e.model.update(e.clear)
}

func (e *Entry) clear() {
	for _, key := range e.order {
		if c, ok := e.model.entries[e.children[key]]; ok {
			e.model.release(c)
		}
	}
	e.order = nil
	e.children = make(map[string]ID)
}

// Append parses declarative values and appends them in order. Sections that
// cannot be interpreted are skipped and reported in the returned ParseErrors;
// everything else is still added.
func (e *Entry) Append(values ...any) error {
	if e.model == nil {
		return nil
	}
	var errs ParseErrors
	e.model.update(func() {
		for _, v := range values {
			e.model.appendValue(e, v, nil, &errs)
		}
	})
	return errs.OrNil()
}

// Update replaces all children with the declarative values.
func (e *Entry) Update(values ...any) error {
	if e.model == nil {
		return nil
	}
	var errs ParseErrors
	e.model.update(func() {
		e.clear()
		for _, v := range values {
			e.model.appendValue(e, v, nil, &errs)
		}
	})
	return errs.OrNil()
}
