package menu

import (
	"fmt"
	"strings"
)

// Item is the declarative form of an actionable entry.
type Item struct {
	Title    string
	Key      string // defaults to Title
	Shortcut string
	Icon     string
	Checked  bool
	Disabled bool
	Callback Callback
}

// Sub pairs a submenu title with its children, in declaration order.
type Sub struct {
	Title string
	Items []any
}

// Separator is the explicit separator marker. A nil value means the same.
type Separator struct{}

// ParseError reports a declarative value that is not one of the accepted
// shapes: a string, an Item, a Sub, nil or Separator, a single-key map from a
// submenu title to its children, or a slice of any of these.
type ParseError struct {
	Path   []string
	Value  any
	Reason string
}

func (e *ParseError) Error() string {
	where := "menu"
	if len(e.Path) > 0 {
		where = "menu " + strings.Join(e.Path, " > ")
	}
	return fmt.Sprintf("%s: cannot use %T value: %s", where, e.Value, e.Reason)
}

// ParseErrors collects every section skipped while appending.
type ParseErrors []*ParseError

func (es ParseErrors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d menu errors: %s", len(es), strings.Join(msgs, "; "))
}

func (es ParseErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// OrNil returns nil for an empty collection so callers can compare with nil.
func (es ParseErrors) OrNil() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

func (m *Model) fromItem(it Item) *Entry {
	key := it.Key
	if key == "" {
		key = it.Title
	}
	title, shortcut := it.Title, it.Shortcut
	if i := strings.IndexByte(title, '\t'); i >= 0 {
		if shortcut == "" {
			shortcut = strings.TrimSpace(title[i+1:])
		}
		title = title[:i]
		if it.Key == "" {
			key = title
		}
	}
	e := m.newEntry(KindItem, key, title)
	e.shortcut = shortcut
	e.icon = it.Icon
	e.checked = it.Checked
	e.enabled = !it.Disabled
	e.callback = it.Callback
	return e
}

func (m *Model) appendValue(parent *Entry, v any, path []string, errs *ParseErrors) {
	switch v := v.(type) {
	case nil, Separator, *Separator:
		parent.attach(m.newSeparator())
	case string:
		parent.attach(m.newEntry(KindItem, v, v))
	case Item:
		parent.attach(m.fromItem(v))
	case *Item:
		if v == nil {
			parent.attach(m.newSeparator())
			return
		}
		parent.attach(m.fromItem(*v))
	case Sub:
		m.appendSub(parent, v.Title, v.Items, path, errs)
	case *Sub:
		if v == nil {
			parent.attach(m.newSeparator())
			return
		}
		m.appendSub(parent, v.Title, v.Items, path, errs)
	case []any:
		for _, c := range v {
			m.appendValue(parent, c, path, errs)
		}
	case []string:
		for _, c := range v {
			m.appendValue(parent, c, path, errs)
		}
	case []Item:
		for _, c := range v {
			m.appendValue(parent, c, path, errs)
		}
	case map[string]any:
		if len(v) != 1 {
			*errs = append(*errs, &ParseError{Path: path, Value: v, Reason: fmt.Sprintf("submenu maps need exactly one key, got %d", len(v))})
			return
		}
		for title, children := range v {
			m.appendSub(parent, title, children, path, errs)
		}
	case map[any]any:
		if len(v) != 1 {
			*errs = append(*errs, &ParseError{Path: path, Value: v, Reason: fmt.Sprintf("submenu maps need exactly one key, got %d", len(v))})
			return
		}
		for k, children := range v {
			title, ok := k.(string)
			if !ok {
				*errs = append(*errs, &ParseError{Path: path, Value: v, Reason: fmt.Sprintf("submenu title must be a string, got %T", k)})
				return
			}
			m.appendSub(parent, title, children, path, errs)
		}
	default:
		*errs = append(*errs, &ParseError{Path: path, Value: v, Reason: "unsupported menu shape"})
	}
}

// appendSub adds a submenu and its children. A failing child section leaves
// the submenu with whatever parsed cleanly.
func (m *Model) appendSub(parent *Entry, title string, children any, path []string, errs *ParseErrors) {
	sub := parent.attach(m.newEntry(KindSubmenu, title, title))
	if children == nil {
		return
	}
	sub.model.appendValue(sub, children, append(append([]string(nil), path...), title), errs)
}
