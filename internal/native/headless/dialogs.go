package headless

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/username/ruwps/internal/native"
)

// Average character cell of the dialog font, in dialog units.
const (
	charWidth  = 4
	lineHeight = 8
)

// Dialog is a modeless dialog created from a template.
type Dialog struct {
	b         *Backend
	Hwnd      native.HWND
	Owner     native.HWND
	Template  native.DialogTemplate
	proc      native.DialogProc
	texts     map[int]string
	destroyed bool
}

// Open reports whether the dialog window still exists.
func (d *Dialog) Open() bool {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	return !d.destroyed
}

// Click posts a BN_CLICKED notification for the button with the given id.
func (d *Dialog) Click(id int) {
	_ = d.b.PostMessage(d.Hwnd, native.WM_COMMAND, native.MAKELONG(uint16(id), native.BN_CLICKED), 0)
}

// Close posts WM_CLOSE, as the title bar close box does.
func (d *Dialog) Close() {
	_ = d.b.PostMessage(d.Hwnd, native.WM_CLOSE, 0, 0)
}

// Type replaces the text of a control, as typing into it would.
func (d *Dialog) Type(id int, text string) {
	d.b.SetDlgItemText(d.Hwnd, id, text)
}

// Text returns the current text of a control.
func (d *Dialog) Text(id int) string {
	return d.b.GetDlgItemText(d.Hwnd, id)
}

// Buttons lists the button captions in template order.
func (d *Dialog) Buttons() []string {
	var out []string
	for _, c := range d.Template.Controls {
		if c.Class == native.ClassButton {
			out = append(out, c.Caption)
		}
	}
	return out
}

func (b *Backend) CreateDialog(owner native.HWND, tpl *native.DialogTemplate, proc native.DialogProc) (native.HWND, error) {
	b.mu.Lock()
	if err := b.fail("CreateDialog"); err != nil {
		b.mu.Unlock()
		return 0, err
	}
	hwnd := native.HWND(b.handle())
	d := &Dialog{b: b, Hwnd: hwnd, Owner: owner, Template: *tpl, proc: proc, texts: make(map[int]string)}
	d.Template.Controls = append([]native.DialogControl(nil), tpl.Controls...)
	for _, c := range tpl.Controls {
		d.texts[c.ID] = c.Caption
	}
	b.windows[hwnd] = &window{class: "#32770", title: tpl.Caption, dialog: d, visible: true, enabled: true}
	b.dialogs = append(b.dialogs, d)
	b.foreground = hwnd
	hook := b.onDialog
	b.mu.Unlock()

	proc(hwnd, native.WM_INITDIALOG, 0, 0)
	if hook != nil {
		hook(d)
	}
	return hwnd, nil
}

// IsDialogMessage routes messages addressed to a live dialog to its
// procedure.
func (b *Backend) IsDialogMessage(dlg native.HWND, msg *native.Msg) bool {
	if msg.Hwnd != dlg {
		return false
	}
	b.mu.Lock()
	w, ok := b.windows[dlg]
	if !ok || w.destroyed || w.dialog == nil {
		b.mu.Unlock()
		return false
	}
	d := w.dialog
	b.mu.Unlock()
	d.proc(dlg, msg.Message, msg.WParam, msg.LParam)
	return true
}

func (b *Backend) GetDlgItemText(dlg native.HWND, id int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[dlg]; ok && w.dialog != nil {
		return w.dialog.texts[id]
	}
	return ""
}

func (b *Backend) SetDlgItemText(dlg native.HWND, id int, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[dlg]; ok && w.dialog != nil {
		w.dialog.texts[id] = text
	}
}

// Dialogs returns every dialog created so far, oldest first.
func (b *Backend) Dialogs() []*Dialog {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Dialog(nil), b.dialogs...)
}

// MeasureText word-wraps text assuming every cell is charWidth dialog units
// wide and every line lineHeight units high.
func (b *Backend) MeasureText(text string, font native.Font, width int) int {
	cols := width / charWidth
	if cols < 1 {
		cols = 1
	}
	lines := 0
	for _, para := range strings.Split(text, "\n") {
		lines += wrappedLines(para, cols)
	}
	return lines * lineHeight
}

func wrappedLines(para string, cols int) int {
	words := strings.Fields(para)
	if len(words) == 0 {
		return 1
	}
	lines, used := 1, 0
	for _, word := range words {
		w := runewidth.StringWidth(word)
		switch {
		case used == 0:
			used = w
		case used+1+w <= cols:
			used += 1 + w
		default:
			lines++
			used = w
		}
		for used > cols {
			lines++
			used -= cols
		}
	}
	return lines
}

func (b *Backend) ButtonLabel(id int) string {
	switch id {
	case native.IDOK:
		return "OK"
	case native.IDCANCEL:
		return "Cancel"
	}
	return ""
}
