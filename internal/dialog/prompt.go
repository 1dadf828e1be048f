package dialog

import (
	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native"
)

// EditID is the control id of the prompt's text field. It stays clear of the
// button ids and of IDOK/IDCANCEL.
const EditID = 1000

const (
	// DefaultPromptWidth is the requested prompt width in pixels; dialog
	// units are half of it.
	DefaultPromptWidth = 320
	promptHeight       = 60

	promptStyle     = native.WS_POPUP | native.WS_VISIBLE | native.WS_CAPTION | native.WS_SYSMENU | native.DS_MODALFRAME | native.DS_SETFONT
	promptTextStyle = native.WS_CHILD | native.WS_VISIBLE | native.WS_GROUP
	promptEditStyle = native.WS_CHILD | native.WS_VISIBLE | native.WS_BORDER | native.ES_AUTOHSCROLL
)

// Prompt is a single-line input box.
type Prompt struct {
	Title   string
	Message string
	Default string
	Buttons []string
	// Width is the requested width in pixels; zero means DefaultPromptWidth.
	Width int
}

// Result is what a prompt returns once closed.
type Result struct {
	Index int
	Text  string
}

// Template lays the prompt out. The width grows to fit the button row.
func (p *Prompt) Template() *native.DialogTemplate {
	req := p.Width
	if req <= 0 {
		req = DefaultPromptWidth
	}
	width := req / 2
	if row := ButtonRowWidth(len(p.Buttons)); width < row {
		width = row
	}
	tpl := &native.DialogTemplate{
		Class:   "DIALOGEX",
		Caption: p.Title,
		Font:    DefaultFont,
		Rect:    native.Rect{X: 200, Y: 200, W: width, H: promptHeight},
		Style:   promptStyle,
	}
	tpl.Controls = append(tpl.Controls,
		native.DialogControl{
			ID:      -1,
			Class:   native.ClassStatic,
			Caption: p.Message,
			Rect:    native.Rect{X: Margin, Y: Margin, W: width - 2*Margin, H: 8},
			Style:   promptTextStyle,
		},
		native.DialogControl{
			ID:    EditID,
			Class: native.ClassEdit,
			Rect:  native.Rect{X: Margin, Y: 18, W: width - 2*Margin, H: 12},
			Style: promptEditStyle,
		},
	)
	tpl.Controls = append(tpl.Controls, buttonRow(p.Buttons, width, promptHeight)...)
	return tpl
}

func (p *Prompt) dialog(host Host, logger *zap.Logger, res *Result) *Dialog {
	if len(p.Buttons) == 0 {
		p.Buttons = Labels(host.Backend(), "", "", false)
	}
	b := host.Backend()
	d := New(host, p.Template(), len(p.Buttons), logger)
	res.Text = p.Default
	d.OnInit = func(hwnd native.HWND) {
		if p.Default != "" {
			b.SetDlgItemText(hwnd, EditID, p.Default)
		}
	}
	d.OnEnd = func(hwnd native.HWND, index int) {
		res.Index = index
		if hwnd != 0 {
			res.Text = b.GetDlgItemText(hwnd, EditID)
		}
	}
	return d
}

// Show blocks until the prompt is closed and returns the button index with
// the text of the field at that moment.
func (p *Prompt) Show(host Host, logger *zap.Logger) (Result, error) {
	var res Result
	if _, err := p.dialog(host, logger, &res).ShowSync(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// ShowAsync opens the prompt and calls done once it closes.
func (p *Prompt) ShowAsync(host Host, logger *zap.Logger, done func(Result)) (*Dialog, error) {
	res := &Result{}
	d := p.dialog(host, logger, res)
	end := d.OnEnd
	d.OnEnd = func(hwnd native.HWND, index int) {
		end(hwnd, index)
		if done != nil {
			done(*res)
		}
	}
	if err := d.ShowAsync(); err != nil {
		return nil, err
	}
	return d, nil
}
