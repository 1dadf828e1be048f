package dialog

import (
	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native"
)

const (
	alertWidth  = 200
	alertTextY  = 14
	alertChrome = 50

	alertStyle     = 0x94C809C5
	alertExStyle   = native.WS_EX_CONTROLPARENT | native.WS_EX_WINDOWEDGE | native.WS_EX_DLGMODALFRAME
	alertTextStyle = native.WS_CHILD | native.WS_VISIBLE | native.WS_GROUP | native.SS_EDITCONTROL | native.SS_NOPREFIX
)

// Alert is a message box with one or two buttons.
type Alert struct {
	Title   string
	Message string
	Buttons []string
}

// Template lays the alert out. The dialog is as tall as the word-wrapped
// message requires.
func (a *Alert) Template(measure native.Dialogs) *native.DialogTemplate {
	textWidth := alertWidth - 2*Margin
	textHeight := measure.MeasureText(a.Message, DefaultFont, textWidth)
	height := alertChrome + textHeight

	tpl := &native.DialogTemplate{
		Class:   "#32770",
		Caption: a.Title,
		Font:    DefaultFont,
		Rect:    native.Rect{W: alertWidth, H: height},
		Style:   alertStyle,
		ExStyle: alertExStyle,
	}
	tpl.Controls = append(tpl.Controls, native.DialogControl{
		ID:      -1,
		Class:   native.ClassStatic,
		Caption: a.Message,
		Rect:    native.Rect{X: Margin, Y: alertTextY, W: textWidth, H: textHeight},
		Style:   alertTextStyle,
	})
	tpl.Controls = append(tpl.Controls, buttonRow(a.Buttons, alertWidth, height)...)
	return tpl
}

func (a *Alert) dialog(host Host, logger *zap.Logger) *Dialog {
	if len(a.Buttons) == 0 {
		a.Buttons = Labels(host.Backend(), "", "", false)
	}
	return New(host, a.Template(host.Backend()), len(a.Buttons), logger)
}

// Show blocks until the alert is closed and returns the button index. The
// close box counts as the last button.
func (a *Alert) Show(host Host, logger *zap.Logger) (int, error) {
	return a.dialog(host, logger).ShowSync()
}

// ShowAsync opens the alert and calls done with the button index once it
// closes.
func (a *Alert) ShowAsync(host Host, logger *zap.Logger, done func(index int)) (*Dialog, error) {
	d := a.dialog(host, logger)
	if done != nil {
		d.OnEnd = func(_ native.HWND, index int) { done(index) }
	}
	if err := d.ShowAsync(); err != nil {
		return nil, err
	}
	return d, nil
}
