package dialog

import "github.com/username/ruwps/internal/native"

// Layout metrics in dialog units.
const (
	Margin       = 7
	ButtonWidth  = 50
	ButtonHeight = 12
	ButtonGap    = 5
)

// DefaultFont is the font of every synthesized dialog.
var DefaultFont = native.Font{Face: "Segoe UI", PointSize: 9}

const buttonStyle = native.WS_CHILD | native.WS_VISIBLE | native.WS_GROUP | native.WS_TABSTOP | native.BS_TEXT

// ButtonRowWidth is the narrowest dialog that fits n buttons.
func ButtonRowWidth(n int) int {
	if n < 1 {
		return 2 * Margin
	}
	return 2*Margin + n*ButtonWidth + (n-1)*ButtonGap
}

// buttonRow right-aligns the buttons along the bottom edge. Button ids equal
// their position and the first one is the default push button.
func buttonRow(labels []string, width, height int) []native.DialogControl {
	n := len(labels)
	x := width - Margin - n*ButtonWidth - (n-1)*ButtonGap
	y := height - Margin - ButtonHeight
	out := make([]native.DialogControl, 0, n)
	for i, label := range labels {
		style := uint32(buttonStyle | native.BS_PUSHBUTTON)
		if i == 0 {
			style = buttonStyle | native.BS_DEFPUSHBUTTON
		}
		out = append(out, native.DialogControl{
			ID:      i,
			Class:   native.ClassButton,
			Caption: label,
			Rect:    native.Rect{X: x, Y: y, W: ButtonWidth, H: ButtonHeight},
			Style:   style,
		})
		x += ButtonWidth + ButtonGap
	}
	return out
}

// Labels resolves button captions: an empty ok uses the system caption, and
// a cancel button is added when cancel is set or withCancel is true.
func Labels(sys native.Dialogs, ok, cancel string, withCancel bool) []string {
	if ok == "" {
		ok = sys.ButtonLabel(native.IDOK)
	}
	labels := []string{ok}
	switch {
	case cancel != "":
		labels = append(labels, cancel)
	case withCancel:
		labels = append(labels, sys.ButtonLabel(native.IDCANCEL))
	}
	return labels
}
