package native

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// Predefined dialog control classes.
const (
	ClassButton = "BUTTON"
	ClassEdit   = "EDIT"
	ClassStatic = "STATIC"
)

// Rect is a rectangle in dialog units.
type Rect struct {
	X, Y, W, H int
}

// Font is the dialog font.
type Font struct {
	Face      string
	PointSize int
}

// DialogControl is one child control of a dialog template.
type DialogControl struct {
	ID      int
	Class   string
	Caption string
	Rect    Rect
	Style   uint32
}

// DialogTemplate is an in-memory dialog resource.
type DialogTemplate struct {
	// Class is the dialog window class; empty, "#32770" and "DIALOGEX"
	// all select the system dialog class.
	Class    string
	Caption  string
	Font     Font
	Rect     Rect
	Style    uint32
	ExStyle  uint32
	Controls []DialogControl
}

// Control returns the control with the given id.
func (t *DialogTemplate) Control(id int) (DialogControl, bool) {
	for _, c := range t.Controls {
		if c.ID == id {
			return c, true
		}
	}
	return DialogControl{}, false
}

var controlAtoms = map[string]uint16{
	ClassButton: 0x0080,
	ClassEdit:   0x0081,
	ClassStatic: 0x0082,
}

// MarshalBinary encodes the template as a DLGTEMPLATEEX resource followed by
// one DLGITEMTEMPLATEEX per control, ready for CreateDialogIndirectParam.
func (t *DialogTemplate) MarshalBinary() ([]byte, error) {
	if len(t.Controls) > 0xFFFF {
		return nil, fmt.Errorf("too many dialog controls: %d", len(t.Controls))
	}

	var buf bytes.Buffer
	w := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	style := t.Style
	if t.Font.Face != "" {
		style |= DS_SETFONT
	}

	w(uint16(1))      // dlgVer
	w(uint16(0xFFFF)) // signature
	w(uint32(0))      // helpID
	w(t.ExStyle)
	w(style)
	w(uint16(len(t.Controls)))
	w(int16(t.Rect.X))
	w(int16(t.Rect.Y))
	w(int16(t.Rect.W))
	w(int16(t.Rect.H))
	w(uint16(0)) // no menu
	switch t.Class {
	case "", "#32770", "DIALOGEX":
		w(uint16(0))
	default:
		writeString(&buf, t.Class)
	}
	writeString(&buf, t.Caption)
	if style&DS_SETFONT != 0 {
		w(uint16(t.Font.PointSize))
		w(uint16(400)) // FW_NORMAL
		w(uint8(0))    // italic
		w(uint8(1))    // DEFAULT_CHARSET
		writeString(&buf, t.Font.Face)
	}

	for _, c := range t.Controls {
		align(&buf, 4)
		w(uint32(0)) // helpID
		w(uint32(0)) // exStyle
		w(c.Style)
		w(int16(c.Rect.X))
		w(int16(c.Rect.Y))
		w(int16(c.Rect.W))
		w(int16(c.Rect.H))
		w(int32(c.ID))
		if atom, ok := controlAtoms[c.Class]; ok {
			w(uint16(0xFFFF))
			w(atom)
		} else {
			writeString(&buf, c.Class)
		}
		writeString(&buf, c.Caption)
		w(uint16(0)) // no creation data
	}
	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) {
	for _, r := range utf16.Encode([]rune(s)) {
		_ = binary.Write(buf, binary.LittleEndian, r)
	}
	_ = binary.Write(buf, binary.LittleEndian, uint16(0))
}

func align(buf *bytes.Buffer, n int) {
	for buf.Len()%n != 0 {
		buf.WriteByte(0)
	}
}
