//go:build windows

package win32

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/username/ruwps/internal/native"
)

func TestShellGUID(t *testing.T) {
	id := uuid.MustParse("6f1e2d3c-4b5a-6978-8a9b-0c1d2e3f4a5b")
	g := shellGUID(id)
	if g.String() != "{6F1E2D3C-4B5A-6978-8A9B-0C1D2E3F4A5B}" {
		t.Errorf("shellGUID() = %s", g.String())
	}
}

func TestScale(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x >= 2 {
				src.Set(x, y, color.NRGBA{R: 255, A: 255})
			}
		}
	}
	tests := []struct {
		name string
		size int
		want image.Rectangle
	}{
		{name: "downscale", size: 2, want: image.Rect(0, 0, 2, 2)},
		{name: "upscale", size: 8, want: image.Rect(0, 0, 8, 8)},
		{name: "natural", size: 0, want: image.Rect(0, 0, 4, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scale(src, tt.size)
			if got.Bounds() != tt.want {
				t.Fatalf("bounds = %v, want %v", got.Bounds(), tt.want)
			}
			right := got.NRGBAAt(got.Bounds().Dx()-1, 0)
			left := got.NRGBAAt(0, 0)
			if right.R != 255 || left.A != 0 {
				t.Errorf("left = %v, right = %v", left, right)
			}
		})
	}
}

func TestUTF16TruncatesAtNUL(t *testing.T) {
	if got := windows.UTF16PtrToString(utf16("abc\x00def")); got != "abc" {
		t.Errorf("utf16() = %q", got)
	}
}

func TestTranslateAccelerator(t *testing.T) {
	if err := procTranslateAcceleratorW.Find(); err != nil {
		t.Fatalf("TranslateAcceleratorW not found: %v", err)
	}
	b, err := New(zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	table, err := b.CreateAcceleratorTable([]native.Accel{{Virt: native.FVIRTKEY | native.FCONTROL, Key: 'R', Cmd: 1}})
	if err != nil {
		t.Fatal(err)
	}
	defer b.DestroyAcceleratorTable(table)

	msg := &native.Msg{Message: native.WM_NULL}
	if b.TranslateAccelerator(0, 0, msg) {
		t.Error("translated without a table")
	}
	if b.TranslateAccelerator(0, table, msg) {
		t.Error("translated a message that is not a key press")
	}
}
