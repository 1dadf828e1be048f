//go:build windows

package win32

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/lxn/win"

	"github.com/username/ruwps/internal/native"
)

const (
	miimBitmap = 0x0080

	tpmRightButton = 0x0002
	tpmBottomAlign = 0x0020
	tpmReturnCmd   = 0x0100

	imageBitmap    = 0
	lrLoadFromFile = 0x0010

	biRGB        = 0
	dibRGBColors = 0
)

type menuItemInfo struct {
	CbSize        uint32
	FMask         uint32
	FType         uint32
	FState        uint32
	WID           uint32
	HSubMenu      uintptr
	HbmpChecked   uintptr
	HbmpUnchecked uintptr
	DwItemData    uintptr
	DwTypeData    *uint16
	Cch           uint32
	HbmpItem      uintptr
}

type accel struct {
	FVirt uint8
	_     uint8
	Key   uint16
	Cmd   uint16
}

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

var (
	procSetMenu          = user32.NewProc("SetMenu")
	procDrawMenuBar      = user32.NewProc("DrawMenuBar")
	procTrackPopupMenuEx = user32.NewProc("TrackPopupMenuEx")
	procGetMenuItemCount = user32.NewProc("GetMenuItemCount")
	procSetMenuItemInfoW = user32.NewProc("SetMenuItemInfoW")
)

func (b *Backend) CreateMenu() (native.HMENU, error) {
	m := win.CreateMenu()
	if m == 0 {
		return 0, lastError("CreateMenu")
	}
	return native.HMENU(m), nil
}

func (b *Backend) CreatePopupMenu() (native.HMENU, error) {
	m := win.CreatePopupMenu()
	if m == 0 {
		return 0, lastError("CreatePopupMenu")
	}
	return native.HMENU(m), nil
}

func (b *Backend) AppendMenu(menu native.HMENU, item native.MenuItem) error {
	id := uintptr(item.ID)
	if item.Flags&native.MF_POPUP != 0 {
		id = uintptr(item.Submenu)
	}
	var caption uintptr
	if item.Flags&native.MF_SEPARATOR == 0 {
		caption = uintptr(unsafe.Pointer(utf16(item.Caption)))
	}
	r, _, err := procAppendMenuW.Call(uintptr(menu), uintptr(item.Flags), id, caption)
	if r == 0 {
		return lastError("AppendMenu", err)
	}
	if item.Bitmap == 0 {
		return nil
	}
	count, _, _ := procGetMenuItemCount.Call(uintptr(menu))
	mii := menuItemInfo{FMask: miimBitmap, HbmpItem: uintptr(item.Bitmap)}
	mii.CbSize = uint32(unsafe.Sizeof(mii))
	if r, _, err := procSetMenuItemInfoW.Call(uintptr(menu), count-1, 1, uintptr(unsafe.Pointer(&mii))); r == 0 {
		return lastError("SetMenuItemInfo", err)
	}
	return nil
}

func (b *Backend) DestroyMenu(menu native.HMENU) {
	win.DestroyMenu(win.HMENU(menu))
}

func (b *Backend) SetMenuBar(hwnd native.HWND, menu native.HMENU) error {
	if r, _, err := procSetMenu.Call(uintptr(hwnd), uintptr(menu)); r == 0 {
		return lastError("SetMenu", err)
	}
	procDrawMenuBar.Call(uintptr(hwnd))
	return nil
}

func (b *Backend) TrackPopupMenu(menu native.HMENU, hwnd native.HWND, pt native.Point) uint32 {
	flags := uintptr(tpmReturnCmd | tpmRightButton | tpmBottomAlign)
	r, _, _ := procTrackPopupMenuEx.Call(uintptr(menu), flags,
		uintptr(pt.X), uintptr(pt.Y), uintptr(hwnd), 0)
	// Makes the popup dismiss correctly when the user clicks elsewhere.
	win.PostMessage(win.HWND(hwnd), native.WM_NULL, 0, 0)
	return uint32(r)
}

func (b *Backend) CreateAcceleratorTable(accels []native.Accel) (native.HACCEL, error) {
	if len(accels) == 0 {
		return 0, nil
	}
	table := make([]accel, len(accels))
	for i, a := range accels {
		table[i] = accel{FVirt: a.Virt, Key: a.Key, Cmd: a.Cmd}
	}
	r, _, err := procCreateAcceleratorTableW.Call(uintptr(unsafe.Pointer(&table[0])), uintptr(len(table)))
	if r == 0 {
		return 0, lastError("CreateAcceleratorTable", err)
	}
	return native.HACCEL(r), nil
}

func (b *Backend) DestroyAcceleratorTable(a native.HACCEL) {
	if a != 0 {
		procDestroyAcceleratorTable.Call(uintptr(a))
	}
}

// LoadBitmap loads a menu image scaled to size pixels. BMP files go through
// LoadImage; PNG, JPEG and GIF are decoded and copied into a 32bpp DIB.
func (b *Backend) LoadBitmap(path string, size int) (native.HBITMAP, error) {
	if strings.EqualFold(filepath.Ext(path), ".bmp") {
		h := win.LoadImage(0, utf16(path), imageBitmap, int32(size), int32(size), lrLoadFromFile)
		if h == 0 {
			return 0, lastError("LoadImage")
		}
		return native.HBITMAP(h), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, native.Fail("LoadBitmap", err)
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return 0, native.Fail("LoadBitmap", fmt.Errorf("failed to decode %s: %w", path, err))
	}
	return createDIB(scale(src, size))
}

func (b *Backend) DeleteBitmap(bmp native.HBITMAP) {
	if bmp != 0 {
		win.DeleteObject(win.HGDIOBJ(bmp))
	}
}

// scale resizes src to a size x size square with nearest-neighbour
// sampling. A non-positive size keeps the natural size.
func scale(src image.Image, size int) *image.NRGBA {
	bounds := src.Bounds()
	if size <= 0 {
		dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
		return dst
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		sy := bounds.Min.Y + y*bounds.Dy()/size
		for x := 0; x < size; x++ {
			sx := bounds.Min.X + x*bounds.Dx()/size
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

// createDIB copies img into a top-down premultiplied BGRA section, the
// format menus expect for alpha-blended item bitmaps.
func createDIB(img *image.NRGBA) (native.HBITMAP, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	hdr := bitmapInfoHeader{
		BiWidth:       int32(w),
		BiHeight:      -int32(h),
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: biRGB,
	}
	hdr.BiSize = uint32(unsafe.Sizeof(hdr))

	var bits unsafe.Pointer
	r, _, err := procCreateDIBSection.Call(0, uintptr(unsafe.Pointer(&hdr)), dibRGBColors,
		uintptr(unsafe.Pointer(&bits)), 0, 0)
	if r == 0 || bits == nil {
		return 0, lastError("CreateDIBSection", err)
	}
	dst := unsafe.Slice((*byte)(bits), w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := img.PixOffset(x, y)
			a := uint32(img.Pix[s+3])
			d := (y*w + x) * 4
			dst[d+0] = byte(uint32(img.Pix[s+2]) * a / 255)
			dst[d+1] = byte(uint32(img.Pix[s+1]) * a / 255)
			dst[d+2] = byte(uint32(img.Pix[s+0]) * a / 255)
			dst[d+3] = byte(a)
		}
	}
	return native.HBITMAP(r), nil
}
