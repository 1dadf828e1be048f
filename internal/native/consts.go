package native

// Window messages
const (
	WM_NULL            = 0x0000
	WM_CLOSE           = 0x0010
	WM_QUIT            = 0x0012
	WM_SETTINGCHANGE   = 0x001A
	WM_CONTEXTMENU     = 0x007B
	WM_NCPAINT         = 0x0085
	WM_NCACTIVATE      = 0x0086
	WM_UAHDRAWMENU     = 0x0091
	WM_UAHDRAWMENUITEM = 0x0092
	WM_KEYDOWN         = 0x0100
	WM_SYSKEYDOWN      = 0x0104
	WM_INITDIALOG      = 0x0110
	WM_COMMAND         = 0x0111
	WM_TIMER           = 0x0113
	WM_LBUTTONUP       = 0x0202
	WM_RBUTTONUP       = 0x0205
	WM_USER            = 0x0400
	WM_APP             = 0x8000
)

// Notification code carried in HIWORD(wParam) of WM_COMMAND.
const BN_CLICKED = 0

// Menu flags
const (
	MF_STRING    = 0x0000
	MF_GRAYED    = 0x0001
	MF_CHECKED   = 0x0008
	MF_POPUP     = 0x0010
	MF_SEPARATOR = 0x0800
)

// Accelerator modifiers
const (
	FVIRTKEY = 0x01
	FSHIFT   = 0x04
	FCONTROL = 0x08
	FALT     = 0x10
)

// Virtual key codes used by menu shortcuts.
const (
	VK_BACK      = 0x08
	VK_TAB       = 0x09
	VK_RETURN    = 0x0D
	VK_ESCAPE    = 0x1B
	VK_SPACE     = 0x20
	VK_PRIOR     = 0x21
	VK_NEXT      = 0x22
	VK_END       = 0x23
	VK_HOME      = 0x24
	VK_LEFT      = 0x25
	VK_UP        = 0x26
	VK_RIGHT     = 0x27
	VK_DOWN      = 0x28
	VK_INSERT    = 0x2D
	VK_DELETE    = 0x2E
	VK_F1        = 0x70
	VK_OEM_PLUS  = 0xBB
	VK_OEM_MINUS = 0xBD
)

// Shell_NotifyIcon operations
const (
	NIM_ADD        = 0
	NIM_MODIFY     = 1
	NIM_DELETE     = 2
	NIM_SETFOCUS   = 3
	NIM_SETVERSION = 4
)

// NotifyIconData flags
const (
	NIF_MESSAGE  = 0x01
	NIF_ICON     = 0x02
	NIF_TIP      = 0x04
	NIF_STATE    = 0x08
	NIF_INFO     = 0x10
	NIF_GUID     = 0x20
	NIF_REALTIME = 0x40
	NIF_SHOWTIP  = 0x80
)

// Balloon icon flags
const (
	NIIF_NONE    = 0x00
	NIIF_INFO    = 0x01
	NIIF_WARNING = 0x02
	NIIF_ERROR   = 0x03
	NIIF_NOSOUND = 0x10
)

const (
	NIS_HIDDEN     = 0x1
	NIS_SHAREDICON = 0x2

	NOTIFYICON_VERSION_4 = 4
)

// Tray callback events, delivered in LOWORD(lParam) with NOTIFYICON_VERSION_4.
const (
	NIN_SELECT           = WM_USER + 0
	NIN_KEYSELECT        = WM_USER + 1
	NIN_BALLOONSHOW      = WM_USER + 2
	NIN_BALLOONHIDE      = WM_USER + 3
	NIN_BALLOONTIMEOUT   = WM_USER + 4
	NIN_BALLOONUSERCLICK = WM_USER + 5
	NIN_POPUPOPEN        = WM_USER + 6
	NIN_POPUPCLOSE       = WM_USER + 7
)

// Standard dialog button ids
const (
	IDOK     = 1
	IDCANCEL = 2
)

// Window and dialog styles
const (
	WS_POPUP        = 0x80000000
	WS_CHILD        = 0x40000000
	WS_VISIBLE      = 0x10000000
	WS_CLIPSIBLINGS = 0x04000000
	WS_CAPTION      = 0x00C00000
	WS_BORDER       = 0x00800000
	WS_SYSMENU      = 0x00080000
	WS_GROUP        = 0x00020000
	WS_TABSTOP      = 0x00010000

	WS_EX_DLGMODALFRAME = 0x00000001
	WS_EX_WINDOWEDGE    = 0x00000100
	WS_EX_CONTROLPARENT = 0x00010000

	DS_ABSALIGN   = 0x0001
	DS_3DLOOK     = 0x0004
	DS_SETFONT    = 0x0040
	DS_MODALFRAME = 0x0080
	DS_NOIDLEMSG  = 0x0100
	DS_CENTER     = 0x0800

	BS_PUSHBUTTON    = 0x0000
	BS_DEFPUSHBUTTON = 0x0001
	BS_TEXT          = 0x0000

	ES_AUTOHSCROLL = 0x0080

	SS_NOPREFIX    = 0x0080
	SS_EDITCONTROL = 0x2000
)

// LOWORD returns the low 16 bits of v.
func LOWORD(v uintptr) uint16 { return uint16(v & 0xFFFF) }

// HIWORD returns bits 16..31 of v.
func HIWORD(v uintptr) uint16 { return uint16((v >> 16) & 0xFFFF) }

// MAKELONG packs two words the way WM_COMMAND and tray callbacks do.
func MAKELONG(lo, hi uint16) uintptr { return uintptr(uint32(hi)<<16 | uint32(lo)) }
