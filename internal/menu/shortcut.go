package menu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/username/ruwps/internal/native"
)

// Shortcut is a parsed keyboard accelerator.
type Shortcut struct {
	Virt    uint8 // FCONTROL, FALT, FSHIFT; FVIRTKEY is added when compiled
	Key     uint16
	Display string
}

var namedKeys = map[string]struct {
	vk   uint16
	name string
}{
	"del":       {native.VK_DELETE, "Del"},
	"delete":    {native.VK_DELETE, "Del"},
	"plus":      {native.VK_OEM_PLUS, "+"},
	"+":         {native.VK_OEM_PLUS, "+"},
	"minus":     {native.VK_OEM_MINUS, "-"},
	"-":         {native.VK_OEM_MINUS, "-"},
	"enter":     {native.VK_RETURN, "Enter"},
	"return":    {native.VK_RETURN, "Enter"},
	"esc":       {native.VK_ESCAPE, "Esc"},
	"escape":    {native.VK_ESCAPE, "Esc"},
	"tab":       {native.VK_TAB, "Tab"},
	"space":     {native.VK_SPACE, "Space"},
	"backspace": {native.VK_BACK, "Backspace"},
	"left":      {native.VK_LEFT, "Left"},
	"right":     {native.VK_RIGHT, "Right"},
	"up":        {native.VK_UP, "Up"},
	"down":      {native.VK_DOWN, "Down"},
	"home":      {native.VK_HOME, "Home"},
	"end":       {native.VK_END, "End"},
	"insert":    {native.VK_INSERT, "Ins"},
	"ins":       {native.VK_INSERT, "Ins"},
	"pgup":      {native.VK_PRIOR, "PgUp"},
	"pageup":    {native.VK_PRIOR, "PgUp"},
	"pgdn":      {native.VK_NEXT, "PgDn"},
	"pagedown":  {native.VK_NEXT, "PgDn"},
}

// ParseShortcut reads strings like "Ctrl+Shift+N", "Alt+F4" or "Del".
// "Cmd" is accepted as an alias of Ctrl. The last token is the key.
func ParseShortcut(s string) (Shortcut, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Shortcut{}, fmt.Errorf("empty shortcut")
	}
	// A trailing "+" is the plus key itself, as in "Ctrl++".
	var tokens []string
	if strings.HasSuffix(s, "++") {
		tokens = append(strings.Split(strings.TrimSuffix(s, "++"), "+"), "+")
	} else if s == "+" {
		tokens = []string{"+"}
	} else {
		tokens = strings.Split(s, "+")
	}

	var sc Shortcut
	var display []string
	for _, mod := range tokens[:len(tokens)-1] {
		switch strings.ToLower(strings.TrimSpace(mod)) {
		case "ctrl", "control", "cmd", "command":
			if sc.Virt&native.FCONTROL == 0 {
				sc.Virt |= native.FCONTROL
				display = append(display, "Ctrl")
			}
		case "alt", "option":
			if sc.Virt&native.FALT == 0 {
				sc.Virt |= native.FALT
				display = append(display, "Alt")
			}
		case "shift":
			if sc.Virt&native.FSHIFT == 0 {
				sc.Virt |= native.FSHIFT
				display = append(display, "Shift")
			}
		default:
			return Shortcut{}, fmt.Errorf("unknown modifier %q in shortcut %q", mod, s)
		}
	}

	key := strings.TrimSpace(tokens[len(tokens)-1])
	vk, name, err := parseKey(key)
	if err != nil {
		return Shortcut{}, fmt.Errorf("shortcut %q: %w", s, err)
	}
	sc.Key = vk
	sc.Display = strings.Join(append(display, name), "+")
	return sc, nil
}

func parseKey(key string) (uint16, string, error) {
	if k, ok := namedKeys[strings.ToLower(key)]; ok {
		return k.vk, k.name, nil
	}
	if len(key) == 1 {
		c := strings.ToUpper(key)[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return uint16(c), string(c), nil
		}
	}
	if len(key) >= 2 && (key[0] == 'F' || key[0] == 'f') {
		if n, err := strconv.Atoi(key[1:]); err == nil && n >= 1 && n <= 24 {
			return uint16(native.VK_F1 + n - 1), fmt.Sprintf("F%d", n), nil
		}
	}
	return 0, "", fmt.Errorf("unknown key %q", key)
}
