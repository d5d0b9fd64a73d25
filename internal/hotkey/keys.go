package hotkey

import "fmt"

var namedKeys = map[uint32]string{
	0x11: "CTRL", 0xA2: "CTRL", 0xA3: "CTRL",
	0x12: "ALT", 0xA4: "ALT", 0xA5: "ALT",
	0x10: "SHIFT", 0xA0: "SHIFT", 0xA1: "SHIFT",
	0x5B: "WIN", 0x5C: "WIN",
	0x20: "SPACE",
	0x0D: "ENTER",
	0x1B: "ESC",
	0x08: "BACKSPACE",
	0x09: "TAB",
	0x14: "CAPSLOCK",
	0x21: "PAGEUP",
	0x22: "PAGEDOWN",
	0x23: "END",
	0x24: "HOME",
	0x25: "LEFT",
	0x26: "UP",
	0x27: "RIGHT",
	0x28: "DOWN",
	0x2C: "PRINTSCREEN",
	0x2D: "INSERT",
	0x2E: "DELETE",
	0x13: "PAUSE",
	0x91: "SCROLLLOCK",
}

// mouseButtons are the names reported for mouse buttons.
var mouseButtons = []string{"MOUSE1", "MOUSE2", "MOUSE3", "MOUSE4", "MOUSE5"}

// vkCodeToName maps a Windows virtual-key code to the name used in combinations.
func vkCodeToName(vk uint32) string {
	if name, ok := namedKeys[vk]; ok {
		return name
	}
	switch {
	case vk >= 0x41 && vk <= 0x5A, vk >= 0x30 && vk <= 0x39:
		return string(rune(vk))
	case vk >= 0x70 && vk <= 0x87:
		return fmt.Sprintf("F%d", vk-0x6F)
	case vk >= 0x60 && vk <= 0x69:
		return fmt.Sprintf("NUM%d", vk-0x60)
	}
	return ""
}

var keyNames = func() map[string]bool {
	names := make(map[string]bool)
	for vk := uint32(0); vk < 0x100; vk++ {
		if name := vkCodeToName(vk); name != "" {
			names[name] = true
		}
	}
	for _, b := range mouseButtons {
		names[b] = true
	}
	return names
}()

// IsKeyName reports whether name can appear in a combination.
func IsKeyName(name string) bool {
	return keyNames[name]
}
