package hotkey

import "fmt"

var knownKeys = func() map[string]bool {
	m := map[string]bool{}
	for _, name := range namedKeys {
		m[name] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		m[string(c)] = true
	}
	for c := '0'; c <= '9'; c++ {
		m[string(c)] = true
	}
	for i := 1; i <= 12; i++ {
		m[fmt.Sprintf("F%d", i)] = true
	}
	return m
}()

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

// vkCodeToName maps a Windows virtual key code to a hotkey key name
func vkCodeToName(vk uint32) string {
	if name, ok := namedKeys[vk]; ok {
		return name
	}

	// Letters A-Z
	if vk >= 0x41 && vk <= 0x5A {
		return string(rune(vk))
	}

	// Numbers 0-9
	if vk >= 0x30 && vk <= 0x39 {
		return string(rune(vk))
	}

	// F1-F12
	if vk >= 0x70 && vk <= 0x7B {
		return fmt.Sprintf("F%d", vk-0x6F)
	}

	return ""
}
