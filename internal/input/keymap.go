package input

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownKey is returned for characters outside the fixed US key map
var ErrUnknownKey = errors.New("no key mapping for character")

// Key describes how to produce a character on a US keyboard
type Key struct {
	ScanCode uint16
	Extended bool
	Shift    bool
	Ctrl     bool
	Alt      bool
}

// Scan codes (set 1) of the keys used directly
const (
	scanEnter  uint16 = 0x1C
	scanLCtrl  uint16 = 0x1D
	scanLShift uint16 = 0x2A
	scanLAlt   uint16 = 0x38
)

var (
	enterKey = Key{ScanCode: scanEnter}
	shiftKey = Key{ScanCode: scanLShift}
	ctrlKey  = Key{ScanCode: scanLCtrl}
	altKey   = Key{ScanCode: scanLAlt}
)

// unshifted and shifted characters per scan code
var usLayout = []struct {
	scan    uint16
	plain   rune
	shifted rune
}{
	{0x02, '1', '!'}, {0x03, '2', '@'}, {0x04, '3', '#'}, {0x05, '4', '$'},
	{0x06, '5', '%'}, {0x07, '6', '^'}, {0x08, '7', '&'}, {0x09, '8', '*'},
	{0x0A, '9', '('}, {0x0B, '0', ')'}, {0x0C, '-', '_'}, {0x0D, '=', '+'},
	{0x0F, '\t', 0},
	{0x10, 'q', 'Q'}, {0x11, 'w', 'W'}, {0x12, 'e', 'E'}, {0x13, 'r', 'R'},
	{0x14, 't', 'T'}, {0x15, 'y', 'Y'}, {0x16, 'u', 'U'}, {0x17, 'i', 'I'},
	{0x18, 'o', 'O'}, {0x19, 'p', 'P'}, {0x1A, '[', '{'}, {0x1B, ']', '}'},
	{0x1E, 'a', 'A'}, {0x1F, 's', 'S'}, {0x20, 'd', 'D'}, {0x21, 'f', 'F'},
	{0x22, 'g', 'G'}, {0x23, 'h', 'H'}, {0x24, 'j', 'J'}, {0x25, 'k', 'K'},
	{0x26, 'l', 'L'}, {0x27, ';', ':'}, {0x28, '\'', '"'}, {0x29, '`', '~'},
	{0x2B, '\\', '|'},
	{0x2C, 'z', 'Z'}, {0x2D, 'x', 'X'}, {0x2E, 'c', 'C'}, {0x2F, 'v', 'V'},
	{0x30, 'b', 'B'}, {0x31, 'n', 'N'}, {0x32, 'm', 'M'}, {0x33, ',', '<'},
	{0x34, '.', '>'}, {0x35, '/', '?'},
	{0x39, ' ', 0},
}

var keyMap = buildKeyMap()

func buildKeyMap() map[rune]Key {
	m := make(map[rune]Key, 2*len(usLayout)+1)
	for _, k := range usLayout {
		m[k.plain] = Key{ScanCode: k.scan}
		if k.shifted != 0 {
			m[k.shifted] = Key{ScanCode: k.scan, Shift: true}
		}
	}
	m['\n'] = enterKey
	return m
}

// KeyInfo resolves a character to its scan code and modifiers
func KeyInfo(r rune) (Key, error) {
	k, ok := keyMap[r]
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, r)
	}
	return k, nil
}

// SupportedCharacters returns every mapped character in code point order
func SupportedCharacters() []rune {
	runes := make([]rune, 0, len(keyMap))
	for r := range keyMap {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return runes
}

func (k Key) modifiers() []Key {
	var mods []Key
	if k.Shift {
		mods = append(mods, shiftKey)
	}
	if k.Ctrl {
		mods = append(mods, ctrlKey)
	}
	if k.Alt {
		mods = append(mods, altKey)
	}
	return mods
}
