package game

import (
	"strings"
)

const (
	codeWidth    = 4
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// MaxRooms is the number of identifiers a fixed-width code can address.
const MaxRooms = 26 * 26 * 26 * 26

// EncodeCode maps a room identifier to its fixed-width base-26 code, most significant letter first.
func EncodeCode(id int) (string, bool) {
	if id < 0 || id >= MaxRooms {
		return "", false
	}
	buf := make([]byte, codeWidth)
	for i := codeWidth - 1; i >= 0; i-- {
		buf[i] = codeAlphabet[id%26]
		id /= 26
	}
	return string(buf), true
}

// DecodeCode is the inverse of EncodeCode and accepts either letter case.
func DecodeCode(code string) (int, bool) {
	code = NormalizeCode(code)
	if len(code) != codeWidth {
		return 0, false
	}
	id := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < 'A' || c > 'Z' {
			return 0, false
		}
		id = id*26 + int(c-'A')
	}
	return id, true
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
