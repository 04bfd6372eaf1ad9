package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// HasBadChars reports whether a file or directory name contains malformed or
// disallowed character sequences: invalid UTF-8, the replacement character
// left behind by a broken transcode, control characters, or private-use and
// specials-block code points typical of mojibake.
func HasBadChars(name string) bool {
	if !utf8.ValidString(name) {
		return true
	}
	if strings.ContainsRune(name, utf8.RuneError) {
		return true
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return true
		}
		if unicode.Is(unicode.Co, r) {
			return true
		}
		// U+FFF0..U+FFFD specials block, minus the already-handled FFFD.
		if r >= 0xFFF0 && r <= 0xFFFF {
			return true
		}
	}
	return false
}
