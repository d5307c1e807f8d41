package xltemplate

import (
	"strings"
	"unicode"
)

// FileName resolves the placeholders of pattern and makes the result safe to
// use as a file name on Windows and Unix. Path separators, reserved
// characters and control characters become "_".
func FileName(pattern string, vars map[string]string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, Resolve(pattern, vars))

	// Windows drops trailing dots and spaces silently.
	name = strings.TrimRight(strings.TrimSpace(name), ". ")
	if name == "" {
		return "_"
	}
	return name
}
