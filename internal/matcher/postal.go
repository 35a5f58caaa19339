package matcher

import "strings"

// NormalizeZip strips non-digit characters and validates that exactly five
// ASCII digits remain. Returns the cleaned code and whether it is usable.
func NormalizeZip(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	zip := b.String()
	if len(zip) != 5 {
		return "", false
	}
	return zip, true
}
