package game

import "regexp"

var (
	identifierStrip      = regexp.MustCompile(`[^\p{L}\p{Nd}_\s\v\x{85}\p{Z}]`)
	identifierWhitespace = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)
	identifierUnderscore = regexp.MustCompile(`_{2,}`)
)

// MakeIdentifier turns a title into a tag-safe slug: anything that is not a
// letter, decimal digit, underscore or whitespace is dropped, whitespace runs
// become a single underscore and repeated underscores are collapsed.
func MakeIdentifier(title string) string {
	s := identifierStrip.ReplaceAllString(title, "")
	s = identifierWhitespace.ReplaceAllString(s, "_")
	return identifierUnderscore.ReplaceAllString(s, "_")
}
