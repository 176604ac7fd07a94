package site

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var smallWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "but": true,
	"by": true, "for": true, "from": true, "in": true, "into": true, "nor": true,
	"of": true, "on": true, "onto": true, "or": true, "the": true, "to": true,
	"with": true,
}

// separators keeps runs of whitespace and single hyphens as their own tokens.
var separators = regexp.MustCompile(`\s+|-`)

// ToTitleCase lowercases each word, capitalises its first letter, and keeps
// small words lowercase unless they are the first or last token.
func ToTitleCase(s string) string {
	if s == "" {
		return ""
	}
	tokens := splitKeep(s)
	var b strings.Builder
	for i, tok := range tokens {
		if tok == "-" || strings.TrimSpace(tok) == "" {
			b.WriteString(tok)
			continue
		}
		lower := strings.ToLower(tok)
		if smallWords[lower] && i != 0 && i != len(tokens)-1 {
			b.WriteString(lower)
			continue
		}
		r, size := utf8.DecodeRuneInString(lower)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(lower[size:])
	}
	return b.String()
}

// splitKeep splits s on separators and keeps them, including the empty
// tokens between adjacent separators, so first/last positions match a
// capturing split.
func splitKeep(s string) []string {
	var out []string
	last := 0
	for _, loc := range separators.FindAllStringIndex(s, -1) {
		out = append(out, s[last:loc[0]], s[loc[0]:loc[1]])
		last = loc[1]
	}
	return append(out, s[last:])
}
