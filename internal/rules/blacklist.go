package rules

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Blacklist matches admin-approved censored terms. Matching is
// case-insensitive and whole-word; every occurrence adds the matched
// word's length to the token cost and is replaced by an asterisk run of
// the same length.
type Blacklist struct {
	patterns []*regexp.Regexp
}

// NewBlacklist compiles a blacklist from approved words. Blank entries
// are skipped.
func NewBlacklist(words []string) *Blacklist {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return &Blacklist{patterns: patterns}
}

// Len returns the number of compiled terms.
func (b *Blacklist) Len() int {
	return len(b.patterns)
}

// Censor replaces every blacklisted occurrence in text with asterisks
// and returns the total token penalty (sum of matched lengths).
// Length is counted in characters, not bytes, so non-ASCII terms cost
// and censor by what the user sees.
func (b *Blacklist) Censor(text string) (string, int) {
	penalty := 0
	for _, re := range b.patterns {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			runes := utf8.RuneCountInString(match)
			penalty += runes
			return strings.Repeat("*", runes)
		})
	}
	return text, penalty
}
