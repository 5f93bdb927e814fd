package fandom

import (
	"regexp"
	"strings"
	"unicode"
)

// ParenGroup is a parenthesized group together with the token preceding it,
// e.g. "idol (jkt48, 22/7)" yields Parent "idol" and Content "jkt48, 22/7".
// A group with an empty Parent is malformed and should be skipped.
type ParenGroup struct {
	Parent  string `json:"parent"`
	Content string `json:"content"`
}

// groupSpan locates one token(group) run in a string. close is the index of
// the matching ')' or len(s) when the group is never closed.
type groupSpan struct {
	start, open, close int
}

// orphanCommaRe matches runs of two or more commas with nothing but
// whitespace between them, left behind after a nested group is removed.
var orphanCommaRe = regexp.MustCompile(`(\s*,\s*){2,}`)

// StripParentheticals removes every token(group) span, leaving the
// remaining top-level tokens and their separators in place.
func StripParentheticals(s string) string {
	spans := scanGroups(s)
	if len(spans) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, sp := range spans {
		b.WriteString(s[last:sp.start])
		last = min(sp.close+1, len(s))
	}
	b.WriteString(s[last:])
	return b.String()
}

// SplitTopLevel splits s on commas and on slash, backslash and plus
// separators outside parentheses. Branding and numbering slashes such as
// "fate/grand order" or "persona 3/4/5" do not split. Tokens are trimmed of
// whitespace and commas; empty tokens are dropped.
func SplitTopLevel(s string) []string {
	var tokens []string
	depth := 0
	start := 0

	emit := func(end int) {
		if tok := trimToken(s[start:end]); tok != "" {
			tokens = append(tokens, tok)
		}
	}

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 && isSeparator(s, i) {
				emit(i)
				start = i + 1
			}
		}
	}
	emit(len(s))

	return tokens
}

// ExtractGroups returns every token(group) pair in s, in order. Parent and
// Content are trimmed of whitespace and commas. Nested groups stay inside
// Content for the caller to decompose.
func ExtractGroups(s string) []ParenGroup {
	spans := scanGroups(s)
	groups := make([]ParenGroup, 0, len(spans))
	for _, sp := range spans {
		end := min(sp.close, len(s))
		groups = append(groups, ParenGroup{
			Parent:  trimToken(s[sp.start:sp.open]),
			Content: trimToken(s[sp.open+1 : end]),
		})
	}
	return groups
}

// CollapseOrphanCommas replaces runs of empty comma-separated slots with a
// single comma.
func CollapseOrphanCommas(s string) string {
	return orphanCommaRe.ReplaceAllString(s, ",")
}

// scanGroups finds every top-level token(group) span. A token starts after
// the previous top-level separator or the previous group.
func scanGroups(s string) []groupSpan {
	var spans []groupSpan
	tokenStart := 0

	for i := 0; i < len(s); i++ {
		if s[i] == '(' {
			end := matchParen(s, i)
			spans = append(spans, groupSpan{start: tokenStart, open: i, close: end})
			i = end
			tokenStart = end + 1
			continue
		}
		if isSeparator(s, i) {
			tokenStart = i + 1
		}
	}

	return spans
}

// matchParen returns the index of the ')' balancing the '(' at open, or
// len(s) if the group is never closed.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}

// isSeparator reports whether s[i] delimits two top-level tokens.
// Commas always do. Slashes, backslashes and plus signs do unless they
// follow "fate" or a digit, or precede "go", "grand" or a digit, ignoring
// surrounding whitespace.
func isSeparator(s string, i int) bool {
	switch s[i] {
	case ',':
		return true
	case '/', '\\', '+':
	default:
		return false
	}

	before := strings.TrimRightFunc(s[:i], unicode.IsSpace)
	after := strings.TrimLeftFunc(s[i+1:], unicode.IsSpace)
	before = strings.ToLower(before[max(0, len(before)-len("fate")):])
	after = strings.ToLower(after[:min(len(after), len("grand"))])

	if strings.HasSuffix(before, "fate") || endsWithDigit(before) {
		return false
	}
	if strings.HasPrefix(after, "go") || strings.HasPrefix(after, "grand") || startsWithDigit(after) {
		return false
	}
	return true
}

func endsWithDigit(s string) bool {
	return s != "" && s[len(s)-1] >= '0' && s[len(s)-1] <= '9'
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// trimToken strips leading and trailing whitespace and commas.
func trimToken(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// onlyCommas reports whether s consists solely of commas and whitespace.
func onlyCommas(s string) bool {
	return trimToken(s) == ""
}
