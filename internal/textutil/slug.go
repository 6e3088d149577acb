package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a display name into a lowercase identifier segment.
// Diacritics are folded to their base letters, and every run of
// non-alphanumeric characters collapses into a single hyphen. Returns
// "shape" when nothing usable remains.
func Slugify(name string) string {
	name = strings.TrimSpace(name)
	if folded, _, err := transform.String(diacriticStripper, name); err == nil {
		name = folded
	}
	name = strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range name {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	slug := b.String()
	if slug == "" {
		return "shape"
	}
	return slug
}

// SplitCamelCase splits a camelCase kind name into lowercase words.
// Consecutive capitals stay together until a lowercase letter follows,
// so "flowChartIO" yields ["flow", "chart", "io"]. Digits attach to the
// preceding word ("star5" -> ["star5"]).
func SplitCamelCase(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	runes := []rune(value)
	words := make([]string, 0, 4)
	start := 0
	for i := 1; i < len(runes); i++ {
		r := runes[i]
		if !unicode.IsUpper(r) {
			continue
		}
		prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
			words = append(words, strings.ToLower(string(runes[start:i])))
			start = i
		}
	}
	words = append(words, strings.ToLower(string(runes[start:])))
	out := words[:0]
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
