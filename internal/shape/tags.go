package shape

import (
	"sort"

	"github.com/arthurhrk/Shapeslibrary/internal/textutil"
)

// BuildTags derives the initial tag set for a captured record: the fixed
// capture marker, the category, the kind name split on capitalization
// boundaries, and every name token longer than two characters. Deduplicated
// and sorted so persisted records are stable.
func BuildTags(name, category string, kind Kind) []string {
	seen := make(map[string]struct{}, 8)
	tags := make([]string, 0, 8)
	add := func(tag string) {
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	add("captured")
	add(category)
	for _, word := range textutil.SplitCamelCase(string(kind)) {
		add(word)
	}
	for _, token := range textutil.Tokenize(name) {
		add(token)
	}

	sort.Strings(tags)
	return tags
}
