package shape

import (
	"strconv"
	"strings"
)

// deckRefPrefix marks nativePptx values that reference a slide of the
// aggregate deck instead of a standalone file under native/.
const deckRefPrefix = "deck:"

// DeckRef renders the nativePptx value for a deck slide.
func DeckRef(slide int) string {
	return deckRefPrefix + strconv.Itoa(slide)
}

// IsDeckRef reports whether a nativePptx value references a deck slide.
func IsDeckRef(native string) bool {
	return strings.HasPrefix(native, deckRefPrefix)
}

// ParseDeckRef extracts the slide number from a deck reference. Slide numbers
// start at 1; anything else reads as not-a-reference.
func ParseDeckRef(native string) (int, bool) {
	if !IsDeckRef(native) {
		return 0, false
	}
	slide, err := strconv.Atoi(strings.TrimPrefix(native, deckRefPrefix))
	if err != nil || slide < 1 {
		return 0, false
	}
	return slide, true
}
