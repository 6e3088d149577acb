package shape

import (
	"strconv"
	"strings"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/textutil"
)

const idPrefix = "captured-"

// NewID derives a record identifier from a display name and capture time:
// the capture marker, the slugged name, and the millisecond timestamp in
// base 36. Identifiers sort by capture time within one name and are safe as
// file name stems.
func NewID(name string, at time.Time) string {
	suffix := strconv.FormatInt(at.UnixMilli(), 36)
	return idPrefix + textutil.Slugify(name) + "-" + suffix
}

// IsCapturedID reports whether id carries the capture marker prefix.
func IsCapturedID(id string) bool {
	return strings.HasPrefix(id, idPrefix)
}
