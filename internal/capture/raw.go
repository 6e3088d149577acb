package capture

import (
	"regexp"
	"strings"
)

// RawShape mirrors what host automation reports about the selected shape.
// Numeric fields are pointers: the scripts omit properties the host refused
// to answer, and absence is distinct from zero.
type RawShape struct {
	Name        string    `json:"name"`
	Type        int       `json:"type"`
	TypeName    string    `json:"typeName,omitempty"`
	IsGroup     bool      `json:"isGroup,omitempty"`
	IsPicture   bool      `json:"isPicture,omitempty"`
	X           *float64  `json:"x,omitempty"`
	Y           *float64  `json:"y,omitempty"`
	Width       *float64  `json:"width,omitempty"`
	Height      *float64  `json:"height,omitempty"`
	Rotation    *float64  `json:"rotation,omitempty"`
	Adjustments []float64 `json:"adjustments,omitempty"`
	NativePath  string    `json:"nativePath,omitempty"`
	Fill        *RawStyle `json:"fill,omitempty"`
	Line        *RawStyle `json:"line,omitempty"`
}

// RawStyle carries the host's fill or line report. Color is freeform text
// until normalization validates it.
type RawStyle struct {
	Color        string   `json:"color,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	Transparency *float64 `json:"transparency,omitempty"`
}

var hexColorPattern = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// NormalizeColor validates a raw color as six hex digits, tolerating a
// leading '#'. Returns the uppercase form, or false when unusable.
func NormalizeColor(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "#")
	if !hexColorPattern.MatchString(raw) {
		return "", false
	}
	return strings.ToUpper(raw), true
}
