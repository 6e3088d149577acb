package shape

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/arthurhrk/Shapeslibrary/internal/textutil"
)

// Kind tags the renderable primitive a record describes. The catalog is
// closed: records never carry a kind outside it.
type Kind string

const (
	KindRect          Kind = "rect"
	KindRoundRect     Kind = "roundRect"
	KindEllipse       Kind = "ellipse"
	KindDiamond       Kind = "diamond"
	KindTriangle      Kind = "triangle"
	KindRtTriangle    Kind = "rtTriangle"
	KindParallelogram Kind = "parallelogram"
	KindTrapezoid     Kind = "trapezoid"
	KindPentagon      Kind = "pentagon"
	KindHexagon       Kind = "hexagon"
	KindOctagon       Kind = "octagon"
	KindPlus          Kind = "plus"
	KindStar4         Kind = "star4"
	KindStar5         Kind = "star5"
	KindHeart         Kind = "heart"
	KindArc           Kind = "arc"
	KindLine          Kind = "line"
	KindCan           Kind = "can"
	KindCube          Kind = "cube"
	KindDonut         Kind = "donut"
	KindHomePlate     Kind = "homePlate"
	KindTeardrop      Kind = "teardrop"

	KindRightArrow        Kind = "rightArrow"
	KindLeftArrow         Kind = "leftArrow"
	KindUpArrow           Kind = "upArrow"
	KindDownArrow         Kind = "downArrow"
	KindLeftRightArrow    Kind = "leftRightArrow"
	KindUpDownArrow       Kind = "upDownArrow"
	KindQuadArrow         Kind = "quadArrow"
	KindBentArrow         Kind = "bentArrow"
	KindUturnArrow        Kind = "uturnArrow"
	KindChevron           Kind = "chevron"
	KindStripedRightArrow Kind = "stripedRightArrow"
	KindNotchedRightArrow Kind = "notchedRightArrow"
	KindCurvedRightArrow  Kind = "curvedRightArrow"

	KindWedgeRectCallout      Kind = "wedgeRectCallout"
	KindWedgeRoundRectCallout Kind = "wedgeRoundRectCallout"
	KindWedgeEllipseCallout   Kind = "wedgeEllipseCallout"
	KindCloudCallout          Kind = "cloudCallout"

	KindFlowChartProcess           Kind = "flowChartProcess"
	KindFlowChartDecision          Kind = "flowChartDecision"
	KindFlowChartTerminator        Kind = "flowChartTerminator"
	KindFlowChartInputOutput       Kind = "flowChartInputOutput"
	KindFlowChartPreparation       Kind = "flowChartPreparation"
	KindFlowChartConnector         Kind = "flowChartConnector"
	KindFlowChartDocument          Kind = "flowChartDocument"
	KindFlowChartPredefinedProcess Kind = "flowChartPredefinedProcess"
	KindFlowChartDelay             Kind = "flowChartDelay"
	KindFlowChartMagneticDisk      Kind = "flowChartMagneticDisk"

	// KindNative marks records captured as groups or pictures. They carry no
	// renderable geometry and are only usable through their native artifact.
	KindNative Kind = "nativeShape"
)

// codeTable maps the bridge protocol's compact numeric type codes onto kinds.
// The per-OS capture scripts translate whatever enumeration the host exposes
// into these codes, grouped by family: basic shapes from 1, arrows from 39,
// callouts from 61, flowchart from 71.
var codeTable = map[int]Kind{
	1:  KindRect,
	2:  KindRoundRect,
	3:  KindEllipse,
	4:  KindDiamond,
	5:  KindTriangle,
	6:  KindRtTriangle,
	7:  KindParallelogram,
	8:  KindTrapezoid,
	9:  KindPentagon,
	10: KindHexagon,
	11: KindOctagon,
	12: KindPlus,
	13: KindStar4,
	14: KindStar5,
	15: KindHeart,
	16: KindArc,
	17: KindLine,
	18: KindCan,
	19: KindCube,
	20: KindDonut,
	21: KindHomePlate,
	22: KindTeardrop,

	39: KindRightArrow,
	40: KindLeftArrow,
	41: KindUpArrow,
	42: KindDownArrow,
	43: KindLeftRightArrow,
	44: KindUpDownArrow,
	45: KindQuadArrow,
	46: KindBentArrow,
	47: KindUturnArrow,
	48: KindChevron,
	49: KindStripedRightArrow,
	50: KindNotchedRightArrow,
	51: KindCurvedRightArrow,

	61: KindWedgeRectCallout,
	62: KindWedgeRoundRectCallout,
	63: KindWedgeEllipseCallout,
	64: KindCloudCallout,

	71: KindFlowChartProcess,
	72: KindFlowChartDecision,
	73: KindFlowChartTerminator,
	74: KindFlowChartInputOutput,
	75: KindFlowChartPreparation,
	76: KindFlowChartConnector,
	77: KindFlowChartDocument,
	78: KindFlowChartPredefinedProcess,
	79: KindFlowChartDelay,
	80: KindFlowChartMagneticDisk,
}

// symbolTable maps symbolic type names the bridge may supply onto kinds.
// Canonical kind names map to themselves; the aliases cover the spelled-out
// names hosts report for the common primitives.
var symbolTable = buildSymbolTable()

func buildSymbolTable() map[string]Kind {
	table := make(map[string]Kind, len(codeTable)+16)
	for _, kind := range codeTable {
		table[strings.ToLower(string(kind))] = kind
	}
	aliases := map[string]Kind{
		"rectangle":         KindRect,
		"roundedrectangle":  KindRoundRect,
		"oval":              KindEllipse,
		"circle":            KindEllipse,
		"isoscelestriangle": KindTriangle,
		"righttriangle":     KindRtTriangle,
		"cross":             KindPlus,
		"cylinder":          KindCan,
		"arrow":             KindRightArrow,
		"star":              KindStar5,
	}
	for alias, kind := range aliases {
		table[alias] = kind
	}
	return table
}

var kindSet = buildKindSet()

func buildKindSet() map[Kind]struct{} {
	set := make(map[Kind]struct{}, len(codeTable)+1)
	for _, kind := range codeTable {
		set[kind] = struct{}{}
	}
	set[KindNative] = struct{}{}
	return set
}

var kindCodes = buildKindCodes()

func buildKindCodes() map[Kind]int {
	codes := make(map[Kind]int, len(codeTable))
	for code, kind := range codeTable {
		// Lowest code wins so the inversion stays deterministic if a kind
		// ever gains a second code.
		if existing, ok := codes[kind]; ok && existing <= code {
			continue
		}
		codes[kind] = code
	}
	return codes
}

// CodeFor resolves the numeric host type code a kind draws as, the inverse
// of KindFromCode. Native has no code; it is never re-drawn from geometry.
func CodeFor(k Kind) (int, bool) {
	code, ok := kindCodes[k]
	return code, ok
}

// ValidKind reports whether k belongs to the catalog.
func ValidKind(k Kind) bool {
	_, ok := kindSet[k]
	return ok
}

// KindFromSymbol resolves a symbolic type name. Lookup is exact after
// lowercasing; no fuzzy matching.
func KindFromSymbol(symbol string) (Kind, bool) {
	kind, ok := symbolTable[strings.ToLower(strings.TrimSpace(symbol))]
	return kind, ok
}

// KindFromCode resolves a bridge protocol type code.
func KindFromCode(code int) (Kind, bool) {
	kind, ok := codeTable[code]
	return kind, ok
}

// KindFromName guesses a kind from the shape's display name. Names that read
// like badges ("tag", "label") render acceptably as rounded rectangles.
func KindFromName(name string) (Kind, bool) {
	lowered := strings.ToLower(name)
	if strings.Contains(lowered, "tag") || strings.Contains(lowered, "label") {
		return KindRoundRect, true
	}
	return "", false
}

// InferKind runs the capture fallback chain: symbolic name, protocol code,
// display-name heuristic, generic rectangle.
func InferKind(symbol string, code int, name string) Kind {
	if kind, ok := KindFromSymbol(symbol); ok {
		return kind
	}
	if kind, ok := KindFromCode(code); ok {
		return kind
	}
	if kind, ok := KindFromName(name); ok {
		return kind
	}
	return KindRect
}

// CategoryFor infers the library category from a resolved kind.
func CategoryFor(kind Kind) string {
	name := string(kind)
	lowered := strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "flowChart"):
		return "flowchart"
	case strings.Contains(lowered, "arrow") || strings.Contains(lowered, "chevron"):
		return "arrows"
	case strings.Contains(lowered, "callout"):
		return "callouts"
	default:
		return "basic"
	}
}

var titleCaser = cases.Title(language.Und)

// DisplayName renders a kind as a human-readable label: "rightArrow" becomes
// "Right Arrow".
func DisplayName(kind Kind) string {
	words := textutil.SplitCamelCase(string(kind))
	if len(words) == 0 {
		return ""
	}
	return titleCaser.String(strings.Join(words, " "))
}
