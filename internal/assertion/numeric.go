package assertion

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// parseNumeric parses a spreadsheet cell's display string as a float64,
// tolerating currency symbols, thousands separators, percent signs, and
// parenthesized negatives. This is the open question decision recorded in
// SPEC_FULL.md: IEEE-754 double precision, no decimal/rational type.
func parseNumeric(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, false
	}

	neg := false
	if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
		neg = true
		t = t[1 : len(t)-1]
	}

	isPercent := strings.HasSuffix(t, "%")
	t = strings.TrimSuffix(t, "%")

	t = strings.TrimLeft(t, "$€£ ")
	t = strings.ReplaceAll(t, ",", "")
	t = strings.TrimSpace(t)

	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	if isPercent {
		v /= 100
	}
	if neg {
		v = -v
	}
	return v, true
}

func withinTolerance(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

var (
	currencyPattern   = regexp.MustCompile(`^\(?[$€£]\s?-?[\d,]+(\.\d+)?\)?$`)
	percentagePattern = regexp.MustCompile(`^-?[\d,]+(\.\d+)?%$`)
	numberPattern     = regexp.MustCompile(`^\(?-?[\d,]+(\.\d+)?\)?$`)
	datePattern       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{1,2}/\d{1,2}/\d{2,4}$`)
)

// cellType classifies a single table cell for table_shape's per-column
// type inference (spec §4.3 "Table type inference").
type cellType string

const (
	typeCurrency   cellType = "currency"
	typeNumber     cellType = "number"
	typePercentage cellType = "percentage"
	typeDate       cellType = "date"
	typeString     cellType = "string"
	typeBlank      cellType = ""
)

// classifyCell strips markdown emphasis and classifies the remaining text.
func classifyCell(raw string) cellType {
	t := strings.TrimSpace(raw)
	t = strings.Trim(t, "*_")
	t = strings.TrimSpace(t)
	if t == "" {
		return typeBlank
	}
	switch {
	case currencyPattern.MatchString(t):
		return typeCurrency
	case percentagePattern.MatchString(t):
		return typePercentage
	case datePattern.MatchString(t):
		return typeDate
	case numberPattern.MatchString(t):
		return typeNumber
	default:
		return typeString
	}
}

// inferColumnType returns the strict-majority (>50%) type among non-blank
// cells, or typeString when there is no majority (spec §8 boundary
// behaviors: all-blank -> string, 50/50 split -> string).
func inferColumnType(cells []string) cellType {
	counts := make(map[cellType]int)
	nonBlank := 0
	for _, c := range cells {
		t := classifyCell(c)
		if t == typeBlank {
			continue
		}
		counts[t]++
		nonBlank++
	}
	if nonBlank == 0 {
		return typeString
	}
	for t, n := range counts {
		if float64(n) > float64(nonBlank)*0.5 {
			return t
		}
	}
	return typeString
}

// satisfiesRequiredType reports whether an inferred column type satisfies
// a declared required type, with currency<->number cross-satisfaction
// (spec §4.3 "currency satisfies a required number and vice versa").
func satisfiesRequiredType(inferred, required cellType) bool {
	if inferred == required {
		return true
	}
	if (inferred == typeCurrency && required == typeNumber) ||
		(inferred == typeNumber && required == typeCurrency) {
		return true
	}
	return false
}
