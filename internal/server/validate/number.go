package validate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/avelichko/formdesk/internal/common"
)

// ParseDecimal parses a locale-tolerant decimal number. Whitespace anywhere
// in the value (including non-breaking spaces used as thousands grouping) is
// stripped; both '.' and ',' are accepted as the decimal separator. When
// both occur, the one appearing last is the decimal separator and the other
// is dropped as grouping, so "1.234,56" and "1,234.56" both parse.
//
// Anything that is not a well-formed number after normalization returns
// common.ErrNotANumber; the input is never silently coerced to zero.
func ParseDecimal(s string) (float64, error) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	normalized := b.String()
	if normalized == "" {
		return 0, fmt.Errorf("%w: empty input", common.ErrNotANumber)
	}

	dot := strings.LastIndex(normalized, ".")
	comma := strings.LastIndex(normalized, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			normalized = strings.ReplaceAll(normalized, ".", "")
			normalized = strings.Replace(normalized, ",", ".", 1)
		} else {
			normalized = strings.ReplaceAll(normalized, ",", "")
		}
	case comma >= 0:
		if strings.Count(normalized, ",") > 1 {
			return 0, fmt.Errorf("%w: %q", common.ErrNotANumber, s)
		}
		normalized = strings.Replace(normalized, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", common.ErrNotANumber, s)
	}
	return v, nil
}
