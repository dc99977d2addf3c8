package validate

import (
	"errors"
	"testing"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal_Accepts(t *testing.T) {
	cases := map[string]float64{
		"12":        12,
		"3.14":      3.14,
		"1,5":       1.5,
		"1.5":       1.5,
		" 42 ":      42,
		"1 234,56":  1234.56,
		"1.234,56":  1234.56,
		"1,234.56":  1234.56,
		"-0,5":      -0.5,
		"1 000": 1000, // non-breaking space grouping
	}
	for in, want := range cases {
		got, err := ParseDecimal(in)
		require.NoError(t, err, "input %q", in)
		assert.InDelta(t, want, got, 1e-9, "input %q", in)
	}
}

func TestParseDecimal_Rejects(t *testing.T) {
	cases := []string{"", "   ", "12x", "abc", "1,2,3", "--5", "1.2.3,4,5"}
	for _, in := range cases {
		_, err := ParseDecimal(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.Is(err, common.ErrNotANumber), "input %q must map to ErrNotANumber", in)
	}
}
