package parsing

import (
	"errors"
	"testing"

	"statlab/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.5", 3.5, true},
		{" -2 ", -2, true},
		{"1e3", 1000, true},
		{"(12.5)", -12.5, true},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"+Inf", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		assert.Equal(t, tc.ok, ok, "ParseNumber(%q)", tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-12, "ParseNumber(%q)", tc.in)
		}
	}
}

func TestParseNumberList_DropsNonNumeric(t *testing.T) {
	values, dropped := ParseNumberList("1, 2  3;x,4.5\n\tNaN ,, -1")
	assert.Equal(t, []float64{1, 2, 3, 4.5, -1}, values)
	assert.Equal(t, []string{"x", "NaN"}, dropped)

	values, dropped = ParseNumberList("   ")
	assert.Empty(t, values)
	assert.Empty(t, dropped)
}

func TestParseGroups(t *testing.T) {
	groups, dropped := ParseGroups("1,2,3\n\nfoo\r\n4 5 6\n7,8,bar,9\n")
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}, groups)
	assert.Equal(t, []string{"foo", "bar"}, dropped)
}

func TestParseMatrix(t *testing.T) {
	m, err := ParseMatrix("1,2\n 3 , 4 \n\n5,6\n")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}, m)
}

func TestParseMatrix_WhitespaceAndSemicolons(t *testing.T) {
	m, err := ParseMatrix("10 20 30\n15\t25   5\r\n1;2; 3\n")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{10, 20, 30}, {15, 25, 5}, {1, 2, 3}}, m)

	_, err = ParseMatrix("10 20\n15 x\n")
	assert.True(t, errors.Is(err, core.ErrNotNumeric))
	assert.Contains(t, err.Error(), "line 2, column 2")

	_, err = ParseMatrix("10 20\n15 25 35\n")
	assert.True(t, errors.Is(err, core.ErrRaggedMatrix))
}

func TestParseMatrix_FailsFast(t *testing.T) {
	_, err := ParseMatrix("1,2\n3,x\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotNumeric))
	assert.Contains(t, err.Error(), "line 2, column 2")

	_, err = ParseMatrix("1,2\n3,4,5\n")
	assert.True(t, errors.Is(err, core.ErrRaggedMatrix))

	_, err = ParseMatrix("\n \n")
	assert.True(t, errors.Is(err, core.ErrEmptyInput))
	assert.True(t, core.IsInvalidInput(err))
}

func TestParseContingencyTable_ClampsNegatives(t *testing.T) {
	table, err := ParseContingencyTable("10,-3\n20,20")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{10, 0}, {20, 20}}, table)
}
