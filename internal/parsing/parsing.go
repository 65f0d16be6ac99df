// Package parsing turns user-entered text into the numeric containers the
// engines accept. Lists are forgiving (bad tokens are dropped); matrices are
// strict (the first bad cell fails the whole parse).
package parsing

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"statlab/adapters/stats/chisquare"
	"statlab/domain/core"
)

// ParseNumber converts one token to a finite float. Accounting negatives such as
// "(12.5)" are accepted; NaN and Inf spellings are not.
func ParseNumber(token string) (float64, bool) {
	clean := strings.TrimSpace(token)
	if clean == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSpace(clean[1 : len(clean)-1])
		negative = true
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// isListSeparator splits sample lists on commas, semicolons and any whitespace.
func isListSeparator(r rune) bool {
	return r == ',' || r == ';' || unicode.IsSpace(r)
}

// ParseNumberList parses a comma/whitespace separated list. Tokens that are not
// numbers are returned in dropped rather than failing the parse.
func ParseNumberList(text string) (values []float64, dropped []string) {
	for _, token := range strings.FieldsFunc(text, isListSeparator) {
		if v, ok := ParseNumber(token); ok {
			values = append(values, v)
		} else {
			dropped = append(dropped, token)
		}
	}
	return values, dropped
}

// ParseGroups parses one sample per line. Lines that yield no numbers are skipped.
func ParseGroups(text string) (groups [][]float64, dropped []string) {
	for _, line := range splitLines(text) {
		values, bad := ParseNumberList(line)
		dropped = append(dropped, bad...)
		if len(values) > 0 {
			groups = append(groups, values)
		}
	}
	return groups, dropped
}

// ParseMatrix parses newline separated rows whose cells are split like lists,
// on commas, semicolons or whitespace runs. Blank lines are ignored. Any non-numeric cell or ragged row is an error.
func ParseMatrix(text string) ([][]float64, error) {
	var matrix [][]float64
	width := -1
	for lineNo, line := range strings.Split(normalizeNewlines(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.FieldsFunc(line, isListSeparator)
		row := make([]float64, len(cells))
		for j, cell := range cells {
			v, ok := ParseNumber(cell)
			if !ok {
				return nil, core.NewFieldError(core.ErrNotNumeric, "matrix", "line %d, column %d: %q", lineNo+1, j+1, cell)
			}
			row[j] = v
		}
		if width >= 0 && len(row) != width {
			return nil, core.NewFieldError(core.ErrRaggedMatrix, "matrix", "line %d has %d values, want %d", lineNo+1, len(row), width)
		}
		width = len(row)
		matrix = append(matrix, row)
	}
	if len(matrix) == 0 {
		return nil, core.NewFieldError(core.ErrEmptyInput, "matrix", "no rows")
	}
	return matrix, nil
}

// ParseContingencyTable parses a count matrix and clamps negative counts to zero.
func ParseContingencyTable(text string) ([][]float64, error) {
	matrix, err := ParseMatrix(text)
	if err != nil {
		return nil, err
	}
	return chisquare.ClampNegative(matrix), nil
}

func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

func splitLines(text string) []string {
	return strings.Split(normalizeNewlines(text), "\n")
}
