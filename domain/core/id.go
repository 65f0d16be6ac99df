package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// ParseID parses a string into an ID, rejecting blanks and malformed UUIDs.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return ID(s), nil
}

// AnalysisKind names one of the statistical procedures.
type AnalysisKind string

const (
	KindAnova       AnalysisKind = "anova"
	KindChiSquare   AnalysisKind = "chisquare"
	KindCorrelation AnalysisKind = "correlation"
	KindPCA         AnalysisKind = "pca"
)

// AllKinds lists the supported procedures in display order.
func AllKinds() []AnalysisKind {
	return []AnalysisKind{KindAnova, KindChiSquare, KindCorrelation, KindPCA}
}

// ParseAnalysisKind accepts the canonical names plus a few common spellings.
func ParseAnalysisKind(s string) (AnalysisKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anova", "one-way-anova":
		return KindAnova, nil
	case "chisquare", "chi-square", "chi2":
		return KindChiSquare, nil
	case "correlation", "regression", "pearson":
		return KindCorrelation, nil
	case "pca":
		return KindPCA, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
