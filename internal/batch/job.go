// Package batch runs many analyses described in one YAML job file, bounding
// concurrency by compute weight.
package batch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"statlab/adapters/excel"
	"statlab/adapters/stats/anova"
	"statlab/adapters/stats/chisquare"
	"statlab/domain/core"
	"statlab/internal/errors"
)

// Weights per analysis kind. PCA iterates over a p×p matrix per component and
// costs the most.
const (
	DefaultWeight int64 = 1
	PCAWeight     int64 = 4
)

// File is a parsed job file.
type File struct {
	Seed        int64 `yaml:"seed" json:"seed"`
	Concurrency int   `yaml:"concurrency" json:"concurrency"`
	Jobs        []Job `yaml:"jobs" json:"jobs"`
}

// Job is one analysis. Inputs are given inline or loaded from File/Columns.
type Job struct {
	Name       string      `yaml:"name" json:"name"`
	Kind       string      `yaml:"kind" json:"kind"`
	Groups     [][]float64 `yaml:"groups,omitempty" json:"groups,omitempty"`
	Labels     []string    `yaml:"labels,omitempty" json:"labels,omitempty"`
	Table      [][]float64 `yaml:"table,omitempty" json:"table,omitempty"`
	X          []float64   `yaml:"x,omitempty" json:"x,omitempty"`
	Y          []float64   `yaml:"y,omitempty" json:"y,omitempty"`
	Matrix     [][]float64 `yaml:"matrix,omitempty" json:"matrix,omitempty"`
	Variables  []string    `yaml:"variables,omitempty" json:"variables,omitempty"`
	File       string      `yaml:"file,omitempty" json:"file,omitempty"`
	Columns    []string    `yaml:"columns,omitempty" json:"columns,omitempty"`
	Seed       int64       `yaml:"seed,omitempty" json:"seed,omitempty"`
	Components int         `yaml:"components,omitempty" json:"components,omitempty"`
}

// Parse decodes a job file. Unknown keys are rejected so typos surface early.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.WithCode(errors.CodeValidationError, fmt.Errorf("invalid job file: %w", err))
	}
	if len(f.Jobs) == 0 {
		return nil, errors.ValidationError("job file contains no jobs")
	}
	seen := make(map[string]bool, len(f.Jobs))
	for i := range f.Jobs {
		job := &f.Jobs[i]
		if job.Name == "" {
			job.Name = fmt.Sprintf("job-%d", i+1)
		}
		if seen[job.Name] {
			return nil, errors.ValidationError(fmt.Sprintf("duplicate job name %q", job.Name))
		}
		seen[job.Name] = true
	}
	return &f, nil
}

// Load reads and parses a job file. Relative input file paths are resolved
// against the job file's directory.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read job file %s", path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for i := range f.Jobs {
		if f.Jobs[i].File != "" && !filepath.IsAbs(f.Jobs[i].File) {
			f.Jobs[i].File = filepath.Join(dir, f.Jobs[i].File)
		}
	}
	return f, nil
}

// AnalysisKind resolves the job's kind, accepting the usual aliases.
func (j Job) AnalysisKind() (core.AnalysisKind, error) {
	return core.ParseAnalysisKind(j.Kind)
}

// Weight is the semaphore cost of running the job.
func (j Job) Weight() int64 {
	if kind, err := j.AnalysisKind(); err == nil && kind == core.KindPCA {
		return PCAWeight
	}
	return DefaultWeight
}

// Resolve fills the job's inputs from File when one is set.
func (j *Job) Resolve() error {
	if j.File == "" {
		return nil
	}
	sheet, err := excel.NewDataReader(j.File).ReadSheet()
	if err != nil {
		return err
	}
	return j.ResolveSheet(sheet)
}

// ResolveSheet fills the job's inputs from an already loaded sheet. Columns
// select the sheet columns; correlation uses the first two.
func (j *Job) ResolveSheet(sheet *excel.Sheet) error {
	kind, err := j.AnalysisKind()
	if err != nil {
		return err
	}

	switch kind {
	case core.KindAnova:
		j.Groups, j.Labels, err = sheet.Groups(j.Columns)
	case core.KindChiSquare:
		j.Table, _, err = sheet.Matrix(j.Columns)
		if err == nil {
			j.Table = chisquare.ClampNegative(j.Table)
		}
	case core.KindCorrelation:
		var m [][]float64
		var names []string
		m, names, err = sheet.Matrix(j.Columns)
		if err != nil {
			return err
		}
		if len(names) < 2 {
			return core.NewInvalidInputError("columns", "correlation needs two columns")
		}
		j.X, j.Y = make([]float64, len(m)), make([]float64, len(m))
		for i, row := range m {
			j.X[i], j.Y[i] = row[0], row[1]
		}
		j.Variables = names[:2]
	case core.KindPCA:
		j.Matrix, j.Variables, err = sheet.Matrix(j.Columns)
	}
	return err
}

// AnovaGroups builds labelled ANOVA groups, defaulting labels to "Group N".
func (j Job) AnovaGroups() []anova.Group {
	groups := anova.Groups(j.Groups...)
	for i := range groups {
		if i < len(j.Labels) && j.Labels[i] != "" {
			groups[i].Label = j.Labels[i]
		}
	}
	return groups
}
