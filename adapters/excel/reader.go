package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"statlab/domain/core"
	"statlab/internal/parsing"

	mstats "github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel, CSV and JSON files
type DataReader struct {
	filePath string
	fileType string // "xlsx", "csv" or "json"
	dataPath string // gjson path to the records, JSON only
}

// NewDataReader creates a new data reader for filePath. A JSON file may name
// the records array after a '#', as in "runs.json#results.items".
func NewDataReader(filePath string) *DataReader {
	r := &DataReader{filePath: filePath, fileType: "xlsx"}
	if i := strings.LastIndex(filePath, "#"); i > 0 && strings.EqualFold(filepath.Ext(filePath[:i]), ".json") {
		r.filePath, r.dataPath = filePath[:i], filePath[i+1:]
	}
	switch strings.ToLower(filepath.Ext(r.filePath)) {
	case ".csv", ".txt":
		r.fileType = "csv"
	case ".json":
		r.fileType = "json"
	}
	return r
}

// ReadSheet reads the file into headers and string rows
func (r *DataReader) ReadSheet() (*Sheet, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	readStart := time.Now()
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "json":
		var sheet *Sheet
		sheet, err = r.readJSON()
		if err == nil {
			log.Printf("[DataReader] %s read in %.2fms (%d records)", r.filePath, float64(time.Since(readStart).Nanoseconds())/1e6, len(sheet.Rows))
		}
		return sheet, err
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", r.filePath, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return processRows(rows)
}

// readExcelRows reads the first worksheet of the workbook
func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", r.filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return rows, nil
}

// readCSVRows reads CSV data, tolerating rows of different lengths
func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows splits off a header row when the first row is not entirely numeric;
// otherwise headers are synthesised as col1, col2, ...
func processRows(rows [][]string) (*Sheet, error) {
	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, core.NewFieldError(core.ErrEmptyInput, "file", "no rows")
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var headers []string
	if isHeaderRow(rows[0]) {
		headers = make([]string, width)
		for i := range headers {
			if i < len(rows[0]) && strings.TrimSpace(rows[0][i]) != "" {
				headers[i] = strings.TrimSpace(rows[0][i])
			} else {
				headers[i] = fmt.Sprintf("col%d", i+1)
			}
		}
		rows = rows[1:]
	} else {
		headers = make([]string, width)
		for i := range headers {
			headers[i] = fmt.Sprintf("col%d", i+1)
		}
	}

	data := make([][]string, len(rows))
	for i, row := range rows {
		data[i] = make([]string, width)
		for j := 0; j < width && j < len(row); j++ {
			data[i][j] = strings.TrimSpace(row[j])
		}
	}

	return &Sheet{Headers: headers, Rows: data}, nil
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		if _, ok := parsing.ParseNumber(cell); !ok {
			return true
		}
	}
	return false
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// ColumnIndex resolves a header name, or a 1-based position such as "2".
func (s *Sheet) ColumnIndex(name string) (int, error) {
	name = strings.TrimSpace(name)
	for i, h := range s.Headers {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	if v, ok := parsing.ParseNumber(name); ok && v == float64(int(v)) && int(v) >= 1 && int(v) <= len(s.Headers) {
		return int(v) - 1, nil
	}
	return 0, core.NewInvalidInputError("columns", fmt.Sprintf("unknown column %q", name))
}

func (s *Sheet) resolve(columns []string) ([]int, error) {
	if len(columns) == 0 {
		idx := make([]int, len(s.Headers))
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}
	idx := make([]int, len(columns))
	for i, c := range columns {
		j, err := s.ColumnIndex(c)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	return idx, nil
}

// Column returns the numeric cells of one column; blank and non-numeric cells are skipped.
func (s *Sheet) Column(name string) ([]float64, error) {
	j, err := s.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	return s.column(j), nil
}

func (s *Sheet) column(j int) []float64 {
	var values []float64
	for _, row := range s.Rows {
		if v, ok := parsing.ParseNumber(row[j]); ok {
			values = append(values, v)
		}
	}
	return values
}

// Groups returns each selected column as one sample, for ANOVA input.
func (s *Sheet) Groups(columns []string) ([][]float64, []string, error) {
	idx, err := s.resolve(columns)
	if err != nil {
		return nil, nil, err
	}
	groups := make([][]float64, 0, len(idx))
	labels := make([]string, 0, len(idx))
	for _, j := range idx {
		groups = append(groups, s.column(j))
		labels = append(labels, s.Headers[j])
	}
	return groups, labels, nil
}

// Matrix returns the selected columns as a rectangular matrix. Every selected cell
// must be numeric; the first bad cell is reported.
func (s *Sheet) Matrix(columns []string) ([][]float64, []string, error) {
	idx, err := s.resolve(columns)
	if err != nil {
		return nil, nil, err
	}
	matrix := make([][]float64, len(s.Rows))
	for i, row := range s.Rows {
		matrix[i] = make([]float64, len(idx))
		for k, j := range idx {
			v, ok := parsing.ParseNumber(row[j])
			if !ok {
				return nil, nil, core.NewFieldError(core.ErrNotNumeric, "file", "row %d, column %q: %q", i+1, s.Headers[j], row[j])
			}
			matrix[i][k] = v
		}
	}
	labels := make([]string, len(idx))
	for k, j := range idx {
		labels[k] = s.Headers[j]
	}
	return matrix, labels, nil
}

// Summaries describes every column's numeric content.
func (s *Sheet) Summaries() []ColumnSummary {
	out := make([]ColumnSummary, len(s.Headers))
	for j, name := range s.Headers {
		values := s.column(j)
		summary := ColumnSummary{Name: name, Count: len(values), Missing: len(s.Rows) - len(values)}
		if len(values) > 0 {
			data := mstats.Float64Data(values)
			summary.Mean, _ = mstats.Mean(data)
			summary.Min, _ = mstats.Min(data)
			summary.Max, _ = mstats.Max(data)
			if len(values) > 1 {
				summary.StdDev, _ = mstats.StandardDeviationSample(data)
			}
		}
		out[j] = summary
	}
	return out
}
