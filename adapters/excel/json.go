package excel

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"statlab/domain/core"
)

// readJSON reads an array of records. Object records become one row each,
// with headers taken from keys in first-seen order. Array records are treated
// like CSV rows, so a leading row of names becomes the header.
func (r *DataReader) readJSON() (*Sheet, error) {
	body, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, core.NewFieldError(core.ErrInvalidInput, "file", "%s is not valid JSON", r.filePath)
	}

	data := gjson.ParseBytes(body)
	if r.dataPath != "" {
		data = data.Get(r.dataPath)
		if !data.Exists() {
			return nil, core.NewFieldError(core.ErrInvalidInput, "file", "data path %q not found in %s", r.dataPath, r.filePath)
		}
	}
	if !data.IsArray() {
		return nil, core.NewFieldError(core.ErrInvalidInput, "file", "%s: records must be a JSON array", r.filePath)
	}

	records := data.Array()
	if len(records) > 0 && records[0].IsArray() {
		rows := make([][]string, len(records))
		for i, rec := range records {
			for _, cell := range rec.Array() {
				rows[i] = append(rows[i], cellString(cell))
			}
		}
		return processRows(rows)
	}

	var headers []string
	index := make(map[string]int)
	for _, rec := range records {
		if !rec.IsObject() {
			return nil, core.NewFieldError(core.ErrInvalidInput, "file", "%s: mixed record types", r.filePath)
		}
		rec.ForEach(func(key, _ gjson.Result) bool {
			if _, ok := index[key.String()]; !ok {
				index[key.String()] = len(headers)
				headers = append(headers, key.String())
			}
			return true
		})
	}
	if len(headers) == 0 {
		return nil, core.NewFieldError(core.ErrEmptyInput, "file", "no records")
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = make([]string, len(headers))
		rec.ForEach(func(key, value gjson.Result) bool {
			rows[i][index[key.String()]] = cellString(value)
			return true
		})
	}
	return &Sheet{Headers: headers, Rows: rows}, nil
}

func cellString(v gjson.Result) string {
	if v.Type == gjson.Null {
		return ""
	}
	return v.String()
}
