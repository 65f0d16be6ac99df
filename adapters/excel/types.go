package excel

// Sheet is the raw content of a CSV file or the first worksheet of a workbook.
type Sheet struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, trimmed, padded to len(Headers)
}

// ColumnSummary describes the numeric content of one column.
type ColumnSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}
