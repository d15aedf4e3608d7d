package models

// Row is one category of a chart and the number of respondents in it.
type Row struct {
	X     string  `json:"x" yaml:"x"`
	Total float64 `json:"total" yaml:"total"`
}

// DataBlock holds the rows backing a single chart.
type DataBlock struct {
	Name string `json:"name" yaml:"name"`
	Rows []Row  `json:"rows" yaml:"rows"`
}

// Categories returns the category labels in row order.
func (b DataBlock) Categories() []string {
	return Categories(b.Rows)
}

// Sum returns the total count across all rows.
func (b DataBlock) Sum() float64 {
	return Sum(b.Rows)
}

// Categories returns the category labels of rows, in order.
func Categories(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.X
	}
	return out
}

// Values returns the counts of rows, in order.
func Values(rows []Row) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Total
	}
	return out
}

// Sum adds up the counts of rows.
func Sum(rows []Row) float64 {
	var total float64
	for _, r := range rows {
		total += r.Total
	}
	return total
}

// CloneRows returns a copy of rows that shares no backing array with the input.
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	copy(out, rows)
	return out
}
