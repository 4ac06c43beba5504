package dataset

import (
	"fmt"
	"math"

	"gridstat/domain/core"
)

// Table is the canonical data object handed to the statistical engines: dense
// column-major numeric data with NaN marking missing cells. Engines never see
// the spreadsheet, selection state, or import machinery behind it.
type Table struct {
	ID      core.DatasetID
	Name    string
	Columns []Column

	CreatedAt core.Timestamp
}

// Column is one named variable of a table
type Column struct {
	Key    core.VariableKey
	Values []float64 // NaN marks a missing cell
}

// NewTable creates an empty table
func NewTable(name string) *Table {
	return &Table{
		ID:        core.DatasetID(core.NewID()),
		Name:      name,
		CreatedAt: core.Now(),
	}
}

// AddColumn appends a column; all columns of a table must share one length
func (t *Table) AddColumn(key core.VariableKey, values []float64) error {
	if len(t.Columns) > 0 && len(values) != t.RowCount() {
		return fmt.Errorf("column %s has %d rows, table has %d", key, len(values), t.RowCount())
	}
	t.Columns = append(t.Columns, Column{Key: key, Values: values})
	return nil
}

// RowCount returns the number of cases in the table
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnCount returns the number of variables in the table
func (t *Table) ColumnCount() int {
	return len(t.Columns)
}

// VariableKeys lists the column keys in table order
func (t *Table) VariableKeys() []core.VariableKey {
	keys := make([]core.VariableKey, len(t.Columns))
	for i, c := range t.Columns {
		keys[i] = c.Key
	}
	return keys
}

// Column resolves a variable key to its values, preserving missing markers
func (t *Table) Column(key core.VariableKey) ([]float64, bool) {
	for _, c := range t.Columns {
		if c.Key == key {
			return c.Values, true
		}
	}
	return nil, false
}

// Select resolves a set of variable keys to their columns in key order
func (t *Table) Select(keys []core.VariableKey) ([][]float64, error) {
	cols := make([][]float64, len(keys))
	for i, key := range keys {
		values, ok := t.Column(key)
		if !ok {
			return nil, fmt.Errorf("variable %s not found in table %s", key, t.Name)
		}
		cols[i] = values
	}
	return cols, nil
}

// SelectComplete resolves variable keys and applies listwise deletion: any row
// with a missing cell in one of the selected columns is dropped from all of
// them. The returned columns are fresh copies aligned row for row.
func (t *Table) SelectComplete(keys []core.VariableKey) ([][]float64, error) {
	cols, err := t.Select(keys)
	if err != nil {
		return nil, err
	}
	return CompleteRows(cols), nil
}

// CompleteRows applies listwise deletion to pre-aligned columns
func CompleteRows(cols [][]float64) [][]float64 {
	out := make([][]float64, len(cols))
	for i := range out {
		out[i] = make([]float64, 0, rowCount(cols))
	}
	for row := 0; row < rowCount(cols); row++ {
		complete := true
		for _, col := range cols {
			if math.IsNaN(col[row]) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for i, col := range cols {
			out[i] = append(out[i], col[row])
		}
	}
	return out
}

// CompletePairRows keeps only rows where both members of a pair are present,
// the unit of pairwise deletion.
func CompletePairRows(x, y []float64) ([]float64, []float64) {
	outX := make([]float64, 0, len(x))
	outY := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		outX = append(outX, x[i])
		outY = append(outY, y[i])
	}
	return outX, outY
}

func rowCount(cols [][]float64) int {
	if len(cols) == 0 {
		return 0
	}
	return len(cols[0])
}
