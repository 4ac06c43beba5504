// Package excel ingests spreadsheet and CSV files into numeric tables. The
// first row is the header; every later cell is parsed as a float, and cells
// that are empty or non-numeric become missing markers.
package excel

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gridstat/domain/core"
	"gridstat/domain/dataset"
	"gridstat/internal"
	"gridstat/internal/errors"
	"gridstat/ports"
)

// TableReader reads Excel and CSV files into dataset tables
type TableReader struct {
	maxRows int
	logger  *internal.Logger
}

var _ ports.TableReader = (*TableReader)(nil)

// NewTableReader creates a reader; maxRows <= 0 means no row cap
func NewTableReader(maxRows int) *TableReader {
	return &TableReader{
		maxRows: maxRows,
		logger:  internal.NewDefaultLogger("excel"),
	}
}

// Read loads the file at path, dispatching on its extension
func (r *TableReader) Read(path string) (*dataset.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NotFound("data file " + path)
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = r.readCSVRows(path)
	case ".xlsx":
		rows, err = r.readSheetRows(path)
	default:
		return nil, errors.InvalidInput("unsupported file type: " + filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.EmptyInput("file needs a header row and at least one data row")
	}

	table, err := r.buildTable(filepath.Base(path), rows)
	if err != nil {
		return nil, err
	}
	r.logger.Info("loaded %s: %d variables, %d cases", path, table.ColumnCount(), table.RowCount())
	return table, nil
}

func (r *TableReader) readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading CSV file")
	}
	return rows, nil
}

func (r *TableReader) readSheetRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	// First sheet, whatever it is named.
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.EmptyInput("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "reading sheet "+sheets[0])
	}
	return rows, nil
}

// buildTable turns header+string rows into an aligned numeric table
func (r *TableReader) buildTable(name string, rows [][]string) (*dataset.Table, error) {
	headers := make([]core.VariableKey, len(rows[0]))
	for i, h := range rows[0] {
		key := strings.TrimSpace(h)
		if key == "" {
			return nil, errors.InvalidInput("column " + strconv.Itoa(i+1) + " has an empty header")
		}
		headers[i] = core.VariableKey(key)
	}

	data := rows[1:]
	if r.maxRows > 0 && len(data) > r.maxRows {
		r.logger.Warn("truncating %s from %d to %d rows", name, len(data), r.maxRows)
		data = data[:r.maxRows]
	}

	columns := make([][]float64, len(headers))
	for i := range columns {
		columns[i] = make([]float64, len(data))
	}
	for rowIdx, row := range data {
		for colIdx := range headers {
			columns[colIdx][rowIdx] = parseCell(row, colIdx)
		}
	}

	table := dataset.NewTable(name)
	for i, key := range headers {
		if err := table.AddColumn(key, columns[i]); err != nil {
			return nil, errors.DimensionMismatch("assembling table: " + err.Error())
		}
	}
	return table, nil
}

// parseCell reads one cell as a float; anything unparseable is missing
func parseCell(row []string, col int) float64 {
	if col >= len(row) {
		return math.NaN()
	}
	cell := strings.TrimSpace(row[col])
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
