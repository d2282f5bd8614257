// Package ingest parses uploaded datasets into rows of typed cells.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/arjunks/datahound/pkg/models"
)

// CSV reads a comma-separated stream whose first record is the header and
// returns the column names plus one typed row per record. Numeric-looking
// cells become numbers, empty cells become missing, everything else is kept
// as text.
func CSV(r io.Reader) ([]string, []models.Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Tolerate ragged records: short rows pad with missing cells, extra
	// cells beyond the header are dropped.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) == 0 {
		return nil, nil, fmt.Errorf("csv header has no columns")
	}

	var rows []models.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv record %d: %w", len(rows)+2, err)
		}
		row := make(models.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = parseCell(record[i])
			} else {
				row[col] = models.Missing()
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// parseCell types one raw CSV cell. Infinities and NaN are kept as text so
// they never leak into statistics.
func parseCell(raw string) models.Value {
	if raw == "" {
		return models.Missing()
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return models.Text(raw)
		}
		return models.Num(f)
	}
	return models.Text(raw)
}

// InferColumns derives a stable column list from JSON-supplied rows: the
// sorted union of every key that appears.
func InferColumns(rows []models.Row) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			seen[col] = true
		}
	}
	columns := make([]string, 0, len(seen))
	for col := range seen {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}
