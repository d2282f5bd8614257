package profile

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/arjunks/datahound/pkg/models"
)

// ComputeThresholds derives the high/low thresholds of the value field and
// the count field independently under the configured method. A field that
// yields zero numeric values produces a nil stats block, never zeros;
// callers must treat absence as "cannot classify". Pure and deterministic.
func ComputeThresholds(rows []models.Row, valueField, countField string, method models.MethodConfig) models.Thresholds {
	m := method.Normalize()
	return models.Thresholds{
		Method: m.Method,
		Value:  fieldStats(rows, valueField, m),
		Count:  fieldStats(rows, countField, m),
	}
}

// NumericValues extracts the finite numeric cells of one column, silently
// skipping missing and non-numeric values.
func NumericValues(rows []models.Row, field string) []float64 {
	vals := make([]float64, 0, len(rows))
	for _, r := range rows {
		if n, ok := r.Num(field); ok {
			vals = append(vals, n)
		}
	}
	return vals
}

func fieldStats(rows []models.Row, field string, m models.MethodConfig) *models.FieldStats {
	if field == "" {
		return nil
	}
	vals := NumericValues(rows, field)
	if len(vals) == 0 {
		return nil
	}

	mult := m.ActiveMultipliers()
	fs := &models.FieldStats{
		Field:           field,
		Method:          m.Method,
		UpperMultiplier: mult.Upper,
		LowerMultiplier: mult.Lower,
		SampleSize:      len(vals),
	}

	switch m.Method {
	case models.MethodStdDev:
		fs.Mean = stat.Mean(vals, nil)
		fs.StdDev = stat.PopStdDev(vals, nil)
		fs.High = fs.Mean + mult.Upper*fs.StdDev
		fs.Low = fs.Mean - mult.Lower*fs.StdDev
	default:
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		fs.Q1 = quartile(sorted, 0.25)
		fs.Median = quartile(sorted, 0.5)
		fs.Q3 = quartile(sorted, 0.75)
		fs.IQR = fs.Q3 - fs.Q1
		fs.High = fs.Q3 + mult.Upper*fs.IQR
		fs.Low = fs.Q1 - mult.Lower*fs.IQR
	}
	return fs
}

// quartile returns the nearest-rank quantile at position floor(n·p) of an
// ascending-sorted slice. This is the documented rank estimator of the
// classification scheme, not an interpolated quantile; keep it as is so
// thresholds stay reproducible.
func quartile(sorted []float64, p float64) float64 {
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
