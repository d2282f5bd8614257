package profile

import (
	"github.com/arjunks/datahound/pkg/models"
)

// IndicatorAverage is the indicator key of the derived value/count ratio.
const IndicatorAverage = "average"

// ClassifyRow assigns one row to a category. The branches are evaluated in
// the fixed order DoubleHigh → HighPrimary → HighSecondary → Middle → Low;
// the order is load-bearing for boundary ties and must not be rearranged.
// Missing or non-numeric cells default to 0.
func ClassifyRow(row models.Row, ident models.FieldIdentification, th models.Thresholds) models.CategoryKind {
	value := row.NumOrZero(ident.PrimaryValueField)
	count := row.NumOrZero(ident.PrimaryCountField)
	highV, lowV := th.Value.High, th.Value.Low
	highC, lowC := th.Count.High, th.Count.Low

	switch {
	case value >= highV && count >= highC:
		return models.CategoryDoubleHigh
	case value >= highV && count < highC:
		return models.CategoryHighPrimary
	case count >= highC && value < highV:
		return models.CategoryHighSecondary
	case value > lowV && value < highV && count > lowC && count < highC:
		return models.CategoryMiddle
	default:
		// Catch-all: rows at or below a low threshold and anything not
		// captured above. No row is ever unclassified.
		return models.CategoryLow
	}
}

// Classify buckets every row into exactly one of the five categories and
// aggregates per-category indicators: value-field sum, count-field sum,
// auxiliary field sums, member count and average (value sum / count sum,
// 0 when the count sum is 0). Always returns all five categories in fixed
// order, including zero-member ones, so downstream consumers can rely on a
// fixed shape. Both threshold sides must be present; see ComputeThresholds.
func Classify(rows []models.Row, ident models.FieldIdentification, th models.Thresholds, auxFields []string) []models.Category {
	type bucket struct {
		valueSum float64
		countSum float64
		aux      map[string]float64
		members  int
	}
	buckets := make(map[models.CategoryKind]*bucket, len(models.CategoryKinds))
	for _, kind := range models.CategoryKinds {
		b := &bucket{aux: make(map[string]float64, len(auxFields))}
		for _, f := range auxFields {
			b.aux[f] = 0
		}
		buckets[kind] = b
	}

	for _, row := range rows {
		b := buckets[ClassifyRow(row, ident, th)]
		b.valueSum += row.NumOrZero(ident.PrimaryValueField)
		b.countSum += row.NumOrZero(ident.PrimaryCountField)
		for _, f := range auxFields {
			b.aux[f] += row.NumOrZero(f)
		}
		b.members++
	}

	categories := make([]models.Category, 0, len(models.CategoryKinds))
	for _, kind := range models.CategoryKinds {
		b := buckets[kind]
		desc := models.CategoryDescriptors[kind]

		indicators := make(map[string]float64, 3+len(auxFields))
		indicators[ident.PrimaryValueField] = b.valueSum
		indicators[ident.PrimaryCountField] = b.countSum
		if b.countSum != 0 {
			indicators[IndicatorAverage] = b.valueSum / b.countSum
		} else {
			indicators[IndicatorAverage] = 0
		}
		for f, sum := range b.aux {
			indicators[f] = sum
		}

		categories = append(categories, models.Category{
			Kind:        kind,
			Description: desc.Description,
			Indicators:  indicators,
			Frequency:   desc.Frequency,
			Interval:    desc.Interval,
			Risk:        desc.Risk,
			ObjectCount: b.members,
			Confidence:  1.0,
		})
	}
	return categories
}

// CountByCategory re-runs the decision rule and returns only the member
// counts. Used to reconcile model replies: the local counts are always
// authoritative.
func CountByCategory(rows []models.Row, ident models.FieldIdentification, th models.Thresholds) map[models.CategoryKind]int {
	counts := make(map[models.CategoryKind]int, len(models.CategoryKinds))
	for _, kind := range models.CategoryKinds {
		counts[kind] = 0
	}
	for _, row := range rows {
		counts[ClassifyRow(row, ident, th)]++
	}
	return counts
}

// SumByCategory re-aggregates one field's per-category sums from raw rows.
// Used to back-fill auxiliary indicators missing from a model reply.
func SumByCategory(rows []models.Row, ident models.FieldIdentification, th models.Thresholds, field string) map[models.CategoryKind]float64 {
	sums := make(map[models.CategoryKind]float64, len(models.CategoryKinds))
	for _, row := range rows {
		sums[ClassifyRow(row, ident, th)] += row.NumOrZero(field)
	}
	return sums
}
