package profile

import (
	"fmt"

	"github.com/arjunks/datahound/pkg/models"
)

// BuildRules restates each category's decision branch in terms of the exact
// thresholds used. The text is for display and for the model exchange only;
// classification always uses the numeric thresholds and never re-parses
// rule text.
func BuildRules(ident models.FieldIdentification, th models.Thresholds) []models.ClassificationRule {
	v, c := ident.PrimaryValueField, ident.PrimaryCountField
	highV, lowV := th.Value.High, th.Value.Low
	highC, lowC := th.Count.High, th.Count.Low

	return []models.ClassificationRule{
		{Category: models.CategoryDoubleHigh,
			Rule: fmt.Sprintf("%s >= %g and %s >= %g", v, highV, c, highC)},
		{Category: models.CategoryHighPrimary,
			Rule: fmt.Sprintf("%s >= %g and %s < %g", v, highV, c, highC)},
		{Category: models.CategoryHighSecondary,
			Rule: fmt.Sprintf("%s >= %g and %s < %g", c, highC, v, highV)},
		{Category: models.CategoryMiddle,
			Rule: fmt.Sprintf("%g < %s < %g and %g < %s < %g", lowV, v, highV, lowC, c, highC)},
		{Category: models.CategoryLow,
			Rule: "all remaining rows, including rows at or below a low threshold"},
	}
}

// BuildParams echoes the numeric statistics behind the rules.
func BuildParams(ident models.FieldIdentification, th models.Thresholds) models.ClassificationParams {
	return models.ClassificationParams{
		Method:     th.Method,
		ValueField: ident.PrimaryValueField,
		CountField: ident.PrimaryCountField,
		Value:      th.Value,
		Count:      th.Count,
	}
}

// FlattenIndicators turns per-category indicator maps into flat records for
// tabular consumers. Records come out in category order; within a category
// the order is value field, count field, average, then auxiliary fields.
func FlattenIndicators(group string, categories []models.Category, ident models.FieldIdentification, auxFields []string) []models.IndicatorRecord {
	ordered := []string{ident.PrimaryValueField, ident.PrimaryCountField, IndicatorAverage}
	ordered = append(ordered, auxFields...)

	records := make([]models.IndicatorRecord, 0, len(categories)*len(ordered))
	for _, cat := range categories {
		seen := make(map[string]bool, len(ordered))
		for _, name := range ordered {
			if seen[name] {
				continue
			}
			seen[name] = true
			if val, ok := cat.Indicators[name]; ok {
				records = append(records, models.IndicatorRecord{
					Group:    group,
					Category: cat.Kind,
					Name:     name,
					Value:    val,
				})
			}
		}
	}
	return records
}
