// Package profile implements the deterministic profiling engine: dynamic
// field identification, statistical threshold computation, the five-way
// classification rule, per-category aggregation, grouped analysis and
// narrative assembly.
package profile

import (
	"strings"

	"github.com/arjunks/datahound/pkg/models"
)

// Column-name tokens that signal an aggregate sum, checked case-insensitively.
// Deliberately domain-agnostic: no business vocabulary beyond generic
// aggregation words.
var sumTokens = []string{"sum", "total", "amount", "amt", "value", "val"}

// Column-name tokens that signal a count-like column.
var countTokens = []string{"count", "cnt", "qty", "quantity", "freq", "times", "num"}

// Identify resolves the primary value field, primary count field and
// optional secondary value field for a row set. Resolution priority, first
// match wins:
//
//  1. user-configured analysis fields taken in order (0 → value, 1 → count,
//     2 → secondary);
//  2. a numeric column whose name signals an aggregate sum;
//  3. the first column found numeric by sampling.
//
// The count fallback additionally tries any numeric column whose name
// contains a count-like token before giving up. Field labels default to the
// raw column names. Pure function; callers must pre-validate that rows is
// non-empty and that configured names exist in columns.
func Identify(rows []models.Row, columns []string, cfg models.ProfileConfig) models.FieldIdentification {
	ident := models.FieldIdentification{
		FieldLabels: make(map[string]string, len(columns)),
	}
	for _, c := range columns {
		ident.FieldLabels[c] = c
	}

	numeric := numericColumns(rows, columns)

	// 1. Configured analysis fields, in order.
	if fields := cfg.AnalysisFields; len(fields) > 0 {
		if len(fields) > 0 && contains(columns, fields[0].FieldName) {
			ident.PrimaryValueField = fields[0].FieldName
		}
		if len(fields) > 1 && contains(columns, fields[1].FieldName) {
			ident.PrimaryCountField = fields[1].FieldName
		}
		if len(fields) > 2 && contains(columns, fields[2].FieldName) {
			ident.SecondaryValueField = fields[2].FieldName
		}
	}

	// 2. A numeric column whose name signals an aggregate sum.
	if ident.PrimaryValueField == "" {
		for _, c := range columns {
			if numeric[c] && hasToken(c, sumTokens) {
				ident.PrimaryValueField = c
				break
			}
		}
	}

	// 3. First numeric column by sampling.
	if ident.PrimaryValueField == "" {
		for _, c := range columns {
			if numeric[c] {
				ident.PrimaryValueField = c
				break
			}
		}
	}

	// Count fallback: a numeric column with a count-like name, excluding the
	// column already chosen as the value field.
	if ident.PrimaryCountField == "" {
		for _, c := range columns {
			if c == ident.PrimaryValueField {
				continue
			}
			if numeric[c] && hasToken(c, countTokens) {
				ident.PrimaryCountField = c
				break
			}
		}
	}

	return ident
}

// numericColumns samples the entire row set: a column is numeric if any row
// holds a finite number there. Mixed and missing values are tolerated; they
// are filtered out during extraction, not here.
func numericColumns(rows []models.Row, columns []string) map[string]bool {
	numeric := make(map[string]bool, len(columns))
	for _, c := range columns {
		for _, r := range rows {
			if _, ok := r.Num(c); ok {
				numeric[c] = true
				break
			}
		}
	}
	return numeric
}

func hasToken(name string, tokens []string) bool {
	lower := strings.ToLower(name)
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func contains(columns []string, name string) bool {
	if name == "" {
		return false
	}
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}
