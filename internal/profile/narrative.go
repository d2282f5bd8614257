package profile

import (
	"strings"

	"golang.org/x/text/message"

	"github.com/arjunks/datahound/pkg/models"
)

// Describe assembles the human-readable analysis paragraph: row count,
// method, per-field statistics with the threshold arithmetic spelled out,
// per-category member counts and grand totals of both fields. The printer
// handles locale-correct number rendering; this function is pure formatting
// and never feeds back into classification.
func Describe(p *message.Printer, ident models.FieldIdentification, th models.Thresholds, categories []models.Category, rowCount int) string {
	var b strings.Builder

	switch th.Method {
	case models.MethodStdDev:
		b.WriteString(p.Sprintf("Analyzed %d rows using the mean/standard-deviation method. ", rowCount))
	default:
		b.WriteString(p.Sprintf("Analyzed %d rows using the interquartile-range method. ", rowCount))
	}

	b.WriteString(describeField(p, ident.FieldLabels, th.Value))
	b.WriteString(describeField(p, ident.FieldLabels, th.Count))

	b.WriteString("Category membership: ")
	for i, cat := range categories {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Sprintf("%s %d", cat.Kind, cat.ObjectCount))
	}
	b.WriteString(". ")

	var valueTotal, countTotal float64
	for _, cat := range categories {
		valueTotal += cat.Indicators[ident.PrimaryValueField]
		countTotal += cat.Indicators[ident.PrimaryCountField]
	}
	b.WriteString(p.Sprintf("Grand totals: %s %.2f, %s %.2f.",
		label(ident.FieldLabels, ident.PrimaryValueField), valueTotal,
		label(ident.FieldLabels, ident.PrimaryCountField), countTotal))

	return b.String()
}

func describeField(p *message.Printer, labels map[string]string, fs *models.FieldStats) string {
	if fs == nil {
		return ""
	}
	name := label(labels, fs.Field)
	if fs.Method == models.MethodStdDev {
		return p.Sprintf("Field %q: mean=%.2f, population stddev=%.2f; high = mean + %g*stddev = %.2f, low = mean - %g*stddev = %.2f. ",
			name, fs.Mean, fs.StdDev, fs.UpperMultiplier, fs.High, fs.LowerMultiplier, fs.Low)
	}
	return p.Sprintf("Field %q: Q1=%.2f, median=%.2f, Q3=%.2f, IQR=%.2f; high = Q3 + %g*IQR = %.2f, low = Q1 - %g*IQR = %.2f. ",
		name, fs.Q1, fs.Median, fs.Q3, fs.IQR, fs.UpperMultiplier, fs.High, fs.LowerMultiplier, fs.Low)
}

func label(labels map[string]string, field string) string {
	if l, ok := labels[field]; ok && l != "" {
		return l
	}
	return field
}
