package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arjunks/datahound/internal/profile"
	"github.com/arjunks/datahound/pkg/models"
)

const systemPrompt = `You are a data profiling assistant. You receive a small aggregated dataset together with pre-computed statistical thresholds and a fixed five-way classification rule. Your job is to classify the rows into the five categories and write a short analysis of the result.

Rules you must follow:
- Use the thresholds exactly as given. Never recompute quartiles, means or standard deviations yourself.
- Every row belongs to exactly one category. The five categories must all appear in your reply, in the given order, even when a category has no rows.
- Reply with a single JSON object and nothing else. No markdown fences, no prose outside the JSON.`

// replyShape is the reply contract shown to the model verbatim.
const replyShape = `{
  "categories": [
    {
      "kind": "double_high | high_primary | high_secondary | middle | low",
      "description": "short category description",
      "indicators": {"<field>": <sum>, "average": <value sum / count sum>},
      "object_count": <number of rows in this category>,
      "confidence": <0.0 to 1.0>
    }
  ],
  "analysis": "a few sentences describing the distribution and notable categories"
}`

// BuildPrompt renders the enrichment exchange: a fixed system instruction
// plus a user message carrying the dataset sample, the pre-computed
// thresholds and the restated decision rule. sampleRows bounds how many
// rows are inlined; the totals always describe the full partition.
func BuildPrompt(req profile.EnrichRequest, sampleRows int) ([]models.ChatMessage, error) {
	if sampleRows <= 0 {
		sampleRows = 20
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Dataset: %d rows total", len(req.Rows))
	if req.Config.GroupByField != "" {
		fmt.Fprintf(&b, ", grouped by %q", req.Config.GroupByField)
	}
	b.WriteString(".\n")

	fmt.Fprintf(&b, "Value field: %q", req.Fields.PrimaryValueField)
	if label := req.Fields.FieldLabels[req.Fields.PrimaryValueField]; label != "" {
		fmt.Fprintf(&b, " (%s)", label)
	}
	fmt.Fprintf(&b, "\nCount field: %q", req.Fields.PrimaryCountField)
	if label := req.Fields.FieldLabels[req.Fields.PrimaryCountField]; label != "" {
		fmt.Fprintf(&b, " (%s)", label)
	}
	b.WriteString("\n")
	if aux := req.Config.AuxFields(); len(aux) > 0 {
		fmt.Fprintf(&b, "Auxiliary fields to sum per category: %s\n", strings.Join(aux, ", "))
	}

	b.WriteString("\nPre-computed thresholds (use these verbatim, never recompute):\n")
	writeThresholdSide(&b, "value", req.Thresholds.Value)
	writeThresholdSide(&b, "count", req.Thresholds.Count)

	b.WriteString("\nClassification rule, applied per row in this exact order:\n")
	for _, rule := range req.Deterministic.Rules {
		fmt.Fprintf(&b, "- %s: %s\n", rule.Category, rule.Rule)
	}

	sample := req.Rows
	if len(sample) > sampleRows {
		sample = sample[:sampleRows]
		fmt.Fprintf(&b, "\nFirst %d rows (of %d):\n", sampleRows, len(req.Rows))
	} else {
		b.WriteString("\nRows:\n")
	}
	rowsJSON, err := json.Marshal(sample)
	if err != nil {
		return nil, fmt.Errorf("marshal sample rows: %w", err)
	}
	b.Write(rowsJSON)
	b.WriteString("\n\nReply with exactly this JSON shape:\n")
	b.WriteString(replyShape)

	return []models.ChatMessage{
		{Role: models.RoleSystem, Content: systemPrompt},
		{Role: models.RoleUser, Content: b.String()},
	}, nil
}

func writeThresholdSide(b *strings.Builder, side string, fs *models.FieldStats) {
	if fs == nil {
		return
	}
	switch fs.Method {
	case models.MethodStdDev:
		fmt.Fprintf(b, "- %s field %q: mean=%g stddev=%g high=%g low=%g\n",
			side, fs.Field, fs.Mean, fs.StdDev, fs.High, fs.Low)
	default:
		fmt.Fprintf(b, "- %s field %q: q1=%g median=%g q3=%g iqr=%g high=%g low=%g\n",
			side, fs.Field, fs.Q1, fs.Median, fs.Q3, fs.IQR, fs.High, fs.Low)
	}
}
