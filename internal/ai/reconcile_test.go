package ai

import (
	"errors"
	"testing"

	"github.com/arjunks/datahound/internal/profile"
	"github.com/arjunks/datahound/pkg/models"
)

func enrichFixture() profile.EnrichRequest {
	rows := []models.Row{
		{"amt": models.Num(150), "cnt": models.Num(60)},
		{"amt": models.Num(150), "cnt": models.Num(40)},
		{"amt": models.Num(50), "cnt": models.Num(20)},
		{"amt": models.Num(1), "cnt": models.Num(1)},
	}
	ident := models.FieldIdentification{
		PrimaryValueField: "amt",
		PrimaryCountField: "cnt",
		FieldLabels:       map[string]string{"amt": "amt", "cnt": "cnt"},
	}
	th := models.Thresholds{
		Method: models.MethodIQR,
		Value:  &models.FieldStats{Field: "amt", Method: models.MethodIQR, High: 100, Low: 10},
		Count:  &models.FieldStats{Field: "cnt", Method: models.MethodIQR, High: 50, Low: 5},
	}
	categories := profile.Classify(rows, ident, th, nil)
	det := models.ProfileResult{
		Categories: categories,
		Analysis:   "deterministic narrative",
		Indicators: profile.FlattenIndicators("all", categories, ident, nil),
		Rules:      profile.BuildRules(ident, th),
		Params:     profile.BuildParams(ident, th),
		Fields:     ident,
		Thresholds: th,
		Source:     models.SourceDeterministic,
		RowCount:   len(rows),
	}
	return profile.EnrichRequest{
		Rows:          rows,
		Columns:       []string{"amt", "cnt"},
		Fields:        ident,
		Thresholds:    th,
		Deterministic: det,
	}
}

// --- ExtractJSONBlock ---

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"bare json", `{"a": 1}`, `{"a": 1}`, true},
		{"markdown fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`, true},
		{"prose around", "Here you go:\n{\"a\": 1}\nHope that helps!", `{"a": 1}`, true},
		{"nested braces", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`, true},
		{"no json", "sorry, I cannot help", "", false},
		{"only closing brace", "}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONBlock(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ExtractJSONBlock(%q) = (%q, %v), want (%q, %v)",
					tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// --- Reconcile ---

func TestReconcile_InvalidReply(t *testing.T) {
	req := enrichFixture()

	for _, raw := range []string{"no json here", `{"categories": [`} {
		_, err := Reconcile(raw, req)
		if !errors.Is(err, ErrInvalidReply) {
			t.Errorf("Reconcile(%q) error = %v, want ErrInvalidReply", raw, err)
		}
	}
}

func TestReconcile_OverridesObjectCounts(t *testing.T) {
	req := enrichFixture()
	// The model claims wildly wrong counts; local counts must win.
	raw := `{"categories": [
		{"kind": "double_high", "object_count": 99, "confidence": 0.9},
		{"kind": "high_primary", "object_count": 0, "confidence": 0.9},
		{"kind": "high_secondary", "object_count": 42, "confidence": 0.9},
		{"kind": "middle", "object_count": 7, "confidence": 0.9},
		{"kind": "low", "object_count": -3, "confidence": 0.9}
	], "analysis": "model narrative"}`

	result, err := Reconcile(raw, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCounts := []int{1, 1, 0, 1, 1}
	for i, cat := range result.Categories {
		if cat.ObjectCount != wantCounts[i] {
			t.Errorf("%s object count = %d, want %d", cat.Kind, cat.ObjectCount, wantCounts[i])
		}
	}
	if result.Source != models.SourceModel {
		t.Errorf("source = %s, want model", result.Source)
	}
	if result.Analysis != "model narrative" {
		t.Errorf("analysis = %q, want the model narrative", result.Analysis)
	}
}

func TestReconcile_MissingCategoriesRestoredFromLocal(t *testing.T) {
	req := enrichFixture()
	raw := `{"categories": [
		{"kind": "double_high", "object_count": 1, "confidence": 0.8}
	], "analysis": "partial"}`

	result, err := Reconcile(raw, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Categories) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(result.Categories))
	}
	for i, kind := range models.CategoryKinds {
		if result.Categories[i].Kind != kind {
			t.Errorf("position %d: got %s, want %s", i, result.Categories[i].Kind, kind)
		}
	}
	// Restored categories keep the deterministic indicators.
	low := result.Categories[4]
	if low.Indicators["amt"] != 1 || low.Indicators["cnt"] != 1 {
		t.Errorf("restored low indicators = %v", low.Indicators)
	}
}

func TestReconcile_BackfillsMissingIndicators(t *testing.T) {
	req := enrichFixture()
	raw := `{"categories": [
		{"kind": "double_high", "indicators": {"amt": 150}, "object_count": 1, "confidence": 0.8},
		{"kind": "high_primary", "object_count": 1, "confidence": 0.8},
		{"kind": "high_secondary", "object_count": 0, "confidence": 0.8},
		{"kind": "middle", "object_count": 1, "confidence": 0.8},
		{"kind": "low", "object_count": 1, "confidence": 0.8}
	], "analysis": "a"}`

	result, err := Reconcile(raw, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dh := result.Categories[0]
	if dh.Indicators["amt"] != 150 {
		t.Errorf("model-supplied amt = %g, want 150", dh.Indicators["amt"])
	}
	if dh.Indicators["cnt"] != 60 {
		t.Errorf("backfilled cnt = %g, want 60", dh.Indicators["cnt"])
	}
	if _, ok := dh.Indicators["average"]; !ok {
		t.Error("expected average backfilled from deterministic result")
	}
}

func TestReconcile_ClampsConfidence(t *testing.T) {
	req := enrichFixture()
	raw := `{"categories": [
		{"kind": "double_high", "object_count": 1, "confidence": 1.5},
		{"kind": "high_primary", "object_count": 1, "confidence": -0.2},
		{"kind": "high_secondary", "object_count": 0, "confidence": 0.5},
		{"kind": "middle", "object_count": 1, "confidence": 1.0},
		{"kind": "low", "object_count": 1, "confidence": 0.0}
	], "analysis": "a"}`

	result, err := Reconcile(raw, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{1.0, 0.0, 0.5, 1.0, 0.0}
	for i, cat := range result.Categories {
		if cat.Confidence != want[i] {
			t.Errorf("%s confidence = %g, want %g", cat.Kind, cat.Confidence, want[i])
		}
	}
}

func TestReconcile_EmptyAnalysisFallsBackToDeterministic(t *testing.T) {
	req := enrichFixture()
	raw := `{"categories": [], "analysis": "   "}`

	result, err := Reconcile(raw, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Analysis != "deterministic narrative" {
		t.Errorf("analysis = %q, want the deterministic fallback", result.Analysis)
	}
}

func TestReconcile_AuxiliarySumsRecomputed(t *testing.T) {
	req := enrichFixture()
	for i := range req.Rows {
		req.Rows[i]["fee"] = models.Num(float64(i + 1))
	}
	req.Config = models.ProfileConfig{
		AnalysisFields: []models.AnalysisField{
			{FieldName: "amt"}, {FieldName: "cnt"}, {FieldName: "ignored"}, {FieldName: "fee"},
		},
	}
	// Rebuild the deterministic baseline with the aux field present.
	aux := req.Config.AuxFields()
	req.Deterministic.Categories = profile.Classify(req.Rows, req.Fields, req.Thresholds, aux)

	raw := `{"categories": [
		{"kind": "double_high", "indicators": {"fee": 9999}, "object_count": 1, "confidence": 0.9}
	], "analysis": "a"}`

	result, err := Reconcile(raw, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The model's fee value is discarded; local sums are authoritative.
	if result.Categories[0].Indicators["fee"] != 1 {
		t.Errorf("double_high fee = %g, want 1", result.Categories[0].Indicators["fee"])
	}
}

func TestReconcile_IndicatorRecordsRebuilt(t *testing.T) {
	req := enrichFixture()
	raw := `{"categories": [
		{"kind": "double_high", "indicators": {"amt": 150, "cnt": 60, "average": 2.5},
		 "object_count": 1, "confidence": 0.9}
	], "analysis": "a"}`

	result, err := Reconcile(raw, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Indicators) == 0 {
		t.Fatal("expected flattened indicator records")
	}
	for _, rec := range result.Indicators {
		if rec.Group != "all" {
			t.Errorf("record group = %q, want all", rec.Group)
		}
	}
}
