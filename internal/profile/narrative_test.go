package profile

import (
	"strings"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/arjunks/datahound/pkg/models"
)

func TestDescribe_IQRNarrative(t *testing.T) {
	p := message.NewPrinter(language.English)
	rows := numRows("amt", 10, 11, 12, 15, 100)
	for i := range rows {
		rows[i]["cnt"] = models.Num(float64(i + 1))
	}
	th := ComputeThresholds(rows, "amt", "cnt", models.DefaultMethodConfig())
	categories := Classify(rows, testIdent(), th, nil)

	got := Describe(p, testIdent(), th, categories, len(rows))

	for _, want := range []string{
		"Analyzed 5 rows using the interquartile-range method",
		"Q1=11.00",
		"Q3=15.00",
		"IQR=4.00",
		"high = Q3 + 1.5*IQR = 21.00",
		"Category membership:",
		"Grand totals:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("narrative missing %q:\n%s", want, got)
		}
	}
}

func TestDescribe_StdDevNarrative(t *testing.T) {
	p := message.NewPrinter(language.English)
	rows := numRows("amt", 2, 4, 4, 4, 5, 5, 7, 9)
	for i := range rows {
		rows[i]["cnt"] = models.Num(1)
	}
	method := models.MethodConfig{Method: models.MethodStdDev}
	th := ComputeThresholds(rows, "amt", "cnt", method)
	categories := Classify(rows, testIdent(), th, nil)

	got := Describe(p, testIdent(), th, categories, len(rows))

	if !strings.Contains(got, "mean/standard-deviation method") {
		t.Errorf("narrative missing method name:\n%s", got)
	}
	if !strings.Contains(got, "mean=5.00") {
		t.Errorf("narrative missing mean:\n%s", got)
	}
	if !strings.Contains(got, "population stddev=2.00") {
		t.Errorf("narrative missing stddev:\n%s", got)
	}
}

func TestDescribe_UsesFieldLabels(t *testing.T) {
	p := message.NewPrinter(language.English)
	ident := testIdent()
	ident.FieldLabels["amt"] = "Total Amount"

	rows := numRows("amt", 1, 2, 3)
	for i := range rows {
		rows[i]["cnt"] = models.Num(1)
	}
	th := ComputeThresholds(rows, "amt", "cnt", models.DefaultMethodConfig())
	categories := Classify(rows, ident, th, nil)

	got := Describe(p, ident, th, categories, len(rows))
	if !strings.Contains(got, "Total Amount") {
		t.Errorf("narrative should use the configured label:\n%s", got)
	}
}

func TestBuildRules_EmbedsThresholds(t *testing.T) {
	th := testThresholds(21, 11, 8, 2)
	rules := BuildRules(testIdent(), th)

	if len(rules) != 5 {
		t.Fatalf("expected 5 rules, got %d", len(rules))
	}
	if rules[0].Category != models.CategoryDoubleHigh {
		t.Errorf("first rule category = %s, want double_high", rules[0].Category)
	}
	if rules[0].Rule != "amt >= 21 and cnt >= 8" {
		t.Errorf("double_high rule = %q", rules[0].Rule)
	}
	if rules[3].Rule != "11 < amt < 21 and 2 < cnt < 8" {
		t.Errorf("middle rule = %q", rules[3].Rule)
	}
	if !strings.Contains(rules[4].Rule, "all remaining rows") {
		t.Errorf("low rule = %q", rules[4].Rule)
	}
}

func TestFlattenIndicators_Order(t *testing.T) {
	th := testThresholds(100, 10, 50, 5)
	rows := []models.Row{
		{"amt": models.Num(150), "cnt": models.Num(60), "fee": models.Num(3)},
	}
	categories := Classify(rows, testIdent(), th, []string{"fee"})

	records := FlattenIndicators("west", categories, testIdent(), []string{"fee"})

	// 5 categories x 4 indicators each.
	if len(records) != 20 {
		t.Fatalf("expected 20 records, got %d", len(records))
	}
	wantNames := []string{"amt", "cnt", IndicatorAverage, "fee"}
	for i, name := range wantNames {
		if records[i].Name != name {
			t.Errorf("record %d name = %q, want %q", i, records[i].Name, name)
		}
	}
	for _, rec := range records {
		if rec.Group != "west" {
			t.Errorf("record group = %q, want west", rec.Group)
		}
	}
}
