package ai

import (
	"strings"
	"testing"

	"github.com/arjunks/datahound/pkg/models"
)

func TestBuildPrompt_CarriesThresholdsVerbatim(t *testing.T) {
	req := enrichFixture()
	messages, err := BuildPrompt(req, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(messages))
	}
	if messages[0].Role != models.RoleSystem {
		t.Errorf("first message role = %s, want system", messages[0].Role)
	}
	if !strings.Contains(messages[0].Content, "Never recompute") {
		t.Error("system prompt must forbid recomputing statistics")
	}

	user := messages[1].Content
	for _, want := range []string{
		"4 rows total",
		`Value field: "amt"`,
		`Count field: "cnt"`,
		"high=100",
		"high=50",
		"use these verbatim, never recompute",
		"double_high",
		"low",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestBuildPrompt_TruncatesSample(t *testing.T) {
	req := enrichFixture()
	for i := 0; i < 50; i++ {
		req.Rows = append(req.Rows, models.Row{
			"amt": models.Num(float64(i)), "cnt": models.Num(1),
		})
	}

	messages, err := BuildPrompt(req, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user := messages[1].Content
	if !strings.Contains(user, "First 5 rows (of 54)") {
		t.Errorf("expected sample truncation note:\n%s", user)
	}
	// The totals still describe the whole partition.
	if !strings.Contains(user, "54 rows total") {
		t.Errorf("expected full row total:\n%s", user)
	}
}

func TestBuildPrompt_IncludesReplyShape(t *testing.T) {
	messages, err := BuildPrompt(enrichFixture(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user := messages[1].Content
	if !strings.Contains(user, `"categories"`) || !strings.Contains(user, `"analysis"`) {
		t.Errorf("expected the reply JSON shape in the prompt:\n%s", user)
	}
}

func TestBuildPrompt_MentionsGrouping(t *testing.T) {
	req := enrichFixture()
	req.Config.GroupByField = "region"
	messages, err := BuildPrompt(req, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(messages[1].Content, `grouped by "region"`) {
		t.Error("expected the grouping field in the prompt")
	}
}
