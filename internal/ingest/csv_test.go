package ingest

import (
	"strings"
	"testing"

	"github.com/arjunks/datahound/pkg/models"
)

func TestCSV_TypesCells(t *testing.T) {
	input := strings.Join([]string{
		"region,total_amt,tx_count,note",
		"west,10.5,2,ok",
		"east,,3,",
		"south,n/a,4,flagged",
	}, "\n")

	columns, rows, err := CSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"region", "total_amt", "tx_count", "note"}
	if len(columns) != len(want) {
		t.Fatalf("columns = %v, want %v", columns, want)
	}
	for i := range want {
		if columns[i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, columns[i], want[i])
		}
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	if n, ok := rows[0].Num("total_amt"); !ok || n != 10.5 {
		t.Errorf("row 0 total_amt = (%g, %v), want (10.5, true)", n, ok)
	}
	if rows[0]["region"].Kind != models.KindText || rows[0]["region"].Str != "west" {
		t.Errorf("row 0 region = %+v, want text west", rows[0]["region"])
	}
	if rows[1]["total_amt"].Kind != models.KindMissing {
		t.Errorf("empty cell should be missing, got %+v", rows[1]["total_amt"])
	}
	if rows[2]["total_amt"].Kind != models.KindText {
		t.Errorf("non-numeric cell should stay text, got %+v", rows[2]["total_amt"])
	}
}

func TestCSV_ShortRecordsPadWithMissing(t *testing.T) {
	reader := strings.NewReader("a,b,c\n1,2\n")
	_, rows, err := CSV(reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["c"].Kind != models.KindMissing {
		t.Errorf("expected missing c, got %+v", rows[0]["c"])
	}
}

func TestCSV_EmptyInput(t *testing.T) {
	_, _, err := CSV(strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestCSV_HeaderOnly(t *testing.T) {
	columns, rows, err := CSV(strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(columns) != 2 || len(rows) != 0 {
		t.Errorf("got %d columns, %d rows; want 2, 0", len(columns), len(rows))
	}
}

func TestCSV_ExtraCellsBeyondHeaderDropped(t *testing.T) {
	_, rows, err := CSV(strings.NewReader("a,b\n1,2,3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 2 {
		t.Errorf("rows = %v, want one row with two cells", rows)
	}
}

func TestParseCell_InfinityStaysText(t *testing.T) {
	for _, raw := range []string{"Inf", "+Inf", "-Inf", "NaN"} {
		v := parseCell(raw)
		if v.Kind != models.KindText {
			t.Errorf("parseCell(%q).Kind = %v, want text", raw, v.Kind)
		}
	}
}

func TestInferColumns_SortedUnion(t *testing.T) {
	rows := []models.Row{
		{"b": models.Num(1), "a": models.Num(2)},
		{"c": models.Text("x")},
	}
	got := InferColumns(rows)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, got[i], want[i])
		}
	}
}
