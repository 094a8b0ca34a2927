package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectDelimiter(t *testing.T) {
	cases := []struct {
		name string
		text string
		want rune
	}{
		{"csv", "Pos,Name,Club\n1,Alice,Carnethy\n2,Bob,HBT\n", ','},
		{"tsv", "Pos\tName\tClub\n1\tAlice\tCarnethy\n", '\t'},
		{"pipe", "Pos|Name|Club\n1|Alice|Carnethy\n", '|'},
		{"semicolon", "Pos;Name;Club\n1;Alice;Carnethy\n", ';'},
		{"space", "Pos Name Club\n1 Alice Carnethy\n", ' '},
		{"inconsistent falls back", "Pos,Name\n1 Alice Smith\n", delimWhitespace},
		{"empty", "", delimWhitespace},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DetectDelimiter(c.text); got != c.want {
				t.Errorf("DetectDelimiter = %q, want %q", got, c.want)
			}
		})
	}
}

func TestParseTextCSV(t *testing.T) {
	table, err := ParseText("Pos,Name,Club\n1,Alice Smith,Carnethy\n2,Bob Jones,\n", 0)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if len(table.Columns) != 3 || table.Columns[0] != "Pos" {
		t.Fatalf("Columns = %v", table.Columns)
	}
	if table.Len() != 2 {
		t.Fatalf("rows = %d, want 2", table.Len())
	}
	if table.Rows[0]["Name"] != "Alice Smith" {
		t.Errorf("row 0 Name = %q", table.Rows[0]["Name"])
	}
	if table.Rows[1]["Club"] != "" {
		t.Errorf("row 1 Club = %q, want empty", table.Rows[1]["Club"])
	}
}

func TestParseTextQuotedFields(t *testing.T) {
	table, err := ParseText("Name,Club\n\"Smith, Alice\",Carnethy\n", ',')
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if table.Rows[0]["Name"] != "Smith, Alice" {
		t.Errorf("Name = %q", table.Rows[0]["Name"])
	}
}

func TestParseTextWhitespace(t *testing.T) {
	text := "Pos  Name   Time\n1    Alice  42:51\n2    Bob    43:10\n"
	table, err := ParseText(text, 0)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if len(table.Columns) != 3 {
		t.Fatalf("Columns = %v", table.Columns)
	}
	if table.Rows[1]["Time"] != "43:10" {
		t.Errorf("row 1 Time = %q", table.Rows[1]["Time"])
	}
}

func TestParseTextSkipsBlankRows(t *testing.T) {
	table, err := ParseText("Pos,Name\n1,Alice\n,\n2,Bob\n", ',')
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows = %d, want 2", table.Len())
	}
}

func TestParseTextEmpty(t *testing.T) {
	if _, err := ParseText("   \n  ", 0); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")
	if err := os.WriteFile(path, []byte("Pos,Name\n1,Alice\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	table, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if table.Len() != 1 || table.Source != path {
		t.Fatalf("table = %+v", table)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
