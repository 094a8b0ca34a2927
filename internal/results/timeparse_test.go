package results

import "testing"

func TestRepairTimeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.23.45", "1:23:45"},
		{"23.45", "23:45"},
		{"1:23:45", "1:23:45"},
		{"1::23", "1:23"},
		{":23:45", "23:45"},
		{"23:45:", "23:45"},
		{"  1.23.45  ", "1:23:45"},
		{"12.5", "12:5"},
		{"1234.5", "1234:5"},
		{"1.5e3", "1.5e3"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		got := RepairTimeToken(c.in)
		if got != c.want {
			t.Errorf("RepairTimeToken(%q) = %q, want %q", c.in, got, c.want)
		}
		// Repair is idempotent: a second pass must be a no-op.
		if again := RepairTimeToken(got); again != got {
			t.Errorf("RepairTimeToken not idempotent for %q: %q -> %q", c.in, got, again)
		}
	}
}

func TestTimeParserHMS(t *testing.T) {
	p, err := NewTimeParser(FormatHMS)
	if err != nil {
		t.Fatalf("NewTimeParser: %v", err)
	}

	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1:23:45", 5025, true},
		{"01:23:45", 5025, true},
		{"1.23.45", 5025, true},
		{"23:45", 1425, true},
		{"0:00:01", 1, true},
		{"5025", 5025, true},
		{"DNF", 0, false},
		{"", 0, false},
		{"1:2:3:4", 0, false},
		{"abc", 0, false},
		{"999:00:00", 0, false},
	}
	for _, c := range cases {
		got, ok := p.Parse(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("Parse(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestTimeParserMS(t *testing.T) {
	p, err := NewTimeParser(FormatMS)
	if err != nil {
		t.Fatalf("NewTimeParser: %v", err)
	}
	got, ok := p.Parse("23:45")
	if !ok || got != 1425 {
		t.Fatalf("Parse(23:45) = %v, %v; want 1425, true", got, ok)
	}
	// Three colon groups are hours:minutes:seconds regardless of format.
	got, ok = p.Parse("1:23:45")
	if !ok || got != 5025 {
		t.Fatalf("Parse(1:23:45) = %v, %v; want 5025, true", got, ok)
	}
}

func TestTimeParserSeconds(t *testing.T) {
	p, err := NewTimeParser(FormatSeconds)
	if err != nil {
		t.Fatalf("NewTimeParser: %v", err)
	}
	got, ok := p.Parse("5025")
	if !ok || got != 5025 {
		t.Fatalf("Parse(5025) = %v, %v; want 5025, true", got, ok)
	}
	if _, ok := p.Parse("964000"); ok {
		t.Fatal("expected value above the sanity ceiling to be rejected")
	}
}

func TestTimeParserUnknownFormat(t *testing.T) {
	if _, err := NewTimeParser("fortnights"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestTimeParserDefaultsToHMS(t *testing.T) {
	p, err := NewTimeParser("")
	if err != nil {
		t.Fatalf("NewTimeParser: %v", err)
	}
	if p.Format() != FormatHMS {
		t.Fatalf("default format = %q, want %q", p.Format(), FormatHMS)
	}
}
