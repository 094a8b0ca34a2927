package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{50, 60, 70, 80, 90})
	if s.Count != 5 {
		t.Errorf("Count = %d, want 5", s.Count)
	}
	if !almostEqual(s.Mean, 70) {
		t.Errorf("Mean = %v, want 70", s.Mean)
	}
	if !almostEqual(s.Median, 70) {
		t.Errorf("Median = %v, want 70", s.Median)
	}
	if !almostEqual(s.Min, 50) || !almostEqual(s.Max, 90) {
		t.Errorf("Min, Max = %v, %v", s.Min, s.Max)
	}
	if s.StdDev <= 0 {
		t.Errorf("StdDev = %v, want > 0", s.StdDev)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || s.Mean != 0 {
		t.Errorf("zero input gave %+v", s)
	}
}

func TestQuantiles(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	qs, err := Quantiles(values, []float64{0.5, 1.0})
	if err != nil {
		t.Fatalf("Quantiles: %v", err)
	}
	if !almostEqual(qs[1], 100) {
		t.Errorf("q(1.0) = %v, want 100", qs[1])
	}
	if qs[0] < 40 || qs[0] > 60 {
		t.Errorf("q(0.5) = %v, want near the middle", qs[0])
	}

	if _, err := Quantiles(values, []float64{1.5}); err == nil {
		t.Error("expected error for out-of-range quantile")
	}
	if _, err := Quantiles(nil, []float64{0.5}); err == nil {
		t.Error("expected error for empty values")
	}
}

func TestDefaultQuantiles(t *testing.T) {
	qs := DefaultQuantiles()
	if len(qs) != 20 {
		t.Fatalf("len = %d, want 20", len(qs))
	}
	if !almostEqual(qs[0], 0.05) || !almostEqual(qs[19], 1.0) {
		t.Errorf("range = %v .. %v", qs[0], qs[19])
	}
}

func TestPercentileForTime(t *testing.T) {
	values := []float64{40, 50, 60, 70}
	if p := PercentileForTime(values, 55); !almostEqual(p, 50) {
		t.Errorf("PercentileForTime(55) = %v, want 50", p)
	}
	if p := PercentileForTime(values, 100); !almostEqual(p, 100) {
		t.Errorf("PercentileForTime(100) = %v, want 100", p)
	}
	if p := PercentileForTime(nil, 55); p != 0 {
		t.Errorf("empty input gave %v", p)
	}
}

func TestTimeForPercentile(t *testing.T) {
	values := []float64{40, 50, 60, 70}
	got, err := TimeForPercentile(values, 100)
	if err != nil {
		t.Fatalf("TimeForPercentile: %v", err)
	}
	if !almostEqual(got, 70) {
		t.Errorf("TimeForPercentile(100) = %v, want 70", got)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	samples := []Sample{
		{Category: "M", Minutes: 50},
		{Category: "M", Minutes: 60},
		{Category: "M40", Minutes: 70},
		{Category: "", Minutes: 10},
	}
	groups := CategoryBreakdown(samples)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	// Fastest mean first; blank categories are dropped.
	if groups[0].Group != "M" || !almostEqual(groups[0].Mean, 55) {
		t.Errorf("first group = %+v", groups[0])
	}
	if groups[1].Group != "M40" || groups[1].Count != 1 {
		t.Errorf("second group = %+v", groups[1])
	}
}

func TestGenderComparison(t *testing.T) {
	samples := []Sample{
		{Gender: "M", Minutes: 50},
		{Gender: "M", Minutes: 60},
		{Gender: "F", Minutes: 58},
		{Gender: "F", Minutes: 66},
	}
	c := GenderComparison(samples)
	if c.A.Count != 2 || c.B.Count != 2 {
		t.Fatalf("counts = %d, %d", c.A.Count, c.B.Count)
	}
	if !almostEqual(c.Difference.Mean, 7) {
		t.Errorf("Difference.Mean = %v, want 7", c.Difference.Mean)
	}
}

func TestClubComparison(t *testing.T) {
	samples := []Sample{
		{HasClub: true, Minutes: 50},
		{HasClub: false, Minutes: 70},
	}
	c := ClubComparison(samples)
	if c.A.Count != 1 || c.B.Count != 1 {
		t.Fatalf("counts = %d, %d", c.A.Count, c.B.Count)
	}
	if !almostEqual(c.Difference.Mean, 20) {
		t.Errorf("Difference.Mean = %v, want 20", c.Difference.Mean)
	}
}

func TestTopPerformers(t *testing.T) {
	samples := []Sample{
		{Name: "C", Minutes: 70},
		{Name: "A", Minutes: 50},
		{Name: "B", Minutes: 60},
	}
	top := TopPerformers(samples, 2)
	if len(top) != 2 || top[0].Name != "A" || top[1].Name != "B" {
		t.Errorf("top = %+v", top)
	}

	all := TopPerformers(samples, 10)
	if len(all) != 3 {
		t.Errorf("oversized n returned %d entries", len(all))
	}
}
