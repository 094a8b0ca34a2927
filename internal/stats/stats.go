// Package stats computes descriptive statistics over finish times: summary
// figures, quantiles, percentile lookups and group comparisons.
package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Sample is one finisher's time with the grouping attributes the breakdowns
// use. Minutes is the finish time; HasClub distinguishes attached runners.
type Sample struct {
	Name     string
	Gender   string
	Category string
	Club     string
	HasClub  bool
	Minutes  float64
}

// Summary holds the spread of one group of finish times.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// GroupSummary is a Summary labelled with its group.
type GroupSummary struct {
	Group string
	Summary
}

// Comparison contrasts two groups; Difference is B minus A per statistic.
type Comparison struct {
	LabelA, LabelB string
	A, B           Summary
	Difference     Summary
}

// Summarize computes summary statistics for a set of times. An empty input
// returns a zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := Summary{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

// DefaultQuantiles returns twenty evenly spaced quantiles from 0.05 to 1.
func DefaultQuantiles() []float64 {
	qs := make([]float64, 20)
	for i := range qs {
		qs[i] = 0.05 * float64(i+1)
	}
	return qs
}

// Quantiles evaluates the requested quantiles (0-1) over the values.
func Quantiles(values []float64, qs []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no values to compute quantiles over")
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	out := make([]float64, len(qs))
	for i, q := range qs {
		if q < 0 || q > 1 {
			return nil, fmt.Errorf("quantile %v out of range [0, 1]", q)
		}
		out[i] = stat.Quantile(q, stat.Empirical, sorted, nil)
	}
	return out, nil
}

// PercentileForTime reports what percentile (0-100) of the field finished at
// or under the given time.
func PercentileForTime(values []float64, time float64) float64 {
	if len(values) == 0 {
		return 0
	}
	atOrUnder := 0
	for _, v := range values {
		if v <= time {
			atOrUnder++
		}
	}
	return 100 * float64(atOrUnder) / float64(len(values))
}

// TimeForPercentile returns the finish time at the given percentile (0-100).
func TimeForPercentile(values []float64, percentile float64) (float64, error) {
	qs, err := Quantiles(values, []float64{percentile / 100})
	if err != nil {
		return 0, err
	}
	return qs[0], nil
}

// CategoryBreakdown summarizes times per age category, fastest mean first.
func CategoryBreakdown(samples []Sample) []GroupSummary {
	groups := make(map[string][]float64)
	for _, s := range samples {
		if s.Category == "" {
			continue
		}
		groups[s.Category] = append(groups[s.Category], s.Minutes)
	}

	out := make([]GroupSummary, 0, len(groups))
	for cat, values := range groups {
		out = append(out, GroupSummary{Group: cat, Summary: Summarize(values)})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Mean != out[b].Mean {
			return out[a].Mean < out[b].Mean
		}
		return out[a].Group < out[b].Group
	})
	return out
}

// GenderComparison contrasts male and female finish times.
func GenderComparison(samples []Sample) Comparison {
	var male, female []float64
	for _, s := range samples {
		switch s.Gender {
		case "M":
			male = append(male, s.Minutes)
		case "F":
			female = append(female, s.Minutes)
		}
	}
	return compare("Male", "Female", male, female)
}

// ClubComparison contrasts attached and unattached finish times.
func ClubComparison(samples []Sample) Comparison {
	var attached, unattached []float64
	for _, s := range samples {
		if s.HasClub {
			attached = append(attached, s.Minutes)
		} else {
			unattached = append(unattached, s.Minutes)
		}
	}
	return compare("Club", "Unattached", attached, unattached)
}

// TopPerformers returns the n fastest samples, fastest first. Ties keep
// input order.
func TopPerformers(samples []Sample, n int) []Sample {
	sorted := append([]Sample(nil), samples...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Minutes < sorted[b].Minutes
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

func compare(labelA, labelB string, a, b []float64) Comparison {
	sa, sb := Summarize(a), Summarize(b)
	return Comparison{
		LabelA: labelA,
		LabelB: labelB,
		A:      sa,
		B:      sb,
		Difference: Summary{
			Count:  sb.Count - sa.Count,
			Mean:   sb.Mean - sa.Mean,
			Median: sb.Median - sa.Median,
			StdDev: sb.StdDev - sa.StdDev,
			Min:    sb.Min - sa.Min,
			Max:    sb.Max - sa.Max,
		},
	}
}
