// Package report renders rating-history and finish-time charts to
// self-contained HTML pages.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/fellrank-data/race.report/internal/db"
)

// defaultHistogramBins is used when the caller does not pick a bin count.
const defaultHistogramBins = 20

// RatingHistory renders a runner's rating over the years as a line chart.
func RatingHistory(w io.Writer, runnerName string, history []db.RatingRow) error {
	if len(history) == 0 {
		return fmt.Errorf("no rating history for %s", runnerName)
	}

	sorted := append([]db.RatingRow(nil), history...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Year < sorted[b].Year })

	years := make([]string, len(sorted))
	points := make([]opts.LineData, len(sorted))
	for i, row := range sorted {
		years[i] = fmt.Sprintf("%d", row.Year)
		points[i] = opts.LineData{Value: row.Rating}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Rating history: %s", runnerName),
			Subtitle: fmt.Sprintf("%d rated seasons", len(sorted)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rating", Scale: opts.Bool(true)}),
	)
	line.SetXAxis(years)
	line.AddSeries("rating", points,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render rating history: %w", err)
	}
	return nil
}

// FinishTimeHistogram renders the distribution of finish times (minutes) as
// a bar chart. bins <= 0 picks a default.
func FinishTimeHistogram(w io.Writer, title string, minutes []float64, bins int) error {
	if len(minutes) == 0 {
		return fmt.Errorf("no finish times to chart")
	}
	if bins <= 0 {
		bins = defaultHistogramBins
	}

	lo, hi := minutes[0], minutes[0]
	for _, v := range minutes {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	width := (hi - lo) / float64(bins)
	if width == 0 {
		width = 1
	}

	counts := make([]int, bins)
	for _, v := range minutes {
		idx := int(math.Floor((v - lo) / width))
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	labels := make([]string, bins)
	bars := make([]opts.BarData, bins)
	for i := range counts {
		labels[i] = fmt.Sprintf("%.0f", lo+width*float64(i))
		bars[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d finishers", len(minutes)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Minutes"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Finishers"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("finishers", bars)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render histogram: %w", err)
	}
	return nil
}

// WriteRatingHistory renders a runner's rating history to an HTML file.
func WriteRatingHistory(path, runnerName string, history []db.RatingRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	return RatingHistory(f, runnerName, history)
}

// WriteFinishTimeHistogram renders a finish-time histogram to an HTML file.
func WriteFinishTimeHistogram(path, title string, minutes []float64, bins int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	return FinishTimeHistogram(f, title, minutes, bins)
}
