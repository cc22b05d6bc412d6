// Package chart renders spending views as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/raseed/internal/heatmap"
	"github.com/Veraticus/raseed/internal/period"
	"github.com/Veraticus/raseed/internal/weekly"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

const (
	width  = 1024
	height = 512
)

var background = chart.Style{
	Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
	FillColor: chart.ColorWhite,
}

func amountFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

// yRange pins the y axis at zero; go-chart rejects a zero-height range.
func yRange(maxValue float64) *chart.ContinuousRange {
	if maxValue <= 0 {
		maxValue = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1}
}

// WeeklyPNG renders one bar per week row.
func WeeklyPNG(w io.Writer, title string, weeks []weekly.Week) error {
	if len(weeks) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, 0, len(weeks))
	maxValue := 0.0
	for _, wk := range weeks {
		v := wk.Days.Total().InexactFloat64()
		maxValue = max(maxValue, v)
		bars = append(bars, chart.Value{
			Label: wk.Label(),
			Value: v,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("4285F4"),
				StrokeColor: drawing.ColorFromHex("4285F4"),
			},
		})
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		BarWidth:   60,
		Background: background,
		YAxis: chart.YAxis{
			Range:          yRange(maxValue),
			ValueFormatter: amountFormatter,
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render weekly chart: %w", err)
	}
	return nil
}

// DailyPNG renders the month's daily totals as a line, x being the day of month.
func DailyPNG(w io.Writer, title string, cells []*heatmap.Cell) error {
	var xs, ys []float64
	maxValue := 0.0
	for _, c := range cells {
		if c == nil {
			continue
		}
		v := c.Amount.InexactFloat64()
		maxValue = max(maxValue, v)
		xs = append(xs, float64(c.Day))
		ys = append(ys, v)
	}
	if len(xs) < 2 {
		return ErrNoData
	}

	graph := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: background,
		XAxis: chart.XAxis{
			Range:          &chart.ContinuousRange{Min: 1, Max: xs[len(xs)-1]},
			ValueFormatter: amountFormatter,
		},
		YAxis: chart.YAxis{
			Range:          yRange(maxValue),
			ValueFormatter: amountFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Daily spend",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("34A853"),
					StrokeWidth: 2,
					FillColor:   drawing.ColorFromHex("34A853").WithAlpha(64),
				},
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render daily chart: %w", err)
	}
	return nil
}

// CategoriesPNG renders a summary's category breakdown as a pie.
func CategoriesPNG(w io.Writer, s period.Summary) error {
	values := make([]chart.Value, 0, len(s.Categories))
	for _, c := range s.Categories {
		if !c.Amount.IsPositive() {
			continue
		}
		color := drawing.ColorFromHex(trimHash(c.ColorToken))
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d%%)", c.Name, c.PercentOfTotal),
			Value: c.Amount.InexactFloat64(),
			Style: chart.Style{FillColor: color, StrokeColor: chart.ColorWhite},
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	pie := chart.PieChart{
		Title:      fmt.Sprintf("Last %d days", int(s.Window)),
		Width:      height,
		Height:     height,
		Background: background,
		Values:     values,
	}

	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render category chart: %w", err)
	}
	return nil
}

func trimHash(hex string) string {
	if len(hex) > 0 && hex[0] == '#' {
		return hex[1:]
	}
	return hex
}
