package chart

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	// ErrNoData is returned when a spec has no points to draw.
	ErrNoData = errors.New("chart has no data")
	// ErrUnsupportedKind is returned for kinds that need a map renderer.
	ErrUnsupportedKind = errors.New("unsupported chart kind")
)

// namedColors resolves the CSS colour names used in specs.
var namedColors = map[string]string{
	SingleStateColor: "ff6347",
}

// RenderPNG draws a bar or line spec as a PNG image of the given size.
// Choropleths need geometry tiles and are rejected with ErrUnsupportedKind.
func RenderPNG(w io.Writer, s Spec, width, height int) error {
	if s.DataPoints() == 0 {
		return ErrNoData
	}
	switch s.Kind {
	case KindBar:
		return renderBar(w, s, width, height)
	case KindLine:
		return renderLine(w, s, width, height)
	default:
		return fmt.Errorf("render %s: %w", s.Kind, ErrUnsupportedKind)
	}
}

// renderBar draws one bar per x category valued at the total across series.
// A single series keeps its colour; several series share the first palette
// colour since the image has no per-state stacking.
func renderBar(w io.Writer, s Spec, width, height int) error {
	totals := make(map[string]float64, len(s.XAxis.Categories))
	for _, series := range s.Series {
		for _, p := range series.Points {
			totals[p.X] += p.Y
		}
	}

	color := toColor("")
	if len(s.Series) == 1 {
		color = toColor(s.Series[0].Color)
	}

	var (
		bars []gochart.Value
		maxY float64
	)
	for _, category := range s.XAxis.Categories {
		total, ok := totals[category]
		if !ok {
			continue
		}
		maxY = max(maxY, total)
		bars = append(bars, gochart.Value{
			Label: category,
			Value: total,
			Style: gochart.Style{FillColor: color, StrokeColor: color},
		})
	}
	if len(bars) == 0 {
		return ErrNoData
	}
	if maxY == 0 {
		maxY = 1
	}

	slot := max((width-120)/len(bars), 6)
	c := gochart.BarChart{
		Width:      width,
		Height:     height,
		BarWidth:   slot * 2 / 3,
		BarSpacing: slot / 3,
		Bars:       bars,
		YAxis: gochart.YAxis{
			Name:  s.YAxis.Title,
			Range: &gochart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
	}
	if err := c.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// renderLine plots each series against the position of its x label in the
// axis categories (1-based).
func renderLine(w io.Writer, s Spec, width, height int) error {
	ticks := make([]gochart.Tick, len(s.XAxis.Categories))
	for i, category := range s.XAxis.Categories {
		ticks[i] = gochart.Tick{Value: float64(i + 1), Label: shortLabel(category)}
	}

	var (
		series []gochart.Series
		maxY   float64
	)
	for _, sr := range s.Series {
		xs := make([]float64, 0, len(sr.Points))
		ys := make([]float64, 0, len(sr.Points))
		for _, p := range sr.Points {
			i := slices.Index(s.XAxis.Categories, p.X)
			if i < 0 {
				continue
			}
			xs = append(xs, float64(i+1))
			ys = append(ys, p.Y)
			maxY = max(maxY, p.Y)
		}
		if len(xs) == 0 {
			continue
		}
		c := toColor(sr.Color)
		style := gochart.Style{StrokeColor: c, StrokeWidth: 2, DotColor: c, DotWidth: 3}
		// go-chart needs at least two x values per series.
		if len(xs) == 1 {
			xs = append(xs, xs[0])
			ys = append(ys, ys[0])
			style.DotWidth = 6
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    sr.Name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}
	if len(series) == 0 {
		return ErrNoData
	}
	if maxY == 0 {
		maxY = 1
	}

	c := gochart.Chart{
		Width:  width,
		Height: height,
		XAxis: gochart.XAxis{
			Name:  s.XAxis.Title,
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: 1, Max: float64(max(len(ticks), 2))},
		},
		YAxis: gochart.YAxis{
			Name:  s.YAxis.Title,
			Range: &gochart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
		Series: series,
	}
	if err := c.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}

func toColor(name string) drawing.Color {
	if name == "" {
		return drawing.ColorFromHex(strings.TrimPrefix(palette[0], "#"))
	}
	if hex, ok := namedColors[name]; ok {
		return drawing.ColorFromHex(hex)
	}
	return drawing.ColorFromHex(strings.TrimPrefix(name, "#"))
}

func shortLabel(s string) string {
	if len(s) > 3 {
		return s[:3]
	}
	return s
}
