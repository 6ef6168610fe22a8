// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"encoding/json"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/healthdash/pkg/types"
)

// Config sets chart geometry and colours.
type Config struct {
	// Width and Height of each chart in CSS pixels.
	// Default: 720 x 360
	Width  int
	Height int

	// Padding around the plot area. Default: 56
	Padding int

	// FontFamily for all chart text. Default: "Helvetica, Arial, sans-serif"
	FontFamily string

	// Palette is cycled for bars, series and slices.
	Palette []string

	GridColor   string
	AxisColor   string
	TargetColor string
}

// DefaultConfig returns the dashboard chart style.
func DefaultConfig() Config {
	return Config{
		Width:       720,
		Height:      360,
		Padding:     56,
		FontFamily:  "Helvetica, Arial, sans-serif",
		Palette:     []string{"#2563eb", "#dc2626", "#16a34a", "#9333ea", "#ea580c", "#0891b2", "#ca8a04"},
		GridColor:   "#e5e7eb",
		AxisColor:   "#374151",
		TargetColor: "#6b7280",
	}
}

func (c Config) color(i int) string {
	if len(c.Palette) == 0 {
		return "#2563eb"
	}
	return c.Palette[i%len(c.Palette)]
}

// canvas accumulates SVG markup for one chart.
type canvas struct {
	sb  strings.Builder
	cfg Config
}

func newCanvas(cfg Config, title string) *canvas {
	c := &canvas{cfg: cfg}
	fmt.Fprintf(&c.sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" role="img" aria-label="%s" font-family="%s">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, escape(title), escape(cfg.FontFamily))
	fmt.Fprintf(&c.sb, `<rect width="%d" height="%d" fill="#ffffff"/>`, cfg.Width, cfg.Height)
	return c
}

func (c *canvas) printf(format string, args ...any) {
	fmt.Fprintf(&c.sb, format, args...)
}

func (c *canvas) text(x, y float64, anchor, class, s string) {
	c.printf(`<text x="%.1f" y="%.1f" text-anchor="%s" class="%s" font-size="%s" fill="%s">%s</text>`,
		x, y, anchor, class, fontSize(class), c.cfg.AxisColor, escape(s))
}

func (c *canvas) close() string {
	c.sb.WriteString("</svg>")
	return c.sb.String()
}

func fontSize(class string) string {
	switch class {
	case "caption":
		return "14"
	case "axis-label":
		return "12"
	default:
		return "11"
	}
}

// plot is the rectangle inside the padding.
type plot struct {
	x0, y0, x1, y1 float64
}

func (c Config) plotArea() plot {
	p := float64(c.Padding)
	return plot{x0: p, y0: p / 2, x1: float64(c.Width) - p, y1: float64(c.Height) - p}
}

func (p plot) width() float64  { return p.x1 - p.x0 }
func (p plot) height() float64 { return p.y1 - p.y0 }

// scaleValue maps value from [srcMin, srcMax] onto [dstMin, dstMax].
func scaleValue(value, srcMin, srcMax, dstMin, dstMax float64) float64 {
	if srcMax == srcMin {
		return (dstMin + dstMax) / 2
	}
	return dstMin + (value-srcMin)*(dstMax-dstMin)/(srcMax-srcMin)
}

// niceTicks returns evenly spaced round tick values covering [lo, hi].
func niceTicks(lo, hi float64, maxTicks int) []float64 {
	if hi <= lo {
		return []float64{lo}
	}
	rough := (hi - lo) / float64(maxTicks)
	magnitude := math.Pow(10, math.Floor(math.Log10(rough)))
	var step float64
	switch residual := rough / magnitude; {
	case residual <= 1.5:
		step = magnitude
	case residual <= 3:
		step = 2 * magnitude
	case residual <= 7:
		step = 5 * magnitude
	default:
		step = 10 * magnitude
	}

	var ticks []float64
	for t := math.Floor(lo/step) * step; t <= hi+step*0.01; t += step {
		if t >= lo-step*0.01 {
			ticks = append(ticks, math.Round(t/step)*step)
		}
	}
	return ticks
}

// bounds returns a padded [lo, hi] covering values. When zero is true the
// range is anchored at zero for non-negative data.
func bounds(values []float64, zero bool) (float64, float64) {
	if len(values) == 0 {
		return 0, 1
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if zero && lo > 0 {
		lo = 0
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.08
	if !(zero && lo == 0) {
		lo -= pad
	}
	return lo, hi + pad
}

func formatTick(v float64) string {
	switch a := math.Abs(v); {
	case a >= 1000:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case a >= 10 || v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

// number reads a numeric field of d. Strings holding numbers are accepted.
func number(d types.Datum, key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// label reads a category field of d as text.
func label(d types.Datum, key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func escape(s string) string {
	return html.EscapeString(s)
}
