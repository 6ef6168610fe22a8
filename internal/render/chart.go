// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render draws chart specs as inline SVG and lays them out in the
// dashboard HTML page together with the analysis text.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/healthdash/pkg/types"
)

// ErrUnknownChartKind is returned for a spec whose kind has no renderer.
var ErrUnknownChartKind = errors.New("unknown chart kind")

// Renderer draws charts with a fixed style.
type Renderer struct {
	cfg Config
}

// New creates a renderer. Zero-valued geometry falls back to DefaultConfig.
func New(cfg Config) *Renderer {
	d := DefaultConfig()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = d.Width, d.Height
	}
	if cfg.Padding <= 0 {
		cfg.Padding = d.Padding
	}
	if cfg.FontFamily == "" {
		cfg.FontFamily = d.FontFamily
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = d.Palette
	}
	if cfg.GridColor == "" {
		cfg.GridColor = d.GridColor
	}
	if cfg.AxisColor == "" {
		cfg.AxisColor = d.AxisColor
	}
	if cfg.TargetColor == "" {
		cfg.TargetColor = d.TargetColor
	}
	return &Renderer{cfg: cfg}
}

// Chart renders spec as a standalone SVG element. Data points are read only
// through the keys the spec declares.
func (r *Renderer) Chart(spec types.ChartSpec) (string, error) {
	switch spec.Kind {
	case types.ChartBar:
		return r.bar(spec), nil
	case types.ChartLine:
		return r.line(spec), nil
	case types.ChartDualLine:
		return r.dualLine(spec), nil
	case types.ChartCorrelationScatter:
		return r.scatter(spec), nil
	case types.ChartPie:
		return r.pie(spec), nil
	default:
		return "", fmt.Errorf("rendering %q: %w: %s", spec.Title, ErrUnknownChartKind, spec.Kind)
	}
}

func (r *Renderer) empty(spec types.ChartSpec) string {
	c := newCanvas(r.cfg, spec.Title)
	c.text(float64(r.cfg.Width)/2, float64(r.cfg.Height)/2, "middle", "caption", "No data available")
	return c.close()
}

// yAxis draws horizontal grid lines and tick labels on the left or right
// edge of p for [lo, hi].
func (r *Renderer) yAxis(c *canvas, p plot, lo, hi float64, right bool, color string) {
	x, anchor, dx := p.x0, "end", -6.0
	if right {
		x, anchor, dx = p.x1, "start", 6.0
	}
	for _, t := range niceTicks(lo, hi, 6) {
		y := scaleValue(t, lo, hi, p.y1, p.y0)
		if !right {
			c.printf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
				p.x0, y, p.x1, y, r.cfg.GridColor)
		}
		c.printf(`<text x="%.1f" y="%.1f" text-anchor="%s" dominant-baseline="middle" class="tick" font-size="11" fill="%s">%s</text>`,
			x+dx, y, anchor, color, formatTick(t))
	}
	c.printf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`, x, p.y0, x, p.y1, color)
}

// xCategories draws the baseline and evenly spaced category labels,
// thinning labels when they would crowd.
func (r *Renderer) xCategories(c *canvas, p plot, labels []string) []float64 {
	xs := make([]float64, len(labels))
	step := 1
	if n := len(labels); n > 12 {
		step = (n + 11) / 12
	}
	for i, l := range labels {
		xs[i] = p.x0 + (float64(i)+0.5)*p.width()/float64(len(labels))
		if i%step == 0 {
			c.text(xs[i], p.y1+16, "middle", "tick", l)
		}
	}
	c.printf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`, p.x0, p.y1, p.x1, p.y1, r.cfg.AxisColor)
	return xs
}

func (r *Renderer) axisLabels(c *canvas, p plot, xLabel, yLabel string) {
	if xLabel != "" {
		c.text((p.x0+p.x1)/2, float64(r.cfg.Height)-10, "middle", "axis-label", xLabel)
	}
	if yLabel != "" {
		c.printf(`<text transform="translate(14,%.1f) rotate(-90)" text-anchor="middle" class="axis-label" font-size="12" fill="%s">%s</text>`,
			(p.y0+p.y1)/2, r.cfg.AxisColor, escape(yLabel))
	}
}

func (r *Renderer) bar(spec types.ChartSpec) string {
	var labels []string
	var values []float64
	for _, d := range spec.Data {
		v, ok := number(d, spec.DataKey)
		if !ok {
			continue
		}
		labels = append(labels, label(d, spec.NameKey))
		values = append(values, v)
	}
	if len(values) == 0 {
		return r.empty(spec)
	}

	c := newCanvas(r.cfg, spec.Title)
	p := r.cfg.plotArea()
	lo, hi := bounds(values, true)
	r.yAxis(c, p, lo, hi, false, r.cfg.AxisColor)
	xs := r.xCategories(c, p, labels)

	slot := p.width() / float64(len(values))
	w := slot * 0.7
	base := scaleValue(math.Max(lo, 0), lo, hi, p.y1, p.y0)
	for i, v := range values {
		y := scaleValue(v, lo, hi, p.y1, p.y0)
		top, h := math.Min(y, base), math.Abs(base-y)
		c.printf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s: %s</title></rect>`,
			xs[i]-w/2, top, w, h, r.cfg.color(0), escape(labels[i]), formatTick(v))
	}
	r.axisLabels(c, p, spec.XLabel, spec.YLabel)
	return c.close()
}

func (r *Renderer) line(spec types.ChartSpec) string {
	targetKey := spec.TargetKey
	if targetKey == "" {
		targetKey = types.DefaultTargetKey
	}

	var labels []string
	var values, all []float64
	var targets []point
	for _, d := range spec.Data {
		v, ok := number(d, spec.DataKey)
		if !ok {
			continue
		}
		labels = append(labels, label(d, spec.NameKey))
		values = append(values, v)
		all = append(all, v)
		if t, ok := number(d, targetKey); ok {
			// x holds the category index until positions are known.
			targets = append(targets, point{x: float64(len(values) - 1), y: t})
			all = append(all, t)
		}
	}
	if len(values) == 0 {
		return r.empty(spec)
	}

	c := newCanvas(r.cfg, spec.Title)
	p := r.cfg.plotArea()
	lo, hi := bounds(all, false)
	r.yAxis(c, p, lo, hi, false, r.cfg.AxisColor)
	xs := r.xCategories(c, p, labels)

	if len(targets) > 0 {
		tp := make([]point, len(targets))
		for i, t := range targets {
			tp[i] = point{x: xs[int(t.x)], y: scaleValue(t.y, lo, hi, p.y1, p.y0)}
		}
		c.printf(`<path class="target" d="%s" fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="6,4"/>`,
			linearPath(tp), r.cfg.TargetColor)
	}

	pts := make([]point, len(values))
	for i, v := range values {
		pts[i] = point{x: xs[i], y: scaleValue(v, lo, hi, p.y1, p.y0)}
	}
	r.series(c, pts, r.cfg.color(0))
	r.axisLabels(c, p, spec.XLabel, spec.YLabel)
	return c.close()
}

// series draws a monotone curve with point markers.
func (r *Renderer) series(c *canvas, pts []point, color string) {
	c.printf(`<path class="series" d="%s" fill="none" stroke="%s" stroke-width="2.5" stroke-linecap="round" stroke-linejoin="round"/>`,
		monotonePath(pts), color)
	for _, pt := range pts {
		c.printf(`<circle cx="%.1f" cy="%.1f" r="3.5" fill="%s"/>`, pt.x, pt.y, color)
	}
}

func (r *Renderer) dualLine(spec types.ChartSpec) string {
	if len(spec.SeriesKeys) == 0 || len(spec.Data) == 0 {
		return r.empty(spec)
	}
	labels := make([]string, len(spec.Data))
	for i, d := range spec.Data {
		labels[i] = label(d, spec.NameKey)
	}

	// The first series uses the left axis; any others share the right one.
	var leftVals, rightVals []float64
	for _, d := range spec.Data {
		for k, key := range spec.SeriesKeys {
			if v, ok := number(d, key); ok {
				if k == 0 {
					leftVals = append(leftVals, v)
				} else {
					rightVals = append(rightVals, v)
				}
			}
		}
	}
	if len(leftVals) == 0 && len(rightVals) == 0 {
		return r.empty(spec)
	}

	c := newCanvas(r.cfg, spec.Title)
	p := r.cfg.plotArea()
	lLo, lHi := bounds(leftVals, false)
	rLo, rHi := bounds(rightVals, false)
	twoAxes := len(spec.SeriesKeys) > 1
	r.yAxis(c, p, lLo, lHi, false, r.cfg.color(0))
	if twoAxes {
		r.yAxis(c, p, rLo, rHi, true, r.cfg.color(1))
	}
	xs := r.xCategories(c, p, labels)

	for k, key := range spec.SeriesKeys {
		lo, hi := lLo, lHi
		if k > 0 {
			lo, hi = rLo, rHi
		}
		var pts []point
		for i, d := range spec.Data {
			if v, ok := number(d, key); ok {
				pts = append(pts, point{x: xs[i], y: scaleValue(v, lo, hi, p.y1, p.y0)})
			}
		}
		r.series(c, pts, r.cfg.color(k))
	}

	r.legend(c, p, spec.SeriesKeys, spec.SeriesLabels)
	r.axisLabels(c, p, spec.XLabel, "")
	return c.close()
}

func (r *Renderer) legend(c *canvas, p plot, keys, labels []string) {
	x := p.x0
	for k, key := range keys {
		text := key
		if k < len(labels) && labels[k] != "" {
			text = labels[k]
		}
		y := p.y0 + 6 + float64(k)*16
		c.printf(`<rect x="%.1f" y="%.1f" width="10" height="10" fill="%s"/>`, x+8, y-8, r.cfg.color(k))
		c.text(x+24, y, "start", "legend", text)
	}
}

func (r *Renderer) scatter(spec types.ChartSpec) string {
	var xsVal, ysVal []float64
	var names []string
	for _, d := range spec.Data {
		x, okx := number(d, spec.XKey)
		y, oky := number(d, spec.YKey)
		if !okx || !oky {
			continue
		}
		xsVal = append(xsVal, x)
		ysVal = append(ysVal, y)
		names = append(names, label(d, spec.NameKey))
	}
	if len(xsVal) == 0 {
		return r.empty(spec)
	}

	coeff := pearson(xsVal, ysVal)
	if spec.Correlation != nil {
		coeff = *spec.Correlation
	}

	c := newCanvas(r.cfg, spec.Title)
	p := r.cfg.plotArea()
	xLo, xHi := bounds(xsVal, false)
	yLo, yHi := bounds(ysVal, false)
	r.yAxis(c, p, yLo, yHi, false, r.cfg.AxisColor)
	for _, t := range niceTicks(xLo, xHi, 8) {
		x := scaleValue(t, xLo, xHi, p.x0, p.x1)
		c.text(x, p.y1+16, "middle", "tick", formatTick(t))
	}
	c.printf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`, p.x0, p.y1, p.x1, p.y1, r.cfg.AxisColor)

	for i := range xsVal {
		cx := scaleValue(xsVal[i], xLo, xHi, p.x0, p.x1)
		cy := scaleValue(ysVal[i], yLo, yHi, p.y1, p.y0)
		c.printf(`<circle cx="%.1f" cy="%.1f" r="5" fill="%s" fill-opacity="0.75"><title>%s</title></circle>`,
			cx, cy, r.cfg.color(0), escape(names[i]))
	}

	c.text(p.x1, p.y0+4, "end", "caption", CorrelationCaption(coeff))
	r.axisLabels(c, p, spec.XLabel, spec.YLabel)
	return c.close()
}

// CorrelationCaption formats a coefficient as "r = 0.78 (strong)".
func CorrelationCaption(r float64) string {
	return fmt.Sprintf("r = %.2f (%s)", r, types.CorrelationStrength(r))
}

// pearson returns the sample correlation of xs and ys, or 0 when either
// has no variance.
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx, my = mx/n, my/n
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

func (r *Renderer) pie(spec types.ChartSpec) string {
	var names []string
	var values []float64
	var total float64
	for _, d := range spec.Data {
		v, ok := number(d, spec.DataKey)
		if !ok || v <= 0 {
			continue
		}
		names = append(names, label(d, spec.NameKey))
		values = append(values, v)
		total += v
	}
	if total <= 0 {
		return r.empty(spec)
	}

	c := newCanvas(r.cfg, spec.Title)
	h := float64(r.cfg.Height)
	cx, cy := h/2+20, h/2
	radius := h/2 - 24

	angle := -math.Pi / 2
	for i, v := range values {
		share := v / total
		if len(values) == 1 {
			c.printf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`, cx, cy, radius, r.cfg.color(i))
		} else {
			end := angle + share*2*math.Pi
			large := 0
			if share > 0.5 {
				large = 1
			}
			c.printf(`<path d="M %.1f %.1f L %.2f %.2f A %.1f %.1f 0 %d 1 %.2f %.2f Z" fill="%s" stroke="#ffffff" stroke-width="1.5"/>`,
				cx, cy,
				cx+radius*math.Cos(angle), cy+radius*math.Sin(angle),
				radius, radius, large,
				cx+radius*math.Cos(end), cy+radius*math.Sin(end),
				r.cfg.color(i))
			angle = end
		}

		ly := 40 + float64(i)*22
		lx := cx + radius + 40
		c.printf(`<rect x="%.1f" y="%.1f" width="12" height="12" fill="%s"/>`, lx, ly-10, r.cfg.color(i))
		c.text(lx+18, ly, "start", "legend", SliceLabel(names[i], share))
	}
	return c.close()
}

// SliceLabel formats a pie segment label as "name (xx.x%)".
func SliceLabel(name string, share float64) string {
	return fmt.Sprintf("%s (%.1f%%)", name, share*100)
}
