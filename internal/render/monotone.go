// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"math"
	"strings"
)

type point struct {
	x, y float64
}

// segment is one cubic Bézier piece from a to b.
type segment struct {
	a, c1, c2, b point
}

// monotoneSegments fits a monotone cubic Hermite spline through pts
// (Fritsch-Carlson tangents) so the curve never overshoots between two
// consecutive points. pts must be ordered by x.
func monotoneSegments(pts []point) []segment {
	n := len(pts)
	if n < 2 {
		return nil
	}

	d := make([]float64, n-1)
	for k := 0; k < n-1; k++ {
		dx := pts[k+1].x - pts[k].x
		if dx == 0 {
			continue
		}
		d[k] = (pts[k+1].y - pts[k].y) / dx
	}

	m := make([]float64, n)
	m[0], m[n-1] = d[0], d[n-2]
	for k := 1; k < n-1; k++ {
		if d[k-1]*d[k] > 0 {
			m[k] = (d[k-1] + d[k]) / 2
		}
	}
	for k := 0; k < n-1; k++ {
		if d[k] == 0 {
			m[k], m[k+1] = 0, 0
			continue
		}
		a, b := m[k]/d[k], m[k+1]/d[k]
		if s := a*a + b*b; s > 9 {
			t := 3 / math.Sqrt(s)
			m[k], m[k+1] = t*a*d[k], t*b*d[k]
		}
	}

	segs := make([]segment, 0, n-1)
	for k := 0; k < n-1; k++ {
		h := (pts[k+1].x - pts[k].x) / 3
		segs = append(segs, segment{
			a:  pts[k],
			c1: point{pts[k].x + h, pts[k].y + m[k]*h},
			c2: point{pts[k+1].x - h, pts[k+1].y - m[k+1]*h},
			b:  pts[k+1],
		})
	}
	return segs
}

// monotonePath renders pts as an SVG path using monotone cubic segments.
func monotonePath(pts []point) string {
	if len(pts) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "M %.2f %.2f", pts[0].x, pts[0].y)
	for _, s := range monotoneSegments(pts) {
		fmt.Fprintf(&sb, " C %.2f %.2f, %.2f %.2f, %.2f %.2f", s.c1.x, s.c1.y, s.c2.x, s.c2.y, s.b.x, s.b.y)
	}
	return sb.String()
}

// linearPath renders pts as straight segments.
func linearPath(pts []point) string {
	var sb strings.Builder
	for i, p := range pts {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		} else {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s %.2f %.2f", cmd, p.x, p.y)
	}
	return sb.String()
}
