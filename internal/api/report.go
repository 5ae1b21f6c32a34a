package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/volgrid/internal/volgrid"
)

// handleConvergenceReport renders an HTML line chart of estimated volume vs
// grid spacing for a single sphere, against the analytic value. This is a
// debugging/report endpoint (no auth): it makes the grid-approximation error
// visible without any external tooling.
// Query params:
//   - radius (optional; default 1.0)
//   - min_spacing, max_spacing (optional; default 0.05 .. 0.5)
//   - steps (optional; default 10, capped at 50)
func (s *Server) handleConvergenceReport(w http.ResponseWriter, r *http.Request) {
	radius := queryFloat(r, "radius", 1.0)
	minSpacing := queryFloat(r, "min_spacing", 0.05)
	maxSpacing := queryFloat(r, "max_spacing", 0.5)
	steps := queryInt(r, "steps", 10)

	if radius <= 0 || minSpacing <= 0 || maxSpacing < minSpacing {
		s.writeJSONError(w, http.StatusBadRequest,
			"radius and min_spacing must be > 0 and max_spacing >= min_spacing")
		return
	}
	if steps < 2 {
		steps = 2
	}
	if steps > 50 {
		steps = 50
	}
	// Keep the sweep bounded: the finest grid must not exceed a few million
	// cells for an on-demand report endpoint.
	if radius/minSpacing > 200 {
		s.writeJSONError(w, http.StatusBadRequest, "radius/min_spacing ratio too large for the report endpoint")
		return
	}

	sphere := []volgrid.Sphere[float64]{{Radius: radius}}
	analytic := 4.0 / 3.0 * math.Pi * radius * radius * radius

	spacings := make([]string, 0, steps)
	estimated := make([]opts.LineData, 0, steps)
	reference := make([]opts.LineData, 0, steps)
	for i := 0; i < steps; i++ {
		h := minSpacing + (maxSpacing-minSpacing)*float64(i)/float64(steps-1)
		v, err := volgrid.Volume(sphere, h, volgrid.Options{Workers: s.workers})
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("estimation failed: %v", err))
			return
		}
		spacings = append(spacings, strconv.FormatFloat(h, 'g', 4, 64))
		estimated = append(estimated, opts.LineData{Value: v})
		reference = append(reference, opts.LineData{Value: analytic})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "volgrid convergence", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Estimated volume vs. grid spacing",
			Subtitle: fmt.Sprintf("radius=%g analytic=%.6g", radius, analytic),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "spacing"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "volume"}),
	)
	line.SetXAxis(spacings).
		AddSeries("estimated", estimated).
		AddSeries("analytic", reference)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
