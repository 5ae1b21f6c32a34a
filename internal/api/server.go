// Package api exposes the volume estimator over HTTP: a JSON endpoint for
// one-shot estimations, run history backed by voldb, and an HTML
// convergence report rendered with go-echarts.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/volgrid/internal/spherefile"
	"github.com/banshee-data/volgrid/internal/units"
	"github.com/banshee-data/volgrid/internal/voldb"
	"github.com/banshee-data/volgrid/internal/volgrid"
)

// Server handles HTTP requests for volume estimation.
type Server struct {
	db      *voldb.DB // nil disables run history
	workers int
	units   string
}

// NewServer creates a Server. db may be nil when run history is disabled.
func NewServer(db *voldb.DB, workers int, lengthUnit string) *Server {
	return &Server{
		db:      db,
		workers: workers,
		units:   lengthUnit,
	}
}

// Routes returns the route table for the server.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/volume", s.handleVolume)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/report/convergence", s.handleConvergenceReport)
	return mux
}

// volumeRequest is the POST /api/volume body. Either radii (one per center)
// or radius (broadcast to every center) must be present. Units, when set,
// converts the reported volume from the server's length unit into cubes of
// the requested unit.
type volumeRequest struct {
	Centers   [][]float64 `json:"centers"`
	Radii     []float64   `json:"radii,omitempty"`
	Radius    *float64    `json:"radius,omitempty"`
	Spacing   float64     `json:"spacing"`
	Precision string      `json:"precision,omitempty"`
	Source    string      `json:"source,omitempty"`
	Units     string      `json:"units,omitempty"`
}

type volumeResponse struct {
	Volume     float64 `json:"volume"`
	Voxels     int64   `json:"voxels"`
	Spheres    int     `json:"spheres"`
	Spacing    float64 `json:"spacing"`
	Precision  string  `json:"precision"`
	Units      string  `json:"units,omitempty"`
	DurationMs int64   `json:"duration_ms"`
	RunID      string  `json:"run_id,omitempty"`
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req volumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	set, prec, err := buildSet(req)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Units != "" && !units.IsValid(req.Units) {
		s.writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid units %q, valid units are: %s", req.Units, units.GetValidUnitsString()))
		return
	}

	start := time.Now()
	volume, err := spherefile.Estimate(set, req.Spacing, prec, volgrid.Options{Workers: s.workers})
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	duration := time.Since(start)

	// Voxel count and run history stay in the server's base unit; only the
	// reported volume is converted.
	resp := volumeResponse{
		Volume:     volume,
		Voxels:     voxelCount(volume, req.Spacing),
		Spheres:    set.Len(),
		Spacing:    req.Spacing,
		Precision:  string(prec),
		Units:      s.units,
		DurationMs: duration.Milliseconds(),
	}
	if req.Units != "" {
		resp.Volume = units.ConvertVolume(volume, s.units, req.Units)
		resp.Units = req.Units
	}

	if s.db != nil {
		source := req.Source
		if source == "" {
			source = "api"
		}
		run, err := s.db.RecordRun(voldb.Run{
			Source:     source,
			Spheres:    set.Len(),
			Spacing:    req.Spacing,
			Precision:  string(prec),
			Units:      s.units,
			Volume:     volume,
			Voxels:     resp.Voxels,
			DurationMs: resp.DurationMs,
		})
		if err != nil {
			// history is best-effort; the estimate itself succeeded
			log.Printf("failed to record run: %v", err)
		} else {
			resp.RunID = run.ID
		}
	}

	json.NewEncoder(w).Encode(resp)
}

// buildSet assembles and validates the sphere set from a request.
func buildSet(req volumeRequest) (*spherefile.Set, spherefile.Precision, error) {
	prec, err := spherefile.ParsePrecision(req.Precision)
	if err != nil {
		return nil, "", err
	}

	centers := make([]float64, 0, len(req.Centers)*3)
	for i, c := range req.Centers {
		if len(c) != 3 {
			return nil, "", fmt.Errorf("center %d must have 3 components, got %d", i, len(c))
		}
		centers = append(centers, c[0], c[1], c[2])
	}

	var set *spherefile.Set
	switch {
	case req.Radii != nil:
		set, err = spherefile.FromArrays(centers, req.Radii)
	case req.Radius != nil:
		set, err = spherefile.FromArraysScalar(centers, *req.Radius)
	default:
		return nil, "", fmt.Errorf("either radii or radius is required")
	}
	if err != nil {
		return nil, "", err
	}
	return set, prec, nil
}

// voxelCount recovers the occupied cell count from the reported volume.
func voxelCount(volume, spacing float64) int64 {
	if spacing <= 0 {
		return 0
	}
	return int64(volume/(spacing*spacing*spacing) + 0.5)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.db == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "run history is not enabled")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	var (
		runs []voldb.Run
		err  error
	)
	if source := r.URL.Query().Get("source"); source != "" {
		runs, err = s.db.RunsBySource(source, limit)
	} else {
		runs, err = s.db.RecentRuns(limit)
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to retrieve runs: %v", err))
		return
	}
	if runs == nil {
		runs = []voldb.Run{}
	}
	json.NewEncoder(w).Encode(runs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"units":  s.units,
	})
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
