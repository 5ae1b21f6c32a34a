package spherefile

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// jsonSphere is one sphere entry in the JSON document format.
type jsonSphere struct {
	Center []float64 `json:"center"`
	Radius *float64  `json:"radius,omitempty"`
}

// jsonDocument is the on-disk JSON format: a list of spheres plus an
// optional document-level radius applied to entries that omit their own.
type jsonDocument struct {
	Radius  *float64     `json:"radius,omitempty"`
	Spheres []jsonSphere `json:"spheres"`
}

// Load reads a sphere set from path, dispatching on extension:
// .json for the JSON document format, anything else parsed as CSV.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sphere file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadJSON(f)
	}
	return ReadCSV(f)
}

// ReadJSON parses the JSON document format.
func ReadJSON(r io.Reader) (*Set, error) {
	var doc jsonDocument
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse sphere JSON: %w", err)
	}

	s := &Set{
		Centers: make([][3]float64, 0, len(doc.Spheres)),
		Radii:   make([]float64, 0, len(doc.Spheres)),
	}
	for i, sp := range doc.Spheres {
		if len(sp.Center) != 3 {
			return nil, fmt.Errorf("sphere %d: center must have 3 components, got %d", i, len(sp.Center))
		}
		r := doc.Radius
		if sp.Radius != nil {
			r = sp.Radius
		}
		if r == nil {
			return nil, fmt.Errorf("sphere %d: no radius given and no document-level radius to broadcast", i)
		}
		s.Centers = append(s.Centers, [3]float64{sp.Center[0], sp.Center[1], sp.Center[2]})
		s.Radii = append(s.Radii, *r)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadCSV parses x,y,z,r rows. A first row that fails to parse as numbers is
// treated as a header and skipped.
func ReadCSV(r io.Reader) (*Set, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse sphere CSV: %w", err)
	}

	s := &Set{}
	for rowIdx, row := range rows {
		if len(row) != 4 {
			return nil, fmt.Errorf("row %d: expected 4 columns (x,y,z,r), got %d", rowIdx+1, len(row))
		}
		vals, err := parseRow(row)
		if err != nil {
			if rowIdx == 0 {
				// header row
				continue
			}
			return nil, fmt.Errorf("row %d: %w", rowIdx+1, err)
		}
		s.Centers = append(s.Centers, [3]float64{vals[0], vals[1], vals[2]})
		s.Radii = append(s.Radii, vals[3])
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseRow(row []string) ([4]float64, error) {
	var out [4]float64
	for i, field := range row {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return out, fmt.Errorf("invalid float %q", field)
		}
		out[i] = v
	}
	return out, nil
}
