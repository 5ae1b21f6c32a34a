// Package spherefile loads and validates sphere sets before they reach the
// volume estimator.
//
// The estimator assumes its preconditions hold (at least one sphere, matched
// center/radius counts, non-negative radii, positive spacing); this package
// is where malformed input is rejected with a descriptive error instead of
// leaking an obscure numerical failure out of the core.
package spherefile

import (
	"fmt"

	"github.com/banshee-data/volgrid/internal/volgrid"
)

// Set is a validated, precision-agnostic sphere set. Centers and radii are
// held in double precision; Spheres32 narrows on demand for callers that
// requested the single precision path.
type Set struct {
	Centers [][3]float64
	Radii   []float64
}

// FromArrays builds a Set from a flat centers array [x1,y1,z1,x2,y2,z2,...]
// and a per-sphere radii array.
func FromArrays(centers, radii []float64) (*Set, error) {
	if len(centers)%3 != 0 {
		return nil, fmt.Errorf("centers length %d is not a multiple of 3 (expected flat x,y,z triples)", len(centers))
	}
	n := len(centers) / 3
	s := &Set{
		Centers: make([][3]float64, n),
		Radii:   radii,
	}
	for i := 0; i < n; i++ {
		s.Centers[i] = [3]float64{centers[3*i], centers[3*i+1], centers[3*i+2]}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromArraysScalar is FromArrays with one radius broadcast to every center.
func FromArraysScalar(centers []float64, radius float64) (*Set, error) {
	if len(centers)%3 != 0 {
		return nil, fmt.Errorf("centers length %d is not a multiple of 3 (expected flat x,y,z triples)", len(centers))
	}
	radii := make([]float64, len(centers)/3)
	for i := range radii {
		radii[i] = radius
	}
	return FromArrays(centers, radii)
}

// Validate checks the estimator preconditions this layer is responsible for.
func (s *Set) Validate() error {
	if len(s.Centers) == 0 {
		return fmt.Errorf("sphere set must contain at least one sphere")
	}
	if len(s.Radii) != len(s.Centers) {
		return fmt.Errorf("number of radii (%d) must match number of centers (%d)",
			len(s.Radii), len(s.Centers))
	}
	for i, r := range s.Radii {
		if r < 0 {
			return fmt.Errorf("radius %d is negative (%g); radii must be >= 0", i, r)
		}
	}
	return nil
}

// ValidateSpacing rejects a non-positive grid spacing. Split out from
// Validate because spacing arrives separately (flag, request field) from the
// sphere data.
func ValidateSpacing(spacing float64) error {
	if !(spacing > 0) {
		return fmt.Errorf("grid spacing must be greater than 0.0, got %g", spacing)
	}
	return nil
}

// Len returns the number of spheres.
func (s *Set) Len() int {
	return len(s.Centers)
}

// Spheres64 converts the set for the double precision estimator path.
func (s *Set) Spheres64() []volgrid.Sphere[float64] {
	out := make([]volgrid.Sphere[float64], len(s.Centers))
	for i, c := range s.Centers {
		out[i] = volgrid.Sphere[float64]{
			Center: volgrid.Point3[float64]{X: c[0], Y: c[1], Z: c[2]},
			Radius: s.Radii[i],
		}
	}
	return out
}

// Spheres32 narrows the set for the single precision estimator path. The
// narrowing happens once here so the estimator never mixes precisions
// mid-computation.
func (s *Set) Spheres32() []volgrid.Sphere[float32] {
	out := make([]volgrid.Sphere[float32], len(s.Centers))
	for i, c := range s.Centers {
		out[i] = volgrid.Sphere[float32]{
			Center: volgrid.Point3[float32]{X: float32(c[0]), Y: float32(c[1]), Z: float32(c[2])},
			Radius: float32(s.Radii[i]),
		}
	}
	return out
}
