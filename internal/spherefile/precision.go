package spherefile

import (
	"fmt"

	"github.com/banshee-data/volgrid/internal/volgrid"
)

// Precision selects the floating point width one estimation call runs in.
// Every stage of a call (bounding box, indexing, distance tests, final
// multiplication) uses the same width.
type Precision string

const (
	Float32 Precision = "float32"
	Float64 Precision = "float64"
)

// ParsePrecision maps a user-supplied precision name to a Precision.
// The empty string defaults to double precision.
func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "", "float64", "double":
		return Float64, nil
	case "float32", "single":
		return Float32, nil
	default:
		return "", fmt.Errorf("unknown precision %q (valid: float32, float64)", s)
	}
}

// Estimate validates spacing and runs the estimator in the requested
// precision. The result is widened to float64 for reporting regardless of
// the computation precision.
func Estimate(s *Set, spacing float64, prec Precision, opts volgrid.Options) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if err := ValidateSpacing(spacing); err != nil {
		return 0, err
	}
	switch prec {
	case Float32:
		v, err := volgrid.VolumeFloat32(s.Spheres32(), float32(spacing), opts)
		return float64(v), err
	default:
		return volgrid.VolumeFloat64(s.Spheres64(), spacing, opts)
	}
}
