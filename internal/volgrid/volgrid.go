// Package volgrid estimates the volume of a union of spheres by voxelising
// space on a uniform cubic grid and counting the grid cells whose centers
// fall inside at least one sphere.
//
// The estimator is a pure function of its inputs: every call builds a fresh
// grid anchored to the sphere set's bounding box, rasterises each sphere into
// a deduplicating occupancy set, and multiplies the occupied-cell count by
// the cell volume. Nothing is cached or shared across calls.
//
// All arithmetic for one call is carried out in a single floating point
// precision (float32 or float64), selected by the type parameter. Mixing
// precisions mid-call would reintroduce the rounding drift the caller's
// dtype-preservation policy exists to avoid.
package volgrid

import "errors"

// Real is the numeric precision a single estimation call runs in.
type Real interface {
	~float32 | ~float64
}

// Point3 is a position in 3-D space.
type Point3[T Real] struct {
	X, Y, Z T
}

// Sphere is a center plus a radius. A zero radius is valid and contributes
// no volume.
type Sphere[T Real] struct {
	Center Point3[T]
	Radius T
}

// Estimator errors. Both indicate a caller contract violation: the input
// layer is expected to reject these before the estimator runs.
var (
	ErrNoSpheres  = errors.New("volgrid: sphere set is empty")
	ErrBadSpacing = errors.New("volgrid: grid spacing must be greater than zero")
)
