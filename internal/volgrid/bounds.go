package volgrid

// BoundingBox is the minimal axis-aligned box enclosing every sphere in a
// set: the componentwise min/max of center ± radius.
type BoundingBox[T Real] struct {
	Min, Max Point3[T]
}

// boundsOf computes the bounding box of the sphere set in one linear pass.
// The caller guarantees at least one sphere; an empty set has no meaningful
// bounding box and is rejected at the estimator entry point.
func boundsOf[T Real](spheres []Sphere[T]) BoundingBox[T] {
	b := BoundingBox[T]{
		Min: Point3[T]{
			X: spheres[0].Center.X - spheres[0].Radius,
			Y: spheres[0].Center.Y - spheres[0].Radius,
			Z: spheres[0].Center.Z - spheres[0].Radius,
		},
		Max: Point3[T]{
			X: spheres[0].Center.X + spheres[0].Radius,
			Y: spheres[0].Center.Y + spheres[0].Radius,
			Z: spheres[0].Center.Z + spheres[0].Radius,
		},
	}
	for _, s := range spheres[1:] {
		b.Min.X = min(b.Min.X, s.Center.X-s.Radius)
		b.Min.Y = min(b.Min.Y, s.Center.Y-s.Radius)
		b.Min.Z = min(b.Min.Z, s.Center.Z-s.Radius)
		b.Max.X = max(b.Max.X, s.Center.X+s.Radius)
		b.Max.Y = max(b.Max.Y, s.Center.Y+s.Radius)
		b.Max.Z = max(b.Max.Z, s.Center.Z+s.Radius)
	}
	return b
}
