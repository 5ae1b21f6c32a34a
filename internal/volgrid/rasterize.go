package volgrid

// rasterizeSphere marks every voxel whose center lies inside the sphere.
//
// The sweep is restricted to the sphere's local index range, derived from
// worldToVoxel(center ± radius). That bounds the inner loop to roughly
// (2r/spacing)^3 cells per sphere regardless of how large the global grid
// is, which is what keeps the method tractable when a radius-0.01 sphere
// shares a set with a radius-5 one, or when centers sit thousands of units
// apart.
func rasterizeSphere[T Real](g Grid[T], s Sphere[T], occ occupancySet) {
	if s.Radius <= 0 {
		return
	}

	i0, j0, k0 := g.WorldToVoxel(Point3[T]{
		X: s.Center.X - s.Radius,
		Y: s.Center.Y - s.Radius,
		Z: s.Center.Z - s.Radius,
	})
	i1, j1, k1 := g.WorldToVoxel(Point3[T]{
		X: s.Center.X + s.Radius,
		Y: s.Center.Y + s.Radius,
		Z: s.Center.Z + s.Radius,
	})

	// Squared-distance comparison keeps the hot loop free of square roots.
	// Centers exactly on the boundary count as inside.
	r2 := s.Radius * s.Radius
	for k := k0; k <= k1; k++ {
		cz := g.Origin.Z + (T(k)+0.5)*g.Spacing
		dz := cz - s.Center.Z
		dz2 := dz * dz
		for j := j0; j <= j1; j++ {
			cy := g.Origin.Y + (T(j)+0.5)*g.Spacing
			dy := cy - s.Center.Y
			dyz2 := dy*dy + dz2
			if dyz2 > r2 {
				continue
			}
			base := g.LinearIndex(i0, j, k)
			for i := i0; i <= i1; i++ {
				cx := g.Origin.X + (T(i)+0.5)*g.Spacing
				dx := cx - s.Center.X
				if dx*dx+dyz2 <= r2 {
					occ.insert(base + uint64(i-i0))
				}
			}
		}
	}
}
