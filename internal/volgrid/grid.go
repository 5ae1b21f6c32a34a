package volgrid

import "math"

// Grid maps continuous coordinates to integer voxel coordinates and back.
// Voxel (i,j,k) is the cube of edge Spacing whose center sits at
// Origin + (i+0.5, j+0.5, k+0.5)*Spacing. The grid holds no cell storage;
// occupancy is tracked sparsely (see occupancySet) because a dense array of
// Nx*Ny*Nz cells is memory-prohibitive for fine spacings over large boxes.
type Grid[T Real] struct {
	Origin     Point3[T]
	Spacing    T
	Nx, Ny, Nz int
}

// newGrid builds a grid covering the bounding box with the given spacing.
// Each axis gets ceil(extent/spacing) voxels with a minimum of one, so a
// degenerate (single point) box still yields a well-formed 1x1x1 grid.
func newGrid[T Real](b BoundingBox[T], spacing T) Grid[T] {
	return Grid[T]{
		Origin:  b.Min,
		Spacing: spacing,
		Nx:      axisCells(b.Max.X-b.Min.X, spacing),
		Ny:      axisCells(b.Max.Y-b.Min.Y, spacing),
		Nz:      axisCells(b.Max.Z-b.Min.Z, spacing),
	}
}

func axisCells[T Real](extent, spacing T) int {
	n := int(math.Ceil(float64(extent / spacing)))
	if n < 1 {
		n = 1
	}
	return n
}

// WorldToVoxel maps a point to the voxel containing it, clamped to the grid.
// Clamping is required: a sphere's extreme point lands exactly on the box
// boundary, and floating point rounding of (p-origin)/spacing can push the
// index one cell past the last row.
func (g Grid[T]) WorldToVoxel(p Point3[T]) (i, j, k int) {
	i = clampIndex(int(math.Floor(float64((p.X-g.Origin.X)/g.Spacing))), g.Nx)
	j = clampIndex(int(math.Floor(float64((p.Y-g.Origin.Y)/g.Spacing))), g.Ny)
	k = clampIndex(int(math.Floor(float64((p.Z-g.Origin.Z)/g.Spacing))), g.Nz)
	return i, j, k
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// VoxelCenter returns the center of voxel (i,j,k). Sampling at centers (not
// corners or random points) keeps the estimate deterministic and bit-for-bit
// reproducible for identical inputs.
func (g Grid[T]) VoxelCenter(i, j, k int) Point3[T] {
	return Point3[T]{
		X: g.Origin.X + (T(i)+0.5)*g.Spacing,
		Y: g.Origin.Y + (T(j)+0.5)*g.Spacing,
		Z: g.Origin.Z + (T(k)+0.5)*g.Spacing,
	}
}

// VoxelVolume returns the volume of one voxel.
func (g Grid[T]) VoxelVolume() T {
	return g.Spacing * g.Spacing * g.Spacing
}

// LinearIndex collapses (i,j,k) to the unique key i + j*Nx + k*Nx*Ny.
// uint64 keys keep the linearisation safe for grids whose cell count
// overflows 32 bits (coarse spacing over kilometre-scale coordinates).
func (g Grid[T]) LinearIndex(i, j, k int) uint64 {
	return uint64(i) + uint64(j)*uint64(g.Nx) + uint64(k)*uint64(g.Nx)*uint64(g.Ny)
}

// VoxelCount returns the total number of cells in the grid.
func (g Grid[T]) VoxelCount() uint64 {
	return uint64(g.Nx) * uint64(g.Ny) * uint64(g.Nz)
}
