package volgrid

import (
	"runtime"
	"sync"
)

// Options tunes a single estimation call.
type Options struct {
	// Workers is the number of goroutines rasterising spheres in parallel.
	// Zero or negative means runtime.NumCPU(). Rasterisation across spheres
	// is embarrassingly parallel; each worker fills a private occupancy set
	// over a disjoint subset of spheres and the sets are merged at the end,
	// so the result is identical for any worker count.
	Workers int
}

// DefaultOptions returns the options used when none are supplied.
func DefaultOptions() Options {
	return Options{Workers: runtime.NumCPU()}
}

// minSpheresPerWorker keeps tiny sets on the sequential path: spinning up
// goroutines for a handful of spheres costs more than the sweep itself.
const minSpheresPerWorker = 4

// Volume estimates the volume of the union of the given spheres on a cubic
// grid with the given spacing. All arithmetic runs in the precision T.
//
// The caller contract matches the input layer's validation: at least one
// sphere, spacing > 0, radii >= 0. Violations of the first two fail fast
// with a descriptive error rather than surfacing as an obscure numerical
// failure deeper in.
func Volume[T Real](spheres []Sphere[T], spacing T, opts Options) (T, error) {
	if len(spheres) == 0 {
		return 0, ErrNoSpheres
	}
	if !(spacing > 0) {
		return 0, ErrBadSpacing
	}

	// All-zero radii degenerate to points: exactly zero volume, no grid sweep.
	anyPositive := false
	for _, s := range spheres {
		if s.Radius > 0 {
			anyPositive = true
			break
		}
	}
	if !anyPositive {
		return 0, nil
	}

	grid := newGrid(boundsOf(spheres), spacing)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if w := len(spheres) / minSpheresPerWorker; workers > w {
		workers = w
	}

	occ := newOccupancySet()
	if workers <= 1 {
		for _, s := range spheres {
			rasterizeSphere(grid, s, occ)
		}
	} else {
		locals := make([]occupancySet, workers)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				local := newOccupancySet()
				// Stride partitioning spreads mixed sphere sizes across
				// workers more evenly than contiguous chunks.
				for idx := w; idx < len(spheres); idx += workers {
					rasterizeSphere(grid, spheres[idx], local)
				}
				locals[w] = local
			}(w)
		}
		wg.Wait()
		for _, local := range locals {
			occ.merge(local)
		}
	}

	return T(len(occ)) * grid.VoxelVolume(), nil
}

// VolumeFloat64 is the double precision entry point.
func VolumeFloat64(spheres []Sphere[float64], spacing float64, opts Options) (float64, error) {
	return Volume(spheres, spacing, opts)
}

// VolumeFloat32 is the single precision entry point.
func VolumeFloat32(spheres []Sphere[float32], spacing float32, opts Options) (float32, error) {
	return Volume(spheres, spacing, opts)
}
