package volgrid

// occupancySet is a deduplicating membership set over linearised voxel
// indices. Inserting the same index any number of times, from any number of
// spheres, grows the cardinality by at most one; that is what makes the
// union volume sub-additive under overlap instead of double-counted.
//
// Each rasterisation worker owns a private set and the results are merged
// once at the end, so no locking is needed during the hot loop.
type occupancySet map[uint64]struct{}

func newOccupancySet() occupancySet {
	return make(occupancySet)
}

func (s occupancySet) insert(key uint64) {
	s[key] = struct{}{}
}

// merge folds other into s. Merge cost is bounded by the number of occupied
// voxels, not by the number of spheres that produced them.
func (s occupancySet) merge(other occupancySet) {
	for key := range other {
		s[key] = struct{}{}
	}
}
