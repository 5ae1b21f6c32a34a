package volgrid

import (
	"errors"
	"math"
	"testing"
)

func unitSphereAt[T Real](x, y, z, r T) Sphere[T] {
	return Sphere[T]{Center: Point3[T]{X: x, Y: y, Z: z}, Radius: r}
}

// analyticVolume is (4/3)*pi*r^3.
func analyticVolume(r float64) float64 {
	return 4.0 / 3.0 * math.Pi * r * r * r
}

func relErr(got, want float64) float64 {
	return math.Abs(got-want) / want
}

func seqOpts() Options { return Options{Workers: 1} }

func TestSingleSphereConvergence(t *testing.T) {
	for _, r := range []float64{0.5, 1.0, 2.0} {
		got, err := Volume([]Sphere[float64]{unitSphereAt(0.0, 0.0, 0.0, r)}, 0.05, seqOpts())
		if err != nil {
			t.Fatalf("r=%v: %v", r, err)
		}
		if got <= 0 {
			t.Fatalf("r=%v: expected positive volume, got %v", r, got)
		}
		if e := relErr(got, analyticVolume(r)); e >= 0.1 {
			t.Errorf("r=%v: relative error %.4f, want < 0.1 (got %v, analytic %v)",
				r, e, got, analyticVolume(r))
		}
	}
}

func TestErrorShrinksWithSpacing(t *testing.T) {
	analytic := analyticVolume(1)
	coarse, err := Volume([]Sphere[float64]{unitSphereAt(0.0, 0.0, 0.0, 1.0)}, 0.4, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	fine, err := Volume([]Sphere[float64]{unitSphereAt(0.0, 0.0, 0.0, 1.0)}, 0.05, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	if relErr(fine, analytic) >= relErr(coarse, analytic) {
		t.Errorf("finer spacing did not improve accuracy: coarse err %.4f, fine err %.4f",
			relErr(coarse, analytic), relErr(fine, analytic))
	}
}

func TestZeroRadiusExactlyZero(t *testing.T) {
	// All radii zero: exactly 0.0 with no floating point slack.
	spheres := []Sphere[float64]{
		unitSphereAt(0.0, 0.0, 0.0, 0.0),
		unitSphereAt(1.0, 2.0, 3.0, 0.0),
		unitSphereAt(-5.0, 0.0, 4.0, 0.0),
	}
	got, err := Volume(spheres, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	if got != 0.0 {
		t.Errorf("all-zero radii: volume = %v, want exactly 0.0", got)
	}
}

func TestZeroRadiusContributesNothing(t *testing.T) {
	base := []Sphere[float64]{unitSphereAt(0.0, 0.0, 0.0, 1.0)}
	// The extra zero-radius sphere sits inside the existing bounding box, so
	// the grid is unchanged and the result must be bit-identical.
	withPoint := append([]Sphere[float64]{unitSphereAt(0.2, 0.1, -0.3, 0.0)}, base...)

	v1, err := Volume(base, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	v2, err := Volume(withPoint, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	if v1 != v2 {
		t.Errorf("zero-radius sphere changed volume: %v vs %v", v1, v2)
	}
}

func TestDisjointSpheresAdditive(t *testing.T) {
	a := unitSphereAt(0.0, 0.0, 0.0, 1.0)
	b := unitSphereAt(10.0, 0.0, 0.0, 0.5)

	va, err := Volume([]Sphere[float64]{a}, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	vb, err := Volume([]Sphere[float64]{b}, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	combined, err := Volume([]Sphere[float64]{a, b}, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	if e := relErr(combined, va+vb); e >= 0.05 {
		t.Errorf("disjoint spheres not additive: combined %v, sum %v, rel err %.4f",
			combined, va+vb, e)
	}
}

func TestIdenticalSpheresCollapse(t *testing.T) {
	// Five co-located unit spheres mark exactly the voxels one sphere marks.
	one := []Sphere[float64]{unitSphereAt(0.0, 0.0, 0.0, 1.0)}
	five := make([]Sphere[float64], 5)
	for i := range five {
		five[i] = one[0]
	}

	vOne, err := Volume(one, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	vFive, err := Volume(five, 0.1, Options{Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	if vOne != vFive {
		t.Errorf("identical spheres did not collapse: one %v, five %v", vOne, vFive)
	}
}

func TestOverlapSubAdditive(t *testing.T) {
	a := unitSphereAt(0.0, 0.0, 0.0, 1.0)
	b := unitSphereAt(1.5, 0.0, 0.0, 1.0)

	single, err := Volume([]Sphere[float64]{a}, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	combined, err := Volume([]Sphere[float64]{a, b}, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	if !(single < combined && combined < 2*single) {
		t.Errorf("overlap not sub-additive: single %v, combined %v", single, combined)
	}
}

func TestContainedSphereAddsNothing(t *testing.T) {
	// A unit sphere fully inside a radius-2 sphere: union volume is the big one.
	big := unitSphereAt(0.0, 0.0, 0.0, 2.0)
	small := unitSphereAt(0.0, 0.0, 0.0, 1.0)

	vBig, err := Volume([]Sphere[float64]{big}, 0.08, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	vBoth, err := Volume([]Sphere[float64]{big, small}, 0.08, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	if vBig != vBoth {
		t.Errorf("contained sphere changed volume: %v vs %v", vBig, vBoth)
	}
}

func TestTranslationInvariance(t *testing.T) {
	spheres := []Sphere[float64]{
		unitSphereAt(0.0, 0.0, 0.0, 1.0),
		unitSphereAt(1.5, 0.5, -0.25, 0.75),
	}
	shifted := make([]Sphere[float64], len(spheres))
	for i, s := range spheres {
		shifted[i] = Sphere[float64]{
			Center: Point3[float64]{X: s.Center.X + 10, Y: s.Center.Y - 5, Z: s.Center.Z + 2.5},
			Radius: s.Radius,
		}
	}

	v1, err := Volume(spheres, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	v2, err := Volume(shifted, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	// The grid is anchored to the bounding box, so translation is near-exact.
	// Rounding in (p-origin)/spacing can flip voxels whose centers sit within
	// one ulp of a sphere boundary; one voxel is ~2e-4 of the total here.
	if e := relErr(v2, v1); e >= 1e-3 {
		t.Errorf("translation changed volume: %v vs %v (rel err %.6f)", v1, v2, e)
	}
}

func TestLargeCoordinates(t *testing.T) {
	atOrigin, err := Volume([]Sphere[float64]{unitSphereAt(0.0, 0.0, 0.0, 1.0)}, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	farAway, err := Volume([]Sphere[float64]{unitSphereAt(1000.0, 2000.0, 3000.0, 1.0)}, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	if farAway <= 0 {
		t.Fatalf("expected positive volume at large coordinates, got %v", farAway)
	}
	if e := relErr(farAway, atOrigin); e >= 0.01 {
		t.Errorf("large coordinates shifted volume: origin %v, far %v", atOrigin, farAway)
	}
}

func TestMixedSphereScales(t *testing.T) {
	// A radius-5 sphere and a radius-0.01 sphere in the same set exercise the
	// per-sphere local sweep: the global grid spans the whole box but only the
	// local cells of each sphere are visited.
	big := unitSphereAt(0.0, 0.0, 0.0, 5.0)
	tiny := unitSphereAt(20.0, 0.0, 0.0, 0.01)

	vBig, err := Volume([]Sphere[float64]{big}, 0.25, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	both, err := Volume([]Sphere[float64]{big, tiny}, 0.25, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	if both < vBig {
		t.Errorf("adding a sphere reduced volume: %v -> %v", vBig, both)
	}
	if both > vBig*1.01 {
		t.Errorf("tiny sphere contributed too much: %v -> %v", vBig, both)
	}
}

func TestDeterminism(t *testing.T) {
	spheres := []Sphere[float64]{
		unitSphereAt(0.0, 0.0, 0.0, 1.0),
		unitSphereAt(1.2, 0.3, -0.5, 0.8),
		unitSphereAt(-2.0, 1.0, 0.0, 1.5),
		unitSphereAt(3.0, -1.0, 2.0, 0.6),
		unitSphereAt(0.5, 2.5, 1.0, 1.1),
		unitSphereAt(-1.0, -1.0, -1.0, 0.9),
		unitSphereAt(2.2, 2.2, -2.2, 0.7),
		unitSphereAt(0.0, -3.0, 1.5, 1.3),
	}
	opts := Options{Workers: 8}

	first, err := Volume(spheres, 0.1, opts)
	if err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 5; run++ {
		got, err := Volume(spheres, 0.1, opts)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Fatalf("run %d: volume %v differs from first run %v", run, got, first)
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	spheres := []Sphere[float64]{
		unitSphereAt(0.0, 0.0, 0.0, 1.0),
		unitSphereAt(1.5, 0.0, 0.0, 1.0),
		unitSphereAt(0.0, 1.5, 0.0, 1.0),
		unitSphereAt(0.0, 0.0, 1.5, 1.0),
		unitSphereAt(5.0, 5.0, 5.0, 2.0),
		unitSphereAt(-3.0, 0.0, 0.0, 0.5),
		unitSphereAt(0.0, -3.0, 0.0, 0.5),
		unitSphereAt(0.0, 0.0, -3.0, 0.5),
	}

	seq, err := Volume(spheres, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{2, 4, 8} {
		par, err := Volume(spheres, 0.1, Options{Workers: workers})
		if err != nil {
			t.Fatal(err)
		}
		if par != seq {
			t.Errorf("workers=%d: parallel volume %v != sequential %v", workers, par, seq)
		}
	}
}

func TestNonNegativity(t *testing.T) {
	cases := [][]Sphere[float64]{
		{unitSphereAt(0.0, 0.0, 0.0, 0.001)},
		{unitSphereAt(0.0, 0.0, 0.0, 0.0)},
		{unitSphereAt(100.0, -100.0, 50.0, 0.3)},
		{unitSphereAt(0.0, 0.0, 0.0, 1.0), unitSphereAt(0.0, 0.0, 0.0, 0.0)},
	}
	for i, spheres := range cases {
		got, err := Volume(spheres, 0.1, seqOpts())
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got < 0 {
			t.Errorf("case %d: negative volume %v", i, got)
		}
	}
}

func TestFloat32Path(t *testing.T) {
	got32, err := VolumeFloat32([]Sphere[float32]{unitSphereAt[float32](0, 0, 0, 1)}, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	got64, err := VolumeFloat64([]Sphere[float64]{unitSphereAt[float64](0, 0, 0, 1)}, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	if got32 <= 0 {
		t.Fatalf("float32 volume not positive: %v", got32)
	}
	if e := relErr(float64(got32), got64); e >= 0.01 {
		t.Errorf("float32 and float64 paths diverge: %v vs %v (rel err %.4f)",
			got32, got64, e)
	}
}

func TestVolumeEmptySet(t *testing.T) {
	_, err := Volume(nil, 0.1, seqOpts())
	if !errors.Is(err, ErrNoSpheres) {
		t.Errorf("expected ErrNoSpheres, got %v", err)
	}
}

func TestVolumeBadSpacing(t *testing.T) {
	spheres := []Sphere[float64]{unitSphereAt(0.0, 0.0, 0.0, 1.0)}
	for _, spacing := range []float64{0, -0.1, math.NaN()} {
		_, err := Volume(spheres, spacing, seqOpts())
		if !errors.Is(err, ErrBadSpacing) {
			t.Errorf("spacing %v: expected ErrBadSpacing, got %v", spacing, err)
		}
	}
}

func TestNegativeRadiusIsNoop(t *testing.T) {
	base := []Sphere[float64]{unitSphereAt(0.0, 0.0, 0.0, 1.0)}
	withNegative := append([]Sphere[float64]{unitSphereAt(0.1, 0.1, 0.1, -2.0)}, base...)

	v1, err := Volume(base, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	v2, err := Volume(withNegative, 0.1, seqOpts())
	if err != nil {
		t.Fatal(err)
	}
	if v1 != v2 {
		t.Errorf("negative-radius sphere changed volume: %v vs %v", v1, v2)
	}
}
