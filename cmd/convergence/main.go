// Command convergence sweeps the grid spacing over a sphere set and reports
// how the estimated union volume converges. For a single sphere the analytic
// volume is known, so the sweep also reports relative error statistics.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/volgrid/internal/plot"
	"github.com/banshee-data/volgrid/internal/spherefile"
	"github.com/banshee-data/volgrid/internal/voldb"
	"github.com/banshee-data/volgrid/internal/volgrid"
)

var (
	inputPath  = flag.String("input", "", "Sphere set file; omit to sweep a single sphere of -radius")
	radius     = flag.Float64("radius", 1.0, "Radius of the reference sphere when no -input is given")
	minSpacing = flag.Float64("min-spacing", 0.05, "Finest grid spacing in the sweep")
	maxSpacing = flag.Float64("max-spacing", 0.5, "Coarsest grid spacing in the sweep")
	steps      = flag.Int("steps", 10, "Number of spacings to sample")
	workers    = flag.Int("workers", 0, "Rasterisation workers (0 = all CPUs)")
	csvPath    = flag.String("csv", "", "Write sweep samples to this CSV file")
	pngPath    = flag.String("png", "", "Write a convergence plot to this PNG file")
	dbPath     = flag.String("db", "", "Record each sweep sample as a run in this sqlite database")
)

func main() {
	flag.Parse()

	if *steps < 2 {
		log.Fatal("-steps must be at least 2")
	}
	if !(*minSpacing > 0) || *maxSpacing < *minSpacing {
		log.Fatal("-min-spacing must be > 0 and -max-spacing >= -min-spacing")
	}

	set, analytic, source, err := loadSet()
	if err != nil {
		log.Fatal(err)
	}

	var db *voldb.DB
	if *dbPath != "" {
		db, err = voldb.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
	}

	points, relErrs, err := sweep(set, analytic, source, db)
	if err != nil {
		log.Fatal(err)
	}

	if analytic > 0 && len(relErrs) > 0 {
		mean := stat.Mean(relErrs, nil)
		stddev := stat.StdDev(relErrs, nil)
		log.Printf("relative error across %d spacings: mean %.4f, stddev %.4f, finest %.4f",
			len(relErrs), mean, stddev, relErrs[0])
	}

	if *csvPath != "" {
		if err := writeCSV(*csvPath, points, analytic); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", *csvPath)
	}
	if *pngPath != "" {
		if err := plot.WriteConvergencePNG(*pngPath, points, analytic); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", *pngPath)
	}
}

// loadSet returns the sphere set to sweep, the analytic volume when one is
// known (single sphere), and a source label for run records.
func loadSet() (*spherefile.Set, float64, string, error) {
	if *inputPath != "" {
		set, err := spherefile.Load(*inputPath)
		if err != nil {
			return nil, 0, "", err
		}
		analytic := 0.0
		if set.Len() == 1 {
			r := set.Radii[0]
			analytic = 4.0 / 3.0 * math.Pi * r * r * r
		}
		return set, analytic, *inputPath, nil
	}

	if !(*radius > 0) {
		return nil, 0, "", fmt.Errorf("-radius must be > 0 when no -input is given")
	}
	set, err := spherefile.FromArraysScalar([]float64{0, 0, 0}, *radius)
	if err != nil {
		return nil, 0, "", err
	}
	analytic := 4.0 / 3.0 * math.Pi * *radius * *radius * *radius
	return set, analytic, "convergence-sweep", nil
}

// sweep runs the estimator at each spacing, finest first so the most
// expensive sample fails fast if the sweep is misconfigured.
func sweep(set *spherefile.Set, analytic float64, source string, db *voldb.DB) ([]plot.SweepPoint, []float64, error) {
	opts := volgrid.Options{Workers: *workers}
	points := make([]plot.SweepPoint, 0, *steps)
	var relErrs []float64

	for i := 0; i < *steps; i++ {
		h := *minSpacing + (*maxSpacing-*minSpacing)*float64(i)/float64(*steps-1)

		start := time.Now()
		v, err := spherefile.Estimate(set, h, spherefile.Float64, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("spacing %g: %w", h, err)
		}
		duration := time.Since(start)

		points = append(points, plot.SweepPoint{Spacing: h, Volume: v})
		if analytic > 0 {
			relErrs = append(relErrs, math.Abs(v-analytic)/analytic)
			log.Printf("spacing %-8g volume %-12g rel err %.4f (%s)",
				h, v, math.Abs(v-analytic)/analytic, duration)
		} else {
			log.Printf("spacing %-8g volume %-12g (%s)", h, v, duration)
		}

		if db != nil {
			voxels := int64(v/(h*h*h) + 0.5)
			if _, err := db.RecordRun(voldb.Run{
				Source:     source,
				Spheres:    set.Len(),
				Spacing:    h,
				Precision:  string(spherefile.Float64),
				Volume:     v,
				Voxels:     voxels,
				DurationMs: duration.Milliseconds(),
			}); err != nil {
				return nil, nil, err
			}
		}
	}
	return points, relErrs, nil
}

func writeCSV(path string, points []plot.SweepPoint, analytic float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"spacing", "volume"}
	if analytic > 0 {
		header = append(header, "rel_err")
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{
			strconv.FormatFloat(p.Spacing, 'g', -1, 64),
			strconv.FormatFloat(p.Volume, 'g', -1, 64),
		}
		if analytic > 0 {
			row = append(row, strconv.FormatFloat(math.Abs(p.Volume-analytic)/analytic, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
