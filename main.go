package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/volgrid/internal/api"
	"github.com/banshee-data/volgrid/internal/spherefile"
	"github.com/banshee-data/volgrid/internal/units"
	"github.com/banshee-data/volgrid/internal/version"
	"github.com/banshee-data/volgrid/internal/voldb"
	"github.com/banshee-data/volgrid/internal/volgrid"
)

var (
	inputPath   = flag.String("input", "", "Sphere set file (.csv with x,y,z,r rows or .json)")
	spacing     = flag.Float64("spacing", 0.1, "Grid spacing for voxelisation")
	radius      = flag.Float64("radius", 0, "Broadcast radius applied to every sphere (overrides per-sphere radii when > 0)")
	precision   = flag.String("precision", "float64", "Computation precision: float32 or float64")
	workers     = flag.Int("workers", 0, "Rasterisation workers (0 = all CPUs)")
	lengthUnit  = flag.String("units", "", "Length unit label for reports (angstrom, nm, um, mm, m)")
	dbPath      = flag.String("db", "", "Sqlite database path to record runs (empty disables history)")
	listen      = flag.String("listen", "", "Serve the HTTP API on this address instead of a one-shot computation")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *lengthUnit != "" && !units.IsValid(*lengthUnit) {
		log.Fatalf("invalid units %q (valid: %s)", *lengthUnit, units.GetValidUnitsString())
	}

	var db *voldb.DB
	if *dbPath != "" {
		var err error
		db, err = voldb.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
	}

	if *listen != "" {
		serve(db)
		return
	}

	if *inputPath == "" {
		log.Fatal("either -input or -listen is required")
	}
	if err := computeOnce(db); err != nil {
		log.Fatal(err)
	}
}

// computeOnce loads the sphere file, runs the estimator, prints the result,
// and records the run when a database is configured.
func computeOnce(db *voldb.DB) error {
	set, err := spherefile.Load(*inputPath)
	if err != nil {
		return err
	}
	if *radius > 0 {
		for i := range set.Radii {
			set.Radii[i] = *radius
		}
	}
	prec, err := spherefile.ParsePrecision(*precision)
	if err != nil {
		return err
	}

	start := time.Now()
	volume, err := spherefile.Estimate(set, *spacing, prec, volgrid.Options{Workers: *workers})
	if err != nil {
		return err
	}
	duration := time.Since(start)

	label := *lengthUnit
	if label == "" {
		label = "units"
	}
	fmt.Printf("%g %s^3\n", volume, label)
	log.Printf("estimated union volume of %d spheres at spacing %g in %s",
		set.Len(), *spacing, duration)

	if db != nil {
		h := *spacing
		voxels := int64(volume/(h*h*h) + 0.5)
		run, err := db.RecordRun(voldb.Run{
			Source:     *inputPath,
			Spheres:    set.Len(),
			Spacing:    *spacing,
			Precision:  string(prec),
			Units:      *lengthUnit,
			Volume:     volume,
			Voxels:     voxels,
			DurationMs: duration.Milliseconds(),
		})
		if err != nil {
			return err
		}
		log.Printf("recorded run %s", run.ID)
	}
	return nil
}

// serve runs the HTTP API until interrupted.
func serve(db *voldb.DB) {
	server := &http.Server{
		Addr:    *listen,
		Handler: api.NewServer(db, *workers, *lengthUnit).Routes(),
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("%s serving API on %s", version.String(), *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	// Return rather than exit so main's deferred db.Close runs.
	wg.Wait()
}
