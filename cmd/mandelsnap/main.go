// Command mandelsnap renders a single deep-zoom Mandelbrot viewport through
// the engine core and writes the composited frame to an image file.
//
// Grounded on cmd/geotiff2pmtiles/main.go's flag layout and verbose-logging
// conventions, retargeted from a batch GeoTIFF→PMTiles conversion onto a
// single SetViewport/GetFrame/GetStats round through internal/coordinator.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deepzoom/mandelcore/internal/cache/l3"
	"github.com/deepzoom/mandelcore/internal/compositor"
	"github.com/deepzoom/mandelcore/internal/config"
	"github.com/deepzoom/mandelcore/internal/coordinator"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		centerReStr string
		centerImStr string
		scale       float64
		width       int
		height      int
		maxIter     int
		tileSize    int
		format      string
		quality     int
		out         string
		l3Dir       string
		noL3        bool
		verbose     bool
		showVersion bool
	)

	flag.StringVar(&centerReStr, "center-re", "-0.5", "Real part of the viewport center (decimal string, arbitrary precision)")
	flag.StringVar(&centerImStr, "center-im", "0", "Imaginary part of the viewport center (decimal string, arbitrary precision)")
	flag.Float64Var(&scale, "scale", 2.5, "Complex-plane width spanned by the viewport's shorter screen axis")
	flag.IntVar(&width, "width", 1024, "Output image width in pixels")
	flag.IntVar(&height, "height", 1024, "Output image height in pixels")
	flag.IntVar(&maxIter, "max-iter", 1000, "Maximum iteration count")
	flag.IntVar(&tileSize, "tile-size", 256, "Tile edge size in pixels")
	flag.StringVar(&format, "format", "png", "Output encoding: png, jpeg, webp")
	flag.IntVar(&quality, "quality", 90, "JPEG/WebP quality 1-100")
	flag.StringVar(&out, "out", "mandelbrot.png", "Output image path")
	flag.StringVar(&l3Dir, "l3-dir", "", "Directory for the L3 disk cache spill file (default: OS temp dir)")
	flag.BoolVar(&noL3, "no-l3", false, "Run with L1+L2 cache only, no disk spill")
	flag.BoolVar(&verbose, "verbose", false, "Verbose progress output")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mandelsnap [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Render one deep-zoom Mandelbrot viewport to an image file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("mandelsnap %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	centerRe, err := strconv.ParseFloat(centerReStr, 64)
	if err != nil {
		logrus.WithError(err).Fatal("mandelsnap: parsing -center-re")
	}
	centerIm, err := strconv.ParseFloat(centerImStr, 64)
	if err != nil {
		logrus.WithError(err).Fatal("mandelsnap: parsing -center-im")
	}

	cfg := config.Default()
	cfg.TileSize = tileSize
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("mandelsnap: invalid configuration")
	}

	var store l3.Store
	if !noL3 {
		disk := l3.NewDiskStore(l3.Config{Dir: l3Dir, CountCap: cfg.L3CacheTiles, BytesCap: cfg.L3BytesCap})
		defer disk.Close()
		store = disk
	}

	eng := coordinator.New(cfg, store)

	start := time.Now()
	if err := eng.SetViewport(centerReStr, centerImStr, centerRe, centerIm, scale, maxIter, width, height); err != nil {
		logrus.WithError(err).Fatal("mandelsnap: rendering viewport")
	}
	if verbose {
		logrus.WithFields(logrus.Fields{
			"state":   eng.State(),
			"elapsed": time.Since(start).Round(time.Millisecond),
		}).Info("mandelsnap: viewport settled")
	}

	frame := eng.GetFrame()
	if err := compositor.SaveSnapshot(&frame, format, quality, out); err != nil {
		logrus.WithError(err).Fatal("mandelsnap: saving snapshot")
	}

	stats := eng.GetStats()
	logrus.WithFields(logrus.Fields{
		"tile_counts":    stats.TileCounts,
		"precision_tier": stats.PrecisionTier.String(),
		"avg_render_ms":  stats.AvgRenderTimeMs,
		"out":            out,
	}).Info("mandelsnap: done")
}
