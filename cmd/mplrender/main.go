// Command mplrender renders the standard chart cases to PNG files and
// optionally checks them against golden images.
//
// Render one case:
//
//	mplrender -case line_plot -out line_plot.png
//
// Render everything into a directory:
//
//	mplrender -out charts/
//
// Compare against goldens, writing a diff heatmap on mismatch:
//
//	mplrender -case heatmap -golden testdata/golden
//
// Refresh the goldens:
//
//	mplrender -golden testdata/golden -bless
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mplwgpu "github.com/KlingelDev/mpl-wgpu"
	"github.com/KlingelDev/mpl-wgpu/plot"
)

func main() {
	var (
		caseName = flag.String("case", "", "case to render (default: all)")
		out      = flag.String("out", ".", "output PNG file or directory")
		golden   = flag.String("golden", "", "golden image directory to compare against")
		bless    = flag.Bool("bless", false, "write rendered output as the new goldens")
		width    = flag.Int("width", 800, "image width")
		height   = flag.Int("height", 600, "image height")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		mplwgpu.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	session, err := plot.NewSession(uint32(*width), uint32(*height))
	if err != nil {
		log.Fatalf("renderer setup failed: %v", err)
	}
	defer session.Close()

	selected := plot.All()
	if *caseName != "" {
		c, err := plot.Lookup(*caseName)
		if err != nil {
			log.Fatal(err)
		}
		selected = []plot.Case{c}
	}

	failed := 0
	for _, c := range selected {
		pixels, err := session.RenderCase(c.Name)
		if err != nil {
			log.Fatalf("render %s: %v", c.Name, err)
		}

		switch {
		case *golden != "" && *bless:
			path := filepath.Join(*golden, c.Name+".png")
			if err := mplwgpu.SavePNG(path, pixels, *width, *height); err != nil {
				log.Fatalf("bless %s: %v", c.Name, err)
			}
			log.Printf("blessed %s", path)
		case *golden != "":
			if err := checkGolden(*golden, c.Name, pixels, *width, *height); err != nil {
				log.Printf("FAIL %s: %v", c.Name, err)
				failed++
			} else {
				log.Printf("ok   %s", c.Name)
			}
		default:
			path := outputPath(*out, c.Name, len(selected) > 1)
			if err := mplwgpu.SavePNG(path, pixels, *width, *height); err != nil {
				log.Fatalf("save %s: %v", c.Name, err)
			}
			log.Printf("wrote %s (%dx%d)", path, *width, *height)
		}
	}

	if failed > 0 {
		log.Fatalf("%d case(s) differ from golden images", failed)
	}
}

// outputPath resolves -out for single and multi case runs: a directory
// gets per-case file names, a file path is used as-is for single cases.
func outputPath(out, name string, multi bool) string {
	if multi || isDir(out) || !strings.HasSuffix(out, ".png") {
		return filepath.Join(out, name+".png")
	}
	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// checkGolden compares rendered pixels against the stored golden image
// and writes a diff heatmap next to it when they disagree.
func checkGolden(dir, name string, pixels []byte, width, height int) error {
	goldenPath := filepath.Join(dir, name+".png")
	want, gw, gh, err := mplwgpu.LoadPNG(goldenPath)
	if err != nil {
		return fmt.Errorf("load golden: %w", err)
	}
	if gw != width || gh != height {
		return fmt.Errorf("golden is %dx%d, rendered %dx%d", gw, gh, width, height)
	}

	result, err := mplwgpu.Compare(pixels, want, width, height)
	if err != nil {
		return err
	}
	if result.Match() {
		return nil
	}

	diffPath := filepath.Join(dir, name+"_diff.png")
	diff, err := mplwgpu.DiffImage(pixels, want, width, height)
	if err != nil {
		return fmt.Errorf("%s (diff image failed: %v)", result, err)
	}
	if err := mplwgpu.SavePNG(diffPath, diff, width, height); err != nil {
		return fmt.Errorf("%s (diff image write failed: %v)", result, err)
	}
	return fmt.Errorf("%s (diff written to %s)", result, diffPath)
}
