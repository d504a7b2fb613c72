// Package heightmap loads elevation rasters into normalized grids.
//
// Two source formats are supported: grayscale images (PNG, TIFF) and ESRI
// ASCII grids (.asc), which additionally carry a geographic bounding box.
// Samples are min/max stretched to [0,1] on load.
package heightmap

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/Faultbox/terramesh/internal/engine/mesh"
)

// Bounds is the geographic bounding box of a raster, in the raster's own
// coordinate reference system.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Raster pairs a normalized elevation grid with its geographic bounds.
// Image sources without georeferencing get the unit square.
type Raster struct {
	Grid   *mesh.ElevationGrid
	Bounds Bounds
}

// Load reads an elevation raster, dispatching on the file extension:
// .asc as an ESRI ASCII grid, anything else as a grayscale image.
func Load(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".asc") {
		return DecodeASC(f)
	}
	return DecodeImage(f)
}

// DecodeImage reads a grayscale image and normalizes its luminance to [0,1].
func DecodeImage(r io.Reader) (*Raster, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode heightmap image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	samples := make([]float32, w*h)

	switch src := img.(type) {
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				px := src.Gray16At(b.Min.X+x, b.Min.Y+y).Y
				samples[y*w+x] = float32(px)
			}
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				samples[y*w+x] = float32(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				samples[y*w+x] = float32(g.Y)
			}
		}
	}

	stretch(samples, nil)

	grid, err := mesh.NewElevationGrid(w, h, samples)
	if err != nil {
		return nil, err
	}
	return &Raster{
		Grid:   grid,
		Bounds: Bounds{MaxX: 1, MaxY: 1},
	}, nil
}

// stretch normalizes samples in place to [0,1]. Indices in skip hold no-data
// values and are forced to 0. A flat raster normalizes to all zeros.
func stretch(samples []float32, skip map[int]bool) {
	first := true
	var lo, hi float32
	for i, v := range samples {
		if skip[i] {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	span := hi - lo
	for i := range samples {
		if skip[i] || span == 0 {
			samples[i] = 0
			continue
		}
		samples[i] = (samples[i] - lo) / span
	}
}
