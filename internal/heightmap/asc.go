package heightmap

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/terramesh/internal/engine/mesh"
)

// DecodeASC reads an ESRI ASCII grid: a small key/value header (ncols,
// nrows, xllcorner, yllcorner, cellsize, optional nodata_value) followed by
// whitespace-separated samples, top row first.
func DecodeASC(r io.Reader) (*Raster, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return sc.Text(), nil
	}

	header := map[string]float64{}
	var firstSample string

	// Header lines are "key value" pairs; the grid body starts at the first
	// token that is not a known key.
	for {
		tok, err := next()
		if err != nil {
			return nil, fmt.Errorf("asc header: %w", err)
		}
		key := strings.ToLower(tok)
		switch key {
		case "ncols", "nrows", "xllcorner", "yllcorner", "cellsize", "nodata_value":
			val, err := next()
			if err != nil {
				return nil, fmt.Errorf("asc header value for %s: %w", key, err)
			}
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("asc header %s: %w", key, err)
			}
			header[key] = f
			continue
		}
		firstSample = tok
		break
	}

	ncols := int(header["ncols"])
	nrows := int(header["nrows"])
	if ncols < 2 || nrows < 2 {
		return nil, fmt.Errorf("%w: asc grid is %dx%d", mesh.ErrInvalidInput, ncols, nrows)
	}

	nodata, hasNodata := header["nodata_value"]

	samples := make([]float32, ncols*nrows)
	skip := map[int]bool{}
	for i := range samples {
		var tok string
		if i == 0 {
			tok = firstSample
		} else {
			var err error
			tok, err = next()
			if err != nil {
				return nil, fmt.Errorf("asc body: %d of %d samples: %w", i, len(samples), err)
			}
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("asc sample %d: %w", i, err)
		}
		if hasNodata && f == nodata {
			skip[i] = true
		}
		samples[i] = float32(f)
	}

	stretch(samples, skip)

	grid, err := mesh.NewElevationGrid(ncols, nrows, samples)
	if err != nil {
		return nil, err
	}

	cell := header["cellsize"]
	minX := header["xllcorner"]
	minY := header["yllcorner"]
	return &Raster{
		Grid: grid,
		Bounds: Bounds{
			MinX: minX,
			MinY: minY,
			MaxX: minX + cell*float64(ncols),
			MaxY: minY + cell*float64(nrows),
		},
	}, nil
}
