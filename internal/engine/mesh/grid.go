// Package mesh converts elevation grids into renderable terrain meshes:
// vertex positions, per-vertex colors and per-vertex normals in three flat
// buffers ready for GPU upload.
package mesh

import (
	"errors"
	"fmt"
)

// ErrInvalidInput reports an elevation grid that cannot form a mesh cell.
var ErrInvalidInput = errors.New("invalid elevation grid")

// ElevationGrid is a row-major grid of scalar elevation samples.
// Samples are normalized to [0,1] by the loader by convention; out-of-range
// values are tolerated (color mapping clamps, positions pass them through).
// The grid is never mutated by mesh building and is safe to share across
// repeated builds.
type ElevationGrid struct {
	Width   int
	Height  int
	Samples []float32
}

// NewElevationGrid wraps samples in a validated grid.
func NewElevationGrid(width, height int, samples []float32) (*ElevationGrid, error) {
	g := &ElevationGrid{Width: width, Height: height, Samples: samples}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks that the grid can form at least one cell.
func (g *ElevationGrid) Validate() error {
	if g.Width < 2 || g.Height < 2 {
		return fmt.Errorf("%w: %dx%d grid has no cells", ErrInvalidInput, g.Width, g.Height)
	}
	if len(g.Samples) != g.Width*g.Height {
		return fmt.Errorf("%w: %d samples for %dx%d grid", ErrInvalidInput, len(g.Samples), g.Width, g.Height)
	}
	return nil
}

// At returns the sample at (x, y) without bounds checking.
func (g *ElevationGrid) At(x, y int) float32 {
	return g.Samples[y*g.Width+x]
}
