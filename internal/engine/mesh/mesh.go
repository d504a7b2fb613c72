package mesh

import "fmt"

// Config is the immutable per-build configuration. A fresh value is passed
// into every build call; nothing is retained between builds.
type Config struct {
	// TessellationFactor k >= 1 multiplies both grid dimensions before
	// assembly: a WxH grid tessellates to W*k x H*k samples.
	TessellationFactor int

	// VerticalScale is applied to elevation values inside the mesh (vertex
	// z and the normal gradient), not later in a shader.
	VerticalScale float32

	// Colors overrides the color ramp. Nil selects DefaultColorMap.
	Colors *ColorMap
}

// Validate rejects configurations no backend can honor.
func (c Config) Validate() error {
	if c.TessellationFactor < 1 {
		return fmt.Errorf("%w: tessellation factor %d", ErrInvalidInput, c.TessellationFactor)
	}
	return nil
}

// ColorRamp returns the configured color map, or the default ramp.
func (c Config) ColorRamp() *ColorMap {
	if c.Colors != nil {
		return c.Colors
	}
	return DefaultColorMap
}

// Mesh holds a non-indexed triangle list as three parallel flat buffers,
// three floats per vertex each, indexed in lock-step. Every build allocates
// fresh buffers; a Mesh never aliases grid or earlier mesh memory.
type Mesh struct {
	Positions   []float32
	Colors      []float32
	Normals     []float32
	VertexCount int
}

// NewBuffers allocates mesh buffers for a gw x gh sample grid:
// two triangles per cell, six owned vertices each.
func NewBuffers(gw, gh int) *Mesh {
	count := 6 * (gw - 1) * (gh - 1)
	return &Mesh{
		Positions:   make([]float32, count*3),
		Colors:      make([]float32, count*3),
		Normals:     make([]float32, count*3),
		VertexCount: count,
	}
}

// Build converts the grid into a mesh in a single pass: resample by the
// tessellation factor, then walk cells emitting position, color and normal
// per vertex. Synchronous and re-entrant.
func Build(grid *ElevationGrid, cfg Config) (*Mesh, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gw := grid.Width * cfg.TessellationFactor
	gh := grid.Height * cfg.TessellationFactor

	samples := grid.Samples
	if cfg.TessellationFactor > 1 {
		samples = Resample(grid, gw, gh)
	}

	m := NewBuffers(gw, gh)
	FillCells(samples, gw, gh, cfg.ColorRamp(), cfg.VerticalScale, 0, gh-1, m)
	return m, nil
}

// FillCells emits vertices for cell rows [cellStart, cellEnd) of a gw x gh
// sample grid into m, which must come from NewBuffers(gw, gh). Each cell
// writes a fixed buffer range, so disjoint cell-row bands may be filled
// concurrently.
//
// Winding is counter-clockwise seen from +z: (TL, TR, BL) then (TR, BR, BL).
func FillCells(samples []float32, gw, gh int, colors *ColorMap, verticalScale float32, cellStart, cellEnd int, m *Mesh) {
	// Precomputed NDC steps; x and y both span [-1, 1].
	sx := 2 / float32(gw-1)
	sy := 2 / float32(gh-1)

	emit := func(vi, x, y int) {
		e := samples[y*gw+x]

		o := vi * 3
		m.Positions[o] = float32(x)*sx - 1
		m.Positions[o+1] = float32(y)*sy - 1
		m.Positions[o+2] = e * verticalScale

		c := colors.ColorAt(e)
		m.Colors[o] = c[0]
		m.Colors[o+1] = c[1]
		m.Colors[o+2] = c[2]

		n := GradientNormal(samples, gw, gh, x, y, verticalScale)
		m.Normals[o] = n[0]
		m.Normals[o+1] = n[1]
		m.Normals[o+2] = n[2]
	}

	for y := cellStart; y < cellEnd; y++ {
		for x := 0; x < gw-1; x++ {
			vi := (y*(gw-1) + x) * 6

			emit(vi, x, y)     // top-left
			emit(vi+1, x+1, y) // top-right
			emit(vi+2, x, y+1) // bottom-left

			emit(vi+3, x+1, y)   // top-right
			emit(vi+4, x+1, y+1) // bottom-right
			emit(vi+5, x, y+1)   // bottom-left
		}
	}
}
