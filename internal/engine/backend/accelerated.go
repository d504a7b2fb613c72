package backend

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/terramesh/internal/engine/mesh"
)

// acceleratedBuilder runs the identical pipeline partitioned into row bands
// across worker goroutines. Every vertex goes through the same scalar math
// as the portable build, so the two outputs match exactly.
type acceleratedBuilder struct {
	workers int
}

func (b *acceleratedBuilder) Kind() Kind { return Accelerated }

func (b *acceleratedBuilder) Build(grid *mesh.ElevationGrid, cfg mesh.Config) (*Result, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gw := grid.Width * cfg.TessellationFactor
	gh := grid.Height * cfg.TessellationFactor
	workers := b.workerCount()

	samples := grid.Samples
	if cfg.TessellationFactor > 1 {
		samples = make([]float32, gw*gh)
		var g errgroup.Group
		for _, band := range bands(gh, workers) {
			g.Go(func() error {
				mesh.ResampleRows(grid, gw, gh, band[0], band[1], samples)
				return nil
			})
		}
		_ = g.Wait() // band workers never fail
	}

	m := mesh.NewBuffers(gw, gh)
	colors := cfg.ColorRamp()

	var g errgroup.Group
	for _, band := range bands(gh-1, workers) {
		g.Go(func() error {
			mesh.FillCells(samples, gw, gh, colors, cfg.VerticalScale, band[0], band[1], m)
			return nil
		})
	}
	_ = g.Wait()

	return &Result{Mesh: m}, nil
}

func (b *acceleratedBuilder) workerCount() int {
	if b.workers > 0 {
		return b.workers
	}
	return runtime.GOMAXPROCS(0)
}

// bands splits n rows into at most workers near-equal contiguous chunks.
func bands(n, workers int) [][2]int {
	if workers > n {
		workers = n
	}
	out := make([][2]int, 0, workers)
	for i := 0; i < workers; i++ {
		lo := i * n / workers
		hi := (i + 1) * n / workers
		if lo < hi {
			out = append(out, [2]int{lo, hi})
		}
	}
	return out
}
