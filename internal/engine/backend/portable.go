package backend

import "github.com/Faultbox/terramesh/internal/engine/mesh"

// portableBuilder runs the pipeline in-process, single-threaded.
type portableBuilder struct{}

func (portableBuilder) Kind() Kind { return Portable }

func (portableBuilder) Build(grid *mesh.ElevationGrid, cfg mesh.Config) (*Result, error) {
	m, err := mesh.Build(grid, cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Mesh: m}, nil
}
