// Package backend selects among interchangeable implementations of the
// terrain mesh pipeline: a portable in-process build, a worker-parallel
// accelerated build, and a GPU compute build writing device-resident buffers.
package backend

import (
	"errors"
	"fmt"

	"github.com/Faultbox/terramesh/internal/engine/mesh"
)

// ErrUnavailable reports a backend that cannot be initialized on this host.
// Selection never falls back silently to another backend.
var ErrUnavailable = errors.New("backend unavailable")

// Kind identifies a compute backend.
type Kind int

const (
	Portable Kind = iota
	Accelerated
	DeviceParallel
)

func (k Kind) String() string {
	switch k {
	case Portable:
		return "portable"
	case Accelerated:
		return "accelerated"
	case DeviceParallel:
		return "device"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a config string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "portable":
		return Portable, nil
	case "accelerated":
		return Accelerated, nil
	case "device":
		return DeviceParallel, nil
	}
	return 0, fmt.Errorf("unknown backend %q", s)
}

// Result is the output of one mesh build. Exactly one field is set: host
// backends fill Mesh, the device-parallel backend fills Device with GPU
// buffer names that never round-trip to host memory. Callers branch on which
// field is non-nil.
type Result struct {
	Mesh   *mesh.Mesh
	Device *DeviceMesh
}

// Builder builds a complete mesh from an elevation grid. Implementations are
// re-entrant: each call validates its input, allocates fresh output and
// shares no mutable state with other calls.
type Builder interface {
	Kind() Kind
	Build(grid *mesh.ElevationGrid, cfg mesh.Config) (*Result, error)
}

// Options carries backend construction parameters.
type Options struct {
	// Workers bounds accelerated-build parallelism; <= 0 uses GOMAXPROCS.
	Workers int

	// Device is the GPU compute device for DeviceParallel. Nil when no GL
	// context is available.
	Device *Device
}

// Select returns the builder for the requested kind. A request that cannot
// be satisfied fails fast with ErrUnavailable; there is no fallback.
func Select(kind Kind, opts Options) (Builder, error) {
	switch kind {
	case Portable:
		return portableBuilder{}, nil
	case Accelerated:
		return &acceleratedBuilder{workers: opts.Workers}, nil
	case DeviceParallel:
		if opts.Device == nil {
			return nil, fmt.Errorf("%w: device-parallel requested but no compute device is initialized", ErrUnavailable)
		}
		return &deviceBuilder{dev: opts.Device}, nil
	}
	return nil, fmt.Errorf("%w: unknown backend kind %d", ErrUnavailable, int(kind))
}
