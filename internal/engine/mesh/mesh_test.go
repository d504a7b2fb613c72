package mesh

import (
	"errors"
	"math"
	"testing"
)

func TestBuildVertexCount(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		k    int
	}{
		{"2x2 k=1", 2, 2, 1},
		{"2x2 k=4", 2, 2, 4},
		{"4x4 k=1", 4, 4, 1},
		{"4x4 k=3", 4, 4, 3},
		{"5x3 k=2", 5, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make([]float32, tt.w*tt.h)
			for i := range samples {
				samples[i] = float32(i) / float32(len(samples))
			}
			g := mustGrid(t, tt.w, tt.h, samples)

			m, err := Build(g, Config{TessellationFactor: tt.k, VerticalScale: 1})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}

			gw, gh := tt.w*tt.k, tt.h*tt.k
			want := 6 * (gw - 1) * (gh - 1)
			if m.VertexCount != want {
				t.Errorf("VertexCount = %d, want %d", m.VertexCount, want)
			}
			for _, buf := range [][]float32{m.Positions, m.Colors, m.Normals} {
				if len(buf) != want*3 {
					t.Errorf("buffer length = %d, want %d", len(buf), want*3)
				}
			}
		})
	}
}

// One cell, two triangles: the canonical 2x2 [[0,1],[0,1]] grid.
func TestBuildSingleCell(t *testing.T) {
	g := mustGrid(t, 2, 2, []float32{
		0, 1,
		0, 1,
	})

	m, err := Build(g, Config{TessellationFactor: 1, VerticalScale: 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if m.VertexCount != 6 {
		t.Fatalf("VertexCount = %d, want 6", m.VertexCount)
	}

	low := DefaultColorMap.ColorAt(0)
	high := DefaultColorMap.ColorAt(1)

	// Vertex order: TL, TR, BL, TR, BR, BL.
	wantX := []float32{-1, 1, -1, 1, 1, -1}
	wantColor := [][3]float32{low, high, low, high, high, low}

	for v := 0; v < 6; v++ {
		if got := m.Positions[v*3]; got != wantX[v] {
			t.Errorf("vertex %d position x = %v, want %v", v, got, wantX[v])
		}
		c := [3]float32{m.Colors[v*3], m.Colors[v*3+1], m.Colors[v*3+2]}
		if c != wantColor[v] {
			t.Errorf("vertex %d color = %v, want %v", v, c, wantColor[v])
		}
	}

	// Left column is elevation 0, right column elevation 1.
	wantZ := []float32{0, 1, 0, 1, 1, 0}
	for v := 0; v < 6; v++ {
		if got := m.Positions[v*3+2]; got != wantZ[v] {
			t.Errorf("vertex %d position z = %v, want %v", v, got, wantZ[v])
		}
	}
}

func TestBuildInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		samples int
		k       int
	}{
		{"1x5 grid", 1, 5, 5, 1},
		{"5x1 grid", 5, 1, 5, 1},
		{"length mismatch", 3, 3, 8, 1},
		{"zero tessellation factor", 2, 2, 4, 0},
		{"negative tessellation factor", 2, 2, 4, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &ElevationGrid{Width: tt.w, Height: tt.h, Samples: make([]float32, tt.samples)}
			m, err := Build(g, Config{TessellationFactor: tt.k, VerticalScale: 1})
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Build error = %v, want ErrInvalidInput", err)
			}
			if m != nil {
				t.Errorf("Build returned a mesh alongside the error")
			}
		})
	}
}

func TestBuildNormalsUnitLength(t *testing.T) {
	samples := make([]float32, 16)
	for i := range samples {
		samples[i] = float32((i*7)%16) / 16
	}
	g := mustGrid(t, 4, 4, samples)

	m, err := Build(g, Config{TessellationFactor: 2, VerticalScale: 2.5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for v := 0; v < m.VertexCount; v++ {
		n := [3]float32{m.Normals[v*3], m.Normals[v*3+1], m.Normals[v*3+2]}
		if l := length3(n); math.Abs(l-1) > 1e-5 {
			t.Errorf("vertex %d normal length = %v, want 1", v, l)
		}
	}
}

func TestBuildVerticalScaleAppliedToPositions(t *testing.T) {
	g := mustGrid(t, 2, 2, []float32{
		0, 1,
		0, 1,
	})

	m, err := Build(g, Config{TessellationFactor: 1, VerticalScale: 0.25})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Top-right vertex carries elevation 1 scaled to 0.25.
	if got := m.Positions[1*3+2]; got != 0.25 {
		t.Errorf("scaled z = %v, want 0.25", got)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	samples := []float32{0, 1, 0.5, 0.25}
	g := mustGrid(t, 2, 2, samples)
	orig := append([]float32(nil), samples...)

	for i := 0; i < 3; i++ {
		if _, err := Build(g, Config{TessellationFactor: 3, VerticalScale: 1}); err != nil {
			t.Fatalf("Build: %v", err)
		}
	}

	for i := range orig {
		if samples[i] != orig[i] {
			t.Fatalf("input sample %d mutated: %v -> %v", i, orig[i], samples[i])
		}
	}
}

func TestBuildProducesFreshBuffers(t *testing.T) {
	g := mustGrid(t, 3, 3, make([]float32, 9))
	cfg := Config{TessellationFactor: 1, VerticalScale: 1}

	a, err := Build(g, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(g, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if &a.Positions[0] == &b.Positions[0] {
		t.Error("consecutive builds share position buffer memory")
	}
}

func TestBuildConsistentWinding(t *testing.T) {
	samples := make([]float32, 9)
	g := mustGrid(t, 3, 3, samples)

	m, err := Build(g, Config{TessellationFactor: 1, VerticalScale: 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Every triangle of a flat grid must have the same signed area sign in
	// the xy plane, or back-face culling would drop half the terrain.
	for tri := 0; tri < m.VertexCount/3; tri++ {
		o := tri * 9
		ax, ay := m.Positions[o], m.Positions[o+1]
		bx, by := m.Positions[o+3], m.Positions[o+4]
		cx, cy := m.Positions[o+6], m.Positions[o+7]
		area := (bx-ax)*(cy-ay) - (cx-ax)*(by-ay)
		if area <= 0 {
			t.Errorf("triangle %d signed area = %v, want positive (consistent winding)", tri, area)
		}
	}
}
