package mesh

import (
	"math"
	"testing"
)

func TestColorAtEndpoints(t *testing.T) {
	m := DefaultColorMap

	first := m.Stops[0].Color
	last := m.Stops[len(m.Stops)-1].Color

	if got := m.ColorAt(0.0); got != first {
		t.Errorf("ColorAt(0.0) = %v, want first stop %v", got, first)
	}
	if got := m.ColorAt(1.0); got != last {
		t.Errorf("ColorAt(1.0) = %v, want last stop %v", got, last)
	}
}

func TestColorAtClampsOutOfRange(t *testing.T) {
	m := DefaultColorMap

	tests := []struct {
		name string
		v    float32
		want [3]float32
	}{
		{"below range", -0.5, m.Stops[0].Color},
		{"far below range", -1e6, m.Stops[0].Color},
		{"above range", 1.5, m.Stops[len(m.Stops)-1].Color},
		{"far above range", 1e6, m.Stops[len(m.Stops)-1].Color},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.ColorAt(tt.v); got != tt.want {
				t.Errorf("ColorAt(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

// Approaching an interior stop from either side must converge to the stop
// color: the ramp has no discontinuities.
func TestColorAtContinuousAtStops(t *testing.T) {
	m := DefaultColorMap
	const eps = 1e-4
	const tol = 1e-2

	for _, stop := range m.Stops[1 : len(m.Stops)-1] {
		below := m.ColorAt(stop.Pos - eps)
		at := m.ColorAt(stop.Pos)
		above := m.ColorAt(stop.Pos + eps)

		for ch := 0; ch < 3; ch++ {
			if math.Abs(float64(below[ch]-at[ch])) > tol {
				t.Errorf("stop %v channel %d: below=%v at=%v", stop.Pos, ch, below[ch], at[ch])
			}
			if math.Abs(float64(above[ch]-at[ch])) > tol {
				t.Errorf("stop %v channel %d: above=%v at=%v", stop.Pos, ch, above[ch], at[ch])
			}
		}
	}
}

func TestColorAtInterpolatesMidSegment(t *testing.T) {
	m := &ColorMap{Stops: []ColorStop{
		{0.0, [3]float32{0, 0, 0}},
		{1.0, [3]float32{1, 0.5, 0}},
	}}

	got := m.ColorAt(0.5)
	want := [3]float32{0.5, 0.25, 0}
	for ch := 0; ch < 3; ch++ {
		if math.Abs(float64(got[ch]-want[ch])) > 1e-6 {
			t.Errorf("ColorAt(0.5) = %v, want %v", got, want)
			break
		}
	}
}

func TestColorAtExactlyAtInteriorStop(t *testing.T) {
	m := DefaultColorMap
	for _, stop := range m.Stops {
		got := m.ColorAt(stop.Pos)
		for ch := 0; ch < 3; ch++ {
			if math.Abs(float64(got[ch]-stop.Color[ch])) > 1e-6 {
				t.Errorf("ColorAt(%v) = %v, want stop color %v", stop.Pos, got, stop.Color)
				break
			}
		}
	}
}
