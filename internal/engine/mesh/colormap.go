package mesh

// ColorStop pairs a normalized elevation with an RGB color.
type ColorStop struct {
	Pos   float32
	Color [3]float32
}

// ColorMap maps a normalized elevation to an RGB color by piecewise-linear
// interpolation over an ordered stop table. Stops must be strictly increasing
// from 0.0 to 1.0.
type ColorMap struct {
	Stops []ColorStop
}

// DefaultColorMap is a hypsometric tint ramp from deep water to snow caps.
var DefaultColorMap = &ColorMap{
	Stops: []ColorStop{
		{0.00, [3]float32{0.058, 0.231, 0.411}}, // deep water
		{0.15, [3]float32{0.113, 0.421, 0.628}}, // shallow water
		{0.30, [3]float32{0.764, 0.698, 0.502}}, // sand
		{0.45, [3]float32{0.309, 0.541, 0.180}}, // grassland
		{0.65, [3]float32{0.470, 0.407, 0.290}}, // highland
		{0.85, [3]float32{0.549, 0.549, 0.549}}, // rock
		{1.00, [3]float32{1.000, 1.000, 1.000}}, // snow
	},
}

// ColorAt returns the interpolated color for value v. Values outside the
// stop range clamp to the endpoint colors; no error is ever raised.
func (m *ColorMap) ColorAt(v float32) [3]float32 {
	stops := m.Stops
	if len(stops) == 0 {
		return [3]float32{1, 1, 1}
	}
	if v <= stops[0].Pos {
		return stops[0].Color
	}
	last := len(stops) - 1
	if v >= stops[last].Pos {
		return stops[last].Color
	}

	for i := 0; i < last; i++ {
		lo, hi := stops[i], stops[i+1]
		if v > hi.Pos {
			continue
		}
		t := (v - lo.Pos) / (hi.Pos - lo.Pos)
		return [3]float32{
			lo.Color[0] + (hi.Color[0]-lo.Color[0])*t,
			lo.Color[1] + (hi.Color[1]-lo.Color[1])*t,
			lo.Color[2] + (hi.Color[2]-lo.Color[2])*t,
		}
	}
	return stops[last].Color
}
