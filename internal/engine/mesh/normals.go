package mesh

import "math"

// defaultUp is the fallback normal for degenerate gradients.
var defaultUp = [3]float32{0, 0, 1}

// GradientNormal estimates the unit surface normal at (x, y) of a gw x gh
// sample grid from central elevation differences. Neighbors outside the grid
// clamp to the center sample. The vertical scale must match the one applied
// to vertex positions so shading agrees with the displayed geometry.
func GradientNormal(samples []float32, gw, gh, x, y int, verticalScale float32) [3]float32 {
	c := samples[y*gw+x]
	left, right, top, bottom := c, c, c, c
	if x > 0 {
		left = samples[y*gw+x-1]
	}
	if x < gw-1 {
		right = samples[y*gw+x+1]
	}
	if y > 0 {
		top = samples[(y-1)*gw+x]
	}
	if y < gh-1 {
		bottom = samples[(y+1)*gw+x]
	}

	dx := (right - left) * 0.5 * verticalScale
	dy := (bottom - top) * 0.5 * verticalScale
	return normalize(-dx, -dy, 1)
}

// normalize returns the unit vector, or straight up when the input is too
// short to normalize.
func normalize(x, y, z float32) [3]float32 {
	l := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if l < 1e-8 {
		return defaultUp
	}
	return [3]float32{x / l, y / l, z / l}
}
