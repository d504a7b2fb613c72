package mesh

// Resample bilinearly resizes the grid to newWidth x newHeight and returns
// the resampled samples. Resampling to the original dimensions reproduces the
// source samples exactly.
func Resample(grid *ElevationGrid, newWidth, newHeight int) []float32 {
	out := make([]float32, newWidth*newHeight)
	ResampleRows(grid, newWidth, newHeight, 0, newHeight, out)
	return out
}

// ResampleRows fills rows [rowStart, rowEnd) of a newWidth x newHeight
// resampling into out, which must hold newWidth*newHeight samples. Row
// bands are independent, so callers may fill them from separate goroutines.
func ResampleRows(grid *ElevationGrid, newWidth, newHeight, rowStart, rowEnd int, out []float32) {
	w, h := grid.Width, grid.Height
	src := grid.Samples

	for y := rowStart; y < rowEnd; y++ {
		// Degenerate single-row output collapses to the first source row.
		var origY float32
		if newHeight > 1 {
			origY = float32(y) * float32(h-1) / float32(newHeight-1)
		}
		y0 := int(origY)
		y1 := y0 + 1
		if y1 > h-1 {
			y1 = h - 1
		}
		fy := origY - float32(y0)

		for x := 0; x < newWidth; x++ {
			var origX float32
			if newWidth > 1 {
				origX = float32(x) * float32(w-1) / float32(newWidth-1)
			}
			x0 := int(origX)
			x1 := x0 + 1
			if x1 > w-1 {
				x1 = w - 1
			}
			fx := origX - float32(x0)

			v00 := src[y0*w+x0]
			v10 := src[y0*w+x1]
			v01 := src[y1*w+x0]
			v11 := src[y1*w+x1]

			out[y*newWidth+x] = v00*(1-fx)*(1-fy) +
				v10*fx*(1-fy) +
				v01*(1-fx)*fy +
				v11*fx*fy
		}
	}
}
