package heightmap

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/terramesh/internal/engine/mesh"
)

func TestDecodeImageGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.Pix = []uint8{
		0, 128, 255,
		64, 192, 255,
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	r, err := DecodeImage(&buf)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}

	if r.Grid.Width != 3 || r.Grid.Height != 2 {
		t.Fatalf("grid is %dx%d, want 3x2", r.Grid.Width, r.Grid.Height)
	}

	// Min/max stretch: darkest pixel -> 0, brightest -> 1.
	if got := r.Grid.At(0, 0); got != 0 {
		t.Errorf("darkest sample = %v, want 0", got)
	}
	if got := r.Grid.At(2, 0); got != 1 {
		t.Errorf("brightest sample = %v, want 1", got)
	}
	if got := r.Grid.At(1, 0); math.Abs(float64(got)-128.0/255.0) > 1e-5 {
		t.Errorf("mid sample = %v, want ~%v", got, 128.0/255.0)
	}
}

func TestDecodeImageGray16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 2, 2))
	img.SetGray16(0, 0, color.Gray16{Y: 0})
	img.SetGray16(1, 0, color.Gray16{Y: 65535})
	img.SetGray16(0, 1, color.Gray16{Y: 16384})
	img.SetGray16(1, 1, color.Gray16{Y: 49151})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	r, err := DecodeImage(&buf)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}

	if got := r.Grid.At(0, 0); got != 0 {
		t.Errorf("sample (0,0) = %v, want 0", got)
	}
	if got := r.Grid.At(1, 0); got != 1 {
		t.Errorf("sample (1,0) = %v, want 1", got)
	}
	if got := r.Grid.At(0, 1); math.Abs(float64(got)-0.25) > 1e-4 {
		t.Errorf("sample (0,1) = %v, want ~0.25", got)
	}
}

func TestDecodeImageFlat(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 100
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	r, err := DecodeImage(&buf)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	for i, v := range r.Grid.Samples {
		if v != 0 {
			t.Errorf("flat raster sample %d = %v, want 0", i, v)
		}
	}
}

func TestDecodeASC(t *testing.T) {
	src := `ncols 3
nrows 2
xllcorner 100.0
yllcorner 200.0
cellsize 10.0
NODATA_value -9999
10 20 30
-9999 25 30
`

	r, err := DecodeASC(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeASC: %v", err)
	}

	if r.Grid.Width != 3 || r.Grid.Height != 2 {
		t.Fatalf("grid is %dx%d, want 3x2", r.Grid.Width, r.Grid.Height)
	}

	want := Bounds{MinX: 100, MinY: 200, MaxX: 130, MaxY: 220}
	if r.Bounds != want {
		t.Errorf("bounds = %+v, want %+v", r.Bounds, want)
	}

	// Valid range is [10, 30]; the nodata cell stretches to 0.
	if got := r.Grid.At(0, 0); got != 0 {
		t.Errorf("min sample = %v, want 0", got)
	}
	if got := r.Grid.At(2, 0); got != 1 {
		t.Errorf("max sample = %v, want 1", got)
	}
	if got := r.Grid.At(0, 1); got != 0 {
		t.Errorf("nodata sample = %v, want 0", got)
	}
	if got := r.Grid.At(1, 0); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Errorf("mid sample = %v, want 0.5", got)
	}
}

func TestDecodeASCErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"truncated body", "ncols 3\nnrows 2\ncellsize 1\n1 2 3 4\n"},
		{"garbage sample", "ncols 2\nnrows 2\ncellsize 1\n1 2 three 4\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeASC(strings.NewReader(tt.src)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDecodeASCTooSmall(t *testing.T) {
	src := "ncols 1\nnrows 5\ncellsize 1\n1 2 3 4 5\n"
	_, err := DecodeASC(strings.NewReader(src))
	if !errors.Is(err, mesh.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	ascPath := filepath.Join(dir, "tile.asc")
	asc := "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2\n3 4\n"
	if err := os.WriteFile(ascPath, []byte(asc), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r, err := Load(ascPath)
	if err != nil {
		t.Fatalf("Load(.asc): %v", err)
	}
	if r.Bounds.MaxX != 2 {
		t.Errorf("asc bounds MaxX = %v, want 2", r.Bounds.MaxX)
	}

	pngPath := filepath.Join(dir, "tile.png")
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.Pix = []uint8{0, 255, 128, 64}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := os.WriteFile(pngPath, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r, err = Load(pngPath)
	if err != nil {
		t.Fatalf("Load(.png): %v", err)
	}
	if r.Grid.Width != 2 || r.Grid.Height != 2 {
		t.Errorf("png grid is %dx%d, want 2x2", r.Grid.Width, r.Grid.Height)
	}

	if _, err := Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
