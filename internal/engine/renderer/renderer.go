// Package renderer owns global OpenGL state for the viewer.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/terramesh/internal/logger"
)

// Renderer initializes OpenGL and manages per-frame state.
type Renderer struct {
	width  int
	height int
}

// New initializes OpenGL. Must be called AFTER the context is created.
func New(width, height int) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.ClearColor(0.08, 0.10, 0.14, 1.0)

	r := &Renderer{}
	r.Resize(width, height)
	return r, nil
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int) {
	r.width = width
	r.height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.height == 0 {
		return 1
	}
	return float32(r.width) / float32(r.height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}
