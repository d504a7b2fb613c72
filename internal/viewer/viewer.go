// Package viewer runs the interactive terrain viewer loop.
package viewer

import (
	"errors"
	"fmt"
	gomath "math"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/terramesh/internal/config"
	"github.com/Faultbox/terramesh/internal/engine/backend"
	"github.com/Faultbox/terramesh/internal/engine/camera"
	"github.com/Faultbox/terramesh/internal/engine/mesh"
	"github.com/Faultbox/terramesh/internal/engine/renderer"
	"github.com/Faultbox/terramesh/internal/engine/scene"
	"github.com/Faultbox/terramesh/internal/engine/window"
	"github.com/Faultbox/terramesh/internal/heightmap"
	"github.com/Faultbox/terramesh/internal/logger"
	"github.com/Faultbox/terramesh/pkg/math"
)

// Viewer loads one elevation raster and renders it as a live terrain mesh.
// Tessellation factor and backend can be changed at runtime; every change
// rebuilds the mesh wholesale and drops the old buffers.
type Viewer struct {
	cfg *config.Config

	win      *window.Window
	renderer *renderer.Renderer
	terrain  *scene.TerrainRenderer
	cam      *camera.OrbitCamera

	raster *heightmap.Raster

	kind    backend.Kind
	builder backend.Builder
	device  *backend.Device
	tess    int

	// Device meshes must be released explicitly; host meshes are dropped
	// for the collector.
	deviceMesh *backend.DeviceMesh
}

// New creates the viewer: window, GL state, terrain renderer, first mesh.
func New(cfg *config.Config) (*Viewer, error) {
	kind, err := backend.ParseKind(cfg.Terrain.Backend)
	if err != nil {
		return nil, err
	}

	raster, err := heightmap.Load(cfg.Data.Heightmap)
	if err != nil {
		return nil, err
	}
	logger.Info("heightmap loaded",
		zap.String("path", cfg.Data.Heightmap),
		zap.Int("width", raster.Grid.Width),
		zap.Int("height", raster.Grid.Height),
	)

	// The compute backend needs a 4.3 context; rendering alone gets 4.1.
	glMajor, glMinor := 4, 1
	if kind == backend.DeviceParallel {
		glMajor, glMinor = 4, 3
	}

	win, err := window.New(window.Config{
		Title:      "terramesh",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		GLMajor:    glMajor,
		GLMinor:    glMinor,
	})
	if err != nil {
		if kind == backend.DeviceParallel {
			return nil, fmt.Errorf("%w: no OpenGL 4.3 context: %v", backend.ErrUnavailable, err)
		}
		return nil, err
	}

	rend, err := renderer.New(win.GetSize())
	if err != nil {
		win.Close()
		return nil, err
	}

	terrain, err := scene.NewTerrainRenderer()
	if err != nil {
		win.Close()
		return nil, err
	}

	v := &Viewer{
		cfg:      cfg,
		win:      win,
		renderer: rend,
		terrain:  terrain,
		cam:      camera.New(),
		raster:   raster,
		tess:     cfg.Terrain.TessellationFactor,
	}

	if err := v.selectBackend(kind); err != nil {
		v.Close()
		return nil, err
	}
	if err := v.rebuild(); err != nil {
		v.Close()
		return nil, err
	}

	return v, nil
}

// selectBackend switches builders. Failure keeps the current builder; there
// is never a silent downgrade to another backend.
func (v *Viewer) selectBackend(kind backend.Kind) error {
	opts := backend.Options{Workers: v.cfg.Terrain.Workers}

	if kind == backend.DeviceParallel {
		if v.device == nil {
			dev, err := backend.NewDevice()
			if err != nil {
				return err
			}
			v.device = dev
		}
		opts.Device = v.device
	}

	builder, err := backend.Select(kind, opts)
	if err != nil {
		return err
	}

	v.kind = kind
	v.builder = builder
	logger.Info("backend selected", zap.Stringer("kind", kind))
	return nil
}

// rebuild regenerates the whole mesh from the current settings.
func (v *Viewer) rebuild() error {
	buildCfg := mesh.Config{
		TessellationFactor: v.tess,
		VerticalScale:      v.cfg.Terrain.VerticalScale,
	}

	start := time.Now()
	res, err := v.builder.Build(v.raster.Grid, buildCfg)
	if err != nil {
		return err
	}

	// Old device buffers are abandoned, not patched.
	if v.deviceMesh != nil {
		v.deviceMesh.Release()
		v.deviceMesh = nil
	}

	var count int
	if res.Device != nil {
		if err := res.Device.Sync(); err != nil {
			res.Device.Release()
			return err
		}
		v.terrain.SetDeviceMesh(res.Device)
		v.deviceMesh = res.Device
		count = res.Device.VertexCount
	} else {
		v.terrain.SetMesh(res.Mesh)
		count = res.Mesh.VertexCount
	}

	logger.Info("mesh rebuilt",
		zap.Stringer("backend", v.kind),
		zap.Int("tessellation", v.tess),
		zap.Int("vertices", count),
		zap.Duration("elapsed", time.Since(start)),
	)
	v.win.SetTitle(windowTitle(v.kind, v.tess, count))
	return nil
}

func windowTitle(kind backend.Kind, tess, vertices int) string {
	return fmt.Sprintf("terramesh - %s, %dx tessellation, %d vertices", kind, tess, vertices)
}

// Run drives the event and render loop until quit.
func (v *Viewer) Run() error {
	lightDir := math.Vec3{X: -0.4, Y: -1, Z: -0.3}.Normalize()
	// Elevation axis (mesh z) up.
	model := math.RotateX(float32(-gomath.Pi / 2))

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false

			case *sdl.WindowEvent:
				if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
					v.renderer.Resize(int(e.Data1), int(e.Data2))
				}

			case *sdl.MouseMotionEvent:
				if e.State&sdl.ButtonLMask() != 0 {
					v.cam.HandleDrag(float32(e.XRel), float32(e.YRel))
				}

			case *sdl.MouseWheelEvent:
				v.cam.HandleZoom(float32(e.Y))

			case *sdl.KeyboardEvent:
				if e.Type == sdl.KEYDOWN {
					if !v.handleKey(e.Keysym.Sym) {
						running = false
					}
				}
			}
		}

		v.renderer.Begin()

		proj := math.Perspective(float32(gomath.Pi/4), v.renderer.Aspect(), 0.01, 100)
		viewProj := proj.Mul(v.cam.ViewMatrix())
		v.terrain.Render(viewProj, model, lightDir, 0.35)

		v.win.SwapBuffers()
	}

	return nil
}

// handleKey processes a key press; returns false to quit.
func (v *Viewer) handleKey(key sdl.Keycode) bool {
	switch key {
	case sdl.K_ESCAPE, sdl.K_q:
		return false

	case sdl.K_PLUS, sdl.K_EQUALS, sdl.K_KP_PLUS:
		v.tess++
		v.rebuildOrReport()

	case sdl.K_MINUS, sdl.K_KP_MINUS:
		if v.tess > 1 {
			v.tess--
			v.rebuildOrReport()
		}

	case sdl.K_1:
		v.switchBackend(backend.Portable)
	case sdl.K_2:
		v.switchBackend(backend.Accelerated)
	case sdl.K_3:
		v.switchBackend(backend.DeviceParallel)
	}
	return true
}

func (v *Viewer) switchBackend(kind backend.Kind) {
	if kind == v.kind {
		return
	}
	if err := v.selectBackend(kind); err != nil {
		if errors.Is(err, backend.ErrUnavailable) {
			logger.Warn("backend unavailable", zap.Stringer("kind", kind), zap.Error(err))
		} else {
			logger.Error("backend selection failed", zap.Stringer("kind", kind), zap.Error(err))
		}
		return
	}
	v.rebuildOrReport()
}

func (v *Viewer) rebuildOrReport() {
	if err := v.rebuild(); err != nil {
		// A failed build is reported once; the previous mesh stays on
		// screen and the user decides what to change.
		logger.Error("mesh rebuild failed", zap.Error(err))
	}
}

// Close releases all resources.
func (v *Viewer) Close() {
	if v.deviceMesh != nil {
		v.deviceMesh.Release()
		v.deviceMesh = nil
	}
	if v.device != nil {
		v.device.Destroy()
		v.device = nil
	}
	if v.terrain != nil {
		v.terrain.Destroy()
	}
	if v.win != nil {
		v.win.Close()
	}
}
