package backend

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.3-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/terramesh/internal/engine/backend/shaders"
	"github.com/Faultbox/terramesh/internal/engine/mesh"
	"github.com/Faultbox/terramesh/internal/engine/shader"
	"github.com/Faultbox/terramesh/internal/logger"
)

// maxColorStops is the compute shader's uniform array capacity.
const maxColorStops = 8

// syncTimeout bounds how long DeviceMesh.Sync waits for a dispatch.
const syncTimeout = 5 * time.Second

// Device owns the terrain compute program. All methods must run on the
// thread holding the GL context current.
type Device struct {
	program uint32

	locSrcWidth      int32
	locSrcHeight     int32
	locGridWidth     int32
	locGridHeight    int32
	locVerticalScale int32
	locStopCount     int32
	locStopPos       int32
	locStopColor     int32
}

// NewDevice compiles the terrain compute program against the current GL
// context. It fails fast with ErrUnavailable when no context is current or
// the context predates compute shaders (OpenGL 4.3).
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: OpenGL init: %v", ErrUnavailable, err)
	}

	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	if major < 4 || (major == 4 && minor < 3) {
		return nil, fmt.Errorf("%w: compute shaders need OpenGL 4.3, context is %d.%d", ErrUnavailable, major, minor)
	}

	program, err := compileCompute(shaders.TerrainCompute)
	if err != nil {
		return nil, fmt.Errorf("%w: terrain compute shader: %v", ErrUnavailable, err)
	}

	d := &Device{program: program}
	d.locSrcWidth = uniform(program, "uSrcWidth")
	d.locSrcHeight = uniform(program, "uSrcHeight")
	d.locGridWidth = uniform(program, "uGridWidth")
	d.locGridHeight = uniform(program, "uGridHeight")
	d.locVerticalScale = uniform(program, "uVerticalScale")
	d.locStopCount = uniform(program, "uStopCount")
	d.locStopPos = uniform(program, "uStopPos")
	d.locStopColor = uniform(program, "uStopColor")

	logger.Info("compute device initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	return d, nil
}

// Destroy releases the compute program.
func (d *Device) Destroy() {
	if d.program != 0 {
		gl.DeleteProgram(d.program)
		d.program = 0
	}
}

// DeviceMesh holds GPU-resident mesh buffers with the same logical shape as
// mesh.Mesh: three buffer objects of three floats per vertex, never copied
// back to host memory. The render stage binds them directly as vertex
// buffers after Sync.
type DeviceMesh struct {
	Positions   uint32
	Colors      uint32
	Normals     uint32
	VertexCount int

	input uint32
	fence uintptr
}

// Sync blocks until the producing dispatch has completed on the device.
// Dispatch errors that surfaced asynchronously are reported here.
func (m *DeviceMesh) Sync() error {
	if m.fence == 0 {
		return nil
	}
	defer func() {
		gl.DeleteSync(m.fence)
		m.fence = 0
	}()

	status := gl.ClientWaitSync(m.fence, gl.SYNC_FLUSH_COMMANDS_BIT, uint64(syncTimeout.Nanoseconds()))
	switch status {
	case gl.ALREADY_SIGNALED, gl.CONDITION_SATISFIED:
		return nil
	case gl.TIMEOUT_EXPIRED:
		return fmt.Errorf("device mesh build timed out after %v", syncTimeout)
	}
	return fmt.Errorf("device mesh build failed: wait status 0x%x", status)
}

// Release deletes all device buffers. The mesh must not be used afterwards.
func (m *DeviceMesh) Release() {
	bufs := [4]uint32{m.Positions, m.Colors, m.Normals, m.input}
	gl.DeleteBuffers(4, &bufs[0])
	m.Positions, m.Colors, m.Normals, m.input = 0, 0, 0, 0
	if m.fence != 0 {
		gl.DeleteSync(m.fence)
		m.fence = 0
	}
}

// deviceBuilder dispatches mesh builds onto the GPU.
type deviceBuilder struct {
	dev *Device
}

func (b *deviceBuilder) Kind() Kind { return DeviceParallel }

func (b *deviceBuilder) Build(grid *mesh.ElevationGrid, cfg mesh.Config) (*Result, error) {
	dm, err := b.dev.Dispatch(grid, cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Device: dm}, nil
}

// Dispatch submits one mesh build to the device queue and returns without
// waiting for completion. Call DeviceMesh.Sync before sampling the buffers
// in a dependent render pass; queue ordering also suffices within one GL
// command stream.
func (d *Device) Dispatch(grid *mesh.ElevationGrid, cfg mesh.Config) (*DeviceMesh, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stops := cfg.ColorRamp().Stops
	if len(stops) > maxColorStops {
		return nil, fmt.Errorf("color ramp has %d stops, device path supports at most %d", len(stops), maxColorStops)
	}

	gw := grid.Width * cfg.TessellationFactor
	gh := grid.Height * cfg.TessellationFactor
	count := 6 * (gw - 1) * (gh - 1)

	gl.UseProgram(d.program)

	var input uint32
	gl.GenBuffers(1, &input)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, input)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, len(grid.Samples)*4, gl.Ptr(grid.Samples), gl.STATIC_DRAW)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, input)

	var outs [3]uint32
	gl.GenBuffers(3, &outs[0])
	for i, buf := range outs {
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf)
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, count*3*4, nil, gl.STATIC_DRAW)
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, uint32(i+1), buf)
	}

	gl.Uniform1i(d.locSrcWidth, int32(grid.Width))
	gl.Uniform1i(d.locSrcHeight, int32(grid.Height))
	gl.Uniform1i(d.locGridWidth, int32(gw))
	gl.Uniform1i(d.locGridHeight, int32(gh))
	gl.Uniform1f(d.locVerticalScale, cfg.VerticalScale)

	var stopPos [maxColorStops]float32
	var stopColor [maxColorStops * 3]float32
	for i, s := range stops {
		stopPos[i] = s.Pos
		copy(stopColor[i*3:], s.Color[:])
	}
	gl.Uniform1i(d.locStopCount, int32(len(stops)))
	gl.Uniform1fv(d.locStopPos, int32(len(stops)), &stopPos[0])
	gl.Uniform3fv(d.locStopColor, int32(len(stops)), &stopColor[0])

	// 8x8 invocations per work group, one invocation per cell.
	groupsX := (gw - 1 + 7) / 8
	groupsY := (gh - 1 + 7) / 8
	gl.DispatchCompute(uint32(groupsX), uint32(groupsY), 1)
	gl.MemoryBarrier(gl.VERTEX_ATTRIB_ARRAY_BARRIER_BIT | gl.SHADER_STORAGE_BARRIER_BIT)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		bufs := [4]uint32{outs[0], outs[1], outs[2], input}
		gl.DeleteBuffers(4, &bufs[0])
		return nil, fmt.Errorf("device mesh dispatch: GL error 0x%x", glErr)
	}

	return &DeviceMesh{
		Positions:   outs[0],
		Colors:      outs[1],
		Normals:     outs[2],
		VertexCount: count,
		input:       input,
		fence:       gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0),
	}, nil
}

// compileCompute compiles and links a single compute shader.
func compileCompute(source string) (uint32, error) {
	sh := gl.CreateShader(gl.COMPUTE_SHADER)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csource, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		msg := shader.InfoLog(logLen, func(buf *uint8) {
			gl.GetShaderInfoLog(sh, logLen, nil, buf)
		})
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("compile: %s", msg)
	}
	defer gl.DeleteShader(sh)

	program := gl.CreateProgram()
	gl.AttachShader(program, sh)
	gl.LinkProgram(program)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		msg := shader.InfoLog(logLen, func(buf *uint8) {
			gl.GetProgramInfoLog(program, logLen, nil, buf)
		})
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", msg)
	}

	return program, nil
}

func uniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
