// Package scene renders generated terrain meshes.
package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/terramesh/internal/engine/backend"
	"github.com/Faultbox/terramesh/internal/engine/mesh"
	"github.com/Faultbox/terramesh/internal/engine/scene/shaders"
	"github.com/Faultbox/terramesh/internal/engine/shader"
	"github.com/Faultbox/terramesh/pkg/math"
)

// TerrainRenderer draws a non-indexed terrain triangle list from three
// parallel vertex buffers (position, color, normal).
type TerrainRenderer struct {
	program uint32

	locViewProj int32
	locModel    int32
	locLightDir int32
	locAmbient  int32

	vao         uint32
	vbos        [3]uint32
	vertexCount int32

	// ownsBuffers is false when the buffers belong to a DeviceMesh; the
	// compute backend owns their lifetime, not the renderer.
	ownsBuffers bool
}

// NewTerrainRenderer compiles the terrain shader program.
func NewTerrainRenderer() (*TerrainRenderer, error) {
	program, err := shader.CompileProgram(shaders.TerrainVertexShader, shaders.TerrainFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}

	tr := &TerrainRenderer{program: program}
	tr.locViewProj = shader.GetUniform(program, "uViewProj")
	tr.locModel = shader.GetUniform(program, "uModel")
	tr.locLightDir = shader.GetUniform(program, "uLightDir")
	tr.locAmbient = shader.GetUniform(program, "uAmbient")
	return tr, nil
}

// SetMesh uploads a host-resident mesh, replacing any previous buffers.
func (tr *TerrainRenderer) SetMesh(m *mesh.Mesh) {
	tr.clearBuffers()

	gl.GenVertexArrays(1, &tr.vao)
	gl.BindVertexArray(tr.vao)

	gl.GenBuffers(3, &tr.vbos[0])
	for i, data := range [][]float32{m.Positions, m.Colors, m.Normals} {
		gl.BindBuffer(gl.ARRAY_BUFFER, tr.vbos[i])
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
		gl.VertexAttribPointerWithOffset(uint32(i), 3, gl.FLOAT, false, 0, 0)
		gl.EnableVertexAttribArray(uint32(i))
	}

	gl.BindVertexArray(0)
	tr.vertexCount = int32(m.VertexCount)
	tr.ownsBuffers = true
}

// SetDeviceMesh binds device-resident buffers produced by the compute
// backend. The caller must Sync the device mesh first; the buffers stay
// owned by the DeviceMesh.
func (tr *TerrainRenderer) SetDeviceMesh(dm *backend.DeviceMesh) {
	tr.clearBuffers()

	gl.GenVertexArrays(1, &tr.vao)
	gl.BindVertexArray(tr.vao)

	for i, buf := range [3]uint32{dm.Positions, dm.Colors, dm.Normals} {
		gl.BindBuffer(gl.ARRAY_BUFFER, buf)
		gl.VertexAttribPointerWithOffset(uint32(i), 3, gl.FLOAT, false, 0, 0)
		gl.EnableVertexAttribArray(uint32(i))
	}

	gl.BindVertexArray(0)
	tr.vertexCount = int32(dm.VertexCount)
	tr.ownsBuffers = false
}

// Render draws the terrain with simple directional lighting.
func (tr *TerrainRenderer) Render(viewProj, model math.Mat4, lightDir math.Vec3, ambient float32) {
	if tr.vao == 0 || tr.vertexCount == 0 {
		return
	}

	gl.UseProgram(tr.program)
	gl.UniformMatrix4fv(tr.locViewProj, 1, false, viewProj.Ptr())
	gl.UniformMatrix4fv(tr.locModel, 1, false, model.Ptr())
	gl.Uniform3f(tr.locLightDir, lightDir.X, lightDir.Y, lightDir.Z)
	gl.Uniform3f(tr.locAmbient, ambient, ambient, ambient)

	gl.BindVertexArray(tr.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, tr.vertexCount)
	gl.BindVertexArray(0)
}

func (tr *TerrainRenderer) clearBuffers() {
	if tr.vao != 0 {
		gl.DeleteVertexArrays(1, &tr.vao)
		tr.vao = 0
	}
	if tr.ownsBuffers && tr.vbos[0] != 0 {
		gl.DeleteBuffers(3, &tr.vbos[0])
	}
	tr.vbos = [3]uint32{}
	tr.vertexCount = 0
}

// Destroy releases all resources.
func (tr *TerrainRenderer) Destroy() {
	tr.clearBuffers()
	if tr.program != 0 {
		gl.DeleteProgram(tr.program)
		tr.program = 0
	}
}
