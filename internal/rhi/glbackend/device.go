// Package glbackend implements rhi.Device over desktop OpenGL 4.1 core,
// using the same gl.* call patterns as the teacher's internal/graphics
// package (shader.go's compileProgram/compileShader, texture_util.go's
// TexImage2D setup), generalized from one fixed shader/texture pair into
// handle-indexed tables so multiple shaders/buffers/textures can be live
// at once, the way rhi.Device's operation table requires.
package glbackend

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"zigcraft/internal/rhi"
)

type bufferRec struct {
	id    uint32
	usage rhi.BufferUsage
}

type textureRec struct {
	id uint32
}

type shaderRec struct {
	program uint32
}

// Device is a single-threaded rhi.Device backed by an already-current GL
// context (the caller owns window/context creation, same division of
// responsibility as the teacher's main.go/setup.go owning the GLFW window
// while internal/graphics only issues gl.* calls).
type Device struct {
	buffers  map[rhi.Handle]bufferRec
	textures map[rhi.Handle]textureRec
	shaders  map[rhi.Handle]shaderRec
	next     uint32

	activeShader rhi.Handle
	clearR, clearG, clearB, clearA float32
}

// New returns a Device with no GL resources yet created; call Init once a
// GL context is current on this thread.
func New() *Device {
	return &Device{
		buffers:  make(map[rhi.Handle]bufferRec),
		textures: make(map[rhi.Handle]textureRec),
		shaders:  make(map[rhi.Handle]shaderRec),
		next:     1,
	}
}

func (d *Device) allocHandle() rhi.Handle {
	h := rhi.Handle(d.next)
	d.next++
	return h
}

func (d *Device) Init(windowWidth, windowHeight int) *rhi.Error {
	if err := gl.Init(); err != nil {
		return &rhi.Error{Kind: rhi.ErrDeviceLost, Op: "Init", Err: err}
	}
	gl.Viewport(0, 0, int32(windowWidth), int32(windowHeight))
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	return nil
}

func (d *Device) Deinit() {
	for h := range d.buffers {
		d.DestroyBuffer(h)
	}
	for h := range d.textures {
		d.DestroyTexture(h)
	}
	for h := range d.shaders {
		d.DestroyShader(h)
	}
}

// WaitIdle flushes and finishes the GL command stream, the closest GL
// analogue to a Vulkan device-idle barrier: every previously submitted
// command has retired by the time this returns.
func (d *Device) WaitIdle() {
	gl.Finish()
}

func (d *Device) SetVsync(enabled bool) {
	// Actual swap-interval control lives with whatever owns the GLFW
	// window (cmd/zigcraft); the Device only records backend-agnostic
	// render state, so this is a no-op placeholder for symmetry with the
	// Vulkan backend's present-mode switch.
	_ = enabled
}

func glBufferTarget(usage rhi.BufferUsage) uint32 {
	switch usage {
	case rhi.BufferIndex:
		return gl.ELEMENT_ARRAY_BUFFER
	case rhi.BufferUniform:
		return gl.UNIFORM_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func (d *Device) CreateBuffer(size int, usage rhi.BufferUsage) (rhi.Handle, *rhi.Error) {
	if size <= 0 {
		return rhi.InvalidHandle, &rhi.Error{Kind: rhi.ErrInvalidParams, Op: "CreateBuffer"}
	}
	var id uint32
	gl.GenBuffers(1, &id)
	target := glBufferTarget(usage)
	gl.BindBuffer(target, id)
	gl.BufferData(target, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(target, 0)

	h := d.allocHandle()
	d.buffers[h] = bufferRec{id: id, usage: usage}
	return h, nil
}

func (d *Device) UploadBuffer(h rhi.Handle, data []byte) *rhi.Error {
	rec, ok := d.buffers[h]
	if !ok {
		return &rhi.Error{Kind: rhi.ErrInvalidParams, Op: "UploadBuffer"}
	}
	target := glBufferTarget(rec.usage)
	gl.BindBuffer(target, rec.id)
	gl.BufferSubData(target, 0, len(data), gl.Ptr(data))
	gl.BindBuffer(target, 0)
	return nil
}

func (d *Device) DestroyBuffer(h rhi.Handle) {
	rec, ok := d.buffers[h]
	if !ok {
		return
	}
	id := rec.id
	gl.DeleteBuffers(1, &id)
	delete(d.buffers, h)
}

func glTextureFormat(f rhi.TextureFormat) (internalFmt int32, format, pixType uint32) {
	switch f {
	case rhi.FormatRGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.FLOAT
	case rhi.FormatDepth32F:
		return gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT
	default:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	}
}

func (d *Device) CreateTexture2D(w, h int, format rhi.TextureFormat, mipLevels int) (rhi.Handle, *rhi.Error) {
	if w <= 0 || h <= 0 {
		return rhi.InvalidHandle, &rhi.Error{Kind: rhi.ErrInvalidParams, Op: "CreateTexture2D"}
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	internalFmt, glFormat, glType := glTextureFormat(format)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFmt, int32(w), int32(h), 0, glFormat, glType, nil)
	if mipLevels > 1 {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	handle := d.allocHandle()
	d.textures[handle] = textureRec{id: id}
	return handle, nil
}

func (d *Device) UpdateTextureRegion(h rhi.Handle, x, y, w, height int, data []byte) *rhi.Error {
	rec, ok := d.textures[h]
	if !ok {
		return &rhi.Error{Kind: rhi.ErrInvalidParams, Op: "UpdateTextureRegion"}
	}
	gl.BindTexture(gl.TEXTURE_2D, rec.id)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(w), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

func (d *Device) CreateDepthTexture(w, h int) (rhi.Handle, *rhi.Error) {
	return d.CreateTexture2D(w, h, rhi.FormatDepth32F, 1)
}

func (d *Device) CreateRenderTarget(w, h int, format rhi.TextureFormat) (rhi.Handle, *rhi.Error) {
	return d.CreateTexture2D(w, h, format, 1)
}

func (d *Device) DestroyTexture(h rhi.Handle) {
	rec, ok := d.textures[h]
	if !ok {
		return
	}
	id := rec.id
	gl.DeleteTextures(1, &id)
	delete(d.textures, h)
}

func (d *Device) CreateShader(desc rhi.PipelineDesc) (rhi.Handle, *rhi.Error) {
	program, err := compileProgram(desc.VertexSource, desc.FragmentSource)
	if err != nil {
		return rhi.InvalidHandle, &rhi.Error{Kind: rhi.ErrCompileFailed, Op: "CreateShader(" + desc.Name + ")", Err: err}
	}
	h := d.allocHandle()
	d.shaders[h] = shaderRec{program: program}
	return h, nil
}

// BindShader makes h the active program; subsequent UpdateGlobalUniforms/
// UpdateShadowUniforms/SetModelMatrix calls write to it until the next
// BindShader.
func (d *Device) BindShader(h rhi.Handle) {
	rec, ok := d.shaders[h]
	if !ok {
		return
	}
	d.activeShader = h
	gl.UseProgram(rec.program)
}

func (d *Device) DestroyShader(h rhi.Handle) {
	rec, ok := d.shaders[h]
	if !ok {
		return
	}
	gl.DeleteProgram(rec.program)
	delete(d.shaders, h)
}

func (d *Device) BeginFrame() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) EndFrame() {}

func (d *Device) SetViewport(x, y, w, h int) {
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
}

func (d *Device) SetClearColor(r, g, b, a float32) {
	d.clearR, d.clearG, d.clearB, d.clearA = r, g, b, a
	gl.ClearColor(r, g, b, a)
}

func (d *Device) BeginShadowPass(cascadeIndex int) { _ = cascadeIndex }
func (d *Device) EndShadowPass()                   {}
func (d *Device) BeginMainPass()                   {}
func (d *Device) EndMainPass()                     {}

func (d *Device) UpdateGlobalUniforms(u rhi.GlobalUniforms) {
	if d.activeShader == rhi.InvalidHandle {
		return
	}
	rec := d.shaders[d.activeShader]
	gl.UseProgram(rec.program)
	setMat4(rec.program, "viewProj", &u.ViewProj)
	setVec3(rec.program, "camPos", u.CamPos)
	setVec3(rec.program, "sunDir", u.SunDir)
}

func (d *Device) UpdateShadowUniforms(u rhi.ShadowUniforms) {
	if d.activeShader == rhi.InvalidHandle {
		return
	}
	rec := d.shaders[d.activeShader]
	gl.UseProgram(rec.program)
	for i := 0; i < u.CascadeCount && i < 4; i++ {
		setMat4(rec.program, fmt.Sprintf("lightSpace[%d]", i), &u.LightSpace[i])
	}
}

func (d *Device) SetModelMatrix(m [16]float32) {
	if d.activeShader == rhi.InvalidHandle {
		return
	}
	rec := d.shaders[d.activeShader]
	gl.UseProgram(rec.program)
	setMat4(rec.program, "model", &m)
}

func glTopology(t rhi.Topology) uint32 {
	if t == rhi.TopologyLines {
		return gl.LINES
	}
	return gl.TRIANGLES
}

func (d *Device) Draw(vertexBuffer rhi.Handle, vertexCount int, topology rhi.Topology) {
	rec, ok := d.buffers[vertexBuffer]
	if !ok {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, rec.id)
	gl.DrawArrays(glTopology(topology), 0, int32(vertexCount))
}

func (d *Device) DrawIndexed(vertexBuffer, indexBuffer rhi.Handle, indexCount int, topology rhi.Topology) {
	vb, ok := d.buffers[vertexBuffer]
	if !ok {
		return
	}
	ib, ok := d.buffers[indexBuffer]
	if !ok {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.id)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.id)
	gl.DrawElements(glTopology(topology), int32(indexCount), gl.UNSIGNED_INT, nil)
}

// DrawSky, DrawClouds, DrawUIQuad, DrawDebugShadowMap all draw a full-screen
// or billboard quad with whichever shader/texture internal/rendergraph
// bound as the active shader before calling them; the Device itself holds
// no opinion on their geometry, matching the teacher's renderables owning
// their own VAOs while gl.DrawArrays is the shared primitive.
func (d *Device) DrawSky()     { gl.DrawArrays(gl.TRIANGLES, 0, 3) }
func (d *Device) DrawClouds()  { gl.DrawArrays(gl.TRIANGLES, 0, 6) }

func (d *Device) DrawUIQuad(textured bool, texture rhi.Handle) {
	if textured {
		if rec, ok := d.textures[texture]; ok {
			gl.BindTexture(gl.TEXTURE_2D, rec.id)
		}
	}
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
}

func (d *Device) DrawDebugShadowMap(cascadeIndex int, texture rhi.Handle) {
	_ = cascadeIndex
	d.DrawUIQuad(true, texture)
}

func setMat4(program uint32, name string, m *[16]float32) {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		return
	}
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func setVec3(program uint32, name string, v [3]float32) {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		return
	}
	gl.Uniform3f(loc, v[0], v[1], v[2])
}

// compileProgram and compileShader are ported near-verbatim from the
// teacher's internal/graphics/shader.go, taking source strings directly
// instead of file paths since rhi.PipelineDesc carries source inline.
func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("link program: %s", log)
	}
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("compile shader: %s", log)
	}
	return shader, nil
}
