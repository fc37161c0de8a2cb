// Package rhi defines the render hardware interface: a capability set the
// engine depends on instead of a concrete graphics API (spec §4.5, §9
// "polymorphism over render backends"). internal/rhi/glbackend and
// internal/rhi/vkbackend each implement Device; internal/rendergraph only
// ever holds a Device value.
//
// Grounded on the teacher's internal/graphics/renderer.Renderable lifecycle
// shape (Init/Render/Dispose/SetViewport) and its direct gl.* call sites
// across internal/graphics/renderables/*, generalized from "a renderable
// owns its own GL calls" into "a renderable calls typed Device operations",
// since the teacher has exactly one backend and never abstracts over it.
package rhi

import "fmt"

// Handle is an opaque resource identifier. The zero Handle is always
// invalid.
type Handle uint32

const InvalidHandle Handle = 0

// ErrorKind classifies why a fallible RHI call failed, so callers can
// decide whether to retry, log, or treat it as fatal (spec §7's taxonomy
// categories 1-2 map directly onto this).
type ErrorKind int

const (
	ErrOutOfMemory ErrorKind = iota
	ErrInvalidParams
	ErrDeviceLost
	ErrCompileFailed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrOutOfMemory:
		return "out of device memory"
	case ErrInvalidParams:
		return "invalid parameters"
	case ErrDeviceLost:
		return "device lost"
	case ErrCompileFailed:
		return "shader compile/link failed"
	default:
		return "unknown rhi error"
	}
}

// Error is the typed failure every fallible Device call returns instead of
// panicking (spec §4.5 "Failure").
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rhi: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("rhi: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// BufferUsage is the binding point a buffer is created for.
type BufferUsage int

const (
	BufferVertex BufferUsage = iota
	BufferIndex
	BufferUniform
)

// TextureFormat enumerates the pixel formats create_2d/create_render_target
// accept.
type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatRGBA16F
	FormatDepth32F
)

// Topology selects the primitive assembly mode for Draw.
type Topology int

const (
	TopologyTriangles Topology = iota
	TopologyLines
)

// GlobalUniforms is the per-frame uniform block every main-pass shader
// reads (spec §4.5 "update_global").
type GlobalUniforms struct {
	ViewProj    [16]float32
	CamPos      [3]float32
	SunDir      [3]float32
	FogColor    [3]float32
	FogDensity  float32
	CloudParams [4]float32
}

// ShadowUniforms is the per-cascade uniform block (spec §4.5
// "update_shadow").
type ShadowUniforms struct {
	LightSpace    [4][16]float32
	SplitDistance [4]float32
	TexelSize     [4]float32
	CascadeCount  int
}

// PipelineDesc describes a shader program to create: source for each
// stage, keyed by a name the backend resolves to its own shader language.
type PipelineDesc struct {
	Name             string
	VertexSource     string
	FragmentSource   string
}

// Device is the capability set of spec §4.5's operation table. Every
// method that can fail returns *Error; resource creation additionally
// returns InvalidHandle on failure, so a caller that ignores the error can
// still detect failure by checking the handle.
type Device interface {
	// Lifecycle
	Init(windowWidth, windowHeight int) *Error
	Deinit()
	WaitIdle()
	SetVsync(enabled bool)

	// Buffers
	CreateBuffer(size int, usage BufferUsage) (Handle, *Error)
	UploadBuffer(h Handle, data []byte) *Error
	DestroyBuffer(h Handle)

	// Textures
	CreateTexture2D(w, h int, format TextureFormat, mipLevels int) (Handle, *Error)
	UpdateTextureRegion(h Handle, x, y, w, height int, data []byte) *Error
	CreateDepthTexture(w, h int) (Handle, *Error)
	CreateRenderTarget(w, h int, format TextureFormat) (Handle, *Error)
	DestroyTexture(h Handle)

	// Shaders
	CreateShader(desc PipelineDesc) (Handle, *Error)
	BindShader(h Handle)
	DestroyShader(h Handle)

	// Frame
	BeginFrame()
	EndFrame()
	SetViewport(x, y, w, h int)
	SetClearColor(r, g, b, a float32)

	// Passes
	BeginShadowPass(cascadeIndex int)
	EndShadowPass()
	BeginMainPass()
	EndMainPass()

	// Uniforms
	UpdateGlobalUniforms(u GlobalUniforms)
	UpdateShadowUniforms(u ShadowUniforms)
	SetModelMatrix(m [16]float32)

	// Draw
	Draw(vertexBuffer Handle, vertexCount int, topology Topology)
	DrawIndexed(vertexBuffer, indexBuffer Handle, indexCount int, topology Topology)
	DrawSky()
	DrawClouds()
	DrawUIQuad(textured bool, texture Handle)

	// Debug
	DrawDebugShadowMap(cascadeIndex int, texture Handle)
}
