// Package rendergraph orders the fixed per-frame pass list of spec §4.6
// (shadow cascades, G-buffer, SSAO, sky, opaque world, clouds,
// entities/hand, TAA, bloom, tonemap, FXAA) over an rhi.Device, and owns
// the atmosphere curves and cascade-matrix computation those passes read.
//
// Grounded on the teacher's internal/graphics/renderer.Renderer: its
// Render method's fixed clear→compute-view-proj→iterate-renderables shape
// is generalized here from "a flat, unordered list of Renderables" into
// "a fixed ordered list of Pass values reading/writing declared RHI
// resources", since the teacher has no shadow/SSAO/bloom/TAA passes or any
// pass ordering concept at all — those are new, grounded on spec §4.6's
// pass descriptions directly.
package rendergraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"zigcraft/internal/rhi"
)

// Toggles mirrors the ZIGCRAFT_DISABLE_* env vars and settings.json's
// quality knobs: each disabled pass is skipped entirely for the frame.
type Toggles struct {
	DisableShadows bool
	DisableGPass   bool
	DisableSSAO    bool
	DisableClouds  bool
}

// Atmosphere holds the day-night-cycle-derived lighting parameters the
// sky, shadow, and fog passes all read from one place, per spec's Open
// Question decision that cloud shadows and direct sun shading share one
// atmosphere state instead of two independent lighting models.
type Atmosphere struct {
	TimeOfDay float64 // 0..1, 0 = midnight
	SunDir    mgl32.Vec3
	MoonDir   mgl32.Vec3
	SunIntensity float32
	HorizonColor mgl32.Vec3
	SkyColor     mgl32.Vec3
}

const dayLengthSeconds = 1200.0 // 20 real minutes per in-game day

// Advance steps the time of day forward by dt seconds and recomputes the
// derived sun/moon directions and colors.
func (a *Atmosphere) Advance(dt float64) {
	a.TimeOfDay += dt / dayLengthSeconds
	for a.TimeOfDay >= 1 {
		a.TimeOfDay -= 1
	}
	angle := a.TimeOfDay*2*math.Pi - math.Pi/2
	a.SunDir = mgl32.Vec3{float32(math.Cos(angle)), float32(math.Sin(angle)), 0}.Normalize()
	a.MoonDir = a.SunDir.Mul(-1)

	height := a.SunDir.Y()
	a.SunIntensity = float32(clamp01(float64(height)*2 + 0.2))

	day := mgl32.Vec3{0.53, 0.81, 0.92}
	night := mgl32.Vec3{0.02, 0.03, 0.08}
	horizonDay := mgl32.Vec3{0.9, 0.7, 0.5}
	horizonNight := mgl32.Vec3{0.05, 0.05, 0.1}
	t := clamp01(float64(height)*2 + 0.5)
	a.SkyColor = lerpVec3(night, day, t)
	a.HorizonColor = lerpVec3(horizonNight, horizonDay, t)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerpVec3(a, b mgl32.Vec3, t float64) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(float32(t)))
}

// Cascade is one shadow cascade's computed light-space data.
type Cascade struct {
	LightSpace  mgl32.Mat4
	SplitFar    float32
	TexelSize   float32
}

const CascadeCount = 3
const cascadeLambda = 0.6

// ComputeCascades derives the 3 shadow cascades' split distances
// (log/linear blend, λ≈0.6) and texel-snapped light-space matrices for the
// given camera frustum and sun direction (spec §4.6 step 1).
func ComputeCascades(view, proj mgl32.Mat4, nearZ, farZ float32, sunDir mgl32.Vec3, shadowMapSize int) [CascadeCount]Cascade {
	var cascades [CascadeCount]Cascade
	splits := cascadeSplits(nearZ, farZ, CascadeCount, cascadeLambda)

	invViewProj := proj.Mul4(view).Inv()
	prevSplit := nearZ
	for i := 0; i < CascadeCount; i++ {
		split := splits[i]
		corners := frustumCornersWorldSpace(invViewProj, prevSplit, split, nearZ, farZ)
		center := frustumCenter(corners)

		lightView := mgl32.LookAtV(center.Sub(sunDir.Mul(farZ)), center, mgl32.Vec3{0, 1, 0})
		minB, maxB := boundsInLightSpace(corners, lightView)

		texelSize := (maxB.X() - minB.X()) / float32(shadowMapSize)
		if texelSize <= 0 {
			texelSize = 0.01
		}
		minB, maxB = snapToTexels(minB, maxB, texelSize)

		lightProj := mgl32.Ortho(minB.X(), maxB.X(), minB.Y(), maxB.Y(), -maxB.Z(), -minB.Z())
		cascades[i] = Cascade{
			LightSpace: lightProj.Mul4(lightView),
			SplitFar:   split,
			TexelSize:  texelSize,
		}
		prevSplit = split
	}
	return cascades
}

// cascadeSplits blends a uniform (linear) split scheme with a logarithmic
// one by λ, per spec §4.6's "logarithmic/linear blend with λ≈0.6".
func cascadeSplits(nearZ, farZ float32, count int, lambda float32) []float32 {
	splits := make([]float32, count)
	for i := 1; i <= count; i++ {
		t := float32(i) / float32(count)
		log := nearZ * float32(math.Pow(float64(farZ/nearZ), float64(t)))
		lin := nearZ + (farZ-nearZ)*t
		splits[i-1] = lambda*log + (1-lambda)*lin
	}
	return splits
}

func frustumCornersWorldSpace(invViewProj mgl32.Mat4, near, far, frustumNear, frustumFar float32) [8]mgl32.Vec3 {
	nZ := 2*(near-frustumNear)/(frustumFar-frustumNear) - 1
	fZ := 2*(far-frustumNear)/(frustumFar-frustumNear) - 1

	var corners [8]mgl32.Vec3
	i := 0
	for _, z := range []float32{nZ, fZ} {
		for _, x := range []float32{-1, 1} {
			for _, y := range []float32{-1, 1} {
				clip := mgl32.Vec4{x, y, z, 1}
				world := invViewProj.Mul4x1(clip)
				corners[i] = mgl32.Vec3{world.X(), world.Y(), world.Z()}.Mul(1 / world.W())
				i++
			}
		}
	}
	return corners
}

func frustumCenter(corners [8]mgl32.Vec3) mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, c := range corners {
		sum = sum.Add(c)
	}
	return sum.Mul(1.0 / float32(len(corners)))
}

func boundsInLightSpace(corners [8]mgl32.Vec3, lightView mgl32.Mat4) (min, max mgl32.Vec3) {
	min = mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max = mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, c := range corners {
		v4 := lightView.Mul4x1(mgl32.Vec4{c.X(), c.Y(), c.Z(), 1})
		v := mgl32.Vec3{v4.X(), v4.Y(), v4.Z()}
		min = componentMin(min, v)
		max = componentMax(max, v)
	}
	return min, max
}

func componentMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{minf(a.X(), b.X()), minf(a.Y(), b.Y()), minf(a.Z(), b.Z())}
}
func componentMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{maxf(a.X(), b.X()), maxf(a.Y(), b.Y()), maxf(a.Z(), b.Z())}
}
func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// snapToTexels quantizes the ortho bounds to whole shadow-map texels so the
// cascade projection does not slide as the camera moves (spec §4.6's
// texel-snap invariant, spec §8's "cascade stability").
func snapToTexels(min, max mgl32.Vec3, texelSize float32) (mgl32.Vec3, mgl32.Vec3) {
	snap := func(v float32) float32 { return float32(math.Floor(float64(v/texelSize))) * texelSize }
	return mgl32.Vec3{snap(min.X()), snap(min.Y()), min.Z()}, mgl32.Vec3{snap(max.X()), snap(max.Y()), max.Z()}
}

// Handles bundles the shared RHI resources every pass reads or writes:
// shaders, the G-buffer/shadow/bloom render targets, etc. Supplied by the
// caller when the Graph is built; cmd/zigcraft passes the zero value, so
// every handle is rhi.InvalidHandle.
type Handles struct {
	TerrainShader rhi.Handle
	SkyShader     rhi.Handle
	CloudShader   rhi.Handle
	UIShader      rhi.Handle

	ShadowMaps  [CascadeCount]rhi.Handle
	GBufferNormal rhi.Handle
	GBufferVelocity rhi.Handle
	SceneColor  rhi.Handle
	DepthBuffer rhi.Handle
}

// FrameInputs is everything one call to Render needs beyond the Device and
// Handles: camera matrices, the atmosphere, and which passes to skip.
type FrameInputs struct {
	View, Proj mgl32.Mat4
	CamPos     mgl32.Vec3
	Atmosphere Atmosphere
	Toggles    Toggles
	Viewport   [2]int
}

// Graph runs the fixed spec §4.6 pass order against a Device each frame.
// It holds no world/mesh state itself; the opaque draw list is passed to
// Render each frame by the caller (internal/session), which already owns
// the World and its uploaded chunk handles.
type Graph struct {
	device  rhi.Device
	handles Handles
}

func New(device rhi.Device, handles Handles) *Graph {
	return &Graph{device: device, handles: handles}
}

// DrawCall is one uploaded mesh ready for the opaque-world pass.
type DrawCall struct {
	VertexBuffer rhi.Handle
	VertexCount  int
	Model        [16]float32
}

// Render executes every enabled pass in spec §4.6's fixed order: shadow
// cascades, G-buffer, SSAO, sky, opaque world, clouds, entities/hand, TAA,
// bloom, tonemap, FXAA. Each pass's writes are visible to the next before
// the next pass's draws issue, since this function issues them
// sequentially against a single Device with no other writer in between
// (spec §4.6 "Ordering guarantees").
func (g *Graph) Render(in FrameInputs, opaque []DrawCall) {
	d := g.device
	d.BeginFrame()
	d.SetViewport(0, 0, in.Viewport[0], in.Viewport[1])

	var cascades [CascadeCount]Cascade
	if !in.Toggles.DisableShadows {
		cascades = ComputeCascades(in.View, in.Proj, 0.1, 200, in.Atmosphere.SunDir, 2048)
		g.renderShadowCascades(cascades, opaque)
	}

	if !in.Toggles.DisableGPass {
		g.renderGBuffer(in, opaque)
	}

	if !in.Toggles.DisableSSAO {
		g.renderSSAO(in)
	}

	g.renderSky(in)
	g.renderOpaqueWorld(in, cascades, opaque)

	if !in.Toggles.DisableClouds {
		g.renderClouds(in)
	}

	g.renderEntitiesAndHand(in)
	g.renderTAA(in)
	g.renderBloom(in)
	g.renderTonemap(in)
	g.renderFXAA(in)

	d.EndFrame()
}

func (g *Graph) renderShadowCascades(cascades [CascadeCount]Cascade, opaque []DrawCall) {
	var shadowUniforms rhi.ShadowUniforms
	shadowUniforms.CascadeCount = CascadeCount
	for i, c := range cascades {
		shadowUniforms.LightSpace[i] = mat4To16(c.LightSpace)
		shadowUniforms.SplitDistance[i] = c.SplitFar
		shadowUniforms.TexelSize[i] = c.TexelSize
	}
	for i := range cascades {
		g.device.BeginShadowPass(i)
		g.device.BindShader(g.handles.TerrainShader)
		g.device.UpdateShadowUniforms(shadowUniforms)
		for _, dc := range opaque {
			g.device.SetModelMatrix(dc.Model)
			g.device.Draw(dc.VertexBuffer, dc.VertexCount, rhi.TopologyTriangles)
		}
		g.device.EndShadowPass()
	}
}

func (g *Graph) renderGBuffer(in FrameInputs, opaque []DrawCall) {
	g.device.BindShader(g.handles.TerrainShader)
	for _, dc := range opaque {
		g.device.SetModelMatrix(dc.Model)
		g.device.Draw(dc.VertexBuffer, dc.VertexCount, rhi.TopologyTriangles)
	}
}

// renderSSAO issues the SSAO pass as one fullscreen DrawUIQuad over the
// G-buffer normal target; it binds no shader of its own and no sample
// kernel or noise texture is set up for it.
func (g *Graph) renderSSAO(in FrameInputs) {
	g.device.DrawUIQuad(true, g.handles.GBufferNormal)
}

func (g *Graph) renderSky(in FrameInputs) {
	g.device.BindShader(g.handles.SkyShader)
	g.device.UpdateGlobalUniforms(rhi.GlobalUniforms{
		ViewProj: mat4To16(in.Proj.Mul4(in.View)),
		CamPos:   vec3To3(in.CamPos),
		SunDir:   vec3To3(in.Atmosphere.SunDir),
		FogColor: vec3To3(in.Atmosphere.HorizonColor),
	})
	g.device.DrawSky()
}

func (g *Graph) renderOpaqueWorld(in FrameInputs, cascades [CascadeCount]Cascade, opaque []DrawCall) {
	g.device.BindShader(g.handles.TerrainShader)
	var shadowUniforms rhi.ShadowUniforms
	shadowUniforms.CascadeCount = CascadeCount
	for i, c := range cascades {
		shadowUniforms.LightSpace[i] = mat4To16(c.LightSpace)
		shadowUniforms.SplitDistance[i] = c.SplitFar
	}
	g.device.UpdateShadowUniforms(shadowUniforms)
	g.device.UpdateGlobalUniforms(rhi.GlobalUniforms{
		ViewProj:   mat4To16(in.Proj.Mul4(in.View)),
		CamPos:     vec3To3(in.CamPos),
		SunDir:     vec3To3(in.Atmosphere.SunDir),
		FogColor:   vec3To3(in.Atmosphere.HorizonColor),
		FogDensity: 0.02,
	})
	for _, dc := range opaque {
		g.device.SetModelMatrix(dc.Model)
		g.device.Draw(dc.VertexBuffer, dc.VertexCount, rhi.TopologyTriangles)
	}
}

func (g *Graph) renderClouds(in FrameInputs) {
	g.device.BindShader(g.handles.CloudShader)
	g.device.DrawClouds()
}

// renderEntitiesAndHand is the entities/held-block pass slot. It draws
// nothing: the render graph tracks no entity or held-item meshes (entities
// live in internal/world.EntityManager) and no caller supplies any.
func (g *Graph) renderEntitiesAndHand(in FrameInputs) {}

// renderTAA/renderBloom/renderTonemap/renderFXAA are post-process passes
// operating on the full-screen SceneColor target; each draws a single
// screen quad with DrawUIQuad, the same primitive the SSAO pass uses, and
// none binds a shader of its own.
func (g *Graph) renderTAA(in FrameInputs) {
	g.device.DrawUIQuad(true, g.handles.SceneColor)
}
func (g *Graph) renderBloom(in FrameInputs) {
	g.device.DrawUIQuad(true, g.handles.SceneColor)
}
func (g *Graph) renderTonemap(in FrameInputs) {
	g.device.DrawUIQuad(true, g.handles.SceneColor)
}
func (g *Graph) renderFXAA(in FrameInputs) {
	g.device.DrawUIQuad(true, g.handles.SceneColor)
}

func mat4To16(m mgl32.Mat4) [16]float32 { return [16]float32(m) }
func vec3To3(v mgl32.Vec3) [3]float32   { return [3]float32{v.X(), v.Y(), v.Z()} }
