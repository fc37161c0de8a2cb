package session

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"zigcraft/internal/rendergraph"
	"zigcraft/internal/rhi"
	"zigcraft/internal/voxel"
	"zigcraft/internal/world"
)

type flatGenerator struct{ height int }

func (g flatGenerator) Generate(w world.ChunkWriter, _ voxel.ChunkCoord) {
	for x := 0; x < voxel.ChunkSizeX; x++ {
		for z := 0; z < voxel.ChunkSizeZ; z++ {
			for y := 0; y < g.height; y++ {
				w.SetBlock(x, y, z, voxel.Stone)
			}
		}
	}
	w.MarkAllDirty()
}

type oneFaceMesher struct{}

func (oneFaceMesher) BuildSubchunk(*world.Chunk, int, world.NeighborLookup) (*world.MeshBuffer, *world.MeshBuffer) {
	return &world.MeshBuffer{Vertices: []uint32{1, 2, 3, 4, 5, 6}, FaceCount: 1}, nil
}

type noopLighter struct{}

func (noopLighter) InitColumn(*world.Chunk, world.NeighborLookup)                {}
func (noopLighter) UpdateBlock(*world.Chunk, world.NeighborLookup, int, int, int) {}

func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	cfg := world.Config{GenRadius: 2, EvictRadius: 4, GenWorkers: 2, MeshWorkers: 2, UploadCapacity: 64}
	w := world.New(flatGenerator{height: 4}, oneFaceMesher{}, noopLighter{}, cfg)
	t.Cleanup(w.Close)
	return w
}

// fakeDevice is a minimal rhi.Device recording calls without touching any
// real GPU API, exercising Session's upload/render glue in isolation.
type fakeDevice struct {
	nextHandle  rhi.Handle
	uploads     int
	framesDrawn int
}

func (d *fakeDevice) Init(int, int) *rhi.Error { return nil }
func (d *fakeDevice) Deinit()                  {}
func (d *fakeDevice) WaitIdle()                 {}
func (d *fakeDevice) SetVsync(bool)             {}

func (d *fakeDevice) CreateBuffer(int, rhi.BufferUsage) (rhi.Handle, *rhi.Error) {
	d.nextHandle++
	return d.nextHandle, nil
}
func (d *fakeDevice) UploadBuffer(rhi.Handle, []byte) *rhi.Error { d.uploads++; return nil }
func (d *fakeDevice) DestroyBuffer(rhi.Handle)                   {}

func (d *fakeDevice) CreateTexture2D(int, int, rhi.TextureFormat, int) (rhi.Handle, *rhi.Error) {
	return rhi.InvalidHandle, nil
}
func (d *fakeDevice) UpdateTextureRegion(rhi.Handle, int, int, int, int, []byte) *rhi.Error {
	return nil
}
func (d *fakeDevice) CreateDepthTexture(int, int) (rhi.Handle, *rhi.Error) {
	return rhi.InvalidHandle, nil
}
func (d *fakeDevice) CreateRenderTarget(int, int, rhi.TextureFormat) (rhi.Handle, *rhi.Error) {
	return rhi.InvalidHandle, nil
}
func (d *fakeDevice) DestroyTexture(rhi.Handle) {}

func (d *fakeDevice) CreateShader(rhi.PipelineDesc) (rhi.Handle, *rhi.Error) {
	return rhi.InvalidHandle, nil
}
func (d *fakeDevice) BindShader(rhi.Handle)  {}
func (d *fakeDevice) DestroyShader(rhi.Handle) {}

func (d *fakeDevice) BeginFrame()                    { d.framesDrawn++ }
func (d *fakeDevice) EndFrame()                      {}
func (d *fakeDevice) SetViewport(int, int, int, int) {}
func (d *fakeDevice) SetClearColor(float32, float32, float32, float32) {}

func (d *fakeDevice) BeginShadowPass(int) {}
func (d *fakeDevice) EndShadowPass()      {}
func (d *fakeDevice) BeginMainPass()      {}
func (d *fakeDevice) EndMainPass()        {}

func (d *fakeDevice) UpdateGlobalUniforms(rhi.GlobalUniforms) {}
func (d *fakeDevice) UpdateShadowUniforms(rhi.ShadowUniforms) {}
func (d *fakeDevice) SetModelMatrix([16]float32)              {}

func (d *fakeDevice) Draw(rhi.Handle, int, rhi.Topology)               {}
func (d *fakeDevice) DrawIndexed(rhi.Handle, rhi.Handle, int, rhi.Topology) {}
func (d *fakeDevice) DrawSky()                                         {}
func (d *fakeDevice) DrawClouds()                                      {}
func (d *fakeDevice) DrawUIQuad(bool, rhi.Handle)                      {}

func (d *fakeDevice) DrawDebugShadowMap(int, rhi.Handle) {}

func newTestSession(t *testing.T) (*Session, *fakeDevice) {
	t.Helper()
	w := newTestWorld(t)
	device := &fakeDevice{}
	graph := rendergraph.New(device, rendergraph.Handles{})
	s := New(w, device, graph, nil, nil)
	return s, device
}

func TestUpdateStreamsAndUploadsMeshes(t *testing.T) {
	s, device := newTestSession(t)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && device.uploads == 0 {
		s.Update(1.0/60, mgl32.Vec3{0, 0, 0})
		time.Sleep(time.Millisecond)
	}
	if device.uploads == 0 {
		t.Fatal("expected at least one buffer upload after streaming settles")
	}
	if len(s.uploaded) == 0 {
		t.Fatal("expected at least one recorded uploaded subchunk")
	}
}

func TestRenderDoesNotPanicWithNoDraws(t *testing.T) {
	s, device := newTestSession(t)
	s.Render(PlayerView{View: mgl32.Ident4(), Proj: mgl32.Ident4()}, 800, 600)
	if device.framesDrawn != 1 {
		t.Fatalf("framesDrawn = %d, want 1", device.framesDrawn)
	}
}

func TestAtmosphereAdvancesOverTime(t *testing.T) {
	s, _ := newTestSession(t)
	before := s.Atmosphere().TimeOfDay
	s.Update(60, mgl32.Vec3{})
	after := s.Atmosphere().TimeOfDay
	if before == after {
		t.Fatal("expected time of day to advance")
	}
}

func TestSetToggleRejectsUnknownName(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.SetToggle("bogus", true); err == nil {
		t.Fatal("expected error for unknown toggle name")
	}
	if err := s.SetToggle("shadows", false); err != nil {
		t.Fatalf("SetToggle(shadows): %v", err)
	}
}
