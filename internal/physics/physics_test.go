package physics

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

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

type noopMesher struct{}

func (noopMesher) BuildSubchunk(*world.Chunk, int, world.NeighborLookup) (*world.MeshBuffer, *world.MeshBuffer) {
	return &world.MeshBuffer{}, nil
}

type noopLighter struct{}

func (noopLighter) InitColumn(*world.Chunk, world.NeighborLookup)                {}
func (noopLighter) UpdateBlock(*world.Chunk, world.NeighborLookup, int, int, int) {}

func newTestWorld(t *testing.T, height int) *world.World {
	t.Helper()
	cfg := world.Config{GenRadius: 3, EvictRadius: 5, GenWorkers: 2, MeshWorkers: 2, UploadCapacity: 64}
	w := world.New(flatGenerator{height: height}, noopMesher{}, noopLighter{}, cfg)
	w.Update(mgl32.Vec3{0, 0, 0})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c := w.GetChunk(voxel.ChunkCoord{}); c != nil && c.State() >= world.StateGenerated {
			return w
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("world never generated origin chunk")
	return nil
}

func TestCollidesDetectsGroundBlock(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	if !Collides(w, mgl32.Vec3{0.5, 3, 0.5}, 0.6, 1.8) {
		t.Fatal("expected box standing on stone at y=3 to collide")
	}
	if Collides(w, mgl32.Vec3{0.5, 10, 0.5}, 0.6, 1.8) {
		t.Fatal("expected box floating at y=10 to not collide")
	}
}

func TestIntersectsBlockBoundary(t *testing.T) {
	if !IntersectsBlock(mgl32.Vec3{0.5, 0, 0.5}, 0.6, 1.8, 0, 0, 0) {
		t.Fatal("box centered in block 0,0,0 should intersect it")
	}
	if IntersectsBlock(mgl32.Vec3{5, 0, 5}, 0.6, 1.8, 0, 0, 0) {
		t.Fatal("box far away should not intersect block 0,0,0")
	}
}

func TestFindGroundLevel(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	ground := FindGroundLevel(w, 0.5, 0.5, 20, 0.6, 1.8)
	if IsNegInf(ground) {
		t.Fatal("expected to find ground")
	}
	if ground != 4 {
		t.Fatalf("FindGroundLevel = %v; want 4 (top of stone at y=3)", ground)
	}
}

func TestFindGroundLevelNoneBelow(t *testing.T) {
	w := newTestWorld(t, 0)
	defer w.Close()

	ground := FindGroundLevel(w, 0.5, 0.5, 20, 0.6, 1.8)
	if !IsNegInf(ground) {
		t.Fatalf("FindGroundLevel = %v; want -Inf", ground)
	}
}

func TestFindCeilingLevel(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	if !w.SetBlock(0, 10, 0, voxel.Stone) {
		t.Fatal("expected SetBlock to report a change")
	}

	ceiling := FindCeilingLevel(w, 0.5, 0.5, 5, 0.6, 1.8)
	if ceiling != 10 {
		t.Fatalf("FindCeilingLevel = %v; want 10", ceiling)
	}
}

func TestRaycastHitsGroundFromAbove(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	res := Raycast(w, mgl32.Vec3{0.5, 10, 0.5}, mgl32.Vec3{0, -1, 0}, MinReachDistance, MaxReachDistance)
	if res.Hit {
		t.Fatalf("expected miss beyond MaxReachDistance, got hit at %v dist %v", res.HitPosition, res.Distance)
	}

	res = Raycast(w, mgl32.Vec3{0.5, 6, 0.5}, mgl32.Vec3{0, -1, 0}, MinReachDistance, MaxReachDistance)
	if !res.Hit {
		t.Fatal("expected ray looking straight down to hit the stone floor")
	}
	if res.HitPosition != [3]int{0, 3, 0} {
		t.Fatalf("HitPosition = %v; want {0,3,0}", res.HitPosition)
	}
	if res.AdjacentPosition != [3]int{0, 4, 0} {
		t.Fatalf("AdjacentPosition = %v; want {0,4,0}", res.AdjacentPosition)
	}
	if res.HitFace != voxel.FaceTop {
		t.Fatalf("HitFace = %v; want FaceTop (ray entered from above)", res.HitFace)
	}
}

func TestRaycastMissesIntoOpenSky(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	res := Raycast(w, mgl32.Vec3{0.5, 10, 0.5}, mgl32.Vec3{0, 1, 0}, MinReachDistance, MaxReachDistance)
	if res.Hit {
		t.Fatalf("expected ray into open sky to miss, got %v", res.HitPosition)
	}
}

func TestRaycastHorizontalHitDistanceAndFace(t *testing.T) {
	w := newTestWorld(t, 1)
	defer w.Close()

	if !w.SetBlock(3, 70, 0, voxel.Stone) {
		t.Fatal("expected SetBlock to report a change")
	}

	res := Raycast(w, mgl32.Vec3{0.5, 70, 0.5}, mgl32.Vec3{1, 0, 0}, MinReachDistance, MaxReachDistance)
	if !res.Hit {
		t.Fatal("expected horizontal ray to hit the placed block")
	}
	if res.HitPosition != [3]int{3, 70, 0} {
		t.Fatalf("HitPosition = %v; want {3,70,0}", res.HitPosition)
	}
	if res.AdjacentPosition != [3]int{2, 70, 0} {
		t.Fatalf("AdjacentPosition = %v; want {2,70,0}", res.AdjacentPosition)
	}
	if res.HitFace != voxel.FaceWest {
		t.Fatalf("HitFace = %v; want FaceWest", res.HitFace)
	}
	if res.Distance < 2.49 || res.Distance > 2.51 {
		t.Fatalf("Distance = %v; want ~2.5", res.Distance)
	}
}

func TestRaycastRespectsMinDistance(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	// standing inside the stone itself and looking up: the start cell is a
	// hit at distance 0, which should be suppressed by the minimum distance
	// so players can't target their own feet; above it there is only air.
	res := Raycast(w, mgl32.Vec3{0.5, 3.5, 0.5}, mgl32.Vec3{0, 1, 0}, 2.0, MaxReachDistance)
	if res.Hit {
		t.Fatal("expected hit within MinReachDistance to be suppressed")
	}
}
