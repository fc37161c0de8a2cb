package world

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"zigcraft/internal/voxel"
)

// flatGenerator is a minimal TerrainGenerator fake: fills ly < height with
// stone, used to exercise World without pulling in internal/terrain (that
// package imports this one to implement ChunkWriter, so a real
// terrain.Generator can't be used here without creating an import cycle).
type flatGenerator struct{ height int }

func (g flatGenerator) Generate(w ChunkWriter, _ voxel.ChunkCoord) {
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

func (noopMesher) BuildSubchunk(*Chunk, int, NeighborLookup) (*MeshBuffer, *MeshBuffer) {
	return &MeshBuffer{}, nil
}

type noopLighter struct{}

func (noopLighter) InitColumn(*Chunk, NeighborLookup)               {}
func (noopLighter) UpdateBlock(*Chunk, NeighborLookup, int, int, int) {}

func newTestWorld(height int) *World {
	cfg := Config{GenRadius: 3, EvictRadius: 5, GenWorkers: 2, MeshWorkers: 2, UploadCapacity: 64}
	return New(flatGenerator{height: height}, noopMesher{}, noopLighter{}, cfg)
}

func waitForState(t *testing.T, w *World, coord voxel.ChunkCoord, want State) *Chunk {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c := w.GetChunk(coord); c != nil {
			switch c.State() {
			case want:
				return c
			case StateInvalid:
				t.Fatalf("chunk %v went invalid while waiting for %v", coord, want)
			}
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("chunk %v never reached state %v", coord, want)
	return nil
}

func TestWorldGeneratesChunksAroundObserver(t *testing.T) {
	w := newTestWorld(4)
	defer w.Close()

	w.Update(mgl32.Vec3{0, 0, 0})
	waitForState(t, w, voxel.ChunkCoord{}, StateGenerated)

	if got := w.GetBlock(0, 0, 0); got != voxel.Stone {
		t.Fatalf("GetBlock(0,0,0) = %v; want Stone", got)
	}
	if got := w.GetBlock(0, 10, 0); got != voxel.Air {
		t.Fatalf("GetBlock(0,10,0) = %v; want Air", got)
	}
}

func TestWorldEvictsFarChunks(t *testing.T) {
	w := newTestWorld(1)
	defer w.Close()

	far := voxel.ChunkCoord{X: 100, Z: 100}
	w.chunks.GetOrCreate(far)

	w.Update(mgl32.Vec3{0, 0, 0}) // EvictFar runs synchronously within Update
	if w.chunks.Has(far) {
		t.Fatal("expected far chunk to be evicted")
	}
}

func TestWorldSetBlockMarksDirtyAndEnqueuesMesh(t *testing.T) {
	w := newTestWorld(1)
	defer w.Close()

	w.Update(mgl32.Vec3{0, 0, 0})
	waitForState(t, w, voxel.ChunkCoord{}, StateGenerated)

	if !w.SetBlock(3, 20, 3, voxel.Stone) {
		t.Fatal("expected SetBlock to report a change")
	}
	if got := w.GetBlock(3, 20, 3); got != voxel.Stone {
		t.Fatalf("GetBlock after SetBlock = %v; want Stone", got)
	}
}

func TestWorldDelaysMeshUntilNeighborsGenerated(t *testing.T) {
	cfg := Config{GenRadius: 0, EvictRadius: 5, GenWorkers: 2, MeshWorkers: 2, UploadCapacity: 64}
	w := New(flatGenerator{height: 4}, noopMesher{}, noopLighter{}, cfg)
	defer w.Close()

	w.Update(mgl32.Vec3{0, 0, 0})
	c := waitForState(t, w, voxel.ChunkCoord{}, StateGenerated)

	// GenRadius 0 means none of the 4 neighbors ever load, so the spec
	// §4.4 gate must hold the lone chunk at generated forever rather than
	// meshing it against the opaque-stone fallback border.
	time.Sleep(50 * time.Millisecond)
	if got := c.State(); got != StateGenerated {
		t.Fatalf("chunk state = %v; want generated (neighbors never loaded)", got)
	}
}

func TestWorldMeshesOnceAllFourNeighborsGenerated(t *testing.T) {
	w := newTestWorld(4)
	defer w.Close()

	w.Update(mgl32.Vec3{0, 0, 0})
	waitForState(t, w, voxel.ChunkCoord{}, StateMeshed)
}

func TestWorldLookupBlockAtMissingNeighborIsStone(t *testing.T) {
	w := newTestWorld(4)
	defer w.Close()

	l := worldLookup{w: w}
	if got := l.BlockAt(1000, 10, 1000); got != voxel.Stone {
		t.Fatalf("BlockAt for unloaded chunk = %v; want Stone", got)
	}
}

func TestBorderNeighbors(t *testing.T) {
	c := voxel.ChunkCoord{X: 2, Z: 2}
	nbs := borderNeighbors(c, 0, 5)
	if len(nbs) != 1 || nbs[0] != (voxel.ChunkCoord{X: 1, Z: 2}) {
		t.Fatalf("borderNeighbors(lx=0) = %v", nbs)
	}
	nbs = borderNeighbors(c, 5, 0)
	if len(nbs) != 1 || nbs[0] != (voxel.ChunkCoord{X: 2, Z: 1}) {
		t.Fatalf("borderNeighbors(lz=0) = %v", nbs)
	}
	nbs = borderNeighbors(c, 5, 5)
	if len(nbs) != 0 {
		t.Fatalf("borderNeighbors(interior) = %v; want none", nbs)
	}
}
