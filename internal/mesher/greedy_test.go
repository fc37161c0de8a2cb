package mesher

import (
	"testing"

	"zigcraft/internal/voxel"
	"zigcraft/internal/world"
)

// airLookup answers every cross-chunk query with air, matching a lone
// chunk with no generated neighbors (the common case while streaming).
type airLookup struct{}

func (airLookup) BlockAt(int, int, int) voxel.BlockType { return voxel.Air }
func (airLookup) LightAt(int, int, int) byte            { return 0xFF }

func singleBlockSubchunk(b voxel.BlockType, lx, ly, lz int) (*world.Chunk, world.NeighborLookup) {
	c := world.NewChunk(voxel.ChunkCoord{X: 0, Z: 0})
	c.SetBlock(lx, ly, lz, b)
	c.MarkAllDirty()
	return c, airLookup{}
}

func TestBuildSubchunkSingleBlockSixFaces(t *testing.T) {
	c, nb := singleBlockSubchunk(voxel.Stone, 0, 0, 0)
	builder := NewBuilder()
	opaque, _ := builder.BuildSubchunk(c, 0, nb)
	if opaque == nil {
		t.Fatal("expected a non-nil opaque mesh for a single exposed block")
	}
	if opaque.FaceCount != 6 {
		t.Fatalf("FaceCount = %d, want 6 (all faces exposed to air)", opaque.FaceCount)
	}
}

func TestBuildSubchunkTwoBlocksTouchingMergeFace(t *testing.T) {
	c := world.NewChunk(voxel.ChunkCoord{X: 0, Z: 0})
	c.SetBlock(0, 0, 0, voxel.Stone)
	c.SetBlock(1, 0, 0, voxel.Stone)
	c.MarkAllDirty()

	builder := NewBuilder()
	opaque, _ := builder.BuildSubchunk(c, 0, airLookup{})
	if opaque == nil {
		t.Fatal("expected a non-nil opaque mesh")
	}
	// A 2x1x1 cuboid still has 6 faces total (two merge into single
	// quads along the shared axis, not doubling into 12).
	if opaque.FaceCount != 6 {
		t.Fatalf("FaceCount = %d, want 6 for a greedily merged 2x1x1 cuboid", opaque.FaceCount)
	}
}

func TestBuildSubchunkEmptyReturnsNil(t *testing.T) {
	c := world.NewChunk(voxel.ChunkCoord{X: 0, Z: 0})
	builder := NewBuilder()
	opaque, transparent := builder.BuildSubchunk(c, 0, airLookup{})
	if opaque != nil || transparent != nil {
		t.Fatal("expected (nil, nil) for an empty subchunk")
	}
}

func TestBuildSubchunkAdjacentBlocksHideSharedFace(t *testing.T) {
	c := world.NewChunk(voxel.ChunkCoord{X: 0, Z: 0})
	c.SetBlock(0, 0, 0, voxel.Stone)
	c.SetBlock(0, 1, 0, voxel.Stone)
	c.MarkAllDirty()

	builder := NewBuilder()
	opaque, _ := builder.BuildSubchunk(c, 0, airLookup{})
	if opaque == nil {
		t.Fatal("expected a non-nil opaque mesh")
	}
	if opaque.FaceCount != 6 {
		t.Fatalf("FaceCount = %d, want 6 for a stacked 1x2x1 cuboid (top/bottom faces between the two blocks culled)", opaque.FaceCount)
	}
}
