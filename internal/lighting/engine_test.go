package lighting

import (
	"testing"

	"zigcraft/internal/voxel"
	"zigcraft/internal/world"
)

type noopNeighbors struct{}

func (noopNeighbors) BlockAt(x, y, z int) voxel.BlockType { return voxel.Air }
func (noopNeighbors) LightAt(x, y, z int) byte            { return 0 }

func flatChunk(surfaceY int) *world.Chunk {
	c := world.NewChunk(voxel.ChunkCoord{})
	for lx := 0; lx < voxel.ChunkSizeX; lx++ {
		for lz := 0; lz < voxel.ChunkSizeZ; lz++ {
			for ly := 0; ly <= surfaceY; ly++ {
				c.SetBlock(lx, ly, lz, voxel.Stone)
			}
		}
	}
	return c
}

func TestInitColumnOpenSkyIsFullBright(t *testing.T) {
	c := flatChunk(10)
	e := NewEngine()
	e.InitColumn(c, noopNeighbors{})

	sky, _ := world.UnpackLight(c.GetLight(8, 200, 8))
	if sky != maxSky {
		t.Fatalf("open-sky skylight = %d; want %d", sky, maxSky)
	}
}

func TestInitColumnUndergroundIsDark(t *testing.T) {
	c := flatChunk(10)
	e := NewEngine()
	e.InitColumn(c, noopNeighbors{})

	sky, blk := world.UnpackLight(c.GetLight(8, 5, 8))
	if sky != 0 || blk != 0 {
		t.Fatalf("buried cell light = sky=%d blk=%d; want 0,0", sky, blk)
	}
}

func TestInitColumnTorchLitsNeighbors(t *testing.T) {
	c := flatChunk(10)
	c.SetBlock(8, 11, 8, voxel.Torch)
	e := NewEngine()
	e.InitColumn(c, noopNeighbors{})

	_, blk := world.UnpackLight(c.GetLight(8, 11, 8))
	if blk != voxel.LightLevel(voxel.Torch) {
		t.Fatalf("torch cell blocklight = %d; want %d", blk, voxel.LightLevel(voxel.Torch))
	}
	_, blkAdj := world.UnpackLight(c.GetLight(9, 11, 8))
	if blkAdj == 0 {
		t.Fatal("torch did not spread blocklight to an adjacent cell")
	}
}

func TestUpdateBlockDarkensOnWallPlacement(t *testing.T) {
	c := flatChunk(10)
	e := NewEngine()
	e.InitColumn(c, noopNeighbors{})

	before, _ := world.UnpackLight(c.GetLight(8, 15, 8))
	if before == 0 {
		t.Fatal("setup: expected open-air cell to be lit before the edit")
	}

	c.SetBlock(8, 12, 8, voxel.Stone)
	e.UpdateBlock(c, noopNeighbors{}, 8, 12, 8)

	after, _ := world.UnpackLight(c.GetLight(8, 12, 8))
	if after != 0 {
		t.Fatalf("newly solid cell light = %d; want 0", after)
	}
}

func TestUpdateBlockRemovingTorchDarkensNeighborhood(t *testing.T) {
	c := flatChunk(10)
	e := NewEngine()
	e.InitColumn(c, noopNeighbors{})

	c.SetBlock(8, 12, 8, voxel.Torch)
	e.UpdateBlock(c, noopNeighbors{}, 8, 12, 8)

	_, blkBefore := world.UnpackLight(c.GetLight(9, 12, 8))
	if blkBefore == 0 {
		t.Fatal("setup: expected torch to light its neighbor before removal")
	}

	c.SetBlock(8, 12, 8, voxel.Air)
	e.UpdateBlock(c, noopNeighbors{}, 8, 12, 8)

	_, blkSelf := world.UnpackLight(c.GetLight(8, 12, 8))
	if blkSelf != 0 {
		t.Fatalf("removed torch's own cell blocklight = %d; want 0", blkSelf)
	}
	_, blkAfter := world.UnpackLight(c.GetLight(9, 12, 8))
	if blkAfter != 0 {
		t.Fatalf("neighbor blocklight after torch removal = %d; want 0", blkAfter)
	}
}

func TestUpdateBlockRemovingTorchPreservesOtherSource(t *testing.T) {
	c := flatChunk(10)
	e := NewEngine()
	e.InitColumn(c, noopNeighbors{})

	// Two torches four apart so their halos overlap partway between them;
	// removing one must not clear light still reachable from the other.
	c.SetBlock(4, 12, 8, voxel.Torch)
	e.UpdateBlock(c, noopNeighbors{}, 4, 12, 8)
	c.SetBlock(8, 12, 8, voxel.Torch)
	e.UpdateBlock(c, noopNeighbors{}, 8, 12, 8)

	c.SetBlock(8, 12, 8, voxel.Air)
	e.UpdateBlock(c, noopNeighbors{}, 8, 12, 8)

	_, blk := world.UnpackLight(c.GetLight(6, 12, 8))
	if blk == 0 {
		t.Fatal("expected the surviving torch to still light the midpoint cell")
	}
}
