package terrain

import (
	"testing"

	"zigcraft/internal/voxel"
)

// fakeWriter is a minimal world.ChunkWriter recording every SetBlock call
// into a plain array, enough to assert on the generated column shape
// without building a real world.Chunk.
type fakeWriter struct {
	blocks [voxel.ChunkSizeX][voxel.ChunkSizeY][voxel.ChunkSizeZ]voxel.BlockType
}

func (f *fakeWriter) SetBlock(lx, ly, lz int, b voxel.BlockType) bool {
	if ly < 0 || ly >= voxel.ChunkSizeY {
		return false
	}
	f.blocks[lx][ly][lz] = b
	return true
}

func (f *fakeWriter) SetLight(lx, ly, lz int, v byte) {}
func (f *fakeWriter) MarkAllDirty()                   {}

func TestGeneratorDeterministic(t *testing.T) {
	g1 := NewGenerator(12345)
	g2 := NewGenerator(12345)

	var w1, w2 fakeWriter
	coord := voxel.ChunkCoord{X: 3, Z: -2}
	g1.Generate(&w1, coord)
	g2.Generate(&w2, coord)

	if w1.blocks != w2.blocks {
		t.Fatal("same seed produced different columns")
	}
}

func TestGeneratorFillsBedrockFloor(t *testing.T) {
	g := NewGenerator(12345)
	var w fakeWriter
	g.Generate(&w, voxel.ChunkCoord{})

	for lx := 0; lx < voxel.ChunkSizeX; lx++ {
		for lz := 0; lz < voxel.ChunkSizeZ; lz++ {
			if w.blocks[lx][0][lz] != voxel.Bedrock {
				t.Fatalf("column (%d,%d) has no bedrock floor", lx, lz)
			}
		}
	}
}

func TestGeneratorNoFloatingColumnAboveAir(t *testing.T) {
	// Caves can open solid-over-air and tree canopies overhang by design, so
	// this does not check column connectivity; it only checks that the upper
	// atmosphere of this chunk (every cell above seaLevel+100) is air.
	g := NewGenerator(999)
	var w fakeWriter
	g.Generate(&w, voxel.ChunkCoord{})

	for lx := 0; lx < voxel.ChunkSizeX; lx++ {
		for lz := 0; lz < voxel.ChunkSizeZ; lz++ {
			for y := voxel.ChunkSizeY - 1; y > seaLevel+100; y-- {
				if w.blocks[lx][y][lz] != voxel.Air {
					t.Fatalf("column (%d,%d) has a solid block at y=%d, far above any plausible terrain height", lx, y, lz)
				}
			}
		}
	}
}

func TestBeachWidthZeroOnSteepSlope(t *testing.T) {
	if got := beachWidth(1.0, cliffSlope); got != 0 {
		t.Fatalf("beachWidth on a steep slope = %v; want 0", got)
	}
}

func TestBlendBiomesPicksNearestForExtremeClimate(t *testing.T) {
	// Very hot, very dry should land on (or blend toward) desert.
	b := blendBiomes(0.95, 0.05)
	if b.Primary != biomeDesert && b.Secondary != biomeDesert {
		t.Fatalf("blendBiomes(0.95, 0.05) = %+v; want desert involved", b)
	}
}

func TestShapeHeightClampedToChunkHeight(t *testing.T) {
	h := shapeHeight(1, 0, 0, 1.0) // maximal continentalness
	if h < 0 || h >= voxel.ChunkSizeY {
		t.Fatalf("shapeHeight out of range: %d", h)
	}
}
