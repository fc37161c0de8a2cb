package voxel

import "github.com/go-gl/mathgl/mgl32"

// Chunk extent, per spec §3.1/§3.3.
const (
	ChunkSizeX = 16
	ChunkSizeY = 256
	ChunkSizeZ = 16

	SubchunkSize  = 16
	SubchunkCount = ChunkSizeY / SubchunkSize
)

// FloorDiv performs integer division that rounds toward negative infinity,
// so chunk coordinates are well-defined for negative world coordinates.
func FloorDiv(a, b int) int {
	if a < 0 {
		return (a - b + 1) / b
	}
	return a / b
}

// Mod returns a non-negative remainder, used to compute local coordinates.
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// ChunkCoord is the chunk-space address of a chunk column (Y is the
// subchunk-stack index is NOT part of ChunkCoord: a Chunk is the full
// 16x256x16 column, per spec §3.3).
type ChunkCoord struct {
	X, Z int
}

// WorldToChunk converts a world block coordinate to its owning chunk and the
// block's local coordinate within that chunk.
func WorldToChunk(x, y, z int) (coord ChunkCoord, lx, ly, lz int) {
	coord = ChunkCoord{X: FloorDiv(x, ChunkSizeX), Z: FloorDiv(z, ChunkSizeZ)}
	lx = Mod(x, ChunkSizeX)
	ly = y
	lz = Mod(z, ChunkSizeZ)
	return
}

// FloatingOrigin subtracts the camera position from a world position,
// producing the camera-relative coordinate sent to the GPU (spec §3.1).
func FloatingOrigin(world, camera mgl32.Vec3) mgl32.Vec3 {
	return world.Sub(camera)
}
