package world

import "zigcraft/internal/voxel"

// subchunkVolume is the block count of one 16x16x16 subchunk.
const subchunkVolume = voxel.SubchunkSize * voxel.SubchunkSize * voxel.SubchunkSize

// MeshBuffer is the CPU-side output of the mesher for one subchunk/stream
// (opaque or transparent), ready to be handed to the RHI for upload.
// Empty streams (FaceCount == 0) produce no GPU buffer (spec §4.2).
type MeshBuffer struct {
	Vertices  []uint32 // packed attributes; see internal/mesher
	FaceCount int
	AABBMin   [3]float32
	AABBMax   [3]float32
}

// Subchunk is a 16x16x16 vertical slice of a Chunk: the unit of mesh
// buffers and frustum culling (spec §3.3, GLOSSARY).
type Subchunk struct {
	// Index 0-15, subchunk Y = index*16 .. index*16+15 within the chunk.
	Index int

	// blocks is nil when the subchunk is entirely air, matching the
	// teacher's sparse per-section allocation (avoids a 4096-byte
	// allocation for empty sky/underground subchunks).
	blocks     []voxel.BlockType
	blockCount int

	// light is nil until the lighting pass has run for this subchunk.
	// Packed skylight:4 | blocklight:4 per cell (spec §3.3).
	light []byte

	// dirty marks that this subchunk's mesh no longer reflects its block
	// array; set on block edits and on a neighbor entering `meshed`.
	dirty bool

	MeshOpaque      *MeshBuffer
	MeshTransparent *MeshBuffer

	// GPU buffer handles, owned by this subchunk until eviction (spec §3.3d).
	OpaqueBuffer      uint64
	TransparentBuffer uint64
}

func localIndex(x, y, z int) int {
	return (y*voxel.SubchunkSize+z)*voxel.SubchunkSize + x
}

func (s *Subchunk) get(x, y, z int) voxel.BlockType {
	if s == nil || s.blocks == nil {
		return voxel.Air
	}
	return s.blocks[localIndex(x, y, z)]
}

func (s *Subchunk) set(x, y, z int, b voxel.BlockType) (changed bool) {
	idx := localIndex(x, y, z)
	if b == voxel.Air {
		if s.blocks == nil {
			return false
		}
		if s.blocks[idx] == voxel.Air {
			return false
		}
		s.blocks[idx] = voxel.Air
		s.blockCount--
		if s.blockCount == 0 {
			s.blocks = nil
		}
		s.dirty = true
		return true
	}
	if s.blocks == nil {
		s.blocks = make([]voxel.BlockType, subchunkVolume)
	}
	old := s.blocks[idx]
	if old == b {
		return false
	}
	if old == voxel.Air {
		s.blockCount++
	}
	s.blocks[idx] = b
	s.dirty = true
	return true
}

func (s *Subchunk) getLight(x, y, z int) byte {
	if s == nil || s.light == nil {
		return 0
	}
	return s.light[localIndex(x, y, z)]
}

func (s *Subchunk) setLight(x, y, z int, v byte) {
	if s.light == nil {
		s.light = make([]byte, subchunkVolume)
	}
	s.light[localIndex(x, y, z)] = v
}

func (s *Subchunk) ensureLight() {
	if s.light == nil {
		s.light = make([]byte, subchunkVolume)
	}
}

// IsEmpty reports whether the subchunk contains only air.
func (s *Subchunk) IsEmpty() bool { return s == nil || s.blockCount == 0 }

// PackLight packs skylight (0-15) and blocklight (0-15) into one byte.
func PackLight(sky, block uint8) byte { return (sky << 4) | (block & 0x0F) }

// UnpackLight splits a packed light byte into (skylight, blocklight).
func UnpackLight(v byte) (sky, block uint8) { return v >> 4, v & 0x0F }
