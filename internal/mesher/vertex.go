// Package mesher turns chunk block data into packed-vertex triangle lists
// ready for GPU upload, using greedy face-merging per subchunk.
//
// Grounded on the teacher's internal/meshing/greedy.go 2-uint32 packed
// vertex format and per-direction greedy-merge structure; generalized from
// whole-chunk slicing to per-subchunk (16^3) slicing so a single block edit
// only rebuilds one subchunk's mesh, and extended with skylight/blocklight
// and per-vertex ambient occlusion, neither of which the teacher tracks.
package mesher

import "zigcraft/internal/voxel"

// VertexStride is the number of packed uint32 words per vertex.
const VertexStride = 2

// packVertex encodes one vertex into two uint32 words.
//
// V1: X(5) | Y(9) | Z(5) | Normal(3) | AO(2) | Skylight(4) | Blocklight(4)
// V2: TexLayer(16) | Tint RGB565(16)
//
// X/Y/Z are subchunk-local corner coordinates (0-16; the renderer's model
// matrix adds the chunk and subchunk origin), matching the teacher's bit layout for X/Y/Z/Normal and extending the
// remaining 10 bits of V1 for the lighting attributes the teacher's
// brightness-by-normal-only shading didn't need.
func packVertex(x, y, z int, normal byte, ao, sky, block uint8, texLayer int, tint uint16) (uint32, uint32) {
	v1 := uint32(x) |
		uint32(y)<<5 |
		uint32(z)<<14 |
		uint32(normal)<<19 |
		uint32(ao&0x3)<<22 |
		uint32(sky&0xF)<<24 |
		uint32(block&0xF)<<28
	v2 := uint32(texLayer) | uint32(tint)<<16
	return v1, v2
}

// packRGB565 converts a 0xRRGGBB color to RGB565, used for vertex tint.
// 0xFFFFFF (no tint) packs to all-ones, i.e. white, so the fragment shader's
// color*tint modulation is a no-op for untinted faces.
func packRGB565(c uint32) uint16 {
	r := (c >> 16) & 0xFF
	g := (c >> 8) & 0xFF
	b := c & 0xFF
	r5 := (r >> 3) & 0x1F
	g6 := (g >> 2) & 0x3F
	b5 := (b >> 3) & 0x1F
	return uint16(r5<<11 | g6<<5 | b5)
}

// faceNormalIndex maps a face to the packed normal code 0-5, matching the
// teacher's North/South/East/West/Top/Bottom ordering.
func faceNormalIndex(f voxel.BlockFace) byte {
	switch f {
	case voxel.FaceNorth:
		return 0
	case voxel.FaceSouth:
		return 1
	case voxel.FaceEast:
		return 2
	case voxel.FaceWest:
		return 3
	case voxel.FaceTop:
		return 4
	case voxel.FaceBottom:
		return 5
	}
	return 6
}

func faceFromNormal(nx, ny, nz int) voxel.BlockFace {
	switch {
	case nx > 0:
		return voxel.FaceEast
	case nx < 0:
		return voxel.FaceWest
	case ny > 0:
		return voxel.FaceTop
	case ny < 0:
		return voxel.FaceBottom
	case nz > 0:
		return voxel.FaceNorth
	default:
		return voxel.FaceSouth
	}
}
