package mesher

import (
	"zigcraft/internal/voxel"
	"zigcraft/internal/world"
)

// Builder implements world.Mesher, producing one opaque and one transparent
// mesh per subchunk via greedy face merging.
type Builder struct{}

// NewBuilder creates a mesh builder.
func NewBuilder() *Builder { return &Builder{} }

// sampler resolves blocks/light in the 16x16x16 volume of one subchunk plus
// a one-block halo, transparently crossing subchunk (Y) and chunk (XZ)
// boundaries via the chunk for in-column lookups and the NeighborLookup for
// anything else.
type sampler struct {
	c                    *world.Chunk
	baseX, baseY, baseZ  int
	nb                   world.NeighborLookup
}

func (s *sampler) block(lx, ly, lz int) voxel.BlockType {
	if lx >= 0 && lx < voxel.ChunkSizeX && lz >= 0 && lz < voxel.ChunkSizeZ {
		return s.c.GetBlock(lx, s.baseY+ly, lz)
	}
	return s.nb.BlockAt(s.baseX+lx, s.baseY+ly, s.baseZ+lz)
}

func (s *sampler) light(lx, ly, lz int) (sky, block uint8) {
	var v byte
	if lx >= 0 && lx < voxel.ChunkSizeX && lz >= 0 && lz < voxel.ChunkSizeZ {
		v = s.c.GetLight(lx, s.baseY+ly, lz)
	} else {
		v = s.nb.LightAt(s.baseX+lx, s.baseY+ly, s.baseZ+lz)
	}
	return world.UnpackLight(v)
}

// faceKey is the greedy-merge mask key (spec: block id, tint, light,
// normal): two adjacent faces only merge into one quad if all of these
// match.
type faceKey struct {
	present  bool
	block    voxel.BlockType
	texLayer int
	tint     uint16
	sky      uint8
	blk      uint8
}

// BuildSubchunk builds the opaque and transparent meshes for one subchunk.
// Returns (nil, nil) if the subchunk is empty.
func (b *Builder) BuildSubchunk(c *world.Chunk, index int, nb world.NeighborLookup) (opaque, transparent *world.MeshBuffer) {
	sc := c.Subchunk(index)
	if sc == nil || sc.IsEmpty() {
		return nil, nil
	}

	s := &sampler{
		c:     c,
		baseX: c.Coord.X * voxel.ChunkSizeX,
		baseY: index * voxel.SubchunkSize,
		baseZ: c.Coord.Z * voxel.ChunkSizeZ,
		nb:    nb,
	}

	var opaqueVerts, transparentVerts []uint32
	var opaqueFaces, transparentFaces int

	for _, dir := range [...][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}} {
		ov, of, tv, tf := buildDirection(s, dir[0], dir[1], dir[2])
		opaqueVerts = append(opaqueVerts, ov...)
		opaqueFaces += of
		transparentVerts = append(transparentVerts, tv...)
		transparentFaces += tf
	}

	min := [3]float32{float32(s.baseX), float32(s.baseY), float32(s.baseZ)}
	max := [3]float32{min[0] + voxel.SubchunkSize, min[1] + voxel.SubchunkSize, min[2] + voxel.SubchunkSize}

	if opaqueFaces > 0 {
		opaque = &world.MeshBuffer{Vertices: opaqueVerts, FaceCount: opaqueFaces, AABBMin: min, AABBMax: max}
	}
	if transparentFaces > 0 {
		transparent = &world.MeshBuffer{Vertices: transparentVerts, FaceCount: transparentFaces, AABBMin: min, AABBMax: max}
	}
	return opaque, transparent
}

// buildDirection performs 2D greedy meshing over the 16x16 plane
// perpendicular to (nx,ny,nz), one layer at a time through the subchunk's
// 16 layers along the normal axis.
func buildDirection(s *sampler, nx, ny, nz int) (opaqueVerts []uint32, opaqueFaces int, transparentVerts []uint32, transparentFaces int) {
	const n = voxel.SubchunkSize
	face := faceFromNormal(nx, ny, nz)
	normalIdx := faceNormalIndex(face)

	// at maps a layer index and in-plane (u,v) to the 3D cell coordinate.
	var at func(layer, u, v int) (int, int, int)
	switch {
	case nx != 0:
		at = func(layer, u, v int) (int, int, int) { return layer, u, v }
	case ny != 0:
		at = func(layer, u, v int) (int, int, int) { return u, layer, v }
	default:
		at = func(layer, u, v int) (int, int, int) { return u, v, layer }
	}

	for layer := 0; layer < n; layer++ {
		mask := make([]faceKey, n*n)
		transp := make([]bool, n*n)

		for u := 0; u < n; u++ {
			for v := 0; v < n; v++ {
				x, y, z := at(layer, u, v)
				bt := s.block(x, y, z)
				if bt == voxel.Air {
					continue
				}
				ox, oy, oz := x+nx, y+ny, z+nz
				neighbor := s.block(ox, oy, oz)
				if !voxel.FaceVisible(bt, neighbor) {
					continue
				}
				sky, blk := s.light(ox, oy, oz)
				mask[u*n+v] = faceKey{
					present:  true,
					block:    bt,
					texLayer: voxel.TextureLayer(bt, face),
					tint:     packRGB565(voxel.TintFor(bt, face)),
					sky:      sky,
					blk:      blk,
				}
				transp[u*n+v] = voxel.IsTransparent(bt)
			}
		}

		ov, of, tv, tf := emitLayer(s, mask, transp, n, at, layer, nx, ny, nz, normalIdx)
		opaqueVerts = append(opaqueVerts, ov...)
		opaqueFaces += of
		transparentVerts = append(transparentVerts, tv...)
		transparentFaces += tf
	}
	return opaqueVerts, opaqueFaces, transparentVerts, transparentFaces
}

// emitLayer greedily merges mask cells into maximal rectangles and emits
// one quad (two triangles) per rectangle, separated into the opaque and
// transparent output streams.
func emitLayer(s *sampler, mask []faceKey, transp []bool, n int, at func(layer, u, v int) (int, int, int), layer, nx, ny, nz int, normalIdx byte) (opaqueVerts []uint32, opaqueFaces int, transparentVerts []uint32, transparentFaces int) {
	used := make([]bool, n*n)

	sameKey := func(a, b faceKey) bool {
		return a.present && b.present && a.block == b.block && a.texLayer == b.texLayer &&
			a.tint == b.tint && a.sky == b.sky && a.blk == b.blk
	}

	for u0 := 0; u0 < n; u0++ {
		for v0 := 0; v0 < n; v0++ {
			idx := u0*n + v0
			if used[idx] || !mask[idx].present {
				continue
			}
			key := mask[idx]

			width := 1
			for v0+width < n && !used[u0*n+v0+width] && sameKey(mask[u0*n+v0+width], key) {
				width++
			}

			height := 1
		grow:
			for u0+height < n {
				for v := v0; v < v0+width; v++ {
					ci := (u0+height)*n + v
					if used[ci] || !sameKey(mask[ci], key) {
						break grow
					}
				}
				height++
			}

			for u := u0; u < u0+height; u++ {
				for v := v0; v < v0+width; v++ {
					used[u*n+v] = true
				}
			}

			verts := emitQuad(s, at, layer, u0, v0, height, width, nx, ny, nz, normalIdx, key)
			if transp[idx] {
				transparentVerts = append(transparentVerts, verts...)
				transparentFaces++
			} else {
				opaqueVerts = append(opaqueVerts, verts...)
				opaqueFaces++
			}
		}
	}
	return opaqueVerts, opaqueFaces, transparentVerts, transparentFaces
}

// emitQuad packs the two triangles of one merged rectangle, computing
// per-corner ambient occlusion from the sampler.
func emitQuad(s *sampler, at func(layer, u, v int) (int, int, int), layer, u0, v0, height, width, nx, ny, nz int, normalIdx byte, key faceKey) []uint32 {
	// faceLayer is the coordinate along the normal axis where the quad's
	// vertices sit: the far side of the solid block for a positive normal,
	// the near side for a negative one.
	faceLayer := layer
	if nx > 0 || ny > 0 || nz > 0 {
		faceLayer++
	}

	corner := func(du, dv int) (x, y, z int) { return at(faceLayer, u0+du, v0+dv) }

	// u/v step vectors in 3D for the two in-plane axes, used for AO sampling.
	var su, sv [3]int
	switch {
	case nx != 0: // layer axis is x; in-plane axes u,v are y,z
		su[1], sv[2] = 1, 1
	case ny != 0: // layer axis is y; in-plane axes u,v are x,z
		su[0], sv[2] = 1, 1
	default: // layer axis is z; in-plane axes u,v are x,y
		su[0], sv[1] = 1, 1
	}

	ao := func(du, dv int) uint8 {
		x, y, z := corner(du, dv)
		// Edge offsets point away from the quad interior at this corner.
		ud := -1
		if du == height {
			ud = 1
		}
		vd := -1
		if dv == width {
			vd = 1
		}
		side1 := s.block(x+ud*su[0], y+ud*su[1], z+ud*su[2])
		side2 := s.block(x+vd*sv[0], y+vd*sv[1], z+vd*sv[2])
		corn := s.block(x+ud*su[0]+vd*sv[0], y+ud*su[1]+vd*sv[1], z+ud*su[2]+vd*sv[2])
		return vertexAO(voxel.IsSolid(side1), voxel.IsSolid(side2), voxel.IsSolid(corn))
	}

	x0, y0, z0 := corner(0, 0)
	x1, y1, z1 := corner(height, 0)
	x2, y2, z2 := corner(height, width)
	x3, y3, z3 := corner(0, width)

	ao0 := ao(0, 0)
	ao1 := ao(height, 0)
	ao2 := ao(height, width)
	ao3 := ao(0, width)

	pv := func(x, y, z int, a uint8) (uint32, uint32) {
		return packVertex(x, y, z, normalIdx, a, key.sky, key.blk, key.texLayer, key.tint)
	}

	v1a, v2a := pv(x0, y0, z0, ao0)
	v1b, v2b := pv(x1, y1, z1, ao1)
	v1c, v2c := pv(x2, y2, z2, ao2)
	v1d, v2d := pv(x3, y3, z3, ao3)

	positive := nx > 0 || ny > 0 || nz > 0
	if positive {
		return []uint32{v1a, v2a, v1b, v2b, v1c, v2c, v1c, v2c, v1d, v2d, v1a, v2a}
	}
	return []uint32{v1a, v2a, v1d, v2d, v1c, v2c, v1c, v2c, v1b, v2b, v1a, v2a}
}
