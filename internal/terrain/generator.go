// Package terrain implements procedural world generation: the five-phase
// column generator (shape, biome blend, surface dusting, caves, features)
// and the GenRegion working-set cache that gives neighboring chunks
// coherent mountains, coastlines, and biome borders.
//
// Grounded on the teacher's internal/world/generator.go height/stone-fill
// loop and noise.go's value-noise stack; both are single-octave/no-biome-
// blend in the teacher and are generalized here into the full continentalness
// / peaks / erosion / climate pipeline, since the teacher has no multi-field
// shape model at all.
package terrain

import (
	"zigcraft/internal/voxel"
	"zigcraft/internal/world"
)

const (
	seaLevel              = 64
	oceanContinentalness  = 0.35
	mountainAmplitude     = 140.0
	mountainCap           = 100.0
	detailAmplitude       = 6.0
	caveRegionThreshold   = 0.55
	caveDensityThreshold  = 0.58
	caveSurfaceMargin     = 4 // blocks below the heightmap before caves may open
	beachMaxDepth         = 6
	beachMaxSlope         = 2
	cliffSlope            = 4
)

// Generator implements world.TerrainGenerator.
type Generator struct {
	seed   int64
	region *regionCache
}

// NewGenerator builds a Generator for a parsed world seed (spec §6's
// seed-parsing rule lives in internal/settings; this takes the already
// resolved int64).
func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed, region: newRegionCache(64)}
}

// Generate fills one chunk column, in the spec's fixed phase order: Shape,
// Biome, Surface, Caves, Features. Each phase only ever narrows or dresses
// what the previous phase produced; no phase revisits an earlier one's
// output. Phase D does not recompute the heightmap: it only carves below
// caveSurfaceMargin under the surface, so the Phase A heights stay valid.
func (g *Generator) Generate(w world.ChunkWriter, coord voxel.ChunkCoord) {
	region := g.region.get(g.seed, coord)

	baseX := coord.X * voxel.ChunkSizeX
	baseZ := coord.Z * voxel.ChunkSizeZ

	heights := make([][voxel.ChunkSizeZ]int, voxel.ChunkSizeX)

	for lx := 0; lx < voxel.ChunkSizeX; lx++ {
		for lz := 0; lz < voxel.ChunkSizeZ; lz++ {
			wx, wz := baseX+lx, baseZ+lz
			col := region.at(wx, wz)

			h := col.height
			heights[lx][lz] = h
			fillColumn(w, lx, lz, h, col.isOcean)
		}
	}

	for lx := 0; lx < voxel.ChunkSizeX; lx++ {
		for lz := 0; lz < voxel.ChunkSizeZ; lz++ {
			wx, wz := baseX+lx, baseZ+lz
			col := region.at(wx, wz)
			dressSurface(w, g.seed, lx, lz, wx, wz, heights[lx][lz], col, region)
		}
	}

	for lx := 0; lx < voxel.ChunkSizeX; lx++ {
		for lz := 0; lz < voxel.ChunkSizeZ; lz++ {
			wx, wz := baseX+lx, baseZ+lz
			carveCaves(w, g.seed, lx, lz, wx, wz, heights[lx][lz])
		}
	}

	placeFeatures(w, g.seed, coord, heights, region)
}

// shapeHeight is Phase A: the base continent height lerp, a capped ridged
// mountain mask, and elevation-attenuated high-frequency detail, clamped to
// the chunk's full vertical range.
func shapeHeight(seed int64, wx, wz int, c float64) int {
	x, z := float64(wx), float64(wz)
	p := peaks(seed, x, z)
	e := erosion(seed, x, z)

	hBase := lerp(float64(seaLevel-55), float64(seaLevel+70), smoothstep(0.35, 0.75, c))

	mask := smoothstep(0.48, 0.70, c) * smoothstep(0.60, 0.90, p) * (1 - smoothstep(0.45, 0.85, e))
	raw := mask * mountainAmplitude
	lift := raw / (1 + raw/mountainCap)

	// Detail noise is attenuated the higher `lift` already is, so sharp
	// mountain silhouettes don't get roughened by small-scale bumps.
	detailAtten := 1 - smoothstep(0, 50, lift)
	d := detail(seed, x, z) * detailAmplitude * detailAtten

	h := hBase + lift + d
	return int(clamp(h, 0, float64(voxel.ChunkSizeY-1)))
}

// fillColumn lays down the stone/water/air fill for one column up to its
// heightmap value, the teacher's generator.go fill loop generalized to a
// per-column ocean flag instead of a single fixed sea level cutoff for
// "is this water or air above the stone".
func fillColumn(w world.ChunkWriter, lx, lz, h int, isOcean bool) {
	for y := 0; y < voxel.ChunkSizeY; y++ {
		switch {
		case y == 0:
			w.SetBlock(lx, y, lz, voxel.Bedrock)
		case y <= h:
			w.SetBlock(lx, y, lz, voxel.Stone)
		case isOcean && y <= seaLevel:
			w.SetBlock(lx, y, lz, voxel.Water)
		default:
			// air, the zero value; nothing to write
		}
	}
}

func shoreDistanceOcean(region *GenRegion, wx, wz int, maxSearch int) int {
	origin := region.at(wx, wz)
	if origin == nil {
		return maxSearch
	}
	if origin.isOcean {
		return 0
	}
	for r := 1; r <= maxSearch; r++ {
		for dx := -r; dx <= r; dx++ {
			for _, dz := range [2]int{-r, r} {
				if c := region.at(wx+dx, wz+dz); c != nil && c.isOcean {
					return r
				}
			}
		}
		for dz := -r + 1; dz <= r-1; dz++ {
			for _, dx := range [2]int{-r, r} {
				if c := region.at(wx+dx, wz+dz); c != nil && c.isOcean {
					return r
				}
			}
		}
	}
	return maxSearch
}

func beachWidth(exposure float64, slope int) float64 {
	if slope > beachMaxSlope {
		return 0
	}
	return lerp(1, 5, clamp01(exposure))
}

// dressSurface is Phase C: replaces the top few blocks of a column with the
// blended biome's Top/Filler, applying the beach/cliff exceptions without
// ever altering the height computed in Phase A.
func dressSurface(w world.ChunkWriter, seed int64, lx, lz, wx, wz, h int, col *column, region *GenRegion) {
	if h <= 0 || col.isOcean {
		return
	}

	blend := col.blend
	top, filler := blend.Primary.Top, blend.Primary.Filler
	if blend.T > 0.5 {
		top, filler = blend.Secondary.Top, blend.Secondary.Filler
	}

	if col.slope >= cliffSlope {
		// Steep cliffs stay bare stone; dusting would look like a smear of
		// dirt plastered on a near-vertical face.
		return
	}

	exposure := exposureField(seed, float64(wx), float64(wz))
	shoreDist := shoreDistanceOcean(region, wx, wz, 8)
	if h-seaLevel >= 0 && h-seaLevel <= beachMaxDepth && col.slope <= beachMaxSlope &&
		float64(shoreDist) <= beachWidth(exposure, col.slope) {
		top, filler = voxel.Sand, voxel.Sand
	}

	depth := 1 + int(4*clamp01(exposure))
	if depth > beachMaxDepth-1 {
		depth = beachMaxDepth - 1
	}

	w.SetBlock(lx, h, lz, top)
	for d := 1; d <= depth && h-d > 0; d++ {
		w.SetBlock(lx, h-d, lz, filler)
	}
}

// carveCaves is Phase D: a 2D region mask gates whether a column's 3D cave
// density field is even consulted, and density vanishes within
// caveSurfaceMargin blocks of the surface so caves never punch daylight
// holes straight through a hillside.
func carveCaves(w world.ChunkWriter, seed int64, lx, lz, wx, wz, h int) {
	region2D := caveRegion(seed, float64(wx), float64(wz))
	if region2D < caveRegionThreshold {
		return
	}

	limit := h - caveSurfaceMargin
	for y := 1; y < limit; y++ {
		d := caveDensity(seed, float64(wx), float64(y), float64(wz))
		if d > caveDensityThreshold {
			w.SetBlock(lx, y, lz, voxel.Air)
		}
	}
	// Phase D recomputes the heightmap after carving in principle; since
	// this generator never carves at or above caveSurfaceMargin below the
	// surface, the Phase A heightmap used by later phases is unaffected and
	// no recompute is needed for this cave shape.
}

// placeFeatures is Phase E: hash-driven, placement-order-independent
// vegetation. A coastal band near ocean shorelines suppresses trees
// entirely, widening with exposure.
func placeFeatures(w world.ChunkWriter, seed int64, coord voxel.ChunkCoord, heights [][voxel.ChunkSizeZ]int, region *GenRegion) {
	baseX := coord.X * voxel.ChunkSizeX
	baseZ := coord.Z * voxel.ChunkSizeZ

	for lx := 0; lx < voxel.ChunkSizeX; lx++ {
		for lz := 0; lz < voxel.ChunkSizeZ; lz++ {
			wx, wz := baseX+lx, baseZ+lz
			h := heights[lx][lz]
			col := region.at(wx, wz)
			if col == nil || col.isOcean || h <= 0 || h >= voxel.ChunkSizeY-8 {
				continue
			}

			blend := col.blend
			biome := blend.Primary
			if blend.T > 0.5 {
				biome = blend.Secondary
			}
			if biome.Top != voxel.Grass || biome.TreeDensity <= 0 {
				continue
			}

			exposure := exposureField(seed, float64(wx), float64(wz))
			shoreDist := shoreDistanceOcean(region, wx, wz, 20)
			noTreeBand := lerp(6, 18, clamp01(exposure))
			if float64(shoreDist) < noTreeBand {
				continue
			}

			if featureChance(seed, wx, wz, 0) < biome.TreeDensity {
				placeTree(w, lx, h, lz)
			}
		}
	}
}

// placeTree drops a minimal trunk-and-canopy tree, grounded on the block
// palette's Wood/Leaves pair; the teacher has no vegetation placement at
// all, so this shape is new.
func placeTree(w world.ChunkWriter, lx, h, lz int) {
	trunkHeight := 4
	for i := 1; i <= trunkHeight; i++ {
		w.SetBlock(lx, h+i, lz, voxel.Wood)
	}
	top := h + trunkHeight
	for dx := -2; dx <= 2; dx++ {
		for dz := -2; dz <= 2; dz++ {
			if dx*dx+dz*dz > 5 {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				if dx == 0 && dz == 0 && dy <= 0 {
					continue // trunk occupies this cell
				}
				lx2, lz2 := lx+dx, lz+dz
				if lx2 < 0 || lz2 < 0 || lx2 >= voxel.ChunkSizeX || lz2 >= voxel.ChunkSizeZ {
					continue // canopy clipped at a chunk border, acceptable for a first pass
				}
				w.SetBlock(lx2, top+dy, lz2, voxel.Leaves)
			}
		}
	}
}
