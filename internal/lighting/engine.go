// Package lighting computes the packed skylight/blocklight byte per block
// (spec §4.3): a top-down skylight seed pass followed by breadth-first
// propagation for both channels, plus incremental add/remove updates driven
// by block edits.
//
// The teacher has no lighting system at all (every block renders at a flat,
// normal-derived brightness); this package is new. Its queue-worker shape
// is grounded on internal/world/chunk_streamer.go's plain slice/channel
// pending-set idiom rather than a generic priority queue, since light BFS is
// unweighted and the teacher never reaches for container/heap outside the
// chunk streamer's job queue.
package lighting

import (
	"zigcraft/internal/voxel"
	"zigcraft/internal/world"
)

const (
	maxSky   = 15
	maxBlock = 15
)

// Engine implements world.Lighter.
type Engine struct{}

// NewEngine creates a lighting engine.
func NewEngine() *Engine { return &Engine{} }

type lightNode struct {
	x, y, z int
	level   uint8
}

// InitColumn seeds and floods both light channels for a freshly generated
// chunk. Skylight does not decay while falling straight down through open
// air (an Open Question resolution recorded in DESIGN.md: vertical skylight
// is decay-free until the first opaque block, matching the classic
// block-game behavior rather than attenuating per block of air); it then
// decays by 1 per step as it's flooded horizontally and into overhangs.
// Blocklight is seeded at every light-emitting block and flooded the same
// way. Propagation is bounded to this chunk's own XZ extent: a neighbor
// chunk's light is only read (via w.LightAt, one-block falloff) as an
// additional seed, never written, since InitColumn has no write access to
// other chunks.
func (e *Engine) InitColumn(c *world.Chunk, w world.NeighborLookup) {
	baseX := c.Coord.X * voxel.ChunkSizeX
	baseZ := c.Coord.Z * voxel.ChunkSizeZ

	var skyQueue, blockQueue []lightNode

	for lx := 0; lx < voxel.ChunkSizeX; lx++ {
		for lz := 0; lz < voxel.ChunkSizeZ; lz++ {
			sky := uint8(maxSky)
			for ly := voxel.ChunkSizeY - 1; ly >= 0; ly-- {
				b := c.GetBlock(lx, ly, lz)
				if voxel.IsSolid(b) && !voxel.IsTransparent(b) {
					sky = 0
					c.SetLight(lx, ly, lz, world.PackLight(0, 0))
					continue
				}
				if sky > 0 {
					c.SetLight(lx, ly, lz, world.PackLight(sky, 0))
					if sky == maxSky {
						skyQueue = append(skyQueue, lightNode{lx, ly, lz, sky})
					}
				}
				if voxel.EmitsLight(b) {
					lvl := voxel.LightLevel(b)
					c.SetLight(lx, ly, lz, world.PackLight(sky, lvl))
					blockQueue = append(blockQueue, lightNode{lx, ly, lz, lvl})
				}
			}
		}
	}

	// Border seeds: absorb one step of whatever light the neighbor chunks
	// (if already loaded) are casting across the XZ border, so a chunk that
	// generates after its neighbor doesn't show a dark seam at the edge.
	for lz := 0; lz < voxel.ChunkSizeZ; lz++ {
		absorb(c, w, baseX, baseZ, -1, lz, &skyQueue, &blockQueue)
		absorb(c, w, baseX, baseZ, voxel.ChunkSizeX, lz, &skyQueue, &blockQueue)
	}
	for lx := 0; lx < voxel.ChunkSizeX; lx++ {
		absorb(c, w, baseX, baseZ, lx, -1, &skyQueue, &blockQueue)
		absorb(c, w, baseX, baseZ, lx, voxel.ChunkSizeZ, &skyQueue, &blockQueue)
	}

	floodSky(c, skyQueue)
	floodBlock(c, blockQueue)
}

// absorb reads the neighbor's light at one out-of-bounds column (over the
// full height) and, where it exceeds this chunk's own value by more than 1,
// seeds a propagation node one step inside this chunk's border.
func absorb(c *world.Chunk, w world.NeighborLookup, baseX, baseZ, lx, lz int, skyQueue, blockQueue *[]lightNode) {
	ilx, ilz := lx, lz
	if ilx < 0 {
		ilx = 0
	} else if ilx >= voxel.ChunkSizeX {
		ilx = voxel.ChunkSizeX - 1
	}
	if ilz < 0 {
		ilz = 0
	} else if ilz >= voxel.ChunkSizeZ {
		ilz = voxel.ChunkSizeZ - 1
	}

	for ly := 0; ly < voxel.ChunkSizeY; ly++ {
		v := w.LightAt(baseX+lx, ly, baseZ+lz)
		sky, blk := world.UnpackLight(v)
		b := c.GetBlock(ilx, ly, ilz)
		if voxel.IsSolid(b) && !voxel.IsTransparent(b) {
			continue
		}
		if sky > 1 {
			curSky, curBlk := world.UnpackLight(c.GetLight(ilx, ly, ilz))
			if sky-1 > curSky {
				c.SetLight(ilx, ly, ilz, world.PackLight(sky-1, curBlk))
				*skyQueue = append(*skyQueue, lightNode{ilx, ly, ilz, sky - 1})
			}
		}
		if blk > 1 {
			curSky, curBlk := world.UnpackLight(c.GetLight(ilx, ly, ilz))
			if blk-1 > curBlk {
				c.SetLight(ilx, ly, ilz, world.PackLight(curSky, blk-1))
				*blockQueue = append(*blockQueue, lightNode{ilx, ly, ilz, blk - 1})
			}
		}
	}
}

var neighborOffsets = [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}

func floodSky(c *world.Chunk, queue []lightNode) {
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.level <= 1 {
			continue
		}
		for _, off := range neighborOffsets {
			nx, ny, nz := n.x+off[0], n.y+off[1], n.z+off[2]
			if nx < 0 || nx >= voxel.ChunkSizeX || nz < 0 || nz >= voxel.ChunkSizeZ || ny < 0 || ny >= voxel.ChunkSizeY {
				continue
			}
			b := c.GetBlock(nx, ny, nz)
			if voxel.IsSolid(b) && !voxel.IsTransparent(b) {
				continue
			}
			curSky, curBlk := world.UnpackLight(c.GetLight(nx, ny, nz))
			next := n.level - 1
			if next > curSky {
				c.SetLight(nx, ny, nz, world.PackLight(next, curBlk))
				queue = append(queue, lightNode{nx, ny, nz, next})
			}
		}
	}
}

func floodBlock(c *world.Chunk, queue []lightNode) {
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.level <= 1 {
			continue
		}
		for _, off := range neighborOffsets {
			nx, ny, nz := n.x+off[0], n.y+off[1], n.z+off[2]
			if nx < 0 || nx >= voxel.ChunkSizeX || nz < 0 || nz >= voxel.ChunkSizeZ || ny < 0 || ny >= voxel.ChunkSizeY {
				continue
			}
			b := c.GetBlock(nx, ny, nz)
			if voxel.IsSolid(b) && !voxel.IsTransparent(b) {
				continue
			}
			curSky, curBlk := world.UnpackLight(c.GetLight(nx, ny, nz))
			next := n.level - 1
			if next > curBlk {
				c.SetLight(nx, ny, nz, world.PackLight(curSky, next))
				queue = append(queue, lightNode{nx, ny, nz, next})
			}
		}
	}
}

// removeSky and removeBlock run the subtractive half of an edit (spec
// §4.3's light_remove): given the prior level stored at the edit site,
// clear every reachable cell whose stored value is strictly less than the
// level being removed (it could only have been lit by this source), and
// collect cells whose stored value is still at least that level (they have
// their own independent source) into a refill queue, which is re-flooded
// afterward so independent sources repaint anything cleared next to them.
func removeSky(c *world.Chunk, queue []lightNode) {
	var refill []lightNode
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, off := range neighborOffsets {
			nx, ny, nz := n.x+off[0], n.y+off[1], n.z+off[2]
			if nx < 0 || nx >= voxel.ChunkSizeX || nz < 0 || nz >= voxel.ChunkSizeZ || ny < 0 || ny >= voxel.ChunkSizeY {
				continue
			}
			curSky, curBlk := world.UnpackLight(c.GetLight(nx, ny, nz))
			if curSky == 0 {
				continue
			}
			if curSky < n.level {
				c.SetLight(nx, ny, nz, world.PackLight(0, curBlk))
				queue = append(queue, lightNode{nx, ny, nz, curSky})
			} else {
				refill = append(refill, lightNode{nx, ny, nz, curSky})
			}
		}
	}
	floodSky(c, refill)
}

func removeBlock(c *world.Chunk, queue []lightNode) {
	var refill []lightNode
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, off := range neighborOffsets {
			nx, ny, nz := n.x+off[0], n.y+off[1], n.z+off[2]
			if nx < 0 || nx >= voxel.ChunkSizeX || nz < 0 || nz >= voxel.ChunkSizeZ || ny < 0 || ny >= voxel.ChunkSizeY {
				continue
			}
			curSky, curBlk := world.UnpackLight(c.GetLight(nx, ny, nz))
			if curBlk == 0 {
				continue
			}
			if curBlk < n.level {
				c.SetLight(nx, ny, nz, world.PackLight(curSky, 0))
				queue = append(queue, lightNode{nx, ny, nz, curBlk})
			} else {
				refill = append(refill, lightNode{nx, ny, nz, curBlk})
			}
		}
	}
	floodBlock(c, refill)
}

// UpdateBlock re-lights the volume around one edited block (spec §4.3: "On
// placing an opaque block: enqueue light_remove ... carrying the prior
// value; remove cascades until neighbors have lower values. On removing a
// block: compute from neighbors' max and flood-fill add"). The edited
// cell's previous stored level, read before it's overwritten, seeds the
// subtractive removeSky/removeBlock pass whenever the cell got darker
// (turned opaque, or its own emission dropped); removeSky/removeBlock
// internally re-flood any independent source they uncover. A brighter
// outcome (a new light source, or a wall removed exposing a neighbor) is
// handled by the existing additive floodSky/floodBlock reseed from
// neighbors afterward.
func (e *Engine) UpdateBlock(c *world.Chunk, w world.NeighborLookup, lx, ly, lz int) {
	b := c.GetBlock(lx, ly, lz)
	prevSky, prevBlk := world.UnpackLight(c.GetLight(lx, ly, lz))
	opaque := voxel.IsSolid(b) && !voxel.IsTransparent(b)

	newBlk := uint8(0)
	if !opaque && voxel.EmitsLight(b) {
		newBlk = voxel.LightLevel(b)
	}

	if opaque {
		c.SetLight(lx, ly, lz, world.PackLight(0, 0))
		if prevSky > 0 {
			removeSky(c, []lightNode{{lx, ly, lz, prevSky}})
		}
		if prevBlk > 0 {
			removeBlock(c, []lightNode{{lx, ly, lz, prevBlk}})
		}
	} else if newBlk < prevBlk {
		c.SetLight(lx, ly, lz, world.PackLight(prevSky, newBlk))
		removeBlock(c, []lightNode{{lx, ly, lz, prevBlk}})
	}

	var skyQueue, blockQueue []lightNode
	for _, off := range neighborOffsets {
		nx, ny, nz := lx+off[0], ly+off[1], lz+off[2]
		if nx < 0 || nx >= voxel.ChunkSizeX || nz < 0 || nz >= voxel.ChunkSizeZ || ny < 0 || ny >= voxel.ChunkSizeY {
			continue
		}
		sky, blk := world.UnpackLight(c.GetLight(nx, ny, nz))
		if sky > 0 {
			skyQueue = append(skyQueue, lightNode{nx, ny, nz, sky})
		}
		if blk > 0 {
			blockQueue = append(blockQueue, lightNode{nx, ny, nz, blk})
		}
	}
	if !opaque && newBlk > prevBlk {
		c.SetLight(lx, ly, lz, world.PackLight(prevSky, newBlk))
		blockQueue = append(blockQueue, lightNode{lx, ly, lz, newBlk})
	}

	floodSky(c, skyQueue)
	floodBlock(c, blockQueue)
}
