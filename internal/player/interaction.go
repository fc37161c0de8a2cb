package player

import (
	"zigcraft/internal/physics"
	"zigcraft/internal/voxel"
)

// BreakBlock sets the hovered block to air, if one is in reach. Returns
// true if a block was removed. World.SetBlock already marks the owning
// chunk(s) dirty and re-enqueues meshing and relighting (spec §4.7's
// "Block edit").
func (p *Player) BreakBlock() bool {
	hit := p.HoveredBlock()
	if !hit.Hit {
		return false
	}
	return p.World.SetBlock(hit.HitPosition[0], hit.HitPosition[1], hit.HitPosition[2], voxel.Air)
}

// PlaceBlock sets the cell adjacent to the hovered block's hit face to the
// given block type, refusing the placement if that cell would intersect
// the player's own AABB (spec §4.7).
func (p *Player) PlaceBlock(block voxel.BlockType) bool {
	hit := p.HoveredBlock()
	if !hit.Hit {
		return false
	}
	ax, ay, az := hit.AdjacentPosition[0], hit.AdjacentPosition[1], hit.AdjacentPosition[2]
	if physics.IntersectsBlock(p.Position, width, height, ax, ay, az) {
		return false
	}
	return p.World.SetBlock(ax, ay, az, block)
}
