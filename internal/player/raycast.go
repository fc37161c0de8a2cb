package player

import "zigcraft/internal/physics"

// HoveredBlock returns the block the player is looking at, within reach
// distance, via the DDA raycast in internal/physics.
func (p *Player) HoveredBlock() physics.RaycastResult {
	return physics.Raycast(p.World, p.EyePosition(), p.FrontVector(), physics.MinReachDistance, physics.MaxReachDistance)
}
