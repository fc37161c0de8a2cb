// Package player implements spec §4.7's player physics and block
// interaction: AABB/gravity movement swept against the voxel grid, jump and
// creative-flight toggling, a DDA-raycast hovered-block query, and block
// break/place.
//
// Grounded on the teacher's internal/player/state.go and movement.go. The
// teacher's state.go also carries inventory, hand-animation, and
// item-entity-pickup fields that depend on internal/inventory,
// internal/item, and internal/entity — none of which this rework carries
// forward, since the spec scopes this module to movement/camera/block-edit.
// Input is likewise abstracted behind an Intent value instead of the
// teacher's internal/input.InputManager, so this package has no dependency
// on a concrete input-polling backend.
package player

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"zigcraft/internal/world"
)

// GameMode selects the player rules: creative allows double-tap flight
// toggling and ignores damage; survival allows neither.
type GameMode int

const (
	GameModeSurvival GameMode = iota
	GameModeCreative
)

const (
	width     = 0.6
	height    = 1.8
	eyeHeight = 1.62
)

// Player is the moving, colliding, block-editing actor in one loaded World.
// It owns no renderer or input state; callers drive it with Update(dt,
// Intent) and read back Position/Yaw/Pitch/etc. each frame.
type Player struct {
	World *world.World

	Mode GameMode

	Position mgl32.Vec3
	Velocity mgl32.Vec3

	Yaw, Pitch float32

	OnGround  bool
	IsFlying  bool
	IsSprint  bool
	IsSneak   bool

	Health, MaxHealth float32
	FallDistance      float32

	lastJumpPress time.Time
	hasLastJump   bool
}

// New creates a Player standing at pos in the given world and game mode.
func New(w *world.World, mode GameMode, pos mgl32.Vec3) *Player {
	return &Player{
		World:     w,
		Mode:      mode,
		Position:  pos,
		Health:    20,
		MaxHealth: 20,
	}
}

// EyePosition returns the camera origin, eyeHeight above the feet anchor.
func (p *Player) EyePosition() mgl32.Vec3 {
	return mgl32.Vec3{p.Position.X(), p.Position.Y() + eyeHeight, p.Position.Z()}
}

// Width and Height expose the AABB dimensions used for collision and
// raycast-adjacency checks.
func (p *Player) Width() float32  { return width }
func (p *Player) Height() float32 { return height }

// ApplyDamage reduces Health by amount, floored at 0. Returns true if the
// player died (Health reached 0) as a result.
func (p *Player) ApplyDamage(amount float32) bool {
	if p.Mode == GameModeCreative {
		return false
	}
	p.Health -= amount
	if p.Health < 0 {
		p.Health = 0
	}
	return p.Health == 0
}
