package player

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"zigcraft/internal/physics"
)

// Intent is one tick's worth of abstracted player input: movement and
// action flags, already resolved from whatever raw input backend a caller
// uses. This stands in for the teacher's internal/input.InputManager
// polling, which this rework doesn't carry forward.
type Intent struct {
	Forward, Back   bool
	Left, Right     bool
	Jump            bool
	Sneak           bool
	Sprint          bool
	LookDeltaX      float32 // yaw delta in degrees
	LookDeltaY      float32 // pitch delta in degrees
}

const (
	gravity          = 32.0
	terminalVelocity = -78.4
	walkSpeed        = 4.3
	sprintMultiplier = 1.3
	sneakMultiplier  = 0.3
	flySpeed         = 10.0
	jumpVelocity     = 9.4
	doubleTapWindow  = 300 * time.Millisecond
	maxPitch         = 89.0
)

// Update advances the player one tick: mouse-look, then gravity/jump/fly,
// then a Y-then-X-then-Z AABB sweep against the world, matching spec
// §4.7's "movement tick" exactly (apply gravity, set horizontal velocity
// from intent, sweep axis by axis, grounded iff the Y sweep was
// shortened).
func (p *Player) Update(dt float64, intent Intent) {
	p.applyLook(intent)
	p.applyJumpAndFly(intent)

	p.IsSprint = intent.Sprint && !intent.Sneak
	p.IsSneak = intent.Sneak

	moveX, moveZ := p.horizontalWish(intent)

	if p.IsFlying {
		vy := float32(0)
		if intent.Jump {
			vy = flySpeed
		} else if intent.Sneak {
			vy = -flySpeed
		}
		p.Velocity = mgl32.Vec3{moveX, vy, moveZ}
	} else {
		if !p.OnGround {
			p.Velocity[1] -= float32(gravity * dt)
			if p.Velocity[1] < terminalVelocity {
				p.Velocity[1] = terminalVelocity
			}
		}
		p.Velocity[0] = moveX
		p.Velocity[2] = moveZ
	}

	p.sweep(dt)
	p.updateFallState(dt)
}

// horizontalWish resolves the intent's forward/back/left/right flags
// against the player's yaw into a world-space XZ velocity, at walk, sprint,
// or sneak speed.
func (p *Player) horizontalWish(intent Intent) (float32, float32) {
	var fx, fz float32
	if intent.Forward {
		fz++
	}
	if intent.Back {
		fz--
	}
	if intent.Right {
		fx++
	}
	if intent.Left {
		fx--
	}
	if fx == 0 && fz == 0 {
		return 0, 0
	}

	speed := float32(walkSpeed)
	switch {
	case intent.Sprint && !intent.Sneak:
		speed *= sprintMultiplier
	case intent.Sneak:
		speed *= sneakMultiplier
	}

	yawRad := float64(p.Yaw) * math.Pi / 180
	sinY, cosY := float32(math.Sin(yawRad)), float32(math.Cos(yawRad))
	// forward vector in world space is (sin(yaw), cos(yaw)); right is its
	// perpendicular (cos(yaw), -sin(yaw)).
	wx := fz*sinY + fx*cosY
	wz := fz*cosY - fx*sinY
	norm := float32(math.Sqrt(float64(wx*wx + wz*wz)))
	if norm == 0 {
		return 0, 0
	}
	return wx / norm * speed, wz / norm * speed
}

// applyJumpAndFly handles jump-on-ground and the creative double-tap jump
// to toggle flight, within a 300ms window per spec §4.7.
func (p *Player) applyJumpAndFly(intent Intent) {
	if !intent.Jump {
		return
	}
	now := time.Now()
	if p.Mode == GameModeCreative {
		if p.hasLastJump && now.Sub(p.lastJumpPress) <= doubleTapWindow {
			p.IsFlying = !p.IsFlying
			p.hasLastJump = false
			return
		}
		p.lastJumpPress = now
		p.hasLastJump = true
	}
	if p.IsFlying {
		return
	}
	if p.OnGround {
		p.Velocity[1] = jumpVelocity
		p.OnGround = false
	}
}

func (p *Player) applyLook(intent Intent) {
	p.Yaw += intent.LookDeltaX
	p.Pitch += intent.LookDeltaY
	if p.Pitch > maxPitch {
		p.Pitch = maxPitch
	}
	if p.Pitch < -maxPitch {
		p.Pitch = -maxPitch
	}
}

// sweep moves the player by Velocity*dt, axis by axis in Y, X, Z order,
// shortening each axis's motion to the first contact distance and zeroing
// that velocity component on collision. Matches the teacher's movement.go
// axis-resolution order.
func (p *Player) sweep(dt float64) {
	p.OnGround = false

	dy := p.Velocity[1] * float32(dt)
	p.Position[1] = p.sweepAxis(1, dy)

	dx := p.Velocity[0] * float32(dt)
	p.Position[0] = p.sweepAxis(0, dx)

	dz := p.Velocity[2] * float32(dt)
	p.Position[2] = p.sweepAxis(2, dz)
}

// sweepAxis moves the player's position component along axis (0=X,1=Y,2=Z)
// by delta, stepping in small increments and stopping one increment short
// of the first block collision. Sets grounded/zeroes velocity on a blocked
// downward Y move.
func (p *Player) sweepAxis(axis int, delta float32) float32 {
	if delta == 0 {
		return p.Position[axis]
	}

	const step float32 = 0.05
	remaining := delta
	pos := p.Position

	for remaining != 0 {
		move := step
		if rem := float32(math.Abs(float64(remaining))); move > rem {
			move = rem
		}
		if remaining < 0 {
			move = -move
		}

		trial := pos
		trial[axis] += move
		if physics.Collides(p.World, trial, width, height) {
			if axis == 1 && move < 0 {
				p.OnGround = true
			}
			p.Velocity[axis] = 0
			break
		}
		pos = trial
		remaining -= move
	}
	return pos[axis]
}

func (p *Player) updateFallState(dt float64) {
	if p.IsFlying {
		p.FallDistance = 0
		return
	}
	if p.OnGround {
		if p.FallDistance > 3 {
			p.ApplyDamage(p.FallDistance - 3)
		}
		p.FallDistance = 0
		return
	}
	if p.Velocity[1] < 0 {
		p.FallDistance += -p.Velocity[1] * float32(dt)
	}
}
