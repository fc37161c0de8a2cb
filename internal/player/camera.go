package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FrontVector returns the unit look direction derived from Yaw/Pitch
// (degrees), using the same yaw convention as horizontalWish: yaw 0 looks
// down +Z.
func (p *Player) FrontVector() mgl32.Vec3 {
	yaw := float64(p.Yaw) * math.Pi / 180
	pitch := float64(p.Pitch) * math.Pi / 180
	cosPitch := math.Cos(pitch)
	return mgl32.Vec3{
		float32(math.Sin(yaw) * cosPitch),
		float32(math.Sin(pitch)),
		float32(math.Cos(yaw) * cosPitch),
	}.Normalize()
}

// ViewMatrix returns the camera's look-at matrix from the eye position
// along FrontVector, world up (0,1,0).
func (p *Player) ViewMatrix() mgl32.Mat4 {
	eye := p.EyePosition()
	center := eye.Add(p.FrontVector())
	return mgl32.LookAtV(eye, center, mgl32.Vec3{0, 1, 0})
}
