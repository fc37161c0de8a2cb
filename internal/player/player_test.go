package player

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"zigcraft/internal/voxel"
	"zigcraft/internal/world"
)

type flatGenerator struct{ height int }

func (g flatGenerator) Generate(w world.ChunkWriter, _ voxel.ChunkCoord) {
	for x := 0; x < voxel.ChunkSizeX; x++ {
		for z := 0; z < voxel.ChunkSizeZ; z++ {
			for y := 0; y < g.height; y++ {
				w.SetBlock(x, y, z, voxel.Stone)
			}
		}
	}
	w.MarkAllDirty()
}

type noopMesher struct{}

func (noopMesher) BuildSubchunk(*world.Chunk, int, world.NeighborLookup) (*world.MeshBuffer, *world.MeshBuffer) {
	return &world.MeshBuffer{}, nil
}

type noopLighter struct{}

func (noopLighter) InitColumn(*world.Chunk, world.NeighborLookup)                {}
func (noopLighter) UpdateBlock(*world.Chunk, world.NeighborLookup, int, int, int) {}

func newTestWorld(t *testing.T, height int) *world.World {
	t.Helper()
	cfg := world.Config{GenRadius: 3, EvictRadius: 5, GenWorkers: 2, MeshWorkers: 2, UploadCapacity: 64}
	w := world.New(flatGenerator{height: height}, noopMesher{}, noopLighter{}, cfg)
	w.Update(mgl32.Vec3{0, 0, 0})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c := w.GetChunk(voxel.ChunkCoord{}); c != nil && c.State() >= world.StateGenerated {
			return w
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("world never generated origin chunk")
	return nil
}

func TestPlayerFallsAndLandsOnGround(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	p := New(w, GameModeSurvival, mgl32.Vec3{0.5, 10, 0.5})
	for i := 0; i < 600; i++ {
		p.Update(1.0/60.0, Intent{})
		if p.OnGround {
			break
		}
	}
	if !p.OnGround {
		t.Fatal("expected player to land on ground")
	}
	if p.Position.Y() < 3 || p.Position.Y() > 4.5 {
		t.Fatalf("Position.Y = %v; expected to settle near y=4 (top of stone)", p.Position.Y())
	}
}

func TestPlayerJumpRequiresGround(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	p := New(w, GameModeSurvival, mgl32.Vec3{0.5, 10, 0.5})
	p.Update(1.0/60.0, Intent{Jump: true})
	if p.Velocity.Y() > 0 {
		t.Fatal("expected jump to be ignored while airborne")
	}
}

func TestPlayerDoubleTapJumpTogglesFlightInCreative(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	p := New(w, GameModeCreative, mgl32.Vec3{0.5, 10, 0.5})
	p.Update(0.01, Intent{Jump: true})
	if p.IsFlying {
		t.Fatal("single jump tap should not toggle flight")
	}
	p.Update(0.01, Intent{Jump: true})
	if !p.IsFlying {
		t.Fatal("expected second jump tap within the window to toggle flight on")
	}
}

func TestPlayerDoubleTapJumpOutsideWindowDoesNotToggle(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	p := New(w, GameModeCreative, mgl32.Vec3{0.5, 10, 0.5})
	p.Update(0.01, Intent{Jump: true})
	p.lastJumpPress = p.lastJumpPress.Add(-time.Second)
	p.Update(0.01, Intent{Jump: true})
	if p.IsFlying {
		t.Fatal("jump taps outside the 300ms window should not toggle flight")
	}
}

func TestPlayerHoveredBlockAndBreak(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	p := New(w, GameModeSurvival, mgl32.Vec3{0.5, 6, 0.5})
	p.Pitch = -90 // look straight down

	hit := p.HoveredBlock()
	if !hit.Hit {
		t.Fatal("expected to see the stone floor below")
	}
	if hit.HitPosition != [3]int{0, 3, 0} {
		t.Fatalf("HitPosition = %v; want {0,3,0}", hit.HitPosition)
	}

	if !p.BreakBlock() {
		t.Fatal("expected BreakBlock to succeed")
	}
	if !w.IsAir(0, 3, 0) {
		t.Fatal("expected block to become air after break")
	}
}

func TestPlayerPlaceBlockRefusesSelfIntersection(t *testing.T) {
	w := newTestWorld(t, 4)
	defer w.Close()

	p := New(w, GameModeSurvival, mgl32.Vec3{0.5, 4, 0.5})
	p.Pitch = -90 // looking straight down at the floor directly beneath the feet

	if p.PlaceBlock(voxel.Stone) {
		t.Fatal("expected placement inside the player's own AABB to be refused")
	}
}

func TestApplyDamageClampsAtZeroAndSparesCreative(t *testing.T) {
	w := newTestWorld(t, 1)
	defer w.Close()

	p := New(w, GameModeSurvival, mgl32.Vec3{0.5, 4, 0.5})
	if died := p.ApplyDamage(100); !died {
		t.Fatal("expected lethal damage to report death")
	}
	if p.Health != 0 {
		t.Fatalf("Health = %v; want 0", p.Health)
	}

	creative := New(w, GameModeCreative, mgl32.Vec3{0.5, 4, 0.5})
	creative.ApplyDamage(100)
	if creative.Health != creative.MaxHealth {
		t.Fatal("expected creative mode to ignore damage")
	}
}
