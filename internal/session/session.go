// Package session owns one running world: the World, RHI device, render
// graph, and atmosphere, and drives the per-frame
// World.Update -> mesh-upload -> RenderGraph.Render pipeline (spec §9's
// "no process-wide mutable singleton" design note).
//
// Grounded on the teacher's internal/game.Session: its
// NewSession/Update/Render/Cleanup shape is kept, generalized from a
// GLFW-window-owning, inventory/menu/HUD-aware god object into a plain
// value the caller (cmd/zigcraft) owns, holding only the pieces this
// rework actually implements (world, rendergraph, rhi, settings, assets) -
// no player, inventory, menu, or HUD state; the caller passes the player's
// position and view in each frame.
package session

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"zigcraft/internal/assets"
	"zigcraft/internal/rendergraph"
	"zigcraft/internal/rhi"
	"zigcraft/internal/settings"
	"zigcraft/internal/voxel"
	"zigcraft/internal/world"
)

// Session is a single instance of "a world is currently open", owned by
// whatever layer is presenting it (cmd/zigcraft's main loop). Nothing
// about it is global: two Sessions could coexist in the same process.
type Session struct {
	Settings *settings.Settings
	World    *world.World
	Device   rhi.Device
	Graph    *rendergraph.Graph
	Pack     *assets.Pack
	Atlas    *assets.Atlas

	atmosphere rendergraph.Atmosphere
	toggles    rendergraph.Toggles

	lastEviction time.Time
	uploadBudget int

	uploaded map[subchunkKey]uploadedBuffers
}

type subchunkKey struct {
	coord voxel.ChunkCoord
	index int
}

type uploadedBuffers struct {
	opaque      rhi.Handle
	transparent rhi.Handle
}

// PlayerView is the subset of player state a frame needs, so this package
// does not have to import internal/player and create a cycle risk with
// internal/physics (session already sits above both).
type PlayerView struct {
	Position mgl32.Vec3
	View     mgl32.Mat4
	Proj     mgl32.Mat4
}

// New builds a Session from an already-open World, a Device the caller
// has Init'd, and the graph handles built from loaded shaders/targets.
func New(w *world.World, device rhi.Device, graph *rendergraph.Graph, pack *assets.Pack, st *settings.Settings) *Session {
	return &Session{
		Settings:     st,
		World:        w,
		Device:       device,
		Graph:        graph,
		Pack:         pack,
		uploadBudget: 4,
		uploaded:     make(map[subchunkKey]uploadedBuffers),
	}
}

// Close tears down the world and waits for the device to go idle before
// the caller destroys it, mirroring the teacher's Session.Cleanup order
// (world first, then GPU resources) and spec §4.4's cancellation sequence
// (stop jobs, wait_idle, drop chunk map).
func (s *Session) Close() {
	s.World.Close()
	s.Device.WaitIdle()
}

// Update advances the world simulation by dt seconds: recenters chunk
// streaming on the player, advances the atmosphere clock, uploads any
// freshly meshed subchunks within this frame's upload budget, and evicts
// far chunks' GPU buffers once per second (same one-second cadence as the
// teacher's lastEviction check in internal/game.Session.processWorldUpdates).
func (s *Session) Update(dt float64, playerPos mgl32.Vec3) {
	s.World.Update(playerPos)
	s.atmosphere.Advance(dt)
	s.uploadReadyMeshes()

	if time.Since(s.lastEviction) > time.Second {
		s.lastEviction = time.Now()
		for key, bufs := range s.uploaded {
			if s.World.GetChunk(key.coord) != nil {
				continue
			}
			if bufs.opaque != rhi.InvalidHandle {
				s.Device.DestroyBuffer(bufs.opaque)
			}
			if bufs.transparent != rhi.InvalidHandle {
				s.Device.DestroyBuffer(bufs.transparent)
			}
			delete(s.uploaded, key)
		}
	}
}

// uploadReadyMeshes drains up to the frame's upload budget of freshly
// built subchunk meshes and uploads them to the device, recording the
// resulting handles both on the World (MarkUploaded) and in this
// session's own map so Render can assemble draw calls without re-walking
// every chunk's subchunks each frame.
func (s *Session) uploadReadyMeshes() {
	for _, ready := range s.World.DrainReadyMeshes(s.uploadBudget) {
		sc := ready.Chunk.Subchunk(ready.Index)
		if sc == nil {
			continue
		}

		var opaqueHandle, transparentHandle rhi.Handle
		if sc.MeshOpaque != nil && sc.MeshOpaque.FaceCount > 0 {
			opaqueHandle = s.uploadMesh(sc.MeshOpaque)
		}
		if sc.MeshTransparent != nil && sc.MeshTransparent.FaceCount > 0 {
			transparentHandle = s.uploadMesh(sc.MeshTransparent)
		}

		s.World.MarkUploaded(ready.Coord, ready.Index, uint64(opaqueHandle), uint64(transparentHandle))
		s.uploaded[subchunkKey{ready.Coord, ready.Index}] = uploadedBuffers{opaqueHandle, transparentHandle}
	}
}

func (s *Session) uploadMesh(mesh *world.MeshBuffer) rhi.Handle {
	data := packUint32s(mesh.Vertices)
	h, err := s.Device.CreateBuffer(len(data), rhi.BufferVertex)
	if err != nil {
		return rhi.InvalidHandle
	}
	if err := s.Device.UploadBuffer(h, data); err != nil {
		s.Device.DestroyBuffer(h)
		return rhi.InvalidHandle
	}
	return h
}

func packUint32s(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// Render assembles the frame's draw-call list from currently-uploaded
// subchunk buffers and hands it to the render graph.
func (s *Session) Render(view PlayerView, viewportW, viewportH int) {
	draws := make([]rendergraph.DrawCall, 0, len(s.uploaded))
	for key, bufs := range s.uploaded {
		if bufs.opaque == rhi.InvalidHandle {
			continue
		}
		c := s.World.GetChunk(key.coord)
		if c == nil {
			continue
		}
		sc := c.Subchunk(key.index)
		if sc == nil || sc.MeshOpaque == nil {
			continue
		}
		model := subchunkModelMatrix(key.coord, key.index)
		draws = append(draws, rendergraph.DrawCall{
			VertexBuffer: bufs.opaque,
			VertexCount:  sc.MeshOpaque.FaceCount * 6,
			Model:        model,
		})
	}

	s.Graph.Render(rendergraph.FrameInputs{
		View:       view.View,
		Proj:       view.Proj,
		CamPos:     view.Position,
		Atmosphere: s.atmosphere,
		Toggles:    s.toggles,
		Viewport:   [2]int{viewportW, viewportH},
	}, draws)
}

func subchunkModelMatrix(coord voxel.ChunkCoord, index int) [16]float32 {
	x := float32(coord.X * voxel.ChunkSizeX)
	y := float32(index * voxel.SubchunkSize)
	z := float32(coord.Z * voxel.ChunkSizeZ)
	m := mgl32.Translate3D(x, y, z)
	return [16]float32(m)
}

// SetToggle flips one render-graph quality toggle at runtime (e.g. a
// debug keybind disabling shadows), validated against the known set so a
// typo'd name is reported rather than silently ignored.
func (s *Session) SetToggle(name string, enabled bool) error {
	switch name {
	case "shadows":
		s.toggles.DisableShadows = !enabled
	case "gpass":
		s.toggles.DisableGPass = !enabled
	case "ssao":
		s.toggles.DisableSSAO = !enabled
	case "clouds":
		s.toggles.DisableClouds = !enabled
	default:
		return fmt.Errorf("session: unknown toggle %q", name)
	}
	return nil
}

// Atmosphere returns the current frame's computed lighting state, read by
// callers (HUD, debug overlay) that want to display it.
func (s *Session) Atmosphere() rendergraph.Atmosphere { return s.atmosphere }
