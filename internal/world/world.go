// Package world owns the chunked block data model: the chunk map, the
// chunk lifecycle state machine, and the generation/meshing job pipeline
// that keeps loaded chunks in sync with an observer's position.
package world

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"zigcraft/internal/job"
	"zigcraft/internal/voxel"
)

// ChunkWriter is the block/light mutation surface a TerrainGenerator needs.
// Defined here (the consumer) rather than in internal/terrain (the
// producer) so this package never imports terrain: terrain.Generator's
// Generate method takes a ChunkWriter, importing world for the named type.
// *Chunk satisfies it directly.
type ChunkWriter interface {
	SetBlock(lx, ly, lz int, b voxel.BlockType) bool
	SetLight(lx, ly, lz int, v byte)
	MarkAllDirty()
}

// TerrainGenerator populates one chunk column's blocks. Implemented by
// internal/terrain.Generator.
type TerrainGenerator interface {
	Generate(w ChunkWriter, coord voxel.ChunkCoord)
}

// Mesher rebuilds the mesh buffers for one subchunk. Implemented by
// internal/mesher.Builder. neighbors resolves blocks/light across the
// chunk's XZ borders, since a Chunk alone only spans its own column.
type Mesher interface {
	BuildSubchunk(c *Chunk, index int, neighbors NeighborLookup) (opaque, transparent *MeshBuffer)
}

// Lighter computes or updates lighting for a freshly generated chunk, and
// relights incrementally after a single block edit. Implemented by
// internal/lighting.Engine.
type Lighter interface {
	InitColumn(c *Chunk, w NeighborLookup)
	UpdateBlock(c *Chunk, w NeighborLookup, lx, ly, lz int)
}

// NeighborLookup lets a Lighter or Mesher resolve blocks across a chunk
// border without this package depending on those packages' border-crossing
// logic directly.
type NeighborLookup interface {
	BlockAt(x, y, z int) voxel.BlockType
	LightAt(x, y, z int) byte
}

// ReadyMesh is a finished subchunk mesh waiting for GPU upload, drained from
// the bounded upload queue by the render thread (spec §4.4/§4.5).
type ReadyMesh struct {
	Coord voxel.ChunkCoord
	Index int
	Chunk *Chunk
}

// World is the concurrency-safe chunk data model: a chunk map, an entity
// manager, and the job scheduler driving generation and meshing.
//
// Grounded on the teacher's World (composing a ChunkStore + EntityManager +
// TerrainGenerator + ChunkStreamer); generalized so a Chunk is a full
// 16x256x16 column instead of one 16-tall Y-slice, and the single FIFO
// streamer is replaced by job.Scheduler's two priority queues.
type World struct {
	chunks    *ChunkMap
	entities  *EntityManager
	gen       TerrainGenerator
	mesher    Mesher
	lighter   Lighter
	scheduler *job.Scheduler

	observer     atomic.Value // voxel.ChunkCoord
	genRadius    int
	evictRadius  int
}

// Config bundles the tunables New needs.
type Config struct {
	GenRadius      int // spec §4.4 "generation radius R"
	EvictRadius    int // spec §4.4 "eviction radius E", E > R
	GenWorkers     int
	MeshWorkers    int
	UploadCapacity int
}

// DefaultConfig returns sane defaults for GenRadius/EvictRadius/worker
// counts, matching the teacher's own render-distance-driven defaults.
func DefaultConfig() Config {
	return Config{
		GenRadius:      8,
		EvictRadius:    10,
		GenWorkers:     4,
		MeshWorkers:    4,
		UploadCapacity: 256,
	}
}

// New creates a World wired to the given terrain generator, mesher, and
// lighter, and starts its background job workers.
func New(gen TerrainGenerator, mesher Mesher, lighter Lighter, cfg Config) *World {
	w := &World{
		chunks:      NewChunkMap(),
		entities:    NewEntityManager(),
		gen:         gen,
		mesher:      mesher,
		lighter:     lighter,
		genRadius:   cfg.GenRadius,
		evictRadius: cfg.EvictRadius,
	}
	w.observer.Store(voxel.ChunkCoord{})
	w.scheduler = job.NewScheduler(cfg.GenWorkers, cfg.MeshWorkers, cfg.UploadCapacity, w.runGenerate, w.runMesh)
	return w
}

// Close stops the background workers.
func (w *World) Close() { w.scheduler.Close() }

// runGenerate is the job.GenerateFunc bound to this World: generates the
// column, lights it, transitions empty -> generating -> generated, and then
// enqueues meshing for this chunk and any of its four neighbors whose own
// gate just became satisfied (spec §4.4).
func (w *World) runGenerate(coord voxel.ChunkCoord) {
	c := w.chunks.GetPinned(coord)
	if c == nil {
		return
	}
	defer c.Unpin()
	if !c.CompareAndSetState(StateEmpty, StateGenerating) {
		return
	}

	w.gen.Generate(c, coord)
	w.lighter.InitColumn(c, w.neighborLookup(coord))
	c.SkylightDone = true
	c.MarkAllDirty()
	c.SetState(StateGenerated)

	w.enqueueMeshIfReady(coord, c)

	// This chunk's data just became visible to its neighbors' meshers,
	// which until now treated this border as missing (opaque stone,
	// worldLookup.BlockAt). Re-check each neighbor: one waiting on this
	// chunk to satisfy its own 4-neighbor gate can now mesh for the first
	// time; one that already meshed against the stale stone fallback must
	// be remeshed so its border geometry catches up (spec §4.2's "when the
	// neighbor later loads, both chunks are remarked for remesh").
	for _, nb := range fourNeighbors(coord) {
		nc := w.chunks.Get(nb)
		if nc == nil {
			continue
		}
		switch nc.State() {
		case StateGenerated:
			w.enqueueMeshIfReady(nb, nc)
		case StateMeshing, StateMeshed, StateUploaded:
			nc.MarkAllDirty()
			ndist := job.ChunkDist2(nb, w.ObserverChunk())
			for _, idx := range nc.DirtySubchunks() {
				w.scheduler.EnqueueMesh(nb, idx, ndist)
			}
		}
	}
}

// fourNeighbors returns the four XZ-adjacent chunk coordinates of coord.
func fourNeighbors(coord voxel.ChunkCoord) [4]voxel.ChunkCoord {
	return [4]voxel.ChunkCoord{
		{X: coord.X + 1, Z: coord.Z},
		{X: coord.X - 1, Z: coord.Z},
		{X: coord.X, Z: coord.Z + 1},
		{X: coord.X, Z: coord.Z - 1},
	}
}

// neighborsReady reports whether all 4 XZ-adjacent chunks of coord are
// loaded and in state >= generated, the spec §4.4 gate a chunk must clear
// before its first mesh: meshing any earlier would let the mesher's
// missing-neighbor-as-opaque-stone fallback (worldLookup.BlockAt) leak into
// permanent border geometry instead of the rare, transient case it's meant
// to be.
func (w *World) neighborsReady(coord voxel.ChunkCoord) bool {
	for _, nb := range fourNeighbors(coord) {
		nc := w.chunks.Get(nb)
		if nc == nil {
			return false
		}
		switch nc.State() {
		case StateGenerated, StateMeshing, StateMeshed, StateUploaded:
		default:
			return false
		}
	}
	return true
}

// enqueueMeshIfReady enqueues every non-empty dirty subchunk of c for
// meshing, but only once neighborsReady holds; otherwise it leaves c's dirty
// flags set so a later call (triggered by a neighbor finishing generation)
// picks them up.
func (w *World) enqueueMeshIfReady(coord voxel.ChunkCoord, c *Chunk) {
	if c.State() != StateGenerated || !w.neighborsReady(coord) {
		return
	}
	dist := job.ChunkDist2(coord, w.ObserverChunk())
	for _, idx := range c.DirtySubchunks() {
		if c.Subchunk(idx).IsEmpty() {
			continue
		}
		w.scheduler.EnqueueMesh(coord, idx, dist)
	}
}

// runMesh is the job.MeshFunc bound to this World: builds a subchunk's mesh
// and submits it to the bounded upload queue.
func (w *World) runMesh(coord voxel.ChunkCoord, index int) {
	c := w.chunks.GetPinned(coord)
	if c == nil {
		return
	}
	defer c.Unpin()

	if !c.CompareAndSetState(StateGenerated, StateMeshing) {
		// A chunk can be remeshed after first upload (edits); allow that too.
		if c.State() != StateUploaded && c.State() != StateMeshed {
			return
		}
		c.SetState(StateMeshing)
	}

	opaque, transparent := w.mesher.BuildSubchunk(c, index, w.neighborLookup(coord))
	sc := c.Subchunk(index)
	sc.MeshOpaque, sc.MeshTransparent = opaque, transparent
	c.SetState(StateMeshed)

	w.scheduler.SubmitUpload(job.UploadTask{Coord: coord, SubchunkIndex: index})
}

// neighborLookup returns a NeighborLookup addressed in world block
// coordinates (the coord argument is unused), used by the lighting pass and
// mesher to resolve cross-chunk borders.
func (w *World) neighborLookup(_ voxel.ChunkCoord) NeighborLookup {
	return worldLookup{w: w}
}

type worldLookup struct{ w *World }

// BlockAt resolves a border query into a neighboring chunk. A chunk that
// isn't loaded yet is treated as solid stone, not air (spec §4.2): the
// 4-neighbor gate in enqueueMeshIfReady keeps this fallback rare and
// transient, and runGenerate remeshes both sides once the real neighbor
// data arrives.
func (l worldLookup) BlockAt(x, y, z int) voxel.BlockType {
	coord, lx, ly, lz := voxel.WorldToChunk(x, y, z)
	c := l.w.chunks.Get(coord)
	if c == nil {
		return voxel.Stone
	}
	return c.GetBlock(lx, ly, lz)
}

func (l worldLookup) LightAt(x, y, z int) byte {
	coord, lx, ly, lz := voxel.WorldToChunk(x, y, z)
	c := l.w.chunks.Get(coord)
	if c == nil {
		return 0
	}
	return c.GetLight(lx, ly, lz)
}

// ObserverChunk returns the chunk coordinate Update last centered on.
func (w *World) ObserverChunk() voxel.ChunkCoord {
	return w.observer.Load().(voxel.ChunkCoord)
}

// Update recenters chunk streaming on an observer's world position: it
// enqueues missing chunks within GenRadius for generation (nearest first)
// and evicts unpinned chunks beyond EvictRadius. The neighbor-ready remesh
// itself (a border treated as "missing = opaque stone" during meshing
// reconsidering once the real neighbor data exists) happens in runGenerate,
// triggered the moment that neighbor finishes generating rather than waiting
// for the next Update tick.
func (w *World) Update(observerPos mgl32.Vec3) {
	center, _, _, _ := voxel.WorldToChunk(int(observerPos.X()), 0, int(observerPos.Z()))
	w.observer.Store(center)

	r2 := w.genRadius * w.genRadius
	for dx := -w.genRadius; dx <= w.genRadius; dx++ {
		for dz := -w.genRadius; dz <= w.genRadius; dz++ {
			if dx*dx+dz*dz > r2 {
				continue
			}
			coord := voxel.ChunkCoord{X: center.X + dx, Z: center.Z + dz}
			c, created := w.chunks.GetOrCreate(coord)
			if created || c.State() == StateEmpty {
				w.scheduler.EnqueueGenerate(coord, job.ChunkDist2(coord, center))
			}
		}
	}

	w.chunks.EvictFar(center, w.evictRadius)
}

// DrainReadyMeshes pops up to max finished subchunk meshes for GPU upload,
// the render thread's per-frame upload budget (spec §4.5).
func (w *World) DrainReadyMeshes(max int) []ReadyMesh {
	tasks := w.scheduler.DrainUploads(max)
	out := make([]ReadyMesh, 0, len(tasks))
	for _, t := range tasks {
		c := w.chunks.Get(t.Coord)
		if c == nil {
			continue
		}
		out = append(out, ReadyMesh{Coord: t.Coord, Index: t.SubchunkIndex, Chunk: c})
	}
	return out
}

// MarkUploaded records GPU buffer handles for a subchunk and transitions
// its owning chunk to StateUploaded once all non-empty subchunks have one.
func (w *World) MarkUploaded(coord voxel.ChunkCoord, index int, opaqueHandle, transparentHandle uint64) {
	c := w.chunks.Get(coord)
	if c == nil {
		return
	}
	sc := c.Subchunk(index)
	sc.OpaqueBuffer = opaqueHandle
	sc.TransparentBuffer = transparentHandle
	if c.State() == StateMeshed {
		c.SetState(StateUploaded)
	}
}

// GetChunk returns the loaded chunk at coord, or nil.
func (w *World) GetChunk(coord voxel.ChunkCoord) *Chunk { return w.chunks.Get(coord) }

// GetBlock returns the block type at world block coordinates.
func (w *World) GetBlock(x, y, z int) voxel.BlockType {
	coord, lx, ly, lz := voxel.WorldToChunk(x, y, z)
	c := w.chunks.Get(coord)
	if c == nil {
		return voxel.Air
	}
	return c.GetBlock(lx, ly, lz)
}

// IsAir reports whether the block at world coordinates is air.
func (w *World) IsAir(x, y, z int) bool { return w.GetBlock(x, y, z) == voxel.Air }

// SetBlock sets the block at world coordinates, marking the owning (and any
// bordering) subchunk(s) dirty and re-enqueuing their mesh jobs. Returns
// false if the chunk is not loaded or the block did not change.
func (w *World) SetBlock(x, y, z int, b voxel.BlockType) bool {
	coord, lx, ly, lz := voxel.WorldToChunk(x, y, z)
	c := w.chunks.Get(coord)
	if c == nil {
		return false
	}
	if !c.SetBlock(lx, ly, lz, b) {
		return false
	}
	w.lighter.UpdateBlock(c, w.neighborLookup(coord), lx, ly, lz)
	c.MarkDirty(ly)

	dist := job.ChunkDist2(coord, w.ObserverChunk())
	for _, idx := range c.DirtySubchunks() {
		w.scheduler.EnqueueMesh(coord, idx, dist)
	}

	// A block set on a chunk-XZ border changes what the neighbor's mesher
	// sees across that border; it must be remeshed too.
	for _, nb := range borderNeighbors(coord, lx, lz) {
		if nc := w.chunks.Get(nb); nc != nil {
			nc.MarkDirty(ly)
			ndist := job.ChunkDist2(nb, w.ObserverChunk())
			for _, idx := range nc.DirtySubchunks() {
				w.scheduler.EnqueueMesh(nb, idx, ndist)
			}
		}
	}
	return true
}

func borderNeighbors(coord voxel.ChunkCoord, lx, lz int) []voxel.ChunkCoord {
	var out []voxel.ChunkCoord
	if lx == 0 {
		out = append(out, voxel.ChunkCoord{X: coord.X - 1, Z: coord.Z})
	} else if lx == voxel.ChunkSizeX-1 {
		out = append(out, voxel.ChunkCoord{X: coord.X + 1, Z: coord.Z})
	}
	if lz == 0 {
		out = append(out, voxel.ChunkCoord{X: coord.X, Z: coord.Z - 1})
	} else if lz == voxel.ChunkSizeZ-1 {
		out = append(out, voxel.ChunkCoord{X: coord.X, Z: coord.Z + 1})
	}
	return out
}

// AddEntity adds an entity to the world.
func (w *World) AddEntity(e Ticker) { w.entities.Add(e) }

// UpdateEntities advances all entities by dt seconds and drops dead ones.
func (w *World) UpdateEntities(dt float64) { w.entities.Update(dt) }

// GetEntities returns a snapshot of all live entities.
func (w *World) GetEntities() []Ticker { return w.entities.GetAll() }

// ChunkMap exposes the underlying chunk map for packages that need a
// read-only view (e.g. the render graph culling loaded chunks).
func (w *World) ChunkMap() *ChunkMap { return w.chunks }

// PendingGenerate reports queued generation job count, for diagnostics.
func (w *World) PendingGenerate() int { return w.scheduler.PendingGenerate() }

// PendingMesh reports queued mesh job count, for diagnostics.
func (w *World) PendingMesh() int { return w.scheduler.PendingMesh() }
