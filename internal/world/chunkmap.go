package world

import (
	"sync"

	"zigcraft/internal/profiling"
	"zigcraft/internal/voxel"
)

// ChunkMap is the concurrent chunk column table. A chunk's presence in the
// map is independent of its lifecycle State: a column can be in the map in
// StateEmpty (reserved, not yet generated) all the way through StateInvalid
// (evicted but briefly still referenced by an in-flight job).
type ChunkMap struct {
	mu       sync.RWMutex
	chunks   map[voxel.ChunkCoord]*Chunk
	modCount uint64
}

// NewChunkMap creates an empty chunk map.
func NewChunkMap() *ChunkMap {
	return &ChunkMap{chunks: make(map[voxel.ChunkCoord]*Chunk)}
}

// GetOrCreate returns the chunk at coord, creating and inserting an empty
// one (StateEmpty) if absent. The second return value reports whether this
// call created it. Uses double-checked locking so the common read path only
// pays for an RLock.
func (cm *ChunkMap) GetOrCreate(coord voxel.ChunkCoord) (*Chunk, bool) {
	cm.mu.RLock()
	c, ok := cm.chunks[coord]
	cm.mu.RUnlock()
	if ok {
		return c, false
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	if c, ok = cm.chunks[coord]; ok {
		return c, false
	}
	c = NewChunk(coord)
	cm.chunks[coord] = c
	cm.modCount++
	return c, true
}

// Get returns the chunk at coord, or nil if not loaded.
func (cm *ChunkMap) Get(coord voxel.ChunkCoord) *Chunk {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.chunks[coord]
}

// GetPinned looks up and pins a chunk atomically with respect to EvictFar,
// which takes the map's write lock to check Pinned() and delete. A plain
// Get followed by a separate Pin() call leaves a window where EvictFar can
// observe the chunk as unpinned and evict it before the caller pins it;
// holding the read lock across both steps here closes that window.
func (cm *ChunkMap) GetPinned(coord voxel.ChunkCoord) *Chunk {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	c, ok := cm.chunks[coord]
	if !ok {
		return nil
	}
	c.Pin()
	return c
}

// Has reports whether a chunk is present in the map.
func (cm *ChunkMap) Has(coord voxel.ChunkCoord) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	_, ok := cm.chunks[coord]
	return ok
}

// All returns a snapshot slice of every loaded chunk.
func (cm *ChunkMap) All() []*Chunk {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	out := make([]*Chunk, 0, len(cm.chunks))
	for _, c := range cm.chunks {
		out = append(out, c)
	}
	return out
}

// InRadius returns loaded chunks whose Euclidean XZ distance from center,
// in chunks, is within radius (inclusive), a circle in chunk space per
// spec §4.4.
func (cm *ChunkMap) InRadius(center voxel.ChunkCoord, radius int) []*Chunk {
	defer profiling.Track("world.ChunkMap.InRadius")()
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	var out []*Chunk
	r2 := radius * radius
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if dx*dx+dz*dz > r2 {
				continue
			}
			if c, ok := cm.chunks[voxel.ChunkCoord{X: center.X + dx, Z: center.Z + dz}]; ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// ModCount returns the number of structural map mutations (insertions or
// evictions) observed so far, used by callers to detect that a cached chunk
// listing needs to be refreshed.
func (cm *ChunkMap) ModCount() uint64 {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.modCount
}

// EvictFar removes loaded, unpinned chunks whose XZ distance from center
// exceeds the eviction radius. Pinned chunks (in flight in a job, or held by
// a reader) are skipped and retried on a later call; spec §4.4 requires
// eviction to never race a job holding a reference. Returns the count
// removed.
func (cm *ChunkMap) EvictFar(center voxel.ChunkCoord, evictRadius int) int {
	defer profiling.Track("world.ChunkMap.EvictFar")()
	cm.mu.Lock()
	defer cm.mu.Unlock()
	r2 := evictRadius * evictRadius
	removed := 0
	for coord, c := range cm.chunks {
		dx := coord.X - center.X
		dz := coord.Z - center.Z
		if dx*dx+dz*dz <= r2 {
			continue
		}
		if c.Pinned() {
			continue
		}
		c.SetState(StateInvalid)
		delete(cm.chunks, coord)
		cm.modCount++
		removed++
	}
	return removed
}
