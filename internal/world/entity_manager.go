package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"zigcraft/internal/profiling"
)

// Ticker is implemented by anything the world advances once per tick:
// players, mobs, dropped items. Kept as an interface here (rather than in
// an entity package) so this package never imports one, avoiding the import
// cycle an entity->world dependency would otherwise create.
type Ticker interface {
	Update(dt float64)
	IsDead() bool
	SetDead()
	Position() mgl32.Vec3
}

// EntityManager owns the lifecycle of a world's entities: add, per-tick
// update, and compaction of dead entries.
type EntityManager struct {
	entities []Ticker
	mu       sync.RWMutex
}

// NewEntityManager creates an empty entity manager.
func NewEntityManager() *EntityManager {
	return &EntityManager{entities: make([]Ticker, 0)}
}

// Add registers an entity.
func (em *EntityManager) Add(e Ticker) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.entities = append(em.entities, e)
}

// Update advances every live entity by dt and compacts out dead ones.
func (em *EntityManager) Update(dt float64) {
	defer profiling.Track("world.UpdateEntities")()
	em.mu.Lock()
	defer em.mu.Unlock()

	live := 0
	for _, e := range em.entities {
		if e.IsDead() {
			continue
		}
		e.Update(dt)
		if !e.IsDead() {
			em.entities[live] = e
			live++
		}
	}
	em.entities = em.entities[:live]
}

// GetAll returns a defensive copy of the live entity slice.
func (em *EntityManager) GetAll() []Ticker {
	em.mu.RLock()
	defer em.mu.RUnlock()
	out := make([]Ticker, len(em.entities))
	copy(out, em.entities)
	return out
}
