package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// BenchmarkUpdateSteadyState measures repeated Update calls once the chunk
// set around the observer has stabilized (the common per-frame case: no new
// chunks to stream, only the eviction scan running).
func BenchmarkUpdateSteadyState(b *testing.B) {
	w := newTestWorld(4)
	defer w.Close()

	w.Update(mgl32.Vec3{0, 0, 0})
	waitUntilIdle(w)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Update(mgl32.Vec3{float32(i % 3), 0, float32((i / 3) % 3)})
	}
}

func waitUntilIdle(w *World) {
	for w.PendingGenerate() > 0 || w.PendingMesh() > 0 {
	}
}
