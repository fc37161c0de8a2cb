package job

import (
	"sync"
	"testing"
	"time"

	"zigcraft/internal/voxel"
)

func TestSchedulerGeneratesEnqueuedChunks(t *testing.T) {
	var mu sync.Mutex
	seen := map[voxel.ChunkCoord]bool{}
	done := make(chan struct{}, 4)

	gen := func(coord voxel.ChunkCoord) {
		mu.Lock()
		seen[coord] = true
		mu.Unlock()
		done <- struct{}{}
	}
	mesh := func(voxel.ChunkCoord, int) {}

	s := NewScheduler(2, 1, 16, gen, mesh)
	defer s.Close()

	coords := []voxel.ChunkCoord{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 0, Z: 1}, {X: -1, Z: -1}}
	for _, c := range coords {
		s.EnqueueGenerate(c, ChunkDist2(c, voxel.ChunkCoord{}))
	}

	for range coords {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for generation jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, c := range coords {
		if !seen[c] {
			t.Fatalf("chunk %v was never generated", c)
		}
	}
}

func TestSchedulerUploadQueueBounded(t *testing.T) {
	gen := func(voxel.ChunkCoord) {}
	mesh := func(voxel.ChunkCoord, int) {}
	s := NewScheduler(1, 1, 2, gen, mesh)
	defer s.Close()

	s.SubmitUpload(UploadTask{Coord: voxel.ChunkCoord{X: 0, Z: 0}, SubchunkIndex: 0})
	s.SubmitUpload(UploadTask{Coord: voxel.ChunkCoord{X: 1, Z: 0}, SubchunkIndex: 1})

	got := s.DrainUploads(4)
	if len(got) != 2 {
		t.Fatalf("DrainUploads() returned %d tasks; want 2", len(got))
	}
	if more := s.DrainUploads(4); len(more) != 0 {
		t.Fatalf("expected empty drain after consuming queue, got %d", len(more))
	}
}

func TestSchedulerCancelGenerateRemovesPending(t *testing.T) {
	block := make(chan struct{})
	gen := func(voxel.ChunkCoord) { <-block }
	mesh := func(voxel.ChunkCoord, int) {}

	s := NewScheduler(1, 1, 4, gen, mesh)
	defer func() {
		close(block)
		s.Close()
	}()

	busy := voxel.ChunkCoord{X: 0, Z: 0}
	queued := voxel.ChunkCoord{X: 9, Z: 9}
	s.EnqueueGenerate(busy, 0)
	time.Sleep(20 * time.Millisecond) // let the single worker pick up busy
	s.EnqueueGenerate(queued, 1)
	s.CancelGenerate(queued)

	if s.genQueue.Contains(queued) {
		t.Fatal("expected cancelled coordinate to be removed from queue")
	}
}
