package job

import (
	"testing"

	"zigcraft/internal/voxel"
)

func TestQueuePopsClosestFirst(t *testing.T) {
	q := NewQueue()
	q.Push(voxel.ChunkCoord{X: 5, Z: 5}, 50)
	q.Push(voxel.ChunkCoord{X: 0, Z: 0}, 0)
	q.Push(voxel.ChunkCoord{X: 2, Z: 0}, 4)

	want := []voxel.ChunkCoord{{X: 0, Z: 0}, {X: 2, Z: 0}, {X: 5, Z: 5}}
	for _, w := range want {
		got, ok := q.Pop()
		if !ok || got != w {
			t.Fatalf("Pop() = %v, %v; want %v", got, ok, w)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestQueueDuplicatePushUpdatesDistance(t *testing.T) {
	q := NewQueue()
	coord := voxel.ChunkCoord{X: 1, Z: 1}
	if added := q.Push(coord, 100); !added {
		t.Fatal("expected first push to add")
	}
	if added := q.Push(coord, 1); added {
		t.Fatal("expected second push to update in place, not add")
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d; want 1", q.Len())
	}
}

func TestQueueRemove(t *testing.T) {
	q := NewQueue()
	coord := voxel.ChunkCoord{X: 3, Z: 3}
	q.Push(coord, 9)
	q.Remove(coord)
	if q.Contains(coord) {
		t.Fatal("expected coord removed")
	}
	if q.Len() != 0 {
		t.Fatalf("Len() = %d; want 0", q.Len())
	}
}

func TestChunkDist2(t *testing.T) {
	a := voxel.ChunkCoord{X: 0, Z: 0}
	b := voxel.ChunkCoord{X: 3, Z: 4}
	if d := ChunkDist2(a, b); d != 25 {
		t.Fatalf("ChunkDist2() = %d; want 25", d)
	}
}
