package job

import "container/heap"

// meshEntry is one (coord, subchunk index) mesh job at a priority distance.
type meshEntry struct {
	job   meshJob
	dist  int64
	index int
}

type meshEntryHeap []*meshEntry

func (h meshEntryHeap) Len() int            { return len(h) }
func (h meshEntryHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h meshEntryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *meshEntryHeap) Push(x interface{}) {
	e := x.(*meshEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *meshEntryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// meshHeap indexes meshEntryHeap by (coord, index) for in-place priority
// updates and removal, mirroring Queue but keyed on the (chunk, subchunk)
// pair instead of a bare coordinate.
type meshHeap struct {
	h    meshEntryHeap
	byJob map[meshJob]*meshEntry
}

func newMeshHeap() *meshHeap {
	return &meshHeap{byJob: make(map[meshJob]*meshEntry)}
}

func (m *meshHeap) push(j meshJob, dist int64) {
	if e, ok := m.byJob[j]; ok {
		e.dist = dist
		heap.Fix(&m.h, e.index)
		return
	}
	e := &meshEntry{job: j, dist: dist}
	heap.Push(&m.h, e)
	m.byJob[j] = e
}

func (m *meshHeap) updateDist(j meshJob, dist int64) {
	if e, ok := m.byJob[j]; ok {
		e.dist = dist
		heap.Fix(&m.h, e.index)
	}
}

func (m *meshHeap) remove(j meshJob) {
	e, ok := m.byJob[j]
	if !ok {
		return
	}
	heap.Remove(&m.h, e.index)
	delete(m.byJob, j)
}

func (m *meshHeap) pop() (meshJob, bool) {
	if len(m.h) == 0 {
		return meshJob{}, false
	}
	e := heap.Pop(&m.h).(*meshEntry)
	delete(m.byJob, e.job)
	return e.job, true
}

func (m *meshHeap) Len() int { return len(m.h) }
