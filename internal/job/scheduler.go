package job

import (
	"sync"

	"zigcraft/internal/voxel"
)

// GenerateFunc performs terrain generation for one chunk column.
type GenerateFunc func(coord voxel.ChunkCoord)

// MeshFunc rebuilds the mesh for one dirty subchunk.
type MeshFunc func(coord voxel.ChunkCoord, subchunkIndex int)

// meshJob pairs a chunk coordinate with the dirty subchunk index within it;
// the mesh queue is keyed by this pair so two dirty subchunks in the same
// column can be worked independently.
type meshJob struct {
	coord voxel.ChunkCoord
	index int
}

// Scheduler owns the generation and meshing pipelines: two worker pools,
// each drained from its own priority queue, plus a bounded upload queue that
// the render thread drains at most N entries per frame (spec §4.4/§4.5).
//
// Grounded on the teacher's ChunkStreamer worker pool (worker count fixed at
// construction, fed from a channel); generalized to two independently sized
// pools over priority queues instead of one FIFO channel.
type Scheduler struct {
	genQueue *Queue

	meshMu      sync.Mutex
	meshByCoord map[voxel.ChunkCoord]map[int]int64 // coord -> subchunk index -> dist
	meshOrder   *meshHeap

	genNotify  chan struct{}
	meshNotify chan struct{}
	quit       chan struct{}
	wg         sync.WaitGroup

	upload     chan UploadTask
	uploadOnce sync.Once
}

// UploadTask is a finished mesh ready for the render thread to upload to the
// GPU via the RHI (spec §4.4 state "meshed" -> "uploaded").
type UploadTask struct {
	Coord          voxel.ChunkCoord
	SubchunkIndex  int
}

// NewScheduler builds a scheduler with genWorkers goroutines draining the
// generation queue and meshWorkers goroutines draining the meshing queue.
// uploadCapacity bounds the upload channel (spec default: small, e.g. 256,
// since the render thread drains a handful per frame).
func NewScheduler(genWorkers, meshWorkers, uploadCapacity int, gen GenerateFunc, mesh MeshFunc) *Scheduler {
	if genWorkers < 1 {
		genWorkers = 1
	}
	if meshWorkers < 1 {
		meshWorkers = 1
	}
	s := &Scheduler{
		genQueue:    NewQueue(),
		meshByCoord: make(map[voxel.ChunkCoord]map[int]int64),
		meshOrder:   newMeshHeap(),
		genNotify:   make(chan struct{}, 1),
		meshNotify:  make(chan struct{}, 1),
		quit:        make(chan struct{}),
		upload:      make(chan UploadTask, uploadCapacity),
	}

	for i := 0; i < genWorkers; i++ {
		s.wg.Add(1)
		go s.genWorker(gen)
	}
	for i := 0; i < meshWorkers; i++ {
		s.wg.Add(1)
		go s.meshWorker(mesh)
	}
	return s
}

// Close stops all workers and waits for in-flight jobs to finish.
func (s *Scheduler) Close() {
	close(s.quit)
	s.wg.Wait()
}

func (s *Scheduler) wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// EnqueueGenerate requests generation of coord at the given priority
// distance. A coordinate already queued has its distance updated instead of
// being queued twice (spec §4.4).
func (s *Scheduler) EnqueueGenerate(coord voxel.ChunkCoord, dist int64) {
	s.genQueue.Push(coord, dist)
	s.wake(s.genNotify)
}

// CancelGenerate removes a pending generation request, used on eviction.
func (s *Scheduler) CancelGenerate(coord voxel.ChunkCoord) {
	s.genQueue.Remove(coord)
}

func (s *Scheduler) genWorker(gen GenerateFunc) {
	defer s.wg.Done()
	for {
		coord, ok := s.genQueue.Pop()
		if !ok {
			select {
			case <-s.quit:
				return
			case <-s.genNotify:
				continue
			}
		}
		gen(coord)
	}
}

// EnqueueMesh requests a remesh of one dirty subchunk. Distance is the
// chunk's priority distance to the observer; a subchunk already queued has
// its distance refreshed in place.
func (s *Scheduler) EnqueueMesh(coord voxel.ChunkCoord, subchunkIndex int, dist int64) {
	s.meshMu.Lock()
	byIdx, ok := s.meshByCoord[coord]
	if !ok {
		byIdx = make(map[int]int64)
		s.meshByCoord[coord] = byIdx
	}
	if _, already := byIdx[subchunkIndex]; !already {
		byIdx[subchunkIndex] = dist
		s.meshOrder.push(meshJob{coord: coord, index: subchunkIndex}, dist)
	} else {
		byIdx[subchunkIndex] = dist
		s.meshOrder.updateDist(meshJob{coord: coord, index: subchunkIndex}, dist)
	}
	s.meshMu.Unlock()
	s.wake(s.meshNotify)
}

// CancelMeshForChunk removes all pending mesh jobs for a chunk, used on
// eviction.
func (s *Scheduler) CancelMeshForChunk(coord voxel.ChunkCoord) {
	s.meshMu.Lock()
	defer s.meshMu.Unlock()
	byIdx, ok := s.meshByCoord[coord]
	if !ok {
		return
	}
	for idx := range byIdx {
		s.meshOrder.remove(meshJob{coord: coord, index: idx})
	}
	delete(s.meshByCoord, coord)
}

func (s *Scheduler) meshWorker(mesh MeshFunc) {
	defer s.wg.Done()
	for {
		s.meshMu.Lock()
		j, ok := s.meshOrder.pop()
		if ok {
			if byIdx := s.meshByCoord[j.coord]; byIdx != nil {
				delete(byIdx, j.index)
				if len(byIdx) == 0 {
					delete(s.meshByCoord, j.coord)
				}
			}
		}
		s.meshMu.Unlock()

		if !ok {
			select {
			case <-s.quit:
				return
			case <-s.meshNotify:
				continue
			}
		}
		mesh(j.coord, j.index)
	}
}

// SubmitUpload enqueues a finished mesh for GPU upload. If the bounded
// upload queue is full the call blocks, applying backpressure to meshing
// workers rather than growing memory unboundedly (spec §4.4).
func (s *Scheduler) SubmitUpload(t UploadTask) {
	s.upload <- t
}

// DrainUploads pops at most max pending upload tasks, the render thread's
// per-frame budget (spec §4.4/§4.5 bounded upload queue).
func (s *Scheduler) DrainUploads(max int) []UploadTask {
	out := make([]UploadTask, 0, max)
	for i := 0; i < max; i++ {
		select {
		case t := <-s.upload:
			out = append(out, t)
		default:
			return out
		}
	}
	return out
}

// PendingGenerate reports the number of queued generation jobs.
func (s *Scheduler) PendingGenerate() int { return s.genQueue.Len() }

// PendingMesh reports the number of queued mesh jobs.
func (s *Scheduler) PendingMesh() int {
	s.meshMu.Lock()
	defer s.meshMu.Unlock()
	return s.meshOrder.Len()
}
