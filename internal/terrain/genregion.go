package terrain

import (
	"container/list"
	"sync"

	"zigcraft/internal/voxel"
)

// regionSpan is the chunk-radius of neighbor data a GenRegion pulls in
// around its center chunk: a 5x5 chunk working set (spec §3.5), wide enough
// that slope/shoreDistance/exposure at the center chunk's edges can see past
// their own chunk into the neighbor that will eventually sit next to it,
// giving mountains, coastlines, and biome borders a seam-free look without
// regenerating neighboring chunks themselves.
const regionSpan = 2 // chunks either side of center: (2*2+1)^2 = 5x5

const regionBlockSpan = (2*regionSpan + 1) * voxel.ChunkSizeX // 80

// column caches the per-(x,z) intermediate fields a region computes once and
// every phase of Generate reads from repeatedly.
type column struct {
	height      int
	slope       int // max abs height delta to an orthogonal neighbor
	continental float64
	temp        float64
	humid       float64
	blend       BiomeBlend
	isOcean     bool
}

// GenRegion holds the cached intermediate fields for the 80x80 block area
// centered on one chunk, indexed by local (x,z) in [0, regionBlockSpan).
type GenRegion struct {
	center voxel.ChunkCoord
	origin voxel.ChunkCoord // center - regionSpan, the region's corner chunk
	cols   []column         // regionBlockSpan * regionBlockSpan
}

func (r *GenRegion) at(worldX, worldZ int) *column {
	lx := worldX - r.origin.X*voxel.ChunkSizeX
	lz := worldZ - r.origin.Z*voxel.ChunkSizeZ
	if lx < 0 || lz < 0 || lx >= regionBlockSpan || lz >= regionBlockSpan {
		return nil
	}
	return &r.cols[lx*regionBlockSpan+lz]
}

// buildGenRegion computes the shape/climate fields for every column in the
// 5x5-chunk span around center, in two passes: heights first (Phase A, per
// column, no cross-column dependency), then slope (needs the heights of
// orthogonal neighbors, so it must follow).
func buildGenRegion(seed int64, center voxel.ChunkCoord) *GenRegion {
	origin := voxel.ChunkCoord{X: center.X - regionSpan, Z: center.Z - regionSpan}
	r := &GenRegion{center: center, origin: origin, cols: make([]column, regionBlockSpan*regionBlockSpan)}

	baseX := origin.X * voxel.ChunkSizeX
	baseZ := origin.Z * voxel.ChunkSizeZ

	for lx := 0; lx < regionBlockSpan; lx++ {
		for lz := 0; lz < regionBlockSpan; lz++ {
			wx, wz := baseX+lx, baseZ+lz
			c := &r.cols[lx*regionBlockSpan+lz]
			c.continental = continentalness(seed, float64(wx), float64(wz))
			c.temp = temperature(seed, float64(wx), float64(wz))
			c.humid = humidity(seed, float64(wx), float64(wz))
			c.blend = blendBiomes(c.temp, c.humid)
			c.height = shapeHeight(seed, wx, wz, c.continental)
			c.isOcean = c.continental < oceanContinentalness
		}
	}

	for lx := 0; lx < regionBlockSpan; lx++ {
		for lz := 0; lz < regionBlockSpan; lz++ {
			c := &r.cols[lx*regionBlockSpan+lz]
			maxDelta := 0
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, nz := lx+d[0], lz+d[1]
				if nx < 0 || nz < 0 || nx >= regionBlockSpan || nz >= regionBlockSpan {
					continue
				}
				n := &r.cols[nx*regionBlockSpan+nz]
				delta := c.height - n.height
				if delta < 0 {
					delta = -delta
				}
				if delta > maxDelta {
					maxDelta = delta
				}
			}
			c.slope = maxDelta
		}
	}

	return r
}

// regionCache is a small LRU cache of built regions keyed by center chunk.
// Generate asks for the region centered on the chunk being generated, so a
// cached region is reused only when that same chunk is generated again;
// neighboring chunks do not share a region and each builds its own 80x80
// field grid.
type regionCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List // front = most recently used
	index    map[voxel.ChunkCoord]*list.Element
}

type regionCacheEntry struct {
	coord  voxel.ChunkCoord
	region *GenRegion
}

func newRegionCache(capacity int) *regionCache {
	return &regionCache{capacity: capacity, ll: list.New(), index: make(map[voxel.ChunkCoord]*list.Element)}
}

func (rc *regionCache) get(seed int64, center voxel.ChunkCoord) *GenRegion {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if el, ok := rc.index[center]; ok {
		rc.ll.MoveToFront(el)
		return el.Value.(*regionCacheEntry).region
	}

	region := buildGenRegion(seed, center)
	el := rc.ll.PushFront(&regionCacheEntry{coord: center, region: region})
	rc.index[center] = el

	for rc.ll.Len() > rc.capacity {
		oldest := rc.ll.Back()
		if oldest == nil {
			break
		}
		rc.ll.Remove(oldest)
		delete(rc.index, oldest.Value.(*regionCacheEntry).coord)
	}

	return region
}
