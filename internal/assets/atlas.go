package assets

import (
	"image"
	"sort"

	"golang.org/x/image/draw"
)

// Atlas is a single square texture sheet holding every requested block's
// tile for one Map, plus the UV rectangle each block name was placed at.
// Generalizes the teacher's per-file texture lookup (one GL texture per
// block) into one shared sheet, the way a chunk mesher wants to sample
// many block faces from a single bound texture per draw call.
type Atlas struct {
	Image image.Image
	Tiles map[string]Rect
	Cols  int
	Rows  int
}

// Rect is a block's tile location within the atlas, in normalized [0,1]
// UV coordinates.
type Rect struct {
	U0, V0, U1, V1 float32
}

// BuildAtlas stitches one tile per name into a square grid sheet, sized to
// the smallest n x n grid that fits len(names) tiles. Any name the
// pack fails to load for is included as the magenta placeholder (spec §6
// fallback) rather than omitted, so atlas indices stay stable across a
// reload with a partially broken pack.
func BuildAtlas(pack *Pack, m Map, names []string) *Atlas {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	cols := gridSize(len(sorted))
	rows := cols
	if cols > 0 {
		rows = (len(sorted) + cols - 1) / cols
	}
	if rows == 0 {
		rows = 1
	}

	sheetW := cols * TileSize
	sheetH := rows * TileSize
	sheet := image.NewNRGBA(image.Rect(0, 0, sheetW, sheetH))

	tiles := make(map[string]Rect, len(sorted))
	for i, name := range sorted {
		tile, err := pack.Load(m, name)
		if err != nil {
			tile = Placeholder(TileSize)
		}
		col := i % cols
		row := i / cols
		dstRect := image.Rect(col*TileSize, row*TileSize, (col+1)*TileSize, (row+1)*TileSize)
		draw.Draw(sheet, dstRect, tile, image.Point{}, draw.Src)

		tiles[name] = Rect{
			U0: float32(col) / float32(cols),
			V0: float32(row) / float32(rows),
			U1: float32(col+1) / float32(cols),
			V1: float32(row+1) / float32(rows),
		}
	}

	return &Atlas{Image: sheet, Tiles: tiles, Cols: cols, Rows: rows}
}

// gridSize returns the smallest n such that n*n >= count, at least 1.
func gridSize(count int) int {
	n := 1
	for n*n < count {
		n++
	}
	return n
}

// Lookup returns the UV rect for name, or the first tile's rect if name
// was never requested (so a mesher referencing an unknown block tag still
// gets a stable, visible, if wrong, UV rather than a zero rect).
func (a *Atlas) Lookup(name string) Rect {
	if r, ok := a.Tiles[name]; ok {
		return r
	}
	return Rect{0, 0, 1.0 / float32(a.Cols), 1.0 / float32(a.Rows)}
}
