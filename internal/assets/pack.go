// Package assets implements spec §6's resource-pack directory convention:
// assets/resourcepacks/<name>/{blocks,normals,roughness,displacement}/
// {block_name}.png, atlas stitching over the loaded textures, and a
// magenta-placeholder fallback for any texture that fails to load.
//
// Grounded on the teacher's pkg/blockmodel.Loader: its assetsPath-rooted,
// filepath.Join-based file lookup and its JSON decode-or-error shape are
// reused directly for block-name-to-file resolution, generalized from
// Minecraft-style model/blockstate JSON onto a flat per-map PNG
// convention; actual pixel decoding is grounded on
// internal/graphics/texture_util.go's image.Decode/image/draw use, the
// teacher's only other image-handling code.
package assets

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Map is one of the texture maps a resource pack may provide per block.
type Map string

const (
	MapBlocks       Map = "blocks"
	MapNormals      Map = "normals"
	MapRoughness    Map = "roughness"
	MapDisplacement Map = "displacement"
)

// TileSize is the fixed square tile dimension every atlas entry is resized
// into (mismatched source PNGs are stretched to fit rather than rejected, so a
// pack author's mistake degrades gracefully instead of aborting load).
const TileSize = 16

// Pack resolves and caches textures for one named resource pack directory.
type Pack struct {
	root  string
	name  string
	cache map[string]*image.NRGBA
}

// Open returns a Pack rooted at assetsRoot/resourcepacks/<name>. It does
// not itself validate the directory exists; missing files are handled
// per-texture by Load's placeholder fallback (spec §6's "missing resource
// pack -> surfaced as a warning, fall back to defaults/default pack" is
// the caller's responsibility once Load reports the miss).
func Open(assetsRoot, name string) *Pack {
	return &Pack{
		root:  filepath.Join(assetsRoot, "resourcepacks", name),
		name:  name,
		cache: make(map[string]*image.NRGBA),
	}
}

func (p *Pack) Name() string { return p.name }

// Load returns the decoded texture for blockName under the given map,
// reading {root}/{map}/{block_name}.png. On any read or decode failure it
// returns a magenta/black checkerboard placeholder and a non-nil error,
// so callers that only care about "did the pack have this" can check the
// error while still getting a usable texture to render.
func (p *Pack) Load(m Map, blockName string) (*image.NRGBA, error) {
	key := string(m) + "/" + blockName
	if img, ok := p.cache[key]; ok {
		return img, nil
	}

	path := filepath.Join(p.root, string(m), blockName+".png")
	img, err := loadPNG(path)
	if err != nil {
		placeholder := Placeholder(TileSize)
		return placeholder, fmt.Errorf("assets: %s: %w", path, err)
	}

	fitted := fitToTile(img, TileSize)
	p.cache[key] = fitted
	return fitted, nil
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// fitToTile draws src into a size x size NRGBA canvas, nearest-fitting
// rather than rejecting a source texture of an unexpected size.
func fitToTile(src image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// Placeholder returns the magenta/black checkerboard texture spec §6
// mandates for any missing or unreadable block texture, so a broken pack
// renders as an obvious visual error instead of a crash or invisible
// block.
func Placeholder(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	magenta := []byte{255, 0, 255, 255}
	black := []byte{0, 0, 0, 255}
	half := size / 2
	if half == 0 {
		half = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := magenta
			if (x/half+y/half)%2 == 1 {
				c = black
			}
			i := img.PixOffset(x, y)
			copy(img.Pix[i:i+4], c)
		}
	}
	return img
}
