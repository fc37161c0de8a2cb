package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, path string, size int, c color.Color) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func TestLoadReadsExistingTexture(t *testing.T) {
	root := t.TempDir()
	writeTestPNG(t, filepath.Join(root, "resourcepacks", "default", "blocks", "stone.png"), 16, color.NRGBA{128, 128, 128, 255})

	pack := Open(root, "default")
	img, err := pack.Load(MapBlocks, "stone")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != TileSize || img.Bounds().Dy() != TileSize {
		t.Fatalf("unexpected tile size: %v", img.Bounds())
	}
}

func TestLoadMissingTextureReturnsPlaceholder(t *testing.T) {
	root := t.TempDir()
	pack := Open(root, "default")

	img, err := pack.Load(MapBlocks, "nonexistent")
	if err == nil {
		t.Fatal("expected error for missing texture")
	}
	if img == nil {
		t.Fatal("expected a placeholder image even on error")
	}

	r, g, b, a := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 255 || a>>8 != 255 {
		t.Fatalf("placeholder corner should be magenta, got (%d,%d,%d,%d)", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestLoadCachesResult(t *testing.T) {
	root := t.TempDir()
	writeTestPNG(t, filepath.Join(root, "resourcepacks", "default", "blocks", "dirt.png"), 16, color.NRGBA{100, 60, 20, 255})

	pack := Open(root, "default")
	first, _ := pack.Load(MapBlocks, "dirt")
	second, _ := pack.Load(MapBlocks, "dirt")
	if first != second {
		t.Fatal("second Load should return the cached image")
	}
}

func TestBuildAtlasAssignsStableDistinctRects(t *testing.T) {
	root := t.TempDir()
	writeTestPNG(t, filepath.Join(root, "resourcepacks", "default", "blocks", "stone.png"), 16, color.NRGBA{128, 128, 128, 255})
	writeTestPNG(t, filepath.Join(root, "resourcepacks", "default", "blocks", "dirt.png"), 16, color.NRGBA{100, 60, 20, 255})

	pack := Open(root, "default")
	atlas := BuildAtlas(pack, MapBlocks, []string{"stone", "dirt", "grass"})

	if len(atlas.Tiles) != 3 {
		t.Fatalf("expected 3 tiles, got %d", len(atlas.Tiles))
	}
	stoneRect := atlas.Lookup("stone")
	dirtRect := atlas.Lookup("dirt")
	if stoneRect == dirtRect {
		t.Fatal("distinct block names must get distinct atlas rects")
	}
	// grass.png was never written; BuildAtlas must still place it rather than
	// panic or drop its entry.
	if _, ok := atlas.Tiles["grass"]; !ok {
		t.Fatal("missing-texture block should still get an atlas slot")
	}
}
