package terrain

import (
	"math"

	"zigcraft/internal/voxel"
)

// Biome is a point in climate space (temperature, humidity) carrying the
// surface dressing and feature-placement parameters for land columns.
// Ocean/beach are structural (driven by continentalness/slope in Phase C),
// not part of this table.
//
// Grounded on the teacher's internal/world/biome.go Biome struct and
// GetBiomeForCoords band thresholds; generalized from one noise-band lookup
// to a temperature/humidity grid so two neighboring biomes can blend (spec
// §4.1 Phase B forbids a hard-edged blob), and extended with TreeDensity
// since the teacher places no vegetation at all.
type Biome struct {
	ID          int
	Name        string
	Temp        float64 // 0=cold .. 1=hot, table coordinate
	Humidity    float64 // 0=dry .. 1=wet, table coordinate
	Top         voxel.BlockType
	Filler      voxel.BlockType
	TreeDensity float64 // chance [0,1] a grass column spawns a tree, Phase E
}

var (
	biomeDesert = &Biome{ID: 0, Name: "desert", Temp: 0.9, Humidity: 0.1, Top: voxel.Sand, Filler: voxel.Sand, TreeDensity: 0}
	biomeSavanna = &Biome{ID: 1, Name: "savanna", Temp: 0.75, Humidity: 0.35, Top: voxel.Grass, Filler: voxel.Dirt, TreeDensity: 0.01}
	biomePlains = &Biome{ID: 2, Name: "plains", Temp: 0.5, Humidity: 0.45, Top: voxel.Grass, Filler: voxel.Dirt, TreeDensity: 0.02}
	biomeForest = &Biome{ID: 3, Name: "forest", Temp: 0.5, Humidity: 0.7, Top: voxel.Grass, Filler: voxel.Dirt, TreeDensity: 0.12}
	biomeSwamp = &Biome{ID: 4, Name: "swamp", Temp: 0.55, Humidity: 0.9, Top: voxel.Grass, Filler: voxel.Dirt, TreeDensity: 0.06}
	biomeTaiga = &Biome{ID: 5, Name: "taiga", Temp: 0.25, Humidity: 0.6, Top: voxel.Grass, Filler: voxel.Dirt, TreeDensity: 0.1}
	biomeTundra = &Biome{ID: 6, Name: "tundra", Temp: 0.1, Humidity: 0.3, Top: voxel.SnowBlock, Filler: voxel.Dirt, TreeDensity: 0.01}
)

// biomeTable is the fixed set of land biomes; Phase B picks the two whose
// (Temp, Humidity) are closest to the column's climate sample.
var biomeTable = []*Biome{biomeDesert, biomeSavanna, biomePlains, biomeForest, biomeSwamp, biomeTaiga, biomeTundra}

// BiomeBlend is the result of Phase B's two-nearest-biome lookup: the column
// never hard-switches biomes, it linearly blends Primary and Secondary by T.
type BiomeBlend struct {
	Primary   *Biome
	Secondary *Biome
	T         float64 // 0 = pure Primary, 1 = pure Secondary
}

func climateDist2(temp, humidity float64, b *Biome) float64 {
	dt := temp - b.Temp
	dh := humidity - b.Humidity
	return dt*dt + dh*dh
}

// blendBiomes finds the two closest biomes in climate space and a blend
// factor proportional to their relative distance, so biome borders are a
// smooth gradient rather than a hard edge.
func blendBiomes(temp, humidity float64) BiomeBlend {
	var best, second *Biome
	bestD, secondD := maxFloat, maxFloat
	for _, b := range biomeTable {
		d := climateDist2(temp, humidity, b)
		if d < bestD {
			second, secondD = best, bestD
			best, bestD = b, d
		} else if d < secondD {
			second, secondD = b, d
		}
	}
	if second == nil {
		second = best
	}

	bd, sd := math.Sqrt(bestD), math.Sqrt(secondD)
	denom := bd + sd
	t := 0.0
	if denom > 0 {
		t = bd / denom // 0 when sample sits exactly on `best`, ->0.5 at the midpoint
	}
	return BiomeBlend{Primary: best, Secondary: second, T: clamp01(t)}
}

const maxFloat = 1.0e18
