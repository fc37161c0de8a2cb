package terrain

// fields.go samples the named 2D noise fields Phase A/B build the heightmap
// and biome blend from. Each field is its own independently salted fBm/ridged
// sample, per spec §4.1 ("all samplers are seeded from (seed, salt); salts
// are fixed constants per field"), so regenerating a region from the same
// seed is byte-identical.

const (
	saltContinentalness uint64 = 1
	saltPeaks           uint64 = 2
	saltErosion         uint64 = 3
	saltTemperature     uint64 = 4
	saltHumidity        uint64 = 5
	saltDetail          uint64 = 6
	saltCaveRegion      uint64 = 7
	saltCaveDensity     uint64 = 8
	saltFeature         uint64 = 9
	saltExposure        uint64 = 10
)

// climateScale values: lower frequency = larger biomes/continents, matching
// the teacher's 1/400 biome scale and the teacher's terrain-height scale
// (roughly 1/128-1/64 in octaveNoise2D call sites across its generator).
const (
	continentalnessScale = 1.0 / 512.0
	peaksScale           = 1.0 / 160.0
	erosionScale         = 1.0 / 384.0
	climateScale         = 1.0 / 600.0
	detailScale          = 1.0 / 48.0
	caveRegionScale      = 1.0 / 256.0
	caveDensityScale     = 1.0 / 32.0
	exposureScale        = 1.0 / 300.0
)

// continentalness returns a [0,1] field: low values are ocean, high values
// are deep inland continent, feeding Phase A's base-height lerp.
func continentalness(seed int64, x, z float64) float64 {
	s := salt(seed, saltContinentalness)
	return fbm2D(x*continentalnessScale, z*continentalnessScale, s, 5, 0.5, 2.0)
}

// peaks is a ridged field: values near 1 trace sharp mountain ridgelines.
func peaks(seed int64, x, z float64) float64 {
	s := salt(seed, saltPeaks)
	return ridged2D(x*peaksScale, z*peaksScale, s, 4, 0.55, 2.1)
}

// erosion is high where terrain should be flattened (valleys, plains) and
// low where sharp relief should survive, gating the mountain mask.
func erosion(seed int64, x, z float64) float64 {
	s := salt(seed, saltErosion)
	return fbm2D(x*erosionScale, z*erosionScale, s, 4, 0.5, 2.0)
}

// temperature and humidity are the Phase B climate coordinates, each its own
// low-frequency fBm field independent of continentalness/peaks/erosion.
func temperature(seed int64, x, z float64) float64 {
	s := salt(seed, saltTemperature)
	return fbm2D(x*climateScale, z*climateScale, s, 3, 0.5, 2.0)
}

func humidity(seed int64, x, z float64) float64 {
	s := salt(seed, saltHumidity)
	wx, wz := domainWarp2D(x, z, s, 1.0/800.0, 250)
	return fbm2D(wx*climateScale, wz*climateScale, s, 3, 0.5, 2.0)
}

// detail is a high-frequency field added to the heightmap, attenuated by
// elevation so mountains stay sharp while lowlands stay gently bumpy.
func detail(seed int64, x, z float64) float64 {
	s := salt(seed, saltDetail)
	return fbm2D(x*detailScale, z*detailScale, s, 3, 0.5, 2.0)*2 - 1
}

// caveRegion is the 2D mask gating whether 3D cave density carves at all in
// a column (spec Phase D): only inside high-value regions does the 3D
// density field get a chance to open a cavity.
func caveRegion(seed int64, x, z float64) float64 {
	s := salt(seed, saltCaveRegion)
	return fbm2D(x*caveRegionScale, z*caveRegionScale, s, 3, 0.5, 2.0)
}

// caveDensity is the 3D field carved where caveRegion and depth-from-surface
// both permit it.
func caveDensity(seed int64, x, y, z float64) float64 {
	s := salt(seed, saltCaveDensity)
	return fbm3D(x*caveDensityScale, y*caveDensityScale*1.4, z*caveDensityScale, s, 3, 0.5, 2.0)
}

// exposureField is how open to wind/wave a column's coastline is: low near
// sheltered inlets, high along straight open coast. Feeds the beach-width
// and no-tree-band rules in Phase C/E.
func exposureField(seed int64, x, z float64) float64 {
	s := salt(seed, saltExposure)
	return fbm2D(x*exposureScale, z*exposureScale, s, 3, 0.5, 2.0)
}

// featureHash implements the spec's hash(seed, x, z, salt) feature-placement
// rule: placement decisions must be order-independent (not dependent on
// chunk generation order), so every candidate column is hashed directly
// rather than drawn from a sequential RNG stream.
func featureHash(seed int64, x, z int, extraSalt uint64) uint64 {
	return hash2(int64(x), int64(z), salt(seed, saltFeature+extraSalt))
}

// featureChance returns a deterministic [0,1) draw for one column, used to
// compare against a density like Biome.TreeDensity.
func featureChance(seed int64, x, z int, extraSalt uint64) float64 {
	return float64(featureHash(seed, x, z, extraSalt)&0xFFFFFFFF) / float64(0x100000000)
}
