package terrain

import "math"

// Noise primitives: deterministic value noise with integer lattice hashing,
// no external dependency. Grounded on the teacher's internal/world/noise.go
// (the only noise stack in the pack; every generator variant in the teacher
// repo is hand-rolled stdlib-only, so this is carried forward rather than
// introducing a library the corpus never reaches for). Extended here with a
// 3D variant (for cave density), a ridged transform, domain warping, and
// salted seeding so each named field (continentalness, peaks, erosion, ...)
// is sampled from an independent lattice while sharing one world seed.

func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// salt mixes a per-field constant into the world seed via SplitMix64's
// constant-multiply step, so salts as small as 1 still decorrelate fields.
func salt(seed int64, s uint64) int64 {
	v := uint64(seed) ^ (s * 0x9E3779B97F4A7C15)
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return int64(v)
}

func hash2(x, z int64, seed int64) uint64 {
	v := uint64(x)*0xD2B74407B1CE6E93 + uint64(z)*0x9E3779B97F4A7C15 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

func hash3(x, y, z int64, seed int64) uint64 {
	v := uint64(x)*0xD2B74407B1CE6E93 + uint64(y)*0xBF58476D1CE4E5B9 + uint64(z)*0x94D049BB133111EB + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

func lattice2(x, z int64, seed int64) float64 {
	return float64(hash2(x, z, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func lattice3(x, y, z int64, seed int64) float64 {
	return float64(hash3(x, y, z, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

// valueNoise2D returns a bilinearly-interpolated lattice value in [0,1].
func valueNoise2D(x, z float64, seed int64) float64 {
	x0, z0 := math.Floor(x), math.Floor(z)
	fx, fz := fade(x-x0), fade(z-z0)
	ix0, iz0 := int64(x0), int64(z0)

	v00 := lattice2(ix0, iz0, seed)
	v10 := lattice2(ix0+1, iz0, seed)
	v01 := lattice2(ix0, iz0+1, seed)
	v11 := lattice2(ix0+1, iz0+1, seed)

	i0 := lerp(v00, v10, fx)
	i1 := lerp(v01, v11, fx)
	return lerp(i0, i1, fz)
}

// valueNoise3D is the trilinear extension used for cave density.
func valueNoise3D(x, y, z float64, seed int64) float64 {
	x0, y0, z0 := math.Floor(x), math.Floor(y), math.Floor(z)
	fx, fy, fz := fade(x-x0), fade(y-y0), fade(z-z0)
	ix0, iy0, iz0 := int64(x0), int64(y0), int64(z0)

	c000 := lattice3(ix0, iy0, iz0, seed)
	c100 := lattice3(ix0+1, iy0, iz0, seed)
	c010 := lattice3(ix0, iy0+1, iz0, seed)
	c110 := lattice3(ix0+1, iy0+1, iz0, seed)
	c001 := lattice3(ix0, iy0, iz0+1, seed)
	c101 := lattice3(ix0+1, iy0, iz0+1, seed)
	c011 := lattice3(ix0, iy0+1, iz0+1, seed)
	c111 := lattice3(ix0+1, iy0+1, iz0+1, seed)

	x00 := lerp(c000, c100, fx)
	x10 := lerp(c010, c110, fx)
	x01 := lerp(c001, c101, fx)
	x11 := lerp(c011, c111, fx)
	y0v := lerp(x00, x10, fy)
	y1v := lerp(x01, x11, fy)
	return lerp(y0v, y1v, fz)
}

// fbm2D sums octaves of valueNoise2D, each at double the frequency and
// `persistence` of the amplitude of the previous, normalized back to [0,1].
func fbm2D(x, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	amp, freq, sum, norm := 1.0, 1.0, 0.0, 0.0
	for i := 0; i < octaves; i++ {
		sum += valueNoise2D(x*freq, z*freq, seed+int64(i)*131) * amp
		norm += amp
		amp *= persistence
		freq *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func fbm3D(x, y, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	amp, freq, sum, norm := 1.0, 1.0, 0.0, 0.0
	for i := 0; i < octaves; i++ {
		sum += valueNoise3D(x*freq, y*freq, z*freq, seed+int64(i)*131) * amp
		norm += amp
		amp *= persistence
		freq *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// ridged2D folds fbm2D around its midpoint so ridges (values near 1) trace
// sharp lines instead of smooth hills, used for the peaks field.
func ridged2D(x, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	v := fbm2D(x, z, seed, octaves, persistence, lacunarity)
	r := 1 - math.Abs(2*v-1)
	return r
}

// domainWarp2D offsets (x,z) by a secondary noise field before the caller
// samples its primary field at the warped position, breaking up the grid
// alignment any single fBm sample would otherwise show at low octave counts.
func domainWarp2D(x, z float64, seed int64, warpScale, warpAmp float64) (wx, wz float64) {
	ox := fbm2D(x*warpScale, z*warpScale, salt(seed, 0xD1), 2, 0.5, 2.0)*2 - 1
	oz := fbm2D(x*warpScale+100, z*warpScale+100, salt(seed, 0xD2), 2, 0.5, 2.0)*2 - 1
	return x + ox*warpAmp, z + oz*warpAmp
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
