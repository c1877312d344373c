// World generation using layered simplex noise.
// Generates height and moisture maps, derives biomes, scatters resource
// deposits, and stamps the starting base at the map center.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width      int   // Grid width in tiles
	Height     int   // Grid height in tiles
	Seed       int64 // Random seed (0 = random)
	Border     int   // Locked, non-playable border thickness
	PlaceStart bool  // Stamp the starting base at the center
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:      96,
		Height:     96,
		Border:     3,
		PlaceStart: true,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration and tests.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:      24,
		Height:     24,
		Seed:       42,
		Border:     1,
		PlaceStart: true,
	}
}

// Generate creates a complete grid with biomes, deposits, and (optionally)
// the starting base.
func Generate(cfg GenConfig) *Grid {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	heightNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	g := NewGrid(cfg.Width, cfg.Height)
	rng := rand.New(rand.NewSource(seed + 2))

	for i := range g.Tiles {
		t := &g.Tiles[i]
		x := float64(t.X)
		y := float64(t.Y)

		elev := octaveNoise(heightNoise, x, y, 4, 0.06, 0.5)
		moist := octaveNoise(moistNoise, x, y, 3, 0.05, 0.5)

		t.Height = elev
		t.Biome = deriveBiome(elev, moist)

		// Lock the non-playable border.
		if t.X < cfg.Border || t.Y < cfg.Border ||
			t.X >= cfg.Width-cfg.Border || t.Y >= cfg.Height-cfg.Border {
			t.Locked = true
		}
	}

	scatterDeposits(g, rng)

	if cfg.PlaceStart {
		placeStartingBase(g)
	}

	return g
}

// deriveBiome maps height and moisture to a biome.
func deriveBiome(elev, moist float64) Biome {
	if elev < 0.22 && moist > 0.6 {
		return BiomePond
	}
	if elev > 0.78 {
		if moist < 0.4 {
			return BiomeStone
		}
		return BiomeSnow
	}
	if moist < 0.3 {
		return BiomeSand
	}
	if moist < 0.45 {
		return BiomeDirt
	}
	return BiomeGrass
}

// scatterDeposits places gold veins on stony ground and cosmetic foliage
// elsewhere.
func scatterDeposits(g *Grid, rng *rand.Rand) {
	for i := range g.Tiles {
		t := &g.Tiles[i]
		if t.Locked || t.Biome == BiomePond {
			continue
		}
		switch t.Biome {
		case BiomeStone:
			if rng.Float64() < 0.12 {
				t.Foliage = FoliageGoldVein
				t.Integrity = 100
			} else if rng.Float64() < 0.2 {
				t.Foliage = FoliageRocks
			}
		case BiomeGrass, BiomeDirt:
			if rng.Float64() < 0.02 {
				t.Foliage = FoliageGoldVein
				t.Integrity = 100
			} else if rng.Float64() < 0.08 {
				t.Foliage = FoliageShrub
			}
		}
	}
}

// placeStartingBase stamps a completed HQ, quarters, canteen, social hub,
// and water pump near the map center and reveals the surrounding area.
func placeStartingBase(g *Grid) {
	cx := g.Width / 2
	cy := g.Height / 2

	// Clear ground for the base footprint.
	for dy := -4; dy <= 4; dy++ {
		for dx := -4; dx <= 4; dx++ {
			t := g.At(cx+dx, cy+dy)
			if t == nil || t.Locked {
				continue
			}
			if t.Biome == BiomePond {
				t.Biome = BiomeDirt
			}
			t.Foliage = FoliageNone
		}
	}

	stamp := func(b Building, x, y int) {
		if g.PlaceBuilding(b, x, y) {
			finishConstruction(g, g.Index(x, y))
		}
	}

	stamp(BuildingHQ, cx-1, cy-1)
	stamp(BuildingQuarters, cx+2, cy-1)
	stamp(BuildingCanteen, cx+2, cy+1)
	stamp(BuildingSocialHub, cx-2, cy+1)
	stamp(BuildingWaterPump, cx-2, cy-1)

	// Reveal fog around the base.
	RevealAround(g, g.Index(cx, cy), 8)
}

// finishConstruction marks a freshly stamped structure as complete.
func finishConstruction(g *Grid, head int) {
	t := g.Tile(head)
	if t == nil {
		return
	}
	w, h := BuildingSize(t.Building)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			ct := g.At(t.X+dx, t.Y+dy)
			if ct != nil {
				ct.UnderConstruction = false
				ct.BuildTimeLeft = 0
			}
		}
	}
}

// RevealAround clears fog-of-war in a Chebyshev radius around a tile.
// Returns the indices newly revealed.
func RevealAround(g *Grid, idx, radius int) []int {
	x := idx % g.Width
	y := idx / g.Width
	var revealed []int
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			t := g.At(x+dx, y+dy)
			if t != nil && !t.Explored {
				t.Explored = true
				revealed = append(revealed, t.Index)
			}
		}
	}
	return revealed
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// BiomeCounts returns a summary of biome distribution.
func BiomeCounts(g *Grid) map[Biome]int {
	counts := make(map[Biome]int)
	for i := range g.Tiles {
		counts[g.Tiles[i].Biome]++
	}
	return counts
}
