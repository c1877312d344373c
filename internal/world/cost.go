package world

// Movement costs per tile. Roads are the cheapest traversal; rough biomes
// slow agents down. The minimum cost is 1.0 so that any path's total cost is
// bounded below by the Chebyshev distance, keeping the A* heuristic
// admissible.
const (
	costRoad     = 1.0
	costBuilding = 1.2
	costDefault  = 1.5
	costSand     = 2.0
	costSnow     = 2.2
	costStone    = 2.5
)

// MoveCost returns the traversal cost of entering the tile at idx.
// Impassable tiles report a very large cost; callers should gate on
// Passable first.
func (g *Grid) MoveCost(idx int) float64 {
	t := g.Tile(idx)
	if t == nil {
		return 1e9
	}
	if t.Building == BuildingRoad {
		return costRoad
	}
	if t.Building != BuildingEmpty {
		return costBuilding
	}
	switch t.Biome {
	case BiomeSand:
		return costSand
	case BiomeSnow:
		return costSnow
	case BiomeStone:
		return costStone
	default:
		return costDefault
	}
}

// Passable reports whether agents may traverse the tile at idx. Surface
// water and the locked border are excluded from path expansion; the
// destination tile itself is special-cased by the pathfinder.
func (g *Grid) Passable(idx int) bool {
	t := g.Tile(idx)
	if t == nil {
		return false
	}
	if t.Locked {
		return false
	}
	if t.Biome == BiomePond {
		return false
	}
	return true
}
