// Package world provides the tile grid, terrain model, and movement-cost data
// for the colony map. Tiles live in a flat array indexed by y*Width+x and are
// mutated in place for the life of a game session.
package world

// Biome classifies the base terrain of a tile.
type Biome uint8

const (
	BiomeGrass Biome = iota
	BiomeDirt
	BiomeSand
	BiomeStone
	BiomeSnow
	BiomePond // Impassable surface water
)

// BiomeName returns a human-readable name for a biome.
func BiomeName(b Biome) string {
	switch b {
	case BiomeGrass:
		return "Grass"
	case BiomeDirt:
		return "Dirt"
	case BiomeSand:
		return "Sand"
	case BiomeStone:
		return "Stone"
	case BiomeSnow:
		return "Snow"
	case BiomePond:
		return "Pond"
	default:
		return "Unknown"
	}
}

// Building enumerates placeable structures. BuildingEmpty is the sentinel for
// an unoccupied tile.
type Building uint8

const (
	BuildingEmpty Building = iota
	BuildingHQ
	BuildingQuarters  // Sleep target; raises colony capacity
	BuildingCanteen   // Eat target; needs water connectivity to serve food
	BuildingSocialHub // Relax target
	BuildingRoad
	BuildingMine
	BuildingGreenhouse
	BuildingWaterPump // Water source for connectivity propagation
	BuildingPipe
	BuildingResearchLab
)

// NumBuildings is the count of building types including the empty sentinel.
const NumBuildings = 11

// BuildingName returns a human-readable name for a building type.
func BuildingName(b Building) string {
	switch b {
	case BuildingEmpty:
		return "Empty"
	case BuildingHQ:
		return "Headquarters"
	case BuildingQuarters:
		return "Staff Quarters"
	case BuildingCanteen:
		return "Canteen"
	case BuildingSocialHub:
		return "Social Hub"
	case BuildingRoad:
		return "Road"
	case BuildingMine:
		return "Mine"
	case BuildingGreenhouse:
		return "Greenhouse"
	case BuildingWaterPump:
		return "Water Pump"
	case BuildingPipe:
		return "Pipe"
	case BuildingResearchLab:
		return "Research Lab"
	default:
		return "Unknown"
	}
}

// BuildingSize returns the footprint (width, height in tiles) of a building.
// Multi-tile structures keep authoritative state on their head tile only.
func BuildingSize(b Building) (int, int) {
	switch b {
	case BuildingHQ, BuildingResearchLab:
		return 2, 2
	case BuildingGreenhouse:
		return 2, 1
	default:
		return 1, 1
	}
}

// BuildTime returns the construction time (sim-seconds of assigned work) for
// a building type.
func BuildTime(b Building) float64 {
	switch b {
	case BuildingRoad, BuildingPipe:
		return 4
	case BuildingQuarters, BuildingCanteen, BuildingSocialHub:
		return 20
	case BuildingMine, BuildingGreenhouse, BuildingWaterPump:
		return 30
	case BuildingResearchLab:
		return 45
	case BuildingHQ:
		return 60
	default:
		return 10
	}
}

// BuildingCost returns the AGT price of placing a building.
func BuildingCost(b Building) float64 {
	switch b {
	case BuildingRoad:
		return 5
	case BuildingPipe:
		return 8
	case BuildingQuarters:
		return 60
	case BuildingCanteen:
		return 80
	case BuildingSocialHub:
		return 70
	case BuildingMine:
		return 120
	case BuildingGreenhouse:
		return 100
	case BuildingWaterPump:
		return 90
	case BuildingResearchLab:
		return 200
	case BuildingHQ:
		return 500
	default:
		return 0
	}
}

// Foliage marks surface features and resource deposits on a tile.
type Foliage uint8

const (
	FoliageNone Foliage = iota
	FoliageRocks
	FoliageShrub
	FoliageGoldVein    // Mineable; Integrity tracks remaining ore
	FoliageMineHole    // Exhausted vein
	FoliageIllegalCamp // Rehabilitation target
)

// FoliageName returns a human-readable name for a foliage marker.
func FoliageName(f Foliage) string {
	switch f {
	case FoliageNone:
		return "None"
	case FoliageRocks:
		return "Rocks"
	case FoliageShrub:
		return "Shrub"
	case FoliageGoldVein:
		return "Gold Vein"
	case FoliageMineHole:
		return "Mine Hole"
	case FoliageIllegalCamp:
		return "Illegal Camp"
	default:
		return "Unknown"
	}
}

// NoHead marks a tile that is not part of any multi-tile structure.
const NoHead = -1

// Tile is one cell of the world grid. Created once at generation time and
// mutated in place; never deleted, only re-typed back to BuildingEmpty.
type Tile struct {
	Index int `json:"index"`
	X     int `json:"x"`
	Y     int `json:"y"`

	Biome  Biome   `json:"biome"`
	Height float64 `json:"height"`

	Building Building `json:"building"`
	Foliage  Foliage  `json:"foliage"`

	// Construction state. Meaningful only on a structure head; non-head
	// tiles mirror the head and never carry independent truth.
	UnderConstruction bool    `json:"under_construction"`
	BuildTimeLeft     float64 `json:"build_time_left"`

	// HeadIndex points at the head tile of a multi-tile structure, or
	// NoHead when the tile stands alone.
	HeadIndex int `json:"head_index"`

	WaterConnected bool `json:"water_connected"`
	Locked         bool `json:"locked"`   // Non-playable border
	Explored       bool `json:"explored"` // Fog-of-war reveal

	Integrity     float64 `json:"integrity"`      // 0–100, mineable deposits
	RehabProgress float64 `json:"rehab_progress"` // 0–100, illegal camps
}
