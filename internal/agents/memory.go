// Agent memory — a cache of known building locations and recently visited
// tiles. Purely a lookup optimization and behavior-richness layer: it is
// dropped on save and rebuilt during play.
package agents

import "github.com/outpost-sim/outpost/internal/world"

// maxRecentTiles bounds the visited-tile ring.
const maxRecentTiles = 16

// Memory caches spatial knowledge for one agent.
type Memory struct {
	// KnownBuildings maps building type to head-tile indices the agent
	// believes exist. Refreshed by full scan on a lookup miss.
	KnownBuildings map[world.Building][]int

	RecentTiles  []int
	FavoriteSpot int
}

// NewMemory returns an empty memory with no favorite spot.
func NewMemory() Memory {
	return Memory{
		KnownBuildings: make(map[world.Building][]int),
		FavoriteSpot:   NoTarget,
	}
}

// RememberTile records a visited tile in the bounded ring.
func (m *Memory) RememberTile(idx int) {
	if n := len(m.RecentTiles); n > 0 && m.RecentTiles[n-1] == idx {
		return
	}
	m.RecentTiles = append(m.RecentTiles, idx)
	if len(m.RecentTiles) > maxRecentTiles {
		m.RecentTiles = m.RecentTiles[len(m.RecentTiles)-maxRecentTiles:]
	}
}

// NearestBuilding returns the closest completed building of the given type
// to the from tile, consulting the cache first and falling back to a full
// grid scan that refreshes it. The second result is false when none exists.
func (m *Memory) NearestBuilding(g *world.Grid, b world.Building, from int) (int, bool) {
	if m.KnownBuildings == nil {
		m.KnownBuildings = make(map[world.Building][]int)
	}

	if idx, ok := nearestOf(g, m.KnownBuildings[b], b, from); ok {
		return idx, true
	}

	// Cache miss or every cached entry gone stale: rescan.
	m.KnownBuildings[b] = g.FindBuildings(b)
	return nearestOf(g, m.KnownBuildings[b], b, from)
}

// nearestOf picks the candidate closest by Chebyshev distance, skipping
// entries that no longer hold the expected building.
func nearestOf(g *world.Grid, candidates []int, b world.Building, from int) (int, bool) {
	best := NoTarget
	bestDist := 0
	for _, idx := range candidates {
		t := g.Tile(idx)
		if t == nil || t.Building != b || t.UnderConstruction {
			continue
		}
		d := g.Chebyshev(from, idx)
		if best == NoTarget || d < bestDist {
			best = idx
			bestDist = d
		}
	}
	return best, best != NoTarget
}
