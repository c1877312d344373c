package engine

import (
	"fmt"

	"github.com/outpost-sim/outpost/internal/agents"
	"github.com/outpost-sim/outpost/internal/effects"
	"github.com/outpost-sim/outpost/internal/jobs"
	"github.com/outpost-sim/outpost/internal/world"
)

// SecuritySystem drives the illegal-mining pressure loop. Camps appear on
// explored ground away from the base, each staffed by an illegal miner and
// bleeding minerals and ecology while it stands. A standing camp gets a
// rehabilitation job in the pool; security agents also target camps on
// patrol. When the last camp falls the remaining illegal actors scatter.
type SecuritySystem struct {
	Every float64
}

const (
	maxIllegalCamps = 2
	campChance      = 0.04
	campWarmupTicks = 300
	theftPerSecond  = 0.5 // Minerals siphoned per camp per sim-second
	rehabPriority   = 60
	patrolPriority  = 65
)

func (s *SecuritySystem) Name() string      { return "security" }
func (s *SecuritySystem) Priority() int     { return 45 }
func (s *SecuritySystem) Interval() float64 { return s.Every }

func (s *SecuritySystem) Run(ws *WorldState, dt float64) {
	camps := findCamps(ws.Grid)

	if len(camps) < maxIllegalCamps && ws.Tick > campWarmupTicks && ws.rng.Float64() < campChance {
		if idx, ok := pickCampSite(ws); ok {
			placeCamp(ws, idx)
			camps = append(camps, idx)
		}
	}

	for _, idx := range camps {
		// Idempotent: Add dedupes on the deterministic ids. The patrol job
		// carries a higher priority so security crews get there first; the
		// rehab job lets civilians finish the cleanup.
		ws.Registry.Add(&jobs.Job{
			ID:       fmt.Sprintf("rehab_%d", idx),
			Type:     jobs.TypeRehabilitate,
			Purpose:  jobs.PurposePool,
			Target:   idx,
			Priority: rehabPriority,
		})
		ws.Registry.Add(&jobs.Job{
			ID:       fmt.Sprintf("patrol_%d", idx),
			Type:     jobs.TypePatrol,
			Purpose:  jobs.PurposePool,
			Target:   idx,
			Priority: patrolPriority,
		})

		stolen := theftPerSecond * dt
		if stolen > ws.Resources.Minerals {
			stolen = ws.Resources.Minerals
		}
		ws.Resources.Minerals -= stolen
		ws.Resources.Ecology -= 0.5 * dt
	}
	if len(camps) > 0 {
		ws.Resources.ClampScores()
		ws.MarkDirty("resources")
	}

	if len(camps) == 0 {
		scatterIllegals(ws)
	}
}

func findCamps(g *world.Grid) []int {
	var out []int
	for i := range g.Tiles {
		if g.Tiles[i].Foliage == world.FoliageIllegalCamp {
			out = append(out, i)
		}
	}
	return out
}

// pickCampSite samples explored, open ground at least a dozen tiles from
// the center of the map.
func pickCampSite(ws *WorldState) (int, bool) {
	g := ws.Grid
	center := g.Index(g.Width/2, g.Height/2)
	for attempt := 0; attempt < 30; attempt++ {
		idx := ws.rng.Intn(len(g.Tiles))
		t := &g.Tiles[idx]
		if !t.Explored || t.Locked || t.Building != world.BuildingEmpty {
			continue
		}
		if t.Biome == world.BiomePond || t.Foliage != world.FoliageNone {
			continue
		}
		if g.Chebyshev(idx, center) < 12 {
			continue
		}
		return idx, true
	}
	return 0, false
}

func placeCamp(ws *WorldState, idx int) {
	ws.Grid.Tiles[idx].Foliage = world.FoliageIllegalCamp
	ws.Grid.Tiles[idx].RehabProgress = 0

	miner := ws.Spawner.Spawn(agents.RoleIllegalMiner, ws.Grid, idx, ws.Tick)
	ws.Agents = append(ws.Agents, miner)

	ws.Resources.Trust -= 3
	ws.Resources.ClampScores()

	ws.Effects.MarkTile(idx)
	ws.News.Push(ws.Tick, "Illegal mining camp spotted on the perimeter", "security", effects.SeverityWarning)
	ws.MarkDirty("grid")
	ws.MarkDirty("agents")
}

// scatterIllegals removes illegal actors once no camp sustains them.
func scatterIllegals(ws *WorldState) {
	kept := ws.Agents[:0]
	removed := 0
	for _, a := range ws.Agents {
		if a.Role.Illegal() {
			ws.Registry.ReleaseAllFor(a.ID)
			removed++
			continue
		}
		kept = append(kept, a)
	}
	ws.Agents = kept
	if removed > 0 {
		ws.News.Push(ws.Tick, "Illegal miners have fled the sector", "security", effects.SeverityInfo)
		ws.MarkDirty("agents")
	}
}
