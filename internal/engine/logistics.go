package engine

import (
	"github.com/outpost-sim/outpost/internal/world"
)

// LogisticsSystem recomputes water connectivity and lifts fog of war around
// agents. Water propagates by flood fill from completed pump heads through
// any completed adjacent structure, pipes included.
type LogisticsSystem struct {
	Every float64
}

func (s *LogisticsSystem) Name() string      { return "logistics" }
func (s *LogisticsSystem) Priority() int     { return 50 }
func (s *LogisticsSystem) Interval() float64 { return s.Every }

func (s *LogisticsSystem) Run(ws *WorldState, dt float64) {
	s.floodWater(ws)
	s.revealFog(ws)
}

func (s *LogisticsSystem) floodWater(ws *WorldState) {
	g := ws.Grid

	connected := make(map[int]bool)
	var queue []int
	for _, head := range g.FindBuildings(world.BuildingWaterPump) {
		connected[head] = true
		queue = append(queue, head)
	}

	var buf []int
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		buf = g.Neighbors4(cur, buf[:0])
		for _, n := range buf {
			if connected[n] {
				continue
			}
			t := &g.Tiles[n]
			if t.Building == world.BuildingEmpty || t.UnderConstruction {
				continue
			}
			connected[n] = true
			queue = append(queue, n)
		}
	}

	changed := false
	for i := range g.Tiles {
		want := connected[i]
		if g.Tiles[i].WaterConnected != want {
			g.Tiles[i].WaterConnected = want
			ws.Effects.MarkTile(i)
			changed = true
		}
	}
	if changed {
		ws.MarkDirty("grid")
	}
}

func (s *LogisticsSystem) revealFog(ws *WorldState) {
	revealed := false
	for _, a := range ws.Agents {
		if a.Role.Illegal() {
			continue
		}
		newly := world.RevealAround(ws.Grid, a.TileIndex(ws.Grid), ws.Cfg.RevealRadius)
		if len(newly) > 0 {
			ws.Effects.MarkTiles(newly)
			revealed = true
		}
	}
	if revealed {
		ws.MarkDirty("grid")
	}
}
