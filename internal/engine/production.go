package engine

import (
	"fmt"

	"github.com/outpost-sim/outpost/internal/effects"
	"github.com/outpost-sim/outpost/internal/jobs"
	"github.com/outpost-sim/outpost/internal/world"
)

// ProductionSystem runs passive building output and upkeep. Water-connected
// greenhouses trickle food into the colony stock, completed buildings draw
// maintenance from the treasury, and a low food stock queues tending jobs
// at the greenhouses.
type ProductionSystem struct {
	Every float64

	lowFoodWarned  bool
	treasuryWarned bool
}

const (
	greenhouseTrickle = 0.3 // Food per connected greenhouse per sim-second
	foodLowWater      = 30.0
	farmJobPriority   = 70
)

// upkeepPerMinute is the per-building maintenance draw in credits.
var upkeepPerMinute = map[world.Building]float64{
	world.BuildingHQ:          2.0,
	world.BuildingQuarters:    0.8,
	world.BuildingCanteen:     0.6,
	world.BuildingSocialHub:   0.6,
	world.BuildingMine:        1.0,
	world.BuildingGreenhouse:  0.5,
	world.BuildingWaterPump:   0.5,
	world.BuildingResearchLab: 1.5,
}

func (s *ProductionSystem) Name() string      { return "production" }
func (s *ProductionSystem) Priority() int     { return 60 }
func (s *ProductionSystem) Interval() float64 { return s.Every }

func (s *ProductionSystem) Run(ws *WorldState, dt float64) {
	s.growFood(ws, dt)
	s.drawMaintenance(ws, dt)
	s.queueFarmJobs(ws)
}

func (s *ProductionSystem) growFood(ws *WorldState, dt float64) {
	cap := ws.Cfg.FoodCap
	grown := false
	for _, head := range ws.Grid.FindBuildings(world.BuildingGreenhouse) {
		if !ws.Grid.Tiles[head].WaterConnected {
			continue
		}
		ws.Resources.Food += greenhouseTrickle * dt
		grown = true
	}
	if ws.Resources.Food > cap {
		ws.Resources.Food = cap
	}
	if grown {
		ws.MarkDirty("resources")
	}
}

func (s *ProductionSystem) drawMaintenance(ws *WorldState, dt float64) {
	total := 0.0
	for b, rate := range upkeepPerMinute {
		total += rate * float64(ws.Grid.CountBuildings(b))
	}
	ws.Resources.MaintenanceCache = total
	if total <= 0 {
		return
	}

	draw := total / 60 * dt
	ws.Resources.Credits -= draw
	if ws.Resources.Credits < 0 {
		ws.Resources.Credits = 0
		if !s.treasuryWarned {
			ws.News.Push(ws.Tick, "Treasury empty: maintenance unpaid", "economy", effects.SeverityWarning)
			s.treasuryWarned = true
		}
	} else {
		s.treasuryWarned = false
	}
	ws.MarkDirty("resources")
}

func (s *ProductionSystem) queueFarmJobs(ws *WorldState) {
	if ws.Resources.Food >= foodLowWater {
		s.lowFoodWarned = false
		return
	}
	if !s.lowFoodWarned {
		ws.News.Push(ws.Tick, "Food stocks running low", "colony", effects.SeverityWarning)
		s.lowFoodWarned = true
	}
	for _, head := range ws.Grid.FindBuildings(world.BuildingGreenhouse) {
		ws.Registry.Add(&jobs.Job{
			ID:       fmt.Sprintf("farm_%d", head),
			Type:     jobs.TypeFarm,
			Purpose:  jobs.PurposePool,
			Target:   head,
			Priority: farmJobPriority,
		})
	}
}
