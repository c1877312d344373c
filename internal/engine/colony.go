package engine

import (
	"fmt"

	"github.com/outpost-sim/outpost/internal/agents"
	"github.com/outpost-sim/outpost/internal/effects"
	"github.com/outpost-sim/outpost/internal/world"
)

// ColonySystem handles population growth: when the colony has spare housing
// capacity and can afford the recruitment fee, a new colonist arrives at the
// headquarters.
type ColonySystem struct {
	Every float64
}

// recruitRoles is the hiring rotation for arriving colonists.
var recruitRoles = []agents.Role{
	agents.RoleWorker,
	agents.RoleMiner,
	agents.RoleEngineer,
	agents.RoleBotanist,
	agents.RoleSecurity,
}

func (s *ColonySystem) Name() string      { return "colony" }
func (s *ColonySystem) Priority() int     { return 20 }
func (s *ColonySystem) Interval() float64 { return s.Every }

func (s *ColonySystem) Run(ws *WorldState, dt float64) {
	if ws.CivilianCount() >= ws.Capacity() {
		return
	}
	if !ws.Resources.Spend(ws.Cfg.RecruitCost) {
		return
	}

	spawnAt := ws.Grid.Index(ws.Grid.Width/2, ws.Grid.Height/2)
	if hqs := ws.Grid.FindBuildings(world.BuildingHQ); len(hqs) > 0 {
		spawnAt = hqs[0]
	}

	role := recruitRoles[ws.CivilianCount()%len(recruitRoles)]
	a := ws.Spawner.Spawn(role, ws.Grid, spawnAt, ws.Tick)
	ws.Agents = append(ws.Agents, a)

	ws.Effects.Audio(effects.CueRecruit, spawnAt)
	ws.News.Push(ws.Tick, fmt.Sprintf("%s has joined the colony as %s", a.Name, agents.RoleName(role)), "colony", effects.SeverityInfo)
	ws.MarkDirty("agents")
	ws.MarkDirty("resources")
}
