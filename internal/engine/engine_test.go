package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost-sim/outpost/internal/agents"
	"github.com/outpost-sim/outpost/internal/effects"
	"github.com/outpost-sim/outpost/internal/jobs"
	"github.com/outpost-sim/outpost/internal/world"
)

func TestNewWorldStateSpawnsCrew(t *testing.T) {
	ws := smallWorld(t)
	assert.Len(t, ws.Agents, 3)
	assert.Equal(t, 3, ws.CivilianCount())
	assert.NotNil(t, ws.Grid)
	assert.Equal(t, 1, ws.Grid.CountBuildings(world.BuildingHQ))
}

func TestCapacityScalesWithQuarters(t *testing.T) {
	ws := smallWorld(t)
	base := ws.Capacity()
	require.Equal(t, ws.Cfg.BaseCapacity+ws.Cfg.CapacityPerQtrs, base, "starting base includes one quarters")

	idx := findOpenTile(t, ws.Grid)
	x, y := idx%ws.Grid.Width, idx/ws.Grid.Width
	require.True(t, ws.Grid.PlaceBuilding(world.BuildingQuarters, x, y))
	assert.Equal(t, base, ws.Capacity(), "unfinished quarters must not count")

	tile := ws.Grid.Tile(idx)
	tile.UnderConstruction = false
	tile.BuildTimeLeft = 0
	assert.Equal(t, base+ws.Cfg.CapacityPerQtrs, ws.Capacity())
}

func findOpenTile(t *testing.T, g *world.Grid) int {
	t.Helper()
	for i := range g.Tiles {
		tile := &g.Tiles[i]
		if !tile.Locked && tile.Building == world.BuildingEmpty &&
			tile.Biome != world.BiomePond && tile.Foliage == world.FoliageNone {
			return i
		}
	}
	t.Fatal("no open tile on test grid")
	return -1
}

func TestColonySystemRecruits(t *testing.T) {
	ws := smallWorld(t)
	ws.Resources.Credits = ws.Cfg.RecruitCost + 10
	before := len(ws.Agents)

	sys := &ColonySystem{}
	sys.Run(ws, 30)

	require.Len(t, ws.Agents, before+1)
	assert.InDelta(t, 10, ws.Resources.Credits, 1e-9, "recruitment fee deducted exactly once")

	headlines := ws.News.Items()
	require.NotEmpty(t, headlines)
	assert.Contains(t, headlines[len(headlines)-1].Headline, "joined the colony")

	// Broke colony cannot recruit again.
	sys.Run(ws, 30)
	assert.Len(t, ws.Agents, before+1)
}

func TestColonySystemRespectsCapacity(t *testing.T) {
	ws := smallWorld(t)
	ws.Resources.Credits = 100000

	sys := &ColonySystem{}
	for i := 0; i < 20; i++ {
		sys.Run(ws, 30)
	}
	assert.Equal(t, ws.Capacity(), ws.CivilianCount())
}

func TestEconomySystemAutoSellSingleEvent(t *testing.T) {
	ws := smallWorld(t)
	ws.AutoSell = true
	ws.SellThreshold = 100
	ws.Resources.Minerals = 150
	creditsBefore := ws.Resources.Credits

	sys := &EconomySystem{}
	sys.Run(ws, 5)

	assert.Zero(t, ws.Resources.Minerals, "the whole stockpile sells at once")
	assert.Greater(t, ws.Resources.Credits, creditsBefore)

	sellCues := 0
	for _, fx := range ws.Effects.Drain() {
		if fx.Kind == effects.KindAudio && fx.Cue == effects.CueSell {
			sellCues++
		}
	}
	assert.Equal(t, 1, sellCues)

	// Below threshold: nothing happens.
	ws.Resources.Minerals = 50
	credits := ws.Resources.Credits
	sys.Run(ws, 5)
	assert.Equal(t, 50.0, ws.Resources.Minerals)
	assert.Equal(t, credits, ws.Resources.Credits)
}

func TestEventModifierBoostsSales(t *testing.T) {
	ws := smallWorld(t)
	ws.Resources.Minerals = 100
	plain := sellMinerals(ws, 50)

	ws.Events = append(ws.Events, TimedEvent{
		Name:      "Demand Surge",
		Remaining: 60,
		Modifiers: map[string]float64{"sale_price": 2.0},
	})
	// Same price entry, same multipliers, doubled by the event.
	boosted := sellMinerals(ws, 50)
	assert.InDelta(t, plain*2, boosted, plain*0.01)
}

func TestJobGenSystemScansAndPrunes(t *testing.T) {
	ws := smallWorld(t)
	idx := findOpenTile(t, ws.Grid)
	x, y := idx%ws.Grid.Width, idx/ws.Grid.Width
	require.True(t, ws.Grid.PlaceBuilding(world.BuildingMine, x, y))

	sys := &JobGenSystem{}
	sys.Run(ws, 2)
	require.NotNil(t, ws.Registry.Get(jobs.BuildJobID(idx)))

	// Finish it; the next scan prunes the stale job.
	tile := ws.Grid.Tile(idx)
	tile.UnderConstruction = false
	tile.BuildTimeLeft = 0
	sys.Run(ws, 2)
	assert.Nil(t, ws.Registry.Get(jobs.BuildJobID(idx)))
}

func TestSecuritySystemCampLifecycle(t *testing.T) {
	ws := smallWorld(t)
	camp := findOpenTile(t, ws.Grid)
	ws.Grid.Tiles[camp].Foliage = world.FoliageIllegalCamp
	ws.Resources.Minerals = 100

	sys := &SecuritySystem{}
	sys.Run(ws, 10)

	assert.NotNil(t, ws.Registry.Get(fmt.Sprintf("rehab_%d", camp)))
	assert.NotNil(t, ws.Registry.Get(fmt.Sprintf("patrol_%d", camp)))
	assert.Less(t, ws.Resources.Minerals, 100.0, "standing camps siphon minerals")

	// Clearing the camp scatters the illegal actors.
	ws.Agents = append(ws.Agents, ws.Spawner.Spawn(agents.RoleIllegalMiner, ws.Grid, camp, ws.Tick))
	ws.Grid.Tiles[camp].Foliage = world.FoliageNone
	sys.Run(ws, 10)

	for _, a := range ws.Agents {
		assert.False(t, a.Role.Illegal())
	}
}

func TestLogisticsWaterPropagation(t *testing.T) {
	ws := smallWorld(t)
	pumps := ws.Grid.FindBuildings(world.BuildingWaterPump)
	require.NotEmpty(t, pumps)

	sys := &LogisticsSystem{}
	sys.Run(ws, 2)

	assert.True(t, ws.Grid.Tiles[pumps[0]].WaterConnected)

	// The starting base is contiguous, so the HQ is fed through neighbors.
	hq := ws.Grid.FindBuildings(world.BuildingHQ)[0]
	assert.True(t, ws.Grid.Tiles[hq].WaterConnected)

	// A detached greenhouse stays dry.
	idx := placeCompleted(t, ws.Grid, world.BuildingGreenhouse, 9)
	sys.Run(ws, 2)
	assert.False(t, ws.Grid.Tiles[idx].WaterConnected)
}

// farOpenTile finds open ground well away from the starting base.
func farOpenTile(t *testing.T, g *world.Grid) int {
	t.Helper()
	center := g.Index(g.Width/2, g.Height/2)
	for i := range g.Tiles {
		tile := &g.Tiles[i]
		if tile.Locked || tile.Building != world.BuildingEmpty ||
			tile.Biome == world.BiomePond || tile.Foliage != world.FoliageNone {
			continue
		}
		if g.Chebyshev(i, center) > 8 {
			return i
		}
	}
	t.Fatal("no far open tile")
	return -1
}

func TestProductionFeedsFromConnectedGreenhouses(t *testing.T) {
	ws := smallWorld(t)
	pump := ws.Grid.FindBuildings(world.BuildingWaterPump)[0]

	// Stamp a completed greenhouse adjacent to the pump so the flood fill
	// reaches it.
	spot := -1
	for _, n := range ws.Grid.Neighbors4(pump, nil) {
		x, y := n%ws.Grid.Width, n/ws.Grid.Width
		if ws.Grid.CanPlace(world.BuildingGreenhouse, x, y) {
			spot = n
			break
		}
	}
	require.GreaterOrEqual(t, spot, 0, "base clearing leaves room next to the pump")
	x, y := spot%ws.Grid.Width, spot/ws.Grid.Width
	require.True(t, ws.Grid.PlaceBuilding(world.BuildingGreenhouse, x, y))
	for dx := 0; dx < 2; dx++ {
		tile := ws.Grid.At(x+dx, y)
		tile.UnderConstruction = false
		tile.BuildTimeLeft = 0
	}

	(&LogisticsSystem{}).Run(ws, 2)
	require.True(t, ws.Grid.Tiles[spot].WaterConnected)

	food := ws.Resources.Food
	(&ProductionSystem{}).Run(ws, 10)
	assert.Greater(t, ws.Resources.Food, food)
}

func TestProductionMaintenanceDraw(t *testing.T) {
	ws := smallWorld(t)
	credits := ws.Resources.Credits

	sys := &ProductionSystem{}
	sys.Run(ws, 60)

	assert.Less(t, ws.Resources.Credits, credits)
	assert.Greater(t, ws.Resources.MaintenanceCache, 0.0)
}

func TestEnvironmentWeatherRolls(t *testing.T) {
	ws := smallWorld(t)
	ws.Weather.Remaining = 0.1

	sys := &EnvironmentSystem{}
	sys.Run(ws, 1)

	assert.Greater(t, ws.Weather.Remaining, 0.0, "a new weather spell starts")
	assert.GreaterOrEqual(t, ws.Weather.SpeedMod(), 0.0)
	assert.LessOrEqual(t, ws.Weather.SpeedMod(), 1.0)
}

func TestApplyPlaceBuilding(t *testing.T) {
	ws := smallWorld(t)
	idx := findOpenTile(t, ws.Grid)
	credits := ws.Resources.Credits

	require.NoError(t, ws.Apply(PlaceBuilding{Tile: idx, Building: world.BuildingRoad}))
	assert.Equal(t, world.BuildingRoad, ws.Grid.Tiles[idx].Building)
	assert.True(t, ws.Grid.Tiles[idx].UnderConstruction)
	assert.Equal(t, credits-world.BuildingCost(world.BuildingRoad), ws.Resources.Credits)

	// Occupied ground refuses with an error cue.
	err := ws.Apply(PlaceBuilding{Tile: idx, Building: world.BuildingMine})
	require.Error(t, err)
	assertErrorCue(t, ws)
}

func TestApplyPlaceBuildingInsufficientFunds(t *testing.T) {
	ws := smallWorld(t)
	ws.Resources.Credits = 0
	idx := findOpenTile(t, ws.Grid)

	require.Error(t, ws.Apply(PlaceBuilding{Tile: idx, Building: world.BuildingMine}))
	assert.Equal(t, world.BuildingEmpty, ws.Grid.Tiles[idx].Building)

	// Cheats waive the cost.
	ws.Cheats = true
	require.NoError(t, ws.Apply(PlaceBuilding{Tile: idx, Building: world.BuildingMine}))
}

func assertErrorCue(t *testing.T, ws *WorldState) {
	t.Helper()
	found := false
	for _, fx := range ws.Effects.Drain() {
		if fx.Kind == effects.KindAudio && fx.Cue == effects.CueError {
			found = true
		}
	}
	assert.True(t, found, "rejected command must emit the error cue")
}

func TestApplyBulldozeProtectsHQ(t *testing.T) {
	ws := smallWorld(t)
	hq := ws.Grid.FindBuildings(world.BuildingHQ)[0]

	require.Error(t, ws.Apply(Bulldoze{Tile: hq}))
	assert.Equal(t, world.BuildingHQ, ws.Grid.Tiles[hq].Building)

	quarters := ws.Grid.FindBuildings(world.BuildingQuarters)[0]
	require.NoError(t, ws.Apply(Bulldoze{Tile: quarters}))
	assert.Equal(t, world.BuildingEmpty, ws.Grid.Tiles[quarters].Building)
}

func TestApplyCommandAgentCreatesOrder(t *testing.T) {
	ws := smallWorld(t)
	a := ws.Agents[0]
	dest := findOpenTile(t, ws.Grid)

	require.NoError(t, ws.Apply(CommandAgent{AgentID: a.ID, Tile: dest}))
	j := ws.Registry.Get("order_" + a.ID)
	require.NotNil(t, j)
	assert.Equal(t, jobs.TypeMove, j.Type)
	assert.Equal(t, a.ID, j.AssignedTo)
	assert.Equal(t, dest, j.Target)

	// A second order replaces the first.
	dest2 := farOpenTile(t, ws.Grid)
	require.NoError(t, ws.Apply(CommandAgent{AgentID: a.ID, Tile: dest2}))
	assert.Equal(t, dest2, ws.Registry.Get("order_"+a.ID).Target)

	require.Error(t, ws.Apply(CommandAgent{AgentID: "nobody", Tile: dest}))
}

func TestApplyUnlockTech(t *testing.T) {
	ws := smallWorld(t)
	ws.Resources.Credits = 10000

	// No lab yet.
	require.Error(t, ws.Apply(UnlockTech{Tech: "deep_mining"}))

	placeCompleted(t, ws.Grid, world.BuildingResearchLab, 0)

	require.NoError(t, ws.Apply(UnlockTech{Tech: "deep_mining"}))
	assert.True(t, ws.Research["deep_mining"])

	require.Error(t, ws.Apply(UnlockTech{Tech: "deep_mining"}), "double unlock refused")
	require.Error(t, ws.Apply(UnlockTech{Tech: "warp_drive"}), "unknown tech refused")
}

func TestApplyClaimGoalOnce(t *testing.T) {
	ws := smallWorld(t)
	credits := ws.Resources.Credits

	require.NoError(t, ws.Apply(ClaimGoal{Goal: "first_mine", Reward: 100}))
	assert.Equal(t, credits+100, ws.Resources.Credits)

	require.Error(t, ws.Apply(ClaimGoal{Goal: "first_mine", Reward: 100}))
	assert.Equal(t, credits+100, ws.Resources.Credits, "a goal pays out once")
}

func TestApplySellResource(t *testing.T) {
	ws := smallWorld(t)
	ws.Resources.Minerals = 40

	require.NoError(t, ws.Apply(SellResource{Resource: "minerals", Amount: 40}))
	assert.Zero(t, ws.Resources.Minerals)

	require.Error(t, ws.Apply(SellResource{Resource: "minerals", Amount: 10}), "empty stockpile")
	require.Error(t, ws.Apply(SellResource{Resource: "plutonium", Amount: 1}))
	require.Error(t, ws.Apply(SellResource{Resource: "gems", Amount: -1}))
}

func TestAgentSystemDeadAgentInvisibleSameTick(t *testing.T) {
	ws := smallWorld(t)
	center := ws.Grid.Index(ws.Grid.Width/2, ws.Grid.Height/2)

	doomed := ws.Spawner.Spawn(agents.RoleWorker, ws.Grid, center, 0)
	doomed.Needs.Hunger = 0.001

	lonely := ws.Spawner.Spawn(agents.RoleWorker, ws.Grid, center, 0)
	lonely.Needs = agents.Needs{Energy: 80, Hunger: 80, Mood: 10}
	lonely.Traits.Sociability = 1.0
	lonely.Traits.Diligence = 1.0
	lonely.AddFriend(doomed.ID)

	// The doomed agent starves first in slice order; the survivor decides
	// afterwards and must not pick the corpse as a partner.
	ws.Agents = []*agents.Agent{doomed, lonely}
	sys := &AgentSystem{log: quietLogger()}
	sys.Run(ws, 0.2)

	require.Len(t, ws.Agents, 1)
	assert.Equal(t, lonely.ID, ws.Agents[0].ID)
	assert.NotEqual(t, doomed.ID, lonely.SocialWith)
	assert.NotEqual(t, agents.ActionSocialize, lonely.Intent)
}

func TestSnapshotRoundtrip(t *testing.T) {
	ws := smallWorld(t)
	ws.Tick = 123
	ws.Time = 24.6
	ws.Resources.Minerals = 77
	ws.Research["deep_mining"] = true
	ws.GoalsClaimed["first_mine"] = true
	ws.Registry.Add(&jobs.Job{ID: "mine_j", Type: jobs.TypeMine, Target: 5, Priority: 50, AssignedTo: ws.Agents[0].ID})
	require.NoError(t, ws.Apply(CommandAgent{AgentID: ws.Agents[1].ID, Tile: findOpenTile(t, ws.Grid)}))

	snap := ws.Capture()
	restored, err := Restore(snap, ws.Cfg)
	require.NoError(t, err)

	assert.Equal(t, uint64(123), restored.Tick)
	assert.Equal(t, 24.6, restored.Time)
	assert.Equal(t, 77.0, restored.Resources.Minerals)
	assert.True(t, restored.Research["deep_mining"])
	assert.True(t, restored.GoalsClaimed["first_mine"])
	assert.Len(t, restored.Agents, len(ws.Agents))

	// Transient claims are dropped; jobs come back to the pool. An order
	// is nothing without its assignee, so it does not survive the trip.
	j := restored.Registry.Get("mine_j")
	require.NotNil(t, j)
	assert.Empty(t, j.AssignedTo)
	assert.Nil(t, restored.Registry.Get("order_"+ws.Agents[1].ID))
	for _, a := range restored.Agents {
		assert.Empty(t, a.JobID)
		assert.NotNil(t, a.Memory.KnownBuildings, "memory caches rebuilt")
	}
}

func TestRestoreRejectsBadSnapshots(t *testing.T) {
	ws := smallWorld(t)
	snap := ws.Capture()

	snap.Version = 99
	_, err := Restore(snap, ws.Cfg)
	assert.Error(t, err)

	snap = ws.Capture()
	snap.Grid = nil
	_, err = Restore(snap, ws.Cfg)
	assert.Error(t, err)
}

func TestRestoreReseedsSpawnerAbovePopulation(t *testing.T) {
	ws := smallWorld(t)
	snap := ws.Capture()
	// A save from before the counter was recorded deserializes as zero.
	snap.NextAgentID = 0

	restored, err := Restore(snap, ws.Cfg)
	require.NoError(t, err)
	require.NotEmpty(t, restored.Agents)
	assert.GreaterOrEqual(t, restored.Spawner.NextID(), len(restored.Agents)+1)
}

func TestEngineStepAdvancesTickAndNotifies(t *testing.T) {
	ws := smallWorld(t)
	eng := NewEngine(ws, quietLogger())

	var notified [][]string
	ws.Subscribe(func(keys []string) {
		notified = append(notified, keys)
	})

	eng.Step()
	assert.Equal(t, uint64(1), ws.Tick)
	assert.Greater(t, ws.Time, 0.0)
	require.NotEmpty(t, notified, "agents system marks state dirty every tick")

	eng.Step()
	assert.Equal(t, uint64(2), ws.Tick)
}

func TestEngineRunsManyTicksWithoutIncident(t *testing.T) {
	ws := smallWorld(t)
	eng := NewEngine(ws, quietLogger())

	for i := 0; i < 500; i++ {
		eng.Step()
	}

	assert.Equal(t, uint64(500), ws.Tick)
	for _, a := range ws.Agents {
		assert.GreaterOrEqual(t, a.Needs.Energy, 0.0)
		assert.LessOrEqual(t, a.Needs.Energy, 100.0)
		idx := a.TileIndex(ws.Grid)
		assert.True(t, ws.Grid.ValidIndex(idx))
	}
	assert.GreaterOrEqual(t, ws.Resources.Ecology, 0.0)
	assert.LessOrEqual(t, ws.Resources.Ecology, 100.0)
}

// placeCompleted stamps a finished structure at the first spot the grid
// accepts, at least minDist tiles from the map center. Returns the head index.
func placeCompleted(t *testing.T, g *world.Grid, b world.Building, minDist int) int {
	t.Helper()
	center := g.Index(g.Width/2, g.Height/2)
	w, h := world.BuildingSize(b)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			idx := g.Index(x, y)
			if minDist > 0 && g.Chebyshev(idx, center) < minDist {
				continue
			}
			if !g.CanPlace(b, x, y) {
				continue
			}
			require.True(t, g.PlaceBuilding(b, x, y))
			for dy := 0; dy < h; dy++ {
				for dx := 0; dx < w; dx++ {
					tile := g.At(x+dx, y+dy)
					tile.UnderConstruction = false
					tile.BuildTimeLeft = 0
				}
			}
			return idx
		}
	}
	t.Fatalf("nowhere to place %s", world.BuildingName(b))
	return -1
}
