package engine

import (
	"fmt"
	"math/rand"

	"github.com/outpost-sim/outpost/internal/agents"
	"github.com/outpost-sim/outpost/internal/config"
	"github.com/outpost-sim/outpost/internal/economy"
	"github.com/outpost-sim/outpost/internal/effects"
	"github.com/outpost-sim/outpost/internal/jobs"
	"github.com/outpost-sim/outpost/internal/world"
)

// SnapshotVersion guards saved-state compatibility. Bump on breaking layout
// changes.
const SnapshotVersion = 1

// Snapshot is the serializable form of a session. Fields absent from an
// older save keep their fresh-game values on restore.
type Snapshot struct {
	Version int     `json:"version"`
	Tick    uint64  `json:"tick"`
	Time    float64 `json:"time"`

	Grid      *world.Grid       `json:"grid"`
	Agents    []*agents.Agent   `json:"agents"`
	Jobs      []*jobs.Job       `json:"jobs"`
	Resources economy.Resources `json:"resources"`
	Market    *economy.Market   `json:"market"`
	Weather   WeatherState      `json:"weather"`
	Research  []string          `json:"research"`
	Events    []TimedEvent      `json:"events"`

	AutoSell      bool            `json:"auto_sell"`
	SellThreshold float64         `json:"sell_threshold"`
	Cheats        bool            `json:"cheats"`
	GoalsClaimed  []string        `json:"goals_claimed"`
	NextAgentID   int             `json:"next_agent_id"`
}

// Capture copies the persistable state out of ws. Call with at least the
// read lock held.
func (ws *WorldState) Capture() *Snapshot {
	snap := &Snapshot{
		Version:       SnapshotVersion,
		Tick:          ws.Tick,
		Time:          ws.Time,
		Grid:          ws.Grid,
		Agents:        ws.Agents,
		Jobs:          ws.Registry.Jobs(),
		Resources:     ws.Resources,
		Market:        ws.Market,
		Weather:       ws.Weather,
		Events:        ws.Events,
		AutoSell:      ws.AutoSell,
		SellThreshold: ws.SellThreshold,
		Cheats:        ws.Cheats,
		NextAgentID:   ws.Spawner.NextID(),
	}
	for tech := range ws.Research {
		snap.Research = append(snap.Research, tech)
	}
	for goal := range ws.GoalsClaimed {
		snap.GoalsClaimed = append(snap.GoalsClaimed, goal)
	}
	return snap
}

// Restore rebuilds a WorldState from a snapshot, layering saved state over
// fresh-game defaults. Transient agent state (paths, claims, memory) is not
// persisted; restored agents come back idle and re-decide on the next tick.
func Restore(snap *Snapshot, cfg config.Config) (*WorldState, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snap.Version, SnapshotVersion)
	}
	if snap.Grid == nil || len(snap.Grid.Tiles) != snap.Grid.Width*snap.Grid.Height {
		return nil, fmt.Errorf("snapshot grid is malformed")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = int64(snap.Tick) + 1
	}

	ws := &WorldState{
		Grid:          snap.Grid,
		Agents:        snap.Agents,
		Registry:      jobs.NewRegistry(),
		Resources:     snap.Resources,
		Market:        snap.Market,
		Weather:       snap.Weather,
		Research:      make(map[string]bool),
		Events:        snap.Events,
		Effects:       effects.NewQueue(),
		News:          effects.NewFeed(cfg.NewsCap),
		AutoSell:      snap.AutoSell,
		SellThreshold: snap.SellThreshold,
		Cheats:        snap.Cheats,
		GoalsClaimed:  make(map[string]bool),
		Time:          snap.Time,
		Tick:          snap.Tick,
		Spawner:       agents.NewSpawner(seed),
		Cfg:           cfg,
		rng:           rand.New(rand.NewSource(seed)),
		dirty:         make(map[string]struct{}),
	}
	if ws.Market == nil {
		ws.Market = economy.NewMarket()
	}
	if ws.SellThreshold == 0 {
		ws.SellThreshold = cfg.SellThreshold
	}
	// Old saves may miss the counter. Never seed below the population or
	// fresh recruits would reuse a living agent's id.
	next := snap.NextAgentID
	if floor := len(snap.Agents) + 1; next < floor {
		next = floor
	}
	ws.Spawner.SetNextID(next)

	for _, tech := range snap.Research {
		ws.Research[tech] = true
	}
	for _, goal := range snap.GoalsClaimed {
		ws.GoalsClaimed[goal] = true
	}

	for _, j := range snap.Jobs {
		if j.Type == jobs.TypeMove {
			// Direct orders are bound to the assignment state being
			// cleared here; without an assignee they can never run.
			continue
		}
		j.AssignedTo = ""
		ws.Registry.Add(j)
	}
	for _, a := range ws.Agents {
		a.State = agents.StateIdle
		a.Intent = agents.ActionNone
		a.Path = nil
		a.Target = agents.NoTarget
		a.JobID = ""
		a.SocialWith = ""
		a.Memory = agents.NewMemory()
	}

	return ws, nil
}
