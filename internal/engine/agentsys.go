package engine

import (
	"log/slog"

	"github.com/outpost-sim/outpost/internal/agents"
	"github.com/outpost-sim/outpost/internal/config"
	"github.com/outpost-sim/outpost/internal/path"
)

// AgentSystem advances every agent each tick. Agents run in slice order, so
// earlier agents win contested job claims within a tick. Dead agents are
// compacted out of the live set after the pass.
type AgentSystem struct {
	log *slog.Logger
}

func (s *AgentSystem) Name() string      { return "agents" }
func (s *AgentSystem) Priority() int     { return 70 }
func (s *AgentSystem) Interval() float64 { return 0 }

func (s *AgentSystem) Run(ws *WorldState, dt float64) {
	budget := int(float64(ws.Grid.Width*ws.Grid.Height) * ws.Cfg.PathBudgetFactor)

	ctx := &agents.Context{
		Grid:     ws.Grid,
		Registry: ws.Registry,
		Effects:  ws.Effects,
		News:     ws.News,
		Stocks:   &ws.Resources,
		Rates: agents.DecayRates{
			Energy: ws.Cfg.EnergyDecay,
			Hunger: ws.Cfg.HungerDecay,
			Mood:   ws.Cfg.MoodDecay,
		},
		Weights:  agents.DefaultWeights(),
		Work:     workRates(ws.Cfg),
		SpeedMod: ws.Weather.SpeedMod(),
		FindPath: func(start, end int) []int {
			return path.FindBudget(ws.Grid, start, end, budget)
		},
		Rand: ws.rng,
		Tick: ws.Tick,
		Dt:   dt,
	}

	// The shared view is a copy: compacting ws.Agents in place would leave
	// later agents scoring against stale duplicates. Dead agents drop out of
	// the view immediately so nobody socializes with a corpse.
	all := make([]*agents.Agent, len(ws.Agents))
	copy(all, ws.Agents)
	ctx.All = all

	kept := make([]*agents.Agent, 0, len(ws.Agents))
	died := 0
	for _, a := range ws.Agents {
		if agents.Advance(a, ctx) {
			kept = append(kept, a)
			continue
		}
		died++
		for i, o := range ctx.All {
			if o == a {
				ctx.All = append(ctx.All[:i], ctx.All[i+1:]...)
				break
			}
		}
	}
	ws.Agents = kept
	if died > 0 {
		s.log.Info("agents died", "count", died, "tick", ws.Tick)
	}
	ws.MarkDirty("agents")
}

func workRates(cfg config.Config) agents.WorkRates {
	w := agents.DefaultWorkRates()
	w.Build = cfg.BuildRate
	w.Mine = cfg.MineRate
	w.Farm = cfg.FarmRate
	w.Rehab = cfg.RehabRate
	w.BaseSpeed = cfg.AgentSpeed
	w.FoodCap = cfg.FoodCap
	return w
}
