// Package engine owns the authoritative world state and the tick spine:
// an ordered set of simulation systems advanced at a fixed step, mutating
// shared state in place, with change notification once per tick.
package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/outpost-sim/outpost/internal/agents"
	"github.com/outpost-sim/outpost/internal/config"
	"github.com/outpost-sim/outpost/internal/economy"
	"github.com/outpost-sim/outpost/internal/effects"
	"github.com/outpost-sim/outpost/internal/jobs"
	"github.com/outpost-sim/outpost/internal/world"
)

// WeatherCondition enumerates the colony weather states.
type WeatherCondition uint8

const (
	WeatherClear WeatherCondition = iota
	WeatherDustStorm
	WeatherColdSnap
)

// WeatherName returns a human-readable name for a condition.
func WeatherName(c WeatherCondition) string {
	switch c {
	case WeatherClear:
		return "Clear"
	case WeatherDustStorm:
		return "Dust Storm"
	case WeatherColdSnap:
		return "Cold Snap"
	default:
		return "Unknown"
	}
}

// WeatherState is the current weather condition and how long it holds.
type WeatherState struct {
	Condition WeatherCondition `json:"condition"`
	Remaining float64          `json:"remaining"` // Sim-seconds left
	Intensity float64          `json:"intensity"` // 0–1
}

// SpeedMod returns the movement multiplier the weather imposes.
func (w WeatherState) SpeedMod() float64 {
	switch w.Condition {
	case WeatherDustStorm:
		return 1 - 0.35*w.Intensity
	case WeatherColdSnap:
		return 1 - 0.2*w.Intensity
	default:
		return 1
	}
}

// TimedEvent is an active world event carrying modifier payloads consumed
// by systems (e.g. a demand surge multiplying sale prices).
type TimedEvent struct {
	Name      string             `json:"name"`
	Remaining float64            `json:"remaining"`
	Modifiers map[string]float64 `json:"modifiers"`
}

// WorldState is the single authoritative mutable aggregate for a game
// session. The tick goroutine is the only writer; readers (API) take the
// read lock.
type WorldState struct {
	mu sync.RWMutex

	Grid     *world.Grid
	Agents   []*agents.Agent
	Registry *jobs.Registry

	Resources economy.Resources
	Market    *economy.Market
	Weather   WeatherState
	Research  map[string]bool
	Events    []TimedEvent

	Effects *effects.Queue
	News    *effects.Feed

	AutoSell      bool
	SellThreshold float64
	Cheats        bool

	// GoalsClaimed records one-shot goal rewards already paid out.
	GoalsClaimed map[string]bool

	Time float64 // Accumulated sim-seconds
	Tick uint64

	Spawner *agents.Spawner
	Cfg     config.Config

	rng   *rand.Rand
	dirty map[string]struct{}
	subs  []func(keys []string)
}

// NewWorldState generates a fresh world from configuration: terrain,
// starting base, and starting crew.
func NewWorldState(cfg config.Config) *WorldState {
	gen := world.GenConfig{
		Width:      cfg.GridWidth,
		Height:     cfg.GridHeight,
		Seed:       cfg.Seed,
		Border:     cfg.Border,
		PlaceStart: true,
	}
	g := world.Generate(gen)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ws := &WorldState{
		Grid:          g,
		Registry:      jobs.NewRegistry(),
		Resources:     economy.DefaultResources(),
		Market:        economy.NewMarket(),
		Research:      make(map[string]bool),
		Effects:       effects.NewQueue(),
		News:          effects.NewFeed(cfg.NewsCap),
		AutoSell:      cfg.AutoSell,
		SellThreshold: cfg.SellThreshold,
		GoalsClaimed:  make(map[string]bool),
		Spawner:       agents.NewSpawner(seed),
		Cfg:           cfg,
		rng:           rand.New(rand.NewSource(seed)),
		dirty:         make(map[string]struct{}),
	}

	center := g.Index(g.Width/2, g.Height/2)
	ws.Agents = ws.Spawner.SpawnCrew(g, center, cfg.StartingCrew)

	return ws
}

// Lock takes the writer lock. The tick loop and command surface use it;
// everything inside a tick runs under it.
func (ws *WorldState) Lock() { ws.mu.Lock() }

// Unlock releases the writer lock.
func (ws *WorldState) Unlock() { ws.mu.Unlock() }

// RLock takes the reader lock for observation (API handlers).
func (ws *WorldState) RLock() { ws.mu.RLock() }

// RUnlock releases the reader lock.
func (ws *WorldState) RUnlock() { ws.mu.RUnlock() }

// MarkDirty records that a top-level state key changed this tick.
func (ws *WorldState) MarkDirty(key string) {
	ws.dirty[key] = struct{}{}
}

// Subscribe registers a change-notification callback invoked once per tick
// with the dirty keys. Callbacks run on the tick goroutine and must not
// block.
func (ws *WorldState) Subscribe(fn func(keys []string)) {
	ws.subs = append(ws.subs, fn)
}

// notifySubscribers flushes the dirty-key set to subscribers.
func (ws *WorldState) notifySubscribers() {
	if len(ws.dirty) == 0 {
		return
	}
	keys := make([]string, 0, len(ws.dirty))
	for k := range ws.dirty {
		keys = append(keys, k)
	}
	ws.dirty = make(map[string]struct{})
	for _, fn := range ws.subs {
		fn(keys)
	}
}

// AgentByID returns the live agent with the given id, or nil.
func (ws *WorldState) AgentByID(id string) *agents.Agent {
	for _, a := range ws.Agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// CivilianCount returns the number of non-illegal agents.
func (ws *WorldState) CivilianCount() int {
	n := 0
	for _, a := range ws.Agents {
		if !a.Role.Illegal() {
			n++
		}
	}
	return n
}

// Capacity returns the colony population cap: a base allowance plus a bonus
// per completed staff quarters.
func (ws *WorldState) Capacity() int {
	return ws.Cfg.BaseCapacity + ws.Grid.CountBuildings(world.BuildingQuarters)*ws.Cfg.CapacityPerQtrs
}

// EventModifier returns the product of an active modifier across events,
// 1.0 when none apply.
func (ws *WorldState) EventModifier(key string) float64 {
	mod := 1.0
	for _, ev := range ws.Events {
		if v, ok := ev.Modifiers[key]; ok {
			mod *= v
		}
	}
	return mod
}
