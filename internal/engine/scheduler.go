package engine

import (
	"log/slog"
	"sort"
)

// System is one simulation subsystem driven by the scheduler. Run receives
// the elapsed sim-seconds since the system last ran.
type System interface {
	Name() string
	// Priority orders systems within a tick; lower runs first.
	Priority() int
	// Interval is the minimum sim-seconds between runs. Zero means every
	// tick.
	Interval() float64
	Run(ws *WorldState, dt float64)
}

// Scheduler drives registered systems in priority order, throttling each to
// its own cadence on accumulated sim time. A panicking system is isolated:
// the panic is logged and the remaining systems still run.
type Scheduler struct {
	systems []*scheduled
	log     *slog.Logger
}

type scheduled struct {
	sys   System
	accum float64 // Sim-seconds since last run
}

// NewScheduler returns an empty scheduler logging through log.
func NewScheduler(log *slog.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// Register adds a system, keeping the set sorted by priority. Registration
// order breaks ties.
func (s *Scheduler) Register(sys System) {
	s.systems = append(s.systems, &scheduled{sys: sys})
	sort.SliceStable(s.systems, func(i, j int) bool {
		return s.systems[i].sys.Priority() < s.systems[j].sys.Priority()
	})
}

// Step advances every due system by its accumulated sim time. Called once
// per tick under the world-state write lock.
func (s *Scheduler) Step(ws *WorldState, dt float64) {
	for _, sc := range s.systems {
		sc.accum += dt
		if sc.accum < sc.sys.Interval() {
			continue
		}
		elapsed := sc.accum
		sc.accum = 0
		s.runIsolated(ws, sc.sys, elapsed)
	}
}

func (s *Scheduler) runIsolated(ws *WorldState, sys System, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("system panicked", "system", sys.Name(), "tick", ws.Tick, "panic", r)
		}
	}()
	sys.Run(ws, dt)
}
