package engine

import (
	"context"
	"log/slog"
	"time"
)

// Engine wraps a WorldState and a Scheduler in a fixed-step real-time loop.
type Engine struct {
	World *WorldState
	Sched *Scheduler

	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Wall-clock duration of one tick at speed 1

	log *slog.Logger
}

// NewEngine builds an engine over ws with the standard system roster
// registered in priority order.
func NewEngine(ws *WorldState, log *slog.Logger) *Engine {
	e := &Engine{
		World:    ws,
		Sched:    NewScheduler(log),
		Speed:    1.0,
		Interval: time.Second / time.Duration(ws.Cfg.TickRateHz),
		log:      log,
	}

	cfg := ws.Cfg
	e.Sched.Register(&JobGenSystem{Every: cfg.JobScanInterval})
	e.Sched.Register(&ColonySystem{Every: cfg.ColonyInterval})
	e.Sched.Register(&EconomySystem{Every: cfg.EconomyInterval})
	e.Sched.Register(&EnvironmentSystem{Every: cfg.EnvironmentInterval})
	e.Sched.Register(&SecuritySystem{Every: cfg.EnvironmentInterval})
	e.Sched.Register(&LogisticsSystem{Every: cfg.LogisticsInterval})
	e.Sched.Register(&ProductionSystem{Every: cfg.ProductionInterval})
	e.Sched.Register(&AgentSystem{log: log})

	return e
}

// Run drives the loop until ctx is cancelled. Blocks.
func (e *Engine) Run(ctx context.Context) {
	e.log.Info("engine started", "tick_rate_hz", e.World.Cfg.TickRateHz, "speed", e.Speed)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("engine stopped", "tick", e.World.Tick)
			return
		default:
		}

		if e.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.Step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}
}

// Step advances exactly one tick. Exposed so tests and tooling can drive
// the simulation without the real-time loop.
func (e *Engine) Step() {
	ws := e.World
	dt := e.Interval.Seconds()

	ws.Lock()
	ws.Tick++
	ws.Time += dt
	e.Sched.Step(ws, dt)
	ws.notifySubscribers()
	ws.Unlock()
}
