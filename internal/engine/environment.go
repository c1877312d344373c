package engine

import (
	"fmt"

	"github.com/outpost-sim/outpost/internal/effects"
)

// EnvironmentSystem rolls weather and world events. Weather persists for a
// randomized duration; adverse conditions slow agent movement through the
// weather speed modifier. Timed events carry modifier payloads other
// systems read, like a trade demand surge boosting sale prices.
type EnvironmentSystem struct {
	Every float64
}

const (
	weatherMinDuration = 60.0
	weatherMaxDuration = 180.0
	eventChance        = 0.05
)

func (s *EnvironmentSystem) Name() string      { return "environment" }
func (s *EnvironmentSystem) Priority() int     { return 40 }
func (s *EnvironmentSystem) Interval() float64 { return s.Every }

func (s *EnvironmentSystem) Run(ws *WorldState, dt float64) {
	s.stepWeather(ws, dt)
	s.stepEvents(ws, dt)
}

func (s *EnvironmentSystem) stepWeather(ws *WorldState, dt float64) {
	ws.Weather.Remaining -= dt
	if ws.Weather.Remaining > 0 {
		return
	}

	prev := ws.Weather.Condition
	roll := ws.rng.Float64()
	next := WeatherClear
	switch {
	case roll < 0.15:
		next = WeatherDustStorm
	case roll < 0.30:
		next = WeatherColdSnap
	}

	ws.Weather = WeatherState{
		Condition: next,
		Remaining: weatherMinDuration + ws.rng.Float64()*(weatherMaxDuration-weatherMinDuration),
		Intensity: 0.3 + ws.rng.Float64()*0.7,
	}
	ws.MarkDirty("weather")

	if next == prev {
		return
	}
	if next == WeatherClear {
		ws.News.Push(ws.Tick, "Skies have cleared", "environment", effects.SeverityInfo)
	} else {
		ws.News.Push(ws.Tick, fmt.Sprintf("%s rolling in, crews will move slower", WeatherName(next)), "environment", effects.SeverityWarning)
	}
}

func (s *EnvironmentSystem) stepEvents(ws *WorldState, dt float64) {
	kept := ws.Events[:0]
	for _, ev := range ws.Events {
		ev.Remaining -= dt
		if ev.Remaining <= 0 {
			ws.News.Push(ws.Tick, fmt.Sprintf("%s has ended", ev.Name), "environment", effects.SeverityInfo)
			ws.MarkDirty("events")
			continue
		}
		kept = append(kept, ev)
	}
	ws.Events = kept

	// One event at a time keeps modifier stacking legible.
	if len(ws.Events) > 0 || ws.rng.Float64() >= eventChance {
		return
	}
	ws.Events = append(ws.Events, TimedEvent{
		Name:      "Demand Surge",
		Remaining: 120,
		Modifiers: map[string]float64{"sale_price": 1.5},
	})
	ws.News.Push(ws.Tick, "Off-world demand surge: sale prices up 50%", "environment", effects.SeverityInfo)
	ws.MarkDirty("events")
}
