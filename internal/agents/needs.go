// Need decay and regeneration. Needs fall every tick absent intervention
// and recover during the matching sustained state.
package agents

// DecayRates holds per-second need decay constants, loaded from tuning.
type DecayRates struct {
	Energy float64
	Hunger float64
	Mood   float64
}

// RegenRate is the per-second recovery applied to the need matching a
// sustained state.
const RegenRate = 12.0

// Decay applies one tick of need decay. Illegal actors decay at half rate.
// Returns true when the agent starves: hunger reached zero on a civilian
// role. Death handling is the caller's responsibility.
func Decay(a *Agent, rates DecayRates, dt float64) (starved bool) {
	mult := 1.0
	if a.Role.Illegal() {
		mult = 0.5
	}
	a.Needs.Energy -= rates.Energy * mult * dt
	a.Needs.Hunger -= rates.Hunger * mult * dt
	a.Needs.Mood -= rates.Mood * mult * dt
	clampNeeds(&a.Needs)

	return a.Needs.Hunger <= 0 && !a.Role.Illegal()
}

// Regen applies sustained-state recovery to the need matching the agent's
// current state. Returns true once the need is full.
func Regen(a *Agent, dt float64) (full bool) {
	amount := RegenRate * dt
	switch a.State {
	case StateSleeping:
		a.Needs.Energy += amount
		clampNeeds(&a.Needs)
		return a.Needs.Energy >= 100
	case StateEating:
		a.Needs.Hunger += amount
		clampNeeds(&a.Needs)
		return a.Needs.Hunger >= 100
	case StateRelaxing, StateSocializing:
		a.Needs.Mood += amount
		clampNeeds(&a.Needs)
		return a.Needs.Mood >= 100
	default:
		return false
	}
}

// Urgency maps a need level to 0–1 urgency: empty need, full urgency.
func Urgency(need float64) float64 {
	u := (100 - need) / 100
	if u < 0 {
		return 0
	}
	return u
}

func clampNeeds(n *Needs) {
	n.Energy = clamp01to100(n.Energy)
	n.Hunger = clamp01to100(n.Hunger)
	n.Mood = clamp01to100(n.Mood)
}

func clamp01to100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
