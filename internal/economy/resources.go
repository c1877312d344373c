// Package economy provides the colony's aggregate resource counters and the
// commodity market: prices, trends, and rolling history.
package economy

// Resources holds the colony-wide economic counters. A single long-lived
// instance is owned by the world state and mutated in place.
type Resources struct {
	Credits  float64 `json:"credits"` // AGT
	Minerals float64 `json:"minerals"`
	Gems     float64 `json:"gems"`
	Food     float64 `json:"food"` // Canteen stock, produced by greenhouses

	Ecology float64 `json:"ecology"` // 0–100
	Trust   float64 `json:"trust"`   // 0–100, public trust

	IncomeCache      float64 `json:"income_cache"`      // Last computed income per cycle
	MaintenanceCache float64 `json:"maintenance_cache"` // Last computed upkeep per cycle
}

// DefaultResources returns fresh-game starting counters.
func DefaultResources() Resources {
	return Resources{
		Credits: 1000,
		Food:    50,
		Ecology: 70,
		Trust:   60,
	}
}

// Spend deducts amount from credits if affordable, reporting success.
func (r *Resources) Spend(amount float64) bool {
	if r.Credits < amount {
		return false
	}
	r.Credits -= amount
	return true
}

// ClampScores bounds ecology and trust to 0–100.
func (r *Resources) ClampScores() {
	r.Ecology = clamp(r.Ecology, 0, 100)
	r.Trust = clamp(r.Trust, 0, 100)
}

// EcoMultiplier scales sale proceeds by ecological standing: a degraded
// colony sells at a discount, a pristine one at a premium.
func (r *Resources) EcoMultiplier() float64 {
	return 0.5 + r.Ecology/100
}

// TrustMultiplier scales sale proceeds by public trust.
func (r *Resources) TrustMultiplier() float64 {
	return 0.5 + r.Trust/100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
