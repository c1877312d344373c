package economy

import "math/rand"

// Commodity enumerates tradable resources.
type Commodity uint8

const (
	CommodityMinerals Commodity = iota
	CommodityGems
)

// NumCommodities is the number of tradable resource types.
const NumCommodities = 2

// CommodityName returns a human-readable name for a commodity.
func CommodityName(c Commodity) string {
	switch c {
	case CommodityMinerals:
		return "Minerals"
	case CommodityGems:
		return "Gems"
	default:
		return "Unknown"
	}
}

// Trend summarizes recent price direction.
type Trend uint8

const (
	TrendFlat Trend = iota
	TrendRising
	TrendFalling
)

// historyLen is the rolling price-history window.
const historyLen = 24

// MarketEntry tracks one commodity's price state.
type MarketEntry struct {
	Commodity  Commodity `json:"commodity"`
	Price      float64   `json:"price"`
	BasePrice  float64   `json:"base_price"`
	Trend      Trend     `json:"trend"`
	Volatility float64   `json:"volatility"` // Step size of the random walk
	History    []float64 `json:"history"`    // Rolling window, oldest first
}

// Market holds the price state for every tradable commodity.
type Market struct {
	Entries [NumCommodities]*MarketEntry `json:"entries"`
}

// NewMarket creates a market at base prices.
func NewMarket() *Market {
	m := &Market{}
	m.Entries[CommodityMinerals] = &MarketEntry{
		Commodity:  CommodityMinerals,
		Price:      10,
		BasePrice:  10,
		Volatility: 0.06,
	}
	m.Entries[CommodityGems] = &MarketEntry{
		Commodity:  CommodityGems,
		Price:      45,
		BasePrice:  45,
		Volatility: 0.10,
	}
	return m
}

// Entry returns the entry for a commodity.
func (m *Market) Entry(c Commodity) *MarketEntry {
	if int(c) >= len(m.Entries) {
		return nil
	}
	return m.Entries[c]
}

// Step advances every price one market cycle: a damped random walk around
// the base price, with trend re-derived from the rolling history.
func (m *Market) Step(rng *rand.Rand) {
	for _, e := range m.Entries {
		if e == nil {
			continue
		}
		e.step(rng)
	}
}

func (e *MarketEntry) step(rng *rand.Rand) {
	// Random shock plus a pull back toward the base price.
	shock := (rng.Float64()*2 - 1) * e.Volatility * e.Price
	reversion := (e.BasePrice - e.Price) * 0.05
	e.Price += shock + reversion

	// Prices stay within a sane band around base.
	floor := e.BasePrice * 0.4
	ceiling := e.BasePrice * 2.5
	if e.Price < floor {
		e.Price = floor
	}
	if e.Price > ceiling {
		e.Price = ceiling
	}

	e.History = append(e.History, e.Price)
	if len(e.History) > historyLen {
		e.History = e.History[len(e.History)-historyLen:]
	}
	e.Trend = deriveTrend(e.History)
}

// deriveTrend compares the recent half of the history window against the
// older half.
func deriveTrend(history []float64) Trend {
	if len(history) < 4 {
		return TrendFlat
	}
	mid := len(history) / 2
	older := mean(history[:mid])
	newer := mean(history[mid:])
	switch {
	case newer > older*1.02:
		return TrendRising
	case newer < older*0.98:
		return TrendFalling
	default:
		return TrendFlat
	}
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total / float64(len(vals))
}
