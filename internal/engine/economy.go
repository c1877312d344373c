package engine

import (
	"fmt"

	"github.com/outpost-sim/outpost/internal/economy"
	"github.com/outpost-sim/outpost/internal/effects"
	"github.com/outpost-sim/outpost/internal/world"
)

// EconomySystem advances commodity prices and runs the auto-sell rule:
// when enabled and the mineral stockpile crosses the threshold, the whole
// stockpile is sold at the current price, modified by ecology and trust.
type EconomySystem struct {
	Every float64
}

func (s *EconomySystem) Name() string      { return "economy" }
func (s *EconomySystem) Priority() int     { return 30 }
func (s *EconomySystem) Interval() float64 { return s.Every }

func (s *EconomySystem) Run(ws *WorldState, dt float64) {
	ws.Market.Step(ws.rng)
	ws.MarkDirty("market")

	if !ws.AutoSell || ws.Resources.Minerals < ws.SellThreshold {
		return
	}
	proceeds := sellMinerals(ws, ws.Resources.Minerals)
	ws.News.Push(ws.Tick, fmt.Sprintf("Auto-sold minerals for %.0f AGT", proceeds), "economy", effects.SeverityInfo)
}

// sellMinerals converts amount minerals into credits at the current market
// price, scaled by the ecology and trust multipliers plus any active
// sale-price event. It emits the sale cue and returns the proceeds.
func sellMinerals(ws *WorldState, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	if amount > ws.Resources.Minerals {
		amount = ws.Resources.Minerals
	}
	price := ws.Market.Entry(economy.CommodityMinerals).Price
	proceeds := amount * price *
		ws.Resources.EcoMultiplier() *
		ws.Resources.TrustMultiplier() *
		ws.EventModifier("sale_price")

	ws.Resources.Minerals -= amount
	ws.Resources.Credits += proceeds
	ws.Resources.IncomeCache = proceeds

	at := ws.Grid.Index(ws.Grid.Width/2, ws.Grid.Height/2)
	if hqs := ws.Grid.FindBuildings(world.BuildingHQ); len(hqs) > 0 {
		at = hqs[0]
	}
	ws.Effects.Audio(effects.CueSell, at)
	ws.MarkDirty("resources")
	return proceeds
}

// sellGems converts amount gems into credits at the current gem price.
func sellGems(ws *WorldState, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	if amount > ws.Resources.Gems {
		amount = ws.Resources.Gems
	}
	price := ws.Market.Entry(economy.CommodityGems).Price
	proceeds := amount * price * ws.Resources.TrustMultiplier() * ws.EventModifier("sale_price")

	ws.Resources.Gems -= amount
	ws.Resources.Credits += proceeds
	ws.MarkDirty("resources")
	return proceeds
}
