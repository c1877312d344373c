package engine

import (
	"fmt"

	"github.com/outpost-sim/outpost/internal/effects"
	"github.com/outpost-sim/outpost/internal/jobs"
	"github.com/outpost-sim/outpost/internal/world"
)

// Command is a player intervention applied between ticks. Implementations
// are the only mutation path from outside the simulation loop.
type Command interface {
	isCommand()
}

// PlaceBuilding queues a structure at a tile. The footprint is stamped as
// under construction and paid for up front; a build job follows on the next
// job scan.
type PlaceBuilding struct {
	Tile     int
	Building world.Building
}

// Bulldoze clears a structure, refunding nothing.
type Bulldoze struct {
	Tile int
}

// CommandAgent orders a specific colonist to a tile. The order outranks
// anything the colonist would choose alone.
type CommandAgent struct {
	AgentID string
	Tile    int
}

// UnlockTech spends credits to add a technology to the research set.
type UnlockTech struct {
	Tech string
}

// SellResource sells an amount of a stockpiled commodity at market price.
type SellResource struct {
	Resource string // "minerals" or "gems"
	Amount   float64
}

// ClaimGoal pays out a one-shot milestone reward.
type ClaimGoal struct {
	Goal   string
	Reward float64
}

// ToggleAutoSell flips the automatic mineral sale rule.
type ToggleAutoSell struct {
	Enabled bool
}

// ToggleCheats flips free-build mode.
type ToggleCheats struct {
	Enabled bool
}

func (PlaceBuilding) isCommand()  {}
func (Bulldoze) isCommand()       {}
func (CommandAgent) isCommand()   {}
func (UnlockTech) isCommand()     {}
func (SellResource) isCommand()   {}
func (ClaimGoal) isCommand()      {}
func (ToggleAutoSell) isCommand() {}
func (ToggleCheats) isCommand()   {}

// techCosts lists purchasable technologies and their price.
var techCosts = map[string]float64{
	"deep_mining":     400,
	"hydroponics":     350,
	"market_analysis": 300,
	"security_drones": 500,
}

// Apply executes a command against the world state. It must be called with
// the write lock held (the engine applies queued commands at tick
// boundaries). Rejections emit the error cue and return an error describing
// the refusal.
func (ws *WorldState) Apply(cmd Command) error {
	switch c := cmd.(type) {
	case PlaceBuilding:
		return ws.applyPlace(c)
	case Bulldoze:
		return ws.applyBulldoze(c)
	case CommandAgent:
		return ws.applyCommandAgent(c)
	case UnlockTech:
		return ws.applyUnlockTech(c)
	case SellResource:
		return ws.applySell(c)
	case ClaimGoal:
		return ws.applyClaimGoal(c)
	case ToggleAutoSell:
		ws.AutoSell = c.Enabled
		ws.MarkDirty("settings")
		return nil
	case ToggleCheats:
		ws.Cheats = c.Enabled
		ws.MarkDirty("settings")
		return nil
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}

func (ws *WorldState) reject(tile int, err error) error {
	ws.Effects.Audio(effects.CueError, tile)
	return err
}

func (ws *WorldState) applyPlace(c PlaceBuilding) error {
	g := ws.Grid
	if !g.ValidIndex(c.Tile) {
		return ws.reject(world.NoHead, fmt.Errorf("tile %d out of bounds", c.Tile))
	}
	x, y := c.Tile%g.Width, c.Tile/g.Width
	if !g.CanPlace(c.Building, x, y) {
		return ws.reject(c.Tile, fmt.Errorf("cannot place %s at %d", world.BuildingName(c.Building), c.Tile))
	}

	cost := world.BuildingCost(c.Building)
	if !ws.Cheats && !ws.Resources.Spend(cost) {
		return ws.reject(c.Tile, fmt.Errorf("need %.0f AGT for %s", cost, world.BuildingName(c.Building)))
	}

	g.PlaceBuilding(c.Building, x, y)
	w, h := world.BuildingSize(c.Building)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			ws.Effects.MarkTile(g.Index(x+dx, y+dy))
		}
	}
	ws.MarkDirty("grid")
	ws.MarkDirty("resources")
	return nil
}

func (ws *WorldState) applyBulldoze(c Bulldoze) error {
	g := ws.Grid
	if !g.ValidIndex(c.Tile) {
		return ws.reject(world.NoHead, fmt.Errorf("tile %d out of bounds", c.Tile))
	}
	head := g.Head(c.Tile)
	if head == nil || head.Building == world.BuildingEmpty {
		return ws.reject(c.Tile, fmt.Errorf("nothing to clear at %d", c.Tile))
	}
	if head.Building == world.BuildingHQ {
		return ws.reject(c.Tile, fmt.Errorf("headquarters cannot be demolished"))
	}

	footprint := g.ClearBuilding(head.Index)
	ws.Effects.MarkTiles(footprint)
	ws.MarkDirty("grid")
	return nil
}

func (ws *WorldState) applyCommandAgent(c CommandAgent) error {
	a := ws.AgentByID(c.AgentID)
	if a == nil {
		return ws.reject(world.NoHead, fmt.Errorf("no agent %q", c.AgentID))
	}
	if a.Role.Illegal() {
		return ws.reject(a.TileIndex(ws.Grid), fmt.Errorf("%s does not take orders", a.Name))
	}
	if !ws.Grid.ValidIndex(c.Tile) || !ws.Grid.Passable(c.Tile) {
		return ws.reject(c.Tile, fmt.Errorf("tile %d is not reachable ground", c.Tile))
	}

	// One standing order per agent; a new order replaces it.
	ws.Registry.Remove(orderJobID(a.ID))
	j := &jobs.Job{
		ID:         orderJobID(a.ID),
		Type:       jobs.TypeMove,
		Purpose:    jobs.PurposePool,
		Target:     c.Tile,
		Priority:   100,
		AssignedTo: a.ID,
	}
	ws.Registry.Add(j)
	ws.MarkDirty("jobs")
	return nil
}

// orderJobID is the deterministic id of an agent's direct movement order.
func orderJobID(agentID string) string {
	return "order_" + agentID
}

func (ws *WorldState) applyUnlockTech(c UnlockTech) error {
	cost, ok := techCosts[c.Tech]
	if !ok {
		return ws.reject(world.NoHead, fmt.Errorf("unknown technology %q", c.Tech))
	}
	if ws.Research[c.Tech] {
		return ws.reject(world.NoHead, fmt.Errorf("%s already unlocked", c.Tech))
	}
	if labs := ws.Grid.CountBuildings(world.BuildingResearchLab); labs == 0 {
		return ws.reject(world.NoHead, fmt.Errorf("research requires a completed lab"))
	}
	if !ws.Cheats && !ws.Resources.Spend(cost) {
		return ws.reject(world.NoHead, fmt.Errorf("need %.0f AGT for %s", cost, c.Tech))
	}

	ws.Research[c.Tech] = true
	ws.News.Push(ws.Tick, fmt.Sprintf("Research complete: %s", c.Tech), "research", effects.SeverityInfo)
	ws.MarkDirty("research")
	ws.MarkDirty("resources")
	return nil
}

func (ws *WorldState) applySell(c SellResource) error {
	if c.Amount <= 0 {
		return ws.reject(world.NoHead, fmt.Errorf("sale amount must be positive"))
	}
	var proceeds float64
	switch c.Resource {
	case "minerals":
		proceeds = sellMinerals(ws, c.Amount)
	case "gems":
		proceeds = sellGems(ws, c.Amount)
	default:
		return ws.reject(world.NoHead, fmt.Errorf("unknown resource %q", c.Resource))
	}
	if proceeds <= 0 {
		return ws.reject(world.NoHead, fmt.Errorf("no %s to sell", c.Resource))
	}
	ws.News.Push(ws.Tick, fmt.Sprintf("Sold %s for %.0f AGT", c.Resource, proceeds), "economy", effects.SeverityInfo)
	return nil
}

func (ws *WorldState) applyClaimGoal(c ClaimGoal) error {
	if ws.GoalsClaimed[c.Goal] {
		return ws.reject(world.NoHead, fmt.Errorf("goal %q already claimed", c.Goal))
	}
	if c.Reward < 0 {
		return ws.reject(world.NoHead, fmt.Errorf("invalid reward"))
	}
	ws.GoalsClaimed[c.Goal] = true
	ws.Resources.Credits += c.Reward
	ws.News.Push(ws.Tick, fmt.Sprintf("Milestone reached: %s (+%.0f AGT)", c.Goal, c.Reward), "colony", effects.SeverityInfo)
	ws.MarkDirty("resources")
	return nil
}
