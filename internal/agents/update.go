// Agent state machine. Advance runs one tick for one agent: need decay,
// death, decision-making when idle, path-following, and action progress.
// All mutation happens on the shared world structures passed in Context;
// the tick loop owns serialization.
package agents

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/outpost-sim/outpost/internal/economy"
	"github.com/outpost-sim/outpost/internal/effects"
	"github.com/outpost-sim/outpost/internal/jobs"
	"github.com/outpost-sim/outpost/internal/world"
)

// WorkRates holds action progress constants, loaded from tuning.
type WorkRates struct {
	Build     float64 // Construction seconds removed per second of work
	Mine      float64 // Integrity points removed per second
	Farm      float64 // Food produced per second
	Rehab     float64 // Rehab progress per second
	BaseSpeed float64 // Tiles per second on unit-cost ground
	MineYield float64 // Minerals credited per integrity point removed
	GemChance float64 // Chance a depleted vein also yields gems
	FoodCap   float64 // Colony food stock ceiling
	EatRate   float64 // Food stock consumed per second of eating
}

// DefaultWorkRates returns the work constants used absent tuning overrides.
func DefaultWorkRates() WorkRates {
	return WorkRates{
		Build:     1.0,
		Mine:      8.0,
		Farm:      1.5,
		Rehab:     10.0,
		BaseSpeed: 3.0,
		MineYield: 0.25,
		GemChance: 0.15,
		FoodCap:   200,
		EatRate:   0.4,
	}
}

// Context is the per-tick view an agent needs to act. It is assembled by
// the agent system each tick and shared across the agent loop.
type Context struct {
	Grid     *world.Grid
	Registry *jobs.Registry
	All      []*Agent
	Effects  *effects.Queue
	News     *effects.Feed
	Stocks   *economy.Resources

	Rates   DecayRates
	Weights Weights
	Work    WorkRates

	// SpeedMod scales movement for weather and similar global modifiers.
	SpeedMod float64

	// FindPath resolves a tile-to-tile path, nil when unreachable.
	FindPath func(start, end int) []int

	Rand *rand.Rand
	Tick uint64
	Dt   float64
}

// Advance runs one tick for the agent. It returns false when the agent died
// this tick; the caller removes it from the live set.
func Advance(a *Agent, ctx *Context) (alive bool) {
	if Decay(a, ctx.Rates, ctx.Dt) {
		die(a, ctx)
		return false
	}

	switch a.State {
	case StateIdle:
		decide(a, ctx)
	case StateMoving:
		moveStep(a, ctx)
	case StateWorking:
		workStep(a, ctx)
	case StateSleeping, StateEating, StateRelaxing, StateSocializing:
		sustainedStep(a, ctx)
	}

	a.Memory.RememberTile(a.TileIndex(ctx.Grid))
	return true
}

// die handles hunger exhaustion: the held job returns to the pool, a death
// effect and headline are emitted, and the caller drops the agent.
func die(a *Agent, ctx *Context) {
	ctx.Registry.ReleaseAllFor(a.ID)
	ctx.Effects.Audio(effects.CueDeath, a.TileIndex(ctx.Grid))
	ctx.News.Push(ctx.Tick,
		fmt.Sprintf("%s has died of starvation", a.Name),
		"colony", effects.SeverityCritical)
}

// decide runs the utility evaluation and commits the best viable candidate.
// Candidates that cannot be committed (job already claimed, target
// unreachable) fall through to the next in rank; the wander fallback always
// commits.
func decide(a *Agent, ctx *Context) {
	// A standing direct order outranks anything the agent would choose.
	if j := directOrder(a, ctx.Registry); j != nil {
		if commit(a, ctx, Candidate{Kind: ActionWork, Target: j.Target, JobID: j.ID}) {
			return
		}
		// Unreachable order: drop it rather than ignore it forever.
		ctx.Registry.Remove(j.ID)
	}

	for _, c := range Evaluate(a, ctx.Grid, ctx.Registry, ctx.All, ctx.Weights) {
		if commit(a, ctx, c) {
			return
		}
	}
}

// directOrder returns the agent's pre-assigned movement order, if any.
func directOrder(a *Agent, reg *jobs.Registry) *jobs.Job {
	for _, j := range reg.Jobs() {
		if j.Type == jobs.TypeMove && j.AssignedTo == a.ID {
			return j
		}
	}
	return nil
}

// commit applies a chosen candidate: claims a job, resolves the path, and
// transitions the agent. Returns false when the candidate is not viable.
func commit(a *Agent, ctx *Context, c Candidate) bool {
	target := c.Target
	if c.Kind == ActionWander {
		target = wanderTarget(a, ctx)
		if target == NoTarget {
			return false
		}
	}

	if c.Kind == ActionWork {
		if !ctx.Registry.Claim(c.JobID, a.ID) {
			return false
		}
		a.JobID = c.JobID
	}

	at := a.TileIndex(ctx.Grid)
	if at == target {
		// Already co-located: skip movement entirely.
		enterAction(a, ctx, c.Kind, c.Partner)
		return true
	}

	p := ctx.FindPath(at, target)
	if p == nil {
		if c.Kind == ActionWork {
			// Unreachable job: back to the pool, remember it to avoid
			// immediately re-choosing it.
			ctx.Registry.Release(c.JobID)
			a.LastAbandoned = c.JobID
			a.JobID = ""
		}
		return false
	}

	a.Path = p
	a.Target = target
	a.Intent = c.Kind
	a.SocialWith = c.Partner
	a.State = StateMoving
	return true
}

// wanderTarget picks a random passable explored tile near the agent.
func wanderTarget(a *Agent, ctx *Context) int {
	at := a.TileIndex(ctx.Grid)
	x := at % ctx.Grid.Width
	y := at / ctx.Grid.Width
	for try := 0; try < 8; try++ {
		nx := x + ctx.Rand.Intn(11) - 5
		ny := y + ctx.Rand.Intn(11) - 5
		if !ctx.Grid.InBounds(nx, ny) {
			continue
		}
		idx := ctx.Grid.Index(nx, ny)
		if idx != at && ctx.Grid.Passable(idx) && ctx.Grid.Tiles[idx].Explored {
			return idx
		}
	}
	return NoTarget
}

// enterAction transitions into the terminal state for an action kind.
func enterAction(a *Agent, ctx *Context, kind ActionKind, partner string) {
	a.Path = nil
	a.SocialWith = partner
	switch kind {
	case ActionSleep:
		a.State = StateSleeping
	case ActionEat:
		a.State = StateEating
	case ActionRelax:
		a.State = StateRelaxing
	case ActionSocialize:
		a.State = StateSocializing
	case ActionWork:
		if ctx.Registry.Get(a.JobID) == nil {
			resetIdle(a)
			return
		}
		a.State = StateWorking
	default:
		// Patrol and wander have no terminal action.
		resetIdle(a)
	}
}

// moveStep consumes the precomputed path: snap to the next node when within
// one tick's travel, otherwise interpolate toward it. Speed is scaled by the
// occupied tile's movement cost and the agent's gait.
func moveStep(a *Agent, ctx *Context) {
	if len(a.Path) == 0 {
		arrive(a, ctx)
		return
	}

	node := a.Path[0]
	nx := float64(node % ctx.Grid.Width)
	nz := float64(node / ctx.Grid.Width)
	dx := nx - a.X
	dz := nz - a.Z
	dist := math.Hypot(dx, dz)

	speedMod := ctx.SpeedMod
	if speedMod <= 0 {
		speedMod = 1
	}
	speed := ctx.Work.BaseSpeed * a.SpeedVariance * speedMod / ctx.Grid.MoveCost(a.TileIndex(ctx.Grid))
	step := speed * ctx.Dt

	if dist <= step {
		a.X = nx
		a.Z = nz
		a.Path = a.Path[1:]
		if len(a.Path) == 0 {
			arrive(a, ctx)
		}
		return
	}

	a.X += dx / dist * step
	a.Z += dz / dist * step
}

// arrive transitions out of MOVING once the path is spent.
func arrive(a *Agent, ctx *Context) {
	if a.JobID != "" {
		j := ctx.Registry.Get(a.JobID)
		if j == nil {
			resetIdle(a)
			return
		}
		if j.Type == jobs.TypeMove {
			// A commanded move completes on arrival.
			ctx.Registry.Remove(j.ID)
			resetIdle(a)
			return
		}
	}
	enterAction(a, ctx, a.Intent, a.SocialWith)
}

// workStep accumulates progress on the referenced job. A vanished job is an
// interruption, not an error: the agent simply resets.
func workStep(a *Agent, ctx *Context) {
	j := ctx.Registry.Get(a.JobID)
	if j == nil {
		resetIdle(a)
		return
	}
	t := ctx.Grid.Head(j.Target)
	if t == nil {
		ctx.Registry.Remove(j.ID)
		resetIdle(a)
		return
	}

	switch j.Type {
	case jobs.TypeBuild:
		buildStep(a, ctx, j, t)
	case jobs.TypeMine:
		mineStep(a, ctx, j, t)
	case jobs.TypeFarm:
		farmStep(a, ctx, j)
	case jobs.TypeRehabilitate:
		rehabStep(a, ctx, j, t, 1.0)
	case jobs.TypePatrol:
		// Security sweeps clear camps faster than civilian rehabilitation.
		rehabStep(a, ctx, j, t, 2.0)
	default:
		resetIdle(a)
	}
}

func buildStep(a *Agent, ctx *Context, j *jobs.Job, t *world.Tile) {
	if !t.UnderConstruction {
		ctx.Registry.Remove(j.ID)
		resetIdle(a)
		return
	}
	rate := ctx.Work.Build * (1 + float64(a.Skills.Construction)*0.1)
	t.BuildTimeLeft -= rate * ctx.Dt
	if t.BuildTimeLeft > 0 {
		return
	}

	// Construction complete across the whole footprint.
	t.BuildTimeLeft = 0
	w, h := world.BuildingSize(t.Building)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			ct := ctx.Grid.At(t.X+dx, t.Y+dy)
			if ct != nil {
				ct.UnderConstruction = false
				ct.BuildTimeLeft = 0
				ctx.Effects.MarkTile(ct.Index)
			}
		}
	}
	ctx.Effects.Audio(effects.CueBuild, t.Index)
	ctx.Effects.Particle(effects.FXDust, t.Index)
	ctx.News.Push(ctx.Tick,
		fmt.Sprintf("%s completed by %s", world.BuildingName(t.Building), a.Name),
		"colony", effects.SeverityInfo)
	a.Skills.Construction++
	ctx.Registry.Remove(j.ID)
	resetIdle(a)
}

func mineStep(a *Agent, ctx *Context, j *jobs.Job, t *world.Tile) {
	if t.Foliage != world.FoliageGoldVein {
		ctx.Registry.Remove(j.ID)
		resetIdle(a)
		return
	}
	rate := ctx.Work.Mine * (1 + float64(a.Skills.Mining)*0.1)
	removed := rate * ctx.Dt
	if removed > t.Integrity {
		removed = t.Integrity
	}
	t.Integrity -= removed
	ctx.Stocks.Minerals += removed * ctx.Work.MineYield

	if t.Integrity > 0 {
		return
	}

	// Vein exhausted: the tile becomes a mine hole, never negative.
	t.Integrity = 0
	t.Foliage = world.FoliageMineHole
	ctx.Stocks.Ecology -= 2
	ctx.Stocks.ClampScores()
	if ctx.Rand.Float64() < ctx.Work.GemChance {
		ctx.Stocks.Gems++
	}
	ctx.Effects.Audio(effects.CueMine, t.Index)
	ctx.Effects.Particle(effects.FXRockfall, t.Index)
	ctx.Effects.MarkTile(t.Index)
	ctx.News.Push(ctx.Tick,
		fmt.Sprintf("Gold vein exhausted by %s", a.Name),
		"economy", effects.SeverityInfo)
	a.Skills.Mining++
	ctx.Registry.Remove(j.ID)
	resetIdle(a)
}

func farmStep(a *Agent, ctx *Context, j *jobs.Job) {
	rate := ctx.Work.Farm * (1 + float64(a.Skills.Plants)*0.1)
	ctx.Stocks.Food += rate * ctx.Dt
	if ctx.Stocks.Food < ctx.Work.FoodCap {
		return
	}
	ctx.Stocks.Food = ctx.Work.FoodCap
	a.Skills.Plants++
	ctx.Registry.Remove(j.ID)
	resetIdle(a)
}

func rehabStep(a *Agent, ctx *Context, j *jobs.Job, t *world.Tile, mult float64) {
	if t.Foliage != world.FoliageIllegalCamp {
		ctx.Registry.Remove(j.ID)
		resetIdle(a)
		return
	}
	t.RehabProgress += ctx.Work.Rehab * mult * ctx.Dt
	if t.RehabProgress < 100 {
		return
	}

	t.RehabProgress = 0
	t.Foliage = world.FoliageNone
	ctx.Stocks.Ecology += 5
	ctx.Stocks.Trust += 2
	ctx.Stocks.ClampScores()
	ctx.Effects.MarkTile(t.Index)
	ctx.News.Push(ctx.Tick,
		fmt.Sprintf("Illegal camp cleared by %s", a.Name),
		"security", effects.SeverityInfo)
	ctx.Registry.Remove(j.ID)
	resetIdle(a)
}

// sustainedStep regenerates the matching need and completes the action once
// the need is full.
func sustainedStep(a *Agent, ctx *Context) {
	if a.State == StateEating {
		needed := ctx.Work.EatRate * ctx.Dt
		if ctx.Stocks.Food < needed {
			// Canteen stock ran out mid-meal.
			resetIdle(a)
			return
		}
		ctx.Stocks.Food -= needed
	}

	if Regen(a, ctx.Dt) {
		if a.State == StateSocializing && a.SocialWith != "" {
			a.AddFriend(a.SocialWith)
			for _, other := range ctx.All {
				if other.ID == a.SocialWith {
					other.AddFriend(a.ID)
					break
				}
			}
		}
		resetIdle(a)
	}
}

// resetIdle returns the agent to the decision point, clearing transient
// action state. Registry bookkeeping belongs to callers.
func resetIdle(a *Agent) {
	a.State = StateIdle
	a.Intent = ActionNone
	a.Path = nil
	a.Target = NoTarget
	a.JobID = ""
	a.SocialWith = ""
}
