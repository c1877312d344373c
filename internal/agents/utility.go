// Utility-AI decision engine. Evaluate is a pure scoring function: given an
// agent and a view of the world it produces a ranked candidate list with no
// side effects; the caller commits the winner.
package agents

import (
	"sort"

	"github.com/outpost-sim/outpost/internal/jobs"
	"github.com/outpost-sim/outpost/internal/world"
)

// ActionKind enumerates the candidate actions an idle agent weighs.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionSleep
	ActionEat
	ActionWork
	ActionSocialize
	ActionRelax
	ActionPatrol
	ActionWander
)

// ActionName returns a human-readable name for an action.
func ActionName(k ActionKind) string {
	switch k {
	case ActionSleep:
		return "Sleep"
	case ActionEat:
		return "Eat"
	case ActionWork:
		return "Work"
	case ActionSocialize:
		return "Socialize"
	case ActionRelax:
		return "Relax"
	case ActionPatrol:
		return "Patrol"
	case ActionWander:
		return "Wander"
	default:
		return "None"
	}
}

// Candidate is one scored action. Target is a tile index, or NoTarget when
// the commit phase picks one (wander). JobID is set for work candidates and
// Partner for socializing.
type Candidate struct {
	Kind    ActionKind
	Score   float64
	Target  int
	JobID   string
	Partner string
}

// Weights holds the utility tuning constants.
type Weights struct {
	CriticalNeed    float64 // Threshold below which sleep/eat get the critical bonus
	CriticalBonus   float64 // Multiplicative bonus below the threshold
	DistancePenalty float64 // Score lost per tile of Chebyshev distance to a job
	AbandonPenalty  float64 // Flat penalty for re-choosing the last abandoned job
	SkillWeight     float64 // Score per point of matching skill
	RoleMatchBonus  float64 // Flat bonus when role matches the job domain
	SocialRadius    int     // Chebyshev radius for socialize candidates
	SocialBase      float64
	FriendBonus     float64
	RelaxBase       float64
	PatrolBase      float64
	WanderBase      float64
	WanderLazyBonus float64
}

// DefaultWeights returns the utility constants used absent tuning overrides.
func DefaultWeights() Weights {
	return Weights{
		CriticalNeed:    30,
		CriticalBonus:   1.5,
		DistancePenalty: 0.6,
		AbandonPenalty:  50,
		SkillWeight:     1.5,
		RoleMatchBonus:  15,
		SocialRadius:    6,
		SocialBase:      40,
		FriendBonus:     15,
		RelaxBase:       45,
		PatrolBase:      35,
		WanderBase:      5,
		WanderLazyBonus: 10,
	}
}

// Evaluate scores every candidate action for an agent and returns them
// sorted best-first. It reads but never mutates its inputs; identical
// inputs produce identical orderings.
func Evaluate(a *Agent, g *world.Grid, reg *jobs.Registry, all []*Agent, w Weights) []Candidate {
	at := a.TileIndex(g)
	var cands []Candidate

	cands = append(cands, scoreSleep(a, g, at, w))
	cands = append(cands, scoreEat(a, g, at, w))
	cands = append(cands, scoreWork(a, g, reg, at, w)...)
	if c, ok := scoreSocialize(a, g, all, at, w); ok {
		cands = append(cands, c)
	}
	if c, ok := scoreRelax(a, g, at, w); ok {
		cands = append(cands, c)
	}
	if a.Role == RoleSecurity {
		cands = append(cands, scorePatrol(a, g, at, w))
	}
	cands = append(cands, Candidate{
		Kind:   ActionWander,
		Score:  w.WanderBase + (1-a.Traits.Diligence)*w.WanderLazyBonus,
		Target: NoTarget,
	})

	// Sort descending by score with a deterministic tie-break so equal
	// inputs always rank identically.
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		if cands[i].Kind != cands[j].Kind {
			return cands[i].Kind < cands[j].Kind
		}
		return cands[i].JobID < cands[j].JobID
	})
	return cands
}

func scoreSleep(a *Agent, g *world.Grid, at int, w Weights) Candidate {
	target, ok := a.Memory.NearestBuilding(g, world.BuildingQuarters, at)
	if !ok {
		// No quarters anywhere: sleep on the floor where we stand.
		target = at
	}
	score := Urgency(a.Needs.Energy) * 100
	if a.Needs.Energy < w.CriticalNeed {
		score *= 1 + w.CriticalBonus
	}
	return Candidate{Kind: ActionSleep, Score: score, Target: target}
}

func scoreEat(a *Agent, g *world.Grid, at int, w Weights) Candidate {
	target, ok := a.Memory.NearestBuilding(g, world.BuildingCanteen, at)
	if !ok {
		target = at
	}
	score := Urgency(a.Needs.Hunger) * 100
	if a.Needs.Hunger < w.CriticalNeed {
		score *= 1 + w.CriticalBonus
	}
	return Candidate{Kind: ActionEat, Score: score, Target: target}
}

// scoreWork emits one candidate per claimable job. Manual move jobs are
// excluded: they are direct orders, not utility-weighed options. Illegal
// actors never work the colony pool.
func scoreWork(a *Agent, g *world.Grid, reg *jobs.Registry, at int, w Weights) []Candidate {
	if a.Role.Illegal() {
		return nil
	}
	var out []Candidate
	willingness := minf(a.Needs.Energy, a.Needs.Hunger) / 100
	diligence := 0.5 + a.Traits.Diligence

	for _, j := range reg.Jobs() {
		if j.Type == jobs.TypeMove {
			continue
		}
		if j.AssignedTo != "" && j.AssignedTo != a.ID {
			continue
		}
		dist := float64(g.Chebyshev(at, j.Target))
		score := float64(j.Priority) - dist*w.DistancePenalty
		if j.ID == a.LastAbandoned {
			score -= w.AbandonPenalty
		}
		score += float64(jobSkill(a, j.Type)) * w.SkillWeight
		if roleMatches(a.Role, j.Type) {
			score += w.RoleMatchBonus
		}
		score *= diligence * willingness
		out = append(out, Candidate{Kind: ActionWork, Score: score, Target: j.Target, JobID: j.ID})
	}
	return out
}

func scoreSocialize(a *Agent, g *world.Grid, all []*Agent, at int, w Weights) (Candidate, bool) {
	best := ""
	bestTarget := NoTarget
	friend := false
	for _, other := range all {
		if other.ID == a.ID || other.State == StateSleeping {
			continue
		}
		if other.Role.Illegal() != a.Role.Illegal() {
			continue
		}
		if g.Chebyshev(at, other.TileIndex(g)) > w.SocialRadius {
			continue
		}
		isFriend := a.HasFriend(other.ID)
		if best == "" || (isFriend && !friend) {
			best = other.ID
			bestTarget = other.TileIndex(g)
			friend = isFriend
		}
	}
	if best == "" {
		return Candidate{}, false
	}
	score := w.SocialBase * Urgency(a.Needs.Mood) * (0.5 + a.Traits.Sociability)
	if friend {
		score += w.FriendBonus
	}
	return Candidate{Kind: ActionSocialize, Score: score, Target: bestTarget, Partner: best}, true
}

func scoreRelax(a *Agent, g *world.Grid, at int, w Weights) (Candidate, bool) {
	target, ok := a.Memory.NearestBuilding(g, world.BuildingSocialHub, at)
	if !ok {
		return Candidate{}, false
	}
	return Candidate{
		Kind:   ActionRelax,
		Score:  w.RelaxBase * Urgency(a.Needs.Mood),
		Target: target,
	}, true
}

// scorePatrol targets the nearest known illegal camp, or headquarters when
// the colony is quiet.
func scorePatrol(a *Agent, g *world.Grid, at int, w Weights) Candidate {
	target := NoTarget
	bestDist := 0
	for i := range g.Tiles {
		t := &g.Tiles[i]
		if t.Foliage != world.FoliageIllegalCamp || !t.Explored {
			continue
		}
		d := g.Chebyshev(at, i)
		if target == NoTarget || d < bestDist {
			target = i
			bestDist = d
		}
	}
	if target == NoTarget {
		if hq, ok := a.Memory.NearestBuilding(g, world.BuildingHQ, at); ok {
			target = hq
		} else {
			target = at
		}
	}
	return Candidate{
		Kind:   ActionPatrol,
		Score:  w.PatrolBase * (0.5 + a.Traits.Diligence),
		Target: target,
	}
}

// jobSkill returns the agent's skill in the domain a job type exercises.
func jobSkill(a *Agent, t jobs.Type) int {
	switch t {
	case jobs.TypeBuild:
		return a.Skills.Construction
	case jobs.TypeMine:
		return a.Skills.Mining
	case jobs.TypeFarm:
		return a.Skills.Plants
	case jobs.TypeRehabilitate:
		return a.Skills.Intelligence
	default:
		return 0
	}
}

// roleMatches reports whether a role specializes in a job type.
func roleMatches(r Role, t jobs.Type) bool {
	switch t {
	case jobs.TypeBuild:
		return r == RoleEngineer
	case jobs.TypeMine:
		return r == RoleMiner
	case jobs.TypeFarm:
		return r == RoleBotanist
	case jobs.TypeRehabilitate, jobs.TypePatrol:
		return r == RoleSecurity
	default:
		return false
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
