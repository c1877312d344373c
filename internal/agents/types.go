// Package agents provides the colonist data model, the utility-AI decision
// engine, and the per-tick state machine that executes chosen actions.
package agents

import (
	"math"

	"github.com/outpost-sim/outpost/internal/world"
)

// Role is an agent's profession and determines work-rate bonuses, utility
// biases, and whether the agent is a civilian colonist.
type Role uint8

const (
	RoleWorker Role = iota
	RoleMiner
	RoleBotanist
	RoleEngineer
	RoleSecurity
	RoleIllegalMiner
)

// RoleName returns a human-readable name for a role.
func RoleName(r Role) string {
	switch r {
	case RoleWorker:
		return "Worker"
	case RoleMiner:
		return "Miner"
	case RoleBotanist:
		return "Botanist"
	case RoleEngineer:
		return "Engineer"
	case RoleSecurity:
		return "Security"
	case RoleIllegalMiner:
		return "Illegal Miner"
	default:
		return "Unknown"
	}
}

// Illegal reports whether the role is a non-civilian actor. Illegal actors
// decay at half rate and do not die of hunger.
func (r Role) Illegal() bool {
	return r == RoleIllegalMiner
}

// State enumerates the agent finite states. Agents cycle back to StateIdle
// after any action completes or is interrupted.
type State uint8

const (
	StateIdle State = iota
	StateMoving
	StateWorking
	StateSleeping
	StateEating
	StateRelaxing
	StateSocializing
)

// StateName returns a human-readable name for a state.
func StateName(s State) string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateMoving:
		return "Moving"
	case StateWorking:
		return "Working"
	case StateSleeping:
		return "Sleeping"
	case StateEating:
		return "Eating"
	case StateRelaxing:
		return "Relaxing"
	case StateSocializing:
		return "Socializing"
	default:
		return "Unknown"
	}
}

// Needs are the agent's survival meters, each 0–100. They decay every tick
// and regenerate during the matching sustained state.
type Needs struct {
	Energy float64 `json:"energy"`
	Hunger float64 `json:"hunger"`
	Mood   float64 `json:"mood"`
}

// Skills are per-domain integer proficiencies influencing work rate and
// utility scores.
type Skills struct {
	Mining       int `json:"mining"`
	Construction int `json:"construction"`
	Plants       int `json:"plants"`
	Intelligence int `json:"intelligence"`
}

// Personality traits, fixed at creation, bias utility scoring.
type Personality struct {
	Diligence   float64 `json:"diligence"`
	Sociability float64 `json:"sociability"`
	Bravery     float64 `json:"bravery"`
	Patience    float64 `json:"patience"`
}

// NoTarget marks an agent with no movement target.
const NoTarget = -1

// Agent is one colonist. Position is continuous for smooth movement; the
// occupied tile is derived. Exactly one system mutates an agent per tick.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`

	X float64 `json:"x"`
	Z float64 `json:"z"`

	State  State       `json:"state"`
	Intent ActionKind  `json:"intent"` // Action to execute on arrival
	Needs  Needs       `json:"needs"`
	Skills Skills      `json:"skills"`
	Traits Personality `json:"traits"`

	// SpeedVariance is the agent's individual gait multiplier around 1.0.
	SpeedVariance float64 `json:"speed_variance"`

	JobID  string `json:"job_id,omitempty"`
	Path   []int  `json:"-"`
	Target int    `json:"target"`

	// LastAbandoned is the id of the most recently abandoned job,
	// penalized in utility scoring to prevent thrashing.
	LastAbandoned string `json:"last_abandoned,omitempty"`

	// SocialWith is the partner of the current socializing action.
	SocialWith string `json:"-"`

	// Memory is a behavior-richness cache, dropped on save and rebuilt
	// during play.
	Memory Memory `json:"-"`

	Friends []string `json:"friends,omitempty"`

	BornTick uint64 `json:"born_tick"`
}

// TileIndex returns the grid index of the tile the agent occupies.
func (a *Agent) TileIndex(g *world.Grid) int {
	x := int(math.Floor(a.X + 0.5))
	y := int(math.Floor(a.Z + 0.5))
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x >= g.Width {
		x = g.Width - 1
	}
	if y >= g.Height {
		y = g.Height - 1
	}
	return g.Index(x, y)
}

// PlaceAt snaps the agent's continuous position onto a tile.
func (a *Agent) PlaceAt(g *world.Grid, idx int) {
	a.X = float64(idx % g.Width)
	a.Z = float64(idx / g.Width)
}

// HasFriend reports whether other is a known friend.
func (a *Agent) HasFriend(other string) bool {
	for _, f := range a.Friends {
		if f == other {
			return true
		}
	}
	return false
}

// AddFriend records a friendship, deduplicated.
func (a *Agent) AddFriend(other string) {
	if other == a.ID || a.HasFriend(other) {
		return
	}
	a.Friends = append(a.Friends, other)
}
