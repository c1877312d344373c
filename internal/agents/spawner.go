// Colonist creation — the factory used at world init and by the recruitment
// system. Personality and gait are randomized at creation and never change.
package agents

import (
	"fmt"
	"math/rand"

	"github.com/outpost-sim/outpost/internal/world"
)

// Spawner creates agents with sequential ids.
type Spawner struct {
	rng    *rand.Rand
	nextID int
}

// NewSpawner creates an agent spawner. A zero seed draws from the global
// source.
func NewSpawner(seed int64) *Spawner {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed)),
		nextID: 1,
	}
}

// SetNextID sets the next id to issue (used after restoring a save).
func (s *Spawner) SetNextID(id int) {
	s.nextID = id
}

// NextID returns the next id that would be issued.
func (s *Spawner) NextID() int {
	return s.nextID
}

var firstNames = []string{
	"Asha", "Bram", "Cato", "Dana", "Eli", "Faye", "Gus", "Hale",
	"Ines", "Jory", "Kira", "Lenn", "Mira", "Nico", "Orla", "Piet",
	"Quin", "Rosa", "Sem", "Tova", "Ulf", "Vera", "Wren", "Yuri", "Zane",
}

var surnames = []string{
	"Adler", "Boone", "Calder", "Drake", "Erez", "Flint", "Greer",
	"Holt", "Iver", "Jarl", "Kessler", "Lund", "Marsh", "North",
	"Orr", "Pike", "Quill", "Reyes", "Stone", "Thorn", "Vance", "Wolfe",
}

// Spawn creates one colonist of the given role at a tile.
func (s *Spawner) Spawn(role Role, g *world.Grid, tile int, tick uint64) *Agent {
	id := s.nextID
	s.nextID++

	a := &Agent{
		ID:   fmt.Sprintf("colonist_%d", id),
		Name: s.generateName(),
		Role: role,
		Needs: Needs{
			Energy: 70 + s.rng.Float64()*30,
			Hunger: 70 + s.rng.Float64()*30,
			Mood:   60 + s.rng.Float64()*30,
		},
		Skills: s.skillsForRole(role),
		Traits: Personality{
			Diligence:   s.rng.Float64(),
			Sociability: s.rng.Float64(),
			Bravery:     s.rng.Float64(),
			Patience:    s.rng.Float64(),
		},
		SpeedVariance: 0.85 + s.rng.Float64()*0.3,
		Target:        NoTarget,
		Memory:        NewMemory(),
		BornTick:      tick,
	}
	a.PlaceAt(g, tile)
	return a
}

// SpawnCrew creates the starting crew: a balanced mix of roles around a tile.
func (s *Spawner) SpawnCrew(g *world.Grid, center int, count int) []*Agent {
	roles := []Role{RoleWorker, RoleMiner, RoleEngineer, RoleBotanist, RoleSecurity}
	crew := make([]*Agent, 0, count)
	buf := make([]int, 0, 8)
	for i := 0; i < count; i++ {
		tile := center
		buf = g.Neighbors8(center, buf[:0])
		for _, nb := range buf {
			if g.Passable(nb) && s.rng.Float64() < 0.5 {
				tile = nb
				break
			}
		}
		crew = append(crew, s.Spawn(roles[i%len(roles)], g, tile, 0))
	}
	return crew
}

// skillsForRole gives the primary skill a head start and the rest a low
// baseline.
func (s *Spawner) skillsForRole(role Role) Skills {
	base := func() int { return s.rng.Intn(3) }
	sk := Skills{
		Mining:       base(),
		Construction: base(),
		Plants:       base(),
		Intelligence: base(),
	}
	boost := 4 + s.rng.Intn(4)
	switch role {
	case RoleMiner, RoleIllegalMiner:
		sk.Mining += boost
	case RoleEngineer:
		sk.Construction += boost
	case RoleBotanist:
		sk.Plants += boost
	case RoleSecurity:
		sk.Intelligence += boost
	default:
		sk.Construction += boost / 2
	}
	return sk
}

func (s *Spawner) generateName() string {
	return firstNames[s.rng.Intn(len(firstNames))] + " " + surnames[s.rng.Intn(len(surnames))]
}
