package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost-sim/outpost/internal/jobs"
	"github.com/outpost-sim/outpost/internal/world"
)

func testAgent(id string, role Role, at int, g *world.Grid) *Agent {
	a := &Agent{
		ID:     id,
		Name:   id,
		Role:   role,
		Needs:  Needs{Energy: 80, Hunger: 80, Mood: 80},
		Traits: Personality{Diligence: 0.5, Sociability: 0.5},

		SpeedVariance: 1.0,
		Target:        NoTarget,
		Memory:        NewMemory(),
	}
	a.PlaceAt(g, at)
	return a
}

func TestEvaluateDeterministic(t *testing.T) {
	g := world.NewGrid(16, 16)
	reg := jobs.NewRegistry()
	reg.Add(&jobs.Job{ID: "j1", Type: jobs.TypeMine, Target: g.Index(5, 5), Priority: 50})
	reg.Add(&jobs.Job{ID: "j2", Type: jobs.TypeMine, Target: g.Index(10, 10), Priority: 50})

	a := testAgent("a1", RoleMiner, g.Index(8, 8), g)
	first := Evaluate(a, g, reg, nil, DefaultWeights())
	second := Evaluate(a, g, reg, nil, DefaultWeights())

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Kind, second[i].Kind)
		assert.Equal(t, first[i].JobID, second[i].JobID)
		assert.Equal(t, first[i].Score, second[i].Score)
	}
}

func TestEvaluateCriticalNeedWins(t *testing.T) {
	g := world.NewGrid(16, 16)
	reg := jobs.NewRegistry()
	reg.Add(&jobs.Job{ID: "j1", Type: jobs.TypeBuild, Target: g.Index(5, 5), Priority: 80})

	a := testAgent("a1", RoleEngineer, g.Index(5, 6), g)
	a.Needs.Energy = 10

	cands := Evaluate(a, g, reg, nil, DefaultWeights())
	require.NotEmpty(t, cands)
	assert.Equal(t, ActionSleep, cands[0].Kind, "critical energy must outrank nearby work")
}

func TestEvaluateAlwaysHasWanderFallback(t *testing.T) {
	g := world.NewGrid(8, 8)
	a := testAgent("a1", RoleWorker, g.Index(4, 4), g)

	cands := Evaluate(a, g, jobs.NewRegistry(), nil, DefaultWeights())
	found := false
	for _, c := range cands {
		if c.Kind == ActionWander {
			found = true
		}
	}
	assert.True(t, found)
}

func TestScoreWorkSkipsClaimedAndMoveJobs(t *testing.T) {
	g := world.NewGrid(16, 16)
	reg := jobs.NewRegistry()
	reg.Add(&jobs.Job{ID: "claimed", Type: jobs.TypeMine, Target: 5, Priority: 50, AssignedTo: "someone"})
	reg.Add(&jobs.Job{ID: "order", Type: jobs.TypeMove, Target: 6, Priority: 100})
	reg.Add(&jobs.Job{ID: "open", Type: jobs.TypeMine, Target: 7, Priority: 50})

	a := testAgent("a1", RoleMiner, g.Index(2, 2), g)
	for _, c := range Evaluate(a, g, reg, nil, DefaultWeights()) {
		if c.Kind != ActionWork {
			continue
		}
		assert.Equal(t, "open", c.JobID)
	}
}

func TestScoreWorkAbandonPenalty(t *testing.T) {
	g := world.NewGrid(16, 16)
	target := g.Index(5, 5)
	w := DefaultWeights()

	fresh := testAgent("a1", RoleMiner, g.Index(5, 6), g)
	burned := testAgent("a2", RoleMiner, g.Index(5, 6), g)
	burned.LastAbandoned = "j1"

	reg := jobs.NewRegistry()
	reg.Add(&jobs.Job{ID: "j1", Type: jobs.TypeMine, Target: target, Priority: 50})

	freshScore := workScoreFor(t, fresh, g, reg, w, "j1")
	burnedScore := workScoreFor(t, burned, g, reg, w, "j1")
	assert.Less(t, burnedScore, freshScore)
}

func workScoreFor(t *testing.T, a *Agent, g *world.Grid, reg *jobs.Registry, w Weights, jobID string) float64 {
	t.Helper()
	for _, c := range Evaluate(a, g, reg, nil, w) {
		if c.Kind == ActionWork && c.JobID == jobID {
			return c.Score
		}
	}
	t.Fatalf("no work candidate for %s", jobID)
	return 0
}

func TestScoreWorkExcludesIllegalRoles(t *testing.T) {
	g := world.NewGrid(16, 16)
	camp := g.Index(5, 5)
	g.Tiles[camp].Foliage = world.FoliageIllegalCamp

	reg := jobs.NewRegistry()
	reg.Add(&jobs.Job{ID: "rehab_85", Type: jobs.TypeRehabilitate, Target: camp, Priority: 60})
	reg.Add(&jobs.Job{ID: "open", Type: jobs.TypeMine, Target: g.Index(6, 6), Priority: 50})

	// An illegal miner standing on its own camp must not claim the cleanup
	// job, or any other colony work.
	crook := testAgent("crook", RoleIllegalMiner, camp, g)
	for _, c := range Evaluate(crook, g, reg, nil, DefaultWeights()) {
		assert.NotEqual(t, ActionWork, c.Kind)
	}
}

func TestRoleMatchBonusRanksSpecialist(t *testing.T) {
	g := world.NewGrid(16, 16)
	target := g.Index(5, 5)
	w := DefaultWeights()
	reg := jobs.NewRegistry()
	reg.Add(&jobs.Job{ID: "j1", Type: jobs.TypeMine, Target: target, Priority: 50})

	miner := testAgent("m", RoleMiner, g.Index(5, 6), g)
	worker := testAgent("w", RoleWorker, g.Index(5, 6), g)

	assert.Greater(t,
		workScoreFor(t, miner, g, reg, w, "j1"),
		workScoreFor(t, worker, g, reg, w, "j1"))
}

func TestScoreSocializePrefersFriendsAndLegality(t *testing.T) {
	g := world.NewGrid(16, 16)
	a := testAgent("a1", RoleWorker, g.Index(5, 5), g)
	a.Needs.Mood = 40
	a.Friends = []string{"pal"}

	stranger := testAgent("stranger", RoleWorker, g.Index(5, 6), g)
	pal := testAgent("pal", RoleWorker, g.Index(6, 6), g)
	crook := testAgent("crook", RoleIllegalMiner, g.Index(5, 4), g)

	cands := Evaluate(a, g, jobs.NewRegistry(), []*Agent{a, stranger, pal, crook}, DefaultWeights())
	var social *Candidate
	for i := range cands {
		if cands[i].Kind == ActionSocialize {
			social = &cands[i]
			break
		}
	}
	require.NotNil(t, social)
	assert.Equal(t, "pal", social.Partner, "friends outrank strangers")
	assert.NotEqual(t, "crook", social.Partner)
}

func TestScorePatrolSecurityOnly(t *testing.T) {
	g := world.NewGrid(16, 16)
	camp := g.Index(12, 12)
	g.Tiles[camp].Foliage = world.FoliageIllegalCamp
	g.Tiles[camp].Explored = true

	guard := testAgent("g1", RoleSecurity, g.Index(5, 5), g)
	worker := testAgent("w1", RoleWorker, g.Index(5, 5), g)

	guardCands := Evaluate(guard, g, jobs.NewRegistry(), nil, DefaultWeights())
	foundPatrol := false
	for _, c := range guardCands {
		if c.Kind == ActionPatrol {
			foundPatrol = true
			assert.Equal(t, camp, c.Target)
		}
	}
	assert.True(t, foundPatrol)

	for _, c := range Evaluate(worker, g, jobs.NewRegistry(), nil, DefaultWeights()) {
		assert.NotEqual(t, ActionPatrol, c.Kind)
	}
}

func TestScoreRelaxNeedsSocialHub(t *testing.T) {
	g := world.NewGrid(16, 16)
	a := testAgent("a1", RoleWorker, g.Index(5, 5), g)

	for _, c := range Evaluate(a, g, jobs.NewRegistry(), nil, DefaultWeights()) {
		assert.NotEqual(t, ActionRelax, c.Kind, "no social hub, no relax candidate")
	}

	hub := g.Index(8, 8)
	g.Tiles[hub].Building = world.BuildingSocialHub
	a.Needs.Mood = 30

	found := false
	for _, c := range Evaluate(a, g, jobs.NewRegistry(), nil, DefaultWeights()) {
		if c.Kind == ActionRelax {
			found = true
			assert.Equal(t, hub, c.Target)
		}
	}
	assert.True(t, found)
}
