package jobs

import (
	"github.com/outpost-sim/outpost/internal/world"
)

// Registry is the mutable list of open work items. It is owned by the
// simulation loop and accessed only from the tick goroutine; the single-
// claim invariant relies on that serial access.
type Registry struct {
	jobs []*Job
	byID map[string]*Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Job)}
}

// Add inserts a job unless one with the same id already exists.
// Returns true when the job was inserted.
func (r *Registry) Add(j *Job) bool {
	if _, exists := r.byID[j.ID]; exists {
		return false
	}
	r.jobs = append(r.jobs, j)
	r.byID[j.ID] = j
	return true
}

// Get returns the job with the given id, or nil.
func (r *Registry) Get(id string) *Job {
	return r.byID[id]
}

// Remove deletes a job outright (completion or target exhaustion).
func (r *Registry) Remove(id string) {
	j, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	for i, cur := range r.jobs {
		if cur == j {
			r.jobs = append(r.jobs[:i], r.jobs[i+1:]...)
			break
		}
	}
}

// Claim assigns a job to an agent. A job already held by another agent
// cannot be claimed; re-claiming one's own job is a no-op success.
func (r *Registry) Claim(id, agentID string) bool {
	j, ok := r.byID[id]
	if !ok {
		return false
	}
	if j.AssignedTo != "" && j.AssignedTo != agentID {
		return false
	}
	j.AssignedTo = agentID
	return true
}

// Release clears a job's assignment, keeping the job claimable by others.
func (r *Registry) Release(id string) {
	if j, ok := r.byID[id]; ok {
		j.AssignedTo = ""
	}
}

// ReleaseAllFor clears every assignment held by an agent (death, removal).
func (r *Registry) ReleaseAllFor(agentID string) {
	for _, j := range r.jobs {
		if j.AssignedTo == agentID {
			j.AssignedTo = ""
		}
	}
}

// Jobs returns the live job list. Callers must not retain the slice across
// ticks.
func (r *Registry) Jobs() []*Job {
	return r.jobs
}

// Len returns the number of open jobs.
func (r *Registry) Len() int {
	return len(r.jobs)
}

// ScanConstruction walks the grid for under-construction structure heads and
// creates a build job for each that lacks one. Idempotent: a second scan
// over an unchanged grid creates nothing. Returns the ids created.
func (r *Registry) ScanConstruction(g *world.Grid, priority int) []string {
	var created []string
	for i := range g.Tiles {
		t := &g.Tiles[i]
		if !t.UnderConstruction || t.HeadIndex != world.NoHead {
			continue
		}
		id := BuildJobID(i)
		if r.Add(&Job{
			ID:       id,
			Type:     TypeBuild,
			Purpose:  PurposePool,
			Target:   i,
			Priority: priority,
		}) {
			created = append(created, id)
		}
	}
	return created
}

// PruneStale removes jobs whose underlying condition has resolved: build
// targets no longer under construction, mine targets without a vein, rehab
// targets without a camp, orders whose agent is gone. Assigned agents
// discover the removal on their next tick and reset to idle.
func (r *Registry) PruneStale(g *world.Grid) []string {
	var removed []string
	for _, j := range append([]*Job(nil), r.jobs...) {
		t := g.Head(j.Target)
		if t == nil {
			removed = append(removed, j.ID)
			r.Remove(j.ID)
			continue
		}
		stale := false
		switch j.Type {
		case TypeBuild:
			stale = !t.UnderConstruction
		case TypeMine:
			stale = t.Foliage != world.FoliageGoldVein
		case TypeRehabilitate, TypePatrol:
			stale = t.Foliage != world.FoliageIllegalCamp
		case TypeFarm:
			stale = t.Building != world.BuildingGreenhouse || t.UnderConstruction
		case TypeMove:
			// Orders are bound to one agent. An order that lost its agent
			// can never be picked up again.
			stale = j.AssignedTo == ""
		}
		if stale {
			removed = append(removed, j.ID)
			r.Remove(j.ID)
		}
	}
	return removed
}
