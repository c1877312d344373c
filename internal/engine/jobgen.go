package engine

// JobGenSystem keeps the shared job pool aligned with the grid: every
// construction site has exactly one build job, and jobs whose target no
// longer exists are pruned.
type JobGenSystem struct {
	Every float64
}

// buildJobPriority is the base priority for construction work.
const buildJobPriority = 50

func (s *JobGenSystem) Name() string      { return "jobgen" }
func (s *JobGenSystem) Priority() int     { return 10 }
func (s *JobGenSystem) Interval() float64 { return s.Every }

func (s *JobGenSystem) Run(ws *WorldState, dt float64) {
	added := ws.Registry.ScanConstruction(ws.Grid, buildJobPriority)
	removed := ws.Registry.PruneStale(ws.Grid)
	if len(added) > 0 || len(removed) > 0 {
		ws.MarkDirty("jobs")
	}
}
