package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost-sim/outpost/internal/world"
)

func gridWithSite(t *testing.T) (*world.Grid, int) {
	t.Helper()
	g := world.NewGrid(12, 12)
	require.True(t, g.PlaceBuilding(world.BuildingMine, 4, 4))
	return g, g.Index(4, 4)
}

func TestScanConstructionIdempotent(t *testing.T) {
	g, site := gridWithSite(t)
	r := NewRegistry()

	created := r.ScanConstruction(g, 50)
	require.Equal(t, []string{BuildJobID(site)}, created)
	assert.Equal(t, 1, r.Len())

	// Second scan over the unchanged grid creates nothing.
	assert.Empty(t, r.ScanConstruction(g, 50))
	assert.Equal(t, 1, r.Len())
}

func TestScanConstructionMultiTileHeadOnly(t *testing.T) {
	g := world.NewGrid(12, 12)
	require.True(t, g.PlaceBuilding(world.BuildingHQ, 3, 3))
	r := NewRegistry()

	created := r.ScanConstruction(g, 50)
	// One job for the 2x2 footprint, targeting the head tile.
	require.Len(t, created, 1)
	assert.Equal(t, g.Index(3, 3), r.Get(created[0]).Target)
}

func TestClaimSemantics(t *testing.T) {
	g, site := gridWithSite(t)
	r := NewRegistry()
	r.ScanConstruction(g, 50)
	id := BuildJobID(site)

	require.True(t, r.Claim(id, "a1"))
	assert.False(t, r.Claim(id, "a2"), "second claimant must be refused")
	assert.True(t, r.Claim(id, "a1"), "holder may re-claim its own job")

	r.Release(id)
	assert.True(t, r.Claim(id, "a2"))
}

func TestClaimUnknownJob(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Claim("missing", "a1"))
}

func TestReleaseAllFor(t *testing.T) {
	r := NewRegistry()
	r.Add(&Job{ID: "j1", Type: TypeMine, Target: 1})
	r.Add(&Job{ID: "j2", Type: TypeMine, Target: 2})
	r.Claim("j1", "a1")
	r.Claim("j2", "a1")

	r.ReleaseAllFor("a1")
	assert.Empty(t, r.Get("j1").AssignedTo)
	assert.Empty(t, r.Get("j2").AssignedTo)
}

func TestPruneStaleBuildJob(t *testing.T) {
	g, site := gridWithSite(t)
	r := NewRegistry()
	r.ScanConstruction(g, 50)

	// Finish construction out from under the job.
	tile := g.Tile(site)
	tile.UnderConstruction = false
	tile.BuildTimeLeft = 0

	removed := r.PruneStale(g)
	assert.Equal(t, []string{BuildJobID(site)}, removed)
	assert.Zero(t, r.Len())
}

func TestPruneStaleMineJob(t *testing.T) {
	g := world.NewGrid(8, 8)
	idx := g.Index(2, 2)
	g.Tiles[idx].Foliage = world.FoliageGoldVein
	r := NewRegistry()
	r.Add(&Job{ID: "mine_j", Type: TypeMine, Target: idx})

	assert.Empty(t, r.PruneStale(g), "vein intact, job stays")

	g.Tiles[idx].Foliage = world.FoliageMineHole
	assert.Equal(t, []string{"mine_j"}, r.PruneStale(g))
}

func TestPruneStaleUnassignedOrder(t *testing.T) {
	g := world.NewGrid(8, 8)
	r := NewRegistry()
	r.Add(&Job{ID: "order_a1", Type: TypeMove, Target: g.Index(3, 3), AssignedTo: "a1"})

	assert.Empty(t, r.PruneStale(g), "a held order stays")

	// The agent dies; its assignments are released. Nothing else can ever
	// pick the order up, so the next prune must drop it.
	r.ReleaseAllFor("a1")
	assert.Equal(t, []string{"order_a1"}, r.PruneStale(g))
	assert.Zero(t, r.Len())
}

func TestAddDedupes(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Add(&Job{ID: "dup", Type: TypeMine, Target: 0}))
	assert.False(t, r.Add(&Job{ID: "dup", Type: TypeMine, Target: 0}))
	assert.Equal(t, 1, r.Len())
}
