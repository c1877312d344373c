// Package path implements weighted A* pathfinding over the world grid.
// Movement is 8-directional with a Chebyshev-distance heuristic, which is
// admissible because no tile costs less than 1.0 to enter.
package path

import (
	"container/heap"

	"github.com/outpost-sim/outpost/internal/world"
)

// DefaultBudget returns the default expansion cap for a grid: half its tile
// count. The cap is a responsiveness trade-off, not a correctness bound —
// hitting it behaves exactly like an unreachable target.
func DefaultBudget(g *world.Grid) int {
	return g.Width * g.Height / 2
}

// Find returns an ordered tile-index sequence from start to end, excluding
// start, or nil when no path exists within the default expansion budget.
// When start equals end it returns the single-element path [end].
func Find(g *world.Grid, start, end int) []int {
	return FindBudget(g, start, end, DefaultBudget(g))
}

// FindBudget is Find with an explicit expansion cap.
func FindBudget(g *world.Grid, start, end, maxExpansions int) []int {
	if !g.ValidIndex(start) || !g.ValidIndex(end) {
		return nil
	}
	if start == end {
		return []int{end}
	}
	// The destination may be reachable even when it is itself special-cased
	// (e.g. a pond tile targeted by a command); everything else impassable
	// is excluded from expansion.
	if !g.Passable(end) && g.Tile(end).Locked {
		return nil
	}

	open := &openSet{}
	heap.Init(open)

	gScore := map[int]float64{start: 0}
	cameFrom := make(map[int]int)
	closed := make(map[int]bool)

	heap.Push(open, node{idx: start, f: float64(g.Chebyshev(start, end))})

	buf := make([]int, 0, 8)
	expansions := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(node)
		if current.idx == end {
			return reconstruct(cameFrom, start, end)
		}
		if closed[current.idx] {
			continue
		}
		closed[current.idx] = true

		expansions++
		if expansions > maxExpansions {
			return nil
		}

		buf = g.Neighbors8(current.idx, buf[:0])
		for _, nb := range buf {
			if closed[nb] {
				continue
			}
			// Impassable tiles are excluded except the destination itself.
			if nb != end && !g.Passable(nb) {
				continue
			}
			tentative := gScore[current.idx] + g.MoveCost(nb)
			if prev, seen := gScore[nb]; seen && tentative >= prev {
				continue
			}
			gScore[nb] = tentative
			cameFrom[nb] = current.idx
			heap.Push(open, node{
				idx:   nb,
				f:     tentative + float64(g.Chebyshev(nb, end)),
				order: open.pushes,
			})
		}
	}

	return nil
}

// Cost sums the tile entry costs along a path.
func Cost(g *world.Grid, p []int) float64 {
	total := 0.0
	for _, idx := range p {
		total += g.MoveCost(idx)
	}
	return total
}

// reconstruct walks the cameFrom map backward from end to start, reverses,
// and drops the start tile — the agent is already standing there.
func reconstruct(cameFrom map[int]int, start, end int) []int {
	var rev []int
	cur := end
	for cur != start {
		rev = append(rev, cur)
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		cur = prev
	}
	out := make([]int, len(rev))
	for i, idx := range rev {
		out[len(rev)-1-i] = idx
	}
	return out
}

// node is an open-set entry. order preserves insertion sequence so that
// equal f-scores pop first-pushed-first, keeping runs deterministic.
type node struct {
	idx   int
	f     float64
	order int
}

type openSet struct {
	nodes  []node
	pushes int
}

func (s *openSet) Len() int { return len(s.nodes) }

func (s *openSet) Less(i, j int) bool {
	if s.nodes[i].f != s.nodes[j].f {
		return s.nodes[i].f < s.nodes[j].f
	}
	return s.nodes[i].order < s.nodes[j].order
}

func (s *openSet) Swap(i, j int) { s.nodes[i], s.nodes[j] = s.nodes[j], s.nodes[i] }

func (s *openSet) Push(x any) {
	s.pushes++
	s.nodes = append(s.nodes, x.(node))
}

func (s *openSet) Pop() any {
	old := s.nodes
	n := len(old)
	item := old[n-1]
	s.nodes = old[:n-1]
	return item
}
