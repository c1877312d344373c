// Package effects decouples simulation mutation from presentation: systems
// append reportable deltas to a pending queue and headlines to a news feed,
// and the consuming layer (renderer, audio, UI) drains them once per
// notification cycle.
package effects

import "sort"

// Kind tags the effect union.
type Kind uint8

const (
	KindGridUpdate Kind = iota // Batched tile changes from one tick
	KindParticle               // FX trigger at a tile
	KindAudio                  // Audio cue
)

// Well-known audio cues.
const (
	CueBuild   = "build"
	CueMine    = "mine"
	CueSell    = "sell"
	CueDeath   = "death"
	CueError   = "error"
	CueRecruit = "recruit"
)

// Well-known particle triggers.
const (
	FXDust     = "dust"
	FXRockfall = "rockfall"
)

// Effect is one reportable delta. Exactly one payload group is meaningful
// per Kind: Tiles for grid updates, FX+Tile for particles, Cue+Tile for
// audio.
type Effect struct {
	Kind  Kind   `json:"kind"`
	Tiles []int  `json:"tiles,omitempty"`
	FX    string `json:"fx,omitempty"`
	Cue   string `json:"cue,omitempty"`
	Tile  int    `json:"tile,omitempty"`
}

// Queue accumulates effects during a tick. Tile changes are deduplicated by
// index so a tile touched by two systems in one tick reports once.
type Queue struct {
	dirty map[int]struct{}
	list  []Effect
}

// NewQueue creates an empty effect queue.
func NewQueue() *Queue {
	return &Queue{dirty: make(map[int]struct{})}
}

// MarkTile records a tile change for the current tick's grid batch.
func (q *Queue) MarkTile(idx int) {
	q.dirty[idx] = struct{}{}
}

// MarkTiles records several tile changes at once.
func (q *Queue) MarkTiles(idxs []int) {
	for _, idx := range idxs {
		q.dirty[idx] = struct{}{}
	}
}

// Particle enqueues an FX trigger.
func (q *Queue) Particle(fx string, tile int) {
	q.list = append(q.list, Effect{Kind: KindParticle, FX: fx, Tile: tile})
}

// Audio enqueues an audio cue.
func (q *Queue) Audio(cue string, tile int) {
	q.list = append(q.list, Effect{Kind: KindAudio, Cue: cue, Tile: tile})
}

// Pending reports whether anything is queued.
func (q *Queue) Pending() bool {
	return len(q.list) > 0 || len(q.dirty) > 0
}

// Drain returns all queued effects and clears the queue. Tile changes are
// folded into a single sorted grid-update batch. Effects do not persist
// beyond one drain.
func (q *Queue) Drain() []Effect {
	out := q.list
	q.list = nil
	if len(q.dirty) > 0 {
		tiles := make([]int, 0, len(q.dirty))
		for idx := range q.dirty {
			tiles = append(tiles, idx)
		}
		sort.Ints(tiles)
		out = append(out, Effect{Kind: KindGridUpdate, Tiles: tiles})
		q.dirty = make(map[int]struct{})
	}
	return out
}
