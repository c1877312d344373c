// Package jobs provides the work-item registry: generation, claiming, and
// release of assignable jobs tied to target tiles.
package jobs

import (
	"fmt"

	"github.com/google/uuid"
)

// Type enumerates the kinds of assignable work.
type Type uint8

const (
	TypeBuild Type = iota
	TypeMine
	TypeFarm
	TypeRehabilitate
	TypeMove
	TypePatrol
)

// TypeName returns a human-readable name for a job type.
func TypeName(t Type) string {
	switch t {
	case TypeBuild:
		return "Build"
	case TypeMine:
		return "Mine"
	case TypeFarm:
		return "Farm"
	case TypeRehabilitate:
		return "Rehabilitate"
	case TypeMove:
		return "Move"
	case TypePatrol:
		return "Patrol"
	default:
		return "Unknown"
	}
}

// Purpose classifies why a job exists. Survival actions (sleep, eat, relax,
// socialize) never enter the registry; the enum replaces the string-prefix
// sentinels of older designs.
type Purpose uint8

const (
	PurposePool     Purpose = iota // Claimable colony work
	PurposeSurvival                // Agent-internal need fulfilment
	PurposeIllegal                 // Illegal-actor activity
)

// Job is a unit of assignable work. A job is claimable while AssignedTo is
// empty, and held by exactly one agent otherwise.
type Job struct {
	ID         string  `json:"id"`
	Type       Type    `json:"type"`
	Purpose    Purpose `json:"purpose"`
	Target     int     `json:"target"` // Tile index
	Priority   int     `json:"priority"`
	AssignedTo string  `json:"assigned_to,omitempty"`
}

// BuildJobID returns the deterministic id for a construction job on a tile.
// Construction scans de-duplicate naturally on this id.
func BuildJobID(tile int) string {
	return fmt.Sprintf("build_%d", tile)
}

// ManualJobID returns a unique id for a player- or system-issued job.
func ManualJobID(t Type, tile int) string {
	return fmt.Sprintf("%s_%d_%s", TypeName(t), tile, uuid.NewString()[:8])
}
