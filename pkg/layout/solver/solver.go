// Package solver defines the contract with the external layered-layout
// engine and provides the Graphviz-backed implementation.
//
// The engine hands the solver a node list with pixel sizes and ordered
// ports, plus an edge list between ports, and gets back a position per
// node. Everything else about the layered algorithm (rank assignment,
// crossing reduction, orthogonal routing) is the solver's business.
package solver

import (
	"context"
	"fmt"
)

// Side names which side of a node a port attaches to. Incoming ports face
// the node's ancestors on the left, outgoing ports face its descendants
// on the right.
type Side string

const (
	SideIncoming Side = "incoming"
	SideOutgoing Side = "outgoing"
)

// Port is a fixed-order attachment point on a node. Index is the input or
// output index the port represents; ports on one side are always ordered
// by ascending Index and the solver must not reorder them.
type Port struct {
	ID    string
	Side  Side
	Index int
}

// Node is a layout participant with a precomputed pixel size.
type Node struct {
	ID     string
	Width  float64
	Height float64
	Ports  []Port
}

// Edge connects a source port on the spending node to a target port on
// the funding node, pointing in ancestry direction: toward where the
// money came from.
type Edge struct {
	ID         string
	SourceNode string
	SourcePort string
	TargetNode string
	TargetPort string
}

// Graph is one layout request. Order carries the sibling-ordering hint:
// node IDs in the order the caller would like same-rank nodes stacked.
// The solver honors it as a starting arrangement, not a mandate.
type Graph struct {
	Nodes []Node
	Edges []Edge
	Order []string
}

// Position is a solved node placement. X and Y locate the node's top-left
// corner in pixels, y growing downward.
type Position struct {
	ID string
	X  float64
	Y  float64
}

// Result holds solved positions keyed by node ID plus the overall canvas
// size in pixels.
type Result struct {
	Positions map[string]Position
	Width     float64
	Height    float64
}

// Solver runs one layered layout. Implementations must return a
// *MissingNodeError when the engine's output omits a requested node.
type Solver interface {
	Solve(ctx context.Context, g Graph) (*Result, error)
}

// MissingNodeError reports a node that was submitted to the solver but
// absent from its output. The engine treats this as a solver failure, not
// a malformed-input condition.
type MissingNodeError struct {
	NodeID string
}

// Error implements the error interface.
func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("solver result missing node %q", e.NodeID)
}
