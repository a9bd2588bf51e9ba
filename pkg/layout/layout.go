// Package layout orchestrates the full positioning pipeline: it restricts
// a graph to its active nodes, builds render models, computes the
// model-order hint, runs the external layered solver, and applies the
// crossing-minimization post-passes.
package layout

import (
	"context"
	"fmt"
	"slices"

	"github.com/panon-btc/txlineage/pkg/layout/crossmin"
	"github.com/panon-btc/txlineage/pkg/layout/solver"
	"github.com/panon-btc/txlineage/pkg/render/model"
	"github.com/panon-btc/txlineage/pkg/render/text"
	"github.com/panon-btc/txlineage/pkg/txgraph"
)

// PositionedNode is a laid-out node: solved position, measured size, and
// the render model the size came from, so consumers never re-measure.
type PositionedNode struct {
	Txid    string                 `json:"txid"`
	X       float64                `json:"x"`
	Y       float64                `json:"y"`
	Width   float64                `json:"width"`
	Height  float64                `json:"height"`
	Visible bool                   `json:"visible"`
	Model   *model.NodeRenderModel `json:"model"`
}

// PositionedEdge is a laid-out ancestry link between two positioned nodes.
type PositionedEdge struct {
	ID           string `json:"id"`
	SpendingTxid string `json:"spending_txid"`
	InputIndex   int    `json:"input_index"`
	FundingTxid  string `json:"funding_txid"`
	FundingVout  int    `json:"funding_vout"`
	Visible      bool   `json:"visible"`
}

// Layout is the positioned form of a graph's active subset.
type Layout struct {
	Nodes  []PositionedNode `json:"nodes"`
	Edges  []PositionedEdge `json:"edges"`
	Width  float64          `json:"width"`
	Height float64          `json:"height"`
}

// Node returns the positioned node for txid, if present.
func (l *Layout) Node(txid string) (*PositionedNode, bool) {
	for i := range l.Nodes {
		if l.Nodes[i].Txid == txid {
			return &l.Nodes[i], true
		}
	}
	return nil, false
}

// Engine holds the pieces a layout run needs. All fields must be set;
// NewEngine fills in the crossing-minimization defaults.
type Engine struct {
	Solver   solver.Solver
	Measurer text.Measurer
	Consts   model.Constants
	Crossmin crossmin.Options
}

// NewEngine creates an engine with default crossing-minimization tuning.
func NewEngine(s solver.Solver, m text.Measurer, c model.Constants) *Engine {
	return &Engine{Solver: s, Measurer: m, Consts: c, Crossmin: crossmin.DefaultOptions()}
}

// Compute lays out the graph restricted to the active txid set. A nil
// active set means every node in the graph. The returned layout lists
// nodes in solved order; all nodes and edges start visible.
func (e *Engine) Compute(ctx context.Context, g *txgraph.GraphModel, active map[string]bool) (*Layout, error) {
	ids := activeTxids(g, active)
	if len(ids) == 0 {
		return &Layout{}, nil
	}

	edges := visibleEdges(g, active)

	builder := model.NewBuilder(g, e.Measurer, e.Consts)
	builder.Active = active
	models := make(map[string]*model.NodeRenderModel, len(ids))
	for _, id := range ids {
		m, ok := builder.Build(id)
		if !ok {
			continue
		}
		models[id] = m
	}

	order := ModelOrder(ids, edges)

	res, err := e.Solver.Solve(ctx, solverGraph(order, models, edges))
	if err != nil {
		return nil, err
	}

	lay := &Layout{
		Nodes: make([]PositionedNode, 0, len(order)),
		Edges: make([]PositionedEdge, 0, len(edges)),
	}
	for _, id := range order {
		m := models[id]
		pos := res.Positions[id]
		lay.Nodes = append(lay.Nodes, PositionedNode{
			Txid:    id,
			X:       pos.X,
			Y:       pos.Y,
			Width:   m.Width,
			Height:  m.Height,
			Visible: true,
			Model:   m,
		})
	}
	for _, edge := range edges {
		lay.Edges = append(lay.Edges, PositionedEdge{
			ID:           edge.ID(),
			SpendingTxid: edge.SpendingTxid,
			InputIndex:   int(edge.InputIndex),
			FundingTxid:  edge.FundingTxid,
			FundingVout:  int(edge.FundingVout),
			Visible:      true,
		})
	}

	e.minimizeCrossings(lay, edges)
	lay.Width, lay.Height = extents(lay.Nodes)
	return lay, nil
}

// minimizeCrossings runs both post-passes over the layout in place.
func (e *Engine) minimizeCrossings(lay *Layout, edges []txgraph.AncestryEdge) {
	cn := make([]*crossmin.Node, len(lay.Nodes))
	for i := range lay.Nodes {
		n := &lay.Nodes[i]
		cn[i] = &crossmin.Node{ID: n.Txid, X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
	}
	ce := make([]crossmin.Edge, len(edges))
	for i, edge := range edges {
		ce[i] = crossmin.Edge{
			SpendingTxid: edge.SpendingTxid,
			InputIndex:   int(edge.InputIndex),
			FundingTxid:  edge.FundingTxid,
			FundingVout:  int(edge.FundingVout),
		}
	}

	crossmin.ReorderLeftmostSources(cn, ce, e.Crossmin)
	crossmin.ReorderBridgeGroups(cn, ce, e.Crossmin)

	for i := range lay.Nodes {
		lay.Nodes[i].Y = cn[i].Y
	}
}

// activeTxids returns the active node set as a sorted slice, the initial
// rank order for the model-order heuristic.
func activeTxids(g *txgraph.GraphModel, active map[string]bool) []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		if active == nil || active[id] {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// visibleEdges returns the edges whose both endpoints are present and
// active. Dangling edges never reach the solver.
func visibleEdges(g *txgraph.GraphModel, active map[string]bool) []txgraph.AncestryEdge {
	var out []txgraph.AncestryEdge
	for _, e := range g.Edges {
		if !g.HasNode(e.SpendingTxid) || !g.HasNode(e.FundingTxid) {
			continue
		}
		if active != nil && (!active[e.SpendingTxid] || !active[e.FundingTxid]) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// solverGraph assembles the solver request: one node per render model with
// ports synthesized for every input and output index a visible edge
// references, ordered ascending per side.
func solverGraph(order []string, models map[string]*model.NodeRenderModel, edges []txgraph.AncestryEdge) solver.Graph {
	inIdx := make(map[string][]int)
	outIdx := make(map[string][]int)
	for _, e := range edges {
		inIdx[e.SpendingTxid] = appendIndex(inIdx[e.SpendingTxid], int(e.InputIndex))
		outIdx[e.FundingTxid] = appendIndex(outIdx[e.FundingTxid], int(e.FundingVout))
	}

	sg := solver.Graph{Order: order}
	for _, id := range order {
		m := models[id]
		n := solver.Node{ID: id, Width: m.Width, Height: m.Height}
		for _, i := range inIdx[id] {
			n.Ports = append(n.Ports, solver.Port{ID: inPort(i), Side: solver.SideIncoming, Index: i})
		}
		for _, i := range outIdx[id] {
			n.Ports = append(n.Ports, solver.Port{ID: outPort(i), Side: solver.SideOutgoing, Index: i})
		}
		sg.Nodes = append(sg.Nodes, n)
	}
	for _, e := range edges {
		sg.Edges = append(sg.Edges, solver.Edge{
			ID:         e.ID(),
			SourceNode: e.SpendingTxid,
			SourcePort: inPort(int(e.InputIndex)),
			TargetNode: e.FundingTxid,
			TargetPort: outPort(int(e.FundingVout)),
		})
	}
	return sg
}

// appendIndex inserts i into a sorted index slice, skipping duplicates.
func appendIndex(s []int, i int) []int {
	pos, found := slices.BinarySearch(s, i)
	if found {
		return s
	}
	return slices.Insert(s, pos, i)
}

func inPort(index int) string  { return fmt.Sprintf("in%d", index) }
func outPort(index int) string { return fmt.Sprintf("out%d", index) }

// extents returns the bounding box of the positioned nodes.
func extents(nodes []PositionedNode) (w, h float64) {
	for _, n := range nodes {
		w = max(w, n.X+n.Width)
		h = max(h, n.Y+n.Height)
	}
	return w, h
}
