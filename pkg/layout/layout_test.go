package layout

import (
	"context"
	"slices"
	"testing"

	"github.com/btcsuite/btcd/btcutil"

	errs "github.com/panon-btc/txlineage/pkg/errors"
	"github.com/panon-btc/txlineage/pkg/layout/solver"
	"github.com/panon-btc/txlineage/pkg/render/model"
	"github.com/panon-btc/txlineage/pkg/render/text"
	"github.com/panon-btc/txlineage/pkg/txgraph"
)

// stubSolver records the request and spreads nodes on a diagonal so every
// node gets a distinct column and row.
type stubSolver struct {
	got  solver.Graph
	fail error
}

func (s *stubSolver) Solve(_ context.Context, g solver.Graph) (*solver.Result, error) {
	s.got = g
	if s.fail != nil {
		return nil, s.fail
	}
	res := &solver.Result{Positions: make(map[string]solver.Position)}
	for i, id := range g.Order {
		res.Positions[id] = solver.Position{ID: id, X: float64(i) * 300, Y: float64(i) * 100}
	}
	return res, nil
}

func sats(v int64) *btcutil.Amount {
	a := btcutil.Amount(v)
	return &a
}

// chainGraph is root <- mid <- top: root spends mid's vout 0, mid spends
// top's vout 0.
func chainGraph() *txgraph.GraphModel {
	g := txgraph.New("root")
	g.Nodes["top"] = &txgraph.TxNode{
		Txid:    "top",
		Inputs:  []txgraph.TxInput{{Sequence: 0xFFFFFFFF}},
		Outputs: []txgraph.TxOutput{{Value: 5000}},
	}
	g.Nodes["mid"] = &txgraph.TxNode{
		Txid:    "mid",
		VSize:   110,
		Inputs:  []txgraph.TxInput{{Prevout: &txgraph.OutPoint{Txid: "top", Vout: 0}, Value: sats(5000), Sequence: 0xFFFFFFFF}},
		Outputs: []txgraph.TxOutput{{Value: 4500}},
	}
	g.Nodes["root"] = &txgraph.TxNode{
		Txid:    "root",
		VSize:   110,
		Inputs:  []txgraph.TxInput{{Prevout: &txgraph.OutPoint{Txid: "mid", Vout: 0}, Value: sats(4500), Sequence: 0xFFFFFFFF}},
		Outputs: []txgraph.TxOutput{{Value: 4000}},
	}
	g.Edges = []txgraph.AncestryEdge{
		{SpendingTxid: "root", InputIndex: 0, FundingTxid: "mid", FundingVout: 0},
		{SpendingTxid: "mid", InputIndex: 0, FundingTxid: "top", FundingVout: 0},
	}
	return g
}

func newTestEngine(s solver.Solver) *Engine {
	return NewEngine(s, text.NewFixedMeasurer(), model.DefaultConstants())
}

func TestComputeFullGraph(t *testing.T) {
	stub := &stubSolver{}
	lay, err := newTestEngine(stub).Compute(context.Background(), chainGraph(), nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if len(lay.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(lay.Nodes))
	}
	if len(lay.Edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(lay.Edges))
	}
	for _, n := range lay.Nodes {
		if !n.Visible {
			t.Errorf("node %s should start visible", n.Txid)
		}
		if n.Model == nil {
			t.Errorf("node %s missing render model", n.Txid)
		}
		if n.Width <= 0 || n.Height <= 0 {
			t.Errorf("node %s has no size", n.Txid)
		}
	}
	if lay.Width <= 0 || lay.Height <= 0 {
		t.Error("layout extents not computed")
	}
}

func TestComputePortSynthesis(t *testing.T) {
	stub := &stubSolver{}
	if _, err := newTestEngine(stub).Compute(context.Background(), chainGraph(), nil); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var mid solver.Node
	for _, n := range stub.got.Nodes {
		if n.ID == "mid" {
			mid = n
		}
	}
	if mid.ID == "" {
		t.Fatal("mid not submitted to solver")
	}

	// mid spends top's vout 0 (incoming port in0) and funds root's input
	// (outgoing port out0).
	var ids []string
	for _, p := range mid.Ports {
		ids = append(ids, p.ID)
	}
	if !slices.Contains(ids, "in0") || !slices.Contains(ids, "out0") {
		t.Errorf("mid ports = %v, want in0 and out0", ids)
	}

	// Edge orientation: spending node is the source.
	for _, e := range stub.got.Edges {
		if e.SourceNode == "root" && e.TargetNode != "mid" {
			t.Errorf("root's edge targets %s, want mid", e.TargetNode)
		}
	}
}

func TestComputePortDedupAndOrder(t *testing.T) {
	// Two inputs of root spend two distinct vouts of the same parent;
	// one extra edge repeats vout 1 from a second child.
	g := txgraph.New("root")
	g.Nodes["parent"] = &txgraph.TxNode{
		Txid:    "parent",
		Inputs:  []txgraph.TxInput{{Sequence: 0xFFFFFFFF}},
		Outputs: []txgraph.TxOutput{{Value: 1}, {Value: 2}, {Value: 3}},
	}
	g.Nodes["root"] = &txgraph.TxNode{
		Txid: "root",
		Inputs: []txgraph.TxInput{
			{Prevout: &txgraph.OutPoint{Txid: "parent", Vout: 2}, Sequence: 0xFFFFFFFF},
			{Prevout: &txgraph.OutPoint{Txid: "parent", Vout: 0}, Sequence: 0xFFFFFFFF},
		},
		Outputs: []txgraph.TxOutput{{Value: 1}},
	}
	g.Edges = []txgraph.AncestryEdge{
		{SpendingTxid: "root", InputIndex: 0, FundingTxid: "parent", FundingVout: 2},
		{SpendingTxid: "root", InputIndex: 1, FundingTxid: "parent", FundingVout: 0},
	}

	stub := &stubSolver{}
	if _, err := newTestEngine(stub).Compute(context.Background(), g, nil); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	for _, n := range stub.got.Nodes {
		if n.ID != "parent" {
			continue
		}
		var outs []string
		for _, p := range n.Ports {
			if p.Side == solver.SideOutgoing {
				outs = append(outs, p.ID)
			}
		}
		if !slices.Equal(outs, []string{"out0", "out2"}) {
			t.Errorf("parent outgoing ports = %v, want [out0 out2]", outs)
		}
	}
}

func TestComputeActiveSubset(t *testing.T) {
	stub := &stubSolver{}
	active := map[string]bool{"root": true, "mid": true}

	lay, err := newTestEngine(stub).Compute(context.Background(), chainGraph(), active)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if len(lay.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(lay.Nodes))
	}
	if _, ok := lay.Node("top"); ok {
		t.Error("inactive node leaked into layout")
	}
	if len(lay.Edges) != 1 {
		t.Fatalf("edges = %d, want 1 (mid->top edge excluded)", len(lay.Edges))
	}
}

func TestComputeEmptyActiveSet(t *testing.T) {
	stub := &stubSolver{}
	lay, err := newTestEngine(stub).Compute(context.Background(), chainGraph(), map[string]bool{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(lay.Nodes) != 0 || len(lay.Edges) != 0 {
		t.Errorf("empty active set produced %d nodes, %d edges", len(lay.Nodes), len(lay.Edges))
	}
}

func TestComputeSolverFailurePropagates(t *testing.T) {
	fail := errs.Wrap(errs.ErrCodeSolverIncomplete, &solver.MissingNodeError{NodeID: "mid"}, "incomplete layout")
	stub := &stubSolver{fail: fail}

	_, err := newTestEngine(stub).Compute(context.Background(), chainGraph(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errs.Is(err, errs.ErrCodeSolverIncomplete) {
		t.Errorf("error code = %v, want SOLVER_INCOMPLETE", errs.GetCode(err))
	}
}
