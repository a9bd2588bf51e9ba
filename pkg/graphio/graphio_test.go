package graphio

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panon-btc/txlineage/pkg/labels"
	"github.com/panon-btc/txlineage/pkg/layout"
	"github.com/panon-btc/txlineage/pkg/txgraph"
)

func sampleGraph() *txgraph.GraphModel {
	g := txgraph.New("root")
	g.Nodes["root"] = &txgraph.TxNode{
		Txid:    "root",
		Inputs:  []txgraph.TxInput{{Prevout: &txgraph.OutPoint{Txid: "parent", Vout: 0}, Sequence: 0xFFFFFFFF}},
		Outputs: []txgraph.TxOutput{{Value: 900}},
	}
	g.Nodes["parent"] = &txgraph.TxNode{
		Txid:    "parent",
		Inputs:  []txgraph.TxInput{{Sequence: 0xFFFFFFFF}},
		Outputs: []txgraph.TxOutput{{Value: 1000}},
	}
	g.Edges = []txgraph.AncestryEdge{
		{SpendingTxid: "root", InputIndex: 0, FundingTxid: "parent", FundingVout: 0},
		{SpendingTxid: "parent", InputIndex: 0, FundingTxid: "missing", FundingVout: 1},
	}
	g.Labels.Add(labels.TxRef("root"), labels.Entry{FileID: "f", FileName: "mine", Label: "payment"})
	g.AddrIndex["bc1qexample"] = []txgraph.AddrOccurrence{{Txid: "root", Index: 0, IsInput: false}}
	g.Stats = txgraph.ComputeStats(g)
	return g
}

func TestGraphRoundTrip(t *testing.T) {
	g := sampleGraph()

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}

	back, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}

	if back.RootTxid != "root" {
		t.Errorf("root = %q", back.RootTxid)
	}
	if len(back.Nodes) != 2 || len(back.Edges) != 2 {
		t.Errorf("nodes=%d edges=%d", len(back.Nodes), len(back.Edges))
	}
	if got := labels.Lines(back.LabelsFor(labels.TxRef("root"))); len(got) != 1 || got[0] != "mine:payment" {
		t.Errorf("labels lost in round trip: %v", got)
	}
	// Stats recomputed on read: the dangling edge does not count.
	if back.Stats.EdgeCount != 1 {
		t.Errorf("edge count = %d, want 1", back.Stats.EdgeCount)
	}
}

func TestGraphDeterministicOutput(t *testing.T) {
	g := sampleGraph()
	a, _ := MarshalGraph(g)
	b, _ := MarshalGraph(g)
	if !bytes.Equal(a, b) {
		t.Error("marshaling is not deterministic")
	}
	// Sorted node order: parent before root.
	if bytes.Index(a, []byte(`"parent"`)) > bytes.Index(a, []byte(`"root",`)) &&
		!strings.HasPrefix(string(a), "{") {
		t.Error("unexpected output shape")
	}
}

func TestGraphValidation(t *testing.T) {
	if _, err := ToModel(Graph{}); err == nil {
		t.Error("missing root should fail")
	}

	wire := Graph{Root: "r", Nodes: []*txgraph.TxNode{{Txid: "a"}, {Txid: "a"}}}
	if _, err := ToModel(wire); err == nil {
		t.Error("duplicate nodes should fail")
	}

	wire = Graph{Root: "r", Nodes: []*txgraph.TxNode{{}}}
	if _, err := ToModel(wire); err == nil {
		t.Error("unnamed node should fail")
	}

	if _, err := UnmarshalGraph([]byte("{not json")); err == nil {
		t.Error("bad JSON should fail")
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(sampleGraph(), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	back, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if len(back.Nodes) != 2 {
		t.Errorf("nodes = %d", len(back.Nodes))
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	l := &layout.Layout{
		Nodes: []layout.PositionedNode{
			{Txid: "root", X: 300, Y: 10, Width: 200, Height: 80, Visible: true},
		},
		Edges: []layout.PositionedEdge{
			{ID: "parent:0->root:0", SpendingTxid: "root", FundingTxid: "parent", Visible: true},
		},
		Width:  500,
		Height: 90,
	}

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if len(back.Nodes) != 1 || back.Nodes[0].Txid != "root" || back.Width != 500 {
		t.Errorf("layout mangled: %+v", back)
	}

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	if _, err := ReadLayoutFile(path); err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
}
