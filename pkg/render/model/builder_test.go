package model

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/panon-btc/txlineage/pkg/labels"
	"github.com/panon-btc/txlineage/pkg/render/text"
	"github.com/panon-btc/txlineage/pkg/txgraph"
)

func amt(sats int64) *btcutil.Amount {
	a := btcutil.Amount(sats)
	return &a
}

// fanGraph builds a node with ten outputs where only output 5 funds a
// visible edge to a present child.
func fanGraph() *txgraph.GraphModel {
	g := txgraph.New("child")

	outputs := make([]txgraph.TxOutput, 10)
	for i := range outputs {
		outputs[i] = txgraph.TxOutput{Value: btcutil.Amount(1000 * (i + 1)), ScriptType: txgraph.ScriptP2WPKH}
	}
	g.Nodes["fan"] = &txgraph.TxNode{
		Txid:    "fan",
		VSize:   200,
		Inputs:  []txgraph.TxInput{{Prevout: &txgraph.OutPoint{Txid: "grand", Vout: 0}, Value: amt(60000), Sequence: 0xFFFFFFFF}},
		Outputs: outputs,
	}
	g.Nodes["child"] = &txgraph.TxNode{
		Txid:    "child",
		VSize:   110,
		Inputs:  []txgraph.TxInput{{Prevout: &txgraph.OutPoint{Txid: "fan", Vout: 5}, Value: amt(6000), Sequence: 0xFFFFFFFF}},
		Outputs: []txgraph.TxOutput{{Value: 5500, ScriptType: txgraph.ScriptP2WPKH}},
	}
	g.Edges = []txgraph.AncestryEdge{
		{SpendingTxid: "child", InputIndex: 0, FundingTxid: "fan", FundingVout: 5},
	}
	return g
}

func newTestBuilder(g *txgraph.GraphModel) *Builder {
	return NewBuilder(g, text.NewFixedMeasurer(), DefaultConstants())
}

func TestBuildOutputCollapsing(t *testing.T) {
	b := newTestBuilder(fanGraph())
	m, ok := b.Build("fan")
	if !ok {
		t.Fatal("fan should build")
	}

	var rendered []int
	var gaps []OutputRow
	for _, row := range m.Outputs {
		if row.Gap {
			gaps = append(gaps, row)
			continue
		}
		rendered = append(rendered, row.Index)
	}

	if want := []int{0, 1, 2, 4, 5, 6, 7, 8, 9}; !slices.Equal(rendered, want) {
		t.Errorf("rendered indices = %v, want %v", rendered, want)
	}
	if len(gaps) != 1 || gaps[0].HiddenCount != 1 {
		t.Fatalf("expected one gap row hiding 1 output, got %+v", gaps)
	}
	// The gap sits between the rows for indices 2 and 4.
	if m.Outputs[3].Gap != true || m.Outputs[2].Index != 2 || m.Outputs[4].Index != 4 {
		t.Errorf("gap row misplaced: %+v", m.Outputs)
	}
	if gaps[0].Height != DefaultConstants().BaseRowHeight {
		t.Errorf("gap row should use the base height, got %v", gaps[0].Height)
	}
}

func TestBuildIdempotent(t *testing.T) {
	g := fanGraph()
	g.Labels.Add(labels.TxRef("fan"), labels.Entry{FileID: "f1", FileName: "mine", Label: "fanout"})

	b := newTestBuilder(g)
	first, _ := b.Build("fan")
	second, _ := b.Build("fan")

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	bts, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(bts) {
		t.Error("rebuilding on an unchanged graph must be byte-identical")
	}
}

func TestBuildLabelMergeOrder(t *testing.T) {
	g := fanGraph()
	node := g.Nodes["fan"]
	node.Outputs[0].Address = "bc1qexample000000000"
	g.Labels.Add(labels.AddrRef("bc1qexample000000000"), labels.Entry{FileID: "f1", FileName: "mine", Label: "savings"})
	g.Labels.Add(labels.OutputRef("fan", 0), labels.Entry{FileID: "f2", FileName: "pack", Label: "batch"})

	b := newTestBuilder(g)
	m, _ := b.Build("fan")

	got := m.Outputs[0].LabelLines
	want := []string{"mine:savings", "pack:batch"}
	if !slices.Equal(got, want) {
		t.Errorf("label lines = %v, want %v (address labels first)", got, want)
	}

	c := DefaultConstants()
	wantHeight := c.BaseRowHeight + 2*c.LabelLineHeight
	if m.Outputs[0].Height != wantHeight {
		t.Errorf("row height = %v, want %v", m.Outputs[0].Height, wantHeight)
	}
}

func TestBuildCoinbase(t *testing.T) {
	g := txgraph.New("cb")
	g.Nodes["cb"] = &txgraph.TxNode{
		Txid:    "cb",
		VSize:   120,
		Inputs:  []txgraph.TxInput{{Sequence: 0xFFFFFFFF}},
		Outputs: []txgraph.TxOutput{{Value: 625_000_000, ScriptType: txgraph.ScriptP2WPKH}},
	}

	m, ok := newTestBuilder(g).Build("cb")
	if !ok {
		t.Fatal("coinbase node should build")
	}
	if !m.Coinbase {
		t.Error("single nil-prevout input should mark the node coinbase")
	}
	if m.Inputs[0].Text != "coinbase" {
		t.Errorf("input text = %q", m.Inputs[0].Text)
	}
	if m.MetaText != "coinbase" {
		t.Errorf("meta text = %q", m.MetaText)
	}
}

func TestBuildMetaFeeAndRBF(t *testing.T) {
	g := fanGraph()
	g.Nodes["child"].Inputs[0].Sequence = 1 // signals RBF

	m, _ := newTestBuilder(g).Build("child")
	if !m.RBF {
		t.Error("low sequence should signal RBF")
	}
	// fee = 6000 - 5500 = 500 over 110 vB
	if want := "fee 500 sat · 4.5 sat/vB · RBF"; m.MetaText != want {
		t.Errorf("meta = %q, want %q", m.MetaText, want)
	}
}

func TestBuildMissingNodeAndLabels(t *testing.T) {
	g := txgraph.New("root")
	g.Labels = nil // malformed label map must not panic

	if _, ok := newTestBuilder(g).Build("absent"); ok {
		t.Error("absent node should not build")
	}

	g.Nodes["root"] = &txgraph.TxNode{
		Txid:    "root",
		Inputs:  []txgraph.TxInput{{Sequence: 0xFFFFFFFF}},
		Outputs: []txgraph.TxOutput{{Value: 1000}},
	}
	m, ok := newTestBuilder(g).Build("root")
	if !ok {
		t.Fatal("root should build despite nil label set")
	}
	if len(m.TxLabelLines) != 0 {
		t.Errorf("nil label set should yield no lines, got %v", m.TxLabelLines)
	}
}

func TestBuildWidthFloor(t *testing.T) {
	g := txgraph.New("tiny")
	g.Nodes["tiny"] = &txgraph.TxNode{
		Txid:    "tiny",
		Inputs:  []txgraph.TxInput{{Sequence: 0xFFFFFFFF}},
		Outputs: []txgraph.TxOutput{{Value: 1}},
	}

	m, _ := newTestBuilder(g).Build("tiny")
	if m.Width < DefaultConstants().MinNodeWidth {
		t.Errorf("width %v below minimum", m.Width)
	}
	if m.Height <= 0 {
		t.Errorf("height should be positive, got %v", m.Height)
	}
}

func TestBuildActiveSetRestrictsConnectivity(t *testing.T) {
	g := fanGraph()
	b := newTestBuilder(g)
	b.Active = map[string]bool{"fan": true} // child hidden

	m, _ := b.Build("fan")
	for _, row := range m.Outputs {
		if !row.Gap && row.Index == 4 {
			t.Error("index 4 should be collapsed when no output is connected")
		}
	}
	// With no connected outputs only head/tail remain: 0,1,2 gap 7,8,9.
	var gapTotal int
	for _, row := range m.Outputs {
		if row.Gap {
			gapTotal += row.HiddenCount
		}
	}
	if gapTotal != 4 {
		t.Errorf("hidden count = %d, want 4", gapTotal)
	}
}
