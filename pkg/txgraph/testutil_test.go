package txgraph

import "github.com/btcsuite/btcd/btcutil"

// Test fixture helpers shared by the package tests.

func coinbaseInput() TxInput {
	return TxInput{Sequence: 0xFFFFFFFF}
}

func spendingInput(fundingTxid string, vout uint32) TxInput {
	return TxInput{
		Prevout:  &OutPoint{Txid: fundingTxid, Vout: vout},
		Sequence: 0xFFFFFFFF,
	}
}

func simpleOutput(sats int64) TxOutput {
	return TxOutput{Value: btcutil.Amount(sats), ScriptType: ScriptP2WPKH}
}

func makeNode(txid string, inputs []TxInput, outputs []TxOutput) *TxNode {
	return &TxNode{
		Txid:    txid,
		VSize:   110,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// makeChain builds the linear graph A→B→C used by several tests:
// C (root) spends B's output 0, B spends A's output 0, A is coinbase.
func makeChain() *GraphModel {
	g := New("C")
	g.Nodes["A"] = makeNode("A", []TxInput{coinbaseInput()}, []TxOutput{simpleOutput(5000)})
	g.Nodes["B"] = makeNode("B", []TxInput{spendingInput("A", 0)}, []TxOutput{simpleOutput(4000)})
	g.Nodes["C"] = makeNode("C", []TxInput{spendingInput("B", 0)}, []TxOutput{simpleOutput(3000)})
	g.Edges = []AncestryEdge{
		{SpendingTxid: "C", InputIndex: 0, FundingTxid: "B", FundingVout: 0},
		{SpendingTxid: "B", InputIndex: 0, FundingTxid: "A", FundingVout: 0},
	}
	g.Stats = ComputeStats(g)
	return g
}
