package enrich

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/panon-btc/txlineage/pkg/txgraph"
)

func amt(sats int64) *btcutil.Amount {
	a := btcutil.Amount(sats)
	return &a
}

func TestFee(t *testing.T) {
	n := &txgraph.TxNode{
		Txid: "aa",
		Inputs: []txgraph.TxInput{
			{Prevout: &txgraph.OutPoint{Txid: "p", Vout: 0}, Value: amt(5000), Sequence: 0xFFFFFFFF},
			{Prevout: &txgraph.OutPoint{Txid: "p", Vout: 1}, Value: amt(3000), Sequence: 0xFFFFFFFF},
		},
		Outputs: []txgraph.TxOutput{
			{Value: 7000},
			{Value: 500},
		},
	}

	fee, ok := Fee(n)
	if !ok {
		t.Fatal("fee should be computable")
	}
	if fee != 500 {
		t.Errorf("fee = %d, want 500", fee)
	}
}

func TestFeeUnresolvedInput(t *testing.T) {
	n := &txgraph.TxNode{
		Inputs: []txgraph.TxInput{
			{Prevout: &txgraph.OutPoint{Txid: "p", Vout: 0}}, // value unresolved
		},
		Outputs: []txgraph.TxOutput{{Value: 100}},
	}
	if _, ok := Fee(n); ok {
		t.Error("fee must be unavailable when an input value is unresolved")
	}
}

func TestFeeCoinbase(t *testing.T) {
	n := &txgraph.TxNode{
		Inputs:  []txgraph.TxInput{{Sequence: 0xFFFFFFFF}},
		Outputs: []txgraph.TxOutput{{Value: 625_000_000}},
	}
	if _, ok := Fee(n); ok {
		t.Error("coinbase transactions have no fee")
	}
}

func TestFeerate(t *testing.T) {
	if got := Feerate(1000, 250); got != 4.0 {
		t.Errorf("feerate = %v, want 4.0", got)
	}
	if got := Feerate(1000, 0); got != 0 {
		t.Errorf("zero vsize should yield 0, got %v", got)
	}
}

func TestSignalsRBF(t *testing.T) {
	tests := []struct {
		name      string
		sequences []uint32
		want      bool
	}{
		{"all final", []uint32{0xFFFFFFFF, 0xFFFFFFFF}, false},
		{"opt-out boundary", []uint32{0xFFFFFFFE}, false},
		{"one signaling", []uint32{0xFFFFFFFF, 0xFFFFFFFD}, true},
		{"zero sequence", []uint32{0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &txgraph.TxNode{}
			for _, seq := range tt.sequences {
				n.Inputs = append(n.Inputs, txgraph.TxInput{Sequence: seq})
			}
			if got := SignalsRBF(n); got != tt.want {
				t.Errorf("SignalsRBF = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocktime(t *testing.T) {
	tests := []struct {
		name     string
		locktime uint32
		sequence uint32
		kind     LocktimeKind
		active   bool
	}{
		{"disabled", 0, 0, LocktimeDisabled, false},
		{"height enforced", 800_000, 0xFFFFFFFE, LocktimeBlockHeight, true},
		{"height ignored", 800_000, 0xFFFFFFFF, LocktimeBlockHeight, false},
		{"timestamp", 1_700_000_000, 0, LocktimeTimestamp, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &txgraph.TxNode{
				Locktime: tt.locktime,
				Inputs:   []txgraph.TxInput{{Sequence: tt.sequence}},
			}
			info := Locktime(n)
			if info.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", info.Kind, tt.kind)
			}
			if info.Active != tt.active {
				t.Errorf("active = %v, want %v", info.Active, tt.active)
			}
		})
	}
}
