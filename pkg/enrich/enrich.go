// Package enrich computes derived transaction facts displayed in node
// headers: fee, feerate, RBF signaling, and locktime interpretation.
package enrich

import (
	"github.com/btcsuite/btcd/btcutil"

	"github.com/panon-btc/txlineage/pkg/txgraph"
)

// sequenceFinal is the highest sequence value that still opts out of RBF.
// Any input below it signals opt-in replace-by-fee (BIP 125).
const sequenceFinal = 0xFFFFFFFE

// locktimeThreshold separates block-height locktimes from Unix-timestamp
// locktimes, per the consensus rules.
const locktimeThreshold = 500_000_000

// Fee computes the transaction fee as sum(inputs) - sum(outputs).
// Returns false when any input is missing its resolved value, which covers
// coinbase transactions and inputs whose prevout resolution failed.
func Fee(n *txgraph.TxNode) (btcutil.Amount, bool) {
	var totalIn btcutil.Amount
	for _, input := range n.Inputs {
		if input.Value == nil {
			return 0, false
		}
		totalIn += *input.Value
	}

	var totalOut btcutil.Amount
	for _, output := range n.Outputs {
		totalOut += output.Value
	}

	if totalOut > totalIn {
		return 0, false
	}
	return totalIn - totalOut, true
}

// Feerate computes the feerate in sat/vB. Returns 0 for a zero vsize.
func Feerate(fee btcutil.Amount, vsize uint64) float64 {
	if vsize == 0 {
		return 0
	}
	return float64(fee) / float64(vsize)
}

// SignalsRBF reports whether any input carries a sequence number below the
// final threshold, opting the transaction into replace-by-fee.
func SignalsRBF(n *txgraph.TxNode) bool {
	for _, input := range n.Inputs {
		if input.Sequence < sequenceFinal {
			return true
		}
	}
	return false
}

// LocktimeKind classifies how a locktime value is interpreted.
type LocktimeKind string

const (
	LocktimeDisabled    LocktimeKind = "disabled"
	LocktimeBlockHeight LocktimeKind = "block_height"
	LocktimeTimestamp   LocktimeKind = "timestamp"
)

// LocktimeInfo is the decoded locktime of a transaction.
type LocktimeInfo struct {
	Raw  uint32       `json:"raw"`
	Kind LocktimeKind `json:"kind"`
	// Active reports whether the locktime has any effect: it must be
	// non-zero and at least one input must have a non-final sequence.
	Active bool `json:"active"`
}

// Locktime interprets a transaction's locktime field. A zero locktime is
// disabled; otherwise values below the threshold are block heights and
// values at or above it are Unix timestamps. The locktime is only enforced
// when some input has a sequence below 0xFFFFFFFF.
func Locktime(n *txgraph.TxNode) LocktimeInfo {
	if n.Locktime == 0 {
		return LocktimeInfo{Kind: LocktimeDisabled}
	}

	kind := LocktimeBlockHeight
	if n.Locktime >= locktimeThreshold {
		kind = LocktimeTimestamp
	}

	enforced := false
	for _, input := range n.Inputs {
		if input.Sequence < 0xFFFFFFFF {
			enforced = true
			break
		}
	}

	return LocktimeInfo{Raw: n.Locktime, Kind: kind, Active: enforced}
}
