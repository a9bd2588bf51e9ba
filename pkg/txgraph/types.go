// Package txgraph defines the transaction ancestry graph model: enriched
// transaction nodes, funding edges, label buckets, and the operations the
// layout engine needs over them (merge, visibility, resolution bookkeeping).
//
// The graph is produced by an external fetch layer and consumed read-only
// here. Edges may dangle: an endpoint txid is allowed to be absent from the
// node set when the fetch was truncated, and such edges are never visible.
package txgraph

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/panon-btc/txlineage/pkg/labels"
)

// =============================================================================
// Script Types
// =============================================================================

// ScriptType classifies an output script. Values match the wire names used
// by the fetch layer.
type ScriptType string

const (
	ScriptP2PK         ScriptType = "p2pk"
	ScriptP2PKH        ScriptType = "p2pkh"
	ScriptP2SH         ScriptType = "p2sh"
	ScriptP2WPKH       ScriptType = "p2wpkh"
	ScriptP2WSH        ScriptType = "p2wsh"
	ScriptP2TR         ScriptType = "p2tr"
	ScriptBareMultisig ScriptType = "bare_multisig"
	ScriptOpReturn     ScriptType = "op_return"
	ScriptUnknown      ScriptType = "unknown"
)

// =============================================================================
// Transaction Nodes
// =============================================================================

// OutPoint references a specific output of a transaction.
type OutPoint struct {
	Txid string `json:"txid"`
	Vout uint32 `json:"vout"`
}

// String renders the canonical "txid:vout" form.
func (o OutPoint) String() string { return fmt.Sprintf("%s:%d", o.Txid, o.Vout) }

// TxInput is one input of a transaction. Prevout is nil for coinbase
// inputs. Value, ScriptType, and Address are resolved from the funding
// output by the fetch layer and may be absent when resolution failed.
type TxInput struct {
	Prevout    *OutPoint       `json:"prevout,omitempty"`
	Sequence   uint32          `json:"sequence"`
	Value      *btcutil.Amount `json:"value,omitempty"`
	ScriptType ScriptType      `json:"script_type,omitempty"`
	Address    string          `json:"address,omitempty"`
}

// TxOutput is one output of a transaction.
type TxOutput struct {
	Value      btcutil.Amount `json:"value"`
	ScriptType ScriptType     `json:"script_type"`
	Address    string         `json:"address,omitempty"`
}

// TxNode is an immutable transaction record in the ancestry graph.
// Identity is the txid; the fetch layer owns creation.
type TxNode struct {
	Txid     string `json:"txid"`
	Version  int32  `json:"version"`
	Locktime uint32 `json:"locktime"`
	Size     uint64 `json:"size"`
	VSize    uint64 `json:"vsize"`
	Weight   uint64 `json:"weight"`
	// BlockHeight is nil for unconfirmed (mempool) transactions.
	BlockHeight *uint32    `json:"block_height,omitempty"`
	Inputs      []TxInput  `json:"inputs"`
	Outputs     []TxOutput `json:"outputs"`
}

// IsCoinbase reports whether the node is a coinbase transaction: exactly
// one input whose prevout reference is nil.
func (n *TxNode) IsCoinbase() bool {
	return len(n.Inputs) == 1 && n.Inputs[0].Prevout == nil
}

// Confirmed reports whether the transaction is included in a block.
func (n *TxNode) Confirmed() bool { return n.BlockHeight != nil }

// =============================================================================
// Ancestry Edges
// =============================================================================

// AncestryEdge states that spending_txid's input at input_index spends
// funding_txid's output at funding_vout. The edge is directed child →
// ancestor: following edges from the root walks backward in time.
type AncestryEdge struct {
	SpendingTxid string `json:"spending_txid"`
	InputIndex   uint32 `json:"input_index"`
	FundingTxid  string `json:"funding_txid"`
	FundingVout  uint32 `json:"funding_vout"`
}

// EdgeKey is the full deduplication key for an edge.
type EdgeKey struct {
	SpendingTxid string
	InputIndex   uint32
	FundingTxid  string
	FundingVout  uint32
}

// Key returns the deduplication key for the edge.
func (e AncestryEdge) Key() EdgeKey {
	return EdgeKey(e)
}

// ID returns a stable string identifier for the edge, used by positioned
// output and the solver description.
func (e AncestryEdge) ID() string {
	return fmt.Sprintf("%s:%d->%s:%d", e.FundingTxid, e.FundingVout, e.SpendingTxid, e.InputIndex)
}

// =============================================================================
// Graph Aggregate
// =============================================================================

// AddrOccurrence records one place an address appears in the graph.
type AddrOccurrence struct {
	Txid    string `json:"txid"`
	Index   uint32 `json:"index"`
	IsInput bool   `json:"is_input,omitempty"`
}

// GraphStats carries truncation and reach metadata computed by the fetch
// layer and recomputed after merges.
type GraphStats struct {
	NodeCount       int `json:"node_count"`
	EdgeCount       int `json:"edge_count"`
	MaxDepthReached int `json:"max_depth_reached"`
}

// GraphModel is the aggregate the engine operates on: the node set keyed by
// txid, the edge list, the designated root, label buckets, and the address
// occurrence index.
//
// Invariant: edges may reference txids absent from Nodes (truncated fetch).
// Such edges must never be treated as visible.
type GraphModel struct {
	Nodes     map[string]*TxNode          `json:"nodes"`
	Edges     []AncestryEdge              `json:"edges"`
	RootTxid  string                      `json:"root_txid"`
	Truncated bool                        `json:"truncated"`
	Stats     GraphStats                  `json:"stats"`
	Labels    *labels.Set                 `json:"labels,omitempty"`
	AddrIndex map[string][]AddrOccurrence `json:"addr_index,omitempty"`
}

// New creates an empty graph model rooted at rootTxid.
func New(rootTxid string) *GraphModel {
	return &GraphModel{
		Nodes:     make(map[string]*TxNode),
		RootTxid:  rootTxid,
		Labels:    labels.NewSet(),
		AddrIndex: make(map[string][]AddrOccurrence),
	}
}

// Node returns the node with the given txid, or nil and false when the
// graph does not contain it (dangling edge endpoints make this common).
func (g *GraphModel) Node(txid string) (*TxNode, bool) {
	n, ok := g.Nodes[txid]
	return n, ok
}

// HasNode reports whether txid is present in the node set.
func (g *GraphModel) HasNode(txid string) bool {
	_, ok := g.Nodes[txid]
	return ok
}

// EdgeVisible reports whether both endpoints of the edge exist in the
// current node set.
func (g *GraphModel) EdgeVisible(e AncestryEdge) bool {
	return g.HasNode(e.SpendingTxid) && g.HasNode(e.FundingTxid)
}

// VisibleEdges returns the edges whose both endpoints exist in the node
// set, preserving edge order.
func (g *GraphModel) VisibleEdges() []AncestryEdge {
	out := make([]AncestryEdge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if g.EdgeVisible(e) {
			out = append(out, e)
		}
	}
	return out
}

// LabelsFor returns the label bucket for ref. Absent buckets and a nil
// label set both yield nil; callers never see an error for malformed maps.
func (g *GraphModel) LabelsFor(ref labels.Ref) []labels.Entry {
	return g.Labels.Get(ref)
}

// =============================================================================
// Expansion State
// =============================================================================

// ExpansionState tracks the two disjoint-purpose per-txid sets that drive
// expand/collapse behavior. Expanded means the user chose to reveal a
// node's ancestors; Resolved means the ancestor edges are already fetched
// to the declared depth. A node can be either without the other.
type ExpansionState struct {
	Expanded map[string]bool `json:"expanded"`
	Resolved map[string]bool `json:"resolved"`
}

// NewExpansionState creates an empty expansion state.
func NewExpansionState() *ExpansionState {
	return &ExpansionState{
		Expanded: make(map[string]bool),
		Resolved: make(map[string]bool),
	}
}

// Expand marks txid as user-expanded.
func (s *ExpansionState) Expand(txid string) { s.Expanded[txid] = true }

// Collapse removes the user-expanded mark from txid.
func (s *ExpansionState) Collapse(txid string) { delete(s.Expanded, txid) }

// MarkResolved records that txid's ancestor edges are fetched.
func (s *ExpansionState) MarkResolved(txid string) { s.Resolved[txid] = true }
