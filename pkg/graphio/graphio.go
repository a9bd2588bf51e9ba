// Package graphio defines the JSON wire format for ancestry graphs and
// positioned layouts. It is the serialization boundary for files, API
// responses, and cache entries.
package graphio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	errs "github.com/panon-btc/txlineage/pkg/errors"
	"github.com/panon-btc/txlineage/pkg/labels"
	"github.com/panon-btc/txlineage/pkg/txgraph"
)

// Graph is the wire form of a GraphModel. Nodes are a sorted list rather
// than a map so output is deterministic and diffs stay readable.
type Graph struct {
	Root      string                              `json:"root"`
	Truncated bool                                `json:"truncated"`
	Nodes     []*txgraph.TxNode                   `json:"nodes"`
	Edges     []txgraph.AncestryEdge              `json:"edges"`
	Labels    *labels.Set                         `json:"labels,omitempty"`
	AddrIndex map[string][]txgraph.AddrOccurrence `json:"addr_index,omitempty"`
	Stats     txgraph.GraphStats                  `json:"stats"`
}

// FromModel converts an in-memory graph to its wire form.
func FromModel(g *txgraph.GraphModel) Graph {
	nodes := make([]*txgraph.TxNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *txgraph.TxNode) int {
		return compareTxid(a.Txid, b.Txid)
	})

	return Graph{
		Root:      g.RootTxid,
		Truncated: g.Truncated,
		Nodes:     nodes,
		Edges:     g.Edges,
		Labels:    g.Labels,
		AddrIndex: g.AddrIndex,
		Stats:     g.Stats,
	}
}

// ToModel converts a decoded wire graph back to the in-memory form,
// validating structure and recomputing statistics. Dangling edges are
// legal; duplicate or unnamed nodes are not.
func ToModel(wire Graph) (*txgraph.GraphModel, error) {
	if wire.Root == "" {
		return nil, errs.New(errs.ErrCodeInvalidGraph, "graph has no root txid")
	}

	g := txgraph.New(wire.Root)
	g.Truncated = wire.Truncated
	g.Edges = wire.Edges
	if wire.Labels != nil {
		g.Labels = wire.Labels
	}
	if wire.AddrIndex != nil {
		g.AddrIndex = wire.AddrIndex
	}

	for _, n := range wire.Nodes {
		if n == nil || n.Txid == "" {
			return nil, errs.New(errs.ErrCodeInvalidGraph, "graph contains a node without a txid")
		}
		if _, dup := g.Nodes[n.Txid]; dup {
			return nil, errs.New(errs.ErrCodeInvalidGraph, "duplicate node %q", n.Txid)
		}
		g.Nodes[n.Txid] = n
	}

	g.Stats = txgraph.ComputeStats(g)
	return g, nil
}

// MarshalGraph converts a GraphModel to JSON bytes.
// Nodes are sorted by txid for deterministic output.
func MarshalGraph(g *txgraph.GraphModel) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph decodes JSON bytes into a GraphModel.
func UnmarshalGraph(data []byte) (*txgraph.GraphModel, error) {
	return readGraphFrom(bytes.NewReader(data))
}

// WriteGraph writes a GraphModel as JSON to an io.Writer.
func WriteGraph(g *txgraph.GraphModel, w io.Writer) error {
	return writeGraphTo(g, w)
}

// WriteGraphFile writes a GraphModel to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *txgraph.GraphModel, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (*txgraph.GraphModel, error) {
	return readGraphFrom(r)
}

// ReadGraphFile reads a JSON file and returns the decoded GraphModel.
func ReadGraphFile(path string) (*txgraph.GraphModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

func writeGraphTo(g *txgraph.GraphModel, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromModel(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*txgraph.GraphModel, error) {
	var wire Graph
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToModel(wire)
}

func compareTxid(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
