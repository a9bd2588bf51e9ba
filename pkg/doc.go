// Package pkg provides the core libraries for txlineage ancestry layout.
//
// # Overview
//
// txlineage turns a Bitcoin transaction's spending ancestry into a
// render-ready layout: who funded whom, laid out left to right with deep
// ancestors on the left and the transaction under inspection on the right.
// The pkg directory is organized around that flow:
//
//  1. [txgraph] - The ancestry graph model (nodes, dangling edges, merging,
//     visibility)
//  2. [labels] - User label files and the four label reference kinds
//  3. [enrich] - Derived transaction facts (fee, feerate, RBF, locktime)
//  4. [render] - Node render models and text measurement
//  5. [layout] - Placement: model ordering, the layered solver, and
//     crossing-minimization post-passes
//  6. [pipeline] - Orchestration with caching and request sequencing
//  7. [graphio] - JSON wire format for graphs and layouts
//
// # Architecture
//
// The typical data flow:
//
//	graph.json (ancestry graph + labels)
//	         ↓
//	    [txgraph] package (merge, visibility)
//	         ↓
//	    [render/model] package (node sizing, output collapsing)
//	         ↓
//	    [layout] package (ordering → solver → crossing minimization)
//	         ↓
//	    layout.json (positioned nodes and edges)
//
// # Quick Start
//
// Compute a layout for a graph file:
//
//	import (
//	    "context"
//	    "github.com/panon-btc/txlineage/pkg/graphio"
//	    "github.com/panon-btc/txlineage/pkg/pipeline"
//	)
//
//	g, _ := graphio.ReadGraphFile("graph.json")
//	runner := pipeline.NewRunner(nil, nil, nil, nil)
//	lay, _ := runner.Layout(context.Background(), g, nil)
//	_ = graphio.WriteLayoutFile(lay, "graph.layout.json")
//
// # Main Packages
//
// [txgraph] - The in-memory graph: transaction nodes keyed by txid,
// ancestry edges that may dangle until their funding node arrives,
// incoming-wins merging, and breadth-first visibility with an implicitly
// expanded root.
//
// [labels] - Label files (BIP 329 style JSON) bucketed by reference kind:
// transaction, address, input, and output references.
//
// [enrich] - Fee and feerate computation, RBF signaling, and locktime
// interpretation, using btcutil amounts.
//
// [render/model] - Per-node render models: input rows, visible outputs
// with gap rows standing in for runs of unconnected outputs, merged label
// lines, and measured pixel dimensions.
//
// [render/text] - Pixel-width measurement against the embedded Go Mono
// face, with a deterministic fixed-width fallback.
//
// [layout] - The placement engine. Model ordering seeds the solver's
// crossing minimization; the Graphviz adapter in [layout/solver] runs the
// layered placement; [layout/crossmin] reorders same-column sources and
// bridge sibling groups afterwards.
//
// [pipeline] - Runner (layout with caching), Sequencer (last-writer-wins
// request ordering), and label refresh that keeps positions fixed.
//
// [graphio] - Deterministic JSON serialization of graphs and layouts for
// files, the API, and cache entries.
//
// [cache] - TTL'd layout result caching with a sharded file backend.
//
// [observability] - Optional hooks for layout, cache, and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//
// [txgraph]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/txgraph
// [labels]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/labels
// [enrich]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/enrich
// [render]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/render
// [render/model]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/render/model
// [render/text]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/render/text
// [layout]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/layout
// [layout/solver]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/layout/solver
// [layout/crossmin]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/layout/crossmin
// [pipeline]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/pipeline
// [graphio]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/graphio
// [cache]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/cache
// [observability]: https://pkg.go.dev/github.com/panon-btc/txlineage/pkg/observability
package pkg
