package txgraph

// VisibleTxids computes which nodes are currently displayed given the
// user's expand state and an optional hidden set.
//
// The traversal is breadth-first from the root. The root's immediate
// ancestors are always reachable; beyond that, a node's ancestors become
// visible only once that node itself is marked expanded. Hidden nodes are
// excluded along with everything reachable only through them.
//
// Returns an empty set when the root is absent from the graph or hidden.
func VisibleTxids(g *GraphModel, expanded, hidden map[string]bool) map[string]bool {
	visible := make(map[string]bool)
	if !g.HasNode(g.RootTxid) || hidden[g.RootTxid] {
		return visible
	}

	parents := make(map[string][]string)
	for _, e := range g.Edges {
		if !g.EdgeVisible(e) {
			continue
		}
		parents[e.SpendingTxid] = append(parents[e.SpendingTxid], e.FundingTxid)
	}

	visible[g.RootTxid] = true
	queue := []string{g.RootTxid}
	for len(queue) > 0 {
		txid := queue[0]
		queue = queue[1:]

		// The root is implicitly expanded; everything else needs the
		// user's expand mark before its ancestors are revealed.
		if txid != g.RootTxid && !expanded[txid] {
			continue
		}
		for _, parent := range parents[txid] {
			if visible[parent] || hidden[parent] {
				continue
			}
			visible[parent] = true
			queue = append(queue, parent)
		}
	}
	return visible
}

// FullyResolved reports whether every non-coinbase input of txid has a
// corresponding incoming edge to a parent present in the node set. A fully
// resolved node can be expanded without a network fetch.
func FullyResolved(g *GraphModel, txid string) bool {
	node, ok := g.Node(txid)
	if !ok {
		return false
	}

	resolved := resolvedInputIndices(g, txid)
	for i, input := range node.Inputs {
		if input.Prevout == nil {
			continue // coinbase input, nothing to resolve
		}
		if !resolved[uint32(i)] {
			return false
		}
	}
	return true
}

// HasResolvedInputs reports whether at least one input of txid has an edge
// to a present parent. Drives partial expand affordances in the UI layer.
func HasResolvedInputs(g *GraphModel, txid string) bool {
	return len(resolvedInputIndices(g, txid)) > 0
}

// resolvedInputIndices collects the input indices of txid covered by an
// edge whose funding endpoint exists.
func resolvedInputIndices(g *GraphModel, txid string) map[uint32]bool {
	out := make(map[uint32]bool)
	for _, e := range g.Edges {
		if e.SpendingTxid == txid && g.HasNode(e.FundingTxid) {
			out[e.InputIndex] = true
		}
	}
	return out
}
