package txgraph

// Merge combines a newly fetched sub-graph into the current graph and
// returns the merged model. Neither input is mutated.
//
// Merge rules:
//   - nodes: union keyed by txid, incoming overwrites current
//   - edges: union keyed by the full (spending, index, funding, vout)
//     tuple, incoming wins on duplicate keys
//   - labels: buckets merged per reference, incoming wins per source file
//   - address occurrences: merged per address and de-duplicated
//   - truncated: OR of both flags
//   - stats: recomputed by BFS from the root over the merged edge set,
//     counting only edges whose endpoints both exist post-merge
//
// The root of the merged graph is the current graph's root; an empty
// current root falls back to the incoming root.
func Merge(current, incoming *GraphModel) *GraphModel {
	root := current.RootTxid
	if root == "" {
		root = incoming.RootTxid
	}
	merged := New(root)
	merged.Truncated = current.Truncated || incoming.Truncated

	for txid, n := range current.Nodes {
		merged.Nodes[txid] = n
	}
	for txid, n := range incoming.Nodes {
		merged.Nodes[txid] = n
	}

	merged.Edges = mergeEdges(current.Edges, incoming.Edges)

	merged.Labels = current.Labels.Clone()
	merged.Labels.Merge(incoming.Labels)

	merged.AddrIndex = mergeAddrIndex(current.AddrIndex, incoming.AddrIndex)

	merged.Stats = ComputeStats(merged)
	return merged
}

// mergeEdges unions two edge lists keyed by the full edge tuple. Current
// edges keep their order; incoming edges replace duplicates in place and
// new ones append in incoming order.
func mergeEdges(current, incoming []AncestryEdge) []AncestryEdge {
	out := make([]AncestryEdge, len(current))
	copy(out, current)

	index := make(map[EdgeKey]int, len(out))
	for i, e := range out {
		index[e.Key()] = i
	}
	for _, e := range incoming {
		if i, ok := index[e.Key()]; ok {
			out[i] = e
			continue
		}
		index[e.Key()] = len(out)
		out = append(out, e)
	}
	return out
}

// mergeAddrIndex unions occurrence lists per address, dropping duplicates.
func mergeAddrIndex(current, incoming map[string][]AddrOccurrence) map[string][]AddrOccurrence {
	out := make(map[string][]AddrOccurrence, len(current)+len(incoming))
	seen := make(map[string]map[AddrOccurrence]bool)

	add := func(addr string, occ AddrOccurrence) {
		if seen[addr] == nil {
			seen[addr] = make(map[AddrOccurrence]bool)
		}
		if seen[addr][occ] {
			return
		}
		seen[addr][occ] = true
		out[addr] = append(out[addr], occ)
	}

	for addr, occs := range current {
		for _, occ := range occs {
			add(addr, occ)
		}
	}
	for addr, occs := range incoming {
		for _, occ := range occs {
			add(addr, occ)
		}
	}
	return out
}

// ComputeStats recomputes graph statistics. NodeCount is the size of the
// node set; EdgeCount counts only edges whose endpoints both exist; the
// max depth is found by BFS from the root along funding edges, so it never
// shrinks when graphs are merged.
func ComputeStats(g *GraphModel) GraphStats {
	stats := GraphStats{NodeCount: len(g.Nodes)}

	parents := make(map[string][]string)
	for _, e := range g.Edges {
		if !g.EdgeVisible(e) {
			continue
		}
		stats.EdgeCount++
		parents[e.SpendingTxid] = append(parents[e.SpendingTxid], e.FundingTxid)
	}

	if !g.HasNode(g.RootTxid) {
		return stats
	}

	depth := map[string]int{g.RootTxid: 0}
	queue := []string{g.RootTxid}
	for len(queue) > 0 {
		txid := queue[0]
		queue = queue[1:]
		for _, parent := range parents[txid] {
			if _, ok := depth[parent]; ok {
				continue
			}
			depth[parent] = depth[txid] + 1
			if depth[parent] > stats.MaxDepthReached {
				stats.MaxDepthReached = depth[parent]
			}
			queue = append(queue, parent)
		}
	}
	return stats
}
