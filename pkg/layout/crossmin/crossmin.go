// Package crossmin implements the two post-layout reordering passes that
// run after the external solver: leftmost-source reordering and parallel
// bridge-group reordering. Both passes reposition nodes vertically within
// their existing column; neither resizes nodes nor moves them between
// columns, and both are idempotent on an already-optimal arrangement.
package crossmin

import (
	"cmp"
	"slices"
	"strings"
)

// Node is the positional view the passes operate on. X and Y locate the
// top-left corner; Y is mutated in place.
type Node struct {
	ID     string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Edge is a spending-to-funding ancestry link restricted to visible nodes.
type Edge struct {
	SpendingTxid string
	InputIndex   int
	FundingTxid  string
	FundingVout  int
}

// Options tunes the passes.
type Options struct {
	// ExactSearchLimit caps the bridge-group size for exhaustive
	// permutation search. Groups above the limit keep their existing
	// order. The default of 7 keeps the worst case at 7! = 5040
	// permutations; it is a tunable bound, not a semantic guarantee.
	ExactSearchLimit int
	// MinGap is the minimum vertical spacing between reordered siblings.
	// Spacing is only ever expanded to MinGap, never shrunk below what
	// the solver produced.
	MinGap float64
	// XTolerance bounds how far from the minimum x a node may sit and
	// still count as part of the leftmost column.
	XTolerance float64
}

// DefaultOptions returns the tuning used when none is configured.
func DefaultOptions() Options {
	return Options{ExactSearchLimit: 7, MinGap: 24, XTolerance: 4}
}

// rankWeight scales a neighbor's vertical rank so the vout only breaks
// near-ties, mirroring the model-order heuristic.
const rankWeight = 100

// =============================================================================
// Pass 1: Leftmost-Source Reordering
// =============================================================================

// ReorderLeftmostSources re-sorts the deep ancestors in the leftmost
// column. Candidates are nodes within XTolerance of the minimum x that
// spend nothing visible (zero edges as the spending side) and fund at
// least one visible child. Each candidate is scored by the mean of
// (child rank * 100 + funding vout) over its funding edges, tie-broken by
// txid, and candidates are reassigned to their own sorted y-slots. The
// pass is skipped with one or fewer candidates.
func ReorderLeftmostSources(nodes []*Node, edges []Edge, opts Options) {
	if len(nodes) == 0 {
		return
	}

	rank := yRanks(nodes)

	spends := make(map[string]int)
	funds := make(map[string][]Edge)
	for _, e := range edges {
		spends[e.SpendingTxid]++
		funds[e.FundingTxid] = append(funds[e.FundingTxid], e)
	}

	minX := nodes[0].X
	for _, n := range nodes[1:] {
		minX = min(minX, n.X)
	}

	var cands []*Node
	for _, n := range nodes {
		if n.X-minX > opts.XTolerance {
			continue
		}
		if spends[n.ID] > 0 || len(funds[n.ID]) == 0 {
			continue
		}
		cands = append(cands, n)
	}
	if len(cands) <= 1 {
		return
	}

	score := make(map[string]float64, len(cands))
	for _, n := range cands {
		var sum float64
		for _, e := range funds[n.ID] {
			sum += float64(rank[e.SpendingTxid])*rankWeight + float64(e.FundingVout)
		}
		score[n.ID] = sum / float64(len(funds[n.ID]))
	}

	slots := make([]float64, len(cands))
	for i, n := range cands {
		slots[i] = n.Y
	}
	slices.Sort(slots)

	slices.SortStableFunc(cands, func(a, b *Node) int {
		if c := cmp.Compare(score[a.ID], score[b.ID]); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	for i, n := range cands {
		n.Y = slots[i]
	}
}

// =============================================================================
// Pass 2: Parallel Bridge-Group Reordering
// =============================================================================

// ReorderBridgeGroups reorders groups of parallel nodes that bridge the
// exact same parents to the exact same children. Within each group of two
// or more, the ordering with the fewest inversions against the parents'
// and children's vertical ranks is found by exhaustive search up to
// ExactSearchLimit members (keeping the lexicographically smallest
// permutation on cost ties); larger groups keep the solver's order. The
// chosen order is written back onto the group's sorted y-slots, then
// spacing is expanded to MinGap where the solver packed siblings tighter.
func ReorderBridgeGroups(nodes []*Node, edges []Edge, opts Options) {
	if len(nodes) < 2 {
		return
	}

	rank := yRanks(nodes)

	parents := make(map[string][]Edge) // edges where the key is spending
	children := make(map[string][]Edge) // edges where the key is funding
	for _, e := range edges {
		parents[e.SpendingTxid] = append(parents[e.SpendingTxid], e)
		children[e.FundingTxid] = append(children[e.FundingTxid], e)
	}

	groups := make(map[string][]*Node)
	for _, n := range nodes {
		key := bridgeKey(parents[n.ID], children[n.ID])
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], n)
	}

	for _, group := range slices.SortedFunc(sortedGroups(groups), func(a, b []*Node) int {
		return strings.Compare(a[0].ID, b[0].ID)
	}) {
		if len(group) < 2 {
			continue
		}
		reorderGroup(group, parents, children, rank, opts)
	}
}

// sortedGroups yields each group with its members in current y-order.
func sortedGroups(groups map[string][]*Node) func(yield func([]*Node) bool) {
	return func(yield func([]*Node) bool) {
		for _, g := range groups {
			slices.SortStableFunc(g, func(a, b *Node) int {
				if c := cmp.Compare(a.Y, b.Y); c != 0 {
					return c
				}
				return strings.Compare(a.ID, b.ID)
			})
			if !yield(g) {
				return
			}
		}
	}
}

// bridgeKey identifies a node's (parent set, child set) pair. Nodes with
// an empty side never form a bridge group.
func bridgeKey(parentEdges, childEdges []Edge) string {
	if len(parentEdges) == 0 || len(childEdges) == 0 {
		return ""
	}
	ps := make([]string, 0, len(parentEdges))
	for _, e := range parentEdges {
		ps = append(ps, e.FundingTxid)
	}
	cs := make([]string, 0, len(childEdges))
	for _, e := range childEdges {
		cs = append(cs, e.SpendingTxid)
	}
	slices.Sort(ps)
	slices.Sort(cs)
	return strings.Join(slices.Compact(ps), ",") + "|" + strings.Join(slices.Compact(cs), ",")
}

func reorderGroup(group []*Node, parents, children map[string][]Edge, rank map[string]int, opts Options) {
	parentKey := make(map[string]float64, len(group))
	childKey := make(map[string]float64, len(group))
	for _, n := range group {
		parentKey[n.ID] = meanEdgeRank(parents[n.ID], rank, false)
		childKey[n.ID] = meanEdgeRank(children[n.ID], rank, true)
	}

	ordered := slices.Clone(group)
	if len(group) <= opts.ExactSearchLimit {
		ordered = bestPermutation(group, parentKey, childKey)
	}

	slots := make([]float64, len(group))
	for i, n := range group {
		slots[i] = n.Y
	}
	slices.Sort(slots)
	for i, n := range ordered {
		n.Y = slots[i]
	}

	// Min-gap expansion: push later siblings down, never pull anything up.
	for i := 1; i < len(ordered); i++ {
		floor := ordered[i-1].Y + ordered[i-1].Height + opts.MinGap
		if ordered[i].Y < floor {
			ordered[i].Y = floor
		}
	}
}

// meanEdgeRank scores a node by the mean (neighbor rank * 100 + funding
// vout) over the given edges. childSide selects which endpoint is the
// neighbor.
func meanEdgeRank(edges []Edge, rank map[string]int, childSide bool) float64 {
	if len(edges) == 0 {
		return 0
	}
	var sum float64
	for _, e := range edges {
		neighbor := e.FundingTxid
		if childSide {
			neighbor = e.SpendingTxid
		}
		sum += float64(rank[neighbor])*rankWeight + float64(e.FundingVout)
	}
	return sum / float64(len(edges))
}

// bestPermutation exhaustively searches group orderings, enumerated in
// lexicographic txid order so the first ordering achieving the minimum
// inversion cost is also the lexicographically smallest one.
func bestPermutation(group []*Node, parentKey, childKey map[string]float64) []*Node {
	pool := slices.Clone(group)
	slices.SortFunc(pool, func(a, b *Node) int { return strings.Compare(a.ID, b.ID) })

	best := make([]*Node, 0, len(group))
	bestCost := -1
	current := make([]*Node, 0, len(group))
	used := make([]bool, len(pool))

	var walk func()
	walk = func() {
		if len(current) == len(pool) {
			cost := inversionCost(current, parentKey, childKey)
			if bestCost < 0 || cost < bestCost {
				bestCost = cost
				best = append(best[:0], current...)
			}
			return
		}
		for i, n := range pool {
			if used[i] {
				continue
			}
			used[i] = true
			current = append(current, n)
			walk()
			current = current[:len(current)-1]
			used[i] = false
		}
	}
	walk()
	return best
}

// inversionCost counts sibling pairs whose order contradicts the rank
// order of their parents or of their children.
func inversionCost(order []*Node, parentKey, childKey map[string]float64) int {
	cost := 0
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if parentKey[order[i].ID] > parentKey[order[j].ID] {
				cost++
			}
			if childKey[order[i].ID] > childKey[order[j].ID] {
				cost++
			}
		}
	}
	return cost
}

// yRanks maps every node to its vertical order index.
func yRanks(nodes []*Node) map[string]int {
	sorted := slices.Clone(nodes)
	slices.SortStableFunc(sorted, func(a, b *Node) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	rank := make(map[string]int, len(sorted))
	for i, n := range sorted {
		rank[n.ID] = i
	}
	return rank
}
