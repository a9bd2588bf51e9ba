package layout

import (
	"cmp"
	"slices"
	"strings"

	"github.com/panon-btc/txlineage/pkg/txgraph"
)

// rankWeight scales a neighbor's rank in the ordering score so the vout
// only decides between nodes whose neighbor ranks are near-equal.
const rankWeight = 100

// orderIterations is how many refinement rounds the heuristic runs. Eight
// rounds lets order stabilize transitively across typical ancestry depths.
const orderIterations = 8

// ModelOrder computes the sibling-order hint fed to the solver. Starting
// from the given txid order, each round scores every node by the mean of
// (neighbor rank * 100 + funding vout) over its visible edges, re-sorts by
// score with ties broken lexicographically by txid, and feeds the new
// ranks into the next round. Nodes with no visible neighbors keep their
// current rank as their score, so isolated nodes drift with their
// surroundings instead of jumping.
func ModelOrder(txids []string, edges []txgraph.AncestryEdge) []string {
	order := slices.Clone(txids)
	if len(order) < 2 {
		return order
	}

	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}

	type link struct {
		neighbor string
		vout     int
	}
	links := make(map[string][]link, len(order))
	for _, e := range edges {
		if _, ok := rank[e.SpendingTxid]; !ok {
			continue
		}
		if _, ok := rank[e.FundingTxid]; !ok {
			continue
		}
		links[e.SpendingTxid] = append(links[e.SpendingTxid], link{e.FundingTxid, int(e.FundingVout)})
		links[e.FundingTxid] = append(links[e.FundingTxid], link{e.SpendingTxid, int(e.FundingVout)})
	}

	score := make(map[string]float64, len(order))
	for range orderIterations {
		for _, id := range order {
			ls := links[id]
			if len(ls) == 0 {
				score[id] = float64(rank[id])
				continue
			}
			var sum float64
			for _, l := range ls {
				sum += float64(rank[l.neighbor])*rankWeight + float64(l.vout)
			}
			score[id] = sum / float64(len(ls))
		}

		slices.SortStableFunc(order, func(a, b string) int {
			if c := cmp.Compare(score[a], score[b]); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		})
		for i, id := range order {
			rank[id] = i
		}
	}
	return order
}
