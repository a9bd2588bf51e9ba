package layout

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/panon-btc/txlineage/pkg/txgraph"
)

// PlaceExpandedParentsLeft seeds positions for ancestor nodes an expand
// operation just revealed. The fresh parents are stacked to the left of
// the expanded node, vertically centered on it, ordered by the smallest
// input index through which each parent is referenced, and spaced by the
// given gaps. This runs before the crossing-minimization passes, so it
// only needs to produce a reasonable starting arrangement.
func PlaceExpandedParentsLeft(lay *Layout, g *txgraph.GraphModel, expandedTxid string, fresh []string, gapX, gapY float64) {
	anchor, ok := lay.Node(expandedTxid)
	if !ok || len(fresh) == 0 {
		return
	}

	minIndex := make(map[string]int, len(fresh))
	for _, id := range fresh {
		minIndex[id] = math.MaxInt
	}
	for _, e := range g.Edges {
		if e.SpendingTxid != expandedTxid {
			continue
		}
		if idx, ok := minIndex[e.FundingTxid]; ok && int(e.InputIndex) < idx {
			minIndex[e.FundingTxid] = int(e.InputIndex)
		}
	}

	ordered := slices.Clone(fresh)
	slices.SortStableFunc(ordered, func(a, b string) int {
		if c := cmp.Compare(minIndex[a], minIndex[b]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	var stack []*PositionedNode
	var totalHeight float64
	for _, id := range ordered {
		n, ok := lay.Node(id)
		if !ok {
			continue
		}
		stack = append(stack, n)
		totalHeight += n.Height
	}
	if len(stack) == 0 {
		return
	}
	totalHeight += gapY * float64(len(stack)-1)

	y := anchor.Y + anchor.Height/2 - totalHeight/2
	for _, n := range stack {
		n.X = anchor.X - gapX - n.Width
		n.Y = y
		y += n.Height + gapY
	}
}

// ApplyVisibility projects a visible txid set onto the layout's node and
// edge flags without touching positions. Edges are visible only when both
// endpoints are.
func ApplyVisibility(lay *Layout, visible map[string]bool) {
	for i := range lay.Nodes {
		lay.Nodes[i].Visible = visible[lay.Nodes[i].Txid]
	}
	for i := range lay.Edges {
		e := &lay.Edges[i]
		e.Visible = visible[e.SpendingTxid] && visible[e.FundingTxid]
	}
}
