package pipeline

import (
	"slices"

	"github.com/panon-btc/txlineage/pkg/layout"
	"github.com/panon-btc/txlineage/pkg/render/model"
	"github.com/panon-btc/txlineage/pkg/render/text"
	"github.com/panon-btc/txlineage/pkg/txgraph"
)

// RefreshLabels rebuilds render models against an updated graph while
// keeping every node exactly where it is. It returns the refreshed layout
// plus the sorted txids whose height changed, so the caller can decide
// whether a full relayout is worth it. Nodes that vanished from the graph
// are dropped from the result.
func RefreshLabels(g *txgraph.GraphModel, prev *layout.Layout, m text.Measurer, c model.Constants) (*layout.Layout, []string) {
	active := make(map[string]bool, len(prev.Nodes))
	for _, n := range prev.Nodes {
		active[n.Txid] = true
	}

	builder := model.NewBuilder(g, m, c)
	builder.Active = active

	next := &layout.Layout{
		Nodes:  make([]layout.PositionedNode, 0, len(prev.Nodes)),
		Edges:  slices.Clone(prev.Edges),
		Width:  prev.Width,
		Height: prev.Height,
	}

	var changed []string
	for _, n := range prev.Nodes {
		rm, ok := builder.Build(n.Txid)
		if !ok {
			continue
		}
		if rm.Height != n.Height {
			changed = append(changed, n.Txid)
		}
		n.Model = rm
		n.Width = rm.Width
		n.Height = rm.Height
		next.Nodes = append(next.Nodes, n)
	}

	slices.Sort(changed)
	return next, changed
}
