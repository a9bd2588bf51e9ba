package model

import (
	"fmt"
	"strings"

	"github.com/panon-btc/txlineage/pkg/enrich"
	"github.com/panon-btc/txlineage/pkg/labels"
	"github.com/panon-btc/txlineage/pkg/render/text"
	"github.com/panon-btc/txlineage/pkg/txgraph"
)

// Builder constructs render models for nodes of one graph. It is cheap to
// create and carries no state beyond its inputs, so a fresh builder per
// layout pass is the expected usage.
type Builder struct {
	Graph    *txgraph.GraphModel
	Measurer text.Measurer
	Consts   Constants

	// Active restricts which nodes count as present when deciding edge
	// visibility. Nil means every node in the graph is active.
	Active map[string]bool
}

// NewBuilder creates a builder over the full graph.
func NewBuilder(g *txgraph.GraphModel, m text.Measurer, c Constants) *Builder {
	return &Builder{Graph: g, Measurer: m, Consts: c}
}

// Build produces the render model for txid. Returns false when the graph
// does not contain the node. Missing label buckets and absent enrichment
// never fail; they default to empty.
func (b *Builder) Build(txid string) (*NodeRenderModel, bool) {
	node, ok := b.Graph.Node(txid)
	if !ok {
		return nil, false
	}

	m := &NodeRenderModel{
		Txid:         txid,
		Coinbase:     node.IsCoinbase(),
		RBF:          enrich.SignalsRBF(node),
		HeaderText:   b.headerText(node),
		TxLabelLines: labels.Lines(b.Graph.LabelsFor(labels.TxRef(txid))),
	}
	m.MetaText = b.metaText(node, m.Coinbase, m.RBF)

	m.Inputs = b.buildInputs(node)
	m.Outputs = b.buildOutputs(node)

	b.size(m)
	return m, true
}

// headerText renders the shortened txid plus confirmation status.
func (b *Builder) headerText(node *txgraph.TxNode) string {
	if node.BlockHeight != nil {
		return fmt.Sprintf("%s · #%d", text.ShortenTxid(node.Txid), *node.BlockHeight)
	}
	return text.ShortenTxid(node.Txid) + " · unconfirmed"
}

// metaText summarizes fee, feerate, and flags on one line.
func (b *Builder) metaText(node *txgraph.TxNode, coinbase, rbf bool) string {
	var parts []string
	if coinbase {
		parts = append(parts, "coinbase")
	} else if fee, ok := enrich.Fee(node); ok {
		parts = append(parts, "fee "+text.FormatSats(fee))
		parts = append(parts, text.FormatFeerate(enrich.Feerate(fee, node.VSize)))
	}
	if rbf {
		parts = append(parts, "RBF")
	}
	return strings.Join(parts, " · ")
}

// buildInputs renders every input as a row. Inputs are never collapsed.
func (b *Builder) buildInputs(node *txgraph.TxNode) []InputRow {
	rows := make([]InputRow, len(node.Inputs))
	for i, input := range node.Inputs {
		row := InputRow{Index: i}

		switch {
		case input.Prevout == nil:
			row.Text = "coinbase"
		case input.Address != "":
			row.Text = text.ShortenAddress(input.Address)
		default:
			row.Text = text.ShortenOutpoint(input.Prevout.Txid, input.Prevout.Vout)
		}
		if input.Value != nil {
			row.ValueText = text.FormatSats(*input.Value)
		}

		row.LabelLines = b.mergedLabelLines(input.Address, labels.InputRef(node.Txid, uint32(i)))
		row.Height = b.rowHeight(len(row.LabelLines))
		rows[i] = row
	}
	return rows
}

// buildOutputs renders outputs with the collapsing policy applied: visible
// indices become real rows, and every skipped range becomes one gap row
// recording how many outputs it hides.
func (b *Builder) buildOutputs(node *txgraph.TxNode) []OutputRow {
	visible := VisibleOutputIndices(len(node.Outputs), b.connectedOutputs(node.Txid), b.Consts.HeadTailVisible)

	rows := make([]OutputRow, 0, len(visible))
	prev := -1
	for _, idx := range visible {
		if hidden := idx - prev - 1; hidden > 0 {
			rows = append(rows, OutputRow{
				Gap:         true,
				HiddenCount: hidden,
				Text:        fmt.Sprintf("%d more", hidden),
				Height:      b.Consts.BaseRowHeight,
			})
		}
		prev = idx

		output := node.Outputs[idx]
		row := OutputRow{
			Index:     idx,
			ValueText: text.FormatSats(output.Value),
		}
		if output.Address != "" {
			row.Text = text.ShortenAddress(output.Address)
		} else {
			row.Text = string(output.ScriptType)
		}
		row.LabelLines = b.mergedLabelLines(output.Address, labels.OutputRef(node.Txid, uint32(idx)))
		row.Height = b.rowHeight(len(row.LabelLines))
		rows = append(rows, row)
	}
	return rows
}

// connectedOutputs collects the vouts of txid that fund a visible edge.
func (b *Builder) connectedOutputs(txid string) map[int]bool {
	out := make(map[int]bool)
	for _, e := range b.Graph.Edges {
		if e.FundingTxid != txid {
			continue
		}
		if !b.active(e.SpendingTxid) || !b.active(e.FundingTxid) {
			continue
		}
		out[int(e.FundingVout)] = true
	}
	return out
}

func (b *Builder) active(txid string) bool {
	if !b.Graph.HasNode(txid) {
		return false
	}
	return b.Active == nil || b.Active[txid]
}

// mergedLabelLines concatenates address-level labels and ref-specific
// labels, address labels always first. Both buckets default to empty.
func (b *Builder) mergedLabelLines(addr string, ref labels.Ref) []string {
	var lines []string
	if addr != "" {
		lines = append(lines, labels.Lines(b.Graph.LabelsFor(labels.AddrRef(addr)))...)
	}
	lines = append(lines, labels.Lines(b.Graph.LabelsFor(ref))...)
	return lines
}

func (b *Builder) rowHeight(labelLines int) float64 {
	return b.Consts.BaseRowHeight + float64(labelLines)*b.Consts.LabelLineHeight
}

// size measures every rendered string and fills in the column widths and
// the node's pixel size.
func (b *Builder) size(m *NodeRenderModel) {
	c := b.Consts

	var inCol float64
	var inHeight float64
	for _, row := range m.Inputs {
		inCol = max(inCol, b.Measurer.Width(row.Text), b.Measurer.Width(row.ValueText))
		for _, line := range row.LabelLines {
			inCol = max(inCol, b.Measurer.Width(line))
		}
		inHeight += row.Height
	}

	var outCol float64
	var outHeight float64
	for _, row := range m.Outputs {
		outCol = max(outCol, b.Measurer.Width(row.Text), b.Measurer.Width(row.ValueText))
		for _, line := range row.LabelLines {
			outCol = max(outCol, b.Measurer.Width(line))
		}
		outHeight += row.Height
	}

	header := max(b.Measurer.Width(m.HeaderText), b.Measurer.Width(m.MetaText))
	for _, line := range m.TxLabelLines {
		header = max(header, b.Measurer.Width(line))
	}

	pad := 2 * c.HorizontalPad
	m.InputColWidth = inCol
	m.OutputColWidth = outCol
	m.Width = max(
		c.MinNodeWidth,
		c.RailWidth+inCol+c.ColumnGutter+outCol+pad,
		c.RailWidth+header+pad,
	)
	m.Height = c.HeaderHeight + c.MetaLineHeight +
		float64(len(m.TxLabelLines))*c.LabelLineHeight +
		max(inHeight, outHeight) +
		2*c.VerticalPad
}
