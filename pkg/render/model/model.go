// Package model builds per-transaction render models: the measured,
// content-annotated view of a node that the layout feeds to the
// presentation layer, so the consumer never has to re-measure text.
//
// A render model is derived state. It is rebuilt on every layout pass and
// on every label mutation, never persisted, and is always a pure function
// of the graph model plus a fixed set of sizing constants.
package model

// Constants are the sizing knobs for node construction. All values are
// pixels except HeadTailVisible.
type Constants struct {
	// BaseRowHeight is the height of an input/output row with no labels.
	// Gap rows always use exactly this height.
	BaseRowHeight float64
	// LabelLineHeight is added per merged label line on a row.
	LabelLineHeight float64
	// HeaderHeight covers the txid/block header line.
	HeaderHeight float64
	// MetaLineHeight covers the fee/feerate/flags line.
	MetaLineHeight float64
	// MinNodeWidth is the floor for node width.
	MinNodeWidth float64
	// RailWidth is reserved on the left edge for the expand rail.
	RailWidth float64
	// ColumnGutter separates the input and output columns.
	ColumnGutter float64
	// HorizontalPad is added on each side of the content.
	HorizontalPad float64
	// VerticalPad is added above and below the row area.
	VerticalPad float64
	// HeadTailVisible is how many leading and trailing outputs stay
	// visible regardless of connectivity.
	HeadTailVisible int
}

// DefaultConstants returns the sizing used by the graph view.
func DefaultConstants() Constants {
	return Constants{
		BaseRowHeight:   18,
		LabelLineHeight: 14,
		HeaderHeight:    22,
		MetaLineHeight:  16,
		MinNodeWidth:    160,
		RailWidth:       14,
		ColumnGutter:    24,
		HorizontalPad:   8,
		VerticalPad:     6,
		HeadTailVisible: 3,
	}
}

// InputRow is one rendered input line.
type InputRow struct {
	// Index is the input's position in the transaction.
	Index int `json:"index"`
	// Text is the primary cell: resolved address when known, otherwise
	// the shortened outpoint, or "coinbase".
	Text string `json:"text"`
	// ValueText is the formatted prior value, empty when unresolved.
	ValueText string `json:"value_text,omitempty"`
	// LabelLines are the merged label lines: address labels first, then
	// input-ref labels, each rendered "file:label".
	LabelLines []string `json:"label_lines,omitempty"`
	// Height is BaseRowHeight plus label lines.
	Height float64 `json:"height"`
}

// OutputRow is one rendered output line, or a synthetic gap row standing
// in for a collapsed range of outputs.
type OutputRow struct {
	// Index is the output's vout. Meaningless for gap rows.
	Index int `json:"index"`
	// Gap marks a synthetic row hiding HiddenCount consecutive outputs.
	Gap bool `json:"gap,omitempty"`
	// HiddenCount is how many outputs the gap row hides.
	HiddenCount int `json:"hidden_count,omitempty"`
	// Text is the primary cell: address when known, otherwise the script type.
	Text string `json:"text,omitempty"`
	// ValueText is the formatted output value.
	ValueText string `json:"value_text,omitempty"`
	// LabelLines are merged label lines, address labels first.
	LabelLines []string `json:"label_lines,omitempty"`
	// Height is BaseRowHeight for gap rows, BaseRowHeight plus label
	// lines otherwise.
	Height float64 `json:"height"`
}

// NodeRenderModel is the fully measured view of one transaction node.
type NodeRenderModel struct {
	Txid string `json:"txid"`

	// Width and Height are the node's pixel size.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// InputColWidth and OutputColWidth are the measured column widths.
	InputColWidth  float64 `json:"input_col_width"`
	OutputColWidth float64 `json:"output_col_width"`

	// HeaderText is the shortened txid plus confirmation status.
	HeaderText string `json:"header_text"`
	// MetaText summarizes fee, feerate, and flags.
	MetaText string `json:"meta_text"`
	Coinbase bool   `json:"coinbase,omitempty"`
	RBF      bool   `json:"rbf,omitempty"`

	// TxLabelLines are transaction-level labels, rendered "file:label".
	TxLabelLines []string `json:"tx_label_lines,omitempty"`

	Inputs  []InputRow  `json:"inputs"`
	Outputs []OutputRow `json:"outputs"`
}
