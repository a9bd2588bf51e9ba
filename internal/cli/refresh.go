package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panon-btc/txlineage/pkg/config"
	"github.com/panon-btc/txlineage/pkg/graphio"
	"github.com/panon-btc/txlineage/pkg/pipeline"
)

// refreshCommand creates the refresh command for relabeling an existing layout.
func (c *CLI) refreshCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "refresh [graph.json] [layout.json]",
		Short: "Refresh label text in an existing layout without moving nodes",
		Long: `Refresh label text in an existing layout without moving nodes.

When labels change but the graph structure does not, a full relayout is
unnecessary. The refresh command rebuilds each node's render model from the
updated graph while keeping every position fixed, and reports which nodes
changed height so a caller can decide whether a relayout is worth it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRefresh(args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite the input layout)")

	return cmd
}

func (c *CLI) runRefresh(graphPath, layoutPath, output string) error {
	cfg := config.Default()

	g, err := graphio.ReadGraphFile(graphPath)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", graphPath, err)
	}
	prev, err := graphio.ReadLayoutFile(layoutPath)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", layoutPath, err)
	}

	next, changed := pipeline.RefreshLabels(g, prev, cfg.Measurer(), cfg.Constants())

	outputPath := output
	if outputPath == "" {
		outputPath = layoutPath
	}
	if err := graphio.WriteLayoutFile(next, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Labels refreshed")
	printFile(outputPath)
	if len(changed) > 0 {
		printDetail("%d node(s) changed height: %s", len(changed), joinTxids(changed))
	} else {
		printDetail("no height changes")
	}

	return nil
}

// joinTxids renders a short txid list, eliding long tails.
func joinTxids(txids []string) string {
	const maxShown = 4
	if len(txids) > maxShown {
		return fmt.Sprintf("%s, ... (%d more)", strings.Join(txids[:maxShown], ", "), len(txids)-maxShown)
	}
	return strings.Join(txids, ", ")
}
