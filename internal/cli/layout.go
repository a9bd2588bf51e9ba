package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panon-btc/txlineage/pkg/config"
	"github.com/panon-btc/txlineage/pkg/graphio"
	"github.com/panon-btc/txlineage/pkg/txgraph"
)

// layoutCommand creates the layout command for computing ancestry layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		configPath string
		noCache    bool
		expanded   []string
		hidden     []string
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a positioned layout from an ancestry graph",
		Long: `Compute a positioned layout from an ancestry graph.

The layout command takes a graph.json file and computes node positions for
rendering: each transaction is sized from its inputs, visible outputs, and
merged labels, placed by the layered solver, and nudged by the
crossing-minimization passes. The output is a layout.json file.

Use --expanded to reveal the ancestors of specific transactions and
--hidden to prune subtrees; without either flag every node is laid out.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, configPath, noCache, expanded, hidden)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&configPath, "config", "", "tuning config file (TOML)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringSliceVar(&expanded, "expanded", nil, "txids whose ancestors are revealed")
	cmd.Flags().StringSliceVar(&hidden, "hidden", nil, "txids pruned from the layout")

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output, configPath string, noCache bool, expanded, hidden []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	g, err := graphio.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var active map[string]bool
	if expanded != nil || hidden != nil {
		active = txgraph.VisibleTxids(g, toSet(expanded), toSet(hidden))
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	lay, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, active)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Laid out %d nodes", len(lay.Nodes)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := graphio.WriteLayoutFile(lay, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(lay.Nodes), len(lay.Edges), cacheHit)

	return nil
}

// toSet converts a txid list to a membership set.
func toSet(txids []string) map[string]bool {
	set := make(map[string]bool, len(txids))
	for _, txid := range txids {
		set[txid] = true
	}
	return set
}
