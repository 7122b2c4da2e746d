package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/noticeboard/internal/config"
	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/layout"
	"github.com/matzehuels/noticeboard/pkg/pipeline"
	"github.com/matzehuels/noticeboard/pkg/render/overlapgraph"
)

// layoutCommand creates the layout command, which computes placements for
// a cards file and writes the snapshot as JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags    layoutFlags
		output   string
		overlaps string
	)

	cmd := &cobra.Command{
		Use:   "layout [cards.json]",
		Short: "Compute a board layout and write it as JSON",
		Long: `Compute card placements for a cards file.

The input is a JSON array of cards (id, title, category, date and optional
position_x / position_y / rotation). The output is a snapshot with one
placement per card plus overlap diagnostics.`,
		Example: `  noticeboard layout cards.json
  noticeboard layout cards.json --view grid --width 390 -o grid.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg)
			if err := c.runLayout(cmd.Context(), args[0], output, flags.noCache, cfg.Cache, opts); err != nil {
				return err
			}
			if overlaps != "" {
				return c.writeOverlapGraph(cmd.Context(), args[0], output, overlaps, opts)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&overlaps, "overlaps", "", "also write the overlap graph as SVG to this path")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, noCache bool, cacheCfg config.Cache, opts pipeline.Options) error {
	prog := newProgress(c.Logger)

	cards, err := pipeline.LoadCards(input)
	if err != nil {
		return err
	}
	cards, err = pipeline.PrepareCards(cards)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cacheCfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	snap, hit, err := runner.LayoutWithCacheInfo(ctx, cards, opts)
	if err != nil {
		return err
	}

	if output == "" {
		output = layoutPath(input)
	}
	if err := board.WriteSnapshotFile(snap, output); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Laid out %d cards in %s mode", len(snap.Placements), snap.Mode))
	printSuccess("Layout complete")
	printStats(len(snap.Placements), snap.Diagnostics.Exhausted, hit)
	printFile(output)
	printNewline()
	printNextStep("Render it", "noticeboard render "+input)
	return nil
}

// writeOverlapGraph draws which cards of the written snapshot overlap.
func (c *CLI) writeOverlapGraph(ctx context.Context, input, output, path string, opts pipeline.Options) error {
	if output == "" {
		output = layoutPath(input)
	}
	snap, err := board.ReadSnapshotFile(output)
	if err != nil {
		return err
	}
	cards, err := pipeline.LoadCards(input)
	if err != nil {
		return err
	}
	titles := make(map[string]string, len(cards))
	for _, cd := range cards {
		titles[cd.ID] = cd.Title
	}

	padding := layout.DefaultOptions().Padding
	if opts.Layout != nil && opts.Layout.Padding > 0 {
		padding = opts.Layout.Padding
	}
	svg, err := overlapgraph.RenderSVG(ctx, overlapgraph.ToDOT(snap, overlapgraph.Options{Padding: padding, Titles: titles}))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printDetail("%d overlapping pairs", len(overlapgraph.Edges(snap, padding)))
	printFile(path)
	return nil
}

// layoutPath derives the default snapshot path from the cards file.
func layoutPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}
