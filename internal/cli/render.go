package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/noticeboard/internal/config"
	"github.com/matzehuels/noticeboard/pkg/pipeline"
)

// renderOpts holds the render-only flags.
type renderOpts struct {
	output   string // base output path; the format is appended as extension
	formats  []string
	noTitles bool
	active   string
}

// renderCommand creates the render command, which lays out a cards file and
// draws the board as SVG, PNG and/or snapshot JSON.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      layoutFlags
		opts       renderOpts
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render [cards.json]",
		Short: "Render a board to SVG, PNG or JSON",
		Example: `  noticeboard render cards.json
  noticeboard render cards.json -f svg,png --active evt-7 -o board`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			po := flags.options(cmd, cfg)
			po.Formats = opts.formats
			po.NoTitles = opts.noTitles
			po.Active = opts.active
			return c.runRender(cmd.Context(), args[0], opts.output, flags.noCache, cfg.Cache, po)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.noTitles, "no-titles", false, "draw cards without titles")
	cmd.Flags().StringVar(&opts.active, "active", "", "card to lift above all others")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output string, noCache bool, cacheCfg config.Cache, opts pipeline.Options) error {
	cards, err := pipeline.LoadCards(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cacheCfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d cards...", len(cards)))
	spinner.Start()
	result, err := runner.Execute(ctx, cards, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(basePath(output, input), result.Artifacts)
	if err != nil {
		return err
	}

	c.Logger.Debug("render finished", "layout", result.Stats.LayoutTime, "render", result.Stats.RenderTime)
	printSuccess("Rendered %s", opts.String())
	printStats(result.Stats.CardCount, result.Stats.Exhausted, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	if result.Stats.Exhausted > 0 {
		printWarning("%d cards could not avoid overlaps; try a larger canvas", result.Stats.Exhausted)
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes each artifact to <base>.<format> in a stable order
// and returns the written paths.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if f == pipeline.FormatJSON {
			path = base + ".layout.json"
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
