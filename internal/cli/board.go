package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/cardstore"
	"github.com/matzehuels/noticeboard/pkg/cardstore/memory"
	"github.com/matzehuels/noticeboard/pkg/layout"
	"github.com/matzehuels/noticeboard/pkg/pipeline"
)

// boardCommand creates the board command, an interactive terminal board
// backed by the card store.
func (c *CLI) boardCommand() *cobra.Command {
	var (
		store   storeFlags
		boardID string
		actor   string
		file    string
		view    string
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open a board in the terminal",
		Long: `Open a board in the terminal.

Cards owned by --actor can be dragged with the mouse or moved with the arrow
keys after selecting them with tab. Positions are saved to the store.

With --file the cards are loaded into a throwaway in-memory store and owned
by the actor, which is handy for trying layouts.`,
		Example: `  noticeboard board --file cards.json
  noticeboard board --board spring --actor alice --store sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store.apply(&cfg.Store)
			if view == "" {
				view = cfg.Layout.View
			}
			mode, err := layout.ParseViewMode(view)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var st cardstore.Store
			if file != "" {
				if actor == "" {
					actor = "me"
				}
				st = memory.New()
				cards, err := pipeline.LoadCards(file)
				if err != nil {
					return err
				}
				cards, err = pipeline.PrepareCards(cards)
				if err != nil {
					return err
				}
				if _, _, err := importCards(ctx, st, boardID, actor, cards); err != nil {
					return err
				}
			} else if st, err = openStore(ctx, cfg.Store); err != nil {
				return err
			}
			defer st.Close()

			cards, err := cardstore.BoardCards(ctx, st, boardID, actor)
			if err != nil {
				return fmt.Errorf("load board %s: %w", boardID, err)
			}

			notifications := make(chan board.Notification, 16)
			b := board.New(
				board.WithOptions(cfg.Layout.Options()),
				board.WithSeed(cfg.Layout.Seed),
				board.WithViewMode(mode),
				board.WithLogger(c.Logger),
				board.WithUpdater(cardstore.Updater{Store: st, Actor: actor}),
				board.WithNotifier(boardNotifier(notifications)),
			)
			b.SetCards(cards)

			p := tea.NewProgram(NewBoardModel(ctx, b, notifications),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(ctx),
			)
			if _, err := p.Run(); err != nil {
				return err
			}
			if err := b.Wait(); err != nil {
				printWarning("Some positions were not saved: %v", err)
			}
			return nil
		},
	}

	store.register(cmd)
	cmd.Flags().StringVar(&boardID, "board", defaultBoard, "board to open")
	cmd.Flags().StringVar(&actor, "actor", "", "user opening the board (may drag their own cards)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "open a cards file instead of the store")
	cmd.Flags().StringVar(&view, "view", "", "initial view mode: scattered, list, grid")

	return cmd
}
