package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/cardstore"
	apperrors "github.com/matzehuels/noticeboard/pkg/errors"
	"github.com/matzehuels/noticeboard/pkg/pipeline"
)

// cardsCommand creates the cards command for managing stored cards.
func (c *CLI) cardsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Import and list cards in the card store",
	}

	cmd.AddCommand(c.cardsImportCommand())
	cmd.AddCommand(c.cardsListCommand())

	return cmd
}

// cardsImportCommand creates "cards import", which loads a cards file into
// the store under one board and owner.
func (c *CLI) cardsImportCommand() *cobra.Command {
	var (
		store   storeFlags
		boardID string
		owner   string
	)

	cmd := &cobra.Command{
		Use:     "import [cards.json]",
		Short:   "Import cards from a JSON file",
		Example: `  noticeboard cards import cards.json --board spring --owner alice --store sqlite`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store.apply(&cfg.Store)

			cards, err := pipeline.LoadCards(args[0])
			if err != nil {
				return err
			}
			cards, err = pipeline.PrepareCards(cards)
			if err != nil {
				return err
			}

			st, err := openStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			created, skipped, err := importCards(cmd.Context(), st, boardID, owner, cards)
			if err != nil {
				return err
			}
			printSuccess("Imported %d cards into board %s", created, boardID)
			if skipped > 0 {
				printDetail("%d cards already existed", skipped)
			}
			return nil
		},
	}

	store.register(cmd)
	cmd.Flags().StringVar(&boardID, "board", defaultBoard, "board to import into")
	cmd.Flags().StringVar(&owner, "owner", "", "owner of the imported cards (may drag them)")

	return cmd
}

// importCards stores cards on a board. Cards whose ID already exists are
// skipped and counted.
func importCards(ctx context.Context, st cardstore.Store, boardID, owner string, cards []board.Card) (created, skipped int, err error) {
	if err := apperrors.ValidateBoardID(boardID); err != nil {
		return 0, 0, err
	}
	for _, bc := range cards {
		_, err := st.CreateCard(ctx, cardstore.Card{
			ID:        bc.ID,
			BoardID:   boardID,
			OwnerID:   owner,
			Title:     bc.Title,
			Category:  bc.Category,
			Date:      bc.Date,
			PositionX: bc.PositionX,
			PositionY: bc.PositionY,
			Rotation:  bc.Rotation,
		})
		switch {
		case errors.Is(err, cardstore.ErrAlreadyExists):
			skipped++
		case err != nil:
			return created, skipped, fmt.Errorf("import card %s: %w", bc.ID, err)
		default:
			created++
		}
	}
	return created, skipped, nil
}

// cardsListCommand creates "cards list", which prints a board's cards as a
// table.
func (c *CLI) cardsListCommand() *cobra.Command {
	var (
		store   storeFlags
		boardID string
		actor   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the cards on a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store.apply(&cfg.Store)

			st, err := openStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			cards, err := st.ListCards(cmd.Context(), boardID)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				printInfo("Board %s has no cards", boardID)
				return nil
			}
			fmt.Println(cardsTable(cards, actor))
			return nil
		},
	}

	store.register(cmd)
	cmd.Flags().StringVar(&boardID, "board", defaultBoard, "board to list")
	cmd.Flags().StringVar(&actor, "actor", "", "highlight cards this actor may drag")

	return cmd
}

// cardsTable renders stored cards as a bordered table.
func cardsTable(cards []cardstore.Card, actor string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	movableStyle := lipgloss.NewStyle().Foreground(colorGreen)

	rows := make([][]string, len(cards))
	for i, cd := range cards {
		rows[i] = []string{cd.ID, cd.Title, cd.Category, cd.Date, coord(cd.PositionX), coord(cd.PositionY), cd.OwnerID}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Category", "Date", "X %", "Y %", "Owner").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= 0 && row < len(cards) && cards[row].ForActor(actor).Movable {
				return movableStyle
			}
			return lipgloss.NewStyle()
		}).
		String()
}

func coord(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
