package pipeline

import (
	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/errors"
)

// PrepareCards validates card IDs and drops later duplicates, keeping the
// first occurrence so the ordinal order stays stable.
func PrepareCards(cards []board.Card) ([]board.Card, error) {
	seen := make(map[string]bool, len(cards))
	out := make([]board.Card, 0, len(cards))
	for i, c := range cards {
		if err := errors.ValidateCardID(c.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "card %d", i)
		}
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out, nil
}

// LoadCards reads and prepares cards from a JSON file.
func LoadCards(path string) ([]board.Card, error) {
	cards, err := board.ReadCardsFile(path)
	if err != nil {
		return nil, err
	}
	return PrepareCards(cards)
}
