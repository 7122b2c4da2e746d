package cardstore

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/errors"
)

// Updater persists drag results to a Store on behalf of one actor.
type Updater struct {
	Store Store
	Actor string
}

// UpdatePosition implements [board.Updater].
//
// Unknown cards fail with CARD_NOT_FOUND and cards owned by someone else
// with FORBIDDEN. Non-finite coordinates clear the stored position.
func (u Updater) UpdatePosition(ctx context.Context, p board.PositionUpdate) (board.Card, error) {
	if err := errors.ValidateCardID(p.ID); err != nil {
		return board.Card{}, err
	}
	c, err := u.Store.GetCard(ctx, p.ID)
	if err != nil {
		return board.Card{}, storeError(err, p.ID)
	}
	if u.Actor == "" {
		return board.Card{}, errors.New(errors.ErrCodeUnauthorized, "sign in to move cards")
	}
	if c.OwnerID != u.Actor {
		return board.Card{}, errors.New(errors.ErrCodeForbidden, "you do not have permission to move this card")
	}

	x, y := p.PositionX, p.PositionY
	c, err = u.Store.UpdatePosition(ctx, p.ID, Coordinate(&x), Coordinate(&y))
	if err != nil {
		return board.Card{}, storeError(err, p.ID)
	}
	return c.ForActor(u.Actor), nil
}

func storeError(err error, id string) error {
	if stderrors.Is(err, ErrNotFound) {
		return errors.Wrap(errors.ErrCodeCardNotFound, err, "card %s not found", id)
	}
	return errors.Wrap(errors.ErrCodePersistence, err, "save position of %s", id)
}
