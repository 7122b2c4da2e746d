// Package cardstore defines persistence contracts for event cards and the
// board collaborator built on top of them.
//
// Three backends implement [Store]:
//
//   - memory: in-process map, used by tests and the demo board
//   - sqlite: modernc.org/sqlite with embedded migrations
//   - mongo: one document per card in a MongoDB collection
//
// [Updater] adapts any Store to [board.Updater] for a single actor, so a
// board can persist drag results without knowing which backend it talks to.
package cardstore

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/noticeboard/pkg/board"
)

var (
	// ErrNotFound indicates a requested card is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a card with the same ID already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Card is one stored event card.
type Card struct {
	ID        string   `json:"id" bson:"_id"`
	BoardID   string   `json:"board_id" bson:"board_id"`
	OwnerID   string   `json:"owner_id,omitempty" bson:"owner_id,omitempty"`
	Title     string   `json:"title" bson:"title"`
	Category  string   `json:"category,omitempty" bson:"category,omitempty"`
	Date      string   `json:"date,omitempty" bson:"date,omitempty"`
	PositionX *float64 `json:"position_x" bson:"position_x"`
	PositionY *float64 `json:"position_y" bson:"position_y"`
	Rotation  *float64 `json:"rotation,omitempty" bson:"rotation,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ForActor converts the stored card into the board's view of it. Only the
// owner may drag a card.
func (c Card) ForActor(actor string) board.Card {
	return board.Card{
		ID:        c.ID,
		Title:     c.Title,
		Category:  c.Category,
		Date:      c.Date,
		PositionX: c.PositionX,
		PositionY: c.PositionY,
		Rotation:  c.Rotation,
		Movable:   actor != "" && actor == c.OwnerID,
	}
}

// Store persists cards.
type Store interface {
	// CreateCard inserts a card. An empty ID is replaced with [NewID] and
	// zero timestamps are set to now.
	CreateCard(ctx context.Context, c Card) (Card, error)
	// GetCard returns one card or [ErrNotFound].
	GetCard(ctx context.Context, id string) (Card, error)
	// ListCards returns a board's cards in creation order.
	ListCards(ctx context.Context, boardID string) ([]Card, error)
	// UpdatePosition stores a durable position. Nil clears it.
	UpdatePosition(ctx context.Context, id string, x, y *float64) (Card, error)
	// DeleteCard removes a card or returns [ErrNotFound].
	DeleteCard(ctx context.Context, id string) error
	Close() error
}

// NewID returns a fresh card identifier.
func NewID() string {
	return uuid.NewString()
}

// Prepare fills the ID and timestamps of a card about to be created and
// clears non-finite coordinates.
func Prepare(c Card, now time.Time) Card {
	if c.ID == "" {
		c.ID = NewID()
	}
	now = now.UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	c.PositionX = Coordinate(c.PositionX)
	c.PositionY = Coordinate(c.PositionY)
	c.Rotation = Coordinate(c.Rotation)
	return c
}

// Coordinate returns v, or nil when v is nil or not a finite number.
func Coordinate(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	f := *v
	return &f
}

// BoardCards lists a board's cards as seen by actor.
func BoardCards(ctx context.Context, s Store, boardID, actor string) ([]board.Card, error) {
	stored, err := s.ListCards(ctx, boardID)
	if err != nil {
		return nil, err
	}
	cards := make([]board.Card, len(stored))
	for i, c := range stored {
		cards[i] = c.ForActor(actor)
	}
	return cards, nil
}
