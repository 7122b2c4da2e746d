// Package memory provides an in-process card store.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/noticeboard/pkg/cardstore"
)

// Store keeps cards in a map guarded by a mutex.
type Store struct {
	mu    sync.RWMutex
	cards map[string]cardstore.Card
	now   func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{cards: make(map[string]cardstore.Card), now: time.Now}
}

// CreateCard implements [cardstore.Store].
func (s *Store) CreateCard(ctx context.Context, c cardstore.Card) (cardstore.Card, error) {
	if err := ctx.Err(); err != nil {
		return cardstore.Card{}, err
	}
	c = cardstore.Prepare(c, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[c.ID]; ok {
		return cardstore.Card{}, cardstore.ErrAlreadyExists
	}
	s.cards[c.ID] = c
	return c, nil
}

// GetCard implements [cardstore.Store].
func (s *Store) GetCard(ctx context.Context, id string) (cardstore.Card, error) {
	if err := ctx.Err(); err != nil {
		return cardstore.Card{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[id]
	if !ok {
		return cardstore.Card{}, cardstore.ErrNotFound
	}
	return c, nil
}

// ListCards implements [cardstore.Store].
func (s *Store) ListCards(ctx context.Context, boardID string) ([]cardstore.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]cardstore.Card, 0, len(s.cards))
	for _, c := range s.cards {
		if c.BoardID == boardID {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b cardstore.Card) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// UpdatePosition implements [cardstore.Store].
func (s *Store) UpdatePosition(ctx context.Context, id string, x, y *float64) (cardstore.Card, error) {
	if err := ctx.Err(); err != nil {
		return cardstore.Card{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return cardstore.Card{}, cardstore.ErrNotFound
	}
	c.PositionX = cardstore.Coordinate(x)
	c.PositionY = cardstore.Coordinate(y)
	c.UpdatedAt = s.now().UTC()
	s.cards[id] = c
	return c, nil
}

// DeleteCard implements [cardstore.Store].
func (s *Store) DeleteCard(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[id]; !ok {
		return cardstore.ErrNotFound
	}
	delete(s.cards, id)
	return nil
}

// Close implements [cardstore.Store].
func (s *Store) Close() error { return nil }
