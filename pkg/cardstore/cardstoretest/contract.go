// Package cardstoretest provides the behavior every cardstore backend
// must share, as a reusable test suite.
package cardstoretest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/matzehuels/noticeboard/pkg/cardstore"
)

// Run exercises a Store implementation. open must return an empty store;
// the suite closes it.
func Run(t *testing.T, open func(t *testing.T) cardstore.Store) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s cardstore.Store)
	}{
		{"CreateGetRoundTrip", testCreateGet},
		{"CreateAssignsID", testCreateAssignsID},
		{"CreateDuplicate", testCreateDuplicate},
		{"GetMissing", testGetMissing},
		{"ListOrderAndBoard", testList},
		{"UpdatePosition", testUpdatePosition},
		{"UpdatePositionClears", testUpdatePositionClears},
		{"UpdatePositionMissing", testUpdatePositionMissing},
		{"Delete", testDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() {
				if err := s.Close(); err != nil {
					t.Errorf("close store: %v", err)
				}
			})
			tt.fn(t, s)
		})
	}
}

var base = time.Date(2026, time.March, 14, 18, 30, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func testCreateGet(t *testing.T, s cardstore.Store) {
	ctx := context.Background()
	in := cardstore.Card{
		ID:        "card-1",
		BoardID:   "demo",
		OwnerID:   "alice",
		Title:     "Jazz night",
		Category:  "music",
		Date:      "2026-03-20",
		PositionX: ptr(42),
		PositionY: ptr(17.5),
		Rotation:  ptr(-3),
		CreatedAt: base,
	}
	if _, err := s.CreateCard(ctx, in); err != nil {
		t.Fatalf("create card: %v", err)
	}
	got, err := s.GetCard(ctx, "card-1")
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if got.Title != in.Title || got.OwnerID != in.OwnerID || got.BoardID != in.BoardID || got.Category != in.Category || got.Date != in.Date {
		t.Errorf("got %+v, want %+v", got, in)
	}
	if got.PositionX == nil || *got.PositionX != 42 || got.PositionY == nil || *got.PositionY != 17.5 {
		t.Errorf("position = %v,%v, want 42,17.5", got.PositionX, got.PositionY)
	}
	if got.Rotation == nil || *got.Rotation != -3 {
		t.Errorf("rotation = %v, want -3", got.Rotation)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, base)
	}
}

func testCreateAssignsID(t *testing.T, s cardstore.Store) {
	c, err := s.CreateCard(context.Background(), cardstore.Card{BoardID: "demo", Title: "x", PositionX: ptr(math.NaN())})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	if c.ID == "" {
		t.Error("expected generated id")
	}
	if c.PositionX != nil {
		t.Errorf("non-finite position should be cleared, got %v", *c.PositionX)
	}
	if c.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func testCreateDuplicate(t *testing.T, s cardstore.Store) {
	ctx := context.Background()
	c := cardstore.Card{ID: "dup", BoardID: "demo", Title: "a"}
	if _, err := s.CreateCard(ctx, c); err != nil {
		t.Fatalf("create card: %v", err)
	}
	if _, err := s.CreateCard(ctx, c); !errors.Is(err, cardstore.ErrAlreadyExists) {
		t.Fatalf("duplicate error = %v, want ErrAlreadyExists", err)
	}
}

func testGetMissing(t *testing.T, s cardstore.Store) {
	if _, err := s.GetCard(context.Background(), "nope"); !errors.Is(err, cardstore.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func testList(t *testing.T, s cardstore.Store) {
	ctx := context.Background()
	for i, id := range []string{"c", "a", "b"} {
		c := cardstore.Card{ID: id, BoardID: "demo", Title: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if _, err := s.CreateCard(ctx, c); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if _, err := s.CreateCard(ctx, cardstore.Card{ID: "other", BoardID: "elsewhere", Title: "o", CreatedAt: base}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	got, err := s.ListCards(ctx, "demo")
	if err != nil {
		t.Fatalf("list cards: %v", err)
	}
	var ids []string
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	want := []string{"c", "a", "b"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}

	empty, err := s.ListCards(ctx, "missing")
	if err != nil {
		t.Fatalf("list missing board: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("missing board returned %d cards", len(empty))
	}
}

func testUpdatePosition(t *testing.T, s cardstore.Store) {
	ctx := context.Background()
	if _, err := s.CreateCard(ctx, cardstore.Card{ID: "m", BoardID: "demo", Title: "m", CreatedAt: base}); err != nil {
		t.Fatal(err)
	}
	got, err := s.UpdatePosition(ctx, "m", ptr(0), ptr(85))
	if err != nil {
		t.Fatalf("update position: %v", err)
	}
	if got.PositionX == nil || *got.PositionX != 0 || got.PositionY == nil || *got.PositionY != 85 {
		t.Errorf("returned position = %v,%v, want 0,85", got.PositionX, got.PositionY)
	}
	stored, err := s.GetCard(ctx, "m")
	if err != nil {
		t.Fatal(err)
	}
	if stored.PositionX == nil || *stored.PositionX != 0 || stored.PositionY == nil || *stored.PositionY != 85 {
		t.Errorf("stored position = %v,%v, want 0,85", stored.PositionX, stored.PositionY)
	}
	if stored.UpdatedAt.Before(stored.CreatedAt) {
		t.Error("updated_at should not precede created_at")
	}
}

func testUpdatePositionClears(t *testing.T, s cardstore.Store) {
	ctx := context.Background()
	if _, err := s.CreateCard(ctx, cardstore.Card{ID: "m", BoardID: "demo", Title: "m", PositionX: ptr(10), PositionY: ptr(10)}); err != nil {
		t.Fatal(err)
	}
	got, err := s.UpdatePosition(ctx, "m", nil, ptr(math.Inf(1)))
	if err != nil {
		t.Fatalf("update position: %v", err)
	}
	if got.PositionX != nil || got.PositionY != nil {
		t.Errorf("position = %v,%v, want cleared", got.PositionX, got.PositionY)
	}
}

func testUpdatePositionMissing(t *testing.T, s cardstore.Store) {
	if _, err := s.UpdatePosition(context.Background(), "ghost", ptr(1), ptr(1)); !errors.Is(err, cardstore.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func testDelete(t *testing.T, s cardstore.Store) {
	ctx := context.Background()
	if _, err := s.CreateCard(ctx, cardstore.Card{ID: "d", BoardID: "demo", Title: "d"}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteCard(ctx, "d"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetCard(ctx, "d"); !errors.Is(err, cardstore.ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteCard(ctx, "d"); !errors.Is(err, cardstore.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}
