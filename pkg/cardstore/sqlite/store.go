// Package sqlite provides a SQLite-backed card store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/matzehuels/noticeboard/internal/storage/sqlitemigrate"
	"github.com/matzehuels/noticeboard/pkg/cardstore"
	"github.com/matzehuels/noticeboard/pkg/cardstore/sqlite/migrations"
)

// Store persists cards in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite card store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

const cardColumns = `id, board_id, owner_id, title, category, date, position_x, position_y, rotation, created_at, updated_at`

// CreateCard implements [cardstore.Store].
func (s *Store) CreateCard(ctx context.Context, c cardstore.Card) (cardstore.Card, error) {
	if err := ctx.Err(); err != nil {
		return cardstore.Card{}, err
	}
	c = cardstore.Prepare(c, s.now())
	if strings.TrimSpace(c.BoardID) == "" {
		return cardstore.Card{}, fmt.Errorf("board id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO cards (`+cardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.BoardID,
		c.OwnerID,
		c.Title,
		c.Category,
		c.Date,
		nullFloat(c.PositionX),
		nullFloat(c.PositionY),
		nullFloat(c.Rotation),
		toMillis(c.CreatedAt),
		toMillis(c.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return cardstore.Card{}, cardstore.ErrAlreadyExists
		}
		return cardstore.Card{}, fmt.Errorf("create card: %w", err)
	}
	return c, nil
}

// GetCard implements [cardstore.Store].
func (s *Store) GetCard(ctx context.Context, id string) (cardstore.Card, error) {
	if err := ctx.Err(); err != nil {
		return cardstore.Card{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cardstore.Card{}, cardstore.ErrNotFound
		}
		return cardstore.Card{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

// ListCards implements [cardstore.Store].
func (s *Store) ListCards(ctx context.Context, boardID string) ([]cardstore.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE board_id = ? ORDER BY created_at, id`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []cardstore.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// UpdatePosition implements [cardstore.Store].
func (s *Store) UpdatePosition(ctx context.Context, id string, x, y *float64) (cardstore.Card, error) {
	if err := ctx.Err(); err != nil {
		return cardstore.Card{}, err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE cards SET position_x = ?, position_y = ?, updated_at = ? WHERE id = ?`,
		nullFloat(cardstore.Coordinate(x)),
		nullFloat(cardstore.Coordinate(y)),
		toMillis(s.now()),
		id,
	)
	if err != nil {
		return cardstore.Card{}, fmt.Errorf("update position: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return cardstore.Card{}, cardstore.ErrNotFound
	}
	return s.GetCard(ctx, id)
}

// DeleteCard implements [cardstore.Store].
func (s *Store) DeleteCard(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return cardstore.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (cardstore.Card, error) {
	var (
		c                   cardstore.Card
		x, y, rot           sql.NullFloat64
		createdAt, updateAt int64
	)
	if err := row.Scan(&c.ID, &c.BoardID, &c.OwnerID, &c.Title, &c.Category, &c.Date, &x, &y, &rot, &createdAt, &updateAt); err != nil {
		return cardstore.Card{}, err
	}
	c.PositionX = fromNull(x)
	c.PositionY = fromNull(y)
	c.Rotation = fromNull(rot)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updateAt)
	return c, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") && strings.Contains(message, "cards.id")
}
