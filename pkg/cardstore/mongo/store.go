// Package mongo provides a MongoDB-backed card store. Each card is one
// document keyed by its ID.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/noticeboard/pkg/cardstore"
)

// DefaultCollection is the collection used when Options.Collection is empty.
const DefaultCollection = "cards"

// Options configures the connection.
type Options struct {
	URI        string
	Database   string
	Collection string
}

// Store persists cards in a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// Open connects to MongoDB, verifies the connection and ensures indexes.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.URI) == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if strings.TrimSpace(opts.Database) == "" {
		return nil, fmt.Errorf("mongo database is required")
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "board_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Store{client: client, coll: coll, now: time.Now}, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// CreateCard implements [cardstore.Store].
func (s *Store) CreateCard(ctx context.Context, c cardstore.Card) (cardstore.Card, error) {
	// Mongo stores milliseconds; truncate so the returned card matches a read.
	c = cardstore.Prepare(c, s.now().Truncate(time.Millisecond))
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return cardstore.Card{}, cardstore.ErrAlreadyExists
		}
		return cardstore.Card{}, fmt.Errorf("create card: %w", err)
	}
	return c, nil
}

// GetCard implements [cardstore.Store].
func (s *Store) GetCard(ctx context.Context, id string) (cardstore.Card, error) {
	var c cardstore.Card
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cardstore.Card{}, cardstore.ErrNotFound
		}
		return cardstore.Card{}, fmt.Errorf("get card: %w", err)
	}
	return normalize(c), nil
}

// ListCards implements [cardstore.Store].
func (s *Store) ListCards(ctx context.Context, boardID string) ([]cardstore.Card, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"board_id": boardID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	var cards []cardstore.Card
	if err := cur.All(ctx, &cards); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	for i := range cards {
		cards[i] = normalize(cards[i])
	}
	return cards, nil
}

// UpdatePosition implements [cardstore.Store].
func (s *Store) UpdatePosition(ctx context.Context, id string, x, y *float64) (cardstore.Card, error) {
	update := bson.M{"$set": bson.M{
		"position_x": cardstore.Coordinate(x),
		"position_y": cardstore.Coordinate(y),
		"updated_at": s.now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c cardstore.Card
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cardstore.Card{}, cardstore.ErrNotFound
		}
		return cardstore.Card{}, fmt.Errorf("update position: %w", err)
	}
	return normalize(c), nil
}

// DeleteCard implements [cardstore.Store].
func (s *Store) DeleteCard(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if res.DeletedCount == 0 {
		return cardstore.ErrNotFound
	}
	return nil
}

// Drop removes the collection. Tests use it to clean up.
func (s *Store) Drop(ctx context.Context) error {
	return s.coll.Drop(ctx)
}

// normalize converts decoded times to UTC, which the driver decodes as local.
func normalize(c cardstore.Card) cardstore.Card {
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c
}
