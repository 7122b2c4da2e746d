package mongo

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/noticeboard/pkg/cardstore"
	"github.com/matzehuels/noticeboard/pkg/cardstore/cardstoretest"
)

func TestOpenValidatesOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing uri", Options{Database: "db"}},
		{"missing database", Options{URI: "mongodb://localhost:27017"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(context.Background(), tt.opts); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// TestStore runs against a live server when NOTICEBOARD_TEST_MONGO_URI is set.
func TestStore(t *testing.T) {
	uri := os.Getenv("NOTICEBOARD_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("NOTICEBOARD_TEST_MONGO_URI not set")
	}

	cardstoretest.Run(t, func(t *testing.T) cardstore.Store {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		coll := "cards_" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
		store, err := Open(ctx, Options{URI: uri, Database: "noticeboard_test", Collection: coll})
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		if err := store.Drop(ctx); err != nil {
			t.Fatalf("drop collection: %v", err)
		}
		return store
	})
}
