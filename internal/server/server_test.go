package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/cardstore"
	"github.com/matzehuels/noticeboard/pkg/cardstore/memory"
	"github.com/matzehuels/noticeboard/pkg/errors"
	"github.com/matzehuels/noticeboard/pkg/observability"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	base := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	for i, c := range []cardstore.Card{
		{ID: "a", OwnerID: "alice", Title: "Open mic"},
		{ID: "b", OwnerID: "bob", Title: "Book swap"},
		{ID: "c", OwnerID: "alice", Title: "Choir"},
	} {
		c.BoardID = "demo"
		c.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if _, err := store.CreateCard(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	return New(store, nil, Options{}), store
}

func do(t *testing.T, s *Server, method, target, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if actor != "" {
		req.Header.Set(ActorHeader, actor)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) errors.Code {
	t.Helper()
	var body struct {
		Error errorBody `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListCardsMarksMovable(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/boards/demo/cards", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var body struct {
		Cards []board.Card `json:"cards"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Cards) != 3 {
		t.Fatalf("cards = %d, want 3", len(body.Cards))
	}
	for _, c := range body.Cards {
		if c.Movable != (c.ID != "b") {
			t.Errorf("card %s movable = %v", c.ID, c.Movable)
		}
	}
}

func TestLayoutJSON(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/boards/demo/layout?width=1000&height=800", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var resp layoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Positions) != 3 || len(resp.Placements) != 3 {
		t.Fatalf("positions = %d placements = %d, want 3", len(resp.Positions), len(resp.Placements))
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/boards/demo/layout?width=1000&height=800", nil)
	req.Header.Set("If-None-Match", etag)
	again := httptest.NewRecorder()
	s.Handler().ServeHTTP(again, req)
	if again.Code != http.StatusNotModified {
		t.Errorf("conditional request status = %d, want 304", again.Code)
	}
}

func TestLayoutListView(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/boards/demo/layout?view=list", "", nil)
	var resp layoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	for i, p := range resp.Positions {
		if p.Rotate != 0 || p.Left != 5 {
			t.Errorf("position %d = %+v, want left 5 and no rotation", i, p)
		}
	}
}

func TestLayoutBadRequests(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		target string
		code   errors.Code
	}{
		{"/boards/demo/layout?view=spiral", errors.ErrCodeInvalidViewMode},
		{"/boards/demo/layout?width=abc", errors.ErrCodeInvalidCanvas},
		{"/boards/demo/layout?width=-5", errors.ErrCodeInvalidCanvas},
		{"/boards/demo/layout?narrow=maybe", errors.ErrCodeInvalidInput},
		{"/boards/demo/layout?seed=-1", errors.ErrCodeInvalidInput},
		{"/boards/a..b/layout", errors.ErrCodeInvalidBoardID},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.target, "", nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := errorCode(t, rec); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestLayoutSVG(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/boards/demo/layout.svg", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Open mic") {
		t.Error("svg missing card title")
	}
}

func TestCreateCard(t *testing.T) {
	s, store := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/boards/demo/cards", "carol", map[string]string{"title": "Poetry"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var c board.Card
	if err := json.NewDecoder(rec.Body).Decode(&c); err != nil {
		t.Fatal(err)
	}
	if c.ID == "" || !c.Movable {
		t.Errorf("created card = %+v", c)
	}
	stored, err := store.GetCard(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.OwnerID != "carol" || stored.BoardID != "demo" {
		t.Errorf("stored = %+v", stored)
	}

	if rec := do(t, s, http.MethodPost, "/boards/demo/cards", "", map[string]string{"title": "x"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create status = %d, want 401", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/boards/demo/cards", "carol", map[string]string{"title": " "}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty title status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/boards/demo/cards", "carol", map[string]string{"id": "a", "title": "dup"}); rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}
}

func TestUpdatePosition(t *testing.T) {
	s, store := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/boards/demo/cards/a/position", "alice", map[string]float64{"position_x": 30, "position_y": 60})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	c, _ := store.GetCard(context.Background(), "a")
	if c.PositionX == nil || *c.PositionX != 30 || *c.PositionY != 60 {
		t.Errorf("stored position = %v,%v", c.PositionX, c.PositionY)
	}

	rec = do(t, s, http.MethodPut, "/boards/demo/cards/a/position", "alice", map[string]any{"position_x": nil, "position_y": nil})
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	c, _ = store.GetCard(context.Background(), "a")
	if c.PositionX != nil || c.PositionY != nil {
		t.Errorf("position should be cleared, got %v,%v", c.PositionX, c.PositionY)
	}

	// Omitted coordinates are left alone.
	do(t, s, http.MethodPut, "/boards/demo/cards/a/position", "alice", map[string]float64{"position_x": 30, "position_y": 60})
	rec = do(t, s, http.MethodPut, "/boards/demo/cards/a/position", "alice", map[string]float64{"position_x": 45})
	if rec.Code != http.StatusOK {
		t.Fatalf("partial status = %d body=%s", rec.Code, rec.Body)
	}
	c, _ = store.GetCard(context.Background(), "a")
	if c.PositionX == nil || c.PositionY == nil || *c.PositionX != 45 || *c.PositionY != 60 {
		t.Errorf("partial update position = %v,%v, want 45,60", c.PositionX, c.PositionY)
	}

	// An explicit null clears only its own coordinate.
	rec = do(t, s, http.MethodPut, "/boards/demo/cards/a/position", "alice", map[string]any{"position_y": nil})
	if rec.Code != http.StatusOK {
		t.Fatalf("null y status = %d", rec.Code)
	}
	c, _ = store.GetCard(context.Background(), "a")
	if c.PositionX == nil || *c.PositionX != 45 || c.PositionY != nil {
		t.Errorf("after null y position = %v,%v, want 45,<nil>", c.PositionX, c.PositionY)
	}

	if rec := do(t, s, http.MethodPut, "/boards/demo/cards/a/position", "alice", map[string]string{"position_x": "left"}); rec.Code != http.StatusBadRequest {
		t.Errorf("string coordinate status = %d, want 400", rec.Code)
	} else if got := errorCode(t, rec); got != errors.ErrCodeInvalidPosition {
		t.Errorf("string coordinate code = %s, want %s", got, errors.ErrCodeInvalidPosition)
	}

	tests := []struct {
		name   string
		path   string
		actor  string
		body   any
		status int
		code   errors.Code
	}{
		{"not owner", "/boards/demo/cards/b/position", "alice", map[string]float64{"position_x": 1, "position_y": 1}, http.StatusForbidden, errors.ErrCodeForbidden},
		{"anonymous", "/boards/demo/cards/a/position", "", map[string]float64{"position_x": 1, "position_y": 1}, http.StatusUnauthorized, errors.ErrCodeUnauthorized},
		{"missing", "/boards/demo/cards/zzz/position", "alice", map[string]float64{"position_x": 1, "position_y": 1}, http.StatusNotFound, errors.ErrCodeCardNotFound},
		{"other board", "/boards/elsewhere/cards/a/position", "alice", map[string]float64{"position_x": 1, "position_y": 1}, http.StatusNotFound, errors.ErrCodeCardNotFound},
		{"out of range", "/boards/demo/cards/a/position", "alice", map[string]float64{"position_x": 101, "position_y": 1}, http.StatusBadRequest, errors.ErrCodeInvalidPosition},
		{"unknown field", "/boards/demo/cards/a/position", "alice", map[string]float64{"x": 1}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPut, tt.path, tt.actor, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tt.status, rec.Body)
			}
			if got := errorCode(t, rec); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestDrag(t *testing.T) {
	s, store := newTestServer(t)

	layoutRec := do(t, s, http.MethodGet, "/boards/demo/layout?width=1000&height=800", "alice", nil)
	var before layoutResponse
	if err := json.Unmarshal(layoutRec.Body.Bytes(), &before); err != nil {
		t.Fatal(err)
	}
	start, ok := before.Placement("a")
	if !ok {
		t.Fatal("card a not placed")
	}

	rec := do(t, s, http.MethodPost, "/boards/demo/cards/a/drag?width=1000&height=800", "alice",
		map[string]float64{"dx": 50, "dy": 40})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}

	c, _ := store.GetCard(context.Background(), "a")
	wantX := min(85, max(0, start.Position.Left+5))
	wantY := min(75, max(0, start.Position.Top+5))
	if c.PositionX == nil || fmt.Sprintf("%.6f", *c.PositionX) != fmt.Sprintf("%.6f", wantX) {
		t.Errorf("stored x = %v, want %v", c.PositionX, wantX)
	}
	if c.PositionY == nil || fmt.Sprintf("%.6f", *c.PositionY) != fmt.Sprintf("%.6f", wantY) {
		t.Errorf("stored y = %v, want %v", c.PositionY, wantY)
	}

	after := do(t, s, http.MethodGet, "/boards/demo/layout?width=1000&height=800", "alice", nil)
	var resp layoutResponse
	if err := json.Unmarshal(after.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if p, _ := resp.Placement("a"); !p.Durable {
		t.Error("dragged card should be durable in the next layout")
	}
}

func TestDragRejected(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		name   string
		path   string
		actor  string
		status int
		code   errors.Code
	}{
		{"not movable", "/boards/demo/cards/b/drag", "alice", http.StatusConflict, errors.ErrCodeNotDraggable},
		{"list view", "/boards/demo/cards/a/drag?view=list", "alice", http.StatusConflict, errors.ErrCodeNotDraggable},
		{"unknown card", "/boards/demo/cards/zzz/drag", "alice", http.StatusNotFound, errors.ErrCodeCardNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.actor, map[string]float64{"dx": 1, "dy": 1})
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tt.status, rec.Body)
			}
			if got := errorCode(t, rec); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestDeleteCard(t *testing.T) {
	s, store := newTestServer(t)
	if rec := do(t, s, http.MethodDelete, "/boards/demo/cards/b", "alice", nil); rec.Code != http.StatusForbidden {
		t.Errorf("non-owner delete status = %d, want 403", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/boards/demo/cards/b", "bob", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete status = %d, want 204", rec.Code)
	}
	if _, err := store.GetCard(context.Background(), "b"); err == nil {
		t.Error("card should be gone")
	}
}

func TestConcurrentLayoutRequests(t *testing.T) {
	s, _ := newTestServer(t)
	var wg sync.WaitGroup
	bodies := make([]string, 8)
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/boards/demo/layout", nil)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			bodies[i] = rec.Body.String()
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Fatal("concurrent identical requests returned different layouts")
		}
	}
}

type ctxCacheHooks struct {
	observability.NoopCacheHooks
	mu   sync.Mutex
	errs []error
}

func (h *ctxCacheHooks) OnCacheMiss(ctx context.Context, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, ctx.Err())
}

func TestComputeLayoutDetachedFromCaller(t *testing.T) {
	t.Cleanup(observability.Reset)
	hooks := &ctxCacheHooks{}
	observability.SetCacheHooks(hooks)

	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/boards/demo/layout", nil).WithContext(ctx)

	opts, err := s.pipelineOptions(req)
	if err != nil {
		t.Fatalf("pipelineOptions() error: %v", err)
	}
	cards := []board.Card{{ID: "a", Title: "Open mic"}, {ID: "b", Title: "Book swap"}}
	snap, err := s.computeLayout(req, cards, opts)
	if err != nil {
		t.Fatalf("computeLayout() error: %v", err)
	}
	if len(snap.Placements) != 2 {
		t.Errorf("placements = %d, want 2", len(snap.Placements))
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.errs) != 1 || hooks.errs[0] != nil {
		t.Errorf("shared pass context errors = %v, want one uncancelled pass", hooks.errs)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, fmt.Sprintf("%s %s %d", method, route, status))
}

func TestObserveReportsRoutePattern(t *testing.T) {
	t.Cleanup(observability.Reset)
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)

	s, _ := newTestServer(t)
	do(t, s, http.MethodGet, "/boards/demo/cards", "", nil)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 1 || hooks.routes[0] != "GET /boards/{board}/cards 200" {
		t.Errorf("routes = %v", hooks.routes)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{errors.New(errors.ErrCodeInvalidCanvas, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeForbidden, "x"), http.StatusForbidden},
		{errors.New(errors.ErrCodePersistence, "x"), http.StatusBadGateway},
		{cardstore.ErrNotFound, http.StatusNotFound},
		{cardstore.ErrAlreadyExists, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
