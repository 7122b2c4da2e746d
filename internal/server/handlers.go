package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/cache"
	"github.com/matzehuels/noticeboard/pkg/cardstore"
	"github.com/matzehuels/noticeboard/pkg/errors"
	"github.com/matzehuels/noticeboard/pkg/layout"
	"github.com/matzehuels/noticeboard/pkg/pipeline"
)

// =============================================================================
// Request helpers
// =============================================================================

func actorOf(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(ActorHeader))
}

func boardOf(r *http.Request) string {
	return chi.URLParam(r, "board")
}

func (s *Server) requireBoard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := errors.ValidateBoardID(boardOf(r)); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// pipelineOptions reads view, width, height, narrow, seed, active and
// titles query parameters on top of the server defaults.
func (s *Server) pipelineOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	lo := s.opts.Layout
	opts := pipeline.Options{
		Mode:     s.opts.View.String(),
		Seed:     s.opts.Seed,
		Layout:   &lo,
		Active:   q.Get("active"),
		NoTitles: q.Get("titles") == "false",
		Logger:   s.logger,
	}
	if v := q.Get("view"); v != "" {
		opts.Mode = v
	}

	var err error
	if opts.Width, err = floatParam(q.Get("width"), pipeline.DefaultWidth); err != nil {
		return opts, err
	}
	if opts.Height, err = floatParam(q.Get("height"), pipeline.DefaultHeight); err != nil {
		return opts, err
	}
	if v := q.Get("narrow"); v != "" {
		narrow, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "narrow must be a boolean, got %q", v)
		}
		opts.Narrow = &narrow
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "seed must be an unsigned integer, got %q", v)
		}
		opts.Seed = seed
	}
	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}
	return opts, nil
}

func floatParam(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidCanvas, "canvas size must be a number, got %q", v)
	}
	return f, nil
}

func (s *Server) boardCards(r *http.Request) ([]board.Card, error) {
	cards, err := cardstore.BoardCards(r.Context(), s.store, boardOf(r), actorOf(r))
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	return pipeline.PrepareCards(cards)
}

// notModified sets the ETag and reports whether the client copy is current.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("ETag", etag)
	for _, tag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		if strings.TrimSpace(tag) == etag {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Cards
// =============================================================================

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := cardstore.BoardCards(r.Context(), s.store, boardOf(r), actorOf(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cards == nil {
		cards = []board.Card{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

type createCardRequest struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Date     string `json:"date,omitempty"`
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	actor := actorOf(r)
	if actor == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeUnauthorized, "sign in to add cards"))
		return
	}
	var req createCardRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "title is required"))
		return
	}
	if req.ID != "" {
		if err := errors.ValidateCardID(req.ID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	c, err := s.store.CreateCard(r.Context(), cardstore.Card{
		ID:       req.ID,
		BoardID:  boardOf(r),
		OwnerID:  actor,
		Title:    strings.TrimSpace(req.Title),
		Category: req.Category,
		Date:     req.Date,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("card created", "board", c.BoardID, "card", c.ID, "owner", actor)
	writeJSON(w, http.StatusCreated, c.ForActor(actor))
}

// ownedCard loads a card on the request's board and checks ownership.
func (s *Server) ownedCard(r *http.Request) (cardstore.Card, error) {
	id := chi.URLParam(r, "card")
	if err := errors.ValidateCardID(id); err != nil {
		return cardstore.Card{}, err
	}
	c, err := s.store.GetCard(r.Context(), id)
	if err != nil || c.BoardID != boardOf(r) {
		return cardstore.Card{}, errors.New(errors.ErrCodeCardNotFound, "card %s not found", id)
	}
	actor := actorOf(r)
	if actor == "" {
		return cardstore.Card{}, errors.New(errors.ErrCodeUnauthorized, "sign in to change cards")
	}
	if c.OwnerID != actor {
		return cardstore.Card{}, errors.New(errors.ErrCodeForbidden, "you do not have permission to change this card")
	}
	return c, nil
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	c, err := s.ownedCard(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.DeleteCard(r.Context(), c.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// positionRequest keeps the raw coordinates so an absent field can be told
// apart from an explicit null.
type positionRequest struct {
	PositionX json.RawMessage `json:"position_x"`
	PositionY json.RawMessage `json:"position_y"`
}

// coordinate resolves one field of a position update. An absent field keeps
// current, null clears it and a number must be a valid percentage.
func coordinate(name string, raw json.RawMessage, current *float64) (float64, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0:
		if current == nil {
			return math.NaN(), nil
		}
		return *current, nil
	case bytes.Equal(raw, []byte("null")):
		return math.NaN(), nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, errors.New(errors.ErrCodeInvalidPosition, "%s must be a number or null", name)
	}
	if err := errors.ValidatePercent(name, v); err != nil {
		return 0, err
	}
	return v, nil
}

// handleUpdatePosition stores a durable position directly. Null
// coordinates clear it; omitted ones are left as they are.
func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	c, err := s.ownedCard(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	x, err := coordinate("position_x", req.PositionX, c.PositionX)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	y, err := coordinate("position_y", req.PositionY, c.PositionY)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	u := cardstore.Updater{Store: s.store, Actor: actorOf(r)}
	card, err := u.UpdatePosition(r.Context(), board.PositionUpdate{ID: c.ID, PositionX: x, PositionY: y})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

type dragRequest struct {
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// handleDrag replays the board the client sees, applies the pointer delta
// to the dragged card and persists the drop position.
func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.pipelineOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Width != 0 || req.Height != 0 {
		opts.Width, opts.Height = req.Width, req.Height
	}
	canvas := layout.Canvas{Width: opts.Width, Height: opts.Height}
	if err := errors.ValidateCanvas(canvas.Width, canvas.Height); err != nil {
		s.writeError(w, r, err)
		return
	}
	cards, err := s.boardCards(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	b := board.New(
		board.WithOptions(*opts.Layout),
		board.WithSeed(opts.Seed),
		board.WithViewMode(opts.ViewMode()),
		board.WithCanvas(canvas),
		board.WithLogger(s.logger),
		board.WithUpdater(cardstore.Updater{Store: s.store, Actor: actorOf(r)}),
	)
	if opts.Narrow != nil {
		b.SetNarrow(*opts.Narrow)
	}
	b.SetCards(cards)

	card, err := b.CommitDrag(r.Context(), board.DragEnd{
		CardID: chi.URLParam(r, "card"),
		Delta:  layout.Point{X: req.DX, Y: req.DY},
		Canvas: canvas,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// =============================================================================
// Layout
// =============================================================================

type layoutResponse struct {
	board.Snapshot
	Positions []board.Rendered `json:"positions"`
}

// computeLayout runs or reuses a layout pass. Identical concurrent
// requests share one pass.
func (s *Server) computeLayout(r *http.Request, cards []board.Card, opts pipeline.Options) (board.Snapshot, error) {
	key := fmt.Sprintf("%s|%+v", cache.HashJSON(cards), opts.LayoutKeyOpts())
	// The shared pass outlives the caller that started it, so one client
	// disconnecting does not fail the others waiting on the same key.
	ctx := context.WithoutCancel(r.Context())
	v, err, _ := s.passes.Do(key, func() (any, error) {
		return s.runner.Layout(ctx, cards, opts)
	})
	if err != nil {
		return board.Snapshot{}, err
	}
	return v.(board.Snapshot), nil
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.pipelineOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cards, err := s.boardCards(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.computeLayout(r, cards, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := layoutResponse{Snapshot: snap, Positions: snap.Rendered(opts.Active)}
	if notModified(w, r, `"`+cache.HashJSON(resp)+`"`) {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleArtifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.pipelineOptions(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{format}
		cards, err := s.boardCards(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		snap, err := s.computeLayout(r, cards, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		artifacts, err := s.runner.Render(r.Context(), snap, cards, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		data := artifacts[format]
		if notModified(w, r, `"`+cache.Hash(data)+`"`) {
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
