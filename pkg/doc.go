// Package pkg provides the core libraries for the noticeboard.
//
// # Overview
//
// A noticeboard shows event cards the way a cork board does: scattered with
// a slight tilt, as a vertical list, or in a tidy grid. Users may pin their
// own cards anywhere, and the pinned position is remembered. The pkg
// directory is organized into these areas:
//
//  1. [layout] - Pure placement strategies (scatter, list, grid) and overlap math
//  2. [board] - The orchestrator: triggers, snapshots, drag commits
//  3. [cardstore] - Card persistence (memory, SQLite, MongoDB)
//  4. [pipeline] - Orchestration (prepare → layout → render) with caching
//  5. [render] - SVG and PNG output
//
// # Architecture
//
// The typical data flow:
//
//	cardstore (cards + durable positions)
//	         ↓
//	    [board] package (view mode, canvas, active card)
//	         ↓
//	    [layout] package (one placement per card)
//	         ↓
//	    [render] package / JSON snapshot
//
// Dragging runs the other way: the board converts a pixel delta into a
// clamped percentage, hands it to a [board.Updater] (usually
// [cardstore.Updater]), and re-runs the pass once the store confirms.
//
// # Quick Start
//
//	b := board.New(board.WithCanvas(layout.Canvas{Width: 1280, Height: 720}))
//	b.SetCards(cards)
//	svg := render.RenderSVG(b.Snapshot(), b.Cards())
//
// # Supporting Packages
//
// [cache] - Content-addressed cache for layouts and artifacts (file, Redis).
//
// [errors] - Coded errors shared by the CLI, the terminal board and the API.
//
// [observability] - Hook registry for layout, drag, cache and HTTP events.
//
// [buildinfo] - Version information stamped at build time.
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/board
//	NOTICEBOARD_TEST_MONGO_URI=mongodb://localhost:27017 go test ./pkg/cardstore/mongo
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/noticeboard/pkg/layout
// [board]: https://pkg.go.dev/github.com/matzehuels/noticeboard/pkg/board
// [cardstore]: https://pkg.go.dev/github.com/matzehuels/noticeboard/pkg/cardstore
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/noticeboard/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/noticeboard/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/noticeboard/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/noticeboard/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/noticeboard/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/noticeboard/pkg/buildinfo
package pkg
