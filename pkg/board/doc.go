// Package board orchestrates noticeboard layout passes and drag commits.
//
// # Overview
//
// A [Board] holds the visible cards, the view mode and the canvas metrics,
// and re-runs the layout engine from [github.com/matzehuels/noticeboard/pkg/layout]
// whenever one of them changes. The result of the previous pass is kept on
// the Board and compared with each new pass by [Merge], so hosts are only
// notified when positions actually moved.
//
// # Durable Positions
//
// A card with a persisted position ([Card.Pinned]) renders exactly where a
// user dropped it, across resizes and rerenders, until it is dragged again.
// Every other card is placed afresh on each pass.
//
// # Drag Commits
//
// When a drag ends the host calls [Board.EndDrag] with the pixel delta. The
// drop point is converted to canvas percentages by [DropPosition] and sent to
// the [Updater] collaborator in the background. The outcome is reported to
// the [Notifier]; the position only becomes durable once the Updater
// returns the stored card. [Board.CommitDrag] is the synchronous form.
//
// # Concurrency
//
// A Board is safe for concurrent use. State changes hold the Board's mutex;
// persistence writes run outside it and can be joined with [Board.Wait].
package board
