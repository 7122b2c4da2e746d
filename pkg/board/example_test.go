package board_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/layout"
)

func ExampleBoard_CommitDrag() {
	store := board.UpdaterFunc(func(_ context.Context, u board.PositionUpdate) (board.Card, error) {
		return board.Card{ID: u.ID, PositionX: board.Float(u.PositionX), PositionY: board.Float(u.PositionY)}, nil
	})
	b := board.New(board.WithUpdater(store), board.WithCanvas(layout.Canvas{Width: 1000, Height: 800}))
	b.SetCards([]board.Card{{ID: "fair", Movable: true, PositionX: board.Float(10), PositionY: board.Float(10)}})

	// Drag 320px right and 60px down.
	card, err := b.CommitDrag(context.Background(), board.DragEnd{CardID: "fair", Delta: layout.Point{X: 320, Y: 60}})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("x=%.1f y=%.1f\n", *card.PositionX, *card.PositionY)
	for _, r := range b.Positions() {
		fmt.Printf("%s left=%.1f top=%.1f\n", r.CardID, r.Left, r.Top)
	}
	// Output:
	// x=42.0 y=17.5
	// fair left=42.0 top=17.5
}
