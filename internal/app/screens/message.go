package screens

import (
	"context"
	"image"

	"github.com/rook-computer/snapscreen/internal/render"
	"github.com/rook-computer/snapscreen/internal/render/layout"
	"github.com/rook-computer/snapscreen/internal/state"
)

// MessageScreen shows a single centred message with an optional detail line.
type MessageScreen struct {
	Text   string
	Detail string
}

func (MessageScreen) Start(ctx context.Context) error { return nil }
func (MessageScreen) Stop() error                     { return nil }

func (m MessageScreen) Draw(r render.Drawer, st state.State) {
	r.FillBackground()
	if m.Detail == "" {
		r.DrawTextCentered(m.Text)
		return
	}
	w, h := r.Size()
	top, bottom := layout.SplitFraction(image.Rect(0, 0, w, h), 0.55)
	r.DrawTextInRect(m.Text, top, render.TextStyle{Size: 48})
	detail, _ := layout.SplitHorizontal(bottom, 80)
	r.DrawTextInRect(m.Detail, detail, render.TextStyle{Size: 24, Color: render.ErrorText})
}
