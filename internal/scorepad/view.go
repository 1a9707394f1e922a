package scorepad

import (
	"fmt"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
	"github.com/scoremaster/scoremaster-desktop/internal/scoring"
)

// GameView is a game plus the values derived from its scores.
type GameView struct {
	Game        model.Game     `json:"game"`
	Winner      *model.Player  `json:"winner,omitempty"`
	MinimumMeld map[string]int `json:"minimumMeld,omitempty"`
}

// NewView derives the view of g. Winner is only set for active games.
func NewView(g model.Game) GameView {
	v := GameView{Game: g}
	if w, ok := scoring.Winner(g); ok {
		v.Winner = &w
	}
	policy, ok := scoring.For(g.Type)
	if !ok {
		return v
	}
	for _, pl := range g.Players {
		d, ok := policy.Display(pl.Score)
		if !ok {
			break
		}
		if v.MinimumMeld == nil {
			v.MinimumMeld = make(map[string]int, len(g.Players))
		}
		v.MinimumMeld[pl.ID] = d.MinimumMeld
	}
	return v
}

// View returns the view of an active or finished game.
func (p *Pad) View(gameID string) (GameView, error) {
	g, ok := p.engine.Game(gameID)
	if !ok {
		return GameView{}, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return NewView(g), nil
}
