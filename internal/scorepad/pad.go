// Package scorepad turns the raw per-variant input of the game screens into
// validated engine intents.
package scorepad

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
	"github.com/scoremaster/scoremaster-desktop/internal/scoring"
	"github.com/scoremaster/scoremaster-desktop/internal/session"
)

var (
	ErrUnknownVariant = errors.New("scorepad: unknown variant")
	ErrPlayerCount    = errors.New("scorepad: player count not allowed for variant")
	ErrGameNotFound   = errors.New("scorepad: no active game with that id")
	ErrRoundNotFound  = errors.New("scorepad: round index out of range")
	ErrNoWinner       = errors.New("scorepad: winner could not be determined")
	ErrRejected       = errors.New("scorepad: change rejected")
)

// Pad is the action surface shared by the desktop bindings and the loopback
// API. Every method returns the snapshot after the action.
type Pad struct {
	engine *session.Engine
}

// New wraps an engine.
func New(e *session.Engine) *Pad {
	return &Pad{engine: e}
}

// Engine exposes the wrapped engine for read-only views.
func (p *Pad) Engine() *session.Engine { return p.engine }

// State returns the current snapshot.
func (p *Pad) State() model.GameState { return p.engine.Snapshot() }

// DefaultNames returns the names offered by the setup screen. Four-player
// canasta is played in two teams.
func DefaultNames(v model.Variant, count int) []string {
	if v == model.Canasta && count == 4 {
		return []string{"Nosotros", "Ellos"}
	}
	names := make([]string, count)
	for i := range names {
		names[i] = "Jugador " + strconv.Itoa(i+1)
	}
	return names
}

// NewGame validates the setup and starts a game. Blank names are replaced by
// the defaults of their seat.
func (p *Pad) NewGame(v model.Variant, names []string) (model.Game, error) {
	policy, ok := scoring.For(v)
	if !ok {
		return model.Game{}, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
	if !allowed(policy.Spec().PlayerCounts, len(names)) {
		return model.Game{}, fmt.Errorf("%w: %d players for %s", ErrPlayerCount, len(names), v)
	}

	seats := len(names)
	if v == model.Canasta && seats == 4 {
		seats = 2
	}
	defaults := DefaultNames(v, len(names))
	final := make([]string, seats)
	for i := range final {
		final[i] = defaults[i]
		if i < len(names) {
			if n := strings.TrimSpace(names[i]); n != "" {
				final[i] = n
			}
		}
	}

	s := p.engine.Dispatch(session.CreateGame{Variant: v, PlayerNames: final})
	if s.CurrentGameID == nil {
		return model.Game{}, ErrRejected
	}
	return s.ActiveGames[*s.CurrentGameID], nil
}

// Step moves a truco player one point up or down.
func (p *Pad) Step(gameID, playerID string, up bool) (model.GameState, error) {
	return p.update(gameID, func(g model.Game, policy scoring.Policy) (session.Intent, error) {
		impact, err := policy.RoundImpact(g.Players, scoring.StepInput{PlayerID: playerID, Up: up})
		if err != nil {
			return nil, err
		}
		return session.UpdateScore{
			GameID:   gameID,
			PlayerID: playerID,
			Amount:   impact.Scores[playerID],
		}, nil
	})
}

// FillCategory writes one generala row and records it as a round.
func (p *Pad) FillCategory(gameID string, in scoring.CategoryInput) (model.GameState, error) {
	return p.update(gameID, func(g model.Game, policy scoring.Policy) (session.Intent, error) {
		impact, err := policy.RoundImpact(g.Players, in)
		if err != nil {
			return nil, err
		}
		round := impact.Round(0)
		return session.UpdateScore{
			GameID:    gameID,
			PlayerID:  in.PlayerID,
			Amount:    impact.Scores[in.PlayerID],
			RoundData: &round,
		}, nil
	})
}

// AddFreeFormRound records a canasta hand.
func (p *Pad) AddFreeFormRound(gameID string, points map[string]int) (model.GameState, error) {
	return p.addRound(gameID, scoring.FreeFormInput{Points: points})
}

// AddBonusRound records an escoba hand.
func (p *Pad) AddBonusRound(gameID string, hands map[string]model.BonusHand) (model.GameState, error) {
	return p.addRound(gameID, scoring.BonusInput{Hands: hands})
}

// AddCountdownRound validates and records a mosca round.
func (p *Pad) AddCountdownRound(gameID string, hands map[string]model.CountdownHand) (model.GameState, error) {
	return p.addRound(gameID, scoring.CountdownInput{Hands: hands})
}

func (p *Pad) addRound(gameID string, in scoring.Input) (model.GameState, error) {
	return p.update(gameID, func(g model.Game, policy scoring.Policy) (session.Intent, error) {
		if ci, ok := in.(scoring.CountdownInput); ok {
			if err := scoring.ValidateCountdown(g.Players, ci); err != nil {
				return nil, err
			}
		}
		impact, err := policy.RoundImpact(g.Players, in)
		if err != nil {
			return nil, err
		}
		return session.AddRound{
			GameID:  gameID,
			Scores:  impact.Scores,
			Details: impact.Details,
		}, nil
	})
}

// AdjustScore applies a manual correction without recording a round.
// Category-fill variants only change through filled rows.
func (p *Pad) AdjustScore(gameID, playerID string, amount int) (model.GameState, error) {
	return p.update(gameID, func(g model.Game, policy scoring.Policy) (session.Intent, error) {
		if policy.Spec().CategoryFill {
			return nil, fmt.Errorf("%w: %s scores only change by filling a category", scoring.ErrInputMismatch, g.Type)
		}
		if g.PlayerIndex(playerID) < 0 {
			return nil, scoring.ErrUnknownPlayer
		}
		return session.UpdateScore{GameID: gameID, PlayerID: playerID, Amount: amount}, nil
	})
}

// UndoRound removes a recorded round. A negative index removes the last one.
func (p *Pad) UndoRound(gameID string, index int) (model.GameState, error) {
	return p.update(gameID, func(g model.Game, _ scoring.Policy) (session.Intent, error) {
		i := index
		if i < 0 {
			i = len(g.Rounds) - 1
		}
		if i < 0 || i >= len(g.Rounds) {
			return nil, ErrRoundNotFound
		}
		return session.RemoveRound{GameID: gameID, RoundIndex: i}, nil
	})
}

// Finish closes a game. Without an explicit winner the player satisfying
// the variant's win test is used, falling back to the current leader.
func (p *Pad) Finish(gameID, winnerID string) (model.GameState, error) {
	return p.update(gameID, func(g model.Game, policy scoring.Policy) (session.Intent, error) {
		id := winnerID
		if id == "" {
			w, ok := pickWinner(g, policy)
			if !ok {
				return nil, ErrNoWinner
			}
			id = w.ID
		} else if g.PlayerIndex(id) < 0 {
			return nil, scoring.ErrUnknownPlayer
		}
		return session.FinishGame{GameID: gameID, WinnerID: id}, nil
	})
}

// Abandon discards an active game.
func (p *Pad) Abandon(gameID string) (model.GameState, error) {
	return p.update(gameID, func(model.Game, scoring.Policy) (session.Intent, error) {
		return session.DeleteGame{GameID: gameID}, nil
	})
}

// Open makes an active game current. An empty id clears the selection.
func (p *Pad) Open(gameID string) (model.GameState, error) {
	if gameID == "" {
		return p.engine.Dispatch(session.SetCurrentGame{}), nil
	}
	return p.update(gameID, func(model.Game, scoring.Policy) (session.Intent, error) {
		id := gameID
		return session.SetCurrentGame{GameID: &id}, nil
	})
}

// Resume makes the most recently updated active game of a variant current.
func (p *Pad) Resume(v model.Variant) (model.Game, bool) {
	var id string
	s, err := p.engine.Update(func(s model.GameState) (session.Intent, error) {
		if cur, ok := s.Current(); ok && cur.Type == v {
			id = cur.ID
			return session.SetCurrentGame{GameID: &id}, nil
		}
		var (
			best  model.Game
			found bool
		)
		for _, g := range s.ActiveGames {
			if g.Type != v {
				continue
			}
			if !found || g.LastUpdated > best.LastUpdated ||
				(g.LastUpdated == best.LastUpdated && g.ID < best.ID) {
				best, found = g, true
			}
		}
		if !found {
			return nil, ErrGameNotFound
		}
		id = best.ID
		return session.SetCurrentGame{GameID: &id}, nil
	})
	if err != nil {
		return model.Game{}, false
	}
	return s.ActiveGames[id], true
}

// DeleteHistoryEntry removes one finished game.
func (p *Pad) DeleteHistoryEntry(gameID string) (model.GameState, error) {
	return p.engine.Update(func(s model.GameState) (session.Intent, error) {
		if s.FindFinished(gameID) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
		}
		return session.DeleteFinishedGame{GameID: gameID}, nil
	})
}

// ClearHistory empties the history.
func (p *Pad) ClearHistory() model.GameState {
	return p.engine.Dispatch(session.ClearHistory{})
}

// Load replaces the whole state, typically with a persisted snapshot.
func (p *Pad) Load(s model.GameState) model.GameState {
	return p.engine.Dispatch(session.LoadSnapshot{State: s})
}

// ActiveGames lists active games, most recently updated first.
func (p *Pad) ActiveGames() []model.Game {
	s := p.engine.Snapshot()
	games := make([]model.Game, 0, len(s.ActiveGames))
	for _, g := range s.ActiveGames {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].LastUpdated != games[j].LastUpdated {
			return games[i].LastUpdated > games[j].LastUpdated
		}
		return games[i].ID < games[j].ID
	})
	return games
}

// update validates an action against the active game and applies the
// resulting intent while the engine stays locked.
func (p *Pad) update(gameID string, build func(model.Game, scoring.Policy) (session.Intent, error)) (model.GameState, error) {
	return p.engine.Update(func(s model.GameState) (session.Intent, error) {
		g, ok := s.ActiveGames[gameID]
		if !ok || !g.Active() {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
		}
		policy, ok := scoring.For(g.Type)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, g.Type)
		}
		return build(g.Clone(), policy)
	})
}

func pickWinner(g model.Game, policy scoring.Policy) (model.Player, bool) {
	if w, ok := scoring.Winner(g); ok {
		return w, true
	}
	if g.Type == model.Generala {
		return scoring.Leader(g.Players)
	}
	if len(g.Players) == 0 {
		return model.Player{}, false
	}
	desc := policy.Spec().Descending
	best := g.Players[0]
	for _, pl := range g.Players[1:] {
		if (desc && pl.Score < best.Score) || (!desc && pl.Score > best.Score) {
			best = pl
		}
	}
	return best, true
}

func allowed(counts []int, n int) bool {
	for _, c := range counts {
		if c == n {
			return true
		}
	}
	return false
}
