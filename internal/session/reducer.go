package session

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
	"github.com/scoremaster/scoremaster-desktop/internal/scoring"
)

// Reducer applies intents to game states. It never mutates the state it is
// given: touched games are deep-copied, untouched ones are shared with the
// previous snapshot.
type Reducer struct {
	Now   func() time.Time
	NewID func() string
}

// NewReducer returns a reducer using the wall clock and random UUIDs.
func NewReducer() Reducer {
	return Reducer{Now: time.Now, NewID: uuid.NewString}
}

// Apply returns the state that results from in. Intents referring to
// missing games, players or rounds leave the state unchanged.
func (r Reducer) Apply(s model.GameState, in Intent) model.GameState {
	next, _ := r.reduce(s, in)
	return next
}

// reduce reports whether the intent was accepted alongside the new state.
func (r Reducer) reduce(s model.GameState, in Intent) (model.GameState, bool) {
	switch in := in.(type) {
	case CreateGame:
		return r.createGame(s, in)
	case UpdateScore:
		return r.updateScore(s, in)
	case AddRound:
		return r.addRound(s, in)
	case RemoveRound:
		return r.removeRound(s, in)
	case FinishGame:
		return r.finishGame(s, in)
	case DeleteGame:
		if _, ok := s.ActiveGames[in.GameID]; !ok {
			return s, false
		}
		next := shallowCopy(s)
		delete(next.ActiveGames, in.GameID)
		clearCurrentIf(&next, in.GameID)
		return next, true
	case DeleteFinishedGame:
		idx := s.FindFinished(in.GameID)
		if idx < 0 {
			return s, false
		}
		next := shallowCopy(s)
		next.FinishedGames = append(next.FinishedGames[:idx:idx], s.FinishedGames[idx+1:]...)
		return next, true
	case ClearHistory:
		next := shallowCopy(s)
		next.FinishedGames = []model.Game{}
		return next, true
	case SetCurrentGame:
		next := shallowCopy(s)
		next.CurrentGameID = nil
		if in.GameID != nil {
			id := *in.GameID
			next.CurrentGameID = &id
		}
		return next, true
	case LoadSnapshot:
		return in.State.Normalize(), true
	}
	return s, false
}

func (r Reducer) createGame(s model.GameState, in CreateGame) (model.GameState, bool) {
	policy, ok := scoring.For(in.Variant)
	if !ok || len(in.PlayerNames) == 0 {
		return s, false
	}
	now := r.nowMillis()
	id := r.NewID()
	g := model.Game{
		ID:          id,
		Type:        in.Variant,
		Players:     make([]model.Player, len(in.PlayerNames)),
		Status:      model.StatusPlaying,
		CreatedAt:   now,
		LastUpdated: now,
		Rounds:      []model.Round{},
	}
	for i, name := range in.PlayerNames {
		g.Players[i] = model.Player{
			ID:      playerID(i),
			Name:    name,
			Score:   policy.InitialScore(),
			Details: policy.InitialDetails(),
		}
	}

	next := shallowCopy(s)
	next.ActiveGames[id] = g
	next.CurrentGameID = &id
	return next, true
}

func (r Reducer) updateScore(s model.GameState, in UpdateScore) (model.GameState, bool) {
	g, policy, ok := activeGame(s, in.GameID)
	if !ok {
		return s, false
	}
	idx := g.PlayerIndex(in.PlayerID)
	if idx < 0 {
		return s, false
	}

	g = g.Clone()
	var detail *model.RoundDetail
	if in.RoundData != nil {
		if d, ok := in.RoundData.Details[in.PlayerID]; ok {
			detail = &d
		}
	}
	p, accepted := policy.ApplyScore(g.Players[idx], in.Amount, detail)
	if !accepted {
		return s, false
	}
	g.Players[idx] = p

	now := r.nowMillis()
	if in.RoundData != nil {
		round := in.RoundData.Clone()
		if round.Scores == nil {
			round.Scores = map[string]int{}
		}
		if len(round.Details) == 0 {
			round.Details = nil
		}
		if round.Timestamp == 0 {
			round.Timestamp = now
		}
		g.Rounds = append(g.Rounds, round)
	}
	g.LastUpdated = now

	next := shallowCopy(s)
	next.ActiveGames[g.ID] = g
	return next, true
}

func (r Reducer) addRound(s model.GameState, in AddRound) (model.GameState, bool) {
	g, policy, ok := activeGame(s, in.GameID)
	if !ok {
		return s, false
	}

	g = g.Clone()
	round := model.Round{Scores: make(map[string]int, len(in.Scores)), Timestamp: r.nowMillis()}
	for id, delta := range in.Scores {
		round.Scores[id] = delta
	}
	if len(in.Details) > 0 {
		round.Details = make(map[string]model.RoundDetail, len(in.Details))
		for id, d := range in.Details {
			round.Details[id] = d.Clone()
		}
	}

	for i, p := range g.Players {
		p.Score = model.ClampScore(p.Score + round.Scores[p.ID])
		detail, ok := round.Details[p.ID]
		g.Players[i] = policy.MergeRound(p, detail.Clone(), ok)
	}
	g.Rounds = append(g.Rounds, round)
	g.LastUpdated = round.Timestamp

	next := shallowCopy(s)
	next.ActiveGames[g.ID] = g
	return next, true
}

func (r Reducer) removeRound(s model.GameState, in RemoveRound) (model.GameState, bool) {
	g, policy, ok := activeGame(s, in.GameID)
	if !ok || in.RoundIndex < 0 || in.RoundIndex >= len(g.Rounds) {
		return s, false
	}

	g = g.Clone()
	removed := g.Rounds[in.RoundIndex]
	var prev *model.Round
	if in.RoundIndex > 0 {
		prev = &g.Rounds[in.RoundIndex-1]
	}

	for i, p := range g.Players {
		p.Score = model.ClampScore(p.Score - removed.Scores[p.ID])
		detail, ok := removed.Details[p.ID]
		var prevDetail *model.RoundDetail
		if prev != nil {
			if d, found := prev.Details[p.ID]; found {
				prevDetail = &d
			}
		}
		g.Players[i] = policy.RevertRound(p, detail, ok, prevDetail)
	}
	g.Rounds = append(g.Rounds[:in.RoundIndex:in.RoundIndex], g.Rounds[in.RoundIndex+1:]...)
	g.LastUpdated = r.nowMillis()

	next := shallowCopy(s)
	next.ActiveGames[g.ID] = g
	return next, true
}

func (r Reducer) finishGame(s model.GameState, in FinishGame) (model.GameState, bool) {
	g, _, ok := activeGame(s, in.GameID)
	if !ok || g.PlayerIndex(in.WinnerID) < 0 {
		return s, false
	}

	g = g.Clone()
	g.Status = model.StatusFinished
	g.WinnerID = in.WinnerID
	g.LastUpdated = r.nowMillis()

	next := shallowCopy(s)
	delete(next.ActiveGames, g.ID)
	finished := make([]model.Game, 0, len(s.FinishedGames)+1)
	finished = append(finished, g)
	finished = append(finished, s.FinishedGames...)
	if len(finished) > model.HistoryLimit {
		finished = finished[:model.HistoryLimit]
	}
	next.FinishedGames = finished
	clearCurrentIf(&next, g.ID)
	return next, true
}

func (r Reducer) nowMillis() int64 {
	return r.Now().UnixMilli()
}

func activeGame(s model.GameState, id string) (model.Game, scoring.Policy, bool) {
	g, ok := s.ActiveGames[id]
	if !ok || !g.Active() {
		return model.Game{}, nil, false
	}
	policy, ok := scoring.For(g.Type)
	if !ok {
		return model.Game{}, nil, false
	}
	return g, policy, true
}

// shallowCopy copies the containers of s so that they can be modified
// without touching s. Games themselves are shared.
func shallowCopy(s model.GameState) model.GameState {
	next := model.GameState{
		ActiveGames:   make(map[string]model.Game, len(s.ActiveGames)+1),
		FinishedGames: make([]model.Game, len(s.FinishedGames)),
	}
	for id, g := range s.ActiveGames {
		next.ActiveGames[id] = g
	}
	copy(next.FinishedGames, s.FinishedGames)
	if s.CurrentGameID != nil {
		id := *s.CurrentGameID
		next.CurrentGameID = &id
	}
	return next
}

func clearCurrentIf(s *model.GameState, gameID string) {
	if s.CurrentGameID != nil && *s.CurrentGameID == gameID {
		s.CurrentGameID = nil
	}
}

func playerID(i int) string {
	return "p-" + strconv.Itoa(i)
}
