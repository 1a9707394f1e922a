package model

// Empty returns the default state used on first launch.
func Empty() GameState {
	return GameState{
		ActiveGames:   map[string]Game{},
		FinishedGames: []Game{},
	}
}

// Clone returns a deep copy of the state.
func (s GameState) Clone() GameState {
	out := GameState{
		ActiveGames:   make(map[string]Game, len(s.ActiveGames)),
		FinishedGames: make([]Game, len(s.FinishedGames)),
	}
	for id, g := range s.ActiveGames {
		out.ActiveGames[id] = g.Clone()
	}
	for i, g := range s.FinishedGames {
		out.FinishedGames[i] = g.Clone()
	}
	if s.CurrentGameID != nil {
		id := *s.CurrentGameID
		out.CurrentGameID = &id
	}
	return out
}

// Current returns the game CurrentGameID points at, if it is active.
func (s GameState) Current() (Game, bool) {
	if s.CurrentGameID == nil {
		return Game{}, false
	}
	g, ok := s.ActiveGames[*s.CurrentGameID]
	return g, ok
}

// FindFinished returns the index of a finished game, or -1.
func (s GameState) FindFinished(gameID string) int {
	for i, g := range s.FinishedGames {
		if g.ID == gameID {
			return i
		}
	}
	return -1
}

// Normalize repairs a decoded snapshot so that it satisfies the state
// invariants: non-nil collections, a current game id that references an
// active game, finished games marked finished and at most HistoryLimit of them.
func (s GameState) Normalize() GameState {
	out := s.Clone()
	for id, g := range out.ActiveGames {
		if g.ID == "" {
			g.ID = id
		}
		if g.Status == "" {
			g.Status = StatusPlaying
		}
		if g.Rounds == nil {
			g.Rounds = []Round{}
		}
		out.ActiveGames[id] = g
	}
	for i := range out.FinishedGames {
		out.FinishedGames[i].Status = StatusFinished
		if out.FinishedGames[i].Rounds == nil {
			out.FinishedGames[i].Rounds = []Round{}
		}
	}
	if len(out.FinishedGames) > HistoryLimit {
		out.FinishedGames = out.FinishedGames[:HistoryLimit]
	}
	if out.CurrentGameID != nil {
		if _, ok := out.ActiveGames[*out.CurrentGameID]; !ok {
			out.CurrentGameID = nil
		}
	}
	return out
}

// Clone returns a deep copy of the game.
func (g Game) Clone() Game {
	out := g
	out.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		out.Players[i] = p.Clone()
	}
	if g.Rounds != nil {
		out.Rounds = make([]Round, len(g.Rounds))
		for i, r := range g.Rounds {
			out.Rounds[i] = r.Clone()
		}
	}
	return out
}

// PlayerIndex returns the position of a player in the game, or -1.
func (g Game) PlayerIndex(playerID string) int {
	for i, p := range g.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Active reports whether the game still accepts scoring.
func (g Game) Active() bool { return g.Status == StatusPlaying }

// Clone returns a deep copy of the player.
func (p Player) Clone() Player {
	out := p
	out.Details = p.Details.Clone()
	return out
}

// Clone returns a deep copy of the details union.
func (d PlayerDetails) Clone() PlayerDetails {
	var out PlayerDetails
	if d.Countdown != nil {
		c := *d.Countdown
		out.Countdown = &c
	}
	if d.Categories != nil {
		filled := make(map[Category]int, len(d.Categories.Filled))
		for k, v := range d.Categories.Filled {
			filled[k] = v
		}
		out.Categories = &CategoryDetails{Filled: filled}
	}
	return out
}

// Clone returns a deep copy of the round.
func (r Round) Clone() Round {
	out := Round{Timestamp: r.Timestamp}
	if r.Scores != nil {
		out.Scores = make(map[string]int, len(r.Scores))
		for k, v := range r.Scores {
			out.Scores[k] = v
		}
	}
	if r.Details != nil {
		out.Details = make(map[string]RoundDetail, len(r.Details))
		for k, v := range r.Details {
			out.Details[k] = v.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the round detail union.
func (d RoundDetail) Clone() RoundDetail {
	var out RoundDetail
	if d.Countdown != nil {
		c := *d.Countdown
		out.Countdown = &c
	}
	if d.Bonus != nil {
		b := *d.Bonus
		out.Bonus = &b
	}
	if d.Category != nil {
		c := *d.Category
		out.Category = &c
	}
	return out
}

// ClampScore keeps a score at or above zero.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	return score
}
