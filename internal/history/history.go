// Package history derives read-only views from finished games: list
// summaries, per-variant and per-player statistics and CSV export.
package history

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
	"github.com/scoremaster/scoremaster-desktop/internal/scoring"
)

// PlayerLine is one row of a finished game's final standings.
type PlayerLine struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Winner bool   `json:"winner"`
}

// Summary is a history list entry.
type Summary struct {
	GameID      string        `json:"gameId"`
	Variant     model.Variant `json:"variant"`
	VariantName string        `json:"variantName"`
	WinnerName  string        `json:"winnerName"`
	WinnerScore int           `json:"winnerScore"`
	ScoreLabel  string        `json:"scoreLabel"`
	Rounds      int           `json:"rounds"`
	FinishedAt  int64         `json:"finishedAt"`
	FinishedAgo string        `json:"finishedAgo"`
	Standings   []PlayerLine  `json:"standings"`
}

// Summarize builds the list entry of a finished game relative to now.
func Summarize(g model.Game, now time.Time) Summary {
	s := Summary{
		GameID:      g.ID,
		Variant:     g.Type,
		VariantName: string(g.Type),
		Rounds:      len(g.Rounds),
		FinishedAt:  g.LastUpdated,
		FinishedAgo: humanize.RelTime(time.UnixMilli(g.LastUpdated), now, "ago", "from now"),
		Standings:   make([]PlayerLine, 0, len(g.Players)),
	}
	if p, ok := scoring.For(g.Type); ok {
		s.VariantName = p.Spec().Name
	}
	for _, p := range g.Players {
		win := p.ID == g.WinnerID
		if win {
			s.WinnerName = p.Name
			s.WinnerScore = p.Score
		}
		s.Standings = append(s.Standings, PlayerLine{Name: p.Name, Score: p.Score, Winner: win})
	}
	s.ScoreLabel = humanize.Comma(int64(s.WinnerScore)) + " pts"
	return s
}

// List summarises games, optionally restricted to one variant. Order is
// preserved, so history input yields most recent first.
func List(games []model.Game, v model.Variant, now time.Time) []Summary {
	out := make([]Summary, 0, len(games))
	for _, g := range games {
		if v != "" && g.Type != v {
			continue
		}
		out = append(out, Summarize(g, now))
	}
	return out
}

// VariantStats aggregates the finished games of one variant.
type VariantStats struct {
	Variant         model.Variant   `json:"variant"`
	Games           int             `json:"games"`
	AvgRounds       decimal.Decimal `json:"avgRounds"`
	AvgWinningScore decimal.Decimal `json:"avgWinningScore"`
	HighScore       int             `json:"highScore"`
}

// PlayerStats aggregates a player name across games.
type PlayerStats struct {
	Name    string          `json:"name"`
	Played  int             `json:"played"`
	Wins    int             `json:"wins"`
	WinRate decimal.Decimal `json:"winRate"`
}

// Stats is the statistics view of the history.
type Stats struct {
	Games    int            `json:"games"`
	Variants []VariantStats `json:"variants"`
	Players  []PlayerStats  `json:"players"`
}

// Compute aggregates games. Players are identified by name since ids are
// only unique within a game. Win rates are percentages with one decimal.
func Compute(games []model.Game) Stats {
	type variantAcc struct {
		games, rounds, winScores, high int
	}
	variants := map[model.Variant]*variantAcc{}
	players := map[string]*PlayerStats{}

	for _, g := range games {
		acc := variants[g.Type]
		if acc == nil {
			acc = &variantAcc{}
			variants[g.Type] = acc
		}
		acc.games++
		acc.rounds += len(g.Rounds)
		for _, p := range g.Players {
			ps := players[p.Name]
			if ps == nil {
				ps = &PlayerStats{Name: p.Name}
				players[p.Name] = ps
			}
			ps.Played++
			if p.ID == g.WinnerID {
				ps.Wins++
				acc.winScores += p.Score
				if p.Score > acc.high {
					acc.high = p.Score
				}
			}
		}
	}

	st := Stats{
		Games:    len(games),
		Variants: []VariantStats{},
		Players:  make([]PlayerStats, 0, len(players)),
	}
	for _, v := range model.Variants {
		acc, ok := variants[v]
		if !ok {
			continue
		}
		n := decimal.NewFromInt(int64(acc.games))
		st.Variants = append(st.Variants, VariantStats{
			Variant:         v,
			Games:           acc.games,
			AvgRounds:       decimal.NewFromInt(int64(acc.rounds)).DivRound(n, 1),
			AvgWinningScore: decimal.NewFromInt(int64(acc.winScores)).DivRound(n, 1),
			HighScore:       acc.high,
		})
	}
	hundred := decimal.NewFromInt(100)
	for _, ps := range players {
		ps.WinRate = decimal.NewFromInt(int64(ps.Wins)).Mul(hundred).DivRound(decimal.NewFromInt(int64(ps.Played)), 1)
		st.Players = append(st.Players, *ps)
	}
	sort.Slice(st.Players, func(i, j int) bool {
		a, b := st.Players[i], st.Players[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if c := a.WinRate.Cmp(b.WinRate); c != 0 {
			return c > 0
		}
		return a.Name < b.Name
	})
	return st
}
