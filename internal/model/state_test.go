package model

import (
	"encoding/json"
	"testing"
)

func TestCloneIsDeep(t *testing.T) {
	cur := "g1"
	s := GameState{
		ActiveGames: map[string]Game{
			"g1": {
				ID:   "g1",
				Type: Generala,
				Players: []Player{{
					ID:      "p-0",
					Details: PlayerDetails{Categories: &CategoryDetails{Filled: map[Category]int{Ones: 3}}},
				}},
				Rounds: []Round{{Scores: map[string]int{"p-0": 3}}},
			},
		},
		CurrentGameID: &cur,
	}

	c := s.Clone()
	c.ActiveGames["g1"].Players[0].Details.Categories.Filled[Ones] = 5
	c.ActiveGames["g1"].Rounds[0].Scores["p-0"] = 9
	*c.CurrentGameID = "other"

	if got := s.ActiveGames["g1"].Players[0].Details.Categories.Filled[Ones]; got != 3 {
		t.Fatalf("clone shares category map: got %d", got)
	}
	if got := s.ActiveGames["g1"].Rounds[0].Scores["p-0"]; got != 3 {
		t.Fatalf("clone shares round scores: got %d", got)
	}
	if *s.CurrentGameID != "g1" {
		t.Fatalf("clone shares current id pointer")
	}
}

func TestNormalizeRepairsSnapshot(t *testing.T) {
	dangling := "missing"
	finished := make([]Game, HistoryLimit+5)
	for i := range finished {
		finished[i] = Game{ID: string(rune('a' + i%26))}
	}
	s := GameState{
		ActiveGames:   map[string]Game{"g1": {Type: Truco}},
		FinishedGames: finished,
		CurrentGameID: &dangling,
	}

	n := s.Normalize()
	if n.CurrentGameID != nil {
		t.Fatalf("expected dangling current id to be cleared")
	}
	if len(n.FinishedGames) != HistoryLimit {
		t.Fatalf("expected %d finished games, got %d", HistoryLimit, len(n.FinishedGames))
	}
	if n.FinishedGames[0].Status != StatusFinished {
		t.Fatalf("expected finished status, got %q", n.FinishedGames[0].Status)
	}
	g := n.ActiveGames["g1"]
	if g.ID != "g1" || g.Status != StatusPlaying || g.Rounds == nil {
		t.Fatalf("active game not repaired: %+v", g)
	}
}

func TestNormalizeNilCollections(t *testing.T) {
	var s GameState
	if err := json.Unmarshal([]byte(`{"currentGameId":null}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	n := s.Normalize()
	if n.ActiveGames == nil || n.FinishedGames == nil {
		t.Fatalf("expected non-nil collections")
	}
}

func TestVariantAndCategoryValid(t *testing.T) {
	if !Mosca.Valid() || Variant("poker").Valid() {
		t.Fatalf("variant validation wrong")
	}
	if !DoubleG.Valid() || Category("7").Valid() {
		t.Fatalf("category validation wrong")
	}
}

func TestClampScore(t *testing.T) {
	for _, tc := range []struct{ in, want int }{{-3, 0}, {0, 0}, {7, 7}} {
		if got := ClampScore(tc.in); got != tc.want {
			t.Errorf("ClampScore(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
