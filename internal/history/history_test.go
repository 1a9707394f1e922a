package history

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
)

var base = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

func finished(id string, v model.Variant, winner string, rounds int, players ...model.Player) model.Game {
	g := model.Game{
		ID:          id,
		Type:        v,
		Players:     players,
		Status:      model.StatusFinished,
		LastUpdated: base.UnixMilli(),
		WinnerID:    winner,
		Rounds:      make([]model.Round, rounds),
	}
	return g
}

func player(id, name string, score int) model.Player {
	return model.Player{ID: id, Name: name, Score: score}
}

func sampleHistory() []model.Game {
	return []model.Game{
		finished("c1", model.Canasta, "p-0", 6, player("p-0", "Nosotros", 5120), player("p-1", "Ellos", 3890)),
		finished("t1", model.Truco, "p-1", 0, player("p-0", "Ana", 22), player("p-1", "Beto", 30)),
		finished("t2", model.Truco, "p-0", 0, player("p-0", "Ana", 30), player("p-1", "Beto", 12)),
		finished("t3", model.Truco, "p-0", 0, player("p-0", "Ana", 30), player("p-1", "Beto", 29)),
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleHistory()[0], base.Add(3*time.Hour))

	if s.WinnerName != "Nosotros" || s.WinnerScore != 5120 {
		t.Errorf("Expected Nosotros with 5120, got %s with %d", s.WinnerName, s.WinnerScore)
	}
	if s.ScoreLabel != "5,120 pts" {
		t.Errorf("Expected grouped score label, got %q", s.ScoreLabel)
	}
	if s.FinishedAgo != "3 hours ago" {
		t.Errorf("Expected '3 hours ago', got %q", s.FinishedAgo)
	}
	if s.VariantName != "Canasta" || s.Rounds != 6 {
		t.Errorf("Unexpected summary %+v", s)
	}
	if len(s.Standings) != 2 || !s.Standings[0].Winner || s.Standings[1].Winner {
		t.Errorf("Unexpected standings %+v", s.Standings)
	}
}

func TestListFiltersByVariant(t *testing.T) {
	games := sampleHistory()
	if got := List(games, "", base); len(got) != 4 {
		t.Errorf("Expected 4 entries, got %d", len(got))
	}
	trucos := List(games, model.Truco, base)
	if len(trucos) != 3 || trucos[0].GameID != "t1" {
		t.Errorf("Expected 3 truco entries in history order, got %+v", trucos)
	}
}

func TestCompute(t *testing.T) {
	st := Compute(sampleHistory())

	if st.Games != 4 {
		t.Errorf("Expected 4 games, got %d", st.Games)
	}
	if len(st.Variants) != 2 || st.Variants[0].Variant != model.Truco || st.Variants[1].Variant != model.Canasta {
		t.Fatalf("Expected truco then canasta, got %+v", st.Variants)
	}
	truco := st.Variants[0]
	if truco.Games != 3 || truco.HighScore != 30 || truco.AvgWinningScore.String() != "30" {
		t.Errorf("Unexpected truco stats %+v", truco)
	}
	if st.Variants[1].AvgRounds.String() != "6" {
		t.Errorf("Expected 6 rounds on average, got %s", st.Variants[1].AvgRounds)
	}

	if st.Players[0].Name != "Ana" || st.Players[0].Wins != 2 {
		t.Fatalf("Expected Ana to lead, got %+v", st.Players[0])
	}
	if got := st.Players[0].WinRate.String(); got != "66.7" {
		t.Errorf("Expected win rate 66.7, got %s", got)
	}
	for _, p := range st.Players {
		if p.Name == "Beto" && p.WinRate.String() != "33.3" {
			t.Errorf("Expected Beto at 33.3, got %s", p.WinRate)
		}
	}
}

func TestComputeEmpty(t *testing.T) {
	st := Compute(nil)
	if st.Games != 0 || len(st.Variants) != 0 || len(st.Players) != 0 {
		t.Errorf("Expected empty stats, got %+v", st)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleHistory()[:2]); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("Expected header plus 4 rows, got %d", len(rows))
	}
	want := []string{"c1", "canasta", "2025-03-01T20:00:00Z", "6", "Nosotros", "5120", "true"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("Column %s: expected %q, got %q", CSVHeader[i], v, rows[1][i])
		}
	}
}
