package persistence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
	"github.com/scoremaster/scoremaster-desktop/internal/scoring"
	"github.com/scoremaster/scoremaster-desktop/internal/session"
	"github.com/scoremaster/scoremaster-desktop/internal/store"
)

var quiet = log.New(io.Discard, "", 0)

// memKV is an in-memory store that can be told to fail.
type memKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	failures int
	puts     int
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.failures > 0 {
		m.failures--
		return errors.New("disk full")
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) Close() error { return nil }

func sampleState(t *testing.T) model.GameState {
	t.Helper()
	n := 0
	r := session.Reducer{
		Now: func() time.Time { return time.UnixMilli(1_700_000_000_000) },
		NewID: func() string {
			n++
			return fmt.Sprintf("g%d", n)
		},
	}
	s := model.Empty()
	create := func(v model.Variant, names ...string) string {
		s = r.Apply(s, session.CreateGame{Variant: v, PlayerNames: names})
		return *s.CurrentGameID
	}

	truco := create(model.Truco, "A", "B")
	s = r.Apply(s, session.UpdateScore{GameID: truco, PlayerID: "p-0", Amount: 1})

	mosca := create(model.Mosca, "A", "B", "C")
	policy, _ := scoring.For(model.Mosca)
	impact, err := policy.RoundImpact(s.ActiveGames[mosca].Players, scoring.CountdownInput{Hands: map[string]model.CountdownHand{
		"p-0": {Passed: true}, "p-1": {Tricks: 3}, "p-2": {Tricks: 2},
	}})
	if err != nil {
		t.Fatalf("RoundImpact: %v", err)
	}
	s = r.Apply(s, session.AddRound{GameID: mosca, Scores: impact.Scores, Details: impact.Details})

	gen := create(model.Generala, "A", "B")
	s = r.Apply(s, session.UpdateScore{GameID: gen, PlayerID: "p-1", Amount: 25, RoundData: &model.Round{
		Scores:  map[string]int{"p-1": 25},
		Details: map[string]model.RoundDetail{"p-1": {Category: &model.CategoryFill{Category: model.Straight, Value: 25}}},
	}})

	canasta := create(model.Canasta, "Nosotros", "Ellos")
	s = r.Apply(s, session.AddRound{GameID: canasta, Scores: map[string]int{"p-0": 1200, "p-1": 300}})
	s = r.Apply(s, session.FinishGame{GameID: canasta, WinnerID: "p-0"})

	// Overfill the history so the snapshot carries exactly HistoryLimit games.
	variants := []model.Variant{model.Truco, model.Generala, model.Canasta, model.Escoba, model.Mosca}
	for i := 0; i < model.HistoryLimit+5; i++ {
		id := create(variants[i%len(variants)], "A", "B")
		s = r.Apply(s, session.FinishGame{GameID: id, WinnerID: "p-1"})
	}

	escoba := create(model.Escoba, "A", "B", "C")
	bonus, _ := scoring.For(model.Escoba)
	impact, err = bonus.RoundImpact(s.ActiveGames[escoba].Players, scoring.BonusInput{Hands: map[string]model.BonusHand{
		"p-0": {Escobas: 2, SieteOro: true},
		"p-1": {Setenta: true, Cartas: true},
		"p-2": {Oros: true},
	}})
	if err != nil {
		t.Fatalf("RoundImpact: %v", err)
	}
	s = r.Apply(s, session.AddRound{GameID: escoba, Scores: impact.Scores, Details: impact.Details})

	s = r.Apply(s, session.SetCurrentGame{GameID: &mosca})
	return s
}

func TestRoundTripSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := store.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	gw := NewGateway(db, "", quiet)
	if gw.Key() != StateKey {
		t.Fatalf("Expected default key %s, got %s", StateKey, gw.Key())
	}
	if _, ok := gw.Load(ctx); ok {
		t.Fatalf("Expected nothing stored yet")
	}

	want := sampleState(t)
	if err := gw.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok := gw.Load(ctx)
	if !ok {
		t.Fatalf("Expected a stored snapshot")
	}
	if len(want.FinishedGames) != model.HistoryLimit || len(got.FinishedGames) != model.HistoryLimit {
		t.Fatalf("Expected %d finished games on both sides, got %d and %d", model.HistoryLimit, len(want.FinishedGames), len(got.FinishedGames))
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Snapshot changed across save/load:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestLoadMalformedSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[StateKey] = []byte(`{"activeGames": [`)

	gw := NewGateway(kv, "", quiet)
	if _, ok := gw.Load(ctx); ok {
		t.Fatalf("Expected malformed snapshot to be rejected")
	}
}

func TestLoadRepairsSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	var finished string
	for i := 0; i < model.HistoryLimit+5; i++ {
		if i > 0 {
			finished += ","
		}
		finished += fmt.Sprintf(`{"id":"f%d","type":"truco","players":[],"status":"finished","rounds":[]}`, i)
	}
	kv.data[StateKey] = []byte(`{"activeGames":null,"finishedGames":[` + finished + `],"currentGameId":"gone"}`)

	s, ok := NewGateway(kv, "", quiet).Load(ctx)
	if !ok {
		t.Fatalf("Expected snapshot to load")
	}
	if s.ActiveGames == nil || s.CurrentGameID != nil {
		t.Errorf("Expected repaired active games and current id, got %+v", s)
	}
	if len(s.FinishedGames) != model.HistoryLimit {
		t.Errorf("Expected history capped at %d, got %d", model.HistoryLimit, len(s.FinishedGames))
	}
}

func TestResetDeletesSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	gw := NewGateway(kv, "custom", quiet)
	if err := gw.Save(ctx, model.Empty()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := kv.data["custom"]; !ok {
		t.Fatalf("Expected snapshot under custom key")
	}
	if err := gw.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, ok := gw.Load(ctx); ok {
		t.Errorf("Expected no snapshot after reset")
	}
}

func TestSaverWritesLatest(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	gw := NewGateway(kv, "", quiet)
	saver := NewSaver(gw, SaverOptions{Backoff: time.Millisecond})
	defer saver.Close()

	s := model.Empty()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("g%d", i)
		s.ActiveGames[id] = model.Game{ID: id, Type: model.Truco, Status: model.StatusPlaying, Rounds: []model.Round{}}
		saver.Enqueue(s.Clone())
	}
	saver.Flush()

	got, ok := gw.Load(ctx)
	if !ok {
		t.Fatalf("Expected a saved snapshot")
	}
	if len(got.ActiveGames) != 5 {
		t.Errorf("Expected the latest snapshot with 5 games, got %d", len(got.ActiveGames))
	}
}

func TestSaverRetries(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.failures = 2
	gw := NewGateway(kv, "", quiet)
	saver := NewSaver(gw, SaverOptions{Backoff: time.Millisecond})
	defer saver.Close()

	saver.Enqueue(model.Empty())
	saver.Flush()

	if _, ok := gw.Load(ctx); !ok {
		t.Fatalf("Expected snapshot written after retries")
	}
	if saver.Failures() != 0 {
		t.Errorf("Expected no dropped snapshots, got %d", saver.Failures())
	}
	if kv.puts != 3 {
		t.Errorf("Expected 3 write attempts, got %d", kv.puts)
	}
}

func TestSaverDropsAfterRetries(t *testing.T) {
	kv := newMemKV()
	kv.failures = 100
	gw := NewGateway(kv, "", quiet)
	saver := NewSaver(gw, SaverOptions{Retries: 2, Backoff: time.Millisecond})

	saver.Enqueue(model.Empty())
	saver.Flush()
	if saver.Failures() != 1 {
		t.Errorf("Expected one dropped snapshot, got %d", saver.Failures())
	}
	if kv.puts != 3 {
		t.Errorf("Expected 1 attempt plus 2 retries, got %d", kv.puts)
	}

	saver.Close()
	saver.Enqueue(model.Empty())
	saver.Flush()
	if kv.puts != 3 {
		t.Errorf("Expected no writes after close, got %d", kv.puts)
	}
}

func TestSaverCloseWritesPending(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	gw := NewGateway(kv, "", quiet)
	saver := NewSaver(gw, SaverOptions{Backoff: time.Millisecond})

	saver.Enqueue(sampleState(t))
	saver.Close()

	if _, ok := gw.Load(ctx); !ok {
		t.Errorf("Expected pending snapshot written on close")
	}
}
