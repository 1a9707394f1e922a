package bindings

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/scoremaster/scoremaster-desktop/internal/config"
	"github.com/scoremaster/scoremaster-desktop/internal/model"
)

type eventLog struct {
	mu    sync.Mutex
	names []string
}

func (e *eventLog) emit(_ context.Context, name string, _ ...interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.names = append(e.names, name)
}

func (e *eventLog) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.names)
}

func testApp(t *testing.T, dir string) (*App, *eventLog) {
	t.Helper()
	cfg := config.Config{DataDir: dir, DBName: "test.db", StateKey: "state"}
	a := New(cfg)
	events := &eventLog{}
	a.emit = events.emit
	if err := a.Startup(context.Background()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	return a, events
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	a, events := testApp(t, dir)

	g, err := a.NewGame("escoba", []string{"Ana", "Beto"})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if _, err := a.AddBonusRound(g.ID, map[string]model.BonusHand{
		"p-0": {Escobas: 2, SieteOro: true},
	}); err != nil {
		t.Fatalf("AddBonusRound: %v", err)
	}
	if events.count() != 2 {
		t.Errorf("Expected 2 state events, got %d", events.count())
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	b, _ := testApp(t, dir)
	defer b.Shutdown(context.Background())

	restored, err := b.GetGame(g.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if restored.Game.Players[0].Score != 3 || len(restored.Game.Rounds) != 1 {
		t.Errorf("Unexpected restored game %+v", restored.Game)
	}
	if cur := b.GetState().CurrentGameID; cur == nil || *cur != g.ID {
		t.Errorf("Expected current game to be restored")
	}

	info, err := b.GetStorageInfo()
	if err != nil {
		t.Fatalf("GetStorageInfo: %v", err)
	}
	if info.SchemaVersion != 1 || info.LastSaved == 0 {
		t.Errorf("Unexpected storage info %+v", info)
	}
}

func TestExportHistoryCSV(t *testing.T) {
	a, _ := testApp(t, t.TempDir())
	defer a.Shutdown(context.Background())

	g, _ := a.NewGame("canasta", []string{"", "", "", ""})
	if _, err := a.AddFreeFormRound(g.ID, map[string]int{"p-0": 5000}); err != nil {
		t.Fatalf("AddFreeFormRound: %v", err)
	}
	if _, err := a.Finish(g.ID, ""); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	path, err := a.ExportHistoryCSV()
	if err != nil {
		t.Fatalf("ExportHistoryCSV: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(raw), "Nosotros") {
		t.Errorf("Expected team name in export, got %s", raw)
	}

	h := a.GetHistory("canasta")
	if len(h) != 1 || h[0].WinnerName != "Nosotros" {
		t.Errorf("Unexpected history %+v", h)
	}
}

func TestResetAll(t *testing.T) {
	dir := t.TempDir()
	a, _ := testApp(t, dir)

	if _, err := a.NewGame("truco", []string{"A", "B"}); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	s, err := a.ResetAll()
	if err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	if len(s.ActiveGames) != 0 {
		t.Errorf("Expected no active games after reset")
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	b, _ := testApp(t, dir)
	defer b.Shutdown(context.Background())
	if n := len(b.GetState().ActiveGames); n != 0 {
		t.Errorf("Expected empty state after restart, got %d games", n)
	}
}
