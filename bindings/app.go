package bindings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scoremaster/scoremaster-desktop/internal/history"
	"github.com/scoremaster/scoremaster-desktop/internal/model"
	"github.com/scoremaster/scoremaster-desktop/internal/scorepad"
	"github.com/scoremaster/scoremaster-desktop/internal/scoring"
)

func (a *App) GetState() model.GameState {
	return a.pad.State()
}

func (a *App) GetVariants() []scoring.Spec {
	return scoring.List()
}

func (a *App) DefaultNames(variant string, count int) []string {
	return scorepad.DefaultNames(model.Variant(variant), count)
}

func (a *App) GeneralaOptions(category string) []int {
	return scoring.GeneralaOptions(model.Category(category))
}

// GetGame returns an active or finished game with its winner and, for
// canasta, the minimum meld of every team.
func (a *App) GetGame(gameID string) (scorepad.GameView, error) {
	return a.pad.View(gameID)
}

func (a *App) GetActiveGames() []model.Game {
	return a.pad.ActiveGames()
}

// ---- Game setup ----

func (a *App) NewGame(variant string, names []string) (model.Game, error) {
	return a.pad.NewGame(model.Variant(variant), names)
}

// Resume opens the most recent unfinished game of a variant.
func (a *App) Resume(variant string) (model.Game, error) {
	g, ok := a.pad.Resume(model.Variant(variant))
	if !ok {
		return model.Game{}, fmt.Errorf("%w: no %s game to resume", scorepad.ErrGameNotFound, variant)
	}
	return g, nil
}

func (a *App) Open(gameID string) (model.GameState, error) {
	return a.pad.Open(gameID)
}

func (a *App) Abandon(gameID string) (model.GameState, error) {
	return a.pad.Abandon(gameID)
}

// ---- Scoring ----

func (a *App) Step(gameID, playerID string, up bool) (model.GameState, error) {
	return a.pad.Step(gameID, playerID, up)
}

func (a *App) FillCategory(gameID, playerID, category string, value int) (model.GameState, error) {
	return a.pad.FillCategory(gameID, scoring.CategoryInput{
		PlayerID: playerID,
		Category: model.Category(category),
		Value:    value,
	})
}

func (a *App) AddFreeFormRound(gameID string, points map[string]int) (model.GameState, error) {
	return a.pad.AddFreeFormRound(gameID, points)
}

func (a *App) AddBonusRound(gameID string, hands map[string]model.BonusHand) (model.GameState, error) {
	return a.pad.AddBonusRound(gameID, hands)
}

func (a *App) AddCountdownRound(gameID string, hands map[string]model.CountdownHand) (model.GameState, error) {
	return a.pad.AddCountdownRound(gameID, hands)
}

func (a *App) AdjustScore(gameID, playerID string, amount int) (model.GameState, error) {
	return a.pad.AdjustScore(gameID, playerID, amount)
}

// UndoRound removes the round at index, or the last one when index < 0.
func (a *App) UndoRound(gameID string, index int) (model.GameState, error) {
	return a.pad.UndoRound(gameID, index)
}

func (a *App) Finish(gameID, winnerID string) (model.GameState, error) {
	return a.pad.Finish(gameID, winnerID)
}

// ---- History ----

func (a *App) GetHistory(variant string) []history.Summary {
	return history.List(a.pad.State().FinishedGames, model.Variant(variant), a.now())
}

func (a *App) GetStats() history.Stats {
	return history.Compute(a.pad.State().FinishedGames)
}

func (a *App) DeleteHistoryEntry(gameID string) (model.GameState, error) {
	return a.pad.DeleteHistoryEntry(gameID)
}

func (a *App) ClearHistory() model.GameState {
	return a.pad.ClearHistory()
}

// ExportHistoryCSV writes the history to a CSV file in the data directory and
// returns its path.
func (a *App) ExportHistoryCSV() (string, error) {
	dir := filepath.Join(a.cfg.DataDir, "exports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	name := fmt.Sprintf("scoremaster_history_%s.csv", a.now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := history.WriteCSV(f, a.pad.State().FinishedGames); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
