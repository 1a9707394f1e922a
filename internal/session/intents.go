package session

import "github.com/scoremaster/scoremaster-desktop/internal/model"

// Intent is a named request to transition the game state. The set is closed.
type Intent interface {
	Name() string
	intent()
}

// CreateGame starts a new game and makes it current.
type CreateGame struct {
	Variant     model.Variant
	PlayerNames []string
}

// UpdateScore adds amount to one player's score. RoundData, when set, is
// appended to the game's rounds.
type UpdateScore struct {
	GameID    string
	PlayerID  string
	Amount    int
	RoundData *model.Round
}

// AddRound applies per-player deltas and records them as a round.
type AddRound struct {
	GameID  string
	Scores  map[string]int
	Details map[string]model.RoundDetail
}

// RemoveRound undoes the round at RoundIndex.
type RemoveRound struct {
	GameID     string
	RoundIndex int
}

// FinishGame moves an active game to the head of the history.
type FinishGame struct {
	GameID   string
	WinnerID string
}

// DeleteGame discards an active game.
type DeleteGame struct{ GameID string }

// DeleteFinishedGame removes one entry from the history.
type DeleteFinishedGame struct{ GameID string }

// ClearHistory empties the history.
type ClearHistory struct{}

// SetCurrentGame points the current game at GameID, or clears it when nil.
type SetCurrentGame struct{ GameID *string }

// LoadSnapshot replaces the whole state.
type LoadSnapshot struct{ State model.GameState }

func (CreateGame) Name() string         { return "create_game" }
func (UpdateScore) Name() string        { return "update_score" }
func (AddRound) Name() string           { return "add_round" }
func (RemoveRound) Name() string        { return "remove_round" }
func (FinishGame) Name() string         { return "finish_game" }
func (DeleteGame) Name() string         { return "delete_game" }
func (DeleteFinishedGame) Name() string { return "delete_finished_game" }
func (ClearHistory) Name() string       { return "clear_history" }
func (SetCurrentGame) Name() string     { return "set_current_game" }
func (LoadSnapshot) Name() string       { return "load_snapshot" }

func (CreateGame) intent()         {}
func (UpdateScore) intent()        {}
func (AddRound) intent()           {}
func (RemoveRound) intent()        {}
func (FinishGame) intent()         {}
func (DeleteGame) intent()         {}
func (DeleteFinishedGame) intent() {}
func (ClearHistory) intent()       {}
func (SetCurrentGame) intent()     {}
func (LoadSnapshot) intent()       {}
