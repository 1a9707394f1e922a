package scoring

import "github.com/scoremaster/scoremaster-desktop/internal/model"

// TrucoTarget is the score that wins a truco match.
const TrucoTarget = 30

// StepInput moves one truco player up or down by a single point.
type StepInput struct {
	PlayerID string `json:"playerId"`
	Up       bool   `json:"up"`
}

func (StepInput) variant() model.Variant { return model.Truco }

type trucoPolicy struct{ base }

func (trucoPolicy) Spec() Spec {
	return Spec{
		ID:           model.Truco,
		Name:         "Truco",
		PlayerCounts: []int{2, 4},
		Threshold:    TrucoTarget,
		AutoWin:      true,
	}
}

// RoundImpact returns a ±1 delta for the chosen player.
func (trucoPolicy) RoundImpact(players []model.Player, in Input) (Impact, error) {
	step, ok := in.(StepInput)
	if !ok {
		return Impact{}, ErrInputMismatch
	}
	if !hasPlayer(players, step.PlayerID) {
		return Impact{}, ErrUnknownPlayer
	}
	delta := -1
	if step.Up {
		delta = 1
	}
	return Impact{Scores: map[string]int{step.PlayerID: delta}}, nil
}

func (trucoPolicy) IsWinner(p model.Player, _ []model.Player) bool {
	return p.Score >= TrucoTarget
}
