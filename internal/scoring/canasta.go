package scoring

import "github.com/scoremaster/scoremaster-desktop/internal/model"

// CanastaTarget is the score that wins a canasta game.
const CanastaTarget = 5000

// FreeFormInput carries the points each player made in a canasta hand.
// Players missing from Points score zero.
type FreeFormInput struct {
	Points map[string]int `json:"points"`
}

func (FreeFormInput) variant() model.Variant { return model.Canasta }

// MinimumMeld is the points a team needs for its first meld at a given score.
func MinimumMeld(score int) int {
	switch {
	case score < 1500:
		return 50
	case score < 3000:
		return 90
	case score < 5000:
		return 120
	default:
		return 160
	}
}

type canastaPolicy struct{ base }

func (canastaPolicy) Spec() Spec {
	return Spec{
		ID:           model.Canasta,
		Name:         "Canasta",
		PlayerCounts: []int{2, 3, 4},
		Threshold:    CanastaTarget,
		AutoWin:      true,
		RoundBased:   true,
	}
}

func (canastaPolicy) RoundImpact(players []model.Player, in Input) (Impact, error) {
	ff, ok := in.(FreeFormInput)
	if !ok {
		return Impact{}, ErrInputMismatch
	}
	if len(ff.Points) == 0 {
		return Impact{}, ErrEmptyRound
	}
	for id, pts := range ff.Points {
		if !hasPlayer(players, id) {
			return Impact{}, ErrUnknownPlayer
		}
		if pts < 0 {
			return Impact{}, ErrNegativePoints
		}
	}
	scores := make(map[string]int, len(players))
	for _, p := range players {
		scores[p.ID] = ff.Points[p.ID]
	}
	return Impact{Scores: scores}, nil
}

func (canastaPolicy) IsWinner(p model.Player, _ []model.Player) bool {
	return p.Score >= CanastaTarget
}

func (canastaPolicy) Display(score int) (Display, bool) {
	return Display{MinimumMeld: MinimumMeld(score)}, true
}
