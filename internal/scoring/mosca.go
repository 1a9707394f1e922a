package scoring

import "github.com/scoremaster/scoremaster-desktop/internal/model"

const (
	// MoscaStart is every player's starting score; the first to reach zero wins.
	MoscaStart = 15
	// TricksPerRound is the number of tricks dealt in a mosca round.
	TricksPerRound = 5
	// MoscaPenalty is added to a playing player who wins no trick.
	MoscaPenalty = 5
)

// CountdownInput carries each player's mosca round. Players missing from
// Hands are treated as playing with zero tricks.
type CountdownInput struct {
	Hands map[string]model.CountdownHand `json:"hands"`
}

func (CountdownInput) variant() model.Variant { return model.Mosca }

// CountdownDelta is the score change of one hand: nothing for a pass, the
// penalty for a playing player without tricks, minus the tricks otherwise.
func CountdownDelta(h model.CountdownHand) int {
	switch {
	case h.Passed:
		return 0
	case h.Tricks == 0:
		return MoscaPenalty
	default:
		return -h.Tricks
	}
}

// ValidateCountdown checks a round before it is submitted: forced players
// cannot pass, tricks stay within the deal and the playing players' tricks
// add up to TricksPerRound.
func ValidateCountdown(players []model.Player, in CountdownInput) error {
	for id := range in.Hands {
		if !hasPlayer(players, id) {
			return ErrUnknownPlayer
		}
	}
	total := 0
	for _, p := range players {
		h := in.Hands[p.ID]
		if h.Passed {
			if p.Details.Countdown != nil && p.Details.Countdown.Forced {
				return ErrForcedMustPlay
			}
			continue
		}
		if h.Tricks < 0 || h.Tricks > TricksPerRound {
			return ErrInvalidTricks
		}
		total += h.Tricks
	}
	if total != TricksPerRound {
		return ErrTrickCount
	}
	return nil
}

type moscaPolicy struct{ base }

func (moscaPolicy) Spec() Spec {
	return Spec{
		ID:           model.Mosca,
		Name:         "La Mosca",
		PlayerCounts: []int{2, 3, 4, 5, 6},
		StartScore:   MoscaStart,
		Descending:   true,
		AutoWin:      true,
		RoundBased:   true,
	}
}

func (moscaPolicy) InitialScore() int { return MoscaStart }

func (moscaPolicy) InitialDetails() model.PlayerDetails {
	return model.PlayerDetails{Countdown: &model.CountdownDetails{}}
}

// RoundImpact scores every hand. Passed hands report zero tricks.
func (moscaPolicy) RoundImpact(players []model.Player, in Input) (Impact, error) {
	ci, ok := in.(CountdownInput)
	if !ok {
		return Impact{}, ErrInputMismatch
	}
	for id := range ci.Hands {
		if !hasPlayer(players, id) {
			return Impact{}, ErrUnknownPlayer
		}
	}
	impact := Impact{
		Scores:  make(map[string]int, len(players)),
		Details: make(map[string]model.RoundDetail, len(players)),
	}
	for _, p := range players {
		h := ci.Hands[p.ID]
		if h.Passed {
			h.Tricks = 0
		}
		impact.Scores[p.ID] = CountdownDelta(h)
		hand := h
		impact.Details[p.ID] = model.RoundDetail{Countdown: &hand}
	}
	return impact, nil
}

func (moscaPolicy) IsWinner(p model.Player, _ []model.Player) bool {
	return p.Score == 0
}

// MergeRound marks a player who passed as forced to play the next round.
func (moscaPolicy) MergeRound(p model.Player, detail model.RoundDetail, ok bool) model.Player {
	p.Details.Countdown = &model.CountdownDetails{Forced: passed(detail, ok)}
	return p
}

// RevertRound restores the forced flag from the round preceding the removed
// one only; older history is not consulted.
func (moscaPolicy) RevertRound(p model.Player, _ model.RoundDetail, _ bool, prev *model.RoundDetail) model.Player {
	forced := false
	if prev != nil {
		forced = passed(*prev, true)
	}
	p.Details.Countdown = &model.CountdownDetails{Forced: forced}
	return p
}

func passed(d model.RoundDetail, ok bool) bool {
	return ok && d.Countdown != nil && d.Countdown.Passed
}
