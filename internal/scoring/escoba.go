package scoring

import "github.com/scoremaster/scoremaster-desktop/internal/model"

// EscobaTarget is the default score that wins an escoba game.
const EscobaTarget = 30

// BonusFlag names one of the four single-owner bonuses of an escoba hand.
type BonusFlag string

const (
	SieteOro BonusFlag = "sieteOro"
	Setenta  BonusFlag = "setenta"
	Cartas   BonusFlag = "cartas"
	Oros     BonusFlag = "oros"
)

// BonusFlags lists the exclusive bonuses.
var BonusFlags = []BonusFlag{SieteOro, Setenta, Cartas, Oros}

// BonusInput carries each player's escoba hand.
type BonusInput struct {
	Hands map[string]model.BonusHand `json:"hands"`
}

func (BonusInput) variant() model.Variant { return model.Escoba }

// BonusPoints is the value of a hand: one point per escoba plus one per flag.
func BonusPoints(h model.BonusHand) int {
	pts := h.Escobas
	for _, f := range BonusFlags {
		if flagSet(h, f) {
			pts++
		}
	}
	return pts
}

// ToggleBonus claims flag for playerID, clearing it from every other hand.
// Claiming a flag the player already holds releases it.
func ToggleBonus(hands map[string]model.BonusHand, playerID string, flag BonusFlag) map[string]model.BonusHand {
	out := make(map[string]model.BonusHand, len(hands)+1)
	for id, h := range hands {
		out[id] = h
	}
	had := flagSet(out[playerID], flag)
	for id, h := range out {
		out[id] = setFlag(h, flag, false)
	}
	if !had {
		out[playerID] = setFlag(out[playerID], flag, true)
	}
	return out
}

type escobaPolicy struct{ base }

func (escobaPolicy) Spec() Spec {
	return Spec{
		ID:           model.Escoba,
		Name:         "Escoba",
		PlayerCounts: []int{2, 3, 4, 5, 6},
		Threshold:    EscobaTarget,
		AutoWin:      true,
		RoundBased:   true,
	}
}

// RoundImpact scores every player's hand. A flag claimed by more than one
// player stays with the first claimant in seating order.
func (escobaPolicy) RoundImpact(players []model.Player, in Input) (Impact, error) {
	bi, ok := in.(BonusInput)
	if !ok {
		return Impact{}, ErrInputMismatch
	}
	for id := range bi.Hands {
		if !hasPlayer(players, id) {
			return Impact{}, ErrUnknownPlayer
		}
	}

	claimed := make(map[BonusFlag]bool, len(BonusFlags))
	impact := Impact{
		Scores:  make(map[string]int, len(players)),
		Details: make(map[string]model.RoundDetail, len(players)),
	}
	for _, p := range players {
		h := bi.Hands[p.ID]
		if h.Escobas < 0 {
			h.Escobas = 0
		}
		for _, f := range BonusFlags {
			if !flagSet(h, f) {
				continue
			}
			if claimed[f] {
				h = setFlag(h, f, false)
				continue
			}
			claimed[f] = true
		}
		impact.Scores[p.ID] = BonusPoints(h)
		hand := h
		impact.Details[p.ID] = model.RoundDetail{Bonus: &hand}
	}
	return impact, nil
}

func (escobaPolicy) IsWinner(p model.Player, _ []model.Player) bool {
	return p.Score >= EscobaTarget
}

func flagSet(h model.BonusHand, f BonusFlag) bool {
	switch f {
	case SieteOro:
		return h.SieteOro
	case Setenta:
		return h.Setenta
	case Cartas:
		return h.Cartas
	case Oros:
		return h.Oros
	}
	return false
}

func setFlag(h model.BonusHand, f BonusFlag, v bool) model.BonusHand {
	switch f {
	case SieteOro:
		h.SieteOro = v
	case Setenta:
		h.Setenta = v
	case Cartas:
		h.Cartas = v
	case Oros:
		h.Oros = v
	}
	return h
}
