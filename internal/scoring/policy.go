package scoring

import (
	"errors"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
)

var (
	ErrInputMismatch   = errors.New("scoring: input does not match variant")
	ErrUnknownPlayer   = errors.New("scoring: player not in game")
	ErrInvalidCategory = errors.New("scoring: unknown category")
	ErrCategoryFilled  = errors.New("scoring: category already filled")
	ErrInvalidValue    = errors.New("scoring: value not allowed for category")
	ErrNegativePoints  = errors.New("scoring: points must not be negative")
	ErrEmptyRound      = errors.New("scoring: round has no points")
	ErrTrickCount      = errors.New("scoring: tricks of playing players must add up to 5")
	ErrInvalidTricks   = errors.New("scoring: tricks out of range")
	ErrForcedMustPlay  = errors.New("scoring: player passed last round and must play")
)

// Spec describes a variant for setup screens.
type Spec struct {
	ID           model.Variant `json:"id"`
	Name         string        `json:"name"`
	PlayerCounts []int         `json:"playerCounts"`
	StartScore   int           `json:"startScore"`
	Threshold    int           `json:"threshold"`
	Descending   bool          `json:"descending"`
	AutoWin      bool          `json:"autoWin"`
	RoundBased   bool          `json:"roundBased"`
	CategoryFill bool          `json:"categoryFill"`
}

// Input is the raw, variant-specific payload of one scoring action.
type Input interface {
	variant() model.Variant
}

// Impact is the per-player outcome of a scoring action, ready to be recorded
// as a round.
type Impact struct {
	Scores  map[string]int
	Details map[string]model.RoundDetail
}

// Round converts the impact into a round record stamped with ts.
func (i Impact) Round(ts int64) model.Round {
	r := model.Round{Scores: i.Scores, Timestamp: ts}
	if len(i.Details) > 0 {
		r.Details = i.Details
	}
	return r
}

// Display is the optional derived value shown next to a score.
type Display struct {
	MinimumMeld int `json:"minimumMeld,omitempty"`
}

// Policy is the scoring rule set of one variant. Implementations are pure.
type Policy interface {
	Spec() Spec
	InitialScore() int
	InitialDetails() model.PlayerDetails
	// RoundImpact translates raw input into per-player deltas.
	RoundImpact(players []model.Player, in Input) (Impact, error)
	IsWinner(p model.Player, all []model.Player) bool
	Display(score int) (Display, bool)

	// ApplyScore applies a direct score change. It returns false when the
	// change must be ignored.
	ApplyScore(p model.Player, amount int, detail *model.RoundDetail) (model.Player, bool)
	// MergeRound folds a newly appended round's detail into the player.
	MergeRound(p model.Player, detail model.RoundDetail, ok bool) model.Player
	// RevertRound restores player details after a round is removed. prev is
	// the detail recorded in the round preceding the removed one, if any.
	RevertRound(p model.Player, removed model.RoundDetail, ok bool, prev *model.RoundDetail) model.Player
}

// For returns the policy of a variant.
func For(v model.Variant) (Policy, bool) {
	switch v {
	case model.Truco:
		return trucoPolicy{}, true
	case model.Generala:
		return generalaPolicy{}, true
	case model.Canasta:
		return canastaPolicy{}, true
	case model.Escoba:
		return escobaPolicy{}, true
	case model.Mosca:
		return moscaPolicy{}, true
	}
	return nil, false
}

// List returns the specs of all variants in menu order.
func List() []Spec {
	specs := make([]Spec, 0, len(model.Variants))
	for _, v := range model.Variants {
		if p, ok := For(v); ok {
			specs = append(specs, p.Spec())
		}
	}
	return specs
}

// Winner returns the first player, in seating order, satisfying the variant's
// win test. Finished games and variants without a win test never report one.
func Winner(g model.Game) (model.Player, bool) {
	if !g.Active() {
		return model.Player{}, false
	}
	p, ok := For(g.Type)
	if !ok {
		return model.Player{}, false
	}
	for _, pl := range g.Players {
		if p.IsWinner(pl, g.Players) {
			return pl, true
		}
	}
	return model.Player{}, false
}

// base supplies the default hooks shared by most variants.
type base struct{}

func (base) InitialScore() int { return 0 }

func (base) InitialDetails() model.PlayerDetails { return model.PlayerDetails{} }

func (base) Display(int) (Display, bool) { return Display{}, false }

func (base) ApplyScore(p model.Player, amount int, _ *model.RoundDetail) (model.Player, bool) {
	p.Score = model.ClampScore(p.Score + amount)
	return p, true
}

func (base) MergeRound(p model.Player, _ model.RoundDetail, _ bool) model.Player { return p }

func (base) RevertRound(p model.Player, _ model.RoundDetail, _ bool, _ *model.RoundDetail) model.Player {
	return p
}

func hasPlayer(players []model.Player, id string) bool {
	for _, p := range players {
		if p.ID == id {
			return true
		}
	}
	return false
}

func findPlayer(players []model.Player, id string) (model.Player, bool) {
	for _, p := range players {
		if p.ID == id {
			return p, true
		}
	}
	return model.Player{}, false
}
