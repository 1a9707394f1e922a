package scoring

import (
	"strconv"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
)

// CategoryInput assigns a value to one scorecard row of one player.
type CategoryInput struct {
	PlayerID string         `json:"playerId"`
	Category model.Category `json:"category"`
	Value    int            `json:"value"`
}

func (CategoryInput) variant() model.Variant { return model.Generala }

// majorValues holds the plain and "served" (first throw) value of each
// combination row.
var majorValues = map[model.Category][2]int{
	model.Straight:    {20, 25},
	model.FullHouse:   {30, 35},
	model.Poker:       {40, 45},
	model.GeneralaCat: {50, 55},
	model.DoubleG:     {100, 100},
}

// GeneralaOptions lists the values a row accepts. Number rows accept the face
// value times 0..5 dice; combination rows accept their plain and served
// values or 0 to scratch the row.
func GeneralaOptions(c model.Category) []int {
	if face, err := strconv.Atoi(string(c)); err == nil && face >= 1 && face <= 6 {
		opts := make([]int, 0, 6)
		for n := 0; n <= 5; n++ {
			opts = append(opts, n*face)
		}
		return opts
	}
	v, ok := majorValues[c]
	if !ok {
		return nil
	}
	if v[0] == v[1] {
		return []int{v[0], 0}
	}
	return []int{v[0], v[1], 0}
}

// CategoryTotal sums the filled rows.
func CategoryTotal(d *model.CategoryDetails) int {
	if d == nil {
		return 0
	}
	total := 0
	for _, v := range d.Filled {
		total += v
	}
	return total
}

// Leader returns the player with the highest scorecard total, first in
// seating order on ties. It reports false while every total is zero.
func Leader(players []model.Player) (model.Player, bool) {
	var best model.Player
	found := false
	for _, p := range players {
		total := CategoryTotal(p.Details.Categories)
		if total > 0 && (!found || total > CategoryTotal(best.Details.Categories)) {
			best, found = p, true
		}
	}
	return best, found
}

type generalaPolicy struct{ base }

func (generalaPolicy) Spec() Spec {
	return Spec{
		ID:           model.Generala,
		Name:         "Generala",
		PlayerCounts: []int{2, 3, 4, 5, 6},
		CategoryFill: true,
	}
}

func (generalaPolicy) InitialDetails() model.PlayerDetails {
	return model.PlayerDetails{Categories: &model.CategoryDetails{Filled: map[model.Category]int{}}}
}

// RoundImpact validates a row assignment and returns the resulting change of
// the player's total.
func (generalaPolicy) RoundImpact(players []model.Player, in Input) (Impact, error) {
	fill, ok := in.(CategoryInput)
	if !ok {
		return Impact{}, ErrInputMismatch
	}
	p, ok := findPlayer(players, fill.PlayerID)
	if !ok {
		return Impact{}, ErrUnknownPlayer
	}
	if !fill.Category.Valid() {
		return Impact{}, ErrInvalidCategory
	}
	if isFilled(p.Details.Categories, fill.Category) {
		return Impact{}, ErrCategoryFilled
	}
	allowed := false
	for _, v := range GeneralaOptions(fill.Category) {
		if v == fill.Value {
			allowed = true
			break
		}
	}
	if !allowed {
		return Impact{}, ErrInvalidValue
	}

	newTotal := CategoryTotal(p.Details.Categories) + fill.Value
	return Impact{
		Scores: map[string]int{p.ID: newTotal - p.Score},
		Details: map[string]model.RoundDetail{
			p.ID: {Category: &model.CategoryFill{Category: fill.Category, Value: fill.Value}},
		},
	}, nil
}

// IsWinner is always false: a generala game ends when the players say so.
func (generalaPolicy) IsWinner(model.Player, []model.Player) bool { return false }

// ApplyScore fills a row at most once and recomputes the total from the
// filled rows. Changes without a row are ignored.
func (generalaPolicy) ApplyScore(p model.Player, _ int, detail *model.RoundDetail) (model.Player, bool) {
	if detail == nil || detail.Category == nil {
		return p, false
	}
	fill := detail.Category
	if !fill.Category.Valid() || isFilled(p.Details.Categories, fill.Category) {
		return p, false
	}
	if p.Details.Categories == nil {
		p.Details.Categories = &model.CategoryDetails{Filled: map[model.Category]int{}}
	}
	p.Details.Categories.Filled[fill.Category] = fill.Value
	p.Score = model.ClampScore(CategoryTotal(p.Details.Categories))
	return p, true
}

// RevertRound empties the row the removed round filled.
func (generalaPolicy) RevertRound(p model.Player, removed model.RoundDetail, ok bool, _ *model.RoundDetail) model.Player {
	if !ok || removed.Category == nil || p.Details.Categories == nil {
		return p
	}
	delete(p.Details.Categories.Filled, removed.Category.Category)
	p.Score = model.ClampScore(CategoryTotal(p.Details.Categories))
	return p
}

func isFilled(d *model.CategoryDetails, c model.Category) bool {
	if d == nil {
		return false
	}
	_, ok := d.Filled[c]
	return ok
}
