package scoring

import (
	"errors"
	"reflect"
	"testing"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
)

func TestGeneralaOptions(t *testing.T) {
	cases := map[model.Category][]int{
		model.Threes:      {0, 3, 6, 9, 12, 15},
		model.Straight:    {20, 25, 0},
		model.GeneralaCat: {50, 55, 0},
		model.DoubleG:     {100, 0},
	}
	for c, want := range cases {
		if got := GeneralaOptions(c); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: expected %v, got %v", c, want, got)
		}
	}
	if GeneralaOptions("Z") != nil {
		t.Errorf("Expected no options for unknown category")
	}
}

func TestGeneralaRoundImpact(t *testing.T) {
	p, _ := For(model.Generala)
	pl := model.Player{
		ID:      "p-0",
		Score:   9,
		Details: model.PlayerDetails{Categories: &model.CategoryDetails{Filled: map[model.Category]int{model.Threes: 9}}},
	}
	ps := []model.Player{pl}

	impact, err := p.RoundImpact(ps, CategoryInput{PlayerID: "p-0", Category: model.FullHouse, Value: 35})
	if err != nil {
		t.Fatalf("RoundImpact: %v", err)
	}
	if impact.Scores["p-0"] != 35 {
		t.Errorf("Expected delta 35, got %d", impact.Scores["p-0"])
	}
	fill := impact.Details["p-0"].Category
	if fill == nil || fill.Category != model.FullHouse || fill.Value != 35 {
		t.Errorf("Unexpected fill detail %+v", fill)
	}

	errCases := []struct {
		in   CategoryInput
		want error
	}{
		{CategoryInput{PlayerID: "p-0", Category: model.Threes, Value: 12}, ErrCategoryFilled},
		{CategoryInput{PlayerID: "p-0", Category: "X", Value: 1}, ErrInvalidCategory},
		{CategoryInput{PlayerID: "p-0", Category: model.Fours, Value: 5}, ErrInvalidValue},
		{CategoryInput{PlayerID: "p-7", Category: model.Fours, Value: 4}, ErrUnknownPlayer},
	}
	for _, tc := range errCases {
		if _, err := p.RoundImpact(ps, tc.in); !errors.Is(err, tc.want) {
			t.Errorf("%+v: expected %v, got %v", tc.in, tc.want, err)
		}
	}
}

func TestGeneralaApplyScoreFillsOnce(t *testing.T) {
	p, _ := For(model.Generala)
	pl := model.Player{ID: "p-0", Details: p.InitialDetails()}

	first := &model.RoundDetail{Category: &model.CategoryFill{Category: model.Poker, Value: 40}}
	pl, ok := p.ApplyScore(pl, 40, first)
	if !ok || pl.Score != 40 {
		t.Fatalf("Expected first fill accepted with score 40, got %d (ok=%v)", pl.Score, ok)
	}

	second := &model.RoundDetail{Category: &model.CategoryFill{Category: model.Poker, Value: 45}}
	after, ok := p.ApplyScore(pl, 5, second)
	if ok {
		t.Fatalf("Expected second fill of the same row to be rejected")
	}
	if after.Details.Categories.Filled[model.Poker] != 40 || after.Score != 40 {
		t.Errorf("Row changed after rejected fill: %+v", after)
	}
}

func TestGeneralaApplyScoreNeedsRow(t *testing.T) {
	p, _ := For(model.Generala)
	pl := model.Player{ID: "p-0", Details: p.InitialDetails()}

	after, ok := p.ApplyScore(pl, 10, nil)
	if ok {
		t.Fatalf("Expected a change without a row to be rejected")
	}
	if after.Score != 0 {
		t.Errorf("Expected score 0, got %d", after.Score)
	}
	if _, ok := p.ApplyScore(pl, 10, &model.RoundDetail{}); ok {
		t.Errorf("Expected an empty detail to be rejected")
	}
	if !p.Spec().CategoryFill {
		t.Errorf("Expected generala to be a category-fill variant")
	}
}

func TestGeneralaRevertRoundEmptiesRow(t *testing.T) {
	p, _ := For(model.Generala)
	pl := model.Player{
		ID:    "p-0",
		Score: 44,
		Details: model.PlayerDetails{Categories: &model.CategoryDetails{Filled: map[model.Category]int{
			model.Fours: 4, model.Poker: 40,
		}}},
	}
	removed := model.RoundDetail{Category: &model.CategoryFill{Category: model.Poker, Value: 40}}
	pl = p.RevertRound(pl, removed, true, nil)
	if _, still := pl.Details.Categories.Filled[model.Poker]; still {
		t.Errorf("Expected poker row to be emptied")
	}
	if pl.Score != 4 {
		t.Errorf("Expected score 4, got %d", pl.Score)
	}
}

func TestLeader(t *testing.T) {
	ps := []model.Player{
		{ID: "a", Details: model.PlayerDetails{Categories: &model.CategoryDetails{Filled: map[model.Category]int{model.Ones: 2}}}},
		{ID: "b", Details: model.PlayerDetails{Categories: &model.CategoryDetails{Filled: map[model.Category]int{model.Sixes: 18}}}},
		{ID: "c", Details: model.PlayerDetails{Categories: &model.CategoryDetails{Filled: map[model.Category]int{model.Sixes: 18}}}},
	}
	l, ok := Leader(ps)
	if !ok || l.ID != "b" {
		t.Errorf("Expected b to lead, got %+v", l)
	}
	if _, ok := Leader([]model.Player{{ID: "z"}}); ok {
		t.Errorf("Expected no leader with empty scorecards")
	}
}
