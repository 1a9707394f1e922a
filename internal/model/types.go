package model

// Variant identifies one of the supported game types.
type Variant string

const (
	Truco    Variant = "truco"
	Generala Variant = "generala"
	Canasta  Variant = "canasta"
	Escoba   Variant = "escoba"
	Mosca    Variant = "mosca"
)

// Variants lists every supported variant in menu order.
var Variants = []Variant{Truco, Generala, Canasta, Escoba, Mosca}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	for _, known := range Variants {
		if v == known {
			return true
		}
	}
	return false
}

// Status is the lifecycle stage of a game.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// HistoryLimit caps the number of finished games kept in a snapshot.
const HistoryLimit = 50

// Category is a generala scorecard row.
type Category string

const (
	Ones        Category = "1"
	Twos        Category = "2"
	Threes      Category = "3"
	Fours       Category = "4"
	Fives       Category = "5"
	Sixes       Category = "6"
	Straight    Category = "E"
	FullHouse   Category = "F"
	Poker       Category = "P"
	GeneralaCat Category = "G"
	DoubleG     Category = "DG"
)

// Categories lists the scorecard rows in display order.
var Categories = []Category{Ones, Twos, Threes, Fours, Fives, Sixes, Straight, FullHouse, Poker, GeneralaCat, DoubleG}

// Valid reports whether c is a scorecard row.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// --------- Players ---------

// Player is a participant of a single game. Score never drops below zero.
type Player struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Score   int           `json:"score"`
	Details PlayerDetails `json:"details"`
}

// PlayerDetails carries variant-specific auxiliary state. At most one
// member is set, matching the game's variant.
type PlayerDetails struct {
	Countdown  *CountdownDetails `json:"countdown,omitempty"`
	Categories *CategoryDetails  `json:"categories,omitempty"`
}

// CountdownDetails tracks whether a mosca player passed the previous round
// and therefore has to play the next one.
type CountdownDetails struct {
	Forced bool `json:"forced"`
}

// CategoryDetails holds the filled generala rows of one player.
type CategoryDetails struct {
	Filled map[Category]int `json:"filled"`
}

// --------- Rounds ---------

// Round is one recorded scoring event. Scores holds the signed delta applied
// to each player.
type Round struct {
	Scores    map[string]int         `json:"scores"`
	Details   map[string]RoundDetail `json:"details,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// RoundDetail is the per-player payload a round was built from.
type RoundDetail struct {
	Countdown *CountdownHand `json:"countdown,omitempty"`
	Bonus     *BonusHand     `json:"bonus,omitempty"`
	Category  *CategoryFill  `json:"category,omitempty"`
}

// CountdownHand is a mosca player's round: either passed or the number of
// tricks won.
type CountdownHand struct {
	Passed bool `json:"passed"`
	Tricks int  `json:"tricks"`
}

// BonusHand is an escoba player's round.
type BonusHand struct {
	Escobas  int  `json:"escobas"`
	SieteOro bool `json:"sieteOro"`
	Setenta  bool `json:"setenta"`
	Cartas   bool `json:"cartas"`
	Oros     bool `json:"oros"`
}

// CategoryFill records a single generala row assignment.
type CategoryFill struct {
	Category Category `json:"category"`
	Value    int      `json:"value"`
}

// --------- Games ---------

// Game is one scorekeeping session.
type Game struct {
	ID          string   `json:"id"`
	Type        Variant  `json:"type"`
	Players     []Player `json:"players"`
	Status      Status   `json:"status"`
	CreatedAt   int64    `json:"createdAt"`
	LastUpdated int64    `json:"lastUpdated"`
	WinnerID    string   `json:"winnerId,omitempty"`
	Rounds      []Round  `json:"rounds"`
}

// GameState is the root aggregate persisted as a single snapshot.
type GameState struct {
	ActiveGames   map[string]Game `json:"activeGames"`
	FinishedGames []Game          `json:"finishedGames"`
	CurrentGameID *string         `json:"currentGameId"`
}
