package history

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"game_id", "variant", "finished_at", "rounds", "player", "score", "winner"}

// WriteCSV writes one row per player of every game.
func WriteCSV(w io.Writer, games []model.Game) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, g := range games {
		finished := time.UnixMilli(g.LastUpdated).UTC().Format(time.RFC3339)
		rounds := strconv.Itoa(len(g.Rounds))
		for _, p := range g.Players {
			row := []string{
				g.ID,
				string(g.Type),
				finished,
				rounds,
				p.Name,
				strconv.Itoa(p.Score),
				strconv.FormatBool(p.ID == g.WinnerID),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
