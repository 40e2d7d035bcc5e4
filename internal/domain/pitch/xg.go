package pitch

import "github.com/okian/matchlog/internal/domain/model"

// xgByZone holds expected-goals values keyed from the home team's
// perspective: row D is closest to the opposing goal.
var xgByZone = map[Zone]float64{
	{'D', 1}: 0.15, {'D', 2}: 0.25, {'D', 3}: 0.35, {'D', 4}: 0.25, {'D', 5}: 0.15,
	{'C', 1}: 0.08, {'C', 2}: 0.12, {'C', 3}: 0.18, {'C', 4}: 0.12, {'C', 5}: 0.08,
	{'B', 1}: 0.03, {'B', 2}: 0.05, {'B', 3}: 0.07, {'B', 4}: 0.05, {'B', 5}: 0.03,
	{'A', 1}: 0.01, {'A', 2}: 0.01, {'A', 3}: 0.02, {'A', 4}: 0.01, {'A', 5}: 0.01,
}

// defaultXG is returned for positions missing from the table.
const defaultXG = 0.05

// XG returns the expected-goals value of a shot taken from z by the given
// team. Away zones are mirrored before lookup.
func XG(z Zone, team model.Team) float64 {
	if team == model.TeamAway {
		z.Row = flipRow(z.Row)
	}
	if v, ok := xgByZone[z]; ok {
		return v
	}
	return defaultXG
}
