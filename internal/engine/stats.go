package engine

import "github.com/okian/matchlog/internal/domain/model"

// Stats summarizes a match, computed purely from the event record sequence.
type Stats struct {
	HomeScore   int
	AwayScore   int
	TotalEvents int

	// Possessions counts episodes opened per team.
	Possessions map[model.Team]int

	// ActionCounts and ActionSuccesses count records per action kind.
	ActionCounts    map[model.Action]int
	ActionSuccesses map[model.Action]int

	// HomeXG and AwayXG accumulate xg_change per team.
	HomeXG float64
	AwayXG float64
}

// ComputeStats projects the record sequence into match statistics. It reads
// nothing but the records, so it can run any time after the match.
func ComputeStats(records []model.EventRecord) Stats {
	s := Stats{
		TotalEvents:     len(records),
		Possessions:     make(map[model.Team]int),
		ActionCounts:    make(map[model.Action]int),
		ActionSuccesses: make(map[model.Action]int),
	}

	for _, rec := range records {
		s.ActionCounts[rec.Action]++
		if rec.Outcome == model.OutcomeSuccess {
			s.ActionSuccesses[rec.Action]++
		}

		switch rec.Action {
		case model.ActionPossessionStart:
			s.Possessions[rec.Team]++
		case model.ActionGoal:
			if rec.Team == model.TeamHome {
				s.HomeScore++
			} else {
				s.AwayScore++
			}
		}

		if rec.Team == model.TeamHome {
			s.HomeXG += rec.XGChange
		} else {
			s.AwayXG += rec.XGChange
		}
	}
	return s
}
