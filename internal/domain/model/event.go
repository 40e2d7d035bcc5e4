// Package model contains the domain types shared between the engine and the
// exporters. The ordered EventRecord sequence produced by a match is the sole
// source of truth for every export.
package model

import "time"

// Team identifies one of the two sides.
type Team string

const (
	TeamHome Team = "Home"
	TeamAway Team = "Away"
)

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == TeamHome {
		return TeamAway
	}
	return TeamHome
}

// Action is the closed set of loggable action kinds.
type Action string

const (
	ActionPass            Action = "Pass"
	ActionDribble         Action = "Dribble"
	ActionShot            Action = "Shot"
	ActionClearance       Action = "Clearance"
	ActionTackle          Action = "Tackle"
	ActionInterception    Action = "Interception"
	ActionBallRecovery    Action = "BallRecovery"
	ActionFoul            Action = "Foul"
	ActionSave            Action = "Save"
	ActionGoal            Action = "Goal"
	ActionPossessionStart Action = "PossessionStart"
	ActionPossessionEnd   Action = "PossessionEnd"
)

// IsShot reports whether the action carries expected-goals value. Only these
// actions may have a non-zero xg_change.
func (a Action) IsShot() bool {
	return a == ActionShot || a == ActionGoal
}

// Outcome is the resolution of one action.
type Outcome string

const (
	OutcomeSuccess Outcome = "Success"
	OutcomeFailure Outcome = "Failure"
)

// TeamStatus is the discrete score-differential label captured on each record.
type TeamStatus string

const (
	StatusTied        TeamStatus = "Tied"
	StatusHomeLeading TeamStatus = "Home Leading"
	StatusAwayLeading TeamStatus = "Away Leading"
)

// StatusOf derives the status label from the live score.
func StatusOf(homeScore, awayScore int) TeamStatus {
	switch {
	case homeScore > awayScore:
		return StatusHomeLeading
	case awayScore > homeScore:
		return StatusAwayLeading
	default:
		return StatusTied
	}
}

// EventRecord is one logged action. Records are append-only and immutable
// once written; both export formats are pure projections of the sequence.
type EventRecord struct {
	PossessionID string     // episode the action belongs to, "M<match>-P<seq>"
	Timestamp    time.Time  // simulated time of the action, UTC
	Team         Team       // acting player's team
	PlayerID     int        // jersey number; 0 for team-level records
	Action       Action     // what happened
	Zone         string     // pitch zone where it happened, e.g. "C3"
	Pressure     int        // 1 if an opponent influenced the action, else 0
	TeamStatus   TeamStatus // score context at the instant of the action
	Outcome      Outcome    // Success or Failure
	XGChange     float64    // added scoring value; >= 0, non-zero only for shots
}
