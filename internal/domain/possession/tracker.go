// Package possession tracks possession episodes: maximal contiguous spans of
// actions during which one team controls the ball. At most one episode is
// open at any instant; violating that is a logic defect and surfaces as
// ErrInvariant rather than being silently repaired.
package possession

import (
	"fmt"
	"time"

	"github.com/okian/matchlog/internal/domain/model"
)

// Episode is one possession span.
type Episode struct {
	ID      string
	Team    model.Team
	Start   time.Time
	Players []int // contributing jerseys, in action order
	open    bool
}

// Open reports whether the episode is still accumulating actions.
func (e *Episode) Open() bool {
	return e.open
}

// Tracker assigns monotonically increasing possession IDs and enforces the
// single-open-episode invariant.
type Tracker struct {
	matchID int
	seq     int
	current *Episode
	counts  map[model.Team]int
}

// NewTracker creates a tracker for one match.
func NewTracker(matchID int) *Tracker {
	return &Tracker{
		matchID: matchID,
		counts:  make(map[model.Team]int),
	}
}

// Current returns the open episode, or nil during dead-ball moments.
func (t *Tracker) Current() *Episode {
	return t.current
}

// CurrentID returns the open episode's ID, or "" if none is open.
func (t *Tracker) CurrentID() string {
	if t.current == nil {
		return ""
	}
	return t.current.ID
}

// Start opens a new episode for team. It fails if one is already open.
func (t *Tracker) Start(team model.Team, at time.Time) (*Episode, error) {
	if t.current != nil {
		return nil, fmt.Errorf("%w: starting %s possession while %s is open",
			ErrInvariant, team, t.current.ID)
	}
	t.seq++
	t.current = &Episode{
		ID:    fmt.Sprintf("M%d-P%03d", t.matchID, t.seq),
		Team:  team,
		Start: at,
		open:  true,
	}
	t.counts[team]++
	return t.current, nil
}

// Touch records a contributing player on the open episode.
func (t *Tracker) Touch(jersey int) error {
	if t.current == nil {
		return fmt.Errorf("%w: action with no open possession", ErrInvariant)
	}
	n := len(t.current.Players)
	if n == 0 || t.current.Players[n-1] != jersey {
		t.current.Players = append(t.current.Players, jersey)
	}
	return nil
}

// End closes the open episode and returns it.
func (t *Tracker) End() (*Episode, error) {
	if t.current == nil {
		return nil, fmt.Errorf("%w: ending possession with none open", ErrInvariant)
	}
	ep := t.current
	ep.open = false
	t.current = nil
	return ep, nil
}

// Count returns how many episodes the team has opened so far.
func (t *Tracker) Count(team model.Team) int {
	return t.counts[team]
}

// Total returns how many episodes have been opened in the match.
func (t *Tracker) Total() int {
	return t.seq
}
