// Package pitch models the 4x5 zone grid of the playing field. Rows A..D
// encode depth (A is the home side's own third, D the home attacking third),
// columns 1..5 encode width. Everything here is pure and stateless.
package pitch

import (
	"fmt"

	"github.com/okian/matchlog/internal/domain/model"
)

const (
	minRow = 'A'
	maxRow = 'D'
	minCol = 1
	maxCol = 5

	// nearDistance is the Manhattan distance within which two zones are
	// considered close enough for pressure and defensive duels.
	nearDistance = 2
)

// Zone is one cell of the grid.
type Zone struct {
	Row byte // 'A'..'D'
	Col int  // 1..5
}

// Kickoff is the center-of-field zone used for restarts and team-level records.
var Kickoff = Zone{Row: 'C', Col: 3}

// Valid reports whether the zone is on the board.
func (z Zone) Valid() bool {
	return z.Row >= minRow && z.Row <= maxRow && z.Col >= minCol && z.Col <= maxCol
}

// String renders the zone as e.g. "C3".
func (z Zone) String() string {
	return fmt.Sprintf("%c%d", z.Row, z.Col)
}

// Parse converts "C3" style identifiers back into a Zone.
func Parse(s string) (Zone, error) {
	if len(s) != 2 {
		return Zone{}, fmt.Errorf("zone %q: must be row letter plus column digit", s)
	}
	z := Zone{Row: s[0], Col: int(s[1] - '0')}
	if !z.Valid() {
		return Zone{}, fmt.Errorf("zone %q: out of range", s)
	}
	return z, nil
}

// MustParse is Parse for static zone literals; it panics on bad input.
func MustParse(s string) Zone {
	z, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return z
}

// All lists every zone in fixed board order (A1..A5, B1..B5, ...). The order
// matters: deterministic iteration keeps seeded matches reproducible.
var All = func() []Zone {
	zones := make([]Zone, 0, 20)
	for r := byte(minRow); r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			zones = append(zones, Zone{Row: r, Col: c})
		}
	}
	return zones
}()

// Distance is the Manhattan distance between two zones.
func Distance(a, b Zone) int {
	dr := int(a.Row) - int(b.Row)
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// Near reports whether b is close enough to a to contest the ball.
func Near(a, b Zone) bool {
	return Distance(a, b) <= nearDistance
}

// NearbyZones returns all zones near z, in board order, z included.
func NearbyZones(z Zone) []Zone {
	var near []Zone
	for _, other := range All {
		if Near(z, other) {
			near = append(near, other)
		}
	}
	return near
}

// Depth classifies a zone relative to a team's attacking direction.
type Depth int

const (
	DepthDefensive Depth = iota
	DepthMiddle
	DepthAttacking
)

// DepthFor returns the zone's depth from the given team's perspective.
// Home attacks toward row D, Away toward row A. The forward half of the
// board counts as attacking, matching where shots become worthwhile.
func DepthFor(z Zone, team model.Team) Depth {
	row := z.Row
	if team == model.TeamAway {
		row = flipRow(row)
	}
	switch row {
	case 'A':
		return DepthDefensive
	case 'B':
		return DepthMiddle
	default: // 'C', 'D'
		return DepthAttacking
	}
}

// Channel is the lateral band of a zone.
type Channel int

const (
	ChannelLeft Channel = iota
	ChannelCenter
	ChannelRight
)

// ChannelOf classifies a zone's width band.
func ChannelOf(z Zone) Channel {
	switch {
	case z.Col <= 2:
		return ChannelLeft
	case z.Col == 3:
		return ChannelCenter
	default:
		return ChannelRight
	}
}

// Advance moves one row toward the opposing goal, staying in the same column.
// At the final row the zone is returned unchanged.
func Advance(z Zone, team model.Team) Zone {
	if team == model.TeamHome {
		if z.Row < maxRow {
			z.Row++
		}
		return z
	}
	if z.Row > minRow {
		z.Row--
	}
	return z
}

// flipRow mirrors a row for the away team's perspective: A<->D, B<->C.
func flipRow(r byte) byte {
	return maxRow - (r - minRow)
}
