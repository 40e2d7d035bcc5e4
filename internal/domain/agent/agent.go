// Package agent implements the autonomous player agents: position-specific
// attribute generation and the per-activation decision policy. All randomness
// comes from the match-scoped generator passed in by the scheduler; agents
// never own a generator of their own.
package agent

import (
	"math/rand"

	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/internal/domain/pitch"
)

// Role is a player's position role.
type Role string

const (
	RoleGoalkeeper Role = "GK"
	RoleDefender   Role = "DEF"
	RoleMidfielder Role = "MID"
	RoleForward    Role = "FWD"
)

// Attribute generation parameters.
const (
	attrBase   = 50
	attrStddev = 15
	attrMin    = 10
	attrMax    = 99

	// StaminaDecayPerTick is deducted from every player each tick. Stamina
	// never increases within a match.
	StaminaDecayPerTick = 0.1
)

// Attributes are a player's skills on a 0-100 scale.
type Attributes struct {
	Speed       int
	Passing     int
	Shooting    int
	Defending   int
	Dribbling   int
	Positioning int
}

// roleBonus shifts the generation mean per attribute for each role.
var roleBonus = map[Role]Attributes{
	RoleGoalkeeper: {Passing: -10, Shooting: -20, Defending: 20, Dribbling: -10, Positioning: 15},
	RoleDefender:   {Passing: 5, Shooting: -15, Defending: 25, Dribbling: -5, Positioning: 10},
	RoleMidfielder: {Passing: 20, Shooting: 0, Defending: 5, Dribbling: 10, Positioning: 5},
	RoleForward:    {Passing: 0, Shooting: 25, Defending: -15, Dribbling: 15, Positioning: 10},
}

// Player is one agent. Team plus Jersey is the stable identity used in logs.
type Player struct {
	Team    model.Team
	Jersey  int
	Role    Role
	Attr    Attributes
	Stamina float64
	Zone    pitch.Zone
	HasBall bool
}

// startingZones lists candidate kickoff positions per role from the home
// perspective; away players mirror them. Listed in fixed order so seeded
// selection stays deterministic.
var startingZones = map[Role][]string{
	RoleGoalkeeper: {"A3"},
	RoleDefender:   {"A1", "A2", "A4", "A5", "B2", "B4"},
	RoleMidfielder: {"B1", "B3", "B5", "C1", "C3", "C5"},
	RoleForward:    {"C2", "C4", "D1", "D3", "D5"},
}

// NewPlayer generates a player with role-biased attributes and a starting
// zone drawn from the match generator.
func NewPlayer(rng *rand.Rand, team model.Team, role Role, jersey int) *Player {
	bonus := roleBonus[role]
	p := &Player{
		Team:   team,
		Jersey: jersey,
		Role:   role,
		Attr: Attributes{
			Speed:       rollAttribute(rng, 0),
			Passing:     rollAttribute(rng, bonus.Passing),
			Shooting:    rollAttribute(rng, bonus.Shooting),
			Defending:   rollAttribute(rng, bonus.Defending),
			Dribbling:   rollAttribute(rng, bonus.Dribbling),
			Positioning: rollAttribute(rng, bonus.Positioning),
		},
		Stamina: 100,
	}

	candidates := startingZones[role]
	zone := pitch.MustParse(candidates[rng.Intn(len(candidates))])
	if team == model.TeamAway {
		zone = mirror(zone)
	}
	p.Zone = zone
	return p
}

// rollAttribute draws a normally distributed attribute around the role mean.
func rollAttribute(rng *rand.Rand, bonus int) int {
	v := int(rng.NormFloat64()*attrStddev) + attrBase + bonus
	if v < attrMin {
		v = attrMin
	}
	if v > attrMax {
		v = attrMax
	}
	return v
}

// mirror flips a zone to the away side of the pitch.
func mirror(z pitch.Zone) pitch.Zone {
	return pitch.Zone{Row: 'D' - (z.Row - 'A'), Col: z.Col}
}

// Tire reduces stamina by the per-tick decay, never below zero.
func (p *Player) Tire() {
	p.Stamina -= StaminaDecayPerTick
	if p.Stamina < 0 {
		p.Stamina = 0
	}
}

// ID returns the jersey number used in event records.
func (p *Player) ID() int {
	return p.Jersey
}
