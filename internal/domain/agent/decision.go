package agent

import (
	"math/rand"

	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/internal/domain/pitch"
)

// Success probability model.
const (
	// probFloor keeps every action winnable: stamina and pressure degrade a
	// player, they never disable one.
	probFloor   = 0.10
	probCeiling = 0.95

	// pressurePenalty scales how much graded pressure reduces success odds.
	pressurePenalty = 0.3

	// shotBaseScale makes shots inherently harder than passes or dribbles.
	shotBaseScale = 0.3

	// clearanceBase is attribute-independent; clearances usually come off.
	clearanceBase = 0.8
)

// Action weighting constants.
const (
	passPressureBias     = 0.5 // passing preferred under pressure
	dribblePressureBias  = 0.3 // dribbling harder under pressure
	clearanceWeight      = 40  // scaled by pressure
	foulWeight           = 10
	attackingZoneShotMod = 1.8
)

// shotRoleMod biases shot selection by role.
var shotRoleMod = map[Role]float64{
	RoleForward:    1.5,
	RoleMidfielder: 1.0,
	RoleDefender:   0.3,
	RoleGoalkeeper: 0.1,
}

// Situation is the game context an agent reads when deciding.
type Situation struct {
	Pressure float64 // graded opponent pressure in [0,1]
	Depth    pitch.Depth
}

// Decision is one chosen action with its resolved outcome.
type Decision struct {
	Action      model.Action
	Outcome     model.Outcome
	SuccessProb float64
}

// SuccessProbability computes the odds of an action succeeding given the
// governing attribute, remaining stamina and graded pressure. Monotonic:
// higher attribute raises it, higher pressure lowers it.
func SuccessProbability(action model.Action, attr Attributes, stamina, pressure float64) float64 {
	var base float64
	switch action {
	case model.ActionPass:
		base = float64(attr.Passing) / 100
	case model.ActionDribble:
		base = float64(attr.Dribbling) / 100
	case model.ActionShot:
		base = float64(attr.Shooting) / 100 * shotBaseScale
	case model.ActionClearance:
		base = clearanceBase
	case model.ActionTackle:
		base = float64(attr.Defending) / 100 * 0.6
	case model.ActionInterception:
		base = float64(attr.Positioning) / 100 * 0.5
	default:
		base = 0.5
	}

	p := base*(stamina/100) - pressure*pressurePenalty
	if p < probFloor {
		p = probFloor
	}
	if p > probCeiling {
		p = probCeiling
	}
	return p
}

// DecideOnBall picks and resolves one action for the ball carrier.
func (p *Player) DecideOnBall(rng *rand.Rand, sit Situation) Decision {
	type candidate struct {
		action model.Action
		weight float64
	}

	candidates := []candidate{
		{model.ActionPass, float64(p.Attr.Passing) * (1 + passPressureBias*sit.Pressure)},
		{model.ActionDribble, float64(p.Attr.Dribbling) * (1 - dribblePressureBias*sit.Pressure)},
	}
	if sit.Depth == pitch.DepthAttacking {
		candidates = append(candidates, candidate{
			model.ActionShot,
			float64(p.Attr.Shooting) * shotRoleMod[p.Role] * attackingZoneShotMod,
		})
	}
	if p.Role == RoleDefender || p.Role == RoleGoalkeeper {
		candidates = append(candidates, candidate{model.ActionClearance, clearanceWeight * sit.Pressure})
	}

	var total float64
	for _, c := range candidates {
		total += c.weight
	}
	action := candidates[len(candidates)-1].action
	if total <= 0 {
		action = candidates[rng.Intn(len(candidates))].action
	} else {
		r := rng.Float64() * total
		acc := 0.0
		for _, c := range candidates {
			acc += c.weight
			if r < acc {
				action = c.action
				break
			}
		}
	}

	return p.resolve(rng, action, sit.Pressure)
}

// DecideDefensive picks and resolves one defensive action against the
// carrier: tackle, interception, or a foul that stops play.
func (p *Player) DecideDefensive(rng *rand.Rand, pressure float64) Decision {
	type candidate struct {
		action model.Action
		weight float64
	}
	candidates := []candidate{
		{model.ActionTackle, float64(p.Attr.Defending)},
		{model.ActionInterception, float64(p.Attr.Positioning)},
		{model.ActionFoul, foulWeight},
	}

	var total float64
	for _, c := range candidates {
		total += c.weight
	}
	r := rng.Float64() * total
	action := candidates[len(candidates)-1].action
	acc := 0.0
	for _, c := range candidates {
		acc += c.weight
		if r < acc {
			action = c.action
			break
		}
	}

	if action == model.ActionFoul {
		// A foul always "succeeds" at stopping play.
		return Decision{Action: action, Outcome: model.OutcomeSuccess, SuccessProb: 1}
	}
	return p.resolve(rng, action, pressure)
}

// SaveProbability is the goalkeeper's chance of stopping a shot on target.
func (p *Player) SaveProbability() float64 {
	base := (float64(p.Attr.Defending) + float64(p.Attr.Positioning)) / 200
	prob := base * (p.Stamina / 100)
	if prob < probFloor {
		prob = probFloor
	}
	if prob > probCeiling {
		prob = probCeiling
	}
	return prob
}

// resolve draws the stochastic outcome for a chosen action.
func (p *Player) resolve(rng *rand.Rand, action model.Action, pressure float64) Decision {
	prob := SuccessProbability(action, p.Attr, p.Stamina, pressure)
	outcome := model.OutcomeFailure
	if rng.Float64() < prob {
		outcome = model.OutcomeSuccess
	}
	return Decision{Action: action, Outcome: outcome, SuccessProb: prob}
}
