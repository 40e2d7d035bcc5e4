// Package engine runs the match: a fixed-tick clock that activates all 22
// agents in a deterministic order, resolves their actions against a single
// seeded generator, and appends the resulting event records. The record
// sequence is append-only; exports and stats are projections over it.
package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/okian/matchlog/internal/domain/agent"
	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/internal/domain/pitch"
	"github.com/okian/matchlog/internal/domain/possession"
	"github.com/okian/matchlog/pkg/logger"
	"github.com/okian/matchlog/pkg/metrics"
)

const (
	// tickDuration is the simulated time one tick covers.
	tickDuration   = 6 * time.Second
	ticksPerMinute = 10

	// defensiveAttemptBase gates how often a nearby opponent challenges the
	// carrier, scaled by the defender's defending attribute.
	defensiveAttemptBase = 0.08

	// driftChance is the per-tick probability an off-ball player repositions.
	driftChance = 0.3

	// goalXG is the expected-goals value credited to a Goal record.
	goalXG = 1.0

	matchIDMin  = 1000
	matchIDSpan = 9000
)

// Engine owns all mutable match state. It is single-threaded: one Run per
// Engine, no concurrent mutation anywhere.
type Engine struct {
	durationMinutes int
	homeFormation   string
	awayFormation   string
	seed            int64
	kickoffTime     time.Time
	log             logger.Logger

	rng     *rand.Rand
	matchID int
	players []*agent.Player // home then away, ascending jersey
	tracker *possession.Tracker

	records      []model.EventRecord
	homeScore    int
	awayScore    int
	carrier      *agent.Player
	ballZone     pitch.Zone
	restartTeam  model.Team
	elapsedTicks int
	running      bool
}

// Result is the completed match: final state plus the full event sequence.
type Result struct {
	MatchID        int
	HomeScore      int
	AwayScore      int
	ElapsedMinutes float64
	Possessions    int
	Records        []model.EventRecord
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSeed sets the match random seed. A fixed seed reproduces an identical
// event log bit-for-bit.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithDuration sets the match length in simulated minutes.
func WithDuration(minutes int) Option {
	return func(e *Engine) { e.durationMinutes = minutes }
}

// WithFormations sets the home and away formations, e.g. "4-4-2".
func WithFormations(home, away string) Option {
	return func(e *Engine) {
		if home != "" {
			e.homeFormation = home
		}
		if away != "" {
			e.awayFormation = away
		}
	}
}

// WithKickoffTime anchors record timestamps. It must be fixed, not wall
// clock, for reproducibility.
func WithKickoffTime(t time.Time) Option {
	return func(e *Engine) {
		if !t.IsZero() {
			e.kickoffTime = t
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New validates the configuration and builds both lineups. Configuration
// failures are reported before any tick runs.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		durationMinutes: 90,
		homeFormation:   "4-4-2",
		awayFormation:   "4-3-3",
		seed:            1,
		kickoffTime:     time.Date(2025, time.May, 17, 15, 0, 0, 0, time.UTC),
		restartTeam:     model.TeamHome,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Get().Named("engine")
	}

	if e.durationMinutes < 0 {
		return nil, fmt.Errorf("%w: duration %d minutes is negative", ErrInvalidConfig, e.durationMinutes)
	}

	e.rng = rand.New(rand.NewSource(e.seed)) //nolint:gosec // reproducibility requires a seeded generator
	e.matchID = matchIDMin + e.rng.Intn(matchIDSpan)
	e.tracker = possession.NewTracker(e.matchID)

	home, err := buildTeam(e.rng, model.TeamHome, e.homeFormation)
	if err != nil {
		return nil, err
	}
	away, err := buildTeam(e.rng, model.TeamAway, e.awayFormation)
	if err != nil {
		return nil, err
	}
	e.players = append(home, away...)
	e.ballZone = pitch.Kickoff
	return e, nil
}

// MatchID returns the generated match identifier.
func (e *Engine) MatchID() int {
	return e.matchID
}

// Running reports whether ticks are still being processed.
func (e *Engine) Running() bool {
	return e.running
}

// Run simulates the match to completion and returns the final state with the
// full event sequence. Invariant violations abort the match and propagate.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	totalTicks := e.durationMinutes * ticksPerMinute

	e.log.Info(ctx, "match starting",
		logger.Int("matchID", e.matchID),
		logger.Int("durationMinutes", e.durationMinutes),
		logger.Int64("seed", e.seed),
		logger.String("homeFormation", e.homeFormation),
		logger.String("awayFormation", e.awayFormation),
	)

	e.running = true
	for e.elapsedTicks < totalTicks {
		if err := ctx.Err(); err != nil {
			e.running = false
			return nil, fmt.Errorf("match aborted: %w", err)
		}
		ts := e.kickoffTime.Add(time.Duration(e.elapsedTicks) * tickDuration)
		if err := e.tick(ts); err != nil {
			e.running = false
			return nil, err
		}
		e.elapsedTicks++
	}
	e.running = false

	metrics.RecordMatchCompleted()
	metrics.ObserveMatchRun(time.Since(started).Seconds())

	e.log.Info(ctx, "match finished",
		logger.Int("matchID", e.matchID),
		logger.Int("homeScore", e.homeScore),
		logger.Int("awayScore", e.awayScore),
		logger.Int("events", len(e.records)),
		logger.Int("possessions", e.tracker.Total()),
	)

	return &Result{
		MatchID:        e.matchID,
		HomeScore:      e.homeScore,
		AwayScore:      e.awayScore,
		ElapsedMinutes: float64(e.elapsedTicks) / ticksPerMinute,
		Possessions:    e.tracker.Total(),
		Records:        e.records,
	}, nil
}

// tick activates every agent once, home before away, ascending jersey. An
// agent late in the order sees state already mutated earlier in the tick.
func (e *Engine) tick(ts time.Time) error {
	if e.tracker.Current() == nil {
		if err := e.startPossession(ts); err != nil {
			return err
		}
	}

	for _, p := range e.players {
		p.Tire()
		switch {
		case p == e.carrier:
			if err := e.actOnBall(p, ts); err != nil {
				return err
			}
		case e.tracker.Current() != nil &&
			p.Team != e.tracker.Current().Team &&
			pitch.Near(p.Zone, e.ballZone):
			if err := e.defend(p, ts); err != nil {
				return err
			}
		default:
			e.drift(p)
		}
	}
	return nil
}

// startPossession opens a new episode for the restart team: kickoff, or the
// restart after a dead ball. A midfielder is the preferred starter.
func (e *Engine) startPossession(ts time.Time) error {
	team := e.restartTeam
	if _, err := e.tracker.Start(team, ts); err != nil {
		return err
	}
	metrics.RecordPossession(string(team))

	starter := e.pickStarter(team)
	e.setCarrier(starter)

	e.append(model.EventRecord{
		Timestamp: ts,
		Team:      team,
		Action:    model.ActionPossessionStart,
		Zone:      pitch.Kickoff.String(),
		Outcome:   model.OutcomeSuccess,
	})

	if err := e.tracker.Touch(starter.Jersey); err != nil {
		return err
	}
	e.append(model.EventRecord{
		Timestamp: ts,
		Team:      team,
		PlayerID:  starter.Jersey,
		Action:    model.ActionBallRecovery,
		Zone:      starter.Zone.String(),
		Outcome:   model.OutcomeSuccess,
	})
	return nil
}

// actOnBall lets the carrier choose and execute one action.
func (e *Engine) actOnBall(p *agent.Player, ts time.Time) error {
	pressure := e.pressureOn(p)
	decision := p.DecideOnBall(e.rng, agent.Situation{
		Pressure: pressure,
		Depth:    pitch.DepthFor(p.Zone, p.Team),
	})

	if err := e.tracker.Touch(p.Jersey); err != nil {
		return err
	}

	switch decision.Action {
	case model.ActionShot:
		return e.resolveShot(p, decision, pressure, ts)

	case model.ActionPass:
		e.append(model.EventRecord{
			Timestamp: ts,
			Team:      p.Team,
			PlayerID:  p.Jersey,
			Action:    model.ActionPass,
			Zone:      p.Zone.String(),
			Pressure:  binaryPressure(pressure),
			Outcome:   decision.Outcome,
		})
		if decision.Outcome == model.OutcomeSuccess {
			if target := e.pickPassTarget(p); target != nil {
				target.Zone = e.nearbyZone(p.Zone)
				e.setCarrier(target)
			}
			return nil
		}
		// Intercepted: the opposition wins the ball where it was lost.
		return e.turnover(ts, nil)

	case model.ActionDribble:
		e.append(model.EventRecord{
			Timestamp: ts,
			Team:      p.Team,
			PlayerID:  p.Jersey,
			Action:    model.ActionDribble,
			Zone:      p.Zone.String(),
			Pressure:  binaryPressure(pressure),
			Outcome:   decision.Outcome,
		})
		if decision.Outcome == model.OutcomeSuccess {
			p.Zone = pitch.Advance(p.Zone, p.Team)
			e.ballZone = p.Zone
			return nil
		}
		return e.turnover(ts, nil)

	case model.ActionClearance:
		e.append(model.EventRecord{
			Timestamp: ts,
			Team:      p.Team,
			PlayerID:  p.Jersey,
			Action:    model.ActionClearance,
			Zone:      p.Zone.String(),
			Pressure:  binaryPressure(pressure),
			Outcome:   decision.Outcome,
		})
		// Ball surrendered downfield; opposition restarts next tick.
		return e.deadBall(ts, p.Team.Opponent())

	default:
		return fmt.Errorf("unresolvable on-ball action %q", decision.Action)
	}
}

// resolveShot plays out a shot: the draw decides whether it is on target,
// then the opposing goalkeeper gets a save attempt.
func (e *Engine) resolveShot(p *agent.Player, decision agent.Decision, pressure float64, ts time.Time) error {
	xg := round3(pitch.XG(p.Zone, p.Team))
	e.append(model.EventRecord{
		Timestamp: ts,
		Team:      p.Team,
		PlayerID:  p.Jersey,
		Action:    model.ActionShot,
		Zone:      p.Zone.String(),
		Pressure:  binaryPressure(pressure),
		Outcome:   decision.Outcome,
		XGChange:  xg,
	})

	defending := p.Team.Opponent()
	if decision.Outcome == model.OutcomeFailure {
		// Off target. Goal kick: defenders restart.
		return e.deadBall(ts, defending)
	}

	gk := e.goalkeeper(defending)
	saved := e.rng.Float64() < gk.SaveProbability()
	saveOutcome := model.OutcomeFailure
	if saved {
		saveOutcome = model.OutcomeSuccess
	}
	e.append(model.EventRecord{
		Timestamp: ts,
		Team:      defending,
		PlayerID:  gk.Jersey,
		Action:    model.ActionSave,
		Zone:      gk.Zone.String(),
		Outcome:   saveOutcome,
	})

	if saved {
		return e.deadBall(ts, defending)
	}

	// Goal: score first so the record's team_status reflects it.
	if p.Team == model.TeamHome {
		e.homeScore++
	} else {
		e.awayScore++
	}
	metrics.RecordGoal(string(p.Team))
	e.append(model.EventRecord{
		Timestamp: ts,
		Team:      p.Team,
		PlayerID:  p.Jersey,
		Action:    model.ActionGoal,
		Zone:      p.Zone.String(),
		Outcome:   model.OutcomeSuccess,
		XGChange:  goalXG,
	})
	// Kickoff goes to the conceding side.
	return e.deadBall(ts, defending)
}

// defend gives a nearby opponent a gated chance to challenge the carrier.
func (e *Engine) defend(p *agent.Player, ts time.Time) error {
	gate := defensiveAttemptBase * float64(p.Attr.Defending) / 100
	if e.rng.Float64() >= gate {
		e.drift(p)
		return nil
	}

	pressure := e.pressureOn(p)
	decision := p.DecideDefensive(e.rng, pressure)
	attacking := e.tracker.Current().Team

	e.append(model.EventRecord{
		Timestamp: ts,
		Team:      p.Team,
		PlayerID:  p.Jersey,
		Action:    decision.Action,
		Zone:      p.Zone.String(),
		Pressure:  binaryPressure(pressure),
		Outcome:   decision.Outcome,
	})

	switch {
	case decision.Action == model.ActionFoul:
		// Play stops; the fouled side restarts with a new possession.
		return e.deadBall(ts, attacking)
	case decision.Outcome == model.OutcomeSuccess:
		return e.turnover(ts, p)
	default:
		return nil
	}
}

// turnover closes the current episode and immediately opens one for the
// opposition. The tackle/interception that caused it is already logged under
// the ending episode; the recovery is logged under the new one.
func (e *Engine) turnover(ts time.Time, winner *agent.Player) error {
	losing := e.tracker.Current().Team
	e.append(model.EventRecord{
		Timestamp: ts,
		Team:      losing,
		Action:    model.ActionPossessionEnd,
		Zone:      pitch.Kickoff.String(),
		Outcome:   model.OutcomeSuccess,
	})
	if _, err := e.tracker.End(); err != nil {
		return err
	}

	gaining := losing.Opponent()
	if _, err := e.tracker.Start(gaining, ts); err != nil {
		return err
	}
	metrics.RecordPossession(string(gaining))
	e.append(model.EventRecord{
		Timestamp: ts,
		Team:      gaining,
		Action:    model.ActionPossessionStart,
		Zone:      pitch.Kickoff.String(),
		Outcome:   model.OutcomeSuccess,
	})

	if winner == nil {
		winner = e.pickReceiver(gaining)
	}
	e.setCarrier(winner)
	if err := e.tracker.Touch(winner.Jersey); err != nil {
		return err
	}
	e.append(model.EventRecord{
		Timestamp: ts,
		Team:      gaining,
		PlayerID:  winner.Jersey,
		Action:    model.ActionBallRecovery,
		Zone:      winner.Zone.String(),
		Outcome:   model.OutcomeSuccess,
	})
	return nil
}

// deadBall closes the current episode without opening a new one. Play
// resumes for nextTeam at the top of the next tick.
func (e *Engine) deadBall(ts time.Time, nextTeam model.Team) error {
	e.append(model.EventRecord{
		Timestamp: ts,
		Team:      e.tracker.Current().Team,
		Action:    model.ActionPossessionEnd,
		Zone:      pitch.Kickoff.String(),
		Outcome:   model.OutcomeSuccess,
	})
	if _, err := e.tracker.End(); err != nil {
		return err
	}
	e.clearCarrier()
	e.restartTeam = nextTeam
	return nil
}

// drift occasionally repositions an off-ball player. Not logged: positioning
// no-ops would otherwise add 22 records per tick. Goalkeepers hold their zone.
func (e *Engine) drift(p *agent.Player) {
	if p.Role == agent.RoleGoalkeeper {
		return
	}
	if e.rng.Float64() >= driftChance {
		return
	}
	nearby := pitch.NearbyZones(p.Zone)
	p.Zone = nearby[e.rng.Intn(len(nearby))]
}

// append finalizes a record with the possession and score context at the
// instant of the action, then appends it. Records are never edited after.
func (e *Engine) append(rec model.EventRecord) {
	rec.PossessionID = e.tracker.CurrentID()
	rec.TeamStatus = model.StatusOf(e.homeScore, e.awayScore)
	e.records = append(e.records, rec)
	metrics.RecordEventLogged(string(rec.Action))
}

// pressureOn grades how contested a player is by counting nearby opponents.
func (e *Engine) pressureOn(p *agent.Player) float64 {
	n := 0
	for _, q := range e.players {
		if q.Team != p.Team && pitch.Near(q.Zone, p.Zone) {
			n++
		}
	}
	pressure := 0.3 * float64(n)
	if pressure > 1 {
		pressure = 1
	}
	return pressure
}

// binaryPressure is the logged indicator: pressed or not.
func binaryPressure(graded float64) int {
	if graded > 0.5 {
		return 1
	}
	return 0
}

// pickStarter prefers a midfielder of the restarting team.
func (e *Engine) pickStarter(team model.Team) *agent.Player {
	var mids, all []*agent.Player
	for _, p := range e.players {
		if p.Team != team {
			continue
		}
		all = append(all, p)
		if p.Role == agent.RoleMidfielder {
			mids = append(mids, p)
		}
	}
	pool := mids
	if len(pool) == 0 {
		pool = all
	}
	return pool[e.rng.Intn(len(pool))]
}

// pickPassTarget chooses any teammate of the carrier.
func (e *Engine) pickPassTarget(p *agent.Player) *agent.Player {
	var mates []*agent.Player
	for _, q := range e.players {
		if q.Team == p.Team && q != p {
			mates = append(mates, q)
		}
	}
	if len(mates) == 0 {
		return nil
	}
	return mates[e.rng.Intn(len(mates))]
}

// pickReceiver chooses who wins a loose ball for team, preferring players
// near where it was lost.
func (e *Engine) pickReceiver(team model.Team) *agent.Player {
	var near, all []*agent.Player
	for _, p := range e.players {
		if p.Team != team {
			continue
		}
		all = append(all, p)
		if pitch.Near(p.Zone, e.ballZone) {
			near = append(near, p)
		}
	}
	pool := near
	if len(pool) == 0 {
		pool = all
	}
	return pool[e.rng.Intn(len(pool))]
}

// goalkeeper returns the team's keeper.
func (e *Engine) goalkeeper(team model.Team) *agent.Player {
	for _, p := range e.players {
		if p.Team == team && p.Role == agent.RoleGoalkeeper {
			return p
		}
	}
	// Lineups always include a goalkeeper; reaching here is a defect.
	panic("lineup without goalkeeper")
}

// setCarrier hands the ball to p and moves the ball zone with it.
func (e *Engine) setCarrier(p *agent.Player) {
	for _, q := range e.players {
		q.HasBall = false
	}
	p.HasBall = true
	e.carrier = p
	e.ballZone = p.Zone
}

// clearCarrier takes the ball out of play.
func (e *Engine) clearCarrier() {
	for _, q := range e.players {
		q.HasBall = false
	}
	e.carrier = nil
}

// nearbyZone picks a random zone close to z.
func (e *Engine) nearbyZone(z pitch.Zone) pitch.Zone {
	nearby := pitch.NearbyZones(z)
	return nearby[e.rng.Intn(len(nearby))]
}

// round3 keeps xg values at log precision.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
