package agent

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	engine "github.com/JDasic01/AgentTournament/engine"
)

// Reason explains why an agent left the game.
type Reason string

const (
	ReasonDied Reason = "died"
)

// Observation is what the simulation hands an agent on one tick.
type Observation struct {
	Window      engine.Window
	X, Y        int // raw simulation position, border included
	CanShoot    bool
	HoldingFlag bool
}

// Logger receives an agent's diagnostics. A *logrus.Entry satisfies it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}

// Decision is the outcome of one tick. Action is always valid.
type Decision struct {
	Action    engine.Action
	Role      Role
	Target    engine.Cell
	HasTarget bool
	Path      []engine.Cell
}

// Agent makes decisions for one team member. Calls to Observe and Terminate
// on the same Agent are serialized; different agents of a team coordinate
// through the shared Store.
type Agent struct {
	ID    string
	Team  string // store key shared by the whole team
	World engine.World

	store Store
	log   Logger

	mu    sync.Mutex
	rnd   Rand
	local *TeamState // last state this agent saw, used when the store fails
	last  engine.Cell
	seen  bool
}

// Option configures an Agent.
type Option func(*Agent)

// WithRand sets the source of random choices.
func WithRand(r Rand) Option { return func(a *Agent) { a.rnd = r } }

// WithLogger sets where the agent writes diagnostics. The caller is
// expected to have tagged l with the agent and team already.
func WithLogger(l Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.log = l
		}
	}
}

// NewAgent creates an agent that shares belief with its team through store.
func NewAgent(id, team string, world engine.World, store Store, opts ...Option) *Agent {
	a := &Agent{
		ID:    id,
		Team:  team,
		World: world,
		store: store,
		rnd:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:   nopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Observe fuses obs into the team belief, picks a target, plans toward it
// and returns the action for this tick. The returned decision is usable even
// when err is non-nil: a store failure only means the decision was made on
// this agent's last local copy of the team state.
func (a *Agent) Observe(ctx context.Context, obs Observation) (Decision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pos := a.World.BeliefCell(obs.X, obs.Y)

	var (
		snapshot engine.Grid
		asg      Assignment
		ok       bool
	)
	tick := func(st *TeamState) error {
		st.ensure(a.World)
		a.fuse(st, obs, pos)
		AssignGuard(st)
		asg, ok = SelectTarget(st, a.ID, pos, obs.HoldingFlag, a.rnd)
		snapshot = st.Grid.Clone()
		a.local = st.Clone()
		return nil
	}

	storeErr := a.store.Update(ctx, a.Team, tick)
	if storeErr != nil {
		a.log.Warnf("shared belief unavailable, deciding on local copy: %v", storeErr)
		st := a.local
		if st == nil {
			st = NewTeamState(a.World)
		}
		_ = tick(st)
		storeErr = fmt.Errorf("update team %s: %w", a.Team, storeErr)
	}
	a.last, a.seen = pos, true

	d := Decision{Role: asg.Role, Target: asg.Target, HasTarget: ok}
	if ok {
		d.Path = Plan(&snapshot, pos, asg.Target)
	}
	d.Action = Synthesize(&snapshot, d.Path, pos, obs.CanShoot, a.rnd)

	a.log.Debugf("decided at %v: role=%s target=%v path=%d action=%s",
		pos, d.Role, d.Target, len(d.Path), d.Action)
	return d, storeErr
}

// fuse merges the observation into st and records where this agent stands.
func (a *Agent) fuse(st *TeamState, obs Observation, pos engine.Cell) {
	ApplyObservation(&st.Grid, obs.Window, pos)

	// A respawn or teleport leaves the old cell outside the window; nobody
	// else vouches for it unless another roster agent stands there.
	if prev, ok := st.Agents[a.ID]; ok && prev != pos && st.Grid.At(prev).IsTeammate() && !occupiedByOther(st, a.ID, prev) {
		if !obs.Window.Bounds(pos).Contains(prev) {
			st.Grid.Set(prev, engine.TileEmpty)
		}
	}

	self := engine.TileOwnAgent
	if obs.HoldingFlag {
		self = engine.TileOwnAgentWithFlag
	}
	st.Grid.Set(pos, self)
	st.Agents[a.ID] = pos
	st.Version++
}

func occupiedByOther(st *TeamState, id string, c engine.Cell) bool {
	for other, cell := range st.Agents {
		if other != id && cell == c {
			return true
		}
	}
	return false
}

// Terminate tells the agent it has left the game. On death the agent's last
// cell is cleared in the shared belief, since it can no longer vouch for it.
func (a *Agent) Terminate(ctx context.Context, reason Reason) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.log.Infof("terminated: %s", reason)
	if reason != ReasonDied {
		return nil
	}

	err := a.store.Update(ctx, a.Team, func(st *TeamState) error {
		st.ensure(a.World)
		cell, ok := st.Agents[a.ID]
		if !ok && a.seen {
			cell, ok = a.last, true
		}
		if ok && st.Grid.At(cell).IsTeammate() {
			st.Grid.Set(cell, engine.TileEmpty)
		}
		st.forget(a.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("terminate %s: %w", a.ID, err)
	}
	return nil
}
