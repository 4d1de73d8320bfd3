// internal/game/team.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	engine "github.com/JDasic01/AgentTournament/engine"
	"github.com/JDasic01/AgentTournament/engine/agent"
)

// ErrBadObservation is returned for observations that cannot be decoded.
var ErrBadObservation = errors.New("bad observation")

// OnDecisionFunc is called after every decision a team's agent makes. key
// is the StoreKey of the episode the decision belongs to.
type OnDecisionFunc func(key, agentID string, d agent.Decision)

// Deleter is implemented by stores that can drop a team's state.
type Deleter interface {
	Delete(ctx context.Context, team string) error
}

// Team runs the agents of one colour for the current episode. Agents are
// created on their first observation and share belief through Store under
// StoreKey.
type Team struct {
	ID      uuid.UUID // Episode identifier, regenerated by Reset.
	Color   string
	World   engine.World
	Palette engine.Palette
	Store   agent.Store
	Seed    uint64 // 0 seeds agents randomly.

	Log        *logrus.Entry
	OnDecision OnDecisionFunc // Optional hook, e.g. the Redis action log.

	Mu      sync.Mutex
	agents  map[string]*agent.Agent
	started time.Time
}

// NewTeam creates a team for color with a fresh episode.
func NewTeam(color string, world engine.World, syms engine.Symbols, store agent.Store, log *logrus.Entry) (*Team, error) {
	palette, err := syms.Palette(color)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	t := &Team{
		ID:      uuid.New(),
		Color:   color,
		World:   world,
		Palette: palette,
		Store:   store,
		agents:  make(map[string]*agent.Agent),
		started: time.Now(),
	}
	t.Log = log.WithField("color", color)
	return t, nil
}

// StoreKey is the key the team's shared belief lives under. Callers other
// than the team itself must not race it with Reset.
func (t *Team) StoreKey() string { return t.Color + ":" + t.ID.String() }

// Episode returns the current episode ID.
func (t *Team) Episode() uuid.UUID {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.ID
}

// Agent returns the agent registered as id, creating it if needed.
func (t *Team) Agent(id string) *agent.Agent {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.agentLocked(id)
}

func (t *Team) agentLocked(id string) *agent.Agent {
	if a, ok := t.agents[id]; ok {
		return a
	}
	log := t.Log.WithFields(logrus.Fields{"agent": id, "team": t.StoreKey(), "episode": t.ID.String()})
	opts := []agent.Option{agent.WithLogger(log)}
	if t.Seed != 0 {
		// Stable per agent so a seeded run replays identically.
		opts = append(opts, agent.WithRand(rand.New(rand.NewPCG(t.Seed, xxhash.Sum64String(id)))))
	}
	a := agent.NewAgent(id, t.StoreKey(), t.World, t.Store, opts...)
	t.agents[id] = a
	log.Info("agent joined")
	return a
}

// Agents lists the IDs of the registered agents in sorted order.
func (t *Team) Agents() []string {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	ids := make([]string, 0, len(t.agents))
	for id := range t.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Observe decodes a raw window for agent id and returns its decision. A
// store failure still yields a usable decision alongside the error.
func (t *Team) Observe(ctx context.Context, id string, rows [][]string, x, y int, canShoot, holdingFlag bool) (agent.Decision, error) {
	if err := t.checkWindow(rows); err != nil {
		return agent.Decision{}, err
	}
	window, unknown := t.Palette.DecodeWindow(rows)
	if unknown > 0 {
		t.Log.WithFields(logrus.Fields{"agent": id, "symbols": unknown}).Debug("unrecognised symbols treated as unknown")
	}

	a := t.Agent(id)
	d, err := a.Observe(ctx, agent.Observation{
		Window:      window,
		X:           x,
		Y:           y,
		CanShoot:    canShoot,
		HoldingFlag: holdingFlag,
	})
	if t.OnDecision != nil {
		t.OnDecision(a.Team, id, d)
	}
	return d, err
}

func (t *Team) checkWindow(rows [][]string) error {
	size := t.World.WindowSize
	if len(rows) != size {
		return fmt.Errorf("%w: window has %d rows, want %d", ErrBadObservation, len(rows), size)
	}
	for i, row := range rows {
		if len(row) != size {
			return fmt.Errorf("%w: window row %d has %d cells, want %d", ErrBadObservation, i, len(row), size)
		}
	}
	return nil
}

// Terminate reports that agent id left the game and unregisters it.
func (t *Team) Terminate(ctx context.Context, id string, reason agent.Reason) error {
	t.Mu.Lock()
	a, ok := t.agents[id]
	delete(t.agents, id)
	key := t.StoreKey()
	t.Mu.Unlock()

	if !ok {
		// Never observed; still make sure a stale roster entry goes away.
		a = agent.NewAgent(id, key, t.World, t.Store, agent.WithLogger(t.Log.WithFields(logrus.Fields{"agent": id, "team": key})))
	}
	return a.Terminate(ctx, reason)
}

// Reset starts a new episode: agents are dropped and the old shared belief
// is deleted when the store supports it.
func (t *Team) Reset(ctx context.Context) (uuid.UUID, error) {
	t.Mu.Lock()
	oldKey := t.StoreKey()
	lasted := time.Since(t.started)
	t.ID = uuid.New()
	t.agents = make(map[string]*agent.Agent)
	t.started = time.Now()
	id := t.ID
	t.Mu.Unlock()

	t.Log.WithFields(logrus.Fields{"episode": id.String(), "previous": oldKey, "lasted": lasted.Round(time.Millisecond)}).Info("episode reset")
	if d, ok := t.Store.(Deleter); ok {
		if err := d.Delete(ctx, oldKey); err != nil {
			return id, fmt.Errorf("drop previous episode: %w", err)
		}
	}
	return id, nil
}

// Render draws the team's current shared belief.
func (t *Team) Render(ctx context.Context) ([]string, error) {
	t.Mu.Lock()
	key := t.StoreKey()
	t.Mu.Unlock()
	st, err := t.Store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return t.Palette.Render(&st.Grid), nil
}

// Registry holds one Team per colour.
type Registry struct {
	World engine.World
	Syms  engine.Symbols
	Store agent.Store
	Seed  uint64
	Log   *logrus.Entry

	OnDecision OnDecisionFunc

	mu    sync.Mutex
	teams map[string]*Team
}

// NewRegistry creates an empty registry.
func NewRegistry(world engine.World, syms engine.Symbols, store agent.Store, log *logrus.Entry) *Registry {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Registry{
		World: world,
		Syms:  syms,
		Store: store,
		Log:   log,
		teams: make(map[string]*Team),
	}
}

// Team returns the team for color, creating it on first use.
func (r *Registry) Team(color string) (*Team, error) {
	if _, err := engine.Opponent(color); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.teams[color]; ok {
		return t, nil
	}
	t, err := NewTeam(color, r.World, r.Syms, r.Store, r.Log)
	if err != nil {
		return nil, err
	}
	t.Seed = r.Seed
	t.OnDecision = r.OnDecision
	r.teams[color] = t
	return t, nil
}
