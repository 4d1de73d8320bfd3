// Package agent implements the per-tick decision core of a capture-the-flag
// agent: fusing local observations into a team-shared belief, choosing a
// target, planning a path to it and deriving the single emitted action.
package agent

import (
	engine "github.com/JDasic01/AgentTournament/engine"
)

// Role is the purpose behind an agent's current target.
type Role uint8

const (
	RoleExplore Role = iota // 0: walk toward the farthest unknown cell
	RoleAttack              // 1: go for the enemy flag
	RoleReturn              // 2: carry the enemy flag home
	RoleGuard               // 3: defend the own flag
)

var roleNames = [...]string{"explore", "attack", "return", "guard"}

func (r Role) String() string {
	if int(r) >= len(roleNames) {
		return "invalid"
	}
	return roleNames[r]
}

// Assignment records the goal an agent is pursuing and what the belief grid
// showed when it was chosen. It stays valid only while the grid still shows
// Expected at Target and the enemy flag belief is unchanged.
type Assignment struct {
	Role           Role        `json:"role"`
	Target         engine.Cell `json:"target"`
	Expected       engine.Tile `json:"expected"`
	EnemyFlag      engine.Cell `json:"enemy_flag"`
	EnemyFlagKnown bool        `json:"enemy_flag_known"`
}

// TeamState is everything one team shares between ticks. Every agent of the
// team reads and rewrites it as a whole through a Store.
type TeamState struct {
	Grid        engine.Grid            `json:"grid"`
	Agents      map[string]engine.Cell `json:"agents"`      // last reported cell per live agent
	Assignments map[string]Assignment  `json:"assignments"` // current target per agent
	Guard       string                 `json:"guard,omitempty"`
	Version     uint64                 `json:"version"` // bumped on every observation
}

// NewTeamState returns an all-Unknown state sized to world.
func NewTeamState(world engine.World) *TeamState {
	st := &TeamState{}
	st.ensure(world)
	return st
}

// ensure sizes the grid to world and allocates the maps. A state written for
// different dimensions is discarded.
func (s *TeamState) ensure(world engine.World) {
	if s.Grid.Height != world.BeliefRows() || s.Grid.Width != world.BeliefCols() ||
		len(s.Grid.Tiles) != s.Grid.Height*s.Grid.Width {
		s.Grid = world.NewBeliefGrid()
		s.Agents = nil
		s.Assignments = nil
		s.Guard = ""
	}
	if s.Agents == nil {
		s.Agents = make(map[string]engine.Cell)
	}
	if s.Assignments == nil {
		s.Assignments = make(map[string]Assignment)
	}
}

// Clone returns a deep copy of s.
func (s *TeamState) Clone() *TeamState {
	out := &TeamState{
		Grid:        s.Grid.Clone(),
		Agents:      make(map[string]engine.Cell, len(s.Agents)),
		Assignments: make(map[string]Assignment, len(s.Assignments)),
		Guard:       s.Guard,
		Version:     s.Version,
	}
	for k, v := range s.Agents {
		out.Agents[k] = v
	}
	for k, v := range s.Assignments {
		out.Assignments[k] = v
	}
	return out
}

// forget removes every trace of agent id except what the grid shows.
func (s *TeamState) forget(id string) {
	delete(s.Agents, id)
	delete(s.Assignments, id)
	if s.Guard == id {
		s.Guard = ""
	}
}
