package agent

import (
	"sort"

	engine "github.com/JDasic01/AgentTournament/engine"
)

// knownOwnAgents returns, sorted, the IDs of roster agents whose last
// reported cell still shows a teammate in the belief grid.
func knownOwnAgents(st *TeamState) []string {
	var ids []string
	for id, cell := range st.Agents {
		if st.Grid.At(cell).IsTeammate() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// AssignGuard maintains the team's guard. A guard needs at least two known
// own agents and a known own flag; the Manhattan-nearest agent to the flag is
// chosen and kept until it disappears from belief. With fewer than two known
// agents the guard and any guard assignment are cleared.
func AssignGuard(st *TeamState) {
	known := knownOwnAgents(st)
	if len(known) < 2 {
		st.Guard = ""
		for id, a := range st.Assignments {
			if a.Role == RoleGuard {
				delete(st.Assignments, id)
			}
		}
		return
	}

	if st.Guard != "" {
		if i := sort.SearchStrings(known, st.Guard); i < len(known) && known[i] == st.Guard {
			return
		}
		st.Guard = ""
	}

	flag, ok := OwnFlagCell(&st.Grid)
	if !ok {
		return
	}
	best, bestDist := "", -1
	for _, id := range known {
		d := st.Agents[id].Manhattan(flag)
		if bestDist < 0 || d < bestDist {
			best, bestDist = id, d
		}
	}
	st.Guard = best
}

// SelectTarget decides which cell agent id should pursue this tick and
// records it in st.Assignments. Roles are tried in order guard, return (when
// holding the flag), attack (when the enemy flag is known) and explore. A
// stored assignment is reused while it is still valid. ok is false when there
// is nothing to pursue.
func SelectTarget(st *TeamState, id string, pos engine.Cell, holdingFlag bool, rnd Rand) (Assignment, bool) {
	ownFlag, ownKnown := OwnFlagCell(&st.Grid)
	enemyFlag, enemyKnown := EnemyFlagCell(&st.Grid)

	var role Role
	switch {
	case st.Guard == id && ownKnown:
		role = RoleGuard
	case holdingFlag && ownKnown:
		role = RoleReturn
	case holdingFlag:
		role = RoleExplore
	case enemyKnown:
		role = RoleAttack
	default:
		role = RoleExplore
	}

	if prev, ok := st.Assignments[id]; ok && stillValid(st, prev, role, ownFlag, enemyFlag, enemyKnown) {
		return prev, true
	}

	next := Assignment{Role: role, EnemyFlag: enemyFlag, EnemyFlagKnown: enemyKnown}
	switch role {
	case RoleGuard, RoleReturn:
		next.Target = ownFlag
	case RoleAttack:
		next.Target = enemyFlag
	case RoleExplore:
		cell, ok := exploreTarget(&st.Grid, pos, ownFlag, ownKnown, rnd)
		if !ok {
			delete(st.Assignments, id)
			return Assignment{}, false
		}
		next.Target = cell
	}
	next.Expected = st.Grid.At(next.Target)
	st.Assignments[id] = next
	return next, true
}

func stillValid(st *TeamState, a Assignment, role Role, ownFlag, enemyFlag engine.Cell, enemyKnown bool) bool {
	if a.Role != role {
		return false
	}
	if st.Grid.At(a.Target) != a.Expected {
		return false
	}
	if a.EnemyFlagKnown != enemyKnown || (enemyKnown && a.EnemyFlag != enemyFlag) {
		return false
	}
	switch role {
	case RoleGuard, RoleReturn:
		return a.Target == ownFlag
	case RoleAttack:
		return a.Target == enemyFlag
	}
	return true
}

// exploreTarget picks the Unknown cell farthest from pos and, when known,
// from the own flag. Ties are broken by rnd.
func exploreTarget(g *engine.Grid, pos, ownFlag engine.Cell, ownKnown bool, rnd Rand) (engine.Cell, bool) {
	var best []engine.Cell
	bestScore := -1
	for _, c := range g.Positions(engine.TileUnknown) {
		score := pos.Manhattan(c)
		if ownKnown {
			score += ownFlag.Manhattan(c)
		}
		switch {
		case score > bestScore:
			best, bestScore = append(best[:0], c), score
		case score == bestScore:
			best = append(best, c)
		}
	}
	if len(best) == 0 {
		return engine.Cell{}, false
	}
	return best[pick(rnd, len(best))], true
}
