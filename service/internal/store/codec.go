// Package store provides shared-belief backends for agent.Store: Redis for
// fast cross-process sharing within an episode and PostgreSQL for durable
// team state.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JDasic01/AgentTournament/engine/agent"
)

// ErrConflict is returned when an optimistic update keeps losing races.
var ErrConflict = errors.New("store: too many concurrent updates")

// encodeState serializes a team state for storage.
func encodeState(st *agent.TeamState) ([]byte, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode team state: %w", err)
	}
	return data, nil
}

// decodeState parses stored bytes. Empty input yields an empty state.
func decodeState(data []byte) (*agent.TeamState, error) {
	st := &agent.TeamState{}
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("decode team state: %w", err)
	}
	return st, nil
}
