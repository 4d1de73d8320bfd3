// internal/game/wire.go
package game

import (
	"fmt"

	engine "github.com/JDasic01/AgentTournament/engine"
	"github.com/JDasic01/AgentTournament/engine/agent"
)

// MessageType identifies a message exchanged with the simulation.
type MessageType string

// Inbound types are sent by the simulation; outbound types are our replies.
const (
	MsgObserve   MessageType = "observe"   // In: one tick's window for an agent.
	MsgTerminate MessageType = "terminate" // In: an agent left the game.
	MsgReset     MessageType = "reset"     // In: a new episode begins for this team.
	MsgBelief    MessageType = "belief"    // In/Out: render the shared belief.

	MsgAction MessageType = "action" // Out: the decision for an observe.
	MsgAck    MessageType = "ack"    // Out: terminate or reset processed.
	MsgError  MessageType = "error"  // Out: the message could not be handled.
)

// Message is an inbound frame.
type Message struct {
	Type        MessageType `json:"type"`
	Agent       string      `json:"agent,omitempty"`
	Window      [][]string  `json:"window,omitempty"`
	Position    []int       `json:"position,omitempty"` // [x, y] in raw simulation coordinates.
	CanShoot    bool        `json:"can_shoot,omitempty"`
	HoldingFlag bool        `json:"holding_flag,omitempty"`
	Reason      string      `json:"reason,omitempty"`
}

// Reply is an outbound frame.
type Reply struct {
	Type      MessageType `json:"type"`
	Agent     string      `json:"agent,omitempty"`
	Action    string      `json:"action,omitempty"`
	Direction string      `json:"direction,omitempty"`
	Role      string      `json:"role,omitempty"`
	Target    *[2]int     `json:"target,omitempty"` // [x, y] of the chosen goal, raw coordinates.
	Episode   string      `json:"episode,omitempty"`
	Belief    []string    `json:"belief,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// position validates and unpacks Message.Position.
func (m Message) position() (x, y int, err error) {
	if len(m.Position) != 2 {
		return 0, 0, fmt.Errorf("%w: position must be [x, y]", ErrBadObservation)
	}
	return m.Position[0], m.Position[1], nil
}

// actionReply converts a decision into its wire form.
func actionReply(id string, d agent.Decision) Reply {
	r := Reply{
		Type:      MsgAction,
		Agent:     id,
		Action:    d.Action.Kind.String(),
		Direction: d.Action.Direction.String(),
	}
	if d.HasTarget {
		r.Role = d.Role.String()
		r.Target = &[2]int{d.Target.Col + engine.Border, d.Target.Row + engine.Border}
	}
	return r
}

func errorReply(id string, err error) Reply {
	return Reply{Type: MsgError, Agent: id, Error: err.Error()}
}
