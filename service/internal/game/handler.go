// internal/game/handler.go
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	"github.com/JDasic01/AgentTournament/engine/agent"
)

// Handler upgrades authenticated simulation connections to WebSocket and
// answers each tick message in arrival order.
type Handler struct {
	Registry *Registry
	Secret   []byte
	Log      *logrus.Entry

	// AcceptOptions are passed to websocket.Accept; nil uses the defaults.
	AcceptOptions *websocket.AcceptOptions
}

// NewHandler creates a Handler serving reg.
func NewHandler(reg *Registry, secret []byte, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{Registry: reg, Secret: secret, Log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := ParseToken(h.Secret, tokenFromRequest(r))
	if err != nil {
		h.Log.WithError(err).WithField("remote", r.RemoteAddr).Warn("rejected connection")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	team, err := h.Registry.Team(claims.Team)
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, h.AcceptOptions)
	if err != nil {
		h.Log.WithError(err).Error("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	log := h.Log.WithFields(logrus.Fields{"color": team.Color, "remote": r.RemoteAddr})
	log.Info("simulation connected")

	if err := h.serve(r.Context(), conn, team, log); err != nil {
		log.WithError(err).Warn("connection closed with error")
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
	log.Info("simulation disconnected")
}

// serve reads frames until the peer goes away. Malformed frames get an
// error reply and the connection stays up.
func (h *Handler) serve(ctx context.Context, conn *websocket.Conn, team *Team, log *logrus.Entry) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var reply Reply
		var msg Message
		switch {
		case typ != websocket.MessageText:
			reply = errorReply("", errors.New("expected a text frame"))
		case json.Unmarshal(data, &msg) != nil:
			reply = errorReply("", errors.New("malformed JSON"))
		default:
			reply = h.dispatch(ctx, team, msg, log)
		}

		if err := wsjson.Write(ctx, conn, reply); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
}

// dispatch handles one decoded message.
func (h *Handler) dispatch(ctx context.Context, team *Team, msg Message, log *logrus.Entry) Reply {
	switch msg.Type {
	case MsgObserve:
		if msg.Agent == "" {
			return errorReply("", fmt.Errorf("%w: missing agent", ErrBadObservation))
		}
		x, y, err := msg.position()
		if err != nil {
			return errorReply(msg.Agent, err)
		}
		d, err := team.Observe(ctx, msg.Agent, msg.Window, x, y, msg.CanShoot, msg.HoldingFlag)
		if errors.Is(err, ErrBadObservation) {
			return errorReply(msg.Agent, err)
		}
		if err != nil {
			// The decision was made on the agent's local copy; still act on it.
			log.WithError(err).WithField("agent", msg.Agent).Warn("decided without shared belief")
		}
		return actionReply(msg.Agent, d)

	case MsgTerminate:
		if msg.Agent == "" {
			return errorReply("", errors.New("terminate: missing agent"))
		}
		if err := team.Terminate(ctx, msg.Agent, agent.Reason(msg.Reason)); err != nil {
			log.WithError(err).WithField("agent", msg.Agent).Warn("terminate failed")
			return errorReply(msg.Agent, err)
		}
		return Reply{Type: MsgAck, Agent: msg.Agent}

	case MsgReset:
		id, err := team.Reset(ctx)
		if err != nil {
			log.WithError(err).Warn("reset left previous belief behind")
		}
		return Reply{Type: MsgAck, Episode: id.String()}

	case MsgBelief:
		rows, err := team.Render(ctx)
		if err != nil {
			return errorReply("", err)
		}
		return Reply{Type: MsgBelief, Belief: rows}
	}
	return errorReply(msg.Agent, fmt.Errorf("unknown message type %q", msg.Type))
}
