// internal/game/handler_test.go
package game

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/JDasic01/AgentTournament/engine"
	"github.com/JDasic01/AgentTournament/engine/agent"
)

func newTestServer(t *testing.T) (*httptest.Server, *Registry) {
	t.Helper()
	reg := NewRegistry(testWorld, engine.DefaultSymbols(), agent.NewMemoryStore(), quietLog())
	srv := httptest.NewServer(NewHandler(reg, testSecret, quietLog()))
	t.Cleanup(srv.Close)
	return srv, reg
}

func dial(t *testing.T, srv *httptest.Server, team string) *websocket.Conn {
	t.Helper()
	tok, err := IssueToken(testSecret, team, time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + tok}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

// roundTrip sends v and returns the single reply.
func roundTrip(t *testing.T, conn *websocket.Conn, v interface{}) Reply {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, v))
	var r Reply
	require.NoError(t, wsjson.Read(ctx, conn, &r))
	return r
}

func TestHandlerRejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandlerRejectsUnknownTeam(t *testing.T) {
	srv, _ := newTestServer(t)
	tok, err := IssueToken(testSecret, "green", time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"?token="+tok, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandlerObserveAndTerminate(t *testing.T) {
	srv, reg := newTestServer(t)
	conn := dial(t, srv, engine.ColorRed)

	// An enemy right next to red-0, which may shoot.
	window := emptyRows(3)
	window[1][2] = "b"
	r := roundTrip(t, conn, Message{
		Type:     MsgObserve,
		Agent:    "red-0",
		Window:   window,
		Position: []int{3, 3},
		CanShoot: true,
	})
	require.Equal(t, MsgAction, r.Type, r.Error)
	assert.Equal(t, "red-0", r.Agent)
	assert.Equal(t, "shoot", r.Action)
	assert.Equal(t, "right", r.Direction)

	red, err := reg.Team(engine.ColorRed)
	require.NoError(t, err)
	assert.Equal(t, []string{"red-0"}, red.Agents())

	r = roundTrip(t, conn, Message{Type: MsgTerminate, Agent: "red-0", Reason: "died"})
	assert.Equal(t, Reply{Type: MsgAck, Agent: "red-0"}, r)
	assert.Empty(t, red.Agents())
}

func TestHandlerSurvivesBadInput(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, engine.ColorBlue)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{nope")))
	var r Reply
	require.NoError(t, wsjson.Read(ctx, conn, &r))
	assert.Equal(t, MsgError, r.Type)

	r = roundTrip(t, conn, Message{Type: "dance"})
	assert.Equal(t, MsgError, r.Type)

	r = roundTrip(t, conn, Message{Type: MsgObserve, Agent: "blue-0", Window: emptyRows(3)})
	assert.Equal(t, MsgError, r.Type, "missing position")

	r = roundTrip(t, conn, Message{Type: MsgObserve, Agent: "blue-0", Window: emptyRows(2), Position: []int{2, 2}})
	assert.Equal(t, MsgError, r.Type, "wrong window size")

	r = roundTrip(t, conn, Message{Type: MsgObserve, Window: emptyRows(3), Position: []int{2, 2}})
	assert.Equal(t, MsgError, r.Type, "missing agent")

	// The connection is still usable.
	r = roundTrip(t, conn, Message{Type: MsgObserve, Agent: "blue-0", Window: emptyRows(3), Position: []int{2, 2}})
	assert.Equal(t, MsgAction, r.Type)
	assert.NotEmpty(t, r.Direction)
}

func TestHandlerResetAndBelief(t *testing.T) {
	srv, reg := newTestServer(t)
	conn := dial(t, srv, engine.ColorRed)

	window := emptyRows(3)
	window[0][1] = "#"
	r := roundTrip(t, conn, Message{Type: MsgObserve, Agent: "red-0", Window: window, Position: []int{3, 3}})
	require.Equal(t, MsgAction, r.Type)

	r = roundTrip(t, conn, Message{Type: MsgBelief})
	require.Equal(t, MsgBelief, r.Type)
	require.Len(t, r.Belief, testWorld.BeliefRows())
	assert.Equal(t, "#", string(r.Belief[1][2]))
	assert.Equal(t, "r", string(r.Belief[2][2]))

	red, err := reg.Team(engine.ColorRed)
	require.NoError(t, err)
	before := red.Episode()

	r = roundTrip(t, conn, Message{Type: MsgReset})
	require.Equal(t, MsgAck, r.Type)
	episode, err := uuid.Parse(r.Episode)
	require.NoError(t, err)
	assert.NotEqual(t, before, episode)
	assert.Equal(t, red.Episode(), episode)

	r = roundTrip(t, conn, Message{Type: MsgBelief})
	require.Equal(t, MsgBelief, r.Type)
	assert.Empty(t, r.Belief, "new episode starts without belief")
}

func TestActionReplyTargetUsesRawCoordinates(t *testing.T) {
	r := actionReply("red-0", agent.Decision{
		Action:    engine.Move(engine.Left),
		Role:      agent.RoleReturn,
		Target:    engine.Cell{Row: 4, Col: 7},
		HasTarget: true,
	})
	assert.Equal(t, "move", r.Action)
	assert.Equal(t, "left", r.Direction)
	assert.Equal(t, "return", r.Role)
	require.NotNil(t, r.Target)
	assert.Equal(t, [2]int{8, 5}, *r.Target)

	r = actionReply("red-0", agent.Decision{Action: engine.Move(engine.Up)})
	assert.Nil(t, r.Target)
	assert.Empty(t, r.Role)
}
