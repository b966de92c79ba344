package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"interchat/auth"
	"interchat/domain"
	"interchat/errors"
	"interchat/observability"
	"interchat/runtime"
	"interchat/services"
)

// stubVerifier resolves tokens from a fixed map and counts calls, so
// tests can assert the gate short-circuits before verification.
type stubVerifier struct {
	identities map[string]domain.Identity
	calls      atomic.Int32
}

func (v *stubVerifier) Verify(_ context.Context, token auth.Token) (domain.Identity, error) {
	v.calls.Add(1)
	identity, ok := v.identities[token.Raw]
	if !ok {
		return domain.Identity{}, errors.ErrAuthentication
	}
	return identity, nil
}

type testRelay struct {
	server   *httptest.Server
	verifier *stubVerifier
	monitor  *observability.Monitor
}

func newTestRelay(t *testing.T) *testRelay {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	verifier := &stubVerifier{identities: map[string]domain.Identity{
		"u1.payload.sig": domain.NewIdentity("u1", "Alice", "alice.png"),
		"u2.payload.sig": domain.NewIdentity("u2", "Bob", "bob.png"),
	}}

	registry := runtime.NewRegistry()
	chat := services.NewChatService(log, registry)
	authenticator := auth.NewAuthenticator(verifier, domain.DefaultCatalog())
	monitor := observability.NewMonitor(log)

	srv := NewServer(log, authenticator, chat, monitor,
		"ws://example.invalid/gateway", 64, time.Second, 5*time.Second)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testRelay{server: ts, verifier: verifier, monitor: monitor}
}

func (r *testRelay) wsURL() string {
	return "ws" + strings.TrimPrefix(r.server.URL, "http") + "/gateway"
}

func (r *testRelay) dial(t *testing.T, token, interchat string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(r.wsURL(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	err = ws.WriteJSON(map[string]string{"token": token, "interchat": interchat})
	require.NoError(t, err)
	return ws
}

func readEnvelope(t *testing.T, ws *websocket.Conn) Envelope {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	var env Envelope
	require.NoError(t, ws.ReadJSON(&env))
	return env
}

func expectClose(t *testing.T, ws *websocket.Conn) string {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := ws.ReadMessage()
	require.Error(t, err)
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected a close frame, got %v", err)
	return closeErr.Text
}

func TestGateway_Bootstrap(t *testing.T) {
	req := require.New(t)
	relay := newTestRelay(t)

	resp, err := http.Get(relay.server.URL + "/")
	req.NoError(err)
	defer resp.Body.Close()

	var body map[string]string
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Equal("ws://example.invalid/gateway", body["uri"])
}

func TestGateway_FirstJoinSequence(t *testing.T) {
	req := require.New(t)
	relay := newTestRelay(t)

	ws := relay.dial(t, "u1.payload.sig", "es")

	// Snapshot order is fixed: history, roster, then the private welcome.
	env := readEnvelope(t, ws)
	req.Equal(EventMessagesList, env.Event)
	var messages []MessagePayload
	req.NoError(json.Unmarshal(env.Data, &messages))
	req.Empty(messages)

	env = readEnvelope(t, ws)
	req.Equal(EventMembersList, env.Event)
	var members []UserPayload
	req.NoError(json.Unmarshal(env.Data, &members))
	req.Len(members, 1)
	req.Equal("Alice", members[0].Username)

	env = readEnvelope(t, ws)
	req.Equal(EventMessageCreate, env.Event)
	var welcome MessagePayload
	req.NoError(json.Unmarshal(env.Data, &welcome))
	req.Equal("Te has conectado al interchat.", welcome.Content)
	req.True(welcome.Author.System)
}

func TestGateway_PeerSeesJoinAndLeave(t *testing.T) {
	req := require.New(t)
	relay := newTestRelay(t)

	alice := relay.dial(t, "u1.payload.sig", "es")
	drainSnapshot(t, alice)

	bob := relay.dial(t, "u2.payload.sig", "es")
	drainSnapshot(t, bob)

	// Alice sees Bob's arrival: MEMBER_UPDATE then the announcement.
	env := readEnvelope(t, alice)
	req.Equal(EventMemberUpdate, env.Event)
	var update MemberUpdatePayload
	req.NoError(json.Unmarshal(env.Data, &update))
	req.Equal(ActionConnect, update.Action)
	req.Equal("Bob", update.User.Username)

	env = readEnvelope(t, alice)
	req.Equal(EventMessageCreate, env.Event)
	var announce MessagePayload
	req.NoError(json.Unmarshal(env.Data, &announce))
	req.Equal("Bob se conecto al interchat.", announce.Content)

	// Bob leaves; Alice gets the disconnect pair.
	req.NoError(bob.Close())

	env = readEnvelope(t, alice)
	req.Equal(EventMemberUpdate, env.Event)
	req.NoError(json.Unmarshal(env.Data, &update))
	req.Equal(ActionDisconnect, update.Action)
	req.Equal("Bob", update.User.Username)

	env = readEnvelope(t, alice)
	req.Equal(EventMessageCreate, env.Event)
	req.NoError(json.Unmarshal(env.Data, &announce))
	req.Equal("Bob se desconecto del interchat.", announce.Content)
}

func TestGateway_SecondConnectionSameIdentityIsSilent(t *testing.T) {
	req := require.New(t)
	relay := newTestRelay(t)

	alice := relay.dial(t, "u1.payload.sig", "es")
	drainSnapshot(t, alice)

	second := relay.dial(t, "u1.payload.sig", "es")
	drainSnapshot(t, second)

	// A message posted on the second connection must be the next thing
	// the first one sees: no MEMBER_UPDATE in between.
	payload, err := json.Marshal(CreateMessagePayload{Content: "hola"})
	req.NoError(err)
	req.NoError(second.WriteJSON(Envelope{Event: EventMessageCreate, Data: payload}))

	env := readEnvelope(t, alice)
	req.Equal(EventMessageCreate, env.Event)
	var m MessagePayload
	req.NoError(json.Unmarshal(env.Data, &m))
	req.Equal("hola", m.Content)
	req.Equal("Alice", m.Author.Username)
}

func TestGateway_RelayIncludesSender(t *testing.T) {
	req := require.New(t)
	relay := newTestRelay(t)

	ws := relay.dial(t, "u1.payload.sig", "es")
	drainSnapshot(t, ws)

	payload, err := json.Marshal(CreateMessagePayload{Content: "  "})
	req.NoError(err)
	req.NoError(ws.WriteJSON(Envelope{Event: EventMessageCreate, Data: payload}))

	env := readEnvelope(t, ws)
	req.Equal(EventMessageCreate, env.Event)
	var m MessagePayload
	req.NoError(json.Unmarshal(env.Data, &m))
	req.Equal("Sin contenido.", m.Content)
}

func TestGateway_GarbagePayloadRelayedAsEmpty(t *testing.T) {
	req := require.New(t)
	relay := newTestRelay(t)

	ws := relay.dial(t, "u1.payload.sig", "es")
	drainSnapshot(t, ws)

	// A MESSAGE_CREATE whose body is not an object still relays, with
	// the content falling back to the sentinel.
	req.NoError(ws.WriteJSON(Envelope{
		Event: EventMessageCreate,
		Data:  json.RawMessage(`"not-an-object"`),
	}))

	env := readEnvelope(t, ws)
	req.Equal(EventMessageCreate, env.Event)
	var m MessagePayload
	req.NoError(json.Unmarshal(env.Data, &m))
	req.Equal("Sin contenido.", m.Content)
	req.Equal("Alice", m.Author.Username)
}

func TestGateway_RoomFencing(t *testing.T) {
	req := require.New(t)
	relay := newTestRelay(t)

	alice := relay.dial(t, "u1.payload.sig", "es")
	drainSnapshot(t, alice)

	// Bob joins a different interchat; Alice must only ever see her own
	// message after that.
	bob := relay.dial(t, "u2.payload.sig", "en")
	drainSnapshot(t, bob)

	payload, err := json.Marshal(CreateMessagePayload{Content: "hola"})
	req.NoError(err)
	req.NoError(alice.WriteJSON(Envelope{Event: EventMessageCreate, Data: payload}))

	env := readEnvelope(t, alice)
	req.Equal(EventMessageCreate, env.Event)
	var m MessagePayload
	req.NoError(json.Unmarshal(env.Data, &m))
	req.Equal("hola", m.Content)
}

func TestGateway_MalformedTokenClosesBeforeVerification(t *testing.T) {
	req := require.New(t)
	relay := newTestRelay(t)

	ws := relay.dial(t, "u1.ab", "es")
	reason := expectClose(t, ws)
	req.Equal("Malformed Token", reason)
	req.Zero(relay.verifier.calls.Load())
}

func TestGateway_UnknownRoomClose(t *testing.T) {
	req := require.New(t)
	relay := newTestRelay(t)

	ws := relay.dial(t, "u1.payload.sig", "xx")
	reason := expectClose(t, ws)
	req.Equal("Invalid interchat provided", reason)
}

func TestGateway_RejectedCredentialClose(t *testing.T) {
	req := require.New(t)
	relay := newTestRelay(t)

	ws := relay.dial(t, "ghost.payload.sig", "es")
	reason := expectClose(t, ws)
	req.Equal("Authentication error", reason)
	req.Equal(int32(1), relay.verifier.calls.Load())
}

// drainSnapshot reads the three-frame join snapshot.
func drainSnapshot(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	for i := 0; i < 3; i++ {
		readEnvelope(t, ws)
	}
}
