package gateway

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"interchat/auth"
	"interchat/domain"
	"interchat/errors"
	"interchat/observability"
	"interchat/services"
	"interchat/sink"
)

// Close reasons sent to the client when the admission gate rejects a
// connection.
const (
	reasonMalformedToken = "Malformed Token"
	reasonAuthentication = "Authentication error"
	reasonInvalidRoom    = "Invalid interchat provided"
)

// Server terminates WebSocket connections: it upgrades, runs the
// admission gate on the first frame, then pumps events between the chat
// service and the socket until the client goes away.
type Server struct {
	log           *slog.Logger
	authenticator *auth.Authenticator
	chat          services.IChatService
	monitor       *observability.Monitor

	gatewayURI       string
	bufferSize       int
	deliveryTimeout  time.Duration
	handshakeTimeout time.Duration

	upgrader websocket.Upgrader
}

func NewServer(log *slog.Logger, authenticator *auth.Authenticator,
	chat services.IChatService, monitor *observability.Monitor,
	gatewayURI string, bufferSize int,
	deliveryTimeout, handshakeTimeout time.Duration) *Server {
	return &Server{
		log:              log,
		authenticator:    authenticator,
		chat:             chat,
		monitor:          monitor,
		gatewayURI:       gatewayURI,
		bufferSize:       bufferSize,
		deliveryTimeout:  deliveryTimeout,
		handshakeTimeout: handshakeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleBootstrap).Methods(http.MethodGet)
	r.HandleFunc("/gateway", s.handleGateway)
	return r
}

// handleBootstrap tells clients where the gateway lives. No auth.
func (s *Server) handleBootstrap(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"uri": s.gatewayURI})
}

func (s *Server) handleGateway(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.serve(r.Context(), ws)
}

// serve owns one connection from handshake to teardown. It runs on the
// HTTP handler goroutine; a second goroutine drains the connection's sink
// into the socket.
func (s *Server) serve(ctx context.Context, ws *websocket.Conn) {
	defer ws.Close()

	hs, err := s.readHandshake(ws)
	if err != nil {
		s.monitor.IncrRejected()
		s.reject(ws, err)
		return
	}

	identity, room, err := s.authenticator.Authenticate(ctx, hs)
	if err != nil {
		s.monitor.IncrRejected()
		s.log.Debug("connection rejected", "reason", closeReason(err))
		s.reject(ws, err)
		return
	}

	conn := domain.NewConnection(identity, room.ID)
	connSink := sink.NewConn(s.log, s.bufferSize, s.deliveryTimeout)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.monitor.IncrConnected()
	s.chat.Join(ctx, conn, connSink)
	defer func() {
		// Peers must still be notified after this connection's context
		// died with it.
		s.chat.Leave(context.WithoutCancel(ctx), conn.ID, conn.Room)
		s.monitor.IncrDisconnected()
	}()

	go s.writePump(ctx, ws, connSink)
	s.readLoop(ctx, ws, conn)
}

// readHandshake expects the very first client frame to be the auth
// payload. A frame that never arrives or cannot be parsed counts as a
// missing credential.
func (s *Server) readHandshake(ws *websocket.Conn) (auth.Handshake, error) {
	if s.handshakeTimeout > 0 {
		_ = ws.SetReadDeadline(time.Now().Add(s.handshakeTimeout))
		defer func() { _ = ws.SetReadDeadline(time.Time{}) }()
	}

	var hs auth.Handshake
	if err := ws.ReadJSON(&hs); err != nil {
		return auth.Handshake{}, errors.ErrAuthentication
	}
	return hs, nil
}

// readLoop consumes inbound frames until the client disconnects. Only
// MESSAGE_CREATE is meaningful from clients; anything else is ignored.
func (s *Server) readLoop(ctx context.Context, ws *websocket.Conn, conn domain.Connection) {
	for {
		var env Envelope
		if err := ws.ReadJSON(&env); err != nil {
			s.log.Debug("connection closed", "connection_id", conn.ID, "error", err)
			return
		}
		if env.Event != EventMessageCreate {
			continue
		}

		var payload CreateMessagePayload
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &payload); err != nil {
				s.log.Debug("unreadable message payload, relaying as empty",
					"connection_id", conn.ID, "error", err)
			}
		}
		s.monitor.ObserveMessage(payload.Content)
		s.chat.Post(ctx, conn, payload.Content)
	}
}

// writePump drains the connection's sink into the socket. It is the only
// goroutine writing data frames on this connection.
func (s *Server) writePump(ctx context.Context, ws *websocket.Conn, connSink *sink.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-connSink.Events:
			data, err := Encode(evt)
			if err != nil {
				s.log.Error("failed to encode event", "error", err)
				continue
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Debug("write failed, dropping connection", "error", err)
				return
			}
		}
	}
}

func (s *Server) reject(ws *websocket.Conn, err error) {
	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, closeReason(err))
	_ = ws.WriteControl(websocket.CloseMessage, msg, deadline)
}

func closeReason(err error) string {
	switch {
	case goerrors.Is(err, errors.ErrMalformedToken):
		return reasonMalformedToken
	case goerrors.Is(err, errors.ErrInvalidRoom):
		return reasonInvalidRoom
	default:
		return reasonAuthentication
	}
}
