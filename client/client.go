// Package client is a small WebSocket client for the relay gateway,
// used by the tester binary and the end-to-end suite.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"interchat/gateway"
)

// Event is one decoded frame from the gateway. Exactly one of the
// payload fields is set, matching the envelope's Event name.
type Event struct {
	Name         string
	Messages     []gateway.MessagePayload
	Members      []gateway.UserPayload
	Message      *gateway.MessagePayload
	MemberUpdate *gateway.MemberUpdatePayload
}

// Client holds one live gateway connection. Events carries every frame
// the server pushes; it is closed when the connection dies.
type Client struct {
	log    *slog.Logger
	ws     *websocket.Conn
	Events chan Event
}

// Bootstrap asks the relay where its gateway lives.
func Bootstrap(ctx context.Context, baseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/", nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		URI string `json:"uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("bootstrap decode failed: %w", err)
	}
	return body.URI, nil
}

// Connect dials the gateway, sends the auth handshake as the first
// frame and starts the receive loop. The server answers either with the
// MESSAGES_LIST/MEMBERS_LIST snapshot or with a close frame carrying
// the rejection reason.
func Connect(ctx context.Context, log *slog.Logger, gatewayURL, token, interchat string) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, gatewayURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not reach gateway at %s: %w", gatewayURL, err)
	}

	handshake := map[string]string{"token": token, "interchat": interchat}
	if err := ws.WriteJSON(handshake); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("handshake write failed: %w", err)
	}

	c := &Client{
		log:    log,
		ws:     ws,
		Events: make(chan Event, 64),
	}
	go c.readLoop()
	return c, nil
}

// Send posts a chat message to the connection's interchat.
func (c *Client) Send(content string) error {
	payload, err := json.Marshal(gateway.CreateMessagePayload{Content: content})
	if err != nil {
		return err
	}
	return c.ws.WriteJSON(gateway.Envelope{
		Event: gateway.EventMessageCreate,
		Data:  payload,
	})
}

func (c *Client) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteMessage(websocket.CloseMessage, msg)
	return c.ws.Close()
}

func (c *Client) readLoop() {
	defer close(c.Events)
	for {
		var env gateway.Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			if reason := closeText(err); reason != "" {
				c.log.Warn("gateway closed the connection", "reason", reason)
			} else {
				c.log.Debug("connection ended", "error", err)
			}
			return
		}

		evt, err := decode(env)
		if err != nil {
			c.log.Warn("unreadable frame", "event", env.Event, "error", err)
			continue
		}
		c.Events <- evt
	}
}

func decode(env gateway.Envelope) (Event, error) {
	evt := Event{Name: env.Event}
	switch env.Event {
	case gateway.EventMessagesList:
		return evt, json.Unmarshal(env.Data, &evt.Messages)
	case gateway.EventMembersList:
		return evt, json.Unmarshal(env.Data, &evt.Members)
	case gateway.EventMessageCreate:
		evt.Message = &gateway.MessagePayload{}
		return evt, json.Unmarshal(env.Data, evt.Message)
	case gateway.EventMemberUpdate:
		evt.MemberUpdate = &gateway.MemberUpdatePayload{}
		return evt, json.Unmarshal(env.Data, evt.MemberUpdate)
	default:
		return evt, nil
	}
}

func closeText(err error) string {
	if closeErr, ok := err.(*websocket.CloseError); ok {
		return closeErr.Text
	}
	return ""
}
