package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"interchat/client"
)

// BaseRelaySuite drives a deployed relay plus accounts service through
// their public surfaces only: HTTP for registration, WebSocket for the
// chat itself.
type BaseRelaySuite struct {
	suite.Suite
	Config Config
	log    *slog.Logger
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.log = logs.GetLoggerFromLevel(slog.LevelDebug)

	if s.Config.RelayAddr == "" {
		s.T().Skip("RELAY_ADDR not set, skipping end-to-end suite")
	}
}

// Step prints a colorized header so suite logs read as a scenario.
func (s *BaseRelaySuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// RegisterUser creates a throwaway account and returns its credential.
func (s *BaseRelaySuite) RegisterUser(username string) string {
	body, err := json.Marshal(map[string]string{
		"email":    fmt.Sprintf("%s-%d@e2e.invalid", username, time.Now().UnixNano()),
		"username": username,
		"password": "E2eComplexPass123!",
	})
	s.Require().NoError(err)

	resp, err := http.Post(s.Config.AccountsAddr+"/register", "application/json", bytes.NewReader(body))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var registered struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&registered))
	return registered.Token
}

// ConnectUser bootstraps the gateway location and opens a connection.
func (s *BaseRelaySuite) ConnectUser(ctx context.Context, token string) *client.Client {
	gatewayURL, err := client.Bootstrap(ctx, s.Config.RelayAddr)
	s.Require().NoError(err)

	c, err := client.Connect(ctx, s.log, gatewayURL, token, s.Config.Interchat)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = c.Close() })
	return c
}

// WaitFor reads events until pred accepts one or the timeout elapses.
func (s *BaseRelaySuite) WaitFor(c *client.Client, name string, pred func(client.Event) bool) client.Event {
	deadline := time.After(10 * time.Second)
	for {
		select {
		case evt, ok := <-c.Events:
			s.Require().True(ok, "connection closed while waiting for %s", name)
			if pred(evt) {
				return evt
			}
		case <-deadline:
			s.Require().FailNowf("timeout", "no %s event within deadline", name)
			return client.Event{}
		}
	}
}
