package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"interchat/domain"
	"interchat/errors"
)

// HTTPVerifier calls the external identity service. Success is any 2xx
// answer carrying a user profile; everything else, including transport
// failures, is reported as a uniform authentication failure.
type HTTPVerifier struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

func NewHTTPVerifier(log *slog.Logger, baseURL string, client *http.Client) *HTTPVerifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     log,
	}
}

type profilePayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func (v *HTTPVerifier) Verify(ctx context.Context, token Token) (domain.Identity, error) {
	url := fmt.Sprintf("%s/authorize/user/%s", v.baseURL, token.UserRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return domain.Identity{}, errors.ErrAuthentication
	}
	req.Header.Set("Authorization", token.Raw)

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Warn("identity service unreachable", "error", err)
		return domain.Identity{}, errors.ErrAuthentication
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		v.log.Debug("identity service rejected credential",
			"status", resp.StatusCode, "user_ref", token.UserRef)
		return domain.Identity{}, errors.ErrAuthentication
	}

	var profile profilePayload
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return domain.Identity{}, errors.ErrAuthentication
	}
	return domain.NewIdentity(profile.ID, profile.Username, profile.Avatar), nil
}
