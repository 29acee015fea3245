package moltin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/fishbot/core/logger"
	"log/slog"
)

// DefaultRefreshMargin is the safety window before expiry that forces a refresh.
const DefaultRefreshMargin = 100 * time.Second

// TokenSource owns the client-credentials access token for the commerce API.
// It refreshes the token when it is within the margin of its expiry and
// serializes refreshes so concurrent callers trigger at most one network call
// per expiry window. Construct one at startup and share it by reference.
type TokenSource struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	margin       time.Duration
	now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenSource builds a token source. A nil httpClient falls back to
// http.DefaultClient; a non-positive margin falls back to DefaultRefreshMargin.
func NewTokenSource(baseURL, clientID, clientSecret string, margin time.Duration, httpClient *http.Client) *TokenSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if margin <= 0 {
		margin = DefaultRefreshMargin
	}
	return &TokenSource{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		margin:       margin,
		now:          time.Now,
	}
}

// Token returns a valid access token, refreshing it when the cached one is
// absent or within the refresh margin of its expiry. Refresh failures
// propagate to the caller; the previously cached token is discarded once a
// refresh has been attempted for it.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.expiresAt.Sub(s.now()) >= s.margin {
		return s.token, nil
	}

	token, expiresAt, err := s.refresh(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	s.expiresAt = expiresAt

	logger.Debug(ctx, "moltin", "token.refresh",
		slog.String("status", "ok"),
		slog.Time("expires_at", expiresAt),
	)
	return s.token, nil
}

func (s *TokenSource) refresh(ctx context.Context) (string, time.Time, error) {
	form := url.Values{
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", time.Time{}, &APIError{
			Status: resp.StatusCode,
			Title:  "token refresh rejected",
			Detail: strings.TrimSpace(string(body)),
		}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		Expires     int64  `json:"expires"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", time.Time{}, fmt.Errorf("token decode: %w", err)
	}
	if payload.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("token decode: empty access_token")
	}

	expiresAt := time.Unix(payload.Expires, 0)
	if payload.Expires == 0 {
		expiresAt = s.now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}
	return payload.AccessToken, expiresAt, nil
}
