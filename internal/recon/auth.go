package recon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/parthpandya1729/giarecon/internal/config"
	"github.com/parthpandya1729/giarecon/internal/logger"
	"github.com/parthpandya1729/giarecon/internal/model"
	"github.com/parthpandya1729/giarecon/pkg/errors"

	"github.com/rs/zerolog"
)

// tokenSafetyMargin is subtracted from the server-reported TTL so a token is
// never used when it could expire mid-flight.
const tokenSafetyMargin = 60 * time.Second

// Session holds the bearer token for one logical workflow. A successful
// Authenticate overwrites any prior token; there is no implicit refresh, the
// caller re-authenticates explicitly once the token expires.
type Session struct {
	cfg    *config.Config
	client *http.Client

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	now func() time.Time
	log zerolog.Logger
}

func NewSession(cfg *config.Config) *Session {
	return &Session{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.ReconAPI.MetadataTimeout),
		},
		now: time.Now,
		log: logger.Get(),
	}
}

// Authenticate obtains a bearer token from the recon API. The login endpoint
// takes form-url-encoded credentials, not JSON.
func (s *Session) Authenticate(ctx context.Context, username, password string) (*model.AuthResult, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	endpoint := s.cfg.ReconAPI.BaseURL + "/auth/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Network(err, "failed to create auth request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	s.log.Info().Str("username", username).Msg("Attempting authentication")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Network(err, "network error during authentication")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Network(err, "failed to read auth response")
	}

	if resp.StatusCode != http.StatusOK {
		s.log.Error().Int("status", resp.StatusCode).Msg("Authentication failed")
		return nil, errors.Remote(
			fmt.Sprintf("authentication failed with status %d", resp.StatusCode),
			parseDetail(body),
		)
	}

	var tokenResp model.TokenResponse
	if err := decodeJSON(body, &tokenResp); err != nil {
		return nil, errors.Remote("failed to decode auth response", string(body))
	}

	if tokenResp.TokenType == "" {
		tokenResp.TokenType = "Bearer"
	}
	if tokenResp.ExpiresIn == 0 {
		tokenResp.ExpiresIn = 3600
	}

	s.mu.Lock()
	s.token = tokenResp.AccessToken
	s.expiresAt = s.now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenSafetyMargin)
	s.mu.Unlock()

	s.log.Info().Int("expires_in", tokenResp.ExpiresIn).Msg("Authentication successful")

	return &model.AuthResult{
		Success:     true,
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
		ExpiresIn:   tokenResp.ExpiresIn,
	}, nil
}

// IsTokenValid reports whether a token is present and strictly before its
// expiry instant.
func (s *Session) IsTokenValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.now().Before(s.expiresAt)
}

// AuthHeader returns the Authorization header value for the current token,
// or a precondition error when unauthenticated or expired. Every client
// operation calls this before issuing its request.
func (s *Session) AuthHeader() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" || !s.now().Before(s.expiresAt) {
		return "", errors.PreconditionWrap(errors.ErrNotAuthenticated, "no valid authentication token")
	}
	return "Bearer " + s.token, nil
}
