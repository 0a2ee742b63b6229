package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

var (
	// ErrNoSession means no tokens are held (never logged in, or the
	// session was cleared).
	ErrNoSession = errors.New("no active session")
	// ErrAuthRequired means the server rejected the refresh token; the
	// session has been cleared and the user must log in again.
	ErrAuthRequired = errors.New("authentication required")
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Message string
	Expired bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// TokenSet is the pair held for an authenticated session.
type TokenSet struct {
	Bearer  string
	Refresh string
}

// SessionManager holds the token pair and refreshes it on demand.
// Concurrent callers that hit an expired bearer at the same time share a
// single refresh call: the first caller starts it, the rest wait on its
// result. The refresh HTTP request itself is detached from the waiters'
// contexts so one impatient caller cannot cancel it for the batch.
type SessionManager struct {
	baseURL string
	httpc   *http.Client

	// called once per cleared session when the server rejects a refresh
	onAuthRequired func()

	mu         sync.Mutex
	tokens     *TokenSet
	refreshing chan struct{} // non-nil while a refresh is in flight
	refreshErr error         // outcome of the last finished refresh
	signaled   bool          // onAuthRequired fired for the current clearing
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithAuthRequiredFunc sets the callback fired (once per session loss)
// when the server rejects the refresh token.
func WithAuthRequiredFunc(fn func()) SessionOption {
	return func(m *SessionManager) { m.onAuthRequired = fn }
}

// WithHTTPClient overrides the HTTP client used for refresh calls.
func WithHTTPClient(c *http.Client) SessionOption {
	return func(m *SessionManager) { m.httpc = c }
}

func NewSessionManager(baseURL string, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// SetTokens installs a fresh pair (after login) and re-arms the
// auth-required signal.
func (m *SessionManager) SetTokens(t TokenSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = &t
	m.signaled = false
}

// Tokens returns the current pair, or ErrNoSession.
func (m *SessionManager) Tokens() (TokenSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		return TokenSet{}, ErrNoSession
	}
	return *m.tokens, nil
}

// Clear drops the session without calling the server.
func (m *SessionManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = nil
}

// Refresh exchanges the held refresh token for a new pair. Multiple
// concurrent calls collapse into one server round trip; every caller
// gets that round trip's outcome. A transport failure keeps the tokens
// (the caller may retry later); a server rejection clears the session
// and fires the auth-required callback.
func (m *SessionManager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if ch := m.refreshing; ch != nil {
		m.mu.Unlock()
		select {
		case <-ch:
			m.mu.Lock()
			err := m.refreshErr
			m.mu.Unlock()
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if m.tokens == nil {
		m.mu.Unlock()
		return ErrNoSession
	}
	refreshToken := m.tokens.Refresh
	ch := make(chan struct{})
	m.refreshing = ch
	m.mu.Unlock()

	// the refresh call runs on a background context: its result is
	// shared by every waiter, so no single caller may cancel it
	err := m.doRefresh(context.Background(), refreshToken)

	m.mu.Lock()
	m.refreshErr = err
	m.refreshing = nil
	close(ch)
	m.mu.Unlock()
	return err
}

func (m *SessionManager) doRefresh(ctx context.Context, refreshToken string) error {
	body, _ := json.Marshal(map[string]string{"refreshToken": refreshToken})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/user/refresh", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpc.Do(req)
	if err != nil {
		// transport failure: the stored pair may still be good
		return fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeAPIError(resp)
		if resp.StatusCode == http.StatusUnauthorized {
			m.clearAndSignal()
			return ErrAuthRequired
		}
		return apiErr
	}

	var pair tokenPairResponse
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}

	m.mu.Lock()
	m.tokens = &TokenSet{Bearer: pair.BearerToken.Token, Refresh: pair.RefreshToken.Token}
	m.signaled = false
	m.mu.Unlock()
	return nil
}

func (m *SessionManager) clearAndSignal() {
	m.mu.Lock()
	m.tokens = nil
	fire := !m.signaled && m.onAuthRequired != nil
	m.signaled = true
	m.mu.Unlock()
	if fire {
		m.onAuthRequired()
	}
}

// Logout revokes the refresh token on the server and clears the session.
// An in-flight refresh is allowed to finish first so its rotated token
// is the one revoked.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	ch := m.refreshing
	m.mu.Unlock()
	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	if m.tokens == nil {
		m.mu.Unlock()
		return ErrNoSession
	}
	refreshToken := m.tokens.Refresh
	m.tokens = nil
	m.mu.Unlock()

	body, _ := json.Marshal(map[string]string{"refreshToken": refreshToken})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/user/logout", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	return nil
}

type tokenEnvelope struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

type tokenPairResponse struct {
	BearerToken  tokenEnvelope `json:"bearerToken"`
	RefreshToken tokenEnvelope `json:"refreshToken"`
}

func decodeAPIError(resp *http.Response) *APIError {
	var body struct {
		Message string `json:"message"`
		Expired bool   `json:"expired"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &APIError{Status: resp.StatusCode, Message: body.Message, Expired: body.Expired}
}
