package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshNoSession(t *testing.T) {
	m := NewSessionManager("http://example.invalid")

	err := m.Refresh(context.Background())
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestRefreshTransportFailureKeepsTokens(t *testing.T) {
	// unreachable server: the refresh call fails before any response
	m := NewSessionManager("http://127.0.0.1:1",
		WithHTTPClient(&http.Client{Timeout: 500 * time.Millisecond}))
	m.SetTokens(TokenSet{Bearer: "b1", Refresh: "r1"})

	err := m.Refresh(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAuthRequired))

	// the pair survives so the caller can retry later
	tokens, err := m.Tokens()
	require.NoError(t, err)
	assert.Equal(t, "r1", tokens.Refresh)
}

func TestRefreshRotatesTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/refresh", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "r1", body["refreshToken"])
		json.NewEncoder(w).Encode(map[string]any{
			"bearerToken":  map[string]any{"token": "b2", "token_type": "Bearer", "expires_in": 600},
			"refreshToken": map[string]any{"token": "r2", "token_type": "Refresh", "expires_in": 86400},
		})
	}))
	defer srv.Close()

	m := NewSessionManager(srv.URL)
	m.SetTokens(TokenSet{Bearer: "b1", Refresh: "r1"})

	require.NoError(t, m.Refresh(context.Background()))

	tokens, err := m.Tokens()
	require.NoError(t, err)
	assert.Equal(t, "b2", tokens.Bearer)
	assert.Equal(t, "r2", tokens.Refresh)
}

func TestWaiterContextCancelDoesNotAbortRefresh(t *testing.T) {
	started := make(chan struct{})
	proceed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-proceed
		json.NewEncoder(w).Encode(map[string]any{
			"bearerToken":  map[string]any{"token": "b2", "token_type": "Bearer", "expires_in": 600},
			"refreshToken": map[string]any{"token": "r2", "token_type": "Refresh", "expires_in": 86400},
		})
	}))
	defer srv.Close()

	m := NewSessionManager(srv.URL)
	m.SetTokens(TokenSet{Bearer: "b1", Refresh: "r1"})

	first := make(chan error, 1)
	go func() { first <- m.Refresh(context.Background()) }()
	<-started

	// a joiner with an already-cancelled context gives up without
	// cancelling the shared call
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Refresh(cancelled)
	assert.True(t, errors.Is(err, context.Canceled))

	close(proceed)
	require.NoError(t, <-first)

	tokens, err := m.Tokens()
	require.NoError(t, err)
	assert.Equal(t, "b2", tokens.Bearer)
}

func TestLogoutWaitsForInFlightRefresh(t *testing.T) {
	var revoked atomic.Value
	proceed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/refresh":
			<-proceed
			json.NewEncoder(w).Encode(map[string]any{
				"bearerToken":  map[string]any{"token": "b2", "token_type": "Bearer", "expires_in": 600},
				"refreshToken": map[string]any{"token": "r2", "token_type": "Refresh", "expires_in": 86400},
			})
		case "/user/logout":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			revoked.Store(body["refreshToken"])
			json.NewEncoder(w).Encode(map[string]any{"error": false, "message": "Token successfully invalidated"})
		}
	}))
	defer srv.Close()

	m := NewSessionManager(srv.URL)
	m.SetTokens(TokenSet{Bearer: "b1", Refresh: "r1"})

	refreshDone := make(chan error, 1)
	go func() { refreshDone <- m.Refresh(context.Background()) }()

	logoutDone := make(chan error, 1)
	go func() {
		// give the refresh a moment to grab the in-flight slot
		time.Sleep(50 * time.Millisecond)
		logoutDone <- m.Logout(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)
	close(proceed)

	require.NoError(t, <-refreshDone)
	require.NoError(t, <-logoutDone)

	// logout revoked the rotated token, not the consumed one
	assert.Equal(t, "r2", revoked.Load())

	_, err := m.Tokens()
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestLogoutWithoutSession(t *testing.T) {
	m := NewSessionManager("http://example.invalid")

	err := m.Logout(context.Background())
	assert.True(t, errors.Is(err, ErrNoSession))
}
