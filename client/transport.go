package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// authTransport is an http.RoundTripper that attaches the session's
// bearer token and transparently refreshes it once when the server says
// the token expired. Each request is retried at most once; a second
// expiry on the retried request is returned to the caller as-is.
type authTransport struct {
	session *SessionManager
	base    http.RoundTripper
}

// NewTransport wraps base (nil means http.DefaultTransport) with bearer
// attachment and the refresh-and-retry behaviour.
func NewTransport(session *SessionManager, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{session: session, base: base}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// snapshot the body so the request can be replayed after a refresh
	var bodyCopy []byte
	if req.Body != nil {
		var err error
		bodyCopy, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(bodyCopy))
	}

	resp, err := t.do(req, bodyCopy)
	if err != nil {
		return nil, err
	}
	if !isExpiredAuth(resp) {
		return resp, nil
	}
	resp.Body.Close()

	if err := t.session.Refresh(req.Context()); err != nil {
		if errors.Is(err, ErrAuthRequired) || errors.Is(err, ErrNoSession) {
			return nil, ErrAuthRequired
		}
		return nil, err
	}

	return t.do(req, bodyCopy)
}

func (t *authTransport) do(req *http.Request, body []byte) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if body != nil {
		clone.Body = io.NopCloser(bytes.NewReader(body))
	}
	if tokens, err := t.session.Tokens(); err == nil {
		clone.Header.Set("Authorization", "Bearer "+tokens.Bearer)
	}
	return t.base.RoundTrip(clone)
}

// isExpiredAuth reports whether resp is a 401 whose body carries the
// expired flag. The body is restored so it stays readable when the
// response is handed to the caller.
func isExpiredAuth(resp *http.Response) bool {
	if resp.StatusCode != http.StatusUnauthorized {
		return false
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return false
	}
	var body struct {
		Expired bool `json:"expired"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return false
	}
	return body.Expired
}
