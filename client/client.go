package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/filmatlas/filmatlas/internal/movies"
	"github.com/filmatlas/filmatlas/internal/people"
	"github.com/filmatlas/filmatlas/internal/users"
)

// Client is a typed API client. Authenticated requests go through the
// session transport, which attaches the bearer token and refreshes it
// once when it expires mid-flight.
type Client struct {
	baseURL string
	session *SessionManager
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseTransport sets the transport wrapped by the session transport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpc.Transport = NewTransport(c.session, rt)
	}
}

// New builds a client for the API at baseURL. sessionOpts configure the
// underlying SessionManager (auth-required callback, refresh client).
func New(baseURL string, sessionOpts []SessionOption, opts ...Option) *Client {
	session := NewSessionManager(baseURL, sessionOpts...)
	c := &Client{
		baseURL: baseURL,
		session: session,
		httpc: &http.Client{
			Timeout:   30 * time.Second,
			Transport: NewTransport(session, nil),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session exposes the underlying session manager.
func (c *Client) Session() *SessionManager { return c.session }

// LoginOptions carries the optional token lifetime overrides.
type LoginOptions struct {
	LongExpiry              bool
	BearerExpiresInSeconds  int64
	RefreshExpiresInSeconds int64
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.postJSON(ctx, "/user/register", map[string]any{
		"email": email, "password": password,
	}, nil)
}

// Login authenticates and installs the returned token pair in the
// session.
func (c *Client) Login(ctx context.Context, email, password string, opts LoginOptions) error {
	body := map[string]any{"email": email, "password": password}
	if opts.LongExpiry {
		body["longExpiry"] = true
	}
	if opts.BearerExpiresInSeconds > 0 {
		body["bearerExpiresInSeconds"] = opts.BearerExpiresInSeconds
	}
	if opts.RefreshExpiresInSeconds > 0 {
		body["refreshExpiresInSeconds"] = opts.RefreshExpiresInSeconds
	}

	var pair tokenPairResponse
	if err := c.postJSON(ctx, "/user/login", body, &pair); err != nil {
		return err
	}
	c.session.SetTokens(TokenSet{Bearer: pair.BearerToken.Token, Refresh: pair.RefreshToken.Token})
	return nil
}

// Logout revokes the session's refresh token and clears it.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Logout(ctx)
}

// SearchMovies runs GET /movies/search. Zero year and page mean "not
// set".
func (c *Client) SearchMovies(ctx context.Context, title string, year, page int) (*movies.SearchResult, error) {
	q := url.Values{}
	if title != "" {
		q.Set("title", title)
	}
	if year != 0 {
		q.Set("year", strconv.Itoa(year))
	}
	if page != 0 {
		q.Set("page", strconv.Itoa(page))
	}
	path := "/movies/search"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var res movies.SearchResult
	if err := c.getJSON(ctx, path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// MovieDetails runs GET /movies/data/:imdbID.
func (c *Client) MovieDetails(ctx context.Context, imdbID string) (*movies.Details, error) {
	var d movies.Details
	if err := c.getJSON(ctx, "/movies/data/"+url.PathEscape(imdbID), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// PersonDetails runs GET /people/:id (requires a session).
func (c *Client) PersonDetails(ctx context.Context, id string) (*people.Person, error) {
	var p people.Person
	if err := c.getJSON(ctx, "/people/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Profile runs GET /user/:email/profile.
func (c *Client) Profile(ctx context.Context, email string) (*users.ProfileView, error) {
	var v users.ProfileView
	if err := c.getJSON(ctx, "/user/"+url.PathEscape(email)+"/profile", &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateProfile runs PUT /user/:email/profile (owner only).
func (c *Client) UpdateProfile(ctx context.Context, email string, in users.ProfileInput) error {
	return c.doJSON(ctx, http.MethodPut, "/user/"+url.PathEscape(email)+"/profile", in, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
