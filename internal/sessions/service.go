package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/filmatlas/filmatlas/internal/tokens"
	"github.com/filmatlas/filmatlas/pkg/metrics"
)

// TokenPair is the result of a login or refresh: a bearer token for
// requests and a refresh token for minting the next pair.
type TokenPair struct {
	BearerToken      string
	BearerExpiresIn  int64
	RefreshToken     string
	RefreshExpiresIn int64
}

// TTLOptions carries the optional per-request lifetime overrides from
// the login/refresh endpoints. LongExpiry wins over the explicit values.
type TTLOptions struct {
	LongExpiry bool
	BearerTTL  time.Duration
	RefreshTTL time.Duration
}

// Service issues, rotates and revokes refresh sessions.
type Service struct {
	repo       Repository
	issuer     *tokens.Issuer
	bearerTTL  time.Duration
	refreshTTL time.Duration
	longTTL    time.Duration
}

func NewService(repo Repository, issuer *tokens.Issuer, bearerTTL, refreshTTL, longTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		issuer:     issuer,
		bearerTTL:  bearerTTL,
		refreshTTL: refreshTTL,
		longTTL:    longTTL,
	}
}

func (s *Service) ttls(opts TTLOptions) (time.Duration, time.Duration) {
	if opts.LongExpiry {
		return s.longTTL, s.longTTL
	}
	bearer, refresh := s.bearerTTL, s.refreshTTL
	if opts.BearerTTL > 0 {
		bearer = opts.BearerTTL
	}
	if opts.RefreshTTL > 0 {
		refresh = opts.RefreshTTL
	}
	return bearer, refresh
}

// IssuePair mints a bearer/refresh pair for the user and registers the
// refresh token in the store. Used at login.
func (s *Service) IssuePair(ctx context.Context, userID, email string, opts TTLOptions) (*TokenPair, error) {
	bearerTTL, refreshTTL := s.ttls(opts)

	bearer, err := s.issuer.IssueBearer(userID, email, bearerTTL)
	if err != nil {
		return nil, fmt.Errorf("issue bearer token: %w", err)
	}
	refresh, err := s.issuer.IssueRefresh(userID, refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.repo.Create(ctx, &RefreshToken{
		Token:     refresh,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(refreshTTL),
	}); err != nil {
		return nil, fmt.Errorf("register refresh token: %w", err)
	}

	return &TokenPair{
		BearerToken:      bearer,
		BearerExpiresIn:  int64(bearerTTL.Seconds()),
		RefreshToken:     refresh,
		RefreshExpiresIn: int64(refreshTTL.Seconds()),
	}, nil
}

// Refresh exchanges a refresh token for a new pair, rotating the stored
// record so the old token can never be used again. The signature and
// expiry of the presented token are checked before the store is
// touched; a token that fails there never reaches rotation.
func (s *Service) Refresh(ctx context.Context, refreshToken string, opts TTLOptions) (*TokenPair, error) {
	userID, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		switch err {
		case tokens.ErrTokenExpired:
			metrics.TokenRefresh.WithLabelValues("expired").Inc()
		default:
			metrics.TokenRefresh.WithLabelValues("invalid").Inc()
		}
		return nil, err
	}

	bearerTTL, refreshTTL := s.ttls(opts)

	newRefresh, err := s.issuer.IssueRefresh(userID, refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue replacement refresh token: %w", err)
	}

	err = s.repo.Rotate(ctx, refreshToken, &RefreshToken{
		Token:     newRefresh,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(refreshTTL),
	})
	if err != nil {
		switch err {
		case ErrNotFound:
			metrics.TokenRefresh.WithLabelValues("replayed").Inc()
		case ErrExpired:
			metrics.TokenRefresh.WithLabelValues("expired").Inc()
		default:
			metrics.TokenRefresh.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	// The refreshed bearer carries only the subject; ownership checks
	// key on user id, not the email claim.
	bearer, err := s.issuer.IssueBearer(userID, "", bearerTTL)
	if err != nil {
		return nil, fmt.Errorf("issue bearer token: %w", err)
	}

	metrics.TokenRefresh.WithLabelValues("rotated").Inc()
	return &TokenPair{
		BearerToken:      bearer,
		BearerExpiresIn:  int64(bearerTTL.Seconds()),
		RefreshToken:     newRefresh,
		RefreshExpiresIn: int64(refreshTTL.Seconds()),
	}, nil
}

// Revoke deletes the refresh token record at logout. A token that is
// absent or already rotated away reports ErrNotFound rather than
// silently succeeding; silent success would mask token-state bugs.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	if _, err := s.issuer.VerifyRefresh(refreshToken); err != nil {
		return err
	}
	return s.repo.Revoke(ctx, refreshToken)
}
