package sessions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/filmatlas/filmatlas/internal/tokens"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository) {
	t.Helper()
	iss, err := tokens.NewIssuer("bearer-secret-32-bytes-xxxxxxxxxxx", "refresh-secret-32-bytes-xxxxxxxxxx")
	if err != nil {
		t.Fatalf("NewIssuer error: %v", err)
	}
	repo := NewMemoryRepository()
	return NewService(repo, iss, 600*time.Second, 86400*time.Second, 31536000*time.Second), repo
}

func TestIssuePairAndRefresh(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, "user-1", "a@example.com", TTLOptions{})
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if pair.BearerToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if pair.BearerExpiresIn != 600 || pair.RefreshExpiresIn != 86400 {
		t.Fatalf("unexpected default expiries: %+v", pair)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken, TTLOptions{})
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh must rotate the token")
	}
}

// After a successful rotation the old token must be dead: replay fails
// with ErrNotFound while the new token keeps working.
func TestRefresh_ReplayRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, "user-1", "a@example.com", TTLOptions{})
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	next, err := svc.Refresh(ctx, pair.RefreshToken, TTLOptions{})
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	if _, err := svc.Refresh(ctx, pair.RefreshToken, TTLOptions{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for replayed token, got %v", err)
	}
	if _, err := svc.Refresh(ctx, next.RefreshToken, TTLOptions{}); err != nil {
		t.Fatalf("new refresh token should validate: %v", err)
	}
}

// Two concurrent refreshes with the same token: exactly one rotation
// wins, the other observes ErrNotFound.
func TestRefresh_ConcurrentSingleWinner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, "user-1", "a@example.com", TTLOptions{})
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Refresh(ctx, pair.RefreshToken, TTLOptions{})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrNotFound):
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning rotation, got %d", wins)
	}
}

func TestRefresh_ExpiredRecord(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	// refresh JWT still valid, but the stored record has timed out
	refresh, err := svc.issuer.IssueRefresh("user-1", time.Hour)
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}
	if err := repo.Create(ctx, &RefreshToken{
		Token:     refresh,
		UserID:    "user-1",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Refresh(ctx, refresh, TTLOptions{}); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	// the expired row must be gone
	if _, err := repo.FindValid(ctx, refresh); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record should have been deleted, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, "user-1", "a@example.com", TTLOptions{})
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	if err := svc.Revoke(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	// revoked token cannot be refreshed
	if _, err := svc.Refresh(ctx, pair.RefreshToken, TTLOptions{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after revoke, got %v", err)
	}
	// revoking twice reports not found, never silent success
	if err := svc.Revoke(ctx, pair.RefreshToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double revoke, got %v", err)
	}
}

func TestRevoke_UnknownToken(t *testing.T) {
	svc, _ := newTestService(t)
	refresh, err := svc.issuer.IssueRefresh("user-9", time.Hour)
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}
	// signed but never registered
	if err := svc.Revoke(context.Background(), refresh); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown token, got %v", err)
	}
}

func TestTTLOptions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, "user-1", "a@example.com", TTLOptions{BearerTTL: 60 * time.Second, RefreshTTL: 120 * time.Second})
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if pair.BearerExpiresIn != 60 || pair.RefreshExpiresIn != 120 {
		t.Fatalf("explicit TTLs not honored: %+v", pair)
	}

	long, err := svc.IssuePair(ctx, "user-2", "b@example.com", TTLOptions{LongExpiry: true, BearerTTL: 60 * time.Second})
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if long.BearerExpiresIn != 31536000 || long.RefreshExpiresIn != 31536000 {
		t.Fatalf("longExpiry should override both TTLs: %+v", long)
	}
}

func TestRepository_CreateConflict(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	rec := &RefreshToken{Token: "tok", UserID: "u", ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := repo.Create(ctx, rec); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate token, got %v", err)
	}
}
