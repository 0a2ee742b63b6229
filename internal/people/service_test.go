package people

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNotFound(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	_, err := svc.Get(context.Background(), "nm0000000")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetRolesSortedByMovieID(t *testing.T) {
	repo := NewMemoryRepository()
	rating := 9.0
	repo.Add("nm0000288", Person{
		Name:      "Christian Bale",
		BirthYear: intPtr(1974),
		Roles: []Role{
			{MovieName: "The Prestige", MovieID: "tt0482571", Category: "actor", Characters: []string{"Borden"}},
			{MovieName: "The Dark Knight", MovieID: "tt0468569", Category: "actor", Characters: []string{"Bruce Wayne"}, IMDBRating: &rating},
		},
	})
	svc := NewService(repo)

	p, err := svc.Get(context.Background(), "nm0000288")
	require.NoError(t, err)
	assert.Equal(t, "Christian Bale", p.Name)
	require.NotNil(t, p.BirthYear)
	assert.Equal(t, 1974, *p.BirthYear)
	assert.Nil(t, p.DeathYear)
	require.Len(t, p.Roles, 2)
	assert.Equal(t, "tt0468569", p.Roles[0].MovieID)
	assert.Equal(t, "tt0482571", p.Roles[1].MovieID)
}

func TestGetNoRoles(t *testing.T) {
	repo := NewMemoryRepository()
	repo.Add("nm1", Person{Name: "Nobody", Roles: []Role{}})
	svc := NewService(repo)

	p, err := svc.Get(context.Background(), "nm1")
	require.NoError(t, err)
	assert.NotNil(t, p.Roles)
	assert.Empty(t, p.Roles)
}

func intPtr(v int) *int { return &v }
