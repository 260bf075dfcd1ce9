package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeportal/admission-api/internal/models"
)

func TestMemoryDraftRoundTrip(t *testing.T) {
	repo := NewMemoryDraftRepository(0)
	ctx := context.Background()

	missing, err := repo.Find(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	state := DraftState{
		Application: models.Application{ID: "APP10001", UserID: "u1", Status: models.StatusDraft},
		Step:        3,
	}
	require.NoError(t, repo.Save(ctx, "u1", state))

	found, err := repo.Find(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "APP10001", found.Application.ID)
	assert.Equal(t, 3, found.Step)

	require.NoError(t, repo.Delete(ctx, "u1"))
	gone, err := repo.Find(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestMemoryDraftExpiry(t *testing.T) {
	repo := NewMemoryDraftRepository(time.Hour)
	current := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return current }
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "u1", DraftState{Step: 1}))

	current = current.Add(30 * time.Minute)
	found, err := repo.Find(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, found)

	// Saving again renews the expiry window.
	require.NoError(t, repo.Save(ctx, "u1", DraftState{Step: 2}))
	current = current.Add(45 * time.Minute)
	found, err = repo.Find(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 2, found.Step)

	current = current.Add(2 * time.Hour)
	expired, err := repo.Find(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, expired)
}
