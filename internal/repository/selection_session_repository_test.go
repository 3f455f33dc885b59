package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	"github.com/noah-isme/uniplanner-api/internal/models"
)

func TestSelectionSessionMemoryRoundTrip(t *testing.T) {
	repo := NewSelectionSessionRepository(nil, time.Minute)
	ctx := context.Background()

	session := &models.SelectionSession{
		ID:              "s1",
		CurrentSemester: 3,
		Snapshot: curriculum.Snapshot{
			Phase:    curriculum.PhaseApproved,
			Approved: []string{"167389"},
		},
	}
	require.NoError(t, repo.Save(ctx, session))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"167389"}, got.Snapshot.Approved)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSelectionSessionNotFound)
}

func TestSelectionSessionMemoryExpires(t *testing.T) {
	repo := NewSelectionSessionRepository(nil, time.Minute)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.SelectionSession{ID: "s1"}))

	now = now.Add(time.Minute)
	_, err := repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSelectionSessionNotFound)
}
