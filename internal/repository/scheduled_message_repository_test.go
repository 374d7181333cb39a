package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duitapp/ledger/internal/model"
)

func TestScheduledMessageRepository_ListDue(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewScheduledMessageRepository(db)
	ctx := context.Background()

	now := time.Now()
	due, err := repo.Create(ctx, &model.ScheduledMessage{
		UserID:      1,
		Payload:     "pay the electric bill",
		ScheduledAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ScheduledMessageStatusPending, due.Status)

	_, err = repo.Create(ctx, &model.ScheduledMessage{
		UserID:      1,
		Payload:     "future reminder",
		ScheduledAt: now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &model.ScheduledMessage{
		UserID:      2,
		Payload:     "someone else's reminder",
		ScheduledAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)

	got, err := repo.ListDue(ctx, 1, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, due.ID, got[0].ID)
}

func TestScheduledMessageRepository_MarkSent(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewScheduledMessageRepository(db)
	ctx := context.Background()

	m, err := repo.Create(ctx, &model.ScheduledMessage{
		UserID:      1,
		Payload:     "once only",
		ScheduledAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	t.Run("first flip succeeds", func(t *testing.T) {
		require.NoError(t, repo.MarkSent(ctx, m.ID))

		got, err := repo.ListDue(ctx, 1, time.Now())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("second flip reports not found", func(t *testing.T) {
		err := repo.MarkSent(ctx, m.ID)
		assert.ErrorIs(t, err, ErrScheduledMessageNotFound)
	})

	t.Run("failed message stays out of due list", func(t *testing.T) {
		f, err := repo.Create(ctx, &model.ScheduledMessage{
			UserID:      1,
			Payload:     "broken delivery",
			ScheduledAt: time.Now().Add(-time.Minute),
		})
		require.NoError(t, err)
		require.NoError(t, repo.MarkFailed(ctx, f.ID))

		got, err := repo.ListDue(ctx, 1, time.Now())
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
