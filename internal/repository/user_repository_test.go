package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duitapp/ledger/internal/model"
)

func TestUserRepository_Ghosts(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("ghost carries chat id and no credentials", func(t *testing.T) {
		ghost, err := repo.CreateGhost(ctx, 555, "bot contact")
		require.NoError(t, err)
		assert.True(t, ghost.IsGhost())

		got, err := repo.GetByChatID(ctx, 555)
		require.NoError(t, err)
		assert.Equal(t, ghost.ID, got.ID)
	})

	t.Run("claimed account is not a ghost", func(t *testing.T) {
		email := "a@example.com"
		u, err := repo.Create(ctx, &model.User{Email: &email, PasswordHash: "x", Name: "A"})
		require.NoError(t, err)
		assert.False(t, u.IsGhost())
	})

	t.Run("unknown chat id is not found", func(t *testing.T) {
		_, err := repo.GetByChatID(ctx, 404404)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepository_AttachChatID(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewUserRepository(db)
	ctx := context.Background()

	email := "b@example.com"
	u, err := repo.Create(ctx, &model.User{Email: &email, PasswordHash: "x"})
	require.NoError(t, err)

	require.NoError(t, repo.AttachChatID(ctx, u.ID, 777))

	got, err := repo.GetByChatID(ctx, 777)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	t.Run("attach to missing user", func(t *testing.T) {
		err := repo.AttachChatID(ctx, 99999, 888)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepository_ListWithChatID(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewUserRepository(db)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		_, err := repo.CreateGhost(ctx, 1000+i, "")
		require.NoError(t, err)
	}
	// user without chat id must not appear
	email := "web@example.com"
	_, err := repo.Create(ctx, &model.User{Email: &email, PasswordHash: "x"})
	require.NoError(t, err)

	t.Run("pages through linked users in id order", func(t *testing.T) {
		var seen []int64
		afterID := int64(0)
		for {
			page, err := repo.ListWithChatID(ctx, afterID, 2)
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			for _, u := range page {
				require.NotNil(t, u.ChatID)
				seen = append(seen, u.ID)
			}
			afterID = page[len(page)-1].ID
		}
		assert.Len(t, seen, 5)
		for i := 1; i < len(seen); i++ {
			assert.Greater(t, seen[i], seen[i-1])
		}
	})
}
