package services

import (
	"context"
	"errors"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/internal/repository"
	"github.com/duitapp/ledger/pkg/logger"
)

type ReconcileUserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByChatID(ctx context.Context, chatID int64) (*model.User, error)
	AttachChatID(ctx context.Context, userID int64, chatID int64) error
	Delete(ctx context.Context, id int64) error
}

type ReconcileSettingsRepository interface {
	DeleteByUser(ctx context.Context, userID int64) error
}

// Repointer rewrites row ownership for one owned-row table.
type Repointer interface {
	RepointOwner(ctx context.Context, fromUserID, toUserID int64) error
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReconcileService folds a ghost identity into an authoritative account.
// A ghost is a user created on first bot contact: it holds a chat id and
// owns ledger rows but has no credentials. After a merge the ghost is gone,
// its rows belong to the primary, and the chat id routes to the primary.
type ReconcileService struct {
	db           Transactor
	userRepo     ReconcileUserRepository
	settingsRepo ReconcileSettingsRepository
	owned        []Repointer
}

func NewReconcileService(db Transactor, userRepo ReconcileUserRepository, settingsRepo ReconcileSettingsRepository, owned ...Repointer) *ReconcileService {
	return &ReconcileService{
		db:           db,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		owned:        owned,
	}
}

// Merge transfers everything the chat id's ghost owns to the primary user
// and retires the ghost. The transfer, the ghost deletion and the chat id
// attachment commit together or not at all. Merging a chat id held by a
// credentialed account is refused: that account is somebody's, not a ghost.
func (s *ReconcileService) Merge(ctx context.Context, primaryUserID int64, chatID int64) error {
	primary, err := s.userRepo.GetByID(ctx, primaryUserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}
	if primary.ChatID != nil && *primary.ChatID == chatID {
		return nil
	}

	holder, err := s.userRepo.GetByChatID(ctx, chatID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	// Unclaimed chat id: nothing to fold in, just route it to the primary.
	if holder == nil {
		return s.userRepo.AttachChatID(ctx, primary.ID, chatID)
	}

	if !holder.IsGhost() {
		return ErrConflict
	}

	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, repo := range s.owned {
			if err := repo.RepointOwner(ctx, holder.ID, primary.ID); err != nil {
				return err
			}
		}

		// The primary keeps its own settings; the ghost's are noise.
		if err := s.settingsRepo.DeleteByUser(ctx, holder.ID); err != nil {
			return err
		}

		if err := s.userRepo.Delete(ctx, holder.ID); err != nil {
			return err
		}

		return s.userRepo.AttachChatID(ctx, primary.ID, chatID)
	})
	if err != nil {
		return err
	}

	logger.Info("identity merged",
		"primary_user_id", primary.ID,
		"ghost_user_id", holder.ID,
		"chat_id", chatID)
	return nil
}
