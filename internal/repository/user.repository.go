package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/pg"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrChatIDTaken  = errors.New("chat id already attached to another user")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepository struct {
	*pg.DB
}

func NewUserRepository(db *pg.DB) *UserRepository {
	return &UserRepository{
		db,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	entity := toUserEntity(u)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toUserModel(entity), nil
}

// CreateGhost provisions an account from a bare messaging contact. The
// row carries the chat id and no credentials until it is claimed.
func (r *UserRepository) CreateGhost(ctx context.Context, chatID int64, name string) (*model.User, error) {
	entity := &UserEntity{ChatID: &chatID, Name: name}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toUserModel(entity), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserModel(&entity), nil
}

func (r *UserRepository) GetByChatID(ctx context.Context, chatID int64) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).Where("chat_id = ?", chatID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserModel(&entity), nil
}

// AttachChatID links a messaging identity to a user. The unique index on
// chat_id rejects an id still held by another row.
func (r *UserRepository) AttachChatID(ctx context.Context, userID int64, chatID int64) error {
	result := r.Write(ctx).
		Model(&UserEntity{}).
		Where("id = ?", userID).
		Update("chat_id", chatID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result := r.Write(ctx).Where("id = ?", id).Delete(&UserEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListWithChatID pages through users holding a linked messaging identity,
// keyset-style: pass the last seen id, get the next batch ordered by id.
// The recap job iterates with this instead of loading all users at once.
func (r *UserRepository) ListWithChatID(ctx context.Context, afterID int64, limit int) ([]*model.User, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var entities []*UserEntity
	err := r.Read(ctx).
		Where("chat_id IS NOT NULL").
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toUserModels(entities), nil
}
