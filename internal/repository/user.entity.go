package repository

import (
	"time"

	"github.com/duitapp/ledger/internal/model"
)

type UserEntity struct {
	ID           int64     `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Email        *string   `db:"email"         gorm:"column:email;unique"`
	PasswordHash string    `db:"password_hash" gorm:"column:password_hash;not null;default:''"`
	ChatID       *int64    `db:"chat_id"       gorm:"column:chat_id;unique"`
	Name         string    `db:"name"          gorm:"column:name;not null;default:''"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (UserEntity) TableName() string {
	return "users"
}

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	return &UserEntity{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		ChatID:       m.ChatID,
		Name:         m.Name,
		CreatedAt:    m.CreatedAt,
	}
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		ID:           e.ID,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		ChatID:       e.ChatID,
		Name:         e.Name,
		CreatedAt:    e.CreatedAt,
	}
}

func toUserModels(entities []*UserEntity) []*model.User {
	if entities == nil {
		return nil
	}
	models := make([]*model.User, len(entities))
	for i, e := range entities {
		models[i] = toUserModel(e)
	}
	return models
}
