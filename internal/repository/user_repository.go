package repository

import (
	"context"

	"github.com/boxline/boxline-backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateVerification(ctx context.Context, uid string, status model.VerificationStatus) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UpdateVerification(ctx context.Context, uid string, status model.VerificationStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("uid = ?", uid).
		Update("verification_status", status).Error
}
