package repository

import (
	"context"

	"github.com/boxline/boxline-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BoxRepository interface {
	Create(ctx context.Context, b *model.Box) error
	FindByID(ctx context.Context, id uint64) (*model.Box, error)
	// FindByIDForUpdate takes a row lock so concurrent status transitions
	// serialize on the box instead of both applying their cascade.
	FindByIDForUpdate(ctx context.Context, id uint64) (*model.Box, error)
	Update(ctx context.Context, b *model.Box) error
	ListCreated(ctx context.Context, uid string) ([]model.Box, error)
	ListTransferredIn(ctx context.Context, uid string) ([]model.Box, error)
	ListCreatedOrOwned(ctx context.Context, uid string) ([]model.Box, error)
}

type boxRepository struct {
	db *gorm.DB
}

func NewBoxRepository(db *gorm.DB) BoxRepository {
	return &boxRepository{db: db}
}

func (r *boxRepository) Create(ctx context.Context, b *model.Box) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *boxRepository) FindByID(ctx context.Context, id uint64) (*model.Box, error) {
	var b model.Box
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *boxRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*model.Box, error) {
	q := r.db.WithContext(ctx)
	// sqlite has a single writer and rejects FOR UPDATE syntax.
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var b model.Box
	if err := q.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *boxRepository) Update(ctx context.Context, b *model.Box) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *boxRepository) ListCreated(ctx context.Context, uid string) ([]model.Box, error) {
	var list []model.Box
	if err := r.db.WithContext(ctx).
		Where("created_by_user_uid = ?", uid).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *boxRepository) ListTransferredIn(ctx context.Context, uid string) ([]model.Box, error) {
	var list []model.Box
	if err := r.db.WithContext(ctx).
		Where("owner_user_uid = ? AND created_by_user_uid <> ?", uid, uid).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *boxRepository) ListCreatedOrOwned(ctx context.Context, uid string) ([]model.Box, error) {
	var list []model.Box
	if err := r.db.WithContext(ctx).
		Where("created_by_user_uid = ? OR owner_user_uid = ?", uid, uid).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
