package repository

import (
	"context"

	"github.com/boxline/boxline-backend/internal/model"
	"gorm.io/gorm"
)

type PickupRepository interface {
	Create(ctx context.Context, p *model.Pickup) error
	FindByID(ctx context.Context, id uint64) (*model.Pickup, error)
	// FindOwnedByIDs returns only the rows among ids that belong to uid.
	// Callers compare lengths to detect foreign or missing pickups.
	FindOwnedByIDs(ctx context.Context, ids []uint64, uid string) ([]model.Pickup, error)
	ListByOwner(ctx context.Context, uid string) ([]model.Pickup, error)
}

type pickupRepository struct {
	db *gorm.DB
}

func NewPickupRepository(db *gorm.DB) PickupRepository {
	return &pickupRepository{db: db}
}

func (r *pickupRepository) Create(ctx context.Context, p *model.Pickup) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pickupRepository) FindByID(ctx context.Context, id uint64) (*model.Pickup, error) {
	var p model.Pickup
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pickupRepository) FindOwnedByIDs(ctx context.Context, ids []uint64, uid string) ([]model.Pickup, error) {
	var list []model.Pickup
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND owner_user_uid = ?", ids, uid).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *pickupRepository) ListByOwner(ctx context.Context, uid string) ([]model.Pickup, error) {
	var list []model.Pickup
	if err := r.db.WithContext(ctx).
		Where("owner_user_uid = ?", uid).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
