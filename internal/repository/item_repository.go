package repository

import (
	"context"

	"github.com/boxline/boxline-backend/internal/model"
	"gorm.io/gorm"
)

type ItemRepository interface {
	CreateBatch(ctx context.Context, items []*model.Item) error
	FindByIDs(ctx context.Context, ids []uint64) ([]model.Item, error)
	ListByBox(ctx context.Context, boxID uint64) ([]model.Item, error)
	ListByPickup(ctx context.Context, pickupID uint64) ([]model.Item, error)
	// AssignPickupsToBox points every item of the given pickups at the box.
	AssignPickupsToBox(ctx context.Context, pickupIDs []uint64, boxID uint64) (int64, error)
	UnassignPickupFromBox(ctx context.Context, pickupID, boxID uint64) (int64, error)
	AssignItemsToBox(ctx context.Context, itemIDs []uint64, boxID uint64) (int64, error)
	UnassignItemsFromBox(ctx context.Context, itemIDs []uint64, boxID uint64) (int64, error)
	UpdateStatusByBox(ctx context.Context, boxID uint64, status model.ItemStatus) (int64, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) CreateBatch(ctx context.Context, items []*model.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(items).Error
}

func (r *itemRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.Item, error) {
	var list []model.Item
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *itemRepository) ListByBox(ctx context.Context, boxID uint64) ([]model.Item, error) {
	var list []model.Item
	if err := r.db.WithContext(ctx).
		Where("box_id = ?", boxID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *itemRepository) ListByPickup(ctx context.Context, pickupID uint64) ([]model.Item, error) {
	var list []model.Item
	if err := r.db.WithContext(ctx).
		Where("pickup_id = ?", pickupID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *itemRepository) AssignPickupsToBox(ctx context.Context, pickupIDs []uint64, boxID uint64) (int64, error) {
	if len(pickupIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("pickup_id IN ?", pickupIDs).
		Updates(map[string]interface{}{
			"box_id": boxID,
			"status": model.ItemStatusInBox,
		})
	return res.RowsAffected, res.Error
}

func (r *itemRepository) UnassignPickupFromBox(ctx context.Context, pickupID, boxID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("pickup_id = ? AND box_id = ?", pickupID, boxID).
		Updates(map[string]interface{}{
			"box_id": nil,
			"status": model.ItemStatusPending,
		})
	return res.RowsAffected, res.Error
}

func (r *itemRepository) AssignItemsToBox(ctx context.Context, itemIDs []uint64, boxID uint64) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id IN ?", itemIDs).
		Updates(map[string]interface{}{
			"box_id": boxID,
			"status": model.ItemStatusInBox,
		})
	return res.RowsAffected, res.Error
}

func (r *itemRepository) UnassignItemsFromBox(ctx context.Context, itemIDs []uint64, boxID uint64) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id IN ? AND box_id = ?", itemIDs, boxID).
		Updates(map[string]interface{}{
			"box_id": nil,
			"status": model.ItemStatusPending,
		})
	return res.RowsAffected, res.Error
}

func (r *itemRepository) UpdateStatusByBox(ctx context.Context, boxID uint64, status model.ItemStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("box_id = ?", boxID).
		Update("status", status)
	return res.RowsAffected, res.Error
}
