package repository

import (
	"context"

	"github.com/boxline/boxline-backend/internal/model"
	"gorm.io/gorm"
)

type VouchRepository interface {
	CreateBatch(ctx context.Context, reqs []*model.VouchRequest) error
	// FindForVoucher loads the request only when its voucher email matches;
	// a mismatch is indistinguishable from a missing row on purpose.
	FindForVoucher(ctx context.Context, id uint64, voucherEmail string) (*model.VouchRequest, error)
	Update(ctx context.Context, v *model.VouchRequest) error
	CountApprovedByRequester(ctx context.Context, requesterUID string) (int64, error)
	ListPendingForVoucher(ctx context.Context, voucherEmail string) ([]model.VouchRequest, error)
	ListDecidedForVoucher(ctx context.Context, voucherEmail string) ([]model.VouchRequest, error)
	ListByRequester(ctx context.Context, requesterUID string) ([]model.VouchRequest, error)
}

type vouchRepository struct {
	db *gorm.DB
}

func NewVouchRepository(db *gorm.DB) VouchRepository {
	return &vouchRepository{db: db}
}

func (r *vouchRepository) CreateBatch(ctx context.Context, reqs []*model.VouchRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(reqs).Error
}

func (r *vouchRepository) FindForVoucher(ctx context.Context, id uint64, voucherEmail string) (*model.VouchRequest, error) {
	var v model.VouchRequest
	if err := r.db.WithContext(ctx).
		Where("id = ? AND voucher_email = ?", id, voucherEmail).
		First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vouchRepository) Update(ctx context.Context, v *model.VouchRequest) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *vouchRepository) CountApprovedByRequester(ctx context.Context, requesterUID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.VouchRequest{}).
		Where("requester_user_uid = ? AND status = ?", requesterUID, model.VouchStatusApproved).
		Count(&n).Error
	return n, err
}

func (r *vouchRepository) ListPendingForVoucher(ctx context.Context, voucherEmail string) ([]model.VouchRequest, error) {
	var list []model.VouchRequest
	if err := r.db.WithContext(ctx).
		Where("voucher_email = ? AND status = ?", voucherEmail, model.VouchStatusPending).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *vouchRepository) ListDecidedForVoucher(ctx context.Context, voucherEmail string) ([]model.VouchRequest, error) {
	var list []model.VouchRequest
	if err := r.db.WithContext(ctx).
		Where("voucher_email = ? AND status <> ?", voucherEmail, model.VouchStatusPending).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *vouchRepository) ListByRequester(ctx context.Context, requesterUID string) ([]model.VouchRequest, error) {
	var list []model.VouchRequest
	if err := r.db.WithContext(ctx).
		Where("requester_user_uid = ?", requesterUID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
