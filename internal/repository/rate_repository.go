package repository

import (
	"context"

	"github.com/boxline/boxline-backend/internal/model"
	"gorm.io/gorm"
)

type RateRepository interface {
	Create(ctx context.Context, r *model.CurrencyRate) error
	Latest(ctx context.Context, base, quote string) (*model.CurrencyRate, error)
	ListByPair(ctx context.Context, base, quote string, limit int) ([]model.CurrencyRate, error)
}

type rateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) RateRepository {
	return &rateRepository{db: db}
}

func (r *rateRepository) Create(ctx context.Context, rate *model.CurrencyRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *rateRepository) Latest(ctx context.Context, base, quote string) (*model.CurrencyRate, error) {
	var rate model.CurrencyRate
	if err := r.db.WithContext(ctx).
		Where("base_currency = ? AND quote_currency = ?", base, quote).
		Order("id DESC").
		First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *rateRepository) ListByPair(ctx context.Context, base, quote string, limit int) ([]model.CurrencyRate, error) {
	var list []model.CurrencyRate
	if err := r.db.WithContext(ctx).
		Where("base_currency = ? AND quote_currency = ?", base, quote).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
