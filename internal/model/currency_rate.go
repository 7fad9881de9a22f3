package model

import "time"

type CurrencyRate struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement"`
	BaseCurrency     string    `gorm:"column:base_currency;size:3;index:idx_rates_pair;not null"`
	QuoteCurrency    string    `gorm:"column:quote_currency;size:3;index:idx_rates_pair;not null"`
	Rate             float64   `gorm:"not null"`
	CreatedByUserUID string    `gorm:"column:created_by_user_uid;size:36;not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

func (CurrencyRate) TableName() string {
	return "currency_rates"
}
