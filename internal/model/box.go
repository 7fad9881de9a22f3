package model

import "time"

type BoxStatus string

const (
	BoxStatusOpen      BoxStatus = "OPEN"
	BoxStatusSealed    BoxStatus = "SEALED"
	BoxStatusShipped   BoxStatus = "SHIPPED"
	BoxStatusDelivered BoxStatus = "DELIVERED"
)

// OwnerUserUID is the current holder and changes only via transfer.
// CreatedByUserUID is fixed at creation.
type Box struct {
	ID                uint64     `gorm:"primaryKey;autoIncrement"`
	Label             string     `gorm:"size:120"`
	OwnerUserUID      string     `gorm:"column:owner_user_uid;size:36;index;not null"`
	CreatedByUserUID  string     `gorm:"column:created_by_user_uid;size:36;index;not null"`
	Status            BoxStatus  `gorm:"size:16;not null"`
	EstimatedWeightLb float64    `gorm:"column:estimated_weight_lb"`
	ShippedAt         *time.Time `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time `gorm:"column:delivered_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
}

func (Box) TableName() string {
	return "boxes"
}
