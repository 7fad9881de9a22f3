package model

import "time"

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "PENDING"
	ItemStatusInBox     ItemStatus = "IN_BOX"
	ItemStatusInTransit ItemStatus = "IN_TRANSIT"
	ItemStatusDelivered ItemStatus = "DELIVERED"
	ItemStatusHandedOff ItemStatus = "HANDED_OFF"
	ItemStatusSold      ItemStatus = "SOLD"
	ItemStatusReturned  ItemStatus = "RETURNED"
)

// Items ride their box: while a box ships, item status is driven by the
// box transition cascade, never set directly.
type Item struct {
	ID                uint64     `gorm:"primaryKey;autoIncrement"`
	PickupID          uint64     `gorm:"column:pickup_id;index;not null"`
	BoxID             *uint64    `gorm:"column:box_id;index"`
	Description       string     `gorm:"size:255;not null"`
	EstimatedWeightLb float64    `gorm:"column:estimated_weight_lb"`
	Status            ItemStatus `gorm:"size:16;not null"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}
