package model

import "time"

type Pickup struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement"`
	OwnerUserUID string     `gorm:"column:owner_user_uid;size:36;index;not null"`
	ClientName   string     `gorm:"size:120"`
	Address      string     `gorm:"size:255"`
	PickedUpAt   *time.Time `gorm:"column:picked_up_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

func (Pickup) TableName() string {
	return "pickups"
}
