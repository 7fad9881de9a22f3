package model

import "time"

type VouchStatus string

const (
	VouchStatusPending  VouchStatus = "PENDING"
	VouchStatusApproved VouchStatus = "APPROVED"
	VouchStatusDeclined VouchStatus = "DECLINED"
)

// VoucherEmail is free text entered at onboarding; it is matched against
// the approving user's own email at decision time. VoucherUserUID is bound
// only when the request leaves PENDING.
type VouchRequest struct {
	ID               uint64      `gorm:"primaryKey;autoIncrement"`
	RequesterUserUID string      `gorm:"column:requester_user_uid;size:36;index;not null"`
	VoucherEmail     string      `gorm:"column:voucher_email;size:255;index;not null"`
	VoucherUserUID   *string     `gorm:"column:voucher_user_uid;size:36"`
	Status           VouchStatus `gorm:"size:16;not null"`
	DecidedAt        *time.Time  `gorm:"column:decided_at"`
	CreatedAt        time.Time   `gorm:"autoCreateTime"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime"`
}

func (VouchRequest) TableName() string {
	return "vouch_requests"
}
