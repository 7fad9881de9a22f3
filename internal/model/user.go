package model

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleShipper Role = "SHIPPER"
	RoleClient  Role = "CLIENT"
	RoleSystem  Role = "SYSTEM"
)

type VerificationStatus string

const (
	VerificationUnverified   VerificationStatus = "UNVERIFIED"
	VerificationPendingVouch VerificationStatus = "PENDING_VOUCH"
	VerificationVerified     VerificationStatus = "VERIFIED"
)

type User struct {
	UID                string             `gorm:"primaryKey;size:36"`
	Email              string             `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash       string             `gorm:"size:128;not null"`
	DisplayName        string             `gorm:"size:120"`
	Role               Role               `gorm:"size:16;not null"`
	IsSystemUser       bool               `gorm:"not null;default:false"`
	VerificationStatus VerificationStatus `gorm:"size:24;not null"`
	CreatedAt          time.Time          `gorm:"autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
