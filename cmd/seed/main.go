package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/boxline/boxline-backend/internal/config"
	"github.com/boxline/boxline-backend/internal/db"
	"github.com/boxline/boxline-backend/internal/model"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	Email        string
	DisplayName  string
	Role         model.Role
	IsSystemUser bool
	Verification model.VerificationStatus
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(
		&model.User{},
		&model.Pickup{},
		&model.Item{},
		&model.Box{},
		&model.VouchRequest{},
		&model.CurrencyRate{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "changeme-dev-only"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []seedUser{
		{Email: "admin@boxline.dev", DisplayName: "Admin", Role: model.RoleAdmin, Verification: model.VerificationVerified},
		{Email: "system@boxline.dev", DisplayName: "System", Role: model.RoleSystem, IsSystemUser: true, Verification: model.VerificationVerified},
		{Email: "shipper1@boxline.dev", DisplayName: "Shipper One", Role: model.RoleShipper, Verification: model.VerificationVerified},
		{Email: "shipper2@boxline.dev", DisplayName: "Shipper Two", Role: model.RoleShipper, Verification: model.VerificationPendingVouch},
		{Email: "client1@boxline.dev", DisplayName: "Client One", Role: model.RoleClient, Verification: model.VerificationUnverified},
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, su := range users {
			var existing model.User
			err := tx.Where("email = ?", su.Email).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			u := model.User{
				UID:                uuid.NewString(),
				Email:              su.Email,
				PasswordHash:       string(hash),
				DisplayName:        su.DisplayName,
				Role:               su.Role,
				IsSystemUser:       su.IsSystemUser,
				VerificationStatus: su.Verification,
			}
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
			log.Printf("seeded user %s (%s)", su.Email, su.Role)
		}

		var rateCount int64
		if err := tx.Model(&model.CurrencyRate{}).Count(&rateCount).Error; err != nil {
			return err
		}
		if rateCount > 0 {
			return nil
		}
		var admin model.User
		if err := tx.Where("email = ?", "admin@boxline.dev").First(&admin).Error; err != nil {
			return err
		}
		rates := []model.CurrencyRate{
			{BaseCurrency: "USD", QuoteCurrency: "GHS", Rate: 15.6, CreatedByUserUID: admin.UID},
			{BaseCurrency: "USD", QuoteCurrency: "NGN", Rate: 1580, CreatedByUserUID: admin.UID},
			{BaseCurrency: "GBP", QuoteCurrency: "USD", Rate: 1.27, CreatedByUserUID: admin.UID},
		}
		if err := tx.Create(&rates).Error; err != nil {
			return err
		}
		log.Printf("seeded %d currency rates", len(rates))
		return nil
	})
}
