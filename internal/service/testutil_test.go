package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/boxline/boxline-backend/internal/logger"
	"github.com/boxline/boxline-backend/internal/model"
	"github.com/boxline/boxline-backend/internal/policy"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Pickup{},
		&model.Item{},
		&model.Box{},
		&model.VouchRequest{},
		&model.CurrencyRate{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEngine() *policy.Engine {
	return policy.NewEngine(policy.DefaultRules())
}

func seedUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		UID:                uuid.NewString(),
		Email:              email,
		PasswordHash:       "x",
		Role:               role,
		VerificationStatus: model.VerificationVerified,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func principalFor(u *model.User) *policy.Principal {
	return &policy.Principal{
		UID:          u.UID,
		Role:         u.Role,
		Email:        u.Email,
		IsSystemUser: u.IsSystemUser,
		Verification: u.VerificationStatus,
	}
}

func seedPickupWithItems(t *testing.T, db *gorm.DB, ownerUID string, weights ...float64) (*model.Pickup, []model.Item) {
	t.Helper()
	p := &model.Pickup{OwnerUserUID: ownerUID, ClientName: "client"}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed pickup: %v", err)
	}
	items := make([]model.Item, 0, len(weights))
	for i, w := range weights {
		it := model.Item{
			PickupID:          p.ID,
			Description:       fmt.Sprintf("item-%d", i+1),
			EstimatedWeightLb: w,
			Status:            model.ItemStatusPending,
		}
		if err := db.Create(&it).Error; err != nil {
			t.Fatalf("seed item: %v", err)
		}
		items = append(items, it)
	}
	return p, items
}

func nopLog() *logger.Logger {
	return logger.NewNop()
}
