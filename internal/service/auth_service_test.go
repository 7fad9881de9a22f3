package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boxline/boxline-backend/internal/model"
)

func TestRegisterShipperCreatesVouchRequests(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, nopLog(), "test-secret", time.Hour)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:         "New@X.com",
		Password:      "longenough",
		DisplayName:   "New Shipper",
		Role:          model.RoleShipper,
		VoucherEmails: []string{"v1@x.com", "V2@x.com", "new@x.com", ""},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "new@x.com" {
		t.Fatalf("email must be normalized, got %s", user.Email)
	}
	if user.VerificationStatus != model.VerificationPendingVouch {
		t.Fatalf("shipper must start PENDING_VOUCH, got %s", user.VerificationStatus)
	}

	var reqs []model.VouchRequest
	if err := db.Where("requester_user_uid = ?", user.UID).Find(&reqs).Error; err != nil {
		t.Fatal(err)
	}
	// self and blank voucher entries are dropped
	if len(reqs) != 2 {
		t.Fatalf("want 2 vouch requests, got %d", len(reqs))
	}
	for _, r := range reqs {
		if r.Status != model.VouchStatusPending {
			t.Fatalf("vouch request must start PENDING, got %s", r.Status)
		}
		if r.VoucherUserUID != nil {
			t.Fatal("voucher uid must stay unbound until decision")
		}
	}
}

func TestRegisterClientStartsUnverified(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, nopLog(), "test-secret", time.Hour)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "client@x.com",
		Password: "longenough",
		Role:     model.RoleClient,
	})
	if err != nil {
		t.Fatal(err)
	}
	if user.VerificationStatus != model.VerificationUnverified {
		t.Fatalf("client must start UNVERIFIED, got %s", user.VerificationStatus)
	}
}

func TestRegisterRejections(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, nopLog(), "test-secret", time.Hour)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"admin role", RegisterInput{Email: "a@x.com", Password: "longenough", Role: model.RoleAdmin}},
		{"system role", RegisterInput{Email: "s@x.com", Password: "longenough", Role: model.RoleSystem}},
		{"short password", RegisterInput{Email: "p@x.com", Password: "short", Role: model.RoleClient}},
		{"bad email", RegisterInput{Email: "nope", Password: "longenough", Role: model.RoleClient}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tt.in); !IsBadRequest(err) {
				t.Fatalf("want BadRequest, got %v", err)
			}
		})
	}
}

func TestLoginAndResolvePrincipal(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, nopLog(), "test-secret", time.Hour)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "s@x.com",
		Password: "longenough",
		Role:     model.RoleShipper,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Login(context.Background(), "s@x.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: want ErrInvalidCredentials, got %v", err)
	}

	token, logged, err := svc.Login(context.Background(), "S@x.com", "longenough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.UID != user.UID {
		t.Fatal("login must return the registered user")
	}

	p, err := svc.ResolvePrincipal(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.UID != user.UID || p.Role != model.RoleShipper || p.Email != "s@x.com" {
		t.Fatalf("principal mismatch: %+v", p)
	}

	if _, err := svc.ResolvePrincipal(context.Background(), "not-a-token"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("garbage token: want ErrUnauthenticated, got %v", err)
	}
}

func TestLoginRefusesSystemUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, nopLog(), "test-secret", time.Hour)

	sys := seedUser(t, db, "system@x.com", model.RoleSystem)
	sys.IsSystemUser = true
	if err := db.Save(sys).Error; err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Login(context.Background(), sys.Email, "anything"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("system login: want ErrForbidden, got %v", err)
	}
}
