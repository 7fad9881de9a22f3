package service

import (
	"context"
	"errors"
	"testing"

	"github.com/boxline/boxline-backend/internal/model"
)

func TestPickupCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewPickupService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)

	detail, err := svc.Create(context.Background(), principalFor(u1), CreatePickupInput{
		ClientName: "Ama",
		Address:    "12 Ring Road",
		Items: []PickupItemInput{
			{Description: "blender", EstimatedWeightLb: 4.2},
			{Description: "shoes", EstimatedWeightLb: 1.8},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if detail.Pickup.OwnerUserUID != u1.UID {
		t.Fatal("pickup must belong to the creating principal")
	}
	if len(detail.Items) != 2 {
		t.Fatalf("want 2 items, got %d", len(detail.Items))
	}
	for _, it := range detail.Items {
		if it.Status != model.ItemStatusPending {
			t.Fatalf("new item status=%s want PENDING", it.Status)
		}
		if it.BoxID != nil {
			t.Fatal("new item must not sit in a box")
		}
	}
}

func TestPickupCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewPickupService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)
	client := seedUser(t, db, "c1@x.com", model.RoleClient)

	if _, err := svc.Create(context.Background(), principalFor(u1), CreatePickupInput{}); !IsBadRequest(err) {
		t.Fatalf("missing client name: want BadRequest, got %v", err)
	}
	if _, err := svc.Create(context.Background(), principalFor(client), CreatePickupInput{ClientName: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("client create: want ErrForbidden, got %v", err)
	}
	in := CreatePickupInput{ClientName: "x", Items: []PickupItemInput{{Description: "  "}}}
	if _, err := svc.Create(context.Background(), principalFor(u1), in); !IsBadRequest(err) {
		t.Fatalf("blank item description: want BadRequest, got %v", err)
	}
}

func TestPickupVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewPickupService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)
	u2 := seedUser(t, db, "u2@x.com", model.RoleShipper)
	admin := seedUser(t, db, "admin@x.com", model.RoleAdmin)
	pickup, _ := seedPickupWithItems(t, db, u1.UID, 1.0)

	if _, err := svc.GetByID(context.Background(), principalFor(u1), pickup.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	// a foreign pickup is indistinguishable from a missing one
	if _, err := svc.GetByID(context.Background(), principalFor(u2), pickup.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign get: want ErrNotFound, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), principalFor(admin), pickup.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}

	seedPickupWithItems(t, db, u2.UID, 2.0)
	mine, err := svc.List(context.Background(), principalFor(u1))
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != pickup.ID {
		t.Fatalf("list must return only own pickups: %+v", mine)
	}
}
