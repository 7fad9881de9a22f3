package service

import (
	"context"
	"errors"
	"testing"

	"github.com/boxline/boxline-backend/internal/model"
)

func TestBoxCreateRejectsClient(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoxService(db, newTestEngine(), nopLog())
	client := seedUser(t, db, "client@x.com", model.RoleClient)

	_, err := svc.Create(context.Background(), principalFor(client), CreateBoxInput{Label: "b"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestBoxCreateNilPrincipal(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoxService(db, newTestEngine(), nopLog())

	_, err := svc.Create(context.Background(), nil, CreateBoxInput{})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
}

func TestBoxCreateAssignsPickupItems(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoxService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)
	pickup, _ := seedPickupWithItems(t, db, u1.UID, 2.5, 3.0)

	box, err := svc.Create(context.Background(), principalFor(u1), CreateBoxInput{
		Label:     "first",
		PickupIDs: []uint64{pickup.ID},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if box.Status != model.BoxStatusOpen {
		t.Fatalf("new box status=%s want OPEN", box.Status)
	}
	if box.OwnerUserUID != u1.UID || box.CreatedByUserUID != u1.UID {
		t.Fatal("creator must start as owner")
	}

	var items []model.Item
	if err := db.Where("box_id = ?", box.ID).Find(&items).Error; err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 items in box, got %d", len(items))
	}
	for _, it := range items {
		if it.Status != model.ItemStatusInBox {
			t.Fatalf("item %d status=%s want IN_BOX", it.ID, it.Status)
		}
	}
}

func TestBoxCreateForeignPickup(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoxService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)
	u2 := seedUser(t, db, "u2@x.com", model.RoleShipper)
	pickup, _ := seedPickupWithItems(t, db, u2.UID, 1.0)

	_, err := svc.Create(context.Background(), principalFor(u1), CreateBoxInput{
		PickupIDs: []uint64{pickup.ID},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign pickup must read as not found, got %v", err)
	}
	// the box insert must have rolled back with it
	var n int64
	if err := db.Model(&model.Box{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("box insert must roll back, found %d boxes", n)
	}
}

func TestBoxUpdateShippedCascade(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoxService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)
	pickup, _ := seedPickupWithItems(t, db, u1.UID, 2.0, 4.0)

	box, err := svc.Create(context.Background(), principalFor(u1), CreateBoxInput{
		PickupIDs: []uint64{pickup.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	shipped := model.BoxStatusShipped
	updated, err := svc.Update(context.Background(), principalFor(u1), box.ID, UpdateBoxPatch{Status: &shipped})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.BoxStatusShipped {
		t.Fatalf("status=%s want SHIPPED", updated.Status)
	}
	if updated.ShippedAt == nil {
		t.Fatal("shippedAt must be stamped")
	}

	var items []model.Item
	if err := db.Where("box_id = ?", box.ID).Find(&items).Error; err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.Status != model.ItemStatusInTransit {
			t.Fatalf("item %d status=%s want IN_TRANSIT", it.ID, it.Status)
		}
	}

	delivered := model.BoxStatusDelivered
	updated, err = svc.Update(context.Background(), principalFor(u1), box.ID, UpdateBoxPatch{Status: &delivered})
	if err != nil {
		t.Fatal(err)
	}
	if updated.DeliveredAt == nil {
		t.Fatal("deliveredAt must be stamped")
	}
	if err := db.Where("box_id = ?", box.ID).Find(&items).Error; err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.Status != model.ItemStatusDelivered {
			t.Fatalf("item %d status=%s want DELIVERED", it.ID, it.Status)
		}
	}
}

func TestBoxUpdateSealedNoCascade(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoxService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)
	pickup, _ := seedPickupWithItems(t, db, u1.UID, 1.0)

	box, err := svc.Create(context.Background(), principalFor(u1), CreateBoxInput{
		PickupIDs: []uint64{pickup.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	sealed := model.BoxStatusSealed
	updated, err := svc.Update(context.Background(), principalFor(u1), box.ID, UpdateBoxPatch{Status: &sealed})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ShippedAt != nil || updated.DeliveredAt != nil {
		t.Fatal("sealing must not stamp shipping timestamps")
	}
	var items []model.Item
	if err := db.Where("box_id = ?", box.ID).Find(&items).Error; err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.Status != model.ItemStatusInBox {
			t.Fatalf("sealing must not cascade, item status=%s", it.Status)
		}
	}
}

func TestBoxManageRequiresOpen(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoxService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)
	pickup, items := seedPickupWithItems(t, db, u1.UID, 1.0)

	box, err := svc.Create(context.Background(), principalFor(u1), CreateBoxInput{})
	if err != nil {
		t.Fatal(err)
	}
	sealed := model.BoxStatusSealed
	if _, err := svc.Update(context.Background(), principalFor(u1), box.ID, UpdateBoxPatch{Status: &sealed}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AddPickups(context.Background(), principalFor(u1), box.ID, []uint64{pickup.ID}); !IsBadRequest(err) {
		t.Fatalf("addPickups on sealed box: want BadRequest, got %v", err)
	}
	if _, err := svc.RemovePickup(context.Background(), principalFor(u1), box.ID, pickup.ID); !IsBadRequest(err) {
		t.Fatalf("removePickup on sealed box: want BadRequest, got %v", err)
	}
	if _, err := svc.ManageItems(context.Background(), principalFor(u1), box.ID, []uint64{items[0].ID}, nil); !IsBadRequest(err) {
		t.Fatalf("manageItems on sealed box: want BadRequest, got %v", err)
	}
}

func TestBoxManageItems(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoxService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)
	_, items := seedPickupWithItems(t, db, u1.UID, 1.0, 2.0)

	box, err := svc.Create(context.Background(), principalFor(u1), CreateBoxInput{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ManageItems(context.Background(), principalFor(u1), box.ID, []uint64{items[0].ID, items[1].ID}, nil); err != nil {
		t.Fatalf("add items: %v", err)
	}
	var inBox int64
	if err := db.Model(&model.Item{}).Where("box_id = ?", box.ID).Count(&inBox).Error; err != nil {
		t.Fatal(err)
	}
	if inBox != 2 {
		t.Fatalf("want 2 items in box, got %d", inBox)
	}

	if _, err := svc.ManageItems(context.Background(), principalFor(u1), box.ID, nil, []uint64{items[0].ID}); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	var removed model.Item
	if err := db.First(&removed, items[0].ID).Error; err != nil {
		t.Fatal(err)
	}
	if removed.BoxID != nil || removed.Status != model.ItemStatusPending {
		t.Fatalf("removed item must be back to PENDING without box, got %s", removed.Status)
	}
}

func TestBoxTransfer(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoxService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)
	u2 := seedUser(t, db, "u2@x.com", model.RoleShipper)
	client := seedUser(t, db, "c1@x.com", model.RoleClient)
	pickup, _ := seedPickupWithItems(t, db, u1.UID, 2.0, 3.5)

	box, err := svc.Create(context.Background(), principalFor(u1), CreateBoxInput{
		PickupIDs: []uint64{pickup.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Transfer(context.Background(), principalFor(u2), box.ID, u2.Email); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner transfer: want ErrForbidden, got %v", err)
	}
	if _, err := svc.Transfer(context.Background(), principalFor(u1), box.ID, client.Email); !IsBadRequest(err) {
		t.Fatalf("transfer to client: want BadRequest, got %v", err)
	}
	if _, err := svc.Transfer(context.Background(), principalFor(u1), box.ID, "ghost@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("transfer to unknown email: want ErrNotFound, got %v", err)
	}

	transferred, err := svc.Transfer(context.Background(), principalFor(u1), box.ID, u2.Email)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if transferred.OwnerUserUID != u2.UID {
		t.Fatal("owner must move to the transfer target")
	}
	if transferred.CreatedByUserUID != u1.UID {
		t.Fatal("creator must never change")
	}

	// creator keeps the pickup breakdown and sees the transfer
	creatorView, err := svc.GetByID(context.Background(), principalFor(u1), box.ID)
	if err != nil {
		t.Fatalf("creator getById: %v", err)
	}
	if !creatorView.IsTransferred {
		t.Fatal("creator must see isTransferred")
	}
	if len(creatorView.Pickups) == 0 {
		t.Fatal("creator must receive the pickup breakdown")
	}

	// the new owner gets items but not the creator's client grouping
	ownerView, err := svc.GetByID(context.Background(), principalFor(u2), box.ID)
	if err != nil {
		t.Fatalf("new owner getById: %v", err)
	}
	if len(ownerView.Items) != 2 {
		t.Fatalf("new owner must see items, got %d", len(ownerView.Items))
	}
	if len(ownerView.Pickups) != 0 {
		t.Fatal("new owner must not receive the pickup breakdown")
	}
	if ownerView.EstimatedWeightLb != 5.5 {
		t.Fatalf("weight must be recomputed from items, got %v", ownerView.EstimatedWeightLb)
	}

	// post-transfer the creator alone may no longer update
	sealed := model.BoxStatusSealed
	if _, err := svc.Update(context.Background(), principalFor(u1), box.ID, UpdateBoxPatch{Status: &sealed}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("creator update after transfer: want ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(context.Background(), principalFor(u2), box.ID, UpdateBoxPatch{Status: &sealed}); err != nil {
		t.Fatalf("new owner update: %v", err)
	}
}

func TestBoxGetVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoxService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)
	u3 := seedUser(t, db, "u3@x.com", model.RoleShipper)
	admin := seedUser(t, db, "admin@x.com", model.RoleAdmin)

	box, err := svc.Create(context.Background(), principalFor(u1), CreateBoxInput{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetByID(context.Background(), principalFor(u3), box.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger getById: want ErrForbidden, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), principalFor(admin), box.ID); err != nil {
		t.Fatalf("admin getById: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), principalFor(u1), 99999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing box: want ErrNotFound, got %v", err)
	}
}

func TestBoxList(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoxService(db, newTestEngine(), nopLog())
	u1 := seedUser(t, db, "u1@x.com", model.RoleShipper)
	u2 := seedUser(t, db, "u2@x.com", model.RoleShipper)
	client := seedUser(t, db, "c1@x.com", model.RoleClient)

	mine, err := svc.Create(context.Background(), principalFor(u1), CreateBoxInput{Label: "mine"})
	if err != nil {
		t.Fatal(err)
	}
	incoming, err := svc.Create(context.Background(), principalFor(u2), CreateBoxInput{Label: "incoming"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Transfer(context.Background(), principalFor(u2), incoming.ID, u1.Email); err != nil {
		t.Fatal(err)
	}

	created, err := svc.List(context.Background(), principalFor(u1), BoxFilterCreated)
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 1 || created[0].Box.ID != mine.ID || created[0].Type != BoxTypeCreated {
		t.Fatalf("created filter wrong: %+v", created)
	}

	transferredIn, err := svc.List(context.Background(), principalFor(u1), BoxFilterTransferred)
	if err != nil {
		t.Fatal(err)
	}
	if len(transferredIn) != 1 || transferredIn[0].Box.ID != incoming.ID || transferredIn[0].Type != BoxTypeTransferredIn {
		t.Fatalf("transferred filter wrong: %+v", transferredIn)
	}
	if !transferredIn[0].IsCurrentOwner {
		t.Fatal("transferred-in row must be annotated as currently owned")
	}

	all, err := svc.List(context.Background(), principalFor(u1), BoxFilterAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("all filter must union both, got %d", len(all))
	}

	if _, err := svc.List(context.Background(), principalFor(client), BoxFilterAll); !errors.Is(err, ErrForbidden) {
		t.Fatalf("client list: want ErrForbidden, got %v", err)
	}
}
