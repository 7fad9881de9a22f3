package service

import (
	"context"
	"errors"
	"time"

	"github.com/boxline/boxline-backend/internal/logger"
	"github.com/boxline/boxline-backend/internal/model"
	"github.com/boxline/boxline-backend/internal/policy"
	"github.com/boxline/boxline-backend/internal/repository"
	"gorm.io/gorm"
)

type BoxListFilter string

const (
	BoxFilterCreated     BoxListFilter = "created"
	BoxFilterTransferred BoxListFilter = "transferred"
	BoxFilterAll         BoxListFilter = "all"
)

const (
	BoxTypeCreated       = "CREATED"
	BoxTypeTransferredIn = "TRANSFERRED_IN"
)

type CreateBoxInput struct {
	Label     string
	PickupIDs []uint64
}

type UpdateBoxPatch struct {
	Label  *string
	Status *model.BoxStatus
}

// PickupGroup is the per-pickup breakdown of a box's contents. It is shown
// to the creator only; a transferred-in owner sees the flat item list.
type PickupGroup struct {
	Pickup model.Pickup
	Items  []model.Item
}

type BoxDetail struct {
	Box               model.Box
	Items             []model.Item
	Pickups           []PickupGroup
	IsTransferred     bool
	EstimatedWeightLb float64
}

type BoxSummary struct {
	Box            model.Box
	Type           string
	IsCurrentOwner bool
}

type BoxService interface {
	Create(ctx context.Context, p *policy.Principal, in CreateBoxInput) (*model.Box, error)
	Update(ctx context.Context, p *policy.Principal, boxID uint64, patch UpdateBoxPatch) (*model.Box, error)
	AddPickups(ctx context.Context, p *policy.Principal, boxID uint64, pickupIDs []uint64) (*model.Box, error)
	RemovePickup(ctx context.Context, p *policy.Principal, boxID, pickupID uint64) (*model.Box, error)
	ManageItems(ctx context.Context, p *policy.Principal, boxID uint64, addItemIDs, removeItemIDs []uint64) (*model.Box, error)
	Transfer(ctx context.Context, p *policy.Principal, boxID uint64, newOwnerEmail string) (*model.Box, error)
	GetByID(ctx context.Context, p *policy.Principal, boxID uint64) (*BoxDetail, error)
	List(ctx context.Context, p *policy.Principal, filter BoxListFilter) ([]BoxSummary, error)
}

type boxService struct {
	db         *gorm.DB
	engine     *policy.Engine
	log        *logger.Logger
	boxRepo    repository.BoxRepository
	itemRepo   repository.ItemRepository
	pickupRepo repository.PickupRepository
	userRepo   repository.UserRepository
}

func NewBoxService(db *gorm.DB, engine *policy.Engine, log *logger.Logger) BoxService {
	return &boxService{
		db:         db,
		engine:     engine,
		log:        log.With("service", "BoxService"),
		boxRepo:    repository.NewBoxRepository(db),
		itemRepo:   repository.NewItemRepository(db),
		pickupRepo: repository.NewPickupRepository(db),
		userRepo:   repository.NewUserRepository(db),
	}
}

func boxRef(b *model.Box) *policy.Ref {
	return &policy.Ref{OwnerUserUID: b.OwnerUserUID}
}

func (s *boxService) Create(ctx context.Context, p *policy.Principal, in CreateBoxInput) (*model.Box, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	// "No client boxes" is a business rule, not an ownership condition, so
	// it is checked literally on the role in addition to the policy gate.
	if p.Role == model.RoleClient {
		return nil, ErrForbidden
	}
	if !s.engine.Can(p, policy.ActionCreate, policy.ResourceBox, nil) {
		return nil, ErrForbidden
	}

	box := &model.Box{
		Label:            in.Label,
		OwnerUserUID:     p.UID,
		CreatedByUserUID: p.UID,
		Status:           model.BoxStatusOpen,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		boxes := repository.NewBoxRepository(tx)
		if err := boxes.Create(ctx, box); err != nil {
			return err
		}
		if len(in.PickupIDs) == 0 {
			return nil
		}
		pickups := repository.NewPickupRepository(tx)
		owned, err := pickups.FindOwnedByIDs(ctx, in.PickupIDs, p.UID)
		if err != nil {
			return err
		}
		if len(owned) != len(dedupeIDs(in.PickupIDs)) {
			return ErrNotFound
		}
		items := repository.NewItemRepository(tx)
		n, err := items.AssignPickupsToBox(ctx, in.PickupIDs, box.ID)
		if err != nil {
			return err
		}
		s.log.Info("box created with pickups", "boxId", box.ID, "pickups", len(in.PickupIDs), "items", n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

func (s *boxService) Update(ctx context.Context, p *policy.Principal, boxID uint64, patch UpdateBoxPatch) (*model.Box, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	box, err := s.boxRepo.FindByID(ctx, boxID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// Only the current owner may update; being the creator is not enough
	// once the box has been transferred away.
	if !s.engine.Can(p, policy.ActionUpdate, policy.ResourceBox, boxRef(box)) {
		return nil, ErrForbidden
	}

	var updated *model.Box
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		boxes := repository.NewBoxRepository(tx)
		locked, err := boxes.FindByIDForUpdate(ctx, boxID)
		if err != nil {
			return err
		}
		if patch.Label != nil {
			locked.Label = *patch.Label
		}
		if patch.Status != nil && *patch.Status != locked.Status {
			locked.Status = *patch.Status
			items := repository.NewItemRepository(tx)
			now := time.Now()
			switch *patch.Status {
			case model.BoxStatusShipped:
				if _, err := items.UpdateStatusByBox(ctx, locked.ID, model.ItemStatusInTransit); err != nil {
					return err
				}
				locked.ShippedAt = &now
			case model.BoxStatusDelivered:
				if _, err := items.UpdateStatusByBox(ctx, locked.ID, model.ItemStatusDelivered); err != nil {
					return err
				}
				locked.DeliveredAt = &now
			}
		}
		if err := boxes.Update(ctx, locked); err != nil {
			return err
		}
		updated = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		s.log.Info("box status updated", "boxId", boxID, "status", *patch.Status)
	}
	return updated, nil
}

func (s *boxService) AddPickups(ctx context.Context, p *policy.Principal, boxID uint64, pickupIDs []uint64) (*model.Box, error) {
	box, err := s.openBoxForManage(ctx, p, boxID, "box is not open")
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pickups := repository.NewPickupRepository(tx)
		owned, err := pickups.FindOwnedByIDs(ctx, pickupIDs, p.UID)
		if err != nil {
			return err
		}
		if len(owned) != len(dedupeIDs(pickupIDs)) {
			return ErrNotFound
		}
		items := repository.NewItemRepository(tx)
		_, err = items.AssignPickupsToBox(ctx, pickupIDs, box.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

func (s *boxService) RemovePickup(ctx context.Context, p *policy.Principal, boxID, pickupID uint64) (*model.Box, error) {
	box, err := s.openBoxForManage(ctx, p, boxID, "box is not open")
	if err != nil {
		return nil, err
	}
	if _, err := s.itemRepo.UnassignPickupFromBox(ctx, pickupID, box.ID); err != nil {
		return nil, err
	}
	return box, nil
}

func (s *boxService) ManageItems(ctx context.Context, p *policy.Principal, boxID uint64, addItemIDs, removeItemIDs []uint64) (*model.Box, error) {
	box, err := s.openBoxForManage(ctx, p, boxID, "cannot add items to a sealed or shipped box")
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := repository.NewItemRepository(tx)
		if len(addItemIDs) > 0 {
			found, err := items.FindByIDs(ctx, addItemIDs)
			if err != nil {
				return err
			}
			if len(found) != len(dedupeIDs(addItemIDs)) {
				return ErrNotFound
			}
			pickupIDs := make([]uint64, 0, len(found))
			for _, it := range found {
				pickupIDs = append(pickupIDs, it.PickupID)
			}
			pickups := repository.NewPickupRepository(tx)
			owned, err := pickups.FindOwnedByIDs(ctx, pickupIDs, p.UID)
			if err != nil {
				return err
			}
			if len(owned) != len(dedupeIDs(pickupIDs)) {
				return ErrNotFound
			}
			if _, err := items.AssignItemsToBox(ctx, addItemIDs, box.ID); err != nil {
				return err
			}
		}
		if len(removeItemIDs) > 0 {
			if _, err := items.UnassignItemsFromBox(ctx, removeItemIDs, box.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

// openBoxForManage loads the box and applies the shared gates of the
// membership operations: owner-only, and only while the box is OPEN.
func (s *boxService) openBoxForManage(ctx context.Context, p *policy.Principal, boxID uint64, closedMsg string) (*model.Box, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	box, err := s.boxRepo.FindByID(ctx, boxID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !s.engine.Can(p, policy.ActionManageItems, policy.ResourceBox, boxRef(box)) {
		return nil, ErrForbidden
	}
	if box.Status != model.BoxStatusOpen {
		return nil, badRequest(closedMsg)
	}
	return box, nil
}

func (s *boxService) Transfer(ctx context.Context, p *policy.Principal, boxID uint64, newOwnerEmail string) (*model.Box, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	box, err := s.boxRepo.FindByID(ctx, boxID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !s.engine.Can(p, policy.ActionTransfer, policy.ResourceBox, boxRef(box)) {
		return nil, ErrForbidden
	}
	target, err := s.userRepo.FindByEmail(ctx, newOwnerEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if target.Role != model.RoleShipper {
		return nil, badRequest("transfer target is not a shipper")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		boxes := repository.NewBoxRepository(tx)
		locked, err := boxes.FindByIDForUpdate(ctx, boxID)
		if err != nil {
			return err
		}
		// CreatedByUserUID stays put; only the current holder moves.
		locked.OwnerUserUID = target.UID
		if err := boxes.Update(ctx, locked); err != nil {
			return err
		}
		box = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("box transferred", "boxId", boxID, "from", p.UID, "to", target.UID)
	return box, nil
}

func (s *boxService) GetByID(ctx context.Context, p *policy.Principal, boxID uint64) (*BoxDetail, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if !s.engine.Can(p, policy.ActionRead, policy.ResourceBox, nil) {
		return nil, ErrForbidden
	}
	box, err := s.boxRepo.FindByID(ctx, boxID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	isCreator := box.CreatedByUserUID == p.UID
	isOwner := box.OwnerUserUID == p.UID
	elevated := p.Role == model.RoleAdmin || p.Role == model.RoleSystem
	if !isCreator && !isOwner && !elevated {
		return nil, ErrForbidden
	}

	items, err := s.itemRepo.ListByBox(ctx, box.ID)
	if err != nil {
		return nil, err
	}
	// The stored weight column is advisory; the detail view recomputes it
	// from the current contents.
	var weight float64
	for _, it := range items {
		weight += it.EstimatedWeightLb
	}

	detail := &BoxDetail{
		Box:               *box,
		Items:             items,
		IsTransferred:     box.CreatedByUserUID != box.OwnerUserUID,
		EstimatedWeightLb: weight,
	}

	// The pickup breakdown exposes the creator's client relationships, so
	// a transferred-in owner never receives it.
	if isCreator {
		groups, err := s.pickupBreakdown(ctx, box.CreatedByUserUID, items)
		if err != nil {
			return nil, err
		}
		detail.Pickups = groups
	}
	return detail, nil
}

func (s *boxService) pickupBreakdown(ctx context.Context, creatorUID string, items []model.Item) ([]PickupGroup, error) {
	byPickup := make(map[uint64][]model.Item)
	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		if _, seen := byPickup[it.PickupID]; !seen {
			ids = append(ids, it.PickupID)
		}
		byPickup[it.PickupID] = append(byPickup[it.PickupID], it)
	}
	pickups, err := s.pickupRepo.FindOwnedByIDs(ctx, ids, creatorUID)
	if err != nil {
		return nil, err
	}
	groups := make([]PickupGroup, 0, len(pickups))
	for _, pu := range pickups {
		groups = append(groups, PickupGroup{Pickup: pu, Items: byPickup[pu.ID]})
	}
	return groups, nil
}

func (s *boxService) List(ctx context.Context, p *policy.Principal, filter BoxListFilter) ([]BoxSummary, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if !s.engine.Can(p, policy.ActionList, policy.ResourceBox, nil) {
		return nil, ErrForbidden
	}

	var (
		rows []model.Box
		err  error
	)
	switch filter {
	case BoxFilterCreated:
		rows, err = s.boxRepo.ListCreated(ctx, p.UID)
	case BoxFilterTransferred:
		rows, err = s.boxRepo.ListTransferredIn(ctx, p.UID)
	default:
		rows, err = s.boxRepo.ListCreatedOrOwned(ctx, p.UID)
	}
	if err != nil {
		return nil, err
	}

	out := make([]BoxSummary, 0, len(rows))
	for _, b := range rows {
		typ := BoxTypeTransferredIn
		if b.CreatedByUserUID == p.UID {
			typ = BoxTypeCreated
		}
		out = append(out, BoxSummary{
			Box:            b,
			Type:           typ,
			IsCurrentOwner: b.OwnerUserUID == p.UID,
		})
	}
	return out, nil
}

func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
