package service

import (
	"context"
	"errors"
	"strings"

	"github.com/boxline/boxline-backend/internal/logger"
	"github.com/boxline/boxline-backend/internal/model"
	"github.com/boxline/boxline-backend/internal/policy"
	"github.com/boxline/boxline-backend/internal/repository"
	"gorm.io/gorm"
)

type CreatePickupInput struct {
	ClientName string
	Address    string
	Items      []PickupItemInput
}

type PickupItemInput struct {
	Description       string
	EstimatedWeightLb float64
}

type PickupDetail struct {
	Pickup model.Pickup
	Items  []model.Item
}

type PickupService interface {
	Create(ctx context.Context, p *policy.Principal, in CreatePickupInput) (*PickupDetail, error)
	GetByID(ctx context.Context, p *policy.Principal, id uint64) (*PickupDetail, error)
	List(ctx context.Context, p *policy.Principal) ([]model.Pickup, error)
}

type pickupService struct {
	db         *gorm.DB
	engine     *policy.Engine
	log        *logger.Logger
	pickupRepo repository.PickupRepository
	itemRepo   repository.ItemRepository
}

func NewPickupService(db *gorm.DB, engine *policy.Engine, log *logger.Logger) PickupService {
	return &pickupService{
		db:         db,
		engine:     engine,
		log:        log.With("service", "PickupService"),
		pickupRepo: repository.NewPickupRepository(db),
		itemRepo:   repository.NewItemRepository(db),
	}
}

func (s *pickupService) Create(ctx context.Context, p *policy.Principal, in CreatePickupInput) (*PickupDetail, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if !s.engine.Can(p, policy.ActionCreate, policy.ResourcePickup, nil) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(in.ClientName) == "" {
		return nil, badRequest("client name is required")
	}

	pickup := &model.Pickup{
		OwnerUserUID: p.UID,
		ClientName:   strings.TrimSpace(in.ClientName),
		Address:      strings.TrimSpace(in.Address),
	}
	var items []*model.Item
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pickups := repository.NewPickupRepository(tx)
		if err := pickups.Create(ctx, pickup); err != nil {
			return err
		}
		items = make([]*model.Item, 0, len(in.Items))
		for _, it := range in.Items {
			desc := strings.TrimSpace(it.Description)
			if desc == "" {
				return badRequest("item description is required")
			}
			items = append(items, &model.Item{
				PickupID:          pickup.ID,
				Description:       desc,
				EstimatedWeightLb: it.EstimatedWeightLb,
				Status:            model.ItemStatusPending,
			})
		}
		return repository.NewItemRepository(tx).CreateBatch(ctx, items)
	})
	if err != nil {
		return nil, err
	}

	detail := &PickupDetail{Pickup: *pickup}
	for _, it := range items {
		detail.Items = append(detail.Items, *it)
	}
	s.log.Info("pickup created", "pickupId", pickup.ID, "items", len(items))
	return detail, nil
}

func (s *pickupService) GetByID(ctx context.Context, p *policy.Principal, id uint64) (*PickupDetail, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	pickup, err := s.pickupRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ref := &policy.Ref{OwnerUserUID: pickup.OwnerUserUID}
	if !s.engine.Can(p, policy.ActionRead, policy.ResourcePickup, ref) {
		// Visibility failure reads the same as a missing row.
		return nil, ErrNotFound
	}
	items, err := s.itemRepo.ListByPickup(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PickupDetail{Pickup: *pickup, Items: items}, nil
}

func (s *pickupService) List(ctx context.Context, p *policy.Principal) ([]model.Pickup, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	// The engine passes list calls optimistically; the owner predicate is
	// applied here as the query filter.
	if !s.engine.Can(p, policy.ActionList, policy.ResourcePickup, nil) {
		return nil, ErrForbidden
	}
	return s.pickupRepo.ListByOwner(ctx, p.UID)
}
