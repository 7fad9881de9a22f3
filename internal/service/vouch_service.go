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

// verifiedVouchCount is how many distinct approved vouches promote a
// requester to VERIFIED.
const verifiedVouchCount = 2

type VouchService interface {
	Approve(ctx context.Context, p *policy.Principal, vouchID uint64) (*model.VouchRequest, error)
	Decline(ctx context.Context, p *policy.Principal, vouchID uint64) (*model.VouchRequest, error)
	PendingRequests(ctx context.Context, p *policy.Principal) ([]model.VouchRequest, error)
	History(ctx context.Context, p *policy.Principal) ([]model.VouchRequest, error)
}

type vouchService struct {
	db        *gorm.DB
	engine    *policy.Engine
	log       *logger.Logger
	vouchRepo repository.VouchRepository
}

func NewVouchService(db *gorm.DB, engine *policy.Engine, log *logger.Logger) VouchService {
	return &vouchService{
		db:        db,
		engine:    engine,
		log:       log.With("service", "VouchService"),
		vouchRepo: repository.NewVouchRepository(db),
	}
}

func (s *vouchService) Approve(ctx context.Context, p *policy.Principal, vouchID uint64) (*model.VouchRequest, error) {
	return s.decide(ctx, p, vouchID, model.VouchStatusApproved, policy.ActionApprove)
}

func (s *vouchService) Decline(ctx context.Context, p *policy.Principal, vouchID uint64) (*model.VouchRequest, error) {
	return s.decide(ctx, p, vouchID, model.VouchStatusDeclined, policy.ActionDecline)
}

func (s *vouchService) decide(ctx context.Context, p *policy.Principal, vouchID uint64, verdict model.VouchStatus, action string) (*model.VouchRequest, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if !s.engine.Can(p, action, policy.ResourceVouch, nil) {
		return nil, ErrForbidden
	}

	var decided *model.VouchRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vouches := repository.NewVouchRepository(tx)
		// The lookup is keyed by (id, voucher email) in one query: a vouch
		// addressed to someone else looks exactly like a missing one.
		v, err := vouches.FindForVoucher(ctx, vouchID, p.Email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if v.Status != model.VouchStatusPending {
			return badRequest("vouch request already processed")
		}
		now := time.Now()
		v.Status = verdict
		v.VoucherUserUID = &p.UID
		v.DecidedAt = &now
		if err := vouches.Update(ctx, v); err != nil {
			return err
		}
		if verdict == model.VouchStatusApproved {
			if err := s.maybePromoteRequester(ctx, tx, vouches, v.RequesterUserUID); err != nil {
				return err
			}
		}
		decided = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("vouch decided", "vouchId", vouchID, "verdict", decided.Status, "voucher", p.UID)
	return decided, nil
}

// maybePromoteRequester flips the requester to VERIFIED once enough
// approvals have accumulated. Promotion is one-way; declines are never
// counted against the requester.
func (s *vouchService) maybePromoteRequester(ctx context.Context, tx *gorm.DB, vouches repository.VouchRepository, requesterUID string) error {
	n, err := vouches.CountApprovedByRequester(ctx, requesterUID)
	if err != nil {
		return err
	}
	if n < verifiedVouchCount {
		return nil
	}
	users := repository.NewUserRepository(tx)
	requester, err := users.FindByUID(ctx, requesterUID)
	if err != nil {
		return err
	}
	if requester.VerificationStatus == model.VerificationVerified {
		return nil
	}
	if err := users.UpdateVerification(ctx, requesterUID, model.VerificationVerified); err != nil {
		return err
	}
	s.log.Info("requester verified", "requester", requesterUID, "approvals", n)
	return nil
}

func (s *vouchService) PendingRequests(ctx context.Context, p *policy.Principal) ([]model.VouchRequest, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if !s.engine.Can(p, policy.ActionList, policy.ResourceVouch, nil) {
		return nil, ErrForbidden
	}
	return s.vouchRepo.ListPendingForVoucher(ctx, p.Email)
}

func (s *vouchService) History(ctx context.Context, p *policy.Principal) ([]model.VouchRequest, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if !s.engine.Can(p, policy.ActionList, policy.ResourceVouch, nil) {
		return nil, ErrForbidden
	}
	return s.vouchRepo.ListDecidedForVoucher(ctx, p.Email)
}
