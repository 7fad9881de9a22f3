package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boxline/boxline-backend/internal/logger"
	"github.com/boxline/boxline-backend/internal/model"
	"github.com/boxline/boxline-backend/internal/policy"
	"github.com/boxline/boxline-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type RateService interface {
	Create(ctx context.Context, p *policy.Principal, base, quote string, rate float64) (*model.CurrencyRate, error)
	Latest(ctx context.Context, p *policy.Principal, base, quote string) (*model.CurrencyRate, error)
	History(ctx context.Context, p *policy.Principal, base, quote string, limit int) ([]model.CurrencyRate, error)
}

type rateService struct {
	engine   *policy.Engine
	log      *logger.Logger
	rateRepo repository.RateRepository
	cache    *redis.Client
	cacheTTL time.Duration
}

// cache may be nil; every cache path degrades to the database.
func NewRateService(db *gorm.DB, engine *policy.Engine, log *logger.Logger, cache *redis.Client, cacheTTL time.Duration) RateService {
	return &rateService{
		engine:   engine,
		log:      log.With("service", "RateService"),
		rateRepo: repository.NewRateRepository(db),
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func rateCacheKey(base, quote string) string {
	return fmt.Sprintf("rate:latest:%s:%s", base, quote)
}

func (s *rateService) Create(ctx context.Context, p *policy.Principal, base, quote string, rate float64) (*model.CurrencyRate, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if !s.engine.Can(p, policy.ActionCreate, policy.ResourceRate, nil) {
		return nil, ErrForbidden
	}
	base = normalizeCurrency(base)
	quote = normalizeCurrency(quote)
	if len(base) != 3 || len(quote) != 3 {
		return nil, badRequest("currency codes must be 3 letters")
	}
	if base == quote {
		return nil, badRequest("self-pair currency")
	}
	if rate <= 0 {
		return nil, badRequest("rate must be positive")
	}

	row := &model.CurrencyRate{
		BaseCurrency:     base,
		QuoteCurrency:    quote,
		Rate:             rate,
		CreatedByUserUID: p.UID,
	}
	if err := s.rateRepo.Create(ctx, row); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, rateCacheKey(base, quote)).Err(); err != nil {
			s.log.Warn("rate cache invalidation failed", "pair", base+quote, "err", err)
		}
	}
	return row, nil
}

func (s *rateService) Latest(ctx context.Context, p *policy.Principal, base, quote string) (*model.CurrencyRate, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if !s.engine.Can(p, policy.ActionRead, policy.ResourceRate, nil) {
		return nil, ErrForbidden
	}
	base = normalizeCurrency(base)
	quote = normalizeCurrency(quote)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, rateCacheKey(base, quote)).Bytes()
		if err == nil {
			var cached model.CurrencyRate
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn("rate cache read failed", "pair", base+quote, "err", err)
		}
	}

	row, err := s.rateRepo.Latest(ctx, base, quote)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(row); err == nil {
			if err := s.cache.Set(ctx, rateCacheKey(base, quote), raw, s.cacheTTL).Err(); err != nil {
				s.log.Warn("rate cache write failed", "pair", base+quote, "err", err)
			}
		}
	}
	return row, nil
}

func (s *rateService) History(ctx context.Context, p *policy.Principal, base, quote string, limit int) ([]model.CurrencyRate, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if !s.engine.Can(p, policy.ActionList, policy.ResourceRate, nil) {
		return nil, ErrForbidden
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.rateRepo.ListByPair(ctx, normalizeCurrency(base), normalizeCurrency(quote), limit)
}
