package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/contracts/mq"
	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/internal/repository"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
	"github.com/Faitltd/FAIT-sub008/pkg/metrics"
)

const warrantyTypeCacheTTL = 10 * time.Minute

// WarrantyService 负责保修的签发、期限推导、作废与到期扫描。
// 保修类型是参考数据，通过 Redis 做读穿缓存。
type WarrantyService struct {
	warranties WarrantyStore
	types      WarrantyTypeStore
	rdb        *redis.Client
	outbox     EventOutbox
	logger     *zap.Logger
	now        func() time.Time
}

func NewWarrantyService(warranties WarrantyStore, types WarrantyTypeStore, rdb *redis.Client, outbox EventOutbox, logger *zap.Logger) *WarrantyService {
	return &WarrantyService{
		warranties: warranties,
		types:      types,
		rdb:        rdb,
		outbox:     outbox,
		logger:     logger,
		now:        time.Now,
	}
}

type CreateWarrantyInput struct {
	ProjectID      int
	ClientID       int
	ContractorID   int
	WarrantyTypeID int
	StartDate      *time.Time
	IsPremium      bool
	AutoRenewal    bool
}

// Create issues a warranty. EndDate is derived from the type's duration
// (premium duration when flagged premium), counted in calendar days from
// the start date.
func (s *WarrantyService) Create(ctx context.Context, in CreateWarrantyInput) (*model.Warranty, error) {
	if in.ProjectID <= 0 {
		return nil, apperr.Validationf("project_id is required")
	}
	if in.WarrantyTypeID <= 0 {
		return nil, apperr.Validationf("warranty_type_id is required")
	}

	wt, err := s.warrantyType(ctx, in.WarrantyTypeID)
	if err != nil {
		return nil, err
	}

	start := s.now().Truncate(24 * time.Hour)
	if in.StartDate != nil {
		start = in.StartDate.Truncate(24 * time.Hour)
	}

	w := &model.Warranty{
		ProjectID:      in.ProjectID,
		ClientID:       in.ClientID,
		ContractorID:   in.ContractorID,
		WarrantyTypeID: in.WarrantyTypeID,
		StartDate:      start,
		EndDate:        endDateFor(start, wt, in.IsPremium),
		Status:         model.WarrantyActive,
		IsPremium:      in.IsPremium,
		AutoRenewal:    in.AutoRenewal,
	}
	id, err := s.warranties.Insert(ctx, w)
	if err != nil {
		s.logger.Error("create warranty failed", zap.Int("project_id", in.ProjectID), zap.Error(err))
		return nil, err
	}
	w.ID = id
	s.logger.Info("warranty issued",
		zap.Int("warranty_id", id),
		zap.Int("project_id", in.ProjectID),
		zap.Time("end_date", w.EndDate))
	return w, nil
}

// Get returns the warranty with its status derived as of today. The stored
// row is only rewritten by the expiry sweep.
func (s *WarrantyService) Get(ctx context.Context, id int) (*model.Warranty, error) {
	w, err := s.warranties.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w.Status = w.DerivedStatus(s.now())
	return w, nil
}

func (s *WarrantyService) List(ctx context.Context, f repository.ListFilter) ([]model.Warranty, error) {
	ws, err := s.warranties.List(ctx, f)
	if err != nil {
		return nil, err
	}
	today := s.now()
	for i := range ws {
		ws[i].Status = ws[i].DerivedStatus(today)
	}
	return ws, nil
}

// Update patches a warranty. When the type, premium flag or start date
// changes, EndDate is recomputed from the effective values; an explicit
// EndDate in the patch suppresses recomputation and wins as-is.
func (s *WarrantyService) Update(ctx context.Context, id int, patch model.WarrantyPatch) (*model.Warranty, error) {
	current, err := s.warranties.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	endDate := current.EndDate
	switch {
	case patch.EndDate != nil:
		endDate = patch.EndDate.Truncate(24 * time.Hour)
	case patch.WarrantyTypeID != nil || patch.IsPremium != nil || patch.StartDate != nil:
		typeID := current.WarrantyTypeID
		if patch.WarrantyTypeID != nil {
			typeID = *patch.WarrantyTypeID
		}
		premium := current.IsPremium
		if patch.IsPremium != nil {
			premium = *patch.IsPremium
		}
		start := current.StartDate
		if patch.StartDate != nil {
			start = patch.StartDate.Truncate(24 * time.Hour)
		}
		wt, err := s.warrantyType(ctx, typeID)
		if err != nil {
			return nil, err
		}
		endDate = endDateFor(start, wt, premium)
	}

	w, err := s.warranties.Update(ctx, id, patch, endDate)
	if err != nil {
		return nil, err
	}
	s.logger.Info("warranty updated", zap.Int("warranty_id", id), zap.Time("end_date", w.EndDate))
	return w, nil
}

// Void marks a warranty void. Void is terminal: the expiry sweep and
// status derivation never move a warranty out of it.
func (s *WarrantyService) Void(ctx context.Context, id int) error {
	if err := s.warranties.UpdateStatus(ctx, id, model.WarrantyVoid); err != nil {
		return err
	}
	s.logger.Info("warranty voided", zap.Int("warranty_id", id))
	return nil
}

// CheckEligibility is the single claim-eligibility gate: the warranty must
// not be void or expired, and today must fall inside [start_date, end_date]
// inclusive. Returns the warranty when eligible and ErrIneligible when not.
func (s *WarrantyService) CheckEligibility(ctx context.Context, warrantyID int) (*model.Warranty, error) {
	w, err := s.warranties.FindByID(ctx, warrantyID)
	if err != nil {
		return nil, err
	}
	today := s.now()
	if w.DerivedStatus(today) != model.WarrantyActive {
		return nil, apperr.Ineligiblef("warranty %d is %s", warrantyID, w.DerivedStatus(today))
	}
	if !w.InWindow(today) {
		return nil, apperr.Ineligiblef("warranty %d is outside its coverage window", warrantyID)
	}
	return w, nil
}

// IsEligibleForClaim reports eligibility without surfacing the warranty.
func (s *WarrantyService) IsEligibleForClaim(ctx context.Context, warrantyID int) (bool, error) {
	_, err := s.CheckEligibility(ctx, warrantyID)
	if err != nil {
		if errors.Is(err, apperr.ErrIneligible) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ExpireOverdue flips every active warranty whose end_date has passed to
// expired and publishes one event per flipped row. Run by the worker.
func (s *WarrantyService) ExpireOverdue(ctx context.Context) (int, error) {
	expired, err := s.warranties.MarkExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("mark expired: %w", err)
	}
	for i := range expired {
		w := &expired[i]
		metrics.WarrantyExpiredCount.Inc()
		s.publish(ctx, "warranty", int64(w.ID), "warranty.expired", mq.WarrantyExpiredPayload{
			WarrantyID: w.ID,
			ProjectID:  w.ProjectID,
			EndDate:    w.EndDate,
			ExpiredAt:  s.now(),
		})
	}
	if len(expired) > 0 {
		s.logger.Info("warranties expired", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}

// ListTypes returns the warranty-type catalogue, cached in Redis.
func (s *WarrantyService) ListTypes(ctx context.Context) ([]model.WarrantyType, error) {
	const key = "warranty:types"
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var types []model.WarrantyType
			if err := json.Unmarshal([]byte(cached), &types); err == nil {
				return types, nil
			}
		}
	}
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if data, err := json.Marshal(types); err == nil {
			if err := s.rdb.Set(ctx, key, data, warrantyTypeCacheTTL).Err(); err != nil {
				s.logger.Warn("cache warranty types failed", zap.Error(err))
			}
		}
	}
	return types, nil
}

// warrantyType looks up one type, Redis first.
func (s *WarrantyService) warrantyType(ctx context.Context, id int) (*model.WarrantyType, error) {
	key := fmt.Sprintf("warranty:type:%d", id)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var wt model.WarrantyType
			if err := json.Unmarshal([]byte(cached), &wt); err == nil {
				return &wt, nil
			}
		}
	}
	wt, err := s.types.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if data, err := json.Marshal(wt); err == nil {
			if err := s.rdb.Set(ctx, key, data, warrantyTypeCacheTTL).Err(); err != nil {
				s.logger.Warn("cache warranty type failed", zap.Int("warranty_type_id", id), zap.Error(err))
			}
		}
	}
	return wt, nil
}

func (s *WarrantyService) publish(ctx context.Context, aggregateType string, aggregateID int64, routingKey string, payload any) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.Enqueue(ctx, aggregateType, aggregateID, routingKey, payload); err != nil {
		s.logger.Warn("enqueue event failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

// endDateFor derives the coverage end from the start date and the type's
// duration in calendar days. A 365-day warranty starting 2024-01-01 ends
// 2024-12-31.
func endDateFor(start time.Time, wt *model.WarrantyType, premium bool) time.Time {
	days := wt.DurationDays
	if premium && wt.PremiumDurationDays > 0 {
		days = wt.PremiumDurationDays
	}
	return start.AddDate(0, 0, days)
}
