package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/contracts/mq"
	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
	"github.com/Faitltd/FAIT-sub008/pkg/metrics"
)

// ClaimService 负责理赔的受理与状态流转。理赔只能挂在仍在保修期内的
// 保修单上，结案时间戳只盖一次。
type ClaimService struct {
	claims ClaimStore
	gate   WarrantyGate
	outbox EventOutbox
	logger *zap.Logger
	now    func() time.Time
}

func NewClaimService(claims ClaimStore, gate WarrantyGate, outbox EventOutbox, logger *zap.Logger) *ClaimService {
	return &ClaimService{
		claims: claims,
		gate:   gate,
		outbox: outbox,
		logger: logger,
		now:    time.Now,
	}
}

type CreateClaimInput struct {
	WarrantyID  int
	Title       string
	Description string
}

// Create files a claim against a warranty. Eligibility is checked here, at
// filing time; an ineligible warranty rejects the claim with ErrIneligible
// and nothing is persisted.
func (s *ClaimService) Create(ctx context.Context, in CreateClaimInput, actorID int) (*model.WarrantyClaim, error) {
	if in.WarrantyID <= 0 {
		return nil, apperr.Validationf("warranty_id is required")
	}
	if in.Title == "" {
		return nil, apperr.Validationf("title is required")
	}

	w, err := s.gate.CheckEligibility(ctx, in.WarrantyID)
	if err != nil {
		if errors.Is(err, apperr.ErrIneligible) {
			metrics.ClaimCount.WithLabelValues("rejected_ineligible").Inc()
			s.logger.Info("claim rejected: warranty not eligible",
				zap.Int("warranty_id", in.WarrantyID),
				zap.Error(err))
		}
		return nil, err
	}

	c := &model.WarrantyClaim{
		WarrantyID:   in.WarrantyID,
		ClientID:     w.ClientID,
		ContractorID: w.ContractorID,
		Title:        in.Title,
		Description:  in.Description,
		Status:       model.ClaimPending,
	}
	id, err := s.claims.Insert(ctx, c)
	if err != nil {
		s.logger.Error("create claim failed", zap.Int("warranty_id", in.WarrantyID), zap.Error(err))
		return nil, err
	}
	c.ID = id
	metrics.ClaimCount.WithLabelValues("created").Inc()
	s.logger.Info("claim filed",
		zap.Int("claim_id", id),
		zap.Int("warranty_id", in.WarrantyID))

	s.publish(ctx, "warranty_claim", int64(id), "claim.created", mq.ClaimCreatedPayload{
		ClaimID:    id,
		WarrantyID: in.WarrantyID,
		ProjectID:  w.ProjectID,
		ClientID:   w.ClientID,
		Title:      in.Title,
		CreatedAt:  s.now(),
	})
	return c, nil
}

func (s *ClaimService) Get(ctx context.Context, id int) (*model.WarrantyClaim, error) {
	return s.claims.FindByID(ctx, id)
}

func (s *ClaimService) ListByWarranty(ctx context.Context, warrantyID int) ([]model.WarrantyClaim, error) {
	return s.claims.ListByWarranty(ctx, warrantyID)
}

// UpdateStatus moves a claim to a new status. The first transition into a
// resolved status (approved, rejected or completed) stamps resolution_notes,
// resolved_at and resolved_by; later transitions never overwrite the stamp.
func (s *ClaimService) UpdateStatus(ctx context.Context, id int, status model.ClaimStatus, notes string, actorID int) (*model.WarrantyClaim, error) {
	if !status.Valid() {
		return nil, apperr.Validationf("invalid claim status %q", status)
	}

	current, err := s.claims.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if status.Resolved() && current.ResolvedAt == nil {
		stamped := true
		c, err := s.claims.UpdateStatusResolved(ctx, id, status, notes, s.now(), actorID)
		if errors.Is(err, apperr.ErrNotFound) {
			// Lost a race with a concurrent resolution; fall through to a
			// plain status write so the stamp stays untouched.
			stamped = false
			c, err = s.claims.UpdateStatus(ctx, id, status)
		}
		if err != nil {
			return nil, err
		}
		s.logger.Info("claim resolved",
			zap.Int("claim_id", id),
			zap.String("status", string(status)),
			zap.Int("resolved_by", actorID))

		if stamped && c.ResolvedAt != nil {
			metrics.ClaimCount.WithLabelValues("resolved").Inc()
			s.publish(ctx, "warranty_claim", int64(id), "claim.resolved", mq.ClaimResolvedPayload{
				ClaimID:    id,
				WarrantyID: c.WarrantyID,
				Status:     string(status),
				ResolvedBy: actorID,
				ResolvedAt: *c.ResolvedAt,
			})
		}
		return c, nil
	}

	c, err := s.claims.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("claim status changed", zap.Int("claim_id", id), zap.String("status", string(status)))
	return c, nil
}

// AddUpdate appends a progress note to the claim.
func (s *ClaimService) AddUpdate(ctx context.Context, claimID int, content string, actorID int) (*model.WarrantyClaimUpdate, error) {
	if content == "" {
		return nil, apperr.Validationf("content is required")
	}
	if _, err := s.claims.FindByID(ctx, claimID); err != nil {
		return nil, err
	}
	u := &model.WarrantyClaimUpdate{
		ClaimID:   claimID,
		UpdatedBy: actorID,
		Content:   content,
	}
	id, err := s.claims.InsertUpdate(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id
	return u, nil
}

func (s *ClaimService) Updates(ctx context.Context, claimID int) ([]model.WarrantyClaimUpdate, error) {
	return s.claims.ListUpdates(ctx, claimID)
}

func (s *ClaimService) publish(ctx context.Context, aggregateType string, aggregateID int64, routingKey string, payload any) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.Enqueue(ctx, aggregateType, aggregateID, routingKey, payload); err != nil {
		s.logger.Warn("enqueue event failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
