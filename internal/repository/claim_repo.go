package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

type ClaimRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewClaimRepository(db *pgxpool.Pool, logger *zap.Logger) *ClaimRepository {
	return &ClaimRepository{db: db, logger: logger}
}

func (r *ClaimRepository) Insert(ctx context.Context, c *model.WarrantyClaim) (int, error) {
	r.logger.Debug("Inserting warranty claim",
		zap.Int("warranty_id", c.WarrantyID),
		zap.String("title", c.Title),
	)

	query := `
        INSERT INTO warranty_claims (warranty_id, client_id, contractor_id, title, description, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		c.WarrantyID,
		c.ClientID,
		c.ContractorID,
		c.Title,
		c.Description,
		c.Status,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert warranty claim", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Warranty claim inserted successfully",
		zap.Int("id", id),
		zap.Int("warranty_id", c.WarrantyID),
	)
	return id, nil
}

func (r *ClaimRepository) FindByID(ctx context.Context, id int) (*model.WarrantyClaim, error) {
	query := `
        SELECT id, warranty_id, client_id, contractor_id, title, description, status, resolution_notes, resolved_at, resolved_by, created_at, updated_at
        FROM warranty_claims
        WHERE id = $1
    `
	var c model.WarrantyClaim
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.WarrantyID,
		&c.ClientID,
		&c.ContractorID,
		&c.Title,
		&c.Description,
		&c.Status,
		&c.ResolutionNotes,
		&c.ResolvedAt,
		&c.ResolvedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "warranty claim", id)
	}
	return &c, nil
}

func (r *ClaimRepository) ListByWarranty(ctx context.Context, warrantyID int) ([]model.WarrantyClaim, error) {
	query := `
        SELECT id, warranty_id, client_id, contractor_id, title, description, status, resolution_notes, resolved_at, resolved_by, created_at, updated_at
        FROM warranty_claims
        WHERE warranty_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, warrantyID)
	if err != nil {
		r.logger.Error("Failed to query warranty claims",
			zap.Int("warranty_id", warrantyID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	claims := []model.WarrantyClaim{}
	for rows.Next() {
		var c model.WarrantyClaim
		if err := rows.Scan(
			&c.ID,
			&c.WarrantyID,
			&c.ClientID,
			&c.ContractorID,
			&c.Title,
			&c.Description,
			&c.Status,
			&c.ResolutionNotes,
			&c.ResolvedAt,
			&c.ResolvedBy,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan warranty claim row", zap.Error(err))
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, nil
}

// UpdateStatus sets the status without touching the resolution stamp.
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id int, status model.ClaimStatus) (*model.WarrantyClaim, error) {
	query := `
        UPDATE warranty_claims
        SET status = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING id, warranty_id, client_id, contractor_id, title, description, status, resolution_notes, resolved_at, resolved_by, created_at, updated_at
    `
	return r.scanClaimRow(ctx, query, id, status)
}

// UpdateStatusResolved sets the status and writes the resolution stamp in
// one statement. The WHERE clause refuses to touch an already-stamped row,
// keeping the stamp-once invariant even under concurrent resolvers.
func (r *ClaimRepository) UpdateStatusResolved(ctx context.Context, id int, status model.ClaimStatus, notes string, resolvedAt time.Time, resolvedBy int) (*model.WarrantyClaim, error) {
	query := `
        UPDATE warranty_claims
        SET status           = $2,
            resolution_notes = $3,
            resolved_at      = $4,
            resolved_by      = $5,
            updated_at       = NOW()
        WHERE id = $1 AND resolved_at IS NULL
        RETURNING id, warranty_id, client_id, contractor_id, title, description, status, resolution_notes, resolved_at, resolved_by, created_at, updated_at
    `
	return r.scanClaimRow(ctx, query, id, status, notes, resolvedAt, resolvedBy)
}

func (r *ClaimRepository) scanClaimRow(ctx context.Context, query string, id int, args ...any) (*model.WarrantyClaim, error) {
	var c model.WarrantyClaim
	err := r.db.QueryRow(ctx, query, append([]any{id}, args...)...).Scan(
		&c.ID,
		&c.WarrantyID,
		&c.ClientID,
		&c.ContractorID,
		&c.Title,
		&c.Description,
		&c.Status,
		&c.ResolutionNotes,
		&c.ResolvedAt,
		&c.ResolvedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "warranty claim", id)
	}
	return &c, nil
}

func (r *ClaimRepository) InsertUpdate(ctx context.Context, u *model.WarrantyClaimUpdate) (int, error) {
	query := `
        INSERT INTO warranty_claim_updates (warranty_claim_id, updated_by, content)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, u.ClaimID, u.UpdatedBy, u.Content).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert claim update",
			zap.Int("claim_id", u.ClaimID),
			zap.Error(err),
		)
		return 0, err
	}
	return id, nil
}

func (r *ClaimRepository) ListUpdates(ctx context.Context, claimID int) ([]model.WarrantyClaimUpdate, error) {
	query := `
        SELECT id, warranty_claim_id, updated_by, content, created_at
        FROM warranty_claim_updates
        WHERE warranty_claim_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to query claim updates",
			zap.Int("claim_id", claimID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	updates := []model.WarrantyClaimUpdate{}
	for rows.Next() {
		var u model.WarrantyClaimUpdate
		if err := rows.Scan(&u.ID, &u.ClaimID, &u.UpdatedBy, &u.Content, &u.CreatedAt); err != nil {
			r.logger.Error("Failed to scan claim update row", zap.Error(err))
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, nil
}
