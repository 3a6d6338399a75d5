package model

import "time"

// WarrantyClaim is filed against an active warranty. ResolutionNotes,
// ResolvedAt and ResolvedBy are stamped together on the first transition
// into a resolved status and never overwritten afterwards.
type WarrantyClaim struct {
	ID              int         `json:"id"`
	WarrantyID      int         `json:"warranty_id"`
	ClientID        int         `json:"client_id"`
	ContractorID    int         `json:"contractor_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Status          ClaimStatus `json:"status"`
	ResolutionNotes *string     `json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time  `json:"resolved_at,omitempty"`
	ResolvedBy      *int        `json:"resolved_by,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// WarrantyClaimUpdate is an append-only progress note on a claim.
type WarrantyClaimUpdate struct {
	ID        int       `json:"id"`
	ClaimID   int       `json:"warranty_claim_id"`
	UpdatedBy int       `json:"updated_by"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
