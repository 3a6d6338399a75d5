package model

import "time"

// Milestone belongs to exactly one project. OrderIndex values start dense
// and zero-based; deletions may leave gaps, display order is an ascending
// sort rather than a contiguity guarantee.
type Milestone struct {
	ID            int             `json:"id"`
	ProjectID     int             `json:"project_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Status        MilestoneStatus `json:"status"`
	Progress      int             `json:"progress"` // 0-100, 100 iff completed
	OrderIndex    int             `json:"order_index"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	CompletedDate *time.Time      `json:"completed_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
