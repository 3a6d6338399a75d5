package model

import "time"

// ProjectIssue follows the same resolution-stamp discipline as claims:
// ResolvedAt/ResolvedBy are written once, when the issue first resolves.
type ProjectIssue struct {
	ID              int          `json:"id"`
	ProjectID       int          `json:"project_id"`
	ReportedBy      int          `json:"reported_by"`
	AssignedTo      *int         `json:"assigned_to,omitempty"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Priority        TaskPriority `json:"priority"`
	Status          IssueStatus  `json:"status"`
	DueDate         *time.Time   `json:"due_date,omitempty"`
	ResolutionNotes *string      `json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time   `json:"resolved_at,omitempty"`
	ResolvedBy      *int         `json:"resolved_by,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
