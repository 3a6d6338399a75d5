package model

import "time"

type Project struct {
	ID              int           `json:"id"`
	ClientID        int           `json:"client_id"`
	ContractorID    int           `json:"contractor_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Status          ProjectStatus `json:"status"`
	Budget          float64       `json:"budget"`
	StartDate       *time.Time    `json:"start_date,omitempty"`
	EndDate         *time.Time    `json:"end_date,omitempty"`
	OverallProgress int           `json:"overall_progress"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// ProjectStatusUpdate is the immutable audit record written once per status
// transition. Never updated or deleted.
type ProjectStatusUpdate struct {
	ID             int           `json:"id"`
	ProjectID      int           `json:"project_id"`
	PreviousStatus ProjectStatus `json:"previous_status"`
	NewStatus      ProjectStatus `json:"new_status"`
	UpdateReason   string        `json:"update_reason"`
	UpdatedBy      int           `json:"updated_by"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ProjectActivity is an append-only feed entry recorded alongside
// task/milestone mutations.
type ProjectActivity struct {
	ID           int       `json:"id"`
	ProjectID    int       `json:"project_id"`
	UserID       int       `json:"user_id"`
	ActivityType string    `json:"activity_type"` // create / update / delete / status_change
	EntityType   string    `json:"entity_type"`   // task / milestone / claim / issue
	EntityID     int       `json:"entity_id"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}
