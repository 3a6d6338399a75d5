package model

import "time"

// Patch types carry partial updates: nil means "leave unchanged". None of
// these couple progress to status, that rule lives in the services.

type ProjectPatch struct {
	Title       *string
	Description *string
	Budget      *float64
	StartDate   *time.Time
	EndDate     *time.Time
}

type MilestonePatch struct {
	Title       *string
	Description *string
	Status      *MilestoneStatus
	DueDate     *time.Time
}

type TaskPatch struct {
	Title       *string
	Description *string
	MilestoneID *int
	Priority    *TaskPriority
	AssignedTo  *int
	DueDate     *time.Time
}

type WarrantyPatch struct {
	WarrantyTypeID *int
	IsPremium      *bool
	AutoRenewal    *bool
	StartDate      *time.Time
	// EndDate set by the caller suppresses recomputation.
	EndDate *time.Time
}

type IssuePatch struct {
	Title       *string
	Description *string
	Priority    *TaskPriority
	AssignedTo  *int
	DueDate     *time.Time
}

type TimelineEventPatch struct {
	Title       *string
	Description *string
	EventType   *string
	StartDate   *time.Time
	EndDate     *time.Time
}
