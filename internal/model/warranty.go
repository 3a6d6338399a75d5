package model

import "time"

// WarrantyType is reference data. PremiumDurationDays applies when the
// warranty is flagged premium.
type WarrantyType struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	DurationDays        int    `json:"duration_days"`
	PremiumDurationDays int    `json:"premium_duration_days"`
}

// Warranty covers one project. EndDate is always derived from the type's
// duration, never user-supplied except as an explicit override.
type Warranty struct {
	ID             int            `json:"id"`
	ProjectID      int            `json:"project_id"`
	ClientID       int            `json:"client_id"`
	ContractorID   int            `json:"contractor_id"`
	WarrantyTypeID int            `json:"warranty_type_id"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	Status         WarrantyStatus `json:"status"`
	IsPremium      bool           `json:"is_premium"`
	AutoRenewal    bool           `json:"auto_renewal"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// DerivedStatus returns the status as of the given day. Void is sticky and
// never time-derived; expiry is.
func (w *Warranty) DerivedStatus(today time.Time) WarrantyStatus {
	if w.Status == WarrantyVoid {
		return WarrantyVoid
	}
	if today.Truncate(24 * time.Hour).After(w.EndDate) {
		return WarrantyExpired
	}
	return w.Status
}

// InWindow reports whether the given day falls inside the eligibility
// window [StartDate, EndDate], inclusive on both ends.
func (w *Warranty) InWindow(today time.Time) bool {
	day := today.Truncate(24 * time.Hour)
	return !day.Before(w.StartDate) && !day.After(w.EndDate)
}
