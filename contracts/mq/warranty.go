package mq

import "time"

// 理赔创建事件的 payload
type ClaimCreatedPayload struct {
	ClaimID    int       `json:"claim_id"`
	WarrantyID int       `json:"warranty_id"`
	ProjectID  int       `json:"project_id"`
	ClientID   int       `json:"client_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
}

// 理赔结案事件的 payload
type ClaimResolvedPayload struct {
	ClaimID    int       `json:"claim_id"`
	WarrantyID int       `json:"warranty_id"`
	Status     string    `json:"status"`
	ResolvedBy int       `json:"resolved_by"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// 保修过期事件的 payload
type WarrantyExpiredPayload struct {
	WarrantyID int       `json:"warranty_id"`
	ProjectID  int       `json:"project_id"`
	EndDate    time.Time `json:"end_date"`
	ExpiredAt  time.Time `json:"expired_at"`
}
