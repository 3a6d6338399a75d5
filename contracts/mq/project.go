package mq

import "time"

// 项目状态变更事件的 payload
type ProjectStatusChangedPayload struct {
	ProjectID      int       `json:"project_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	UpdateReason   string    `json:"update_reason"`
	UpdatedBy      int       `json:"updated_by"`
	ChangedAt      time.Time `json:"changed_at"`
}

// 里程碑完成事件的 payload
type MilestoneCompletedPayload struct {
	MilestoneID   int       `json:"milestone_id"`
	ProjectID     int       `json:"project_id"`
	Title         string    `json:"title"`
	CompletedDate time.Time `json:"completed_date"`
}
