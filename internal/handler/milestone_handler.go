package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/internal/service"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

type MilestoneHandler struct {
	svc    *service.MilestoneService
	logger *zap.Logger
}

func NewMilestoneHandler(svc *service.MilestoneService, logger *zap.Logger) *MilestoneHandler {
	return &MilestoneHandler{svc: svc, logger: logger}
}

type createMilestoneRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *MilestoneHandler) CreateMilestone(c *gin.Context) {
	projectID := pathID(c, "id")
	if projectID == 0 {
		return
	}
	var req createMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	m, err := h.svc.Create(c.Request.Context(), service.CreateMilestoneInput{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.MilestoneStatus(req.Status),
		DueDate:     req.DueDate,
	}, actorID(c))
	if err != nil {
		respondErr(c, h.logger, "CreateMilestone", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"milestone": m})
}

func (h *MilestoneHandler) ListMilestones(c *gin.Context) {
	projectID := pathID(c, "id")
	if projectID == 0 {
		return
	}
	milestones, err := h.svc.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondErr(c, h.logger, "ListMilestones", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

func (h *MilestoneHandler) GetMilestone(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	m, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.logger, "GetMilestone", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestone": m})
}

type updateMilestoneRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *MilestoneHandler) UpdateMilestone(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req updateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	patch := model.MilestonePatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		st := model.MilestoneStatus(*req.Status)
		patch.Status = &st
	}
	m, err := h.svc.Update(c.Request.Context(), id, patch, actorID(c))
	if err != nil {
		respondErr(c, h.logger, "UpdateMilestone", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestone": m})
}

type milestoneProgressRequest struct {
	Progress int `json:"progress"`
}

func (h *MilestoneHandler) UpdateProgress(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req milestoneProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	m, err := h.svc.UpdateProgress(c.Request.Context(), id, req.Progress, actorID(c))
	if err != nil {
		respondErr(c, h.logger, "UpdateMilestoneProgress", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestone": m})
}

type reorderRequest struct {
	MilestoneIDs []int `json:"milestone_ids"`
}

// Reorder applies the client's full ordering. On a partial failure the
// response carries the authoritative current ordering with a warning so
// the client can re-render instead of guessing.
func (h *MilestoneHandler) Reorder(c *gin.Context) {
	projectID := pathID(c, "id")
	if projectID == 0 {
		return
	}
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	milestones, err := h.svc.Reorder(c.Request.Context(), projectID, req.MilestoneIDs, actorID(c))
	if err != nil {
		if apperr.IsPartial(err) {
			c.JSON(http.StatusOK, gin.H{
				"milestones": milestones,
				"warning":    "reorder stopped partway; returned ordering is authoritative",
			})
			return
		}
		respondErr(c, h.logger, "ReorderMilestones", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

func (h *MilestoneHandler) DeleteMilestone(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		respondErr(c, h.logger, "DeleteMilestone", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
