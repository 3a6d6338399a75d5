package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/internal/repository"
	"github.com/Faitltd/FAIT-sub008/internal/service"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

type ProjectHandler struct {
	svc    *service.ProjectService
	logger *zap.Logger
}

func NewProjectHandler(svc *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, logger: logger}
}

type createProjectRequest struct {
	ClientID     int        `json:"client_id"`
	ContractorID int        `json:"contractor_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Budget       float64    `json:"budget"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), service.CreateProjectInput{
		ClientID:     req.ClientID,
		ContractorID: req.ContractorID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       model.ProjectStatus(req.Status),
		Budget:       req.Budget,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		respondErr(c, h.logger, "CreateProject", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.logger, "GetProject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var f repository.ListFilter
	if raw := c.Query("client_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		f.ClientID = id
	}
	if raw := c.Query("contractor_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contractor_id"})
			return
		}
		f.ContractorID = id
	}
	f.Status = model.ProjectStatus(c.Query("status"))

	projects, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondErr(c, h.logger, "ListProjects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

type updateProjectRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Budget      *float64   `json:"budget"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.svc.Update(c.Request.Context(), id, model.ProjectPatch{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondErr(c, h.logger, "UpdateProject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

type transitionStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// TransitionStatus changes the project status. When the transition lands
// but the audit write fails, the response still carries the updated
// project, with a warning instead of an error.
func (h *ProjectHandler) TransitionStatus(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req transitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.svc.TransitionStatus(c.Request.Context(), id, model.ProjectStatus(req.Status), req.Reason, actorID(c))
	if err != nil {
		if apperr.IsPartial(err) {
			c.JSON(http.StatusOK, gin.H{
				"project": p,
				"warning": "status changed but the audit record could not be written",
			})
			return
		}
		respondErr(c, h.logger, "TransitionStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) StatusHistory(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	history, err := h.svc.StatusHistory(c.Request.Context(), id, limit)
	if err != nil {
		respondErr(c, h.logger, "StatusHistory", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status_updates": history})
}

func (h *ProjectHandler) GetProgress(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	progress, err := h.svc.OverallProgress(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.logger, "GetProgress", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_id": id, "overall_progress": progress})
}

func (h *ProjectHandler) RecalculateProgress(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	progress, err := h.svc.RecalculateProgress(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.logger, "RecalculateProgress", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_id": id, "overall_progress": progress})
}

func (h *ProjectHandler) ListActivities(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	activities, err := h.svc.Activities(c.Request.Context(), id, limit)
	if err != nil {
		respondErr(c, h.logger, "ListActivities", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

type timelineEventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	EventType   string     `json:"event_type"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (h *ProjectHandler) AddTimelineEvent(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req timelineEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	e, err := h.svc.AddTimelineEvent(c.Request.Context(), service.CreateTimelineEventInput{
		ProjectID:   id,
		Title:       req.Title,
		Description: req.Description,
		EventType:   req.EventType,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondErr(c, h.logger, "AddTimelineEvent", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": e})
}

func (h *ProjectHandler) ListTimelineEvents(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	events, err := h.svc.TimelineEvents(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.logger, "ListTimelineEvents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type updateTimelineEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	EventType   *string    `json:"event_type"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (h *ProjectHandler) UpdateTimelineEvent(c *gin.Context) {
	id := pathID(c, "event_id")
	if id == 0 {
		return
	}
	var req updateTimelineEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	e, err := h.svc.UpdateTimelineEvent(c.Request.Context(), id, model.TimelineEventPatch{
		Title:       req.Title,
		Description: req.Description,
		EventType:   req.EventType,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondErr(c, h.logger, "UpdateTimelineEvent", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": e})
}

func (h *ProjectHandler) DeleteTimelineEvent(c *gin.Context) {
	id := pathID(c, "event_id")
	if id == 0 {
		return
	}
	if err := h.svc.DeleteTimelineEvent(c.Request.Context(), id); err != nil {
		respondErr(c, h.logger, "DeleteTimelineEvent", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
