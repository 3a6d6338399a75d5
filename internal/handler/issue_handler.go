package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/internal/service"
)

type IssueHandler struct {
	svc    *service.IssueService
	logger *zap.Logger
}

func NewIssueHandler(svc *service.IssueService, logger *zap.Logger) *IssueHandler {
	return &IssueHandler{svc: svc, logger: logger}
}

type createIssueRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	AssignedTo  *int       `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *IssueHandler) CreateIssue(c *gin.Context) {
	projectID := pathID(c, "id")
	if projectID == 0 {
		return
	}
	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	issue, err := h.svc.Create(c.Request.Context(), service.CreateIssueInput{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.TaskPriority(req.Priority),
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}, actorID(c))
	if err != nil {
		respondErr(c, h.logger, "CreateIssue", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"issue": issue})
}

func (h *IssueHandler) ListIssues(c *gin.Context) {
	projectID := pathID(c, "id")
	if projectID == 0 {
		return
	}
	issues, err := h.svc.ListByProject(c.Request.Context(), projectID, model.IssueStatus(c.Query("status")))
	if err != nil {
		respondErr(c, h.logger, "ListIssues", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

func (h *IssueHandler) GetIssue(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	issue, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.logger, "GetIssue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

type updateIssueRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	AssignedTo  *int       `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req updateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	patch := model.IssuePatch{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}
	if req.Priority != nil {
		p := model.TaskPriority(*req.Priority)
		patch.Priority = &p
	}
	issue, err := h.svc.Update(c.Request.Context(), id, patch, actorID(c))
	if err != nil {
		respondErr(c, h.logger, "UpdateIssue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

type issueStatusRequest struct {
	Status string `json:"status"`
}

func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req issueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.svc.UpdateStatus(c.Request.Context(), id, model.IssueStatus(req.Status), actorID(c)); err != nil {
		respondErr(c, h.logger, "UpdateIssueStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type resolveIssueRequest struct {
	ResolutionNotes string `json:"resolution_notes"`
}

func (h *IssueHandler) ResolveIssue(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req resolveIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	issue, err := h.svc.Resolve(c.Request.Context(), id, req.ResolutionNotes, actorID(c))
	if err != nil {
		respondErr(c, h.logger, "ResolveIssue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}
