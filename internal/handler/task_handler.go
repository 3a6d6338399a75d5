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
)

type TaskHandler struct {
	svc    *service.TaskService
	logger *zap.Logger
}

func NewTaskHandler(svc *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, logger: logger}
}

type createTaskRequest struct {
	MilestoneID *int       `json:"milestone_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *int       `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	projectID := pathID(c, "id")
	if projectID == 0 {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	t, err := h.svc.Create(c.Request.Context(), service.CreateTaskInput{
		ProjectID:   projectID,
		MilestoneID: req.MilestoneID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatus(req.Status),
		Priority:    model.TaskPriority(req.Priority),
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}, actorID(c))
	if err != nil {
		respondErr(c, h.logger, "CreateTask", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": t})
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID := pathID(c, "id")
	if projectID == 0 {
		return
	}
	var f repository.TaskFilter
	if raw := c.Query("milestone_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone_id"})
			return
		}
		f.MilestoneID = id
	}
	if raw := c.Query("assigned_to"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assigned_to"})
			return
		}
		f.AssignedTo = id
	}
	f.Status = model.TaskStatus(c.Query("status"))
	f.Priority = model.TaskPriority(c.Query("priority"))

	tasks, err := h.svc.List(c.Request.Context(), projectID, f)
	if err != nil {
		respondErr(c, h.logger, "ListTasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.logger, "GetTask", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t})
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	MilestoneID *int       `json:"milestone_id"`
	Priority    *string    `json:"priority"`
	AssignedTo  *int       `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	patch := model.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		MilestoneID: req.MilestoneID,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}
	if req.Priority != nil {
		p := model.TaskPriority(*req.Priority)
		patch.Priority = &p
	}
	t, err := h.svc.Update(c.Request.Context(), id, patch, actorID(c))
	if err != nil {
		respondErr(c, h.logger, "UpdateTask", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t})
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req taskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	t, err := h.svc.UpdateStatus(c.Request.Context(), id, model.TaskStatus(req.Status), actorID(c))
	if err != nil {
		respondErr(c, h.logger, "UpdateTaskStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		respondErr(c, h.logger, "DeleteTask", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
