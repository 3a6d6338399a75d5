package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/internal/service"
)

type ClaimHandler struct {
	svc    *service.ClaimService
	logger *zap.Logger
}

func NewClaimHandler(svc *service.ClaimService, logger *zap.Logger) *ClaimHandler {
	return &ClaimHandler{svc: svc, logger: logger}
}

type createClaimRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *ClaimHandler) CreateClaim(c *gin.Context) {
	warrantyID := pathID(c, "id")
	if warrantyID == 0 {
		return
	}
	var req createClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	claim, err := h.svc.Create(c.Request.Context(), service.CreateClaimInput{
		WarrantyID:  warrantyID,
		Title:       req.Title,
		Description: req.Description,
	}, actorID(c))
	if err != nil {
		respondErr(c, h.logger, "CreateClaim", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"claim": claim})
}

func (h *ClaimHandler) GetClaim(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	claim, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.logger, "GetClaim", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claim": claim})
}

func (h *ClaimHandler) ListClaims(c *gin.Context) {
	warrantyID := pathID(c, "id")
	if warrantyID == 0 {
		return
	}
	claims, err := h.svc.ListByWarranty(c.Request.Context(), warrantyID)
	if err != nil {
		respondErr(c, h.logger, "ListClaims", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

type claimStatusRequest struct {
	Status          string `json:"status"`
	ResolutionNotes string `json:"resolution_notes"`
}

func (h *ClaimHandler) UpdateStatus(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req claimStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	claim, err := h.svc.UpdateStatus(c.Request.Context(), id, model.ClaimStatus(req.Status), req.ResolutionNotes, actorID(c))
	if err != nil {
		respondErr(c, h.logger, "UpdateClaimStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claim": claim})
}

type claimUpdateRequest struct {
	Content string `json:"content"`
}

func (h *ClaimHandler) AddUpdate(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req claimUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	update, err := h.svc.AddUpdate(c.Request.Context(), id, req.Content, actorID(c))
	if err != nil {
		respondErr(c, h.logger, "AddClaimUpdate", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"update": update})
}

func (h *ClaimHandler) ListUpdates(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	updates, err := h.svc.Updates(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.logger, "ListClaimUpdates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updates": updates})
}
