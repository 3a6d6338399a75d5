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

type WarrantyHandler struct {
	svc    *service.WarrantyService
	logger *zap.Logger
}

func NewWarrantyHandler(svc *service.WarrantyService, logger *zap.Logger) *WarrantyHandler {
	return &WarrantyHandler{svc: svc, logger: logger}
}

type createWarrantyRequest struct {
	ProjectID      int        `json:"project_id"`
	ClientID       int        `json:"client_id"`
	ContractorID   int        `json:"contractor_id"`
	WarrantyTypeID int        `json:"warranty_type_id"`
	StartDate      *time.Time `json:"start_date"`
	IsPremium      bool       `json:"is_premium"`
	AutoRenewal    bool       `json:"auto_renewal"`
}

func (h *WarrantyHandler) CreateWarranty(c *gin.Context) {
	var req createWarrantyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	w, err := h.svc.Create(c.Request.Context(), service.CreateWarrantyInput{
		ProjectID:      req.ProjectID,
		ClientID:       req.ClientID,
		ContractorID:   req.ContractorID,
		WarrantyTypeID: req.WarrantyTypeID,
		StartDate:      req.StartDate,
		IsPremium:      req.IsPremium,
		AutoRenewal:    req.AutoRenewal,
	})
	if err != nil {
		respondErr(c, h.logger, "CreateWarranty", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"warranty": w})
}

func (h *WarrantyHandler) GetWarranty(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	w, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.logger, "GetWarranty", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warranty": w})
}

func (h *WarrantyHandler) ListWarranties(c *gin.Context) {
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

	warranties, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondErr(c, h.logger, "ListWarranties", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warranties": warranties})
}

type updateWarrantyRequest struct {
	WarrantyTypeID *int       `json:"warranty_type_id"`
	IsPremium      *bool      `json:"is_premium"`
	AutoRenewal    *bool      `json:"auto_renewal"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
}

func (h *WarrantyHandler) UpdateWarranty(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	var req updateWarrantyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	w, err := h.svc.Update(c.Request.Context(), id, model.WarrantyPatch{
		WarrantyTypeID: req.WarrantyTypeID,
		IsPremium:      req.IsPremium,
		AutoRenewal:    req.AutoRenewal,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	})
	if err != nil {
		respondErr(c, h.logger, "UpdateWarranty", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warranty": w})
}

func (h *WarrantyHandler) VoidWarranty(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	if err := h.svc.Void(c.Request.Context(), id); err != nil {
		respondErr(c, h.logger, "VoidWarranty", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WarrantyHandler) CheckEligibility(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}
	eligible, err := h.svc.IsEligibleForClaim(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.logger, "CheckEligibility", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warranty_id": id, "eligible": eligible})
}

func (h *WarrantyHandler) ListWarrantyTypes(c *gin.Context) {
	types, err := h.svc.ListTypes(c.Request.Context())
	if err != nil {
		respondErr(c, h.logger, "ListWarrantyTypes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warranty_types": types})
}
