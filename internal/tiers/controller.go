package tiers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/utils/response"
)

type Controller interface {
	CreateTier(c *gin.Context)
	ListTiers(c *gin.Context)
	GetTier(c *gin.Context)
	UpdateTier(c *gin.Context)
	CancelTier(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func parseID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid "+what+" ID", nil, response.ErrorDetail{
			Kind:  "validation",
			Field: what + "_id",
		})
		return uuid.Nil, false
	}
	return id, true
}

// CreateTier godoc
// @Summary Create a ticket tier for an event
// @Tags tiers
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param body body CreateTierRequest true "Tier"
// @Success 201 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /events/{id}/tiers [post]
func (ctrl *controller) CreateTier(c *gin.Context) {
	eventID, ok := parseID(c, "event")
	if !ok {
		return
	}

	var req CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}

	tier, err := ctrl.service.CreateTier(c.Request.Context(), eventID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Tier created successfully", tier.ToResponse(), nil)
}

func (ctrl *controller) ListTiers(c *gin.Context) {
	eventID, ok := parseID(c, "event")
	if !ok {
		return
	}

	list, err := ctrl.service.ListTiers(c.Request.Context(), eventID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	out := make([]TierResponse, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToResponse())
	}
	response.RespondJSON(c, "success", http.StatusOK, "Tiers retrieved successfully", out, nil)
}

func (ctrl *controller) GetTier(c *gin.Context) {
	tierID, ok := parseID(c, "tier")
	if !ok {
		return
	}

	tier, err := ctrl.service.GetTier(c.Request.Context(), tierID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tier retrieved successfully", tier.ToResponse(), nil)
}

// UpdateTier godoc
// @Summary Patch a ticket tier
// @Tags tiers
// @Accept json
// @Produce json
// @Param id path string true "Tier ID"
// @Param body body UpdateTierRequest true "Fields to change"
// @Success 200 {object} response.StandardApiResponse
// @Router /tiers/{id} [patch]
func (ctrl *controller) UpdateTier(c *gin.Context) {
	tierID, ok := parseID(c, "tier")
	if !ok {
		return
	}

	var req UpdateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}

	tier, err := ctrl.service.UpdateTier(c.Request.Context(), tierID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tier updated successfully", tier.ToResponse(), nil)
}

// CancelTier godoc
// @Summary Cancel (soft delete) a ticket tier
// @Tags tiers
// @Produce json
// @Param id path string true "Tier ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /tiers/{id} [delete]
func (ctrl *controller) CancelTier(c *gin.Context) {
	tierID, ok := parseID(c, "tier")
	if !ok {
		return
	}

	tier, err := ctrl.service.CancelTier(c.Request.Context(), tierID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tier cancelled successfully", tier.ToResponse(), nil)
}
