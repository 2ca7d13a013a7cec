package availability

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/utils/response"
)

type Controller interface {
	GetTierAvailability(c *gin.Context)
	Reconcile(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetTierAvailability godoc
// @Summary Remaining tickets for a tier
// @Description Read-side snapshot; may be served from cache for a short TTL.
// @Tags availability
// @Produce json
// @Param id path string true "Tier ID"
// @Param fresh query bool false "Bypass the cache"
// @Success 200 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /tiers/{id}/availability [get]
func (ctrl *controller) GetTierAvailability(c *gin.Context) {
	tierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid tier ID", nil, response.ErrorDetail{
			Kind:  "validation",
			Field: "tier_id",
		})
		return
	}

	ctx := c.Request.Context()
	if c.Query("fresh") == "true" {
		if err := ctrl.service.Invalidate(ctx, tierID); err != nil {
			response.RespondError(c, err)
			return
		}
	}

	snap, err := ctrl.service.Snapshot(ctx, tierID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Availability retrieved successfully", snap, nil)
}

// Reconcile godoc
// @Summary Recompute availability for every tier
// @Tags admin
// @Produce json
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/reconcile [post]
func (ctrl *controller) Reconcile(c *gin.Context) {
	report, err := ctrl.service.Reconcile(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Availability reconciled", report, nil)
}
