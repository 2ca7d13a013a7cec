package analytics

import (
	"net/http"
	"strconv"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	GetEventSales(c *gin.Context)
	GetBookingDailyStats(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetEventSales godoc
// @Summary Ticket sales per tier for an event
// @Tags analytics
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /analytics/events/{id} [get]
func (ctrl *controller) GetEventSales(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, apperr.Validation("event_id", "invalid event ID"))
		return
	}

	sales, err := ctrl.service.GetEventSales(c.Request.Context(), eventID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Event sales retrieved successfully", sales, nil)
}

func (ctrl *controller) GetBookingDailyStats(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, apperr.Validation("days", "must be a number"))
			return
		}
		days = n
	}

	stats, err := ctrl.service.GetDailyBookingStats(c.Request.Context(), days)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Daily booking stats retrieved successfully", stats, nil)
}
