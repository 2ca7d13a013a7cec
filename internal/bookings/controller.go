package bookings

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/utils/response"
)

type Controller interface {
	CreateBooking(c *gin.Context)
	ListBookings(c *gin.Context)
	GetBooking(c *gin.Context)
	ConfirmBooking(c *gin.Context)
	CompleteBooking(c *gin.Context)
	CancelBooking(c *gin.Context)
}

type controller struct {
	service  Service
	currency Currency
}

func NewController(service Service, currency Currency) Controller {
	return &controller{service: service, currency: currency}
}

func bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, response.ErrorDetail{
			Kind:  "validation",
			Field: "booking_id",
		})
		return uuid.Nil, false
	}
	return id, true
}

// CreateBooking godoc
// @Summary Book tickets from a tier price band
// @Tags bookings
// @Accept json
// @Produce json
// @Param body body CreateBookingRequest true "Booking"
// @Success 201 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /bookings [post]
func (ctrl *controller) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}

	booking, err := ctrl.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Booking created successfully", booking.ToResponse(ctrl.currency), nil)
}

// ListBookings godoc
// @Summary List bookings
// @Tags bookings
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param event_id query string false "Event filter"
// @Param tier_id query string false "Tier filter"
// @Param user_id query string false "User filter"
// @Param status query string false "Status filter"
// @Success 200 {object} response.StandardApiResponse
// @Router /bookings [get]
func (ctrl *controller) ListBookings(c *gin.Context) {
	var query BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondBindError(c, err)
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	list, total, err := ctrl.service.ListBookings(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	out := make([]BookingResponse, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToResponse(ctrl.currency))
	}
	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", PaginatedBookings{
		Bookings:   out,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(total, query.Limit),
	}, nil)
}

func (ctrl *controller) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", booking.ToResponse(ctrl.currency), nil)
}

// ConfirmBooking godoc
// @Summary Confirm a pending booking
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /bookings/{id}/confirm [post]
func (ctrl *controller) ConfirmBooking(c *gin.Context) {
	ctrl.transition(c, ctrl.service.ConfirmBooking, "Booking confirmed successfully")
}

// CompleteBooking godoc
// @Summary Mark a confirmed booking as completed
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /bookings/{id}/complete [post]
func (ctrl *controller) CompleteBooking(c *gin.Context) {
	ctrl.transition(c, ctrl.service.CompleteBooking, "Booking completed successfully")
}

// CancelBooking godoc
// @Summary Cancel a booking and release its tickets
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /bookings/{id}/cancel [post]
func (ctrl *controller) CancelBooking(c *gin.Context) {
	ctrl.transition(c, ctrl.service.CancelBooking, "Booking cancelled successfully")
}

func (ctrl *controller) transition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) (*Booking, error), message string) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := apply(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, message, booking.ToResponse(ctrl.currency), nil)
}
