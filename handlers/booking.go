package handlers

import (
	"errors"
	"net/http"

	requestRepo "autoserve/database/repository/servicerequest"
	"autoserve/models"
	"autoserve/services/booking"
	"autoserve/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes service request creation and the dealership-side
// update path.
type BookingHandler struct {
	Service booking.Service
}

func NewBookingHandler(svc booking.Service) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// CreateBookingHandler handles POST /api/bookings. Replays of the same
// idempotency key return the original request with 200 instead of 201.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	logger := utils.GetLogger()
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.IdempotencyKey == "" {
		input.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	req, created, err := h.Service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		var bookingErr *booking.BookingError
		if errors.As(err, &bookingErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": bookingErr.Message, "code": bookingErr.Code})
			return
		}
		logger.Error("Failed to create booking", zap.String("idempotencyKey", input.IdempotencyKey), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, req)
}

// UpdateServiceRequestHandler handles PUT /api/services/:id. Dealerships use
// it to confirm, select the actual problem, set final figures and advance the
// lifecycle status.
func (h *BookingHandler) UpdateServiceRequestHandler(c *gin.Context) {
	logger := utils.GetLogger()
	requestID := c.Param("id")
	var update models.ServiceRequestUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	req, err := h.Service.UpdateServiceRequest(c.Request.Context(), requestID, update)
	if err != nil {
		switch {
		case errors.Is(err, requestRepo.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case booking.IsInvalidTransition(err):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			var bookingErr *booking.BookingError
			if errors.As(err, &bookingErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": bookingErr.Message, "code": bookingErr.Code})
				return
			}
			logger.Error("Failed to update service request", zap.String("requestID", requestID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, req)
}

// GetServiceRequestHandler handles GET /api/services/:id.
func (h *BookingHandler) GetServiceRequestHandler(c *gin.Context) {
	requestID := c.Param("id")
	req, err := h.Service.GetServiceRequest(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, requestRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, req)
}

// CustomerServicesHandler handles GET /api/customers/:id/services.
func (h *BookingHandler) CustomerServicesHandler(c *gin.Context) {
	customerID := c.Param("id")
	reqs, err := h.Service.CustomerRequests(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service_requests": reqs})
}

// DealershipServicesHandler handles GET /api/dealers/:id/services.
func (h *BookingHandler) DealershipServicesHandler(c *gin.Context) {
	dealershipID := c.Param("id")
	reqs, err := h.Service.DealershipRequests(c.Request.Context(), dealershipID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service_requests": reqs})
}
