package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"cleansched/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings/:id", h.GetByID)
	rg.GET("/leads/:id/bookings", h.ListByLead)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/bookings/reap", h.Reap)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), nil, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation), errors.Is(err, ErrMissingContact):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrLeadNotFound):
			response.Error(c, http.StatusNotFound, "LEAD_NOT_FOUND", err.Error())
		case errors.Is(err, ErrSchedulingConflict):
			response.Error(c, http.StatusConflict, "SCHEDULING_CONFLICT", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create booking")
		}
		return
	}

	resp := CreateBookingResponse{
		ID:              b.ID,
		Status:          string(b.Status),
		StartTime:       b.StartTime,
		DurationMin:     b.DurationMin,
		DepositRequired: b.DepositRequired,
		DepositCents:    b.DepositCents,
		DepositPolicy:   b.DepositPolicy,
		CheckoutURL:     b.CheckoutURL,
	}
	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) GetByID(c *gin.Context) {
	b, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "booking not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load booking")
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) ListByLead(c *gin.Context) {
	leadID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid lead id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.service.ListByLead(c.Request.Context(), leadID, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

func (h *Handler) Reap(c *gin.Context) {
	var graceWindow time.Duration
	if raw := c.Query("older_than"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid older_than duration")
			return
		}
		graceWindow = d
	}

	n, err := h.service.ReapStale(c.Request.Context(), graceWindow)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "reap failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": n})
}
