package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/courtside/booking-platform/internal/model"
	"github.com/courtside/booking-platform/internal/schedule"
	"github.com/courtside/booking-platform/internal/service"
)

// Handler — HTTP-обвязка ядра бронирования.
type Handler struct {
	slots    *service.SlotService
	bookings *service.BookingService
	log      *slog.Logger
}

func New(slots *service.SlotService, bookings *service.BookingService, log *slog.Logger) *Handler {
	return &Handler{slots: slots, bookings: bookings, log: log}
}

// Каждый отказ несёт машинный kind и человекочитаемую причину;
// перевод в пользовательские сообщения — забота UI-слоя.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind, code := "internal", http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrValidation):
		kind, code = "validation", http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		kind, code = "unauthorized", http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		kind, code = "not_found", http.StatusNotFound
	case errors.Is(err, service.ErrUnavailable):
		kind, code = "unavailable", http.StatusConflict
	case errors.Is(err, service.ErrConflict):
		kind, code = "conflict", http.StatusConflict
	case errors.Is(err, service.ErrPastTime):
		kind, code = "past_time", http.StatusUnprocessableEntity
	}

	if code == http.StatusInternalServerError {
		h.log.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
		c.JSON(code, gin.H{"error": kind, "reason": "internal error"})
		return
	}

	c.JSON(code, gin.H{"error": kind, "reason": err.Error()})
}

func parseDateQuery(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	return schedule.ParseDate(raw)
}

// GET /v1/courts/:id/availability?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) Availability(c *gin.Context) {
	courtID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}

	from, err := parseDateQuery(c, "from")
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}

	days, err := h.slots.Availability(c.Request.Context(), courtID, from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"court_id": courtID, "days": days})
}

// POST /v1/courts/:id/slots/generate
func (h *Handler) GenerateSlots(c *gin.Context) {
	courtID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}

	var in struct {
		From          string `json:"from" binding:"required"`
		To            string `json:"to" binding:"required"`
		ClearExisting bool   `json:"clear_existing"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}

	from, err := schedule.ParseDate(in.From)
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}
	to, err := schedule.ParseDate(in.To)
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}

	created, err := h.slots.Generate(c.Request.Context(), actorFrom(c), courtID, from, to, in.ClearExisting)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": created})
}

// GET /v1/courts/:id/slots?from&to&status&page&page_size
func (h *Handler) ListSlots(c *gin.Context) {
	courtID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}

	from, err := parseDateQuery(c, "from")
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}
	if !to.IsZero() {
		// Границы запроса — даты; верхняя включительно.
		to = to.AddDate(0, 0, 1)
	}

	slots, err := h.slots.List(c.Request.Context(), courtID, from, to, model.SlotStatus(c.Query("status")))
	if err != nil {
		h.respondError(c, err)
		return
	}

	page := schedule.Paginate(slots, intQuery(c, "page", 1), intQuery(c, "page_size", 20))
	c.JSON(http.StatusOK, gin.H{
		"slots":     page.Items,
		"page":      page.Page,
		"page_size": page.PageSize,
		"total":     page.Total,
		"has_next":  page.HasNext,
	})
}

// PATCH /v1/slots/status
func (h *Handler) UpdateSlotStatus(c *gin.Context) {
	var in struct {
		SlotIDs []string `json:"slot_ids" binding:"required"`
		Status  string   `json:"status" binding:"required"`
		Reason  string   `json:"reason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}

	ids := make([]uuid.UUID, 0, len(in.SlotIDs))
	for _, raw := range in.SlotIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.respondError(c, service.ErrValidation)
			return
		}
		ids = append(ids, id)
	}

	updated, err := h.slots.UpdateStatus(c.Request.Context(), actorFrom(c), ids, model.SlotStatus(in.Status), in.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// POST /v1/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var in struct {
		CourtID  string `json:"court_id" binding:"required"`
		StartsAt string `json:"starts_at" binding:"required"` // RFC3339
		EndsAt   string `json:"ends_at" binding:"required"`   // RFC3339
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}

	courtID, err := uuid.Parse(in.CourtID)
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}
	startsAt, err := time.Parse(time.RFC3339, in.StartsAt)
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}
	endsAt, err := time.Parse(time.RFC3339, in.EndsAt)
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}

	booking, err := h.bookings.Claim(c.Request.Context(), actorFrom(c), courtID, startsAt.UTC(), endsAt.UTC())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"booking_id": booking.ID,
		"status":     booking.Status,
	})
}

// POST /v1/bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, service.ErrValidation)
		return
	}

	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&in) // тело с причиной опционально

	booking, err := h.bookings.Cancel(c.Request.Context(), actorFrom(c), bookingID, in.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking_id":      booking.ID,
		"status":          booking.Status,
		"refund_eligible": booking.RefundEligible,
	})
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
