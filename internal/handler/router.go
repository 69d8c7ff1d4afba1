package handler

import "github.com/gin-gonic/gin"

// Routes регистрирует маршруты ядра на gin-роутере.
func Routes(r *gin.Engine, h *Handler) {
	v1 := r.Group("/v1")
	v1.Use(Identity())
	{
		v1.GET("/courts/:id/availability", h.Availability)
		v1.GET("/courts/:id/slots", h.ListSlots)
		v1.POST("/courts/:id/slots/generate", h.GenerateSlots)
		v1.PATCH("/slots/status", h.UpdateSlotStatus)

		v1.POST("/bookings", h.CreateBooking)
		v1.POST("/bookings/:id/cancel", h.CancelBooking)
	}
}
