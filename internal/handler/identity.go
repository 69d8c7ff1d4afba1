package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/courtside/booking-platform/internal/service"
)

// Заголовки, которыми внешний контур аутентификации передаёт личность.
const (
	headerUserID = "X-User-Id"
	headerRole   = "X-User-Role"
)

const actorKey = "actor"

// Identity извлекает (user id, role) из доверенных заголовков шлюза.
// Ядро аутентификацию не выполняет — это контракт внешнего провайдера.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.GetHeader(headerUserID))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":  "unauthenticated",
				"reason": "missing or malformed identity headers",
			})
			return
		}

		role := service.Role(c.GetHeader(headerRole))
		switch role {
		case service.RoleClient, service.RoleManager, service.RoleAdmin:
		default:
			role = service.RoleClient
		}

		c.Set(actorKey, service.Actor{UserID: userID, Role: role})
		c.Next()
	}
}

func actorFrom(c *gin.Context) service.Actor {
	v, _ := c.Get(actorKey)
	actor, _ := v.(service.Actor)
	return actor
}
