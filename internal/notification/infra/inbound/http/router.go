package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterNotificationRoutes registra las rutas HTTP de notificaciones.
func RegisterNotificationRoutes(r *gin.Engine, handler *NotificationHandler) {
	notifications := r.Group("/notifications", RequireRecipient())
	{
		notifications.GET("", handler.ListNotifications)         // Listar las del destinatario
		notifications.PATCH("/read", handler.MarkAsRead)         // Marcar varias como leídas
		notifications.GET("/:id", handler.GetNotification)       // Obtener una por ID
		notifications.DELETE("/:id", handler.DeleteNotification) // Eliminar una
	}
}

// RegisterHealthRoutes expone /health.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
