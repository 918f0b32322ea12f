package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/hexasalon/internal/notification/application"
	"github.com/davicafu/hexasalon/internal/notification/domain"
	"github.com/davicafu/hexasalon/pkg/utils"
	sharedQuery "github.com/davicafu/hexasalon/shared/platform/query"
)

// NotificationHandler encapsula los endpoints HTTP de notificaciones.
type NotificationHandler struct {
	service *application.NotificationService
}

func NewNotificationHandler(service *application.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// ListNotifications endpoint GET /notifications?page=&limit=&status=
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	page, err := intQuery(c, "page")
	if err != nil {
		utils.SendBadRequest(c, "invalid page")
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		utils.SendBadRequest(c, "invalid limit")
		return
	}

	result, err := h.service.List(c.Request.Context(), recipientID(c), domain.ListQuery{
		PageRequest: sharedQuery.PageRequest{Page: page, Limit: limit},
		ReadStatus:  domain.ReadStatus(strings.ToUpper(c.Query("status"))),
	})
	if err != nil {
		sendServiceError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, result)
}

// GetNotification endpoint GET /notifications/:id
func (h *NotificationHandler) GetNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid notification id")
		return
	}

	n, err := h.service.Get(c.Request.Context(), recipientID(c), id)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, n)
}

// DeleteNotification endpoint DELETE /notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid notification id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), recipientID(c), id); err != nil {
		sendServiceError(c, err)
		return
	}

	utils.SendNoContent(c)
}

// MarkAsRead endpoint PATCH /notifications/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	var req struct {
		IDs []uuid.UUID `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	updated, err := h.service.MarkManyAsRead(c.Request.Context(), recipientID(c), req.IDs)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{"updated": updated})
}

// sendServiceError traduce errores de dominio a códigos HTTP.
func sendServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotificationNotFound):
		utils.SendNotFound(c, "notification not found")
	case errors.Is(err, domain.ErrInvalidNotification), errors.Is(err, domain.ErrTooManyIDs):
		utils.SendBadRequest(c, err.Error())
	default:
		utils.SendInternalServerError(c, "internal error")
	}
}

// intQuery devuelve 0 si el parámetro no viene; el servicio aplica los valores por defecto.
func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
