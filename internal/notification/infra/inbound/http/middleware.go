package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	"github.com/davicafu/hexasalon/pkg/utils"
)

// Cabeceras que inyecta la capa de autenticación aguas arriba.
const (
	HeaderRecipientID   = "X-Recipient-ID"
	HeaderRecipientType = "X-Recipient-Type"
)

const (
	ctxRecipientID   = "recipient_id"
	ctxRecipientType = "recipient_type"
)

// RequireRecipient exige la identidad del destinatario; sin ella responde 401.
func RequireRecipient() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRecipientID))
		if id == "" {
			utils.SendUnauthorized(c, "missing recipient identity")
			return
		}

		rt := domain.RecipientType(strings.ToUpper(strings.TrimSpace(c.GetHeader(HeaderRecipientType))))
		if rt != "" && !rt.Valid() {
			utils.AbortWithError(c, http.StatusBadRequest, "invalid recipient type")
			return
		}

		c.Set(ctxRecipientID, id)
		c.Set(ctxRecipientType, rt)
		c.Next()
	}
}

func recipientID(c *gin.Context) string {
	return c.GetString(ctxRecipientID)
}
