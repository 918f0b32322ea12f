package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DataEnvelope envuelve toda respuesta exitosa con cuerpo: {"data": ...}.
type DataEnvelope struct {
	Data interface{} `json:"data"`
}

// ErrorResponse es el detalle dentro de {"error": {...}}.
type ErrorResponse struct {
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error ErrorResponse `json:"error"`
}

func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, DataEnvelope{Data: data})
}

// SendNoContent responde 204 sin cuerpo.
func SendNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, errorEnvelope{Error: ErrorResponse{Message: message}})
}

// AbortWithError corta la cadena de middlewares; los handlers siguientes no corren.
func AbortWithError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, errorEnvelope{Error: ErrorResponse{Message: message}})
}

func SendBadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

func SendUnauthorized(c *gin.Context, message string) {
	AbortWithError(c, http.StatusUnauthorized, message)
}

func SendNotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message)
}

func SendInternalServerError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message)
}
