package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"safetravels-api/models"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func SendError(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
		Details: details,
	})
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SendCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendPaginated answers with {key: items, pagination: {...}} under data.
func SendPaginated(c *gin.Context, key string, items interface{}, pagination models.Pagination) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			key:          items,
			"pagination": pagination,
		},
	})
}
