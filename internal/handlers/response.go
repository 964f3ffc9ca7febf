package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint returns. Non-2xx or success=false
// is treated uniformly as failure by clients, preferring error over message.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Error: message})
}

// respondInternal hides store and file-system errors behind a generic
// message; the detail only goes to the server log.
func respondInternal(c *gin.Context, err error) {
	c.Error(err)
	respondError(c, http.StatusInternalServerError, "internal server error")
}
