package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Wire contract: success bodies are the payload itself, failures are
// { "error": "<human-readable message>" }. Internal detail never reaches
// the body; it belongs in the logs.

// JSON writes a success payload as-is.
func JSON(c *gin.Context, status int, payload any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, payload)
}

// Message writes a { "message": ... } acknowledgment body.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Error writes the error body shape shared by every non-2xx response.
func Error(c *gin.Context, status int, msg string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": msg})
}

// AbortError writes the error body and stops the handler chain. Middleware
// uses this so no handler runs after an auth or rate-limit rejection.
func AbortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
