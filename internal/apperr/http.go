package apperr

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes err as the standard error body. Classified errors keep
// their message; internal failures are logged and masked.
func JSON(c *gin.Context, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("[http] internal error: %v", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
