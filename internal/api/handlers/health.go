package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health provides a minimal liveness check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
