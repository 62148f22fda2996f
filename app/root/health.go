package root

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func Banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "CWT Backend API",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "CWT Backend running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
