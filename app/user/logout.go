package user

import (
	"net/http"
	"time"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logout just stamps lastActive. Sessions live with the auth provider,
// there is nothing to tear down server side.
func Logout(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data struct {
		UID string `json:"uid"`
	}

	if err := c.ShouldBind(&data); err != nil || data.UID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "User ID required",
		})
		return
	}

	err := d.DB.Model(model.User{}).
		Where("uid = ?", data.UID).
		Update("last_active", time.Now()).Error
	if err != nil {
		zap.L().Error("Failed to stamp last active", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}
