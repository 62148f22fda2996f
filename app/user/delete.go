package user

import (
	"errors"
	"net/http"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Delete removes the account and, best effort, its profile photo object.
func Delete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	uid := c.Param("uid")

	var u model.User
	if err := d.DB.Where("uid = ?", uid).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "User not found",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Delete failed",
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.DB.Delete(&u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Delete failed",
		})

		zap.L().Error("Failed to delete user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if u.PhotoKey != "" {
		if err := d.Uploader.Delete(c.Request.Context(), u.PhotoKey); err != nil {
			zap.L().Warn("Failed to delete profile photo object",
				zap.Error(err),
				zap.String("key", u.PhotoKey),
				zap.String("requestID", requestID),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted",
	})
}
