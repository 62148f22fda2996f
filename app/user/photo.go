package user

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/model"
	"cwt/backend-api/pkg/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UploadPhoto replaces the profile photo. The old object is removed
// best effort after the new one is stored and recorded.
func UploadPhoto(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	uid := c.PostForm("uid")
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "User ID required",
		})
		return
	}

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
			"message": "Upload failed",
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Photo file required",
		})
		return
	}

	status, f, mime, err := validators.UploadValidator(fh)
	if err != nil {
		c.JSON(status, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	defer f.Close()

	if !strings.HasPrefix(mime.String(), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Photo must be an image",
		})
		return
	}

	key := "cwt-profiles/" + gonanoid.Must() + mime.Extension()

	url, err := d.Uploader.Upload(c.Request.Context(), key, f, fh.Size, mime.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Upload failed",
		})

		zap.L().Error("Failed to upload profile photo", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	oldKey := u.PhotoKey

	err = d.DB.Model(model.User{}).Where("uid = ?", uid).Updates(map[string]any{
		"photo_url":  url,
		"photo_key":  key,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		// Record failed, don't leave the fresh object orphaned
		if derr := d.Uploader.Delete(c.Request.Context(), key); derr != nil {
			zap.L().Warn("Failed to clean up photo object", zap.Error(derr), zap.String("requestID", requestID))
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Upload failed",
		})

		zap.L().Error("Failed to record profile photo", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if oldKey != "" && oldKey != key {
		if err := d.Uploader.Delete(c.Request.Context(), oldKey); err != nil {
			zap.L().Warn("Failed to delete old profile photo",
				zap.Error(err),
				zap.String("key", oldKey),
				zap.String("requestID", requestID),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Photo uploaded",
		"photoURL": url,
	})
}
