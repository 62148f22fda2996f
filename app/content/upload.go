// Package content holds the lesson asset handlers. Uploaded files land
// on the media bucket, the DB keeps a row pointing at the object.
package content

import (
	"net/http"
	"strings"
	"time"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/model"
	"cwt/backend-api/pkg/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// kindOf maps a sniffed MIME type onto the coarse content kind stored
// with the row
func kindOf(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case strings.HasPrefix(mime, "video/"):
		return "video"
	case strings.HasPrefix(mime, "audio/"):
		return "audio"
	default:
		return "raw"
	}
}

func Upload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	title := c.PostForm("title")
	moduleID := c.PostForm("moduleId")

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "File required",
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

	if title == "" {
		title = fh.Filename
	}

	key := "cwt-content/" + gonanoid.Must() + mime.Extension()

	url, err := d.Uploader.Upload(c.Request.Context(), key, f, fh.Size, mime.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Upload failed",
		})

		zap.L().Error("Failed to upload content", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ct := model.Content{
		ID:         gonanoid.Must(16),
		ModuleID:   moduleID,
		Title:      title,
		Type:       kindOf(mime.String()),
		URL:        url,
		StorageKey: key,
		Size:       fh.Size,
		CreatedAt:  time.Now(),
	}

	if err := d.DB.Create(&ct).Error; err != nil {
		if derr := d.Uploader.Delete(c.Request.Context(), key); derr != nil {
			zap.L().Warn("Failed to clean up content object", zap.Error(derr), zap.String("requestID", requestID))
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Upload failed",
		})

		zap.L().Error("Failed to record content", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Content uploaded",
		"content": ct,
	})
}
