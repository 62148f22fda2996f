package content

import (
	"errors"
	"net/http"
	"strings"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func List(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var contents []model.Content
	if err := d.DB.Order("created_at desc").Find(&contents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch contents",
		})

		zap.L().Error("Failed to fetch contents", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(contents),
		"contents": contents,
	})
}

func Fetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var ct model.Content
	if err := d.DB.Where("id = ?", c.Param("id")).First(&ct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Content not found",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch content",
		})

		zap.L().Error("Failed to fetch content", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"content": ct,
	})
}

// FetchByModule lists a module's assets. Clients have been seen sending
// the ID with stray whitespace, so the param is trimmed first
func FetchByModule(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	moduleID := strings.TrimSpace(c.Param("moduleId"))

	var contents []model.Content
	err := d.DB.
		Where("module_id = ?", moduleID).
		Order("created_at asc").
		Find(&contents).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch contents",
		})

		zap.L().Error("Failed to fetch module contents", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(contents),
		"contents": contents,
	})
}

func Update(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data struct {
		Title    *string `json:"title"`
		ModuleID *string `json:"moduleId"`
	}

	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	updates := map[string]any{}
	if data.Title != nil {
		updates["title"] = *data.Title
	}
	if data.ModuleID != nil {
		updates["module_id"] = *data.ModuleID
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Nothing to update",
		})
		return
	}

	r := d.DB.Model(model.Content{}).Where("id = ?", c.Param("id")).Updates(updates)
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to update content",
		})

		zap.L().Error("Failed to update content", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if r.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Content not found",
		})
		return
	}

	var ct model.Content
	d.DB.Where("id = ?", c.Param("id")).First(&ct)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Content updated",
		"content": ct,
	})
}

func Delete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var ct model.Content
	if err := d.DB.Where("id = ?", c.Param("id")).First(&ct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Content not found",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to delete content",
		})

		zap.L().Error("Failed to look up content", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.DB.Delete(&ct).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to delete content",
		})

		zap.L().Error("Failed to delete content", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if ct.StorageKey != "" {
		if err := d.Uploader.Delete(c.Request.Context(), ct.StorageKey); err != nil {
			zap.L().Warn("Failed to delete content object",
				zap.Error(err),
				zap.String("key", ct.StorageKey),
				zap.String("requestID", requestID),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Content deleted",
	})
}
