// Package milestone holds the curriculum milestone CRUD handlers.
package milestone

import (
	"errors"
	"net/http"
	"time"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/model"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type body struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

func Create(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data body
	if err := c.ShouldBind(&data); err != nil || data.Title == nil || *data.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Title required",
		})
		return
	}

	now := time.Now()
	m := model.Milestone{
		ID:        gonanoid.Must(16),
		Title:     *data.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if data.Description != nil {
		m.Description = *data.Description
	}
	if data.Order != nil {
		m.Order = *data.Order
	}

	if err := d.DB.Create(&m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to create milestone",
		})

		zap.L().Error("Failed to create milestone", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Milestone created",
		"milestone": m,
	})
}

func List(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var milestones []model.Milestone
	if err := d.DB.Order("sort_order asc").Find(&milestones).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch milestones",
		})

		zap.L().Error("Failed to fetch milestones", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(milestones),
		"milestones": milestones,
	})
}

func Fetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var m model.Milestone
	if err := d.DB.Where("id = ?", c.Param("id")).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Milestone not found",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch milestone",
		})

		zap.L().Error("Failed to fetch milestone", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"milestone": m,
	})
}

func Update(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data body
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	updates := map[string]any{"updated_at": time.Now()}
	if data.Title != nil {
		updates["title"] = *data.Title
	}
	if data.Description != nil {
		updates["description"] = *data.Description
	}
	if data.Order != nil {
		updates["sort_order"] = *data.Order
	}

	r := d.DB.Model(model.Milestone{}).Where("id = ?", c.Param("id")).Updates(updates)
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to update milestone",
		})

		zap.L().Error("Failed to update milestone", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if r.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Milestone not found",
		})
		return
	}

	var m model.Milestone
	d.DB.Where("id = ?", c.Param("id")).First(&m)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Milestone updated",
		"milestone": m,
	})
}

func Delete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	r := d.DB.Where("id = ?", c.Param("id")).Delete(model.Milestone{})
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to delete milestone",
		})

		zap.L().Error("Failed to delete milestone", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if r.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Milestone not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Milestone deleted",
	})
}
