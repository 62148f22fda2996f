// Package module holds the course module CRUD handlers.
package module

import (
	"net/http"
	"time"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/model"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

type body struct {
	MilestoneID *string `json:"milestoneId"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

func Create(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data body
	err := c.ShouldBind(&data)
	if err != nil ||
		data.Title == nil || *data.Title == "" ||
		data.MilestoneID == nil || *data.MilestoneID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Title and milestone ID required",
		})
		return
	}

	now := time.Now()
	m := model.Module{
		ID:          gonanoid.Must(16),
		MilestoneID: *data.MilestoneID,
		Title:       *data.Title,
		CreatedAt:   now,
		UpdatedAt:   now,
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
			"message": "Failed to create module",
		})

		zap.L().Error("Failed to create module", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Module created",
		"module":  m,
	})
}

// FetchByMilestone lists the modules under one milestone in display order
func FetchByMilestone(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var modules []model.Module
	err := d.DB.
		Where("milestone_id = ?", c.Param("milestoneId")).
		Order("sort_order asc").
		Find(&modules).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch modules",
		})

		zap.L().Error("Failed to fetch modules", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(modules),
		"modules": modules,
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
	if data.MilestoneID != nil {
		updates["milestone_id"] = *data.MilestoneID
	}

	r := d.DB.Model(model.Module{}).Where("id = ?", c.Param("id")).Updates(updates)
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to update module",
		})

		zap.L().Error("Failed to update module", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if r.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Module not found",
		})
		return
	}

	var m model.Module
	d.DB.Where("id = ?", c.Param("id")).First(&m)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Module updated",
		"module":  m,
	})
}

func Delete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	r := d.DB.Where("id = ?", c.Param("id")).Delete(model.Module{})
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to delete module",
		})

		zap.L().Error("Failed to delete module", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if r.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Module not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Module deleted",
	})
}
