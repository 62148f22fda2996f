package user

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/model"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type upsertBody struct {
	Email string `json:"email"`
	updateBody
}

// Upsert updates the profile matched by email, creating it when no
// account exists yet. Created rows get a temporary uid until the auth
// provider registers the real one.
func Upsert(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data upsertBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Email required",
		})
		return
	}

	var existing model.User
	err := d.DB.Where("email = ?", data.Email).First(&existing).Error

	switch {
	case err == nil:
		c.Params = append(c.Params, gin.Param{Key: "uid", Value: existing.UID})
		Update(c, d)
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Lookup failed",
		})

		zap.L().Error("Failed to look up user by email", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	now := time.Now()
	u := model.User{
		ID:            gonanoid.Must(16),
		UID:           fmt.Sprintf("temp_%d", now.UnixMilli()),
		Email:         data.Email,
		Role:          "student",
		Status:        "active",
		SocialLinks:   model.DefaultSocialLinks(),
		Notifications: model.DefaultNotifications(),
		CreatedAt:     now,
		UpdatedAt:     now,
		LastActive:    now,
	}

	if data.Name != nil {
		u.Name = *data.Name
	}
	if data.DisplayName != nil {
		u.DisplayName = *data.DisplayName
	} else {
		u.DisplayName = u.Name
	}
	if data.Phone != nil {
		u.Phone = *data.Phone
	}
	if data.BirthDate != nil {
		u.BirthDate = *data.BirthDate
	}
	if data.Address != nil {
		u.Address = *data.Address
	}
	if data.PostCode != nil {
		u.PostCode = *data.PostCode
	}
	if data.City != nil {
		u.City = *data.City
	}
	if data.Role != nil {
		u.Role = *data.Role
	}
	if data.Status != nil {
		u.Status = *data.Status
	}
	if data.Bio != nil {
		u.Bio = *data.Bio
	}
	if data.Education != nil {
		u.Education = *data.Education
	}
	if data.Occupation != nil {
		u.Occupation = *data.Occupation
	}
	if data.SocialLinks != nil {
		u.SocialLinks = *data.SocialLinks
	}
	if data.Notifications != nil {
		u.Notifications = *data.Notifications
	}

	if err := d.DB.Create(&u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to create user",
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created",
		"user":    u,
	})
}
