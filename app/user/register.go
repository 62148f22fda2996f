package user

import (
	"errors"
	"net/http"
	"time"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/model"
	"cwt/backend-api/pkg/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type registerBody struct {
	UID           string        `json:"uid"`
	Email         string        `json:"email"`
	Name          string        `json:"name"`
	Phone         string        `json:"phone"`
	BirthDate     string        `json:"birthDate"`
	Address       string        `json:"address"`
	PostCode      string        `json:"postCode"`
	City          string        `json:"city"`
	Role          string        `json:"role"`
	PhotoURL      string        `json:"photoURL"`
	Status        string        `json:"status"`
	DisplayName   string        `json:"displayName"`
	Bio           string        `json:"bio"`
	Education     string        `json:"education"`
	Occupation    string        `json:"occupation"`
	SocialLinks   model.JSONMap `json:"socialLinks"`
	Notifications model.JSONMap `json:"notifications"`
}

func Register(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	if data.Email == "" || data.Name == "" || data.UID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Email, name, and UID required",
		})
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	// Registration is idempotent: an existing uid or email hands back
	// the stored profile instead of failing
	var existing model.User
	err := d.DB.
		Where("email = ? OR uid = ?", data.Email, data.UID).
		First(&existing).
		Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "User exists",
			"user":    existing,
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Registration failed",
		})

		zap.L().Error("Failed to check if user is registered", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	now := time.Now()

	u := model.User{
		ID:            gonanoid.Must(16),
		UID:           data.UID,
		Email:         data.Email,
		Name:          data.Name,
		Phone:         data.Phone,
		BirthDate:     data.BirthDate,
		Address:       data.Address,
		PostCode:      data.PostCode,
		City:          data.City,
		Role:          data.Role,
		PhotoURL:      data.PhotoURL,
		Status:        data.Status,
		DisplayName:   data.DisplayName,
		Bio:           data.Bio,
		Education:     data.Education,
		Occupation:    data.Occupation,
		SocialLinks:   data.SocialLinks,
		Notifications: data.Notifications,
		LastLogin:     now,
		LastActive:    now,
	}

	if u.Role == "" {
		u.Role = "student"
	}
	if u.Status == "" {
		u.Status = "active"
	}
	if u.DisplayName == "" {
		u.DisplayName = data.Name
	}
	if u.SocialLinks == nil {
		u.SocialLinks = model.DefaultSocialLinks()
	}
	if u.Notifications == nil {
		u.Notifications = model.DefaultNotifications()
	}

	if err := d.DB.Create(&u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Registration failed",
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered",
		"user":    u,
	})
}
