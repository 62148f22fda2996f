package user

import (
	"net/http"
	"time"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pointer fields so "absent" and "set to empty" can be told apart.
// ID, uid and email are not updatable through this endpoint
type updateBody struct {
	Name          *string        `json:"name"`
	Phone         *string        `json:"phone"`
	BirthDate     *string        `json:"birthDate"`
	Address       *string        `json:"address"`
	PostCode      *string        `json:"postCode"`
	City          *string        `json:"city"`
	Role          *string        `json:"role"`
	PhotoURL      *string        `json:"photoURL"`
	Status        *string        `json:"status"`
	DisplayName   *string        `json:"displayName"`
	Bio           *string        `json:"bio"`
	Education     *string        `json:"education"`
	Occupation    *string        `json:"occupation"`
	SocialLinks   *model.JSONMap `json:"socialLinks"`
	Notifications *model.JSONMap `json:"notifications"`
	PhoneVerified *bool          `json:"phoneVerified"`
}

func Update(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	uid := c.Param("uid")

	var data updateBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	now := time.Now()
	updates := map[string]any{
		"updated_at":  now,
		"last_active": now,
	}

	set := func(column string, v any) { updates[column] = v }

	if data.Name != nil {
		set("name", *data.Name)
	}
	if data.Phone != nil {
		set("phone", *data.Phone)
	}
	if data.BirthDate != nil {
		set("birth_date", *data.BirthDate)
	}
	if data.Address != nil {
		set("address", *data.Address)
	}
	if data.PostCode != nil {
		set("post_code", *data.PostCode)
	}
	if data.City != nil {
		set("city", *data.City)
	}
	if data.Role != nil {
		set("role", *data.Role)
	}
	if data.PhotoURL != nil {
		set("photo_url", *data.PhotoURL)
	}
	if data.Status != nil {
		set("status", *data.Status)
	}
	if data.DisplayName != nil {
		set("display_name", *data.DisplayName)
	}
	if data.Bio != nil {
		set("bio", *data.Bio)
	}
	if data.Education != nil {
		set("education", *data.Education)
	}
	if data.Occupation != nil {
		set("occupation", *data.Occupation)
	}
	if data.SocialLinks != nil {
		set("social_links", *data.SocialLinks)
	}
	if data.Notifications != nil {
		set("notifications", *data.Notifications)
	}
	if data.PhoneVerified != nil {
		set("phone_verified", *data.PhoneVerified)
	}

	r := d.DB.Model(model.User{}).Where("uid = ?", uid).Updates(updates)
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Update failed",
		})

		zap.L().Error("Failed to update user", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if r.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "User not found",
		})
		return
	}

	var updated model.User
	if err := d.DB.Where("uid = ?", uid).First(&updated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Update failed",
		})

		zap.L().Error("Failed to reload updated user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated",
		"user":    updated,
	})
}
