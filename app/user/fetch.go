// Package user implements the profile endpoints of the API
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

func List(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var users []model.User
	if err := d.DB.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch users",
		})

		zap.L().Error("Failed to fetch users", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(users),
		"users":   users,
	})
}

func fetchOne(c *gin.Context, d *internal.Deps, column, value string) {
	requestID := c.MustGet("requestID").(string)

	var u model.User
	err := d.DB.Where(column+" = ?", value).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "User not found",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch user",
		})

		zap.L().Error("Failed to fetch user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    u,
	})
}

func FetchByEmail(c *gin.Context, d *internal.Deps) {
	fetchOne(c, d, "email", c.Param("email"))
}

func FetchByUID(c *gin.Context, d *internal.Deps) {
	fetchOne(c, d, "uid", c.Param("uid"))
}

func FetchByID(c *gin.Context, d *internal.Deps) {
	fetchOne(c, d, "id", c.Param("id"))
}

// Check reports whether an email is taken without a 404 on the miss. The
// signup form polls it
func Check(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var u model.User
	err := d.DB.Where("email = ?", c.Param("email")).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"exists":  false,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Check failed",
		})

		zap.L().Error("Failed to check user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"exists":  true,
		"user":    u,
	})
}
