// Package email exposes the verification ledger over HTTP: code
// issuance, code checks and the status endpoint the dashboard polls
package email

import (
	"errors"
	"fmt"
	"net/http"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/verification"
	"cwt/backend-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type sendBody struct {
	Email    string `json:"email"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

func SendVerification(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data sendBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	if data.Email == "" || data.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Email and user ID required",
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

	alreadyVerified, err := d.Ledger.Issue(c.Request.Context(), data.Email, data.UserID, data.UserName)
	if err != nil {
		var rl *verification.RateLimitedError

		switch {
		case errors.Is(err, verification.ErrNoAccount):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "User not found",
			})
		case errors.As(err, &rl):
			plural := ""
			if rl.HoursLeft > 1 {
				plural = "s"
			}

			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":       false,
				"message":       fmt.Sprintf("Too many attempts. Try in %d hour%s", rl.HoursLeft, plural),
				"cooldownUntil": rl.CooldownUntil,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to send code",
			})

			zap.L().Error("Failed to issue verification code", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	if alreadyVerified {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "Email already verified",
			"isVerified": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Verification code sent",
	})
}
