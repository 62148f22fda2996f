package email

import (
	"errors"
	"net/http"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/verification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type verifyBody struct {
	Email  string `json:"email"`
	Code   string `json:"code"`
	UserID string `json:"userId"`
}

func VerifyCode(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data verifyBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	if data.Email == "" || data.Code == "" || data.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "All fields required",
		})
		return
	}

	err := d.Ledger.Verify(c.Request.Context(), data.Email, data.Code, data.UserID)
	if err != nil {
		var (
			rl      *verification.RateLimitedError
			invalid *verification.InvalidCodeError
			locked  *verification.TooManyAttemptsError
		)

		switch {
		case errors.Is(err, verification.ErrNoPending):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "No verification request found",
			})
		case errors.Is(err, verification.ErrExpired):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Code expired",
			})
		case errors.As(err, &rl):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":       false,
				"message":       "Too many attempts. Try again later.",
				"cooldownUntil": rl.CooldownUntil,
				"attemptsLeft":  0,
			})
		case errors.As(err, &locked):
			c.JSON(http.StatusBadRequest, gin.H{
				"success":       false,
				"message":       "Too many attempts. Blocked for 24 hours.",
				"cooldownUntil": locked.CooldownUntil,
				"attemptsLeft":  0,
			})
		case errors.As(err, &invalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"success":      false,
				"message":      "Invalid code",
				"attemptsLeft": invalid.AttemptsLeft,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Verification failed",
			})

			zap.L().Error("Failed to verify code", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email verified",
	})
}
