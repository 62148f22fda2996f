package email

import (
	"errors"
	"net/http"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/verification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func VerificationStatus(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "No user ID provided",
		})
		return
	}

	st, err := d.Ledger.Status(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, verification.ErrNoAccount) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "User not found",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Status check failed",
		})

		zap.L().Error("Failed to check verification status", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	resp := gin.H{
		"success":      true,
		"isVerified":   st.IsVerified,
		"isPending":    st.IsPending,
		"attemptsLeft": st.AttemptsLeft,
	}
	if st.CooldownUntil != nil {
		resp["cooldownUntil"] = st.CooldownUntil
	}

	c.JSON(http.StatusOK, resp)
}
