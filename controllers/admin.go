package controllers

import (
	"net/http"
	"strings"

	"cropwise/config"
	"cropwise/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleAdmin is the role allowed on /admin routes.
const RoleAdmin = "admin"

// requireAdmin answers 403 unless the signed-in user is an admin.
func (h *Handler) requireAdmin(c *gin.Context) (models.User, bool) {
	var user models.User
	userID, ok := currentUser(c)
	if !ok {
		return user, false
	}
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil || user.Role != RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return user, false
	}
	return user, true
}

// ListUsers returns every account (admin only).
func (h *Handler) ListUsers(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}
	users := []models.User{}
	if err := config.DB.Order("created_at asc").Find(&users).Error; err != nil {
		h.logger().Error("error fetching users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// PromoteToAdmin gives another account the admin role.
func (h *Handler) PromoteToAdmin(c *gin.Context) {
	admin, ok := h.requireAdmin(c)
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	n, err := SetRole(strings.ToLower(strings.TrimSpace(req.Email)), RoleAdmin)
	if err != nil {
		h.logger().Error("failed to update user role", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user role"})
		return
	}
	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	h.logger().Info("user promoted to admin", zap.String("email", req.Email), zap.String("by", admin.Email))
	c.JSON(http.StatusOK, gin.H{"message": "User promoted to admin successfully"})
}

// RunSweep runs the device sweep now instead of waiting for the schedule.
func (h *Handler) RunSweep(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}
	if h.Sweeper == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Device sweep is not configured"})
		return
	}
	rep, err := h.Sweeper.RunOnce(c.Request.Context())
	if err != nil {
		h.logger().Error("manual sweep failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run sweep"})
		return
	}
	c.JSON(http.StatusOK, rep)
}

// SetRole updates the role of the account with email and reports how many
// rows changed.
func SetRole(email, role string) (int64, error) {
	res := config.DB.Model(&models.User{}).Where("email = ?", email).Update("role", role)
	return res.RowsAffected, res.Error
}
