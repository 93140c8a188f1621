package controllers

import (
	"errors"
	"net/http"

	"cropwise/config"
	"cropwise/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileForm struct {
	FullName     *string  `json:"full_name"`
	FarmName     *string  `json:"farm_name"`
	FarmSize     *float64 `json:"farm_size"`
	Location     *string  `json:"location"`
	PhoneNumber  *string  `json:"phone_number"`
	PrimaryCrops []string `json:"primary_crops"`
}

// GetProfile returns the user's profile, or null when they have none yet.
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var profile models.Profile
	err := config.DB.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"profile": nil})
		return
	}
	if err != nil {
		h.logger().Error("error fetching profile", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"profile": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpsertProfile creates or replaces the user's profile.
func (h *Handler) UpsertProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var form profileForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile"})
		return
	}

	profile := models.Profile{
		UserID:       userID,
		FullName:     form.FullName,
		FarmName:     form.FarmName,
		FarmSize:     form.FarmSize,
		Location:     form.Location,
		PhoneNumber:  form.PhoneNumber,
		PrimaryCrops: datatypes.JSONSlice[string](form.PrimaryCrops),
	}
	err := config.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "farm_name", "farm_size", "location", "phone_number", "primary_crops", "updated_at",
		}),
	}).Create(&profile).Error
	if err != nil {
		h.logger().Error("failed to save profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	var saved models.Profile
	if err := config.DB.Where("user_id = ?", userID).First(&saved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "profile": saved})
}
