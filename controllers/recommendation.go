package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetCropRecommendation recommends crops and a fertilizer for ?device_id=.
func (h *Handler) GetCropRecommendation(c *gin.Context) {
	deviceID := h.deviceID(c.Query("device_id"))
	advice, err := h.Recommender.Recommend(c.Request.Context(), deviceID)
	if err != nil {
		h.recommendationError(c, deviceID, err)
		return
	}
	c.JSON(http.StatusOK, advice)
}

type saveCropForm struct {
	DeviceID string `json:"device_id"`
	Crop     string `json:"crop" binding:"required"`
}

// SaveCrop stores the chosen crop as the device's current crop.
func (h *Handler) SaveCrop(c *gin.Context) {
	var form saveCropForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Crop is required"})
		return
	}
	deviceID := h.deviceID(form.DeviceID)

	snap, err := h.Soil.SaveCrop(c.Request.Context(), deviceID, form.Crop)
	if err != nil {
		h.logger().Error("failed to save crop", zap.String("device_id", deviceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save crop"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Saved " + form.Crop + " as your current crop",
		"soil":    snap,
	})
}
