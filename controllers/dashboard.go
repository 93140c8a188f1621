package controllers

import (
	"errors"
	"net/http"

	"cropwise/services"
	"cropwise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetDashboard summarises the user's ten most recent predictions.
func (h *Handler) GetDashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	recent, err := recentPredictions(userID.String(), 10)
	if err != nil {
		h.logger().Error("error fetching predictions", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{
		"predictions": recent,
		"stats":       utils.Stats(recent),
		"chart":       utils.ChartSeries(recent),
	})
}

// GetDeviceDashboard shows one device's soil, weather, current crop,
// recommendation and crop-health analysis.
func (h *Handler) GetDeviceDashboard(c *gin.Context) {
	deviceID := h.deviceID(c.Query("device_id"))
	advice, err := h.Recommender.Insights(c.Request.Context(), deviceID)
	if err != nil {
		h.recommendationError(c, deviceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"device_id":      deviceID,
		"current_crop":   advice.Soil.Crop,
		"crop_saved_at":  advice.Soil.CropSavedAt,
		"recommendation": advice,
	})
}

func (h *Handler) recommendationError(c *gin.Context, deviceID string, err error) {
	if errors.Is(err, services.ErrNoSoilData) {
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrNoSoilData.Error()})
		return
	}
	h.logger().Error("recommendation failed", zap.String("device_id", deviceID), zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load data"})
}
