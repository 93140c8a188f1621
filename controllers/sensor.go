package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"cropwise/config"
	"cropwise/models"
	"cropwise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PutSoilCondition receives a sensor push and overwrites the device snapshot.
func (h *Handler) PutSoilCondition(c *gin.Context) {
	var snap models.SoilCondition
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	deviceID := c.Param("deviceId")
	saved, err := h.Soil.Put(c.Request.Context(), deviceID, snap)
	if err != nil {
		h.logger().Error("failed to store soil condition", zap.String("device_id", deviceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store soil condition"})
		return
	}

	abnormal := utils.CheckAbnormality(*saved)
	if abnormal {
		h.logger().Warn("abnormal soil reading",
			zap.String("device_id", deviceID),
			zap.String("reading", utils.GetAbnormalType(*saved)),
		)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Data received successfully", "abnormal": abnormal})
}

// GetSoilCondition returns the latest snapshot for a device.
func (h *Handler) GetSoilCondition(c *gin.Context) {
	deviceID := c.Param("deviceId")
	snap, err := h.Soil.Get(c.Request.Context(), deviceID)
	if err != nil {
		h.logger().Error("error fetching soil condition", zap.String("device_id", deviceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load data"})
		return
	}
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No soil data found for this device"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DeleteSoilCondition clears a device snapshot; live streams receive the
// no-data error.
func (h *Handler) DeleteSoilCondition(c *gin.Context) {
	deviceID := c.Param("deviceId")
	if err := h.Soil.Delete(c.Request.Context(), deviceID); err != nil {
		h.logger().Error("failed to delete soil condition", zap.String("device_id", deviceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete soil condition"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Soil condition deleted successfully"})
}

// DownloadDeviceCSV sends a device's readings as a CSV file.
func (h *Handler) DownloadDeviceCSV(c *gin.Context) {
	device, ok := h.ownedDevice(c)
	if !ok {
		return
	}

	var records []models.DeviceData
	if err := config.DB.Where("device_id = ?", device.ID).Order("timestamp desc").Find(&records).Error; err != nil {
		h.logger().Error("error fetching device data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch device data"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", device.DeviceID))
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"timestamp", "data_type", "value", "unit"})
	for _, record := range records {
		unit := ""
		if record.Unit != nil {
			unit = *record.Unit
		}
		writer.Write([]string{
			record.Timestamp.Format(time.DateTime),
			record.DataType,
			fmt.Sprintf("%.2f", record.Value),
			unit,
		})
	}
}
