package controllers

import (
	"errors"
	"net/http"
	"time"

	"cropwise/config"
	"cropwise/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type deviceForm struct {
	DeviceID   string         `json:"device_id" binding:"required"`
	DeviceName string         `json:"device_name" binding:"required"`
	DeviceType string         `json:"device_type"`
	Location   *string        `json:"location"`
	Metadata   datatypes.JSON `json:"metadata"`
}

// ListDevices returns the user's registered devices.
func (h *Handler) ListDevices(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	devices := []models.IotDevice{}
	if err := config.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&devices).Error; err != nil {
		h.logger().Error("error fetching devices", zap.Error(err))
		devices = []models.IotDevice{}
	}
	c.JSON(http.StatusOK, devices)
}

// CreateDevice registers a device for the user.
func (h *Handler) CreateDevice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var form deviceForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Device id and name are required"})
		return
	}

	device := models.IotDevice{
		UserID:     userID,
		DeviceID:   form.DeviceID,
		DeviceName: form.DeviceName,
		DeviceType: form.DeviceType,
		Location:   form.Location,
		IsActive:   true,
		Metadata:   form.Metadata,
	}
	if device.DeviceType == "" {
		device.DeviceType = "sensor"
	}
	if err := config.DB.Create(&device).Error; err != nil {
		h.logger().Error("failed to add device", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add device"})
		return
	}
	c.JSON(http.StatusCreated, device)
}

// DeleteDevice removes one of the user's devices and its readings.
func (h *Handler) DeleteDevice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.IotDevice{})
	if result.Error != nil {
		h.logger().Error("failed to remove device", zap.Error(result.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove device"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device removed successfully"})
}

// GetDevice returns one device with its 20 most recent readings.
func (h *Handler) GetDevice(c *gin.Context) {
	device, ok := h.ownedDevice(c)
	if !ok {
		return
	}

	data := []models.DeviceData{}
	if err := config.DB.Where("device_id = ?", device.ID).Order("timestamp desc").Limit(20).Find(&data).Error; err != nil {
		h.logger().Error("error fetching device data", zap.Error(err))
		data = []models.DeviceData{}
	}
	c.JSON(http.StatusOK, gin.H{"device": device, "data": data})
}

type deviceDataForm struct {
	DataType  string         `json:"data_type" binding:"required"`
	Value     *float64       `json:"value" binding:"required"`
	Unit      *string        `json:"unit"`
	Metadata  datatypes.JSON `json:"metadata"`
	Timestamp *time.Time     `json:"timestamp"`
}

// AppendDeviceData stores a reading and marks the device as alive.
func (h *Handler) AppendDeviceData(c *gin.Context) {
	device, ok := h.ownedDevice(c)
	if !ok {
		return
	}
	var form deviceDataForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data type and value are required"})
		return
	}

	now := time.Now()
	reading := models.DeviceData{
		DeviceID: device.ID,
		DataType: form.DataType,
		Value:    *form.Value,
		Unit:     form.Unit,
		Metadata: form.Metadata,
	}
	if form.Timestamp != nil {
		reading.Timestamp = *form.Timestamp
	} else {
		reading.Timestamp = now
	}

	if err := config.DB.Create(&reading).Error; err != nil {
		h.logger().Error("failed to store reading", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store reading"})
		return
	}
	if err := config.DB.Model(&device).Updates(map[string]interface{}{
		"last_data_received": now,
		"is_active":          true,
	}).Error; err != nil {
		h.logger().Warn("failed to update device last seen", zap.Error(err))
	}
	c.JSON(http.StatusCreated, reading)
}

func (h *Handler) ownedDevice(c *gin.Context) (models.IotDevice, bool) {
	var device models.IotDevice
	userID, ok := currentUser(c)
	if !ok {
		return device, false
	}
	id, ok := uuidParam(c, "deviceId")
	if !ok {
		return device, false
	}

	err := config.DB.Where("id = ? AND user_id = ?", id, userID).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Failed to fetch device details", "redirect": DashboardRoute})
		return device, false
	}
	if err != nil {
		h.logger().Error("failed to fetch device", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch device details"})
		return device, false
	}
	return device, true
}
