package controllers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"cropwise/config"
	"cropwise/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *testApp) addDevice(t *testing.T, token, name string) models.IotDevice {
	t.Helper()
	w := a.do(http.MethodPost, "/settings/devices", gin.H{"device_id": name, "device_name": "Field " + name}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.IotDevice](t, w)
}

func TestDeviceLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "owner@example.com")

	device := app.addDevice(t, token, "esp32-001")
	assert.Equal(t, "sensor", device.DeviceType)
	assert.True(t, device.IsActive)
	assert.Nil(t, device.LastDataReceived)

	w := app.do(http.MethodGet, "/settings/devices", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.IotDevice](t, w), 1)

	path := "/device/" + device.ID.String()
	w = app.do(http.MethodPost, path+"/data", gin.H{"data_type": "soil_moisture", "value": 0, "unit": "%"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = app.do(http.MethodPost, path+"/data", gin.H{"data_type": "temperature", "value": 24.5}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	w = app.do(http.MethodPost, path+"/data", gin.H{"value": 1}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	details := decode[struct {
		Device models.IotDevice    `json:"device"`
		Data   []models.DeviceData `json:"data"`
	}](t, w)
	assert.Len(t, details.Data, 2)
	assert.NotNil(t, details.Device.LastDataReceived)

	w = app.do(http.MethodGet, path+"/export", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Equal(t, "timestamp,data_type,value,unit", lines[0])
	assert.Len(t, lines, 3)

	w = app.do(http.MethodDelete, "/settings/devices/"+device.ID.String(), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var readings int64
	config.DB.Model(&models.DeviceData{}).Count(&readings)
	assert.Zero(t, readings, "readings are removed with the device")

	w = app.do(http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeviceDataKeepsTimestamp(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "owner@example.com")
	device := app.addDevice(t, token, "esp32-002")

	at := time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC)
	w := app.do(http.MethodPost, "/device/"+device.ID.String()+"/data",
		gin.H{"data_type": "humidity", "value": 60, "timestamp": at}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, at.Equal(decode[models.DeviceData](t, w).Timestamp))
}

func TestDevicesAreScopedToUser(t *testing.T) {
	app := newTestApp(t)
	owner := app.signUp(t, "owner@example.com")
	other := app.signUp(t, "other@example.com")
	device := app.addDevice(t, owner, "esp32-001")

	w := app.do(http.MethodGet, "/settings/devices", nil, other)
	assert.Empty(t, decode[[]models.IotDevice](t, w))

	w = app.do(http.MethodGet, "/device/"+device.ID.String(), nil, other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodDelete, "/settings/devices/"+device.ID.String(), nil, other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodPost, "/settings/devices", gin.H{"device_id": "x"}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
