package models

import "time"

// SoilCondition is the latest sensor snapshot for a device. It is
// overwritten in place; no history is kept.
type SoilCondition struct {
	DeviceID        string     `json:"device_id" gorm:"primaryKey"`
	Humidity        float64    `json:"humidity"`
	Temperature     float64    `json:"temperature"`
	SoilPH          float64    `json:"soil_ph"`
	SoilMoisture    float64    `json:"soil_moisture"`
	NitrogenLevel   float64    `json:"nitrogen_level"`
	PhosphorusLevel float64    `json:"phosphorus_level"`
	PotassiumLevel  float64    `json:"potassium_level"`
	Rainfall        float64    `json:"rainfall"`
	Crop            string     `json:"crop"`
	CropSavedAt     *time.Time `json:"crop_saved_at,omitempty"`
	Location        Location   `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	LastUpdated     time.Time  `json:"last_updated"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
