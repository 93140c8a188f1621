package utils

import "cropwise/models"

// CheckAbnormality reports whether any reading of the snapshot falls outside
// the range crops tolerate.
func CheckAbnormality(snap models.SoilCondition) bool {
	return GetAbnormalType(snap) != ""
}

// GetAbnormalType names the first abnormal reading, or "" when all are in range.
func GetAbnormalType(snap models.SoilCondition) string {
	if snap.SoilPH < 4.5 || snap.SoilPH > 8.5 {
		return "Soil pH"
	}
	if snap.SoilMoisture < 5 || snap.SoilMoisture > 95 {
		return "Soil Moisture"
	}
	if snap.Temperature < 0 || snap.Temperature > 50 {
		return "Temperature"
	}
	if snap.Humidity < 10 || snap.Humidity > 100 {
		return "Humidity"
	}
	return ""
}
