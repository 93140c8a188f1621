package predict

import (
	"strings"

	"cropwise/models"
)

// Features is the payload every ML endpoint accepts.
type Features struct {
	Crop        string  `json:"crop,omitempty"`
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus"`
	Potassium   float64 `json:"potassium"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

// FeaturesFrom combines a soil snapshot with the current weather. Temperature
// and humidity come from the field sensor, rainfall from the weather source.
// The saved crop is passed on as the farmer spelled it.
func FeaturesFrom(soil models.SoilCondition, w models.Weather) Features {
	return Features{
		Crop:        soil.Crop,
		Nitrogen:    soil.NitrogenLevel,
		Phosphorus:  soil.PhosphorusLevel,
		Potassium:   soil.PotassiumLevel,
		Temperature: soil.Temperature,
		Humidity:    soil.Humidity,
		PH:          soil.SoilPH,
		Rainfall:    w.Rainfall,
	}
}

// WithCrop returns a copy of f for the given crop, lower-cased as the
// fertilizer and yield models expect.
func (f Features) WithCrop(crop string) Features {
	f.Crop = strings.ToLower(crop)
	return f
}
