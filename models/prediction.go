package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CropPrediction is created once by the prediction form and never updated.
type CropPrediction struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID      `json:"user_id" gorm:"type:uuid;index;not null"`
	CropType         string         `json:"crop_type" gorm:"not null"`
	FieldArea        float64        `json:"field_area" gorm:"not null"`
	SoilPH           *float64       `json:"soil_ph"`
	SoilMoisture     *float64       `json:"soil_moisture"`
	NitrogenLevel    *float64       `json:"nitrogen_level"`
	PhosphorusLevel  *float64       `json:"phosphorus_level"`
	PotassiumLevel   *float64       `json:"potassium_level"`
	Temperature      *float64       `json:"temperature"`
	Rainfall         *float64       `json:"rainfall"`
	Humidity         *float64       `json:"humidity"`
	IrrigationMethod *string        `json:"irrigation_method"`
	FertilizerUsed   *string        `json:"fertilizer_used"`
	PredictedYield   float64        `json:"predicted_yield"`
	ConfidenceScore  float64        `json:"confidence_score"`
	Recommendations  datatypes.JSON `json:"recommendations"`
	PredictionSource string         `json:"prediction_source"`
	Degraded         bool           `json:"degraded"`
	CreatedAt        time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Advice []Recommendation `json:"-" gorm:"foreignKey:PredictionID;constraint:OnDelete:CASCADE"`
}

func (p *CropPrediction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Recommendation is an advisory row attached to a prediction.
type Recommendation struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PredictionID       uuid.UUID `json:"prediction_id" gorm:"type:uuid;index;not null"`
	Category           string    `json:"category" gorm:"not null"`
	Priority           string    `json:"priority" gorm:"default:medium"`
	Title              string    `json:"title" gorm:"not null"`
	Description        string    `json:"description" gorm:"not null"`
	ExpectedImpact     *string   `json:"expected_impact"`
	ImplementationCost *float64  `json:"implementation_cost"`
	CreatedAt          time.Time `json:"created_at"`
}

func (r *Recommendation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ConfidenceBadge buckets a confidence score the way the client labels it.
func ConfidenceBadge(score float64) string {
	switch {
	case score >= 0.8:
		return "High"
	case score >= 0.6:
		return "Medium"
	default:
		return "Low"
	}
}
