package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile is one-to-one with a user and holds farm metadata.
type Profile struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID                   `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	FullName     *string                     `json:"full_name"`
	FarmName     *string                     `json:"farm_name"`
	FarmSize     *float64                    `json:"farm_size"`
	Location     *string                     `json:"location"`
	PhoneNumber  *string                     `json:"phone_number"`
	PrimaryCrops datatypes.JSONSlice[string] `json:"primary_crops"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
