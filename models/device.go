package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IotDevice is a user-owned sensor or controller registration.
type IotDevice struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID      `json:"user_id" gorm:"type:uuid;index;not null"`
	DeviceID         string         `json:"device_id" gorm:"not null"`
	DeviceName       string         `json:"device_name" gorm:"not null"`
	DeviceType       string         `json:"device_type" gorm:"default:sensor"`
	Location         *string        `json:"location"`
	IsActive         bool           `json:"is_active" gorm:"default:true"`
	LastDataReceived *time.Time     `json:"last_data_received"`
	Metadata         datatypes.JSON `json:"metadata"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Data []DeviceData `json:"-" gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE"`
}

func (d *IotDevice) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DeviceData is one append-only reading; DeviceID references IotDevice.ID.
type DeviceData struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	DeviceID  uuid.UUID      `json:"device_id" gorm:"type:uuid;index;not null"`
	DataType  string         `json:"data_type" gorm:"not null"`
	Value     float64        `json:"value"`
	Unit      *string        `json:"unit"`
	Metadata  datatypes.JSON `json:"metadata"`
	Timestamp time.Time      `json:"timestamp" gorm:"index"`
}

func (d *DeviceData) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now()
	}
	return nil
}
