package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cropwise/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SoilStore is the realtime store: soil_conditions/{deviceId}.
type SoilStore struct {
	db     *gorm.DB
	broker Broker
	log    *zap.Logger
	now    func() time.Time
}

func NewSoilStore(db *gorm.DB, broker Broker, log *zap.Logger) *SoilStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SoilStore{db: db, broker: broker, log: log, now: time.Now}
}

// Path returns the realtime path a device's snapshot lives under.
func Path(deviceID string) string {
	return "soil_conditions/" + deviceID
}

// Get returns the current snapshot, or nil when the device has none.
func (s *SoilStore) Get(ctx context.Context, deviceID string) (*models.SoilCondition, error) {
	var snap models.SoilCondition
	err := s.db.WithContext(ctx).First(&snap, "device_id = ?", deviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", Path(deviceID), err)
	}
	return &snap, nil
}

// Put overwrites the device's snapshot and notifies listeners.
func (s *SoilStore) Put(ctx context.Context, deviceID string, snap models.SoilCondition) (*models.SoilCondition, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, errors.New("device id is required")
	}
	snap.DeviceID = deviceID
	if snap.LastUpdated.IsZero() {
		snap.LastUpdated = s.now()
	}
	// sensors do not know the crop; keep the one the farmer saved
	if snap.Crop == "" {
		prev, err := s.Get(ctx, deviceID)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			snap.Crop, snap.CropSavedAt = prev.Crop, prev.CropSavedAt
		}
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&snap).Error; err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", Path(deviceID), err)
	}
	s.broker.Publish(deviceID, &snap)
	return &snap, nil
}

// SaveCrop records the crop the farmer chose for the device, leaving the
// sensor readings untouched.
func (s *SoilStore) SaveCrop(ctx context.Context, deviceID, crop string) (*models.SoilCondition, error) {
	if strings.TrimSpace(crop) == "" {
		return nil, errors.New("crop is required")
	}
	now := s.now()
	db := s.db.WithContext(ctx)
	res := db.Model(&models.SoilCondition{}).
		Where("device_id = ?", deviceID).
		Updates(map[string]interface{}{"crop": crop, "crop_saved_at": now, "last_updated": now})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to save crop on %s: %w", Path(deviceID), res.Error)
	}
	if res.RowsAffected == 0 {
		snap := models.SoilCondition{DeviceID: deviceID, Crop: crop, CropSavedAt: &now, LastUpdated: now}
		if err := db.Create(&snap).Error; err != nil {
			return nil, fmt.Errorf("failed to save crop on %s: %w", Path(deviceID), err)
		}
	}

	snap, err := s.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	s.broker.Publish(deviceID, snap)
	return snap, nil
}

// Delete removes the snapshot; listeners receive nil.
func (s *SoilStore) Delete(ctx context.Context, deviceID string) error {
	if err := s.db.WithContext(ctx).Delete(&models.SoilCondition{}, "device_id = ?", deviceID).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", Path(deviceID), err)
	}
	s.broker.Publish(deviceID, nil)
	return nil
}

// Subscribe invokes callback with the current snapshot (nil if absent) and
// again after every change until the subscription is closed or ctx ends.
func (s *SoilStore) Subscribe(ctx context.Context, deviceID string, callback func(*models.SoilCondition)) *Subscription {
	sub := newSubscription(deviceID, s.broker)

	initial, err := s.Get(ctx, deviceID)
	if err != nil {
		s.log.Error("initial soil read failed", zap.String("path", Path(deviceID)), zap.Error(err))
	}

	go sub.run(ctx, initial, callback)
	return sub
}
