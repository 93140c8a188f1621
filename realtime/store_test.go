package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cropwise/config"
	"cropwise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestStore(t *testing.T) (*SoilStore, *MessageBroker) {
	t.Helper()
	broker := NewMessageBroker(nil)
	return NewSoilStore(newTestDB(t), broker, nil), broker
}

func reading() models.SoilCondition {
	return models.SoilCondition{
		Humidity:        65,
		Temperature:     24,
		SoilPH:          6.5,
		SoilMoisture:    40,
		NitrogenLevel:   50,
		PhosphorusLevel: 35,
		PotassiumLevel:  40,
		Location:        models.Location{Latitude: 3.1, Longitude: 101.6},
	}
}

// next waits for one callback value.
func next(t *testing.T, ch <-chan *models.SoilCondition) *models.SoilCondition {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestPath(t *testing.T) {
	assert.Equal(t, "soil_conditions/Device_0001", Path("Device_0001"))
}

func TestStoreGetAbsent(t *testing.T) {
	s, _ := newTestStore(t)
	snap, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestStorePutOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "dev", reading())
	require.NoError(t, err)

	second := reading()
	second.SoilPH = 7.1
	_, err = s.Put(ctx, "dev", second)
	require.NoError(t, err)

	snap, err := s.Get(ctx, "dev")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 7.1, snap.SoilPH)
	assert.Equal(t, 101.6, snap.Location.Longitude)
	assert.False(t, snap.LastUpdated.IsZero())

	var count int64
	s.db.Model(&models.SoilCondition{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStorePutRequiresDeviceID(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Put(context.Background(), " ", reading())
	assert.Error(t, err)
}

func TestStoreSaveCropKeepsReadings(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "dev", reading())
	require.NoError(t, err)

	snap, err := s.SaveCrop(ctx, "dev", "Rice")
	require.NoError(t, err)
	assert.Equal(t, "Rice", snap.Crop)
	assert.NotNil(t, snap.CropSavedAt)
	assert.Equal(t, 6.5, snap.SoilPH)

	// a later sensor push without a crop keeps the saved one
	later := reading()
	later.SoilMoisture = 55
	_, err = s.Put(ctx, "dev", later)
	require.NoError(t, err)

	snap, err = s.Get(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, "Rice", snap.Crop)
	assert.Equal(t, 55.0, snap.SoilMoisture)
}

func TestStoreSaveCropCreatesRecord(t *testing.T) {
	s, _ := newTestStore(t)

	snap, err := s.SaveCrop(context.Background(), "new", "Wheat")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "Wheat", snap.Crop)

	_, err = s.SaveCrop(context.Background(), "new", "")
	assert.Error(t, err)
}

func TestSubscribeDeliversInitialThenUpdates(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	got := make(chan *models.SoilCondition, 4)
	sub := s.Subscribe(ctx, "dev", func(snap *models.SoilCondition) { got <- snap })
	defer sub.Close()

	assert.Nil(t, next(t, got), "absent record is delivered as nil")

	_, err := s.Put(ctx, "dev", reading())
	require.NoError(t, err)
	snap := next(t, got)
	require.NotNil(t, snap)
	assert.Equal(t, 6.5, snap.SoilPH)

	require.NoError(t, s.Delete(ctx, "dev"))
	assert.Nil(t, next(t, got))
}

func TestSubscribeInitialValue(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Put(ctx, "dev", reading())
	require.NoError(t, err)

	got := make(chan *models.SoilCondition, 1)
	sub := s.Subscribe(ctx, "dev", func(snap *models.SoilCondition) { got <- snap })
	defer sub.Close()

	snap := next(t, got)
	require.NotNil(t, snap)
	assert.Equal(t, "dev", snap.DeviceID)
	assert.Equal(t, "dev", sub.DeviceID())
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	s, broker := newTestStore(t)

	sub := s.Subscribe(context.Background(), "dev", func(*models.SoilCondition) {})
	sub.Close()
	sub.Close()

	<-sub.Done()
	assert.Zero(t, broker.Subscribers("dev"))
}

func TestSubscriptionDetachesOnCancel(t *testing.T) {
	s, broker := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub := s.Subscribe(ctx, "dev", func(*models.SoilCondition) {})
	cancel()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop after cancel")
	}
	assert.Zero(t, broker.Subscribers("dev"))
	sub.Close()
}

func TestSubscriptionCloseFromCallback(t *testing.T) {
	s, broker := newTestStore(t)

	var sub *Subscription
	ready := make(chan struct{})
	sub = s.Subscribe(context.Background(), "dev", func(*models.SoilCondition) {
		<-ready
		sub.Close()
	})
	close(ready)

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop after closing from its callback")
	}
	assert.Zero(t, broker.Subscribers("dev"))
}

func TestSubscriptionCloseWaitsForRunningCallback(t *testing.T) {
	s, broker := newTestStore(t)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		seen    []float64
		running atomic.Bool
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	sub := s.Subscribe(ctx, "dev", func(snap *models.SoilCondition) {
		if snap == nil {
			return
		}
		running.Store(true)
		defer running.Store(false)
		mu.Lock()
		seen = append(seen, snap.SoilPH)
		mu.Unlock()
		if snap.SoilPH == 1 {
			close(entered)
			<-release
		}
	})

	first := reading()
	first.SoilPH = 1
	_, err := s.Put(ctx, "dev", first)
	require.NoError(t, err)
	<-entered

	// published while the callback is still busy with the first reading
	second := reading()
	second.SoilPH = 2
	_, err = s.Put(ctx, "dev", second)
	require.NoError(t, err)

	closed := make(chan struct{})
	go func() {
		sub.Close()
		close(closed)
	}()

	assert.Eventually(t, func() bool { return broker.Subscribers("dev") == 0 }, 2*time.Second, 5*time.Millisecond)
	select {
	case <-closed:
		t.Fatal("Close returned while the callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after the callback finished")
	}

	assert.False(t, running.Load())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []float64{1}, seen, "nothing is delivered once Close has returned")
}
