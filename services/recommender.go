// Package services combines soil, weather and the prediction strategies into
// the flows the client pages drive.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cropwise/models"
	"cropwise/predict"
	"cropwise/weather"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoSoilData is returned when the device has no realtime snapshot.
var ErrNoSoilData = errors.New("No soil data found for this device")

type SoilReader interface {
	Get(ctx context.Context, deviceID string) (*models.SoilCondition, error)
}

// Coordinates locate the farm for the weather lookup.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

type Recommender struct {
	Soil    SoilReader
	Weather weather.Provider
	Farm    Coordinates
	Crops   predict.Policy[predict.Features, predict.CropRecommendation]
	Analyze predict.Func[predict.Features, json.RawMessage]
	Log     *zap.Logger
}

type CropAdvice struct {
	DeviceID   string               `json:"device_id"`
	Soil       models.SoilCondition `json:"soil"`
	Weather    models.Weather       `json:"weather"`
	Crops      []string             `json:"recommended_crops"`
	Confidence []float64            `json:"confidence"`
	Fertilizer string               `json:"recommended_fertilizer"`
	Source     predict.Source       `json:"source"`
	Degraded   bool                 `json:"degraded"`
	Analysis   json.RawMessage      `json:"analysis,omitempty"`
}

// Recommend reads the device's soil and the weather, then asks for crops and
// a fertilizer, falling back to the rule-based guess if either call fails.
func (r *Recommender) Recommend(ctx context.Context, deviceID string) (*CropAdvice, error) {
	soil, w, err := r.acquire(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	features := predict.FeaturesFrom(*soil, w)
	res, err := r.Crops.Run(ctx, features)
	if err != nil {
		return nil, fmt.Errorf("crop recommendation for %s: %w", deviceID, err)
	}

	return &CropAdvice{
		DeviceID:   deviceID,
		Soil:       *soil,
		Weather:    w,
		Crops:      res.Value.Crops,
		Confidence: res.Value.Confidence,
		Fertilizer: res.Value.Fertilizer,
		Source:     res.Source,
		Degraded:   res.Degraded,
	}, nil
}

// Insights is Recommend plus a health analysis of the crop currently growing
// on the device. A failed analysis is logged and left out.
func (r *Recommender) Insights(ctx context.Context, deviceID string) (*CropAdvice, error) {
	advice, err := r.Recommend(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if r.Analyze == nil || advice.Soil.Crop == "" {
		return advice, nil
	}

	analysis, err := r.Analyze(ctx, predict.FeaturesFrom(advice.Soil, advice.Weather))
	if err != nil {
		r.logger().Warn("crop analysis failed", zap.String("device_id", deviceID), zap.Error(err))
		return advice, nil
	}
	advice.Analysis = analysis
	return advice, nil
}

func (r *Recommender) acquire(ctx context.Context, deviceID string) (*models.SoilCondition, models.Weather, error) {
	var (
		soil *models.SoilCondition
		w    models.Weather
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := r.Soil.Get(gctx, deviceID)
		if err != nil {
			return err
		}
		if s == nil {
			return ErrNoSoilData
		}
		soil = s
		return nil
	})
	g.Go(func() error {
		var err error
		w, err = r.Weather.Current(gctx, r.Farm.Latitude, r.Farm.Longitude)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, models.Weather{}, err
	}
	return soil, w, nil
}

func (r *Recommender) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}
