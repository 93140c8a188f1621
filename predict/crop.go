package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// UndeterminedCrop is what the rule-based fallback reports when no rule matches.
const UndeterminedCrop = "Unable to determine optimal crop"

// FallbackCropConfidence is attached to every rule-based crop guess.
const FallbackCropConfidence = 0.6

type CropRecommendation struct {
	Crops      []string  `json:"recommended_crops"`
	Confidence []float64 `json:"confidence"`
	Fertilizer string    `json:"recommended_fertilizer,omitempty"`
}

// Top returns the first recommended crop, or "" when there is none.
func (c CropRecommendation) Top() string {
	if len(c.Crops) == 0 {
		return ""
	}
	return c.Crops[0]
}

var errNoCrops = errors.New("predict-crop returned no crops")

// PredictCrops calls predict-crop.
func (r *Remote) PredictCrops(ctx context.Context, f Features) (CropRecommendation, error) {
	var out CropRecommendation
	if err := r.post(ctx, "predict-crop", f, &out); err != nil {
		return CropRecommendation{}, err
	}
	if len(out.Crops) == 0 {
		return CropRecommendation{}, errNoCrops
	}
	return out, nil
}

// RecommendFertilizer calls recommend-fertilizer for crop.
func (r *Remote) RecommendFertilizer(ctx context.Context, crop string, f Features) (string, error) {
	var out struct {
		Fertilizer string `json:"recommended_fertilizer"`
	}
	if err := r.post(ctx, "recommend-fertilizer", f.WithCrop(crop), &out); err != nil {
		return "", err
	}
	return out.Fertilizer, nil
}

// RecommendCrops asks for crops and then for a fertilizer suited to the top
// crop. A failure of either call fails the whole recommendation.
func (r *Remote) RecommendCrops(ctx context.Context, f Features) (CropRecommendation, error) {
	rec, err := r.PredictCrops(ctx, f)
	if err != nil {
		return CropRecommendation{}, err
	}
	fert, err := r.RecommendFertilizer(ctx, rec.Top(), f)
	if err != nil {
		return CropRecommendation{}, fmt.Errorf("fertilizer: %w", err)
	}
	rec.Fertilizer = fert
	return rec, nil
}

// AnalyzeCrop calls analyze-crop for the crop currently in the field. The
// service's answer is passed through untouched.
func (r *Remote) AnalyzeCrop(ctx context.Context, f Features) (json.RawMessage, error) {
	if f.Crop == "" {
		return nil, errors.New("no crop to analyze")
	}
	var out json.RawMessage
	if err := r.post(ctx, "analyze-crop", f, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RuleCrops is the local stand-in for predict-crop.
func RuleCrops(ctx context.Context, f Features) (CropRecommendation, error) {
	return CropRecommendation{
		Crops:      []string{GuessCrop(f)},
		Confidence: []float64{FallbackCropConfidence},
	}, nil
}

// GuessCrop applies the threshold rules for rice and wheat.
func GuessCrop(f Features) string {
	switch {
	case f.PH >= 6.0 && f.PH <= 7.0 && f.Nitrogen >= 40 && f.Temperature >= 20:
		return "Rice"
	case f.PH >= 6.5 && f.PH <= 7.5 && f.Phosphorus >= 30:
		return "Wheat"
	default:
		return UndeterminedCrop
	}
}
