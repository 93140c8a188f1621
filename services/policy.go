package services

import (
	"cropwise/predict"

	"go.uber.org/zap"
)

// YieldPolicy predicts remotely from the device's live soil snapshot and
// falls back to the heuristic. A nil remote leaves the heuristic alone.
func YieldPolicy(remote *predict.Remote, heuristic *predict.HeuristicYield, soil SoilReader, deviceID string, log *zap.Logger) predict.Policy[predict.YieldInput, predict.YieldPrediction] {
	p := predict.Policy[predict.YieldInput, predict.YieldPrediction]{
		Name:     "yield",
		Fallback: heuristic.Predict,
		Log:      log,
	}
	if remote != nil && soil != nil {
		p.Primary = RemoteYieldFromDevice(remote, soil, deviceID)
	}
	return p
}

// CropPolicy asks the ML service for crops and fertilizer and falls back to
// the threshold rules.
func CropPolicy(remote *predict.Remote, log *zap.Logger) predict.Policy[predict.Features, predict.CropRecommendation] {
	p := predict.Policy[predict.Features, predict.CropRecommendation]{
		Name:     "crop",
		Fallback: predict.RuleCrops,
		Log:      log,
	}
	if remote != nil {
		p.Primary = remote.RecommendCrops
	}
	return p
}
