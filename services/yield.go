package services

import (
	"context"
	"fmt"

	"cropwise/predict"
)

// RemoteYieldFromDevice builds the primary yield strategy: it takes the
// features from the device's live soil snapshot, not from the form, and
// fails when the device has none.
func RemoteYieldFromDevice(remote *predict.Remote, soil SoilReader, deviceID string) predict.Func[predict.YieldInput, predict.YieldPrediction] {
	return func(ctx context.Context, in predict.YieldInput) (predict.YieldPrediction, error) {
		snap, err := soil.Get(ctx, deviceID)
		if err != nil {
			return predict.YieldPrediction{}, err
		}
		if snap == nil {
			return predict.YieldPrediction{}, fmt.Errorf("device %s: %w", deviceID, ErrNoSoilData)
		}
		in.Features = predict.Features{
			Nitrogen:    snap.NitrogenLevel,
			Phosphorus:  snap.PhosphorusLevel,
			Potassium:   snap.PotassiumLevel,
			Temperature: snap.Temperature,
			Humidity:    snap.Humidity,
			PH:          snap.SoilPH,
			Rainfall:    snap.Rainfall,
		}
		return remote.PredictYield(ctx, in)
	}
}
