// Package weather supplies the current temperature, rainfall and humidity
// for a field.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cropwise/models"
)

type Provider interface {
	Current(ctx context.Context, lat, lon float64) (models.Weather, error)
}

// Static always reports the same conditions.
type Static struct {
	Conditions models.Weather
}

// DefaultStatic is the fixed reading used when no weather API is configured.
func DefaultStatic() Static {
	return Static{Conditions: models.Weather{Temperature: 20.9, Rainfall: 0.0, Humidity: 82}}
}

func (s Static) Current(ctx context.Context, lat, lon float64) (models.Weather, error) {
	return s.Conditions, nil
}

// WeatherAPI queries weatherapi.com's current-conditions endpoint.
type WeatherAPI struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewWeatherAPI(baseURL, apiKey string, timeout time.Duration) *WeatherAPI {
	return &WeatherAPI{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

type currentResponse struct {
	Current struct {
		TempC    float64 `json:"temp_c"`
		PrecipMM float64 `json:"precip_mm"`
		Humidity float64 `json:"humidity"`
	} `json:"current"`
}

func (w *WeatherAPI) Current(ctx context.Context, lat, lon float64) (models.Weather, error) {
	q := url.Values{}
	q.Set("key", w.APIKey)
	q.Set("q", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("aqi", "no")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return models.Weather{}, fmt.Errorf("failed to create weather request: %w", err)
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return models.Weather{}, fmt.Errorf("failed to fetch weather data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Weather{}, fmt.Errorf("failed to read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.Weather{}, fmt.Errorf("weather service returned %d: %s", resp.StatusCode, string(body))
	}

	var cur currentResponse
	if err := json.Unmarshal(body, &cur); err != nil {
		return models.Weather{}, fmt.Errorf("failed to parse weather response: %w", err)
	}
	return models.Weather{
		Temperature: cur.Current.TempC,
		Rainfall:    cur.Current.PrecipMM,
		Humidity:    cur.Current.Humidity,
	}, nil
}
