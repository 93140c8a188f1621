package models

// Weather is the current weather triple the recommendation flow needs.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Rainfall    float64 `json:"rainfall"`
	Humidity    float64 `json:"humidity"`
}
