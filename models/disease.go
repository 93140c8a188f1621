package models

// DiseaseDetection is the fixed result shape shown for an analysed plant image.
type DiseaseDetection struct {
	PlantName   string  `json:"plant_name"`
	Disease     string  `json:"disease"`
	Confidence  float64 `json:"confidence"`
	Severity    string  `json:"severity"`
	Treatment   string  `json:"treatment"`
	Description string  `json:"description"`
	Prevention  string  `json:"prevention"`
}

// APIError is what the client renders in its error panel.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
