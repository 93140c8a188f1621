package disease

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cropwise/models"
)

// MapResult turns the analysis service's JSON into a DiseaseDetection,
// accepting the older field names the service has used.
func MapResult(raw map[string]interface{}) (*models.DiseaseDetection, error) {
	if raw == nil || (str(raw, "plant") == "" && str(raw, "plant_name") == "") {
		return nil, &Error{Code: CodeInvalidResponse, Message: "Invalid response from backend server"}
	}

	disease := str(raw, "disease")
	severity := str(raw, "severity")
	if severity == "" {
		if disease == "Healthy" || disease == "No disease" {
			severity = "None"
		} else {
			severity = "Moderate"
		}
	}

	prevention := str(raw, "prevention")
	if prevention == "" {
		if cause := str(raw, "cause"); cause != "" {
			prevention = "Prevent by addressing: " + cause
		} else {
			prevention = "Follow general plant care guidelines"
		}
	}

	return &models.DiseaseDetection{
		PlantName:   first(str(raw, "plant_name"), str(raw, "plant"), "Unknown Plant"),
		Disease:     first(disease, "No disease detected"),
		Confidence:  number(raw["confidence"]),
		Severity:    severity,
		Treatment:   first(str(raw, "treatment"), str(raw, "remedy"), "No treatment information available"),
		Description: first(str(raw, "description"), str(raw, "details"), "No description available"),
		Prevention:  prevention,
	}, nil
}

func str(raw map[string]interface{}, key string) string {
	switch v := raw[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
	case float64:
		if v == 0 || math.IsNaN(v) {
			return ""
		}
	}
	return fmt.Sprint(raw[key])
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func number(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		// NaN and Inf parse but cannot be encoded as JSON
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	case bool:
		if n {
			return 1
		}
	}
	return 0
}
