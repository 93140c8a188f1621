package utils

import (
	"sort"
	"strconv"
	"strings"

	"cropwise/models"
)

// Sort orders accepted by FilterAndSort.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortYieldHigh  = "yield-high"
	SortYieldLow   = "yield-low"
	SortConfidence = "confidence"
)

// HistoryQuery mirrors the history view's search box, crop filter and sort menu.
type HistoryQuery struct {
	Search string `form:"search"`
	Crop   string `form:"crop"`
	Sort   string `form:"sort"`
}

// FilterAndSort returns a new slice holding the predictions whose crop type
// contains Search (case-insensitive) and equals Crop (unless Crop is empty or
// "all"), ordered by Sort. Unknown sort keys keep the input order.
func FilterAndSort(predictions []models.CropPrediction, q HistoryQuery) []models.CropPrediction {
	search := strings.ToLower(q.Search)
	out := make([]models.CropPrediction, 0, len(predictions))
	for _, p := range predictions {
		if !strings.Contains(strings.ToLower(p.CropType), search) {
			continue
		}
		if q.Crop != "" && q.Crop != "all" && p.CropType != q.Crop {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case "", SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case SortYieldHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PredictedYield > out[j].PredictedYield })
	case SortYieldLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PredictedYield < out[j].PredictedYield })
	case SortConfidence:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ConfidenceScore > out[j].ConfidenceScore })
	}
	return out
}

// UniqueCrops lists crop types in first-seen order.
func UniqueCrops(predictions []models.CropPrediction) []string {
	seen := make(map[string]bool)
	var crops []string
	for _, p := range predictions {
		if !seen[p.CropType] {
			seen[p.CropType] = true
			crops = append(crops, p.CropType)
		}
	}
	return crops
}

type PredictionStats struct {
	Total         int     `json:"total_predictions"`
	AvgYield      float64 `json:"avg_yield"`
	AvgConfidence float64 `json:"avg_confidence"`
}

func Stats(predictions []models.CropPrediction) PredictionStats {
	st := PredictionStats{Total: len(predictions)}
	if st.Total == 0 {
		return st
	}
	for _, p := range predictions {
		st.AvgYield += p.PredictedYield
		st.AvgConfidence += p.ConfidenceScore
	}
	st.AvgYield /= float64(st.Total)
	st.AvgConfidence /= float64(st.Total)
	return st
}

type ChartPoint struct {
	Name       string  `json:"name"`
	Yield      float64 `json:"yield"`
	Confidence float64 `json:"confidence"`
}

// ChartSeries takes up to seven of the newest-first predictions and returns
// them oldest first, confidence as a percentage.
func ChartSeries(newestFirst []models.CropPrediction) []ChartPoint {
	n := len(newestFirst)
	if n > 7 {
		n = 7
	}
	points := make([]ChartPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		p := newestFirst[i]
		points = append(points, ChartPoint{
			Name:       "Prediction " + strconv.Itoa(len(points)+1),
			Yield:      p.PredictedYield,
			Confidence: p.ConfidenceScore * 100,
		})
	}
	return points
}
