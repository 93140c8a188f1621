package controllers

import (
	"net/http"

	"cropwise/models"
	"cropwise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetHistory returns the user's predictions filtered and sorted per
// ?search=&crop=&sort=, with stats over the whole history.
func (h *Handler) GetHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var q utils.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}

	all, err := recentPredictions(userID.String(), 0)
	if err != nil {
		h.logger().Error("error fetching predictions", zap.Error(err))
	}

	uniqueCrops := utils.UniqueCrops(all)
	if uniqueCrops == nil {
		uniqueCrops = []string{}
	}
	filtered := utils.FilterAndSort(all, q)
	entries := make([]historyEntry, 0, len(filtered))
	for _, p := range filtered {
		entries = append(entries, historyEntry{CropPrediction: p, ConfidenceBadge: models.ConfidenceBadge(p.ConfidenceScore)})
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions":  entries,
		"unique_crops": uniqueCrops,
		"stats":        utils.Stats(all),
	})
}

type historyEntry struct {
	models.CropPrediction
	ConfidenceBadge string `json:"confidence_badge"`
}
