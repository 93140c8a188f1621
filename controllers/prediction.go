package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cropwise/config"
	"cropwise/models"
	"cropwise/predict"
	"cropwise/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type predictionForm struct {
	CropType         string   `json:"crop_type" binding:"required"`
	FieldArea        float64  `json:"field_area" binding:"required,gt=0"`
	SoilPH           *float64 `json:"soil_ph"`
	SoilMoisture     *float64 `json:"soil_moisture"`
	NitrogenLevel    *float64 `json:"nitrogen_level"`
	PhosphorusLevel  *float64 `json:"phosphorus_level"`
	PotassiumLevel   *float64 `json:"potassium_level"`
	Temperature      *float64 `json:"temperature"`
	Rainfall         *float64 `json:"rainfall"`
	Humidity         *float64 `json:"humidity"`
	IrrigationMethod *string  `json:"irrigation_method"`
	FertilizerUsed   *string  `json:"fertilizer_used"`
	DeviceID         string   `json:"device_id"`
}

func (f predictionForm) features() predict.Features {
	v := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	return predict.Features{
		Nitrogen:    v(f.NitrogenLevel),
		Phosphorus:  v(f.PhosphorusLevel),
		Potassium:   v(f.PotassiumLevel),
		Temperature: v(f.Temperature),
		Humidity:    v(f.Humidity),
		PH:          v(f.SoilPH),
		Rainfall:    v(f.Rainfall),
	}
}

// ResultRoute is where the client shows a stored prediction.
func ResultRoute(p models.CropPrediction) string {
	return "/prediction-result/" + p.ID.String()
}

// CreatePrediction predicts the yield for the submitted field and stores
// exactly one prediction row.
func (h *Handler) CreatePrediction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var form predictionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Crop type and a positive field area are required"})
		return
	}

	var soil services.SoilReader
	if h.Soil != nil {
		soil = h.Soil
	}
	policy := services.YieldPolicy(h.Remote, h.Heuristic, soil, h.deviceID(form.DeviceID), h.logger())
	res, err := policy.Run(c.Request.Context(), predict.YieldInput{
		CropType:  form.CropType,
		FieldArea: form.FieldArea,
		Features:  form.features(),
	})
	if err != nil {
		h.logger().Error("yield prediction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate prediction"})
		return
	}

	recs, err := json.Marshal(res.Value.Recommendations)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate prediction"})
		return
	}

	prediction := models.CropPrediction{
		UserID:           userID,
		CropType:         form.CropType,
		FieldArea:        form.FieldArea,
		SoilPH:           form.SoilPH,
		SoilMoisture:     form.SoilMoisture,
		NitrogenLevel:    form.NitrogenLevel,
		PhosphorusLevel:  form.PhosphorusLevel,
		PotassiumLevel:   form.PotassiumLevel,
		Temperature:      form.Temperature,
		Rainfall:         form.Rainfall,
		Humidity:         form.Humidity,
		IrrigationMethod: form.IrrigationMethod,
		FertilizerUsed:   form.FertilizerUsed,
		PredictedYield:   res.Value.PredictedYield,
		ConfidenceScore:  res.Value.ConfidenceScore,
		Recommendations:  datatypes.JSON(recs),
		PredictionSource: string(res.Source),
		Degraded:         res.Degraded,
	}
	if err := config.DB.Create(&prediction).Error; err != nil {
		h.logger().Error("failed to store prediction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save prediction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         prediction.ID,
		"redirect":   ResultRoute(prediction),
		"message":    "Predicted yield: " + strconv.FormatFloat(prediction.PredictedYield, 'f', -1, 64) + " kg/ha",
		"prediction": prediction,
	})
}

// GetPrediction returns one of the user's predictions with its advisory rows.
func (h *Handler) GetPrediction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var prediction models.CropPrediction
	err := config.DB.Preload("Advice", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).Where("id = ? AND user_id = ?", id, userID).First(&prediction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prediction not found"})
		return
	}
	if err != nil {
		h.logger().Error("failed to fetch prediction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prediction"})
		return
	}

	advice := prediction.Advice
	if advice == nil {
		advice = []models.Recommendation{}
	}
	c.JSON(http.StatusOK, gin.H{
		"prediction":       prediction,
		"recommendations":  advice,
		"confidence_badge": models.ConfidenceBadge(prediction.ConfidenceScore),
	})
}

// ListPredictions returns the newest predictions, ?limit= of them (default 10).
func (h *Handler) ListPredictions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	predictions, err := recentPredictions(userID.String(), limit)
	if err != nil {
		h.logger().Error("failed to fetch predictions", zap.Error(err))
		predictions = []models.CropPrediction{}
	}
	c.JSON(http.StatusOK, predictions)
}

// recentPredictions lists the user's predictions newest first; limit <= 0
// means all of them.
func recentPredictions(userID string, limit int) ([]models.CropPrediction, error) {
	predictions := []models.CropPrediction{}
	q := config.DB.Where("user_id = ?", userID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&predictions).Error; err != nil {
		return []models.CropPrediction{}, err
	}
	return predictions, nil
}

type recommendationForm struct {
	Category           string   `json:"category" binding:"required"`
	Priority           string   `json:"priority"`
	Title              string   `json:"title" binding:"required"`
	Description        string   `json:"description" binding:"required"`
	ExpectedImpact     *string  `json:"expected_impact"`
	ImplementationCost *float64 `json:"implementation_cost"`
}

// ListRecommendations returns the advisory rows of one of the user's predictions.
func (h *Handler) ListRecommendations(c *gin.Context) {
	prediction, ok := h.ownedPrediction(c)
	if !ok {
		return
	}
	var recs []models.Recommendation
	if err := config.DB.Where("prediction_id = ?", prediction.ID).Order("created_at asc").Find(&recs).Error; err != nil {
		h.logger().Error("failed to fetch recommendations", zap.Error(err))
		recs = nil
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	c.JSON(http.StatusOK, recs)
}

// CreateRecommendation attaches an advisory row to a prediction.
func (h *Handler) CreateRecommendation(c *gin.Context) {
	prediction, ok := h.ownedPrediction(c)
	if !ok {
		return
	}
	var form recommendationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category, title and description are required"})
		return
	}

	rec := models.Recommendation{
		PredictionID:       prediction.ID,
		Category:           form.Category,
		Priority:           form.Priority,
		Title:              form.Title,
		Description:        form.Description,
		ExpectedImpact:     form.ExpectedImpact,
		ImplementationCost: form.ImplementationCost,
	}
	if rec.Priority == "" {
		rec.Priority = "medium"
	}
	if err := config.DB.Create(&rec).Error; err != nil {
		h.logger().Error("failed to store recommendation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recommendation"})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ownedPrediction(c *gin.Context) (models.CropPrediction, bool) {
	var prediction models.CropPrediction
	userID, ok := currentUser(c)
	if !ok {
		return prediction, false
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return prediction, false
	}
	if err := config.DB.Where("id = ? AND user_id = ?", id, userID).First(&prediction).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prediction not found"})
		return prediction, false
	}
	return prediction, true
}
