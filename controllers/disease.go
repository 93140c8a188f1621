package controllers

import (
	"errors"
	"net/http"

	"cropwise/disease"
	"cropwise/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyzeDisease forwards an uploaded plant photo to the disease detector.
func (h *Handler) AnalyzeDisease(c *gin.Context) {
	file, header, err := c.Request.FormFile(disease.FormField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select an image file"})
		return
	}
	defer file.Close()

	result, err := h.Disease.Analyze(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.logger().Error("disease analysis failed", zap.String("filename", header.Filename), zap.Error(err))
		var apiErr *disease.Error
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.APIError()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": models.APIError{
			Message: err.Error(),
			Code:    disease.CodeUnknown,
		}})
		return
	}
	c.JSON(http.StatusOK, result)
}
