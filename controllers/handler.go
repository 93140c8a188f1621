package controllers

import (
	"net/http"
	"time"

	"cropwise/disease"
	"cropwise/jobs"
	"cropwise/middlewares"
	"cropwise/predict"
	"cropwise/realtime"
	"cropwise/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler carries the services the routes need. The relational store is
// reached through config.DB.
type Handler struct {
	Secret          []byte
	TokenTTL        time.Duration
	DefaultDeviceID string

	Soil        *realtime.SoilStore
	Recommender *services.Recommender
	Remote      *predict.Remote
	Heuristic   *predict.HeuristicYield
	Disease     disease.Analyzer
	Sweeper     *jobs.Sweeper
	Log         *zap.Logger
}

func (h *Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

func (h *Handler) deviceID(requested string) string {
	if requested != "" {
		return requested
	}
	return h.DefaultDeviceID
}

// currentUser writes a 401 and returns false when the request carries no user.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

// uuidParam parses a path parameter, answering 400 when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
