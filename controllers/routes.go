package controllers

import (
	"net/http"

	"cropwise/middlewares"
	"cropwise/predict"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Register wires every route onto r.
func Register(r *gin.Engine, h *Handler, allowOrigins []string) {
	if h.Heuristic == nil {
		h.Heuristic = predict.NewHeuristicYield(nil)
	}

	r.Use(middlewares.RequestLogger(h.logger()), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Public routes
	r.POST("/auth/signup", h.SignUp)
	r.POST("/auth/signin", h.SignIn)

	// Protected routes using auth middleware
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware(h.Secret))
	auth.POST("/auth/signout", h.SignOut)
	auth.GET("/auth/me", h.Me)

	auth.PUT("/soil-conditions/:deviceId", h.PutSoilCondition)
	auth.GET("/soil-conditions/:deviceId", h.GetSoilCondition)
	auth.DELETE("/soil-conditions/:deviceId", h.DeleteSoilCondition)
	auth.GET("/ws/soil/:deviceId", h.SoilStream)

	auth.GET("/crop-recommendation", h.GetCropRecommendation)
	auth.POST("/crop-recommendation/save", h.SaveCrop)
	auth.GET("/dashboard1", h.GetDeviceDashboard)

	auth.POST("/disease/analyze", h.AnalyzeDisease)

	auth.POST("/predictions", h.CreatePrediction)
	auth.GET("/predictions", h.ListPredictions)
	auth.GET("/predictions/:id", h.GetPrediction)
	auth.GET("/predictions/:id/recommendations", h.ListRecommendations)
	auth.POST("/predictions/:id/recommendations", h.CreateRecommendation)
	auth.GET("/history", h.GetHistory)
	auth.GET("/dashboard", h.GetDashboard)

	auth.GET("/settings/devices", h.ListDevices)
	auth.POST("/settings/devices", h.CreateDevice)
	auth.DELETE("/settings/devices/:id", h.DeleteDevice)
	auth.GET("/device/:deviceId", h.GetDevice)
	auth.POST("/device/:deviceId/data", h.AppendDeviceData)
	auth.GET("/device/:deviceId/export", h.DownloadDeviceCSV)

	auth.GET("/profile", h.GetProfile)
	auth.PUT("/profile", h.UpsertProfile)

	auth.GET("/admin/users", h.ListUsers)
	auth.POST("/admin/promote", h.PromoteToAdmin)
	auth.POST("/admin/sweep", h.RunSweep)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
	})
}
