package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"bess-analytics/internal/api/handlers"
	"bess-analytics/internal/api/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.CORS())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.ErrorHandler())

	tbxHandler := handlers.NewTbxHandler()
	revenueHandler := handlers.NewRevenueHandler()
	profileHandler := handlers.NewProfileHandler()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/tbx", tbxHandler.RunTbx)
		api.POST("/blended", tbxHandler.RunBlended)
		api.POST("/revenue", revenueHandler.RunRevenue)
		api.GET("/profiles", profileHandler.ListProfiles)
	}

	addr := fmt.Sprintf(":%s", port)
	logger.Info("starting API server", "addr", addr)
	if err := router.Run(addr); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
