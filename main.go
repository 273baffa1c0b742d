package main

import (
	"github.com/ecovoyage/ecovoyage-backend/config"
	"github.com/ecovoyage/ecovoyage-backend/handlers"
	"github.com/ecovoyage/ecovoyage-backend/internal/app"
	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/ecovoyage/ecovoyage-backend/middleware"
	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.New(cfg)

	plannerHandler := handlers.NewPlannerHandler(
		application.Weather,
		application.AirQuality,
		application.LocalTime,
		application.Emissions,
		application.Routes,
		application.Hotels,
		application.Pricing,
		application.Flights,
		application.Restaurants,
		application.Itineraries,
	)
	healthHandler := handlers.NewHealthHandler(cfg.Server.Version)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())

	r.GET("/health/liveness", healthHandler.LivenessCheck)

	// Versioned routes (e.g., /v1)
	v1 := r.Group("/v1")
	{
		v1.GET("/weather", plannerHandler.GetWeather)
		v1.GET("/air-quality", plannerHandler.GetAirQuality)
		v1.GET("/time", plannerHandler.GetLocalTime)
		v1.GET("/emissions", plannerHandler.GetEmissions)
		v1.GET("/route", plannerHandler.GetRoute)
		v1.GET("/hotels", plannerHandler.GetHotels)
		v1.GET("/flights", plannerHandler.GetFlights)
		v1.GET("/restaurants", plannerHandler.GetRestaurants)
		v1.POST("/itineraries", plannerHandler.CreateItinerary)
	}

	log.Infof("Starting server on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
