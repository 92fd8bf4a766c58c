package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/services"
)

type WeatherHandler struct {
  weatherService services.WeatherService
}

func NewWeatherHandler(weatherService services.WeatherService) *WeatherHandler {
  return &WeatherHandler{weatherService: weatherService}
}

func (wh *WeatherHandler) Get(c *gin.Context) {
  zip := c.Query("zip")
  if zip == "" {
    RespondError(c, apierr.Validation("zip query parameter is required"))
    return
  }
  report, err := wh.weatherService.GetForZip(c.Request.Context(), zip)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, report)
}
