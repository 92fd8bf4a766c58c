package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/services"
)

type StatHandler struct {
  statService services.StatService
}

func NewStatHandler(statService services.StatService) *StatHandler {
  return &StatHandler{statService: statService}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
  id, err := uuid.Parse(c.Param(name))
  if err != nil {
    return uuid.Nil, apierr.Validation("invalid id")
  }
  return id, nil
}

func (sh *StatHandler) Create(c *gin.Context) {
  var req struct {
    Name              string   `json:"name"`
    Description       string   `json:"description"`
    ExampleActivities []string `json:"example_activities"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  stat, err := sh.statService.CreateStat(c.Request.Context(), services.CreateStatInput{
    Name:              req.Name,
    Description:       req.Description,
    ExampleActivities: req.ExampleActivities,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, stat)
}

func (sh *StatHandler) List(c *gin.Context) {
  stats, err := sh.statService.GetStats(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, stats)
}

func (sh *StatHandler) Get(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  stat, sErr := sh.statService.GetStat(c.Request.Context(), id)
  if sErr != nil {
    RespondError(c, sErr)
    return
  }
  RespondOK(c, stat)
}

func (sh *StatHandler) Update(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Name              *string  `json:"name"`
    Description       *string  `json:"description"`
    ExampleActivities []string `json:"example_activities"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  stat, uErr := sh.statService.UpdateStat(c.Request.Context(), id, services.UpdateStatInput{
    Name:              req.Name,
    Description:       req.Description,
    ExampleActivities: req.ExampleActivities,
  })
  if uErr != nil {
    RespondError(c, uErr)
    return
  }
  RespondOK(c, stat)
}

func (sh *StatHandler) SetEnabled(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Enabled bool `json:"enabled"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  stat, uErr := sh.statService.SetStatEnabled(c.Request.Context(), id, req.Enabled)
  if uErr != nil {
    RespondError(c, uErr)
    return
  }
  RespondOK(c, stat)
}

func (sh *StatHandler) Grants(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  grants, gErr := sh.statService.GetGrants(c.Request.Context(), id)
  if gErr != nil {
    RespondError(c, gErr)
    return
  }
  RespondOK(c, grants)
}
