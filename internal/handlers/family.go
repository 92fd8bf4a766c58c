package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/services"
)

type FamilyHandler struct {
  familyService services.FamilyService
}

func NewFamilyHandler(familyService services.FamilyService) *FamilyHandler {
  return &FamilyHandler{familyService: familyService}
}

func (fh *FamilyHandler) Create(c *gin.Context) {
  var req struct {
    Name         string   `json:"name"`
    Relationship string   `json:"relationship"`
    Likes        []string `json:"likes"`
    Dislikes     []string `json:"dislikes"`
    EnergyLevel  string   `json:"energy_level"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  member, err := fh.familyService.CreateMember(c.Request.Context(), services.CreateFamilyMemberInput{
    Name:         req.Name,
    Relationship: req.Relationship,
    Likes:        req.Likes,
    Dislikes:     req.Dislikes,
    EnergyLevel:  req.EnergyLevel,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, member)
}

func (fh *FamilyHandler) List(c *gin.Context) {
  members, err := fh.familyService.ListMembers(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, members)
}

func (fh *FamilyHandler) Get(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  member, gErr := fh.familyService.GetMember(c.Request.Context(), id)
  if gErr != nil {
    RespondError(c, gErr)
    return
  }
  RespondOK(c, member)
}

func (fh *FamilyHandler) Update(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Name         *string  `json:"name"`
    Relationship *string  `json:"relationship"`
    Likes        []string `json:"likes"`
    Dislikes     []string `json:"dislikes"`
    EnergyLevel  *string  `json:"energy_level"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  member, uErr := fh.familyService.UpdateMember(c.Request.Context(), id, services.UpdateFamilyMemberInput{
    Name:         req.Name,
    Relationship: req.Relationship,
    Likes:        req.Likes,
    Dislikes:     req.Dislikes,
    EnergyLevel:  req.EnergyLevel,
  })
  if uErr != nil {
    RespondError(c, uErr)
    return
  }
  RespondOK(c, member)
}

func (fh *FamilyHandler) Delete(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  if dErr := fh.familyService.DeleteMember(c.Request.Context(), id); dErr != nil {
    RespondError(c, dErr)
    return
  }
  RespondOK(c, gin.H{"success": true})
}

func (fh *FamilyHandler) LogInteraction(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Notes   string `json:"notes"`
    Enjoyed *bool  `json:"enjoyed"`
    Xp      int    `json:"xp"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  enjoyed := true
  if req.Enjoyed != nil {
    enjoyed = *req.Enjoyed
  }
  member, lErr := fh.familyService.LogInteraction(c.Request.Context(), id, services.LogInteractionInput{
    Notes:   req.Notes,
    Enjoyed: enjoyed,
    Xp:      req.Xp,
  })
  if lErr != nil {
    RespondError(c, lErr)
    return
  }
  RespondCreated(c, member)
}

func (fh *FamilyHandler) ListInteractions(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  rows, lErr := fh.familyService.GetInteractions(c.Request.Context(), id)
  if lErr != nil {
    RespondError(c, lErr)
    return
  }
  RespondOK(c, rows)
}
