package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/services"
)

type UserHandler struct {
  userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
  return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
  user, err := uh.userService.GetMe(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, user)
}

func (uh *UserHandler) UpdateName(c *gin.Context) {
  var req struct {
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  user, err := uh.userService.UpdateName(c.Request.Context(), req.FirstName, req.LastName)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, user)
}

func (uh *UserHandler) UpdateTimezone(c *gin.Context) {
  var req struct {
    Timezone string `json:"timezone"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  user, err := uh.userService.UpdateTimezone(c.Request.Context(), req.Timezone)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, user)
}

func (uh *UserHandler) UpdateZipCode(c *gin.Context) {
  var req struct {
    ZipCode string `json:"zip_code"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  user, err := uh.userService.UpdateZipCode(c.Request.Context(), req.ZipCode)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, user)
}
