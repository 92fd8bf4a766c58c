package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

// RespondError maps a service error onto the JSON envelope. Anything that is
// not an apierr comes out as a 500 internal.
func RespondError(c *gin.Context, err error) {
  ae := apierr.From(err)
  c.JSON(ae.Status, ErrorEnvelope{
    Error: APIError{
      Message: ae.Error(),
      Code:    ae.Code,
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
  c.JSON(http.StatusCreated, payload)
}
