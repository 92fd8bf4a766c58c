package apierr

import (
  "errors"
  "fmt"
  "net/http"
  "strings"
  "testing"
)

func TestHelpersFormatArguments(t *testing.T) {
  err := Conflict("a stat named %q already exists", "50% done")
  if got := err.Error(); !strings.Contains(got, `"50% done"`) || strings.Contains(got, "%!") {
    t.Fatalf("user input mangled by formatting: %q", got)
  }
  if err.Status != http.StatusConflict || err.Code != CodeConflict {
    t.Fatalf("conflict helper = %d/%q", err.Status, err.Code)
  }

  v := Validation("intent must be at most %d characters", 500)
  if got := v.Error(); got != "intent must be at most 500 characters" {
    t.Fatalf("validation message = %q", got)
  }
}

func TestFromUnwrapsChain(t *testing.T) {
  inner := NotFound("no weather data for zip %s", "99999")
  wrapped := fmt.Errorf("lookup failed: %w", inner)
  if got := From(wrapped); got.Code != CodeNotFound {
    t.Fatalf("From(wrapped).Code = %q, want %q", got.Code, CodeNotFound)
  }
  if got := From(errors.New("raw db error")); got.Code != CodeInternal || got.Status != http.StatusInternalServerError {
    t.Fatalf("bare errors must default to internal, got %q/%d", got.Code, got.Status)
  }
  if From(nil) != nil {
    t.Fatalf("From(nil) should be nil")
  }
}
