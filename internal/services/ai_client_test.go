package services

import (
  "context"
  "errors"
  "fmt"
  "testing"
  "time"
)

func TestIsRetryableHTTP(t *testing.T) {
  retryable := []int{408, 429, 500, 502, 503, 599}
  for _, code := range retryable {
    if !isRetryableHTTP(code) {
      t.Fatalf("isRetryableHTTP(%d) = false, want true", code)
    }
  }
  terminal := []int{200, 400, 401, 403, 404, 422}
  for _, code := range terminal {
    if isRetryableHTTP(code) {
      t.Fatalf("isRetryableHTTP(%d) = true, want false", code)
    }
  }
}

func TestIsRetryableErr(t *testing.T) {
  if isRetryableErr(nil) {
    t.Fatalf("nil error should not be retryable")
  }
  if !isRetryableErr(context.DeadlineExceeded) {
    t.Fatalf("deadline exceeded should be retryable")
  }
  if !isRetryableErr(fmt.Errorf("wrapped: %w", &aiHTTPError{StatusCode: 503})) {
    t.Fatalf("wrapped 503 should be retryable")
  }
  if isRetryableErr(&aiHTTPError{StatusCode: 400, Body: "bad request"}) {
    t.Fatalf("400 should not be retryable")
  }
  if isRetryableErr(errors.New("schema mismatch")) {
    t.Fatalf("arbitrary errors should not be retryable")
  }
}

func TestJitterSleepBounds(t *testing.T) {
  base := 2 * time.Second
  // slightly loose bounds; float rounding can shave a nanosecond
  low := time.Duration(float64(base) * 0.79)
  high := time.Duration(float64(base) * 1.21)
  for i := 0; i < 200; i++ {
    d := jitterSleep(base)
    if d < low || d > high {
      t.Fatalf("jitterSleep(%v) = %v, outside [%v, %v]", base, d, low, high)
    }
  }
  if d := jitterSleep(0); d != 0 {
    t.Fatalf("jitterSleep(0) = %v, want 0", d)
  }
  if d := jitterSleep(-time.Second); d != 0 {
    t.Fatalf("jitterSleep(negative) = %v, want 0", d)
  }
}
