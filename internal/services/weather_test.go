package services

import (
  "bytes"
  "context"
  "fmt"
  "net/http"
  "net/http/httptest"
  "sync/atomic"
  "testing"
  "time"

  "go.uber.org/zap"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
)

func testLogger() *logger.Logger {
  return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func newTestWeatherService(baseURL, apiKey string, ttl time.Duration) *weatherService {
  return &weatherService{
    log:        testLogger(),
    baseURL:    baseURL,
    apiKey:     apiKey,
    httpClient: &http.Client{Timeout: 5 * time.Second},
    ttl:        ttl,
    cache:      map[string]cachedWeather{},
  }
}

func TestValidZip(t *testing.T) {
  valid := []string{"00000", "90210", "12345"}
  for _, zip := range valid {
    if !ValidZip(zip) {
      t.Fatalf("ValidZip(%q) = false, want true", zip)
    }
  }
  invalid := []string{"", "1234", "123456", "12a45", "12 45", "-1234"}
  for _, zip := range invalid {
    if ValidZip(zip) {
      t.Fatalf("ValidZip(%q) = true, want false", zip)
    }
  }
}

func TestClassifyConditions(t *testing.T) {
  cases := []struct {
    condition string
    tempF     float64
    outdoor   bool
  }{
    {"Rain", 75, false},
    {"Snow", 70, false},
    {"Drizzle", 68, false},
    {"Thunderstorm", 80, false},
    {"Clear", 65, true},
    {"Clear", 85, true},
    {"Clear", 90, true},
    {"Clear", 104.5, true},
    {"Clear", 64.9, false},
    {"Rain", 90, false},
    {"Clouds", 75, false},
    {"", 75, false},
    {"  clear  ", 72, true},
  }
  for _, tc := range cases {
    outdoor, indoor := ClassifyConditions(tc.condition, tc.tempF)
    if outdoor != tc.outdoor {
      t.Fatalf("ClassifyConditions(%q, %v) outdoor = %v, want %v", tc.condition, tc.tempF, outdoor, tc.outdoor)
    }
    if !indoor {
      t.Fatalf("ClassifyConditions(%q, %v) indoor = false, want true", tc.condition, tc.tempF)
    }
  }
}

func TestGetForZipFetchesAndClassifies(t *testing.T) {
  payload := `{"weather":[{"main":"Clear","description":"clear sky"}],"main":{"temp":72.5},"name":"Beverly Hills"}`
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    if got := r.URL.Query().Get("zip"); got != "90210,us" {
      t.Errorf("zip query = %q, want %q", got, "90210,us")
    }
    if got := r.URL.Query().Get("units"); got != "imperial" {
      t.Errorf("units query = %q, want imperial", got)
    }
    if got := r.URL.Query().Get("appid"); got != "test-key" {
      t.Errorf("appid query = %q, want test-key", got)
    }
    fmt.Fprint(w, payload)
  }))
  defer srv.Close()

  svc := newTestWeatherService(srv.URL, "test-key", time.Minute)
  report, err := svc.GetForZip(context.Background(), "90210")
  if err != nil {
    t.Fatalf("GetForZip: %v", err)
  }
  if report.Condition != "Clear" || report.Description != "clear sky" {
    t.Fatalf("condition = %q / %q, want Clear / clear sky", report.Condition, report.Description)
  }
  if report.TemperatureF != 72.5 {
    t.Fatalf("temperature = %v, want 72.5", report.TemperatureF)
  }
  if !report.IsOutdoorFriendly || !report.IsIndoorFriendly {
    t.Fatalf("friendliness = (%v, %v), want (true, true)", report.IsOutdoorFriendly, report.IsIndoorFriendly)
  }
  if !bytes.Equal(report.Raw, []byte(payload)) {
    t.Fatalf("raw payload not preserved: %s", report.Raw)
  }
}

func TestGetForZipCachesWithinTTL(t *testing.T) {
  var hits int64
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    atomic.AddInt64(&hits, 1)
    fmt.Fprint(w, `{"weather":[{"main":"Clouds","description":"overcast"}],"main":{"temp":60}}`)
  }))
  defer srv.Close()

  svc := newTestWeatherService(srv.URL, "test-key", time.Minute)
  first, err := svc.GetForZip(context.Background(), "10001")
  if err != nil {
    t.Fatalf("first GetForZip: %v", err)
  }
  second, err := svc.GetForZip(context.Background(), "10001")
  if err != nil {
    t.Fatalf("second GetForZip: %v", err)
  }
  if got := atomic.LoadInt64(&hits); got != 1 {
    t.Fatalf("provider hit %d times, want 1", got)
  }
  if !bytes.Equal(first.Raw, second.Raw) {
    t.Fatalf("cached raw differs from first fetch")
  }
  if !first.FetchedAt.Equal(second.FetchedAt) {
    t.Fatalf("cached report refetched: %v vs %v", first.FetchedAt, second.FetchedAt)
  }
}

func TestGetForZipRefetchesAfterTTL(t *testing.T) {
  var hits int64
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    atomic.AddInt64(&hits, 1)
    fmt.Fprint(w, `{"weather":[{"main":"Clear","description":"clear sky"}],"main":{"temp":70}}`)
  }))
  defer srv.Close()

  svc := newTestWeatherService(srv.URL, "test-key", time.Millisecond)
  if _, err := svc.GetForZip(context.Background(), "10001"); err != nil {
    t.Fatalf("first GetForZip: %v", err)
  }
  time.Sleep(5 * time.Millisecond)
  if _, err := svc.GetForZip(context.Background(), "10001"); err != nil {
    t.Fatalf("second GetForZip: %v", err)
  }
  if got := atomic.LoadInt64(&hits); got != 2 {
    t.Fatalf("provider hit %d times, want 2", got)
  }
}

func TestGetForZipRejectsBadInput(t *testing.T) {
  svc := newTestWeatherService("http://unused.invalid", "test-key", time.Minute)
  _, err := svc.GetForZip(context.Background(), "nope")
  if code := apierr.From(err).Code; code != apierr.CodeValidation {
    t.Fatalf("bad zip code = %q, want %q", code, apierr.CodeValidation)
  }

  svc = newTestWeatherService("http://unused.invalid", "", time.Minute)
  _, err = svc.GetForZip(context.Background(), "90210")
  if code := apierr.From(err).Code; code != apierr.CodeConfiguration {
    t.Fatalf("missing key code = %q, want %q", code, apierr.CodeConfiguration)
  }
}

func TestGetForZipMapsProviderStatuses(t *testing.T) {
  cases := []struct {
    status int
    code   string
  }{
    {http.StatusUnauthorized, apierr.CodeConfiguration},
    {http.StatusForbidden, apierr.CodeConfiguration},
    {http.StatusNotFound, apierr.CodeNotFound},
    {http.StatusTooManyRequests, apierr.CodeRateLimit},
    {http.StatusInternalServerError, apierr.CodeServiceUnavailable},
    {http.StatusBadGateway, apierr.CodeServiceUnavailable},
  }
  for _, tc := range cases {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
      w.WriteHeader(tc.status)
    }))
    svc := newTestWeatherService(srv.URL, "test-key", time.Minute)
    _, err := svc.GetForZip(context.Background(), "90210")
    srv.Close()
    if err == nil {
      t.Fatalf("status %d: expected error", tc.status)
    }
    if code := apierr.From(err).Code; code != tc.code {
      t.Fatalf("status %d mapped to %q, want %q", tc.status, code, tc.code)
    }
  }
}

func TestGetForZipTransportErrorIsNetwork(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
  srv.Close()

  svc := newTestWeatherService(srv.URL, "test-key", time.Minute)
  _, err := svc.GetForZip(context.Background(), "90210")
  if code := apierr.From(err).Code; code != apierr.CodeNetwork {
    t.Fatalf("transport error code = %q, want %q", code, apierr.CodeNetwork)
  }
}
