package services

import (
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "net/url"
  "os"
  "strconv"
  "strings"
  "sync"
  "time"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/utils"
)

// WeatherReport is the classified view of a current-conditions lookup. Raw
// holds the provider payload untouched so repeat lookups inside the cache
// window return byte-identical data.
type WeatherReport struct {
  Zip               string          `json:"zip"`
  TemperatureF      float64         `json:"temperature_f"`
  Condition         string          `json:"condition"`
  Description       string          `json:"description"`
  IsOutdoorFriendly bool            `json:"is_outdoor_friendly"`
  IsIndoorFriendly  bool            `json:"is_indoor_friendly"`
  FetchedAt         time.Time       `json:"fetched_at"`
  Raw               json.RawMessage `json:"raw,omitempty"`
}

type WeatherService interface {
  GetForZip(ctx context.Context, zip string) (*WeatherReport, error)
}

type weatherService struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  httpClient *http.Client

  ttl   time.Duration
  mu    sync.Mutex
  cache map[string]cachedWeather
}

type cachedWeather struct {
  report    *WeatherReport
  expiresAt time.Time
}

func NewWeatherService(log *logger.Logger) WeatherService {
  baseURL := os.Getenv("WEATHER_BASE_URL")
  if baseURL == "" {
    baseURL = "https://api.openweathermap.org"
  }
  ttlSec := utils.GetEnvAsInt("WEATHER_CACHE_TTL_SECONDS", 900, log)
  if ttlSec <= 0 {
    ttlSec = 900
  }
  timeoutSec := utils.GetEnvAsInt("WEATHER_TIMEOUT_SECONDS", 10, log)

  return &weatherService{
    log:        log.With("service", "WeatherService"),
    baseURL:    baseURL,
    apiKey:     os.Getenv("WEATHER_API_KEY"),
    httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
    ttl:        time.Duration(ttlSec) * time.Second,
    cache:      map[string]cachedWeather{},
  }
}

// ValidZip accepts 5-digit US zip codes.
func ValidZip(zip string) bool {
  if len(zip) != 5 {
    return false
  }
  for _, r := range zip {
    if r < '0' || r > '9' {
      return false
    }
  }
  return true
}

// ClassifyConditions derives the friendliness flags. Rain or snow means
// indoor only no matter the temperature; clear skies at 65°F or warmer are
// outdoor friendly. Indoors is always an option.
func ClassifyConditions(condition string, tempF float64) (outdoor bool, indoor bool) {
  c := strings.ToLower(strings.TrimSpace(condition))
  if c == "rain" || c == "snow" || c == "drizzle" || c == "thunderstorm" {
    return false, true
  }
  if c == "clear" && tempF >= 65 {
    return true, true
  }
  return false, true
}

type openWeatherResponse struct {
  Weather []struct {
    Main        string `json:"main"`
    Description string `json:"description"`
  } `json:"weather"`
  Main struct {
    Temp float64 `json:"temp"`
  } `json:"main"`
  Name string `json:"name"`
}

func (s *weatherService) GetForZip(ctx context.Context, zip string) (*WeatherReport, error) {
  zip = strings.TrimSpace(zip)
  if !ValidZip(zip) {
    return nil, apierr.Validation("zip code must be 5 digits")
  }
  if s.apiKey == "" {
    return nil, apierr.Configuration("weather API key is not configured")
  }

  if report := s.cached(zip); report != nil {
    return report, nil
  }

  q := url.Values{}
  q.Set("zip", zip+",us")
  q.Set("appid", s.apiKey)
  q.Set("units", "imperial")

  req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
  if err != nil {
    return nil, apierr.Internal(err)
  }

  resp, err := s.httpClient.Do(req)
  if err != nil {
    return nil, apierr.Network(err)
  }
  defer resp.Body.Close()

  raw, err := io.ReadAll(resp.Body)
  if err != nil {
    return nil, apierr.Network(err)
  }

  switch {
  case resp.StatusCode == http.StatusOK:
    // fall through to decode
  case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
    return nil, apierr.Configuration("weather API rejected the configured key")
  case resp.StatusCode == http.StatusNotFound:
    return nil, apierr.NotFound("no weather data for zip %s", zip)
  case resp.StatusCode == http.StatusTooManyRequests:
    return nil, apierr.RateLimit("weather API rate limit reached")
  case resp.StatusCode >= 500:
    return nil, apierr.ServiceUnavailable(fmt.Errorf("weather API returned %d", resp.StatusCode))
  default:
    return nil, apierr.ServiceUnavailable(fmt.Errorf("weather API returned %d: %s", resp.StatusCode, string(raw)))
  }

  var parsed openWeatherResponse
  if err := json.Unmarshal(raw, &parsed); err != nil {
    return nil, apierr.ServiceUnavailable(fmt.Errorf("weather API payload unreadable: %w", err))
  }

  condition := ""
  description := ""
  if len(parsed.Weather) > 0 {
    condition = parsed.Weather[0].Main
    description = parsed.Weather[0].Description
  }
  outdoor, indoor := ClassifyConditions(condition, parsed.Main.Temp)

  report := &WeatherReport{
    Zip:               zip,
    TemperatureF:      parsed.Main.Temp,
    Condition:         condition,
    Description:       description,
    IsOutdoorFriendly: outdoor,
    IsIndoorFriendly:  indoor,
    FetchedAt:         time.Now().UTC(),
    Raw:               json.RawMessage(raw),
  }

  s.mu.Lock()
  s.cache[zip] = cachedWeather{report: report, expiresAt: time.Now().Add(s.ttl)}
  s.mu.Unlock()

  s.log.Info("Fetched weather", "zip", zip, "condition", condition, "temp_f", strconv.FormatFloat(parsed.Main.Temp, 'f', 1, 64))
  return report, nil
}

func (s *weatherService) cached(zip string) *WeatherReport {
  s.mu.Lock()
  defer s.mu.Unlock()
  entry, ok := s.cache[zip]
  if !ok || time.Now().After(entry.expiresAt) {
    delete(s.cache, zip)
    return nil
  }
  return entry.report
}
