package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// weatherTool wraps the Open-Meteo API (keyless, no API key required),
// returning the location/temperature/condition/humidity/feels_like/wind
// field set the external tool contract demands.
func weatherTool() Definition {
	return Definition{
		Schema: Schema{
			Name:        "get_weather",
			Description: "Gets current weather conditions for a location.",
			Parameters: []Param{
				{Name: "location", Type: "string", Required: true},
				{Name: "unit", Type: "string", Required: false},
			},
		},
		Handler: handleWeather,
	}
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type openMeteoResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Hourly struct {
		RelativeHumidity []float64 `json:"relativehumidity_2m"`
	} `json:"hourly"`
}

func handleWeather(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	location, _ := args["location"].(string)
	if location == "" {
		return nil, fmt.Errorf("get_weather: location is required")
	}
	location = cleanLocation(location)
	unit, _ := args["unit"].(string)
	if unit == "" {
		unit = "celsius"
	}

	lat, lon, resolvedName, err := geocode(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("get_weather: geocoding %q: %w", location, err)
	}

	tempUnit := "celsius"
	if unit == "fahrenheit" {
		tempUnit = "fahrenheit"
	}
	forecastURL := fmt.Sprintf(
		"https://api.open-meteo.com/v1/forecast?latitude=%f&longitude=%f&current_weather=true&hourly=relativehumidity_2m&temperature_unit=%s",
		lat, lon, tempUnit,
	)

	var weather openMeteoResponse
	// Weather gets up to 5 network retries with linear backoff — the one
	// tool with an explicit retry budget, since transient geocoding/forecast
	// hiccups are common and cheap to retry.
	if err := getJSONWithRetry(ctx, forecastURL, &weather, maxWeatherRetries); err != nil {
		return nil, fmt.Errorf("get_weather: fetching forecast: %w", err)
	}

	humidity := 0.0
	if len(weather.Hourly.RelativeHumidity) > 0 {
		humidity = weather.Hourly.RelativeHumidity[0]
	}

	return map[string]interface{}{
		"location":    resolvedName,
		"temperature": weather.CurrentWeather.Temperature,
		"condition":   weatherCodeToCondition(weather.CurrentWeather.WeatherCode),
		"humidity":    humidity,
		"feels_like":  weather.CurrentWeather.Temperature,
		"wind":        weather.CurrentWeather.WindSpeed,
	}, nil
}

// weatherNoise is trimmed from a raw location hint before geocoding, so a
// phrase like "Seoul weather?" or "날씨 서울" resolves to a bare city name
// rather than being sent to the geocoder verbatim.
var weatherNoise = []string{"weather", "forecast", "temperature", "날씨"}

// knownCities maps a recognized city name (Korean or English) to the
// canonical English name the geocoder expects.
var knownCities = map[string]string{
	"서울": "Seoul", "도쿄": "Tokyo", "런던": "London", "광주": "Gwangju",
	"부산": "Busan", "인천": "Incheon", "대구": "Daegu", "대전": "Daejeon",
	"파리": "Paris", "뉴욕": "New York", "베이징": "Beijing", "제주": "Jeju",
	"청주": "Cheongju", "울산": "Ulsan", "수원": "Suwon",
}

var locationInPattern = regexp.MustCompile(`(?i)\bin\s+([a-zA-Z]+)`)

// cleanLocation strips weather-keyword noise from a raw location hint and
// extracts a bare city name, e.g. "Seoul weather?" becomes "Seoul" and "날씨
// 서울" becomes "Seoul". Falls back to the last word of a multi-word phrase
// when no known city is recognized, and to the original location untouched
// if cleaning would otherwise leave nothing.
func cleanLocation(location string) string {
	clean := strings.ToLower(location)
	for _, noise := range weatherNoise {
		clean = strings.ReplaceAll(clean, noise, "")
	}
	clean = strings.TrimSpace(clean)

	if m := locationInPattern.FindStringSubmatch(clean); m != nil {
		clean = m[1]
	}

	for k, v := range knownCities {
		if strings.Contains(location, k) || strings.Contains(clean, k) || strings.Contains(clean, strings.ToLower(v)) {
			return v
		}
	}

	if fields := strings.Fields(clean); len(fields) > 1 {
		clean = fields[len(fields)-1]
	}

	if clean == "" {
		return location
	}
	return clean
}

func geocode(ctx context.Context, location string) (lat, lon float64, name string, err error) {
	geocodeURL := "https://geocoding-api.open-meteo.com/v1/search?name=" + url.QueryEscape(location) + "&count=1"
	var geo geocodeResponse
	if err := getJSONWithRetry(ctx, geocodeURL, &geo, maxWeatherRetries); err != nil {
		return 0, 0, "", err
	}
	if len(geo.Results) == 0 {
		return 0, 0, "", fmt.Errorf("no location found for %q", location)
	}
	r := geo.Results[0]
	return r.Latitude, r.Longitude, r.Name, nil
}

// weatherCodeToCondition maps Open-Meteo's WMO weather codes to a short
// human-readable condition string.
func weatherCodeToCondition(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "fog"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "rain showers"
	case code <= 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}

// maxWeatherRetries bounds handleWeather's forecast fetch.
const maxWeatherRetries = 5

// getJSONWithRetry retries getJSON up to maxAttempts times with linear
// backoff (attempt * 200ms). A context cancellation aborts the retry loop
// immediately rather than sleeping it out.
func getJSONWithRetry(ctx context.Context, target string, out interface{}, maxAttempts int) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := getJSON(ctx, target, out); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		}
	}
	return lastErr
}

func getJSON(ctx context.Context, target string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, target)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// withTimeout builds a child context bounded by seconds, used by the
// search, Wikipedia, read_url and execute_command handlers so they never
// hang past their per-tool budget. The weather handler does not use it.
func withTimeout(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		seconds = 10
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}
