// Package weather fetches current conditions from the OpenWeather API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// DefaultBaseURL is the public OpenWeather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/"

const requestTimeout = 10 * time.Second

// Provider returns the current weather at a coordinate.
type Provider interface {
	Current(ctx context.Context, lat, lon float64) (domain.Weather, error)
}

var _ Provider = (*Client)(nil)

// Client calls data/2.5/weather with metric units.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
}

// NewClient builds a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, apiKey string) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("weather.NewClient: invalid base url %q", baseURL)
	}
	return &Client{baseURL: u, apiKey: apiKey, http: &http.Client{Timeout: requestTimeout}}, nil
}

type currentResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Name string `json:"name"`
}

// Current returns the weather at lat/lon. Temperatures are truncated to
// whole degrees Celsius; the description is the condition group of the first
// reported condition.
func (c *Client) Current(ctx context.Context, lat, lon float64) (domain.Weather, error) {
	if c.apiKey == "" {
		return domain.Weather{}, fmt.Errorf("weather.Client.Current: %w: no api key configured", domain.ErrUnavailable)
	}

	endpoint := c.baseURL.JoinPath("data", "2.5", "weather")
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("weather.Client.Current: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("weather.Client.Current: %w: %w", domain.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return domain.Weather{}, fmt.Errorf("weather.Client.Current: %w: status %d", domain.ErrUnavailable, resp.StatusCode)
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Weather{}, fmt.Errorf("weather.Client.Current: %w: decode response: %w", domain.ErrUnavailable, err)
	}
	if len(payload.Weather) == 0 {
		return domain.Weather{}, fmt.Errorf("weather.Client.Current: %w: %w", domain.ErrUnavailable, errors.New("response has no conditions"))
	}

	return domain.Weather{
		Temp:        int(payload.Main.Temp),
		Description: payload.Weather[0].Main,
		IconCode:    payload.Weather[0].Icon,
	}, nil
}
