// Package travelapi is the HTTP client for the itinerary generation backend.
package travelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// DefaultBaseURL is the hosted generation backend.
const DefaultBaseURL = "https://bogX2.pythonanywhere.com"

// StatusSuccess is the backend status of a usable itinerary.
const StatusSuccess = "success"

// Generation can take a while: the backend geocodes every place.
const requestTimeout = 60 * time.Second

// Generator produces an itinerary from a trip request.
// It is implemented by *Client and faked in session tests.
type Generator interface {
	Generate(ctx context.Context, req domain.TripRequest) (domain.Trip, error)
}

var _ Generator = (*Client)(nil)

// Client talks to the generation backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient builds a Client for baseURL; an empty value selects DefaultBaseURL.
func NewClient(baseURL string) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("travelapi.NewClient: invalid base url %q", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return &Client{baseURL: u, http: &http.Client{Timeout: requestTimeout}}, nil
}

type createTripRequest struct {
	TripName string   `json:"trip_name"`
	Days     int      `json:"days"`
	Hotel    string   `json:"hotel"`
	Places   []string `json:"places"`
}

type createTripResponse struct {
	Status    string         `json:"status"`
	TripName  string         `json:"trip_name"`
	Weather   *weatherInfo   `json:"weather"`
	Itinerary []dayItinerary `json:"itinerary"`
	Error     *string        `json:"error"`
}

type weatherInfo struct {
	Temp        float64 `json:"temp"`
	Description string  `json:"description"`
	IconCode    string  `json:"icon_code"`
}

type dayItinerary struct {
	Day    int           `json:"day"`
	Places []placeDetail `json:"places"`
}

type placeDetail struct {
	Name           string   `json:"name"`
	Address        *string  `json:"address"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Rating         *float64 `json:"rating"`
	PhotoReference *string  `json:"photo_reference"`
}

// Generate posts the request to /api/create_trip and maps the response onto
// an unsaved trip. The backend status and error message are carried on the
// trip; deciding whether the result is usable is up to the caller.
func (c *Client) Generate(ctx context.Context, req domain.TripRequest) (domain.Trip, error) {
	body, err := json.Marshal(createTripRequest{
		TripName: req.Name,
		Days:     req.Days,
		Hotel:    req.Hotel,
		Places:   req.Places,
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("travelapi.Client.Generate: encode request: %w", err)
	}

	endpoint := c.baseURL.JoinPath("api", "create_trip")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("travelapi.Client.Generate: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("travelapi.Client.Generate: %w: %w", domain.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return domain.Trip{}, fmt.Errorf("travelapi.Client.Generate: %w: status %d", domain.ErrUnavailable, resp.StatusCode)
	}

	var payload createTripResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Trip{}, fmt.Errorf("travelapi.Client.Generate: %w: decode response: %w", domain.ErrUnavailable, err)
	}
	return payload.toTrip(), nil
}

func (r createTripResponse) toTrip() domain.Trip {
	t := domain.Trip{
		Ref:              domain.Unsaved(),
		Name:             r.TripName,
		GenerationStatus: r.Status,
		Itinerary:        make([]domain.Day, 0, len(r.Itinerary)),
	}
	if r.Error != nil {
		t.Error = *r.Error
	}
	if r.Weather != nil {
		t.Weather = &domain.Weather{
			Temp:        int(r.Weather.Temp),
			Description: r.Weather.Description,
			IconCode:    r.Weather.IconCode,
		}
	}
	for _, d := range r.Itinerary {
		day := domain.Day{Number: d.Day, Places: make([]domain.Place, 0, len(d.Places))}
		for _, p := range d.Places {
			day.Places = append(day.Places, domain.Place{
				Name:           p.Name,
				Address:        deref(p.Address),
				Lat:            p.Lat,
				Lng:            p.Lng,
				Rating:         p.Rating,
				PhotoReference: deref(p.PhotoReference),
			})
		}
		t.Itinerary = append(t.Itinerary, day)
	}
	return t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
