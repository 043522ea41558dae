package weather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/weather"
)

func TestClient_Current(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "41.9", q.Get("lat"))
		assert.Equal(t, "12.5", q.Get("lon"))
		assert.Equal(t, "secret", q.Get("appid"))
		assert.Equal(t, "metric", q.Get("units"))

		_, _ = w.Write([]byte(`{
			"main": {"temp": -3.7, "humidity": 80},
			"weather": [{"main": "Snow", "description": "light snow", "icon": "13n"}, {"main": "Mist", "icon": "50n"}],
			"name": "Rome"
		}`))
	}))
	defer srv.Close()

	c, err := weather.NewClient(srv.URL, "secret")
	require.NoError(t, err)

	got, err := c.Current(context.Background(), 41.9, 12.5)

	require.NoError(t, err)
	assert.Equal(t, domain.Weather{Temp: -3, Description: "Snow", IconCode: "13n"}, got)
}

func TestClient_Current_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) }},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{`)) }},
		{"no conditions", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"main":{"temp":1},"weather":[]}`)) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			c, err := weather.NewClient(srv.URL, "k")
			require.NoError(t, err)

			_, err = c.Current(context.Background(), 0, 0)
			assert.ErrorIs(t, err, domain.ErrUnavailable)
		})
	}
}

func TestClient_Current_NoKey(t *testing.T) {
	c, err := weather.NewClient("", "")
	require.NoError(t, err)

	_, err = c.Current(context.Background(), 0, 0)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
