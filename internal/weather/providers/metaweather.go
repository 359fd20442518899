package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"github.com/i474232898/metaweather-update/internal/weather"
)

// MetaWeatherProvider implements the weather.Provider interface for the
// MetaWeather location/day endpoint.
type MetaWeatherProvider struct {
	name       string
	baseURL    string
	locationID string
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
}

// NewMetaWeatherProvider builds a provider for baseURL (scheme and host, e.g.
// "https://metaweather.com") and the numeric location id.
func NewMetaWeatherProvider(client *http.Client, baseURL, locationID string, backoff BackoffConfig) *MetaWeatherProvider {
	return &MetaWeatherProvider{
		name:       "metaweather",
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		locationID: locationID,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("metaweather"),
	}
}

func (p *MetaWeatherProvider) Name() string {
	return p.name
}

// Endpoint returns the day URL for date. Month and day are not zero padded.
func (p *MetaWeatherProvider) Endpoint(date time.Time) string {
	return fmt.Sprintf("%s/api/location/%s/%d/%d/%d/",
		p.baseURL, p.locationID, date.Year(), int(date.Month()), date.Day())
}

func (p *MetaWeatherProvider) FetchObservations(ctx context.Context, date time.Time) ([]weather.Observation, error) {
	u := p.Endpoint(date)

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var observations []weather.Observation
	if err := json.NewDecoder(resp.Body).Decode(&observations); err != nil {
		return nil, fmt.Errorf("decode %s: %w", u, err)
	}

	return observations, nil
}
