package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/address-registry/app/models"
)

const googleEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocoder is the production Geocoder backed by the Google Geocoding
// API. Context deadlines on the inbound request propagate to the HTTP call.
type GoogleGeocoder struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewGoogleGeocoder creates a Google-backed geocoder.
func NewGoogleGeocoder(apiKey string, logger *zap.Logger) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey:   apiKey,
		endpoint: googleEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type googleResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Geocode implements Geocoder.
func (g *GoogleGeocoder) Geocode(ctx context.Context, text string) (*Result, error) {
	q := url.Values{}
	q.Set("address", text)
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoResult
	default:
		return nil, fmt.Errorf("geocode status %s: %s", body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		return nil, ErrNoResult
	}

	top := body.Results[0]
	result := &Result{
		FormattedAddress: top.FormattedAddress,
		Location: models.LatLng{
			Lat: top.Geometry.Location.Lat,
			Lng: top.Geometry.Location.Lng,
		},
	}
	for _, c := range top.AddressComponents {
		for _, t := range c.Types {
			switch t {
			case "street_number":
				result.Components.StreetNumber = c.LongName
			case "route":
				result.Components.Route = c.LongName
			case "locality", "postal_town":
				if result.Components.Locality == "" {
					result.Components.Locality = c.LongName
				}
			case "postal_code":
				result.Components.PostalCode = c.LongName
			case "country":
				result.Components.Country = c.LongName
			}
		}
	}

	g.logger.Debug("geocoded input",
		zap.String("input", text),
		zap.String("formatted", result.FormattedAddress),
		zap.Bool("usable", result.Usable()))

	return result, nil
}
