// Package geocode defines the geocoding collaborator the registry consumes
// and the component-level validity rule applied to its results.
package geocode

import (
	"context"
	"errors"

	"github.com/address-registry/app/models"
)

// ErrNoResult means the provider understood the request but could not
// geocode the input. Distinct from transport failures: callers treat this
// as "needs more detail", never as a retryable outage.
var ErrNoResult = errors.New("geocode: no result for input")

// Components are the structured parts of a geocoded address that the
// validity rule inspects.
type Components struct {
	StreetNumber string `json:"street_number,omitempty"`
	Route        string `json:"route,omitempty"`
	Locality     string `json:"locality,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
}

// Result is a successful geocode: the canonical formatted text, the
// coordinate and the structured components.
type Result struct {
	FormattedAddress string        `json:"formatted_address"`
	Location         models.LatLng `json:"location"`
	Components       Components    `json:"components"`
}

// Usable reports whether the result is precise enough to anchor a
// canonical address: a postal code plus either a street number or a route.
// A postcode-only result would let two unrelated buildings sharing a
// postcode be treated as the same location.
func (r *Result) Usable() bool {
	if r == nil || r.Components.PostalCode == "" {
		return false
	}
	return r.Components.StreetNumber != "" || r.Components.Route != ""
}

// Geocoder turns free text into a canonical formatted address and
// coordinates. Implementations return ErrNoResult for unaddressable input
// and any other error for transport/availability failures; the two must
// stay distinguishable.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (*Result, error)
}
