package services

import (
	"errors"

	"github.com/address-registry/internal/store"
)

var (
	// ErrInvalidAddress means geocoding returned nothing usable: either no
	// result at all, or a result too coarse to anchor a canonical address
	// (no postcode, or neither street number nor route). The caller should
	// prompt for more detail; never retried automatically.
	ErrInvalidAddress = errors.New("invalid address: input is not precise enough to geocode")

	// ErrGeocodingUnavailable means the geocoding collaborator errored or
	// timed out. Transient; callers may retry with backoff. Must never be
	// conflated with ErrInvalidAddress.
	ErrGeocodingUnavailable = errors.New("geocoding service unavailable")

	// ErrNotFound is re-exported from the store so callers can depend on
	// the services package alone.
	ErrNotFound = store.ErrNotFound
)
