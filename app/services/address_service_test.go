package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/address-registry/app/models"
	"github.com/address-registry/internal/geocode"
	"github.com/address-registry/internal/store"
)

// staticGeocoder returns canned results per raw input and counts calls so
// tests can assert which tiers were exercised.
type staticGeocoder struct {
	results map[string]*geocode.Result
	err     error
	calls   int
}

func (sg *staticGeocoder) Geocode(ctx context.Context, rawText string) (*geocode.Result, error) {
	sg.calls++
	if sg.err != nil {
		return nil, sg.err
	}
	if r, ok := sg.results[rawText]; ok {
		return r, nil
	}
	return nil, geocode.ErrNoResult
}

func usableResult(formatted string, lat, lng float64) *geocode.Result {
	return &geocode.Result{
		FormattedAddress: formatted,
		Location:         models.LatLng{Lat: lat, Lng: lng},
		Components: geocode.Components{
			StreetNumber: "35",
			Route:        "West Smithfield",
			Locality:     "London",
			PostalCode:   "EC1A 9HX",
			Country:      "United Kingdom",
		},
	}
}

func newTestService(gc geocode.Geocoder) (*AddressService, *store.MemoryStore) {
	st := store.NewMemoryStore()
	cache, _ := NewLRUCacheService(64, zap.NewNop())
	return NewAddressService(st, gc, cache, nil, zap.NewNop()), st
}

func TestCreateOrUpdateIdempotent(t *testing.T) {
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"35 w smithfield": usableResult("35 West Smithfield, London EC1A 9HX, UK", 51.5177, -0.1005),
	}}
	svc, _ := newTestService(gc)
	ctx := context.Background()

	first, err := svc.CreateOrUpdate(ctx, "35 w smithfield")
	require.NoError(t, err)

	second, err := svc.CreateOrUpdate(ctx, "35 w smithfield")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Aliases, 1)
}

func TestCreateOrUpdateNearbyVariantsShareRecord(t *testing.T) {
	// Two phrasings of the same building, geocoded ~8m apart. The second
	// submission must attach to the first record, not create a twin.
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"35 W Smithfield, London EC1A, UK": usableResult(
			"35 West Smithfield, London EC1A 9HX, UK", 51.5177, -0.1005),
		"Flat 3, 35 West Smithfield, London": usableResult(
			"Flat 3, 35 West Smithfield, London EC1A 9HX, UK", 51.5177+7.2e-5, -0.1005),
	}}
	svc, _ := newTestService(gc)
	ctx := context.Background()

	first, err := svc.CreateOrUpdate(ctx, "35 W Smithfield, London EC1A, UK")
	require.NoError(t, err)

	second, err := svc.CreateOrUpdate(ctx, "Flat 3, 35 West Smithfield, London")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Aliases, 2)
	assert.True(t, second.HasAlias("35 W Smithfield, London EC1A, UK"))
	assert.True(t, second.HasAlias("Flat 3, 35 West Smithfield, London"))
}

func TestCreateOrUpdateBeyondProximityCreatesNewRecord(t *testing.T) {
	// ~10.1m apart: just over the creation-time threshold, so two records.
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"a": usableResult("35 West Smithfield, London EC1A 9HX, UK", 51.5177, -0.1005),
		"b": usableResult("37 West Smithfield, London EC1A 9HX, UK", 51.5177+9.10e-5, -0.1005),
	}}
	svc, _ := newTestService(gc)
	ctx := context.Background()

	first, err := svc.CreateOrUpdate(ctx, "a")
	require.NoError(t, err)
	second, err := svc.CreateOrUpdate(ctx, "b")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateOrUpdateWithinProximityAttaches(t *testing.T) {
	// ~10.0m apart: still inside the threshold, alias attaches.
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"a": usableResult("35 West Smithfield, London EC1A 9HX, UK", 51.5177, -0.1005),
		"b": usableResult("35a West Smithfield, London EC1A 9HX, UK", 51.5177+8.99e-5, -0.1005),
	}}
	svc, _ := newTestService(gc)
	ctx := context.Background()

	first, err := svc.CreateOrUpdate(ctx, "a")
	require.NoError(t, err)
	second, err := svc.CreateOrUpdate(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestCreateOrUpdateRejectsPostcodeOnly(t *testing.T) {
	// A bare postcode geocodes, but without a street the result is too
	// coarse to anchor a record.
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"EC1A 9HX": {
			FormattedAddress: "London EC1A 9HX, UK",
			Location:         models.LatLng{Lat: 51.5177, Lng: -0.1005},
			Components:       geocode.Components{PostalCode: "EC1A 9HX", Country: "United Kingdom"},
		},
	}}
	svc, _ := newTestService(gc)

	_, err := svc.CreateOrUpdate(context.Background(), "EC1A 9HX")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestCreateOrUpdateGeocoderDown(t *testing.T) {
	gc := &staticGeocoder{err: errors.New("connection refused")}
	svc, _ := newTestService(gc)

	_, err := svc.CreateOrUpdate(context.Background(), "35 West Smithfield")
	assert.ErrorIs(t, err, ErrGeocodingUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidAddress)
}

func TestResolveExactBeforeGeocode(t *testing.T) {
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"raw": usableResult("35 West Smithfield, London EC1A 9HX, UK", 51.5177, -0.1005),
	}}
	svc, _ := newTestService(gc)
	ctx := context.Background()

	created, err := svc.CreateOrUpdate(ctx, "raw")
	require.NoError(t, err)
	gc.calls = 0

	result, err := svc.Resolve(ctx, created.FormattedAddress)
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, models.MatchStrategyExact, result.Strategy)
	assert.Equal(t, created.ID, result.Address.ID)
	assert.Zero(t, gc.calls, "exact tier must not geocode")
}

func TestResolveAliasBeforeGeocode(t *testing.T) {
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"35 w smithfield": usableResult("35 West Smithfield, London EC1A 9HX, UK", 51.5177, -0.1005),
	}}
	svc, _ := newTestService(gc)
	ctx := context.Background()

	created, err := svc.CreateOrUpdate(ctx, "35 w smithfield")
	require.NoError(t, err)
	gc.calls = 0

	result, err := svc.Resolve(ctx, "35 w smithfield")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, models.MatchStrategyAlias, result.Strategy)
	assert.Equal(t, created.ID, result.Address.ID)
	assert.Zero(t, gc.calls, "alias tier must not geocode")
}

func TestResolveProximityTier(t *testing.T) {
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"seed": usableResult("35 West Smithfield, London EC1A 9HX, UK", 51.5177, -0.1005),
		"near": usableResult("35 West Smithfield, EC1A 9HX", 51.5177+7.2e-5, -0.1005),
	}}
	svc, _ := newTestService(gc)
	ctx := context.Background()

	created, err := svc.CreateOrUpdate(ctx, "seed")
	require.NoError(t, err)

	result, err := svc.Resolve(ctx, "near")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, models.MatchStrategyProximity, result.Strategy)
	assert.Equal(t, created.ID, result.Address.ID)
}

func TestResolveNoMatch(t *testing.T) {
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"somewhere else": usableResult("1 Another Street, London N1 1AA, UK", 51.6000, -0.2000),
	}}
	svc, _ := newTestService(gc)

	result, err := svc.Resolve(context.Background(), "somewhere else")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, models.ReasonNoMatch, result.Reason)
	assert.Nil(t, result.Address)
}

func TestResolveUngeocodable(t *testing.T) {
	// Both a string the geocoder cannot place and a postcode-only result
	// fail the validity rule the same way.
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"EC1A 9HX": {
			FormattedAddress: "London EC1A 9HX, UK",
			Location:         models.LatLng{Lat: 51.5177, Lng: -0.1005},
			Components:       geocode.Components{PostalCode: "EC1A 9HX", Country: "United Kingdom"},
		},
	}}
	svc, _ := newTestService(gc)

	for _, input := range []string{"asdfghjkl qwerty", "EC1A 9HX"} {
		result, err := svc.Resolve(context.Background(), input)
		require.NoError(t, err)
		assert.False(t, result.Found)
		assert.Equal(t, models.ReasonUngeocodable, result.Reason)
	}
}

func TestResolveGeocoderDownIsNotUngeocodable(t *testing.T) {
	gc := &staticGeocoder{err: errors.New("timeout")}
	svc, _ := newTestService(gc)

	_, err := svc.Resolve(context.Background(), "35 West Smithfield")
	assert.ErrorIs(t, err, ErrGeocodingUnavailable)
}

func TestResolveEmptyInput(t *testing.T) {
	svc, _ := newTestService(&staticGeocoder{})
	_, err := svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestResolveCachesHits(t *testing.T) {
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"seed": usableResult("35 West Smithfield, London EC1A 9HX, UK", 51.5177, -0.1005),
		"near": usableResult("35 West Smithfield, EC1A 9HX", 51.5177+7.2e-5, -0.1005),
	}}
	svc, _ := newTestService(gc)
	ctx := context.Background()

	_, err := svc.CreateOrUpdate(ctx, "seed")
	require.NoError(t, err)

	first, err := svc.Resolve(ctx, "near")
	require.NoError(t, err)
	require.True(t, first.Found)
	gc.calls = 0

	second, err := svc.Resolve(ctx, "near")
	require.NoError(t, err)
	assert.True(t, second.Found)
	assert.Equal(t, first.Address.ID, second.Address.ID)
	assert.Zero(t, gc.calls, "cached hit must not geocode")
}

func TestAppendDescription(t *testing.T) {
	gc := &staticGeocoder{results: map[string]*geocode.Result{
		"raw": usableResult("35 West Smithfield, London EC1A 9HX, UK", 51.5177, -0.1005),
	}}
	svc, st := newTestService(gc)
	ctx := context.Background()

	created, err := svc.CreateOrUpdate(ctx, "raw")
	require.NoError(t, err)

	require.NoError(t, svc.AppendDescription(ctx, created.ID, "blue door next to the pub", "user-1"))
	require.NoError(t, svc.AppendDescription(ctx, created.ID, "ring the top bell", "user-2"))

	got, err := st.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Descriptions, 2)
	assert.Equal(t, "blue door next to the pub", got.Descriptions[0].Content)
	assert.Equal(t, "user-2", got.Descriptions[1].ContributorID)

	err = svc.AppendDescription(ctx, "missing-id", "text", "user-3")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppendDescriptionRejectsEmpty(t *testing.T) {
	svc, _ := newTestService(&staticGeocoder{})
	err := svc.AppendDescription(context.Background(), "any-id", "", "user-1")
	assert.Error(t, err)
}
