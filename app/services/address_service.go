package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/address-registry/app/config"
	"github.com/address-registry/app/models"
	"github.com/address-registry/helpers/utils"
	"github.com/address-registry/internal/geo"
	"github.com/address-registry/internal/geocode"
	"github.com/address-registry/internal/search"
	"github.com/address-registry/internal/store"
)

// AddressService owns the request-path operations over the canonical
// address collection: resolving raw input to an existing record, creating
// or updating records, and attaching contributed descriptions.
//
// It holds the invariant that no two records represent the same physical
// location within the creation-time proximity threshold.
type AddressService struct {
	store    store.Store
	geocoder geocode.Geocoder
	cache    ResolveCache        // optional
	index    *search.AddressIndex // optional
	logger   *zap.Logger

	proximityMeters float64
}

// NewAddressService wires the service with its collaborators. cache and
// index may be nil; both are auxiliary.
func NewAddressService(st store.Store, gc geocode.Geocoder, cache ResolveCache, index *search.AddressIndex, logger *zap.Logger) *AddressService {
	return &AddressService{
		store:           st,
		geocoder:        gc,
		cache:           cache,
		index:           index,
		logger:          logger,
		proximityMeters: config.C.Matcher.ProximityMeters,
	}
}

// Resolve decides whether rawText refers to an already-known location.
// Tiers run in strict order, first hit wins: exact formatted-address
// match, alias match, then geocode + proximity. A raw string the geocoder
// cannot place yields a NotFound result with ReasonUngeocodable; an
// unreachable geocoder yields ErrGeocodingUnavailable. The two are never
// collapsed into each other.
func (as *AddressService) Resolve(ctx context.Context, rawText string) (*models.MatchResult, error) {
	if rawText == "" {
		return nil, ErrInvalidAddress
	}

	if as.cache != nil {
		if cached, found, err := as.cache.Get(ctx, rawText); err == nil && found {
			return cached, nil
		}
	}

	// Tier 1: the input is already a stored canonical string.
	if addr, err := as.store.FindByFormatted(ctx, rawText); err == nil {
		return as.finishResolve(ctx, rawText, models.FoundResult(addr, models.MatchStrategyExact))
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// Tier 2: a previously seen raw variant resolves without re-geocoding.
	if addr, err := as.store.FindByAlias(ctx, rawText); err == nil {
		return as.finishResolve(ctx, rawText, models.FoundResult(addr, models.MatchStrategyAlias))
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// Tier 3: geocode and look for a record within the proximity radius.
	result, err := as.geocode(ctx, rawText)
	if err != nil {
		if errors.Is(err, ErrInvalidAddress) {
			return models.NotFoundResult(models.ReasonUngeocodable), nil
		}
		return nil, err
	}

	addr, err := as.nearest(ctx, result.Location, as.proximityMeters)
	if err != nil {
		return nil, err
	}
	if addr != nil {
		return as.finishResolve(ctx, rawText, models.FoundResult(addr, models.MatchStrategyProximity))
	}

	return models.NotFoundResult(models.ReasonNoMatch), nil
}

// finishResolve caches a hit before returning it. Misses are never
// cached: CreateOrUpdate would make them stale immediately.
func (as *AddressService) finishResolve(ctx context.Context, rawText string, result *models.MatchResult) (*models.MatchResult, error) {
	if as.cache != nil {
		if err := as.cache.Set(ctx, rawText, result); err != nil {
			as.logger.Warn("resolve cache set failed", zap.Error(err), zap.String("raw", rawText))
		}
	}
	as.logger.Debug("resolved address",
		zap.String("raw", rawText),
		zap.String("strategy", string(result.Strategy)),
		zap.String("id", result.Address.ID))
	return result, nil
}

// CreateOrUpdate validates rawText against the geocoder and either
// attaches it as an alias to the existing canonical record for that
// location or creates a new record. Idempotent over rawText: a repeat
// call returns the same id without duplicating the alias.
func (as *AddressService) CreateOrUpdate(ctx context.Context, rawText string) (*models.CanonicalAddress, error) {
	if rawText == "" {
		return nil, ErrInvalidAddress
	}

	result, err := as.geocode(ctx, rawText)
	if err != nil {
		return nil, err
	}

	existing, err := as.store.FindByFormatted(ctx, result.FormattedAddress)
	if errors.Is(err, store.ErrNotFound) {
		existing, err = as.nearestOrNil(ctx, result.Location)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if existing != nil {
		if err := as.store.AddAlias(ctx, existing.ID, models.Alias{RawText: rawText, MatchedAt: now}); err != nil {
			return nil, fmt.Errorf("attach alias to %s: %w", existing.ID, err)
		}
		updated, err := as.store.GetByID(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		as.upsertIndex(updated)
		as.logger.Info("attached alias to existing address",
			zap.String("id", updated.ID),
			zap.String("raw", rawText))
		return updated, nil
	}

	addr := &models.CanonicalAddress{
		ID:               utils.GenerateUUID(),
		FormattedAddress: result.FormattedAddress,
		Location:         result.Location,
		Geohash:          geo.Encode(result.Location),
		Aliases:          []models.Alias{{RawText: rawText, MatchedAt: now}},
		Descriptions:     []models.Description{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	addr.Confidence = Confidence(addr)

	if err := as.store.Insert(ctx, addr); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	as.upsertIndex(addr)
	as.logger.Info("created canonical address",
		zap.String("id", addr.ID),
		zap.String("formatted", addr.FormattedAddress))
	return addr, nil
}

// AppendDescription attaches a contributed description to an address.
// The append is atomic at the store level so concurrent contributors
// cannot lose each other's writes.
func (as *AddressService) AppendDescription(ctx context.Context, addressID, content, contributorID string) error {
	if content == "" {
		return fmt.Errorf("description content must not be empty")
	}
	d := models.Description{
		Content:       content,
		CreatedAt:     time.Now().UTC(),
		ContributorID: contributorID,
	}
	if err := as.store.AddDescription(ctx, addressID, d); err != nil {
		return err
	}
	as.logger.Info("appended description",
		zap.String("id", addressID),
		zap.String("contributor", contributorID))
	return nil
}

// Get fetches a canonical address by id.
func (as *AddressService) Get(ctx context.Context, id string) (*models.CanonicalAddress, error) {
	return as.store.GetByID(ctx, id)
}

// Search queries the formatted-address search index.
func (as *AddressService) Search(query string, limit int64) ([]search.Document, error) {
	if as.index == nil {
		return nil, fmt.Errorf("search index not configured")
	}
	return as.index.Search(query, limit)
}

// geocode calls the collaborator and applies the validity rule, mapping
// failures onto the service error taxonomy.
func (as *AddressService) geocode(ctx context.Context, rawText string) (*geocode.Result, error) {
	result, err := as.geocoder.Geocode(ctx, rawText)
	if err != nil {
		if errors.Is(err, geocode.ErrNoResult) {
			return nil, ErrInvalidAddress
		}
		as.logger.Warn("geocoder unavailable", zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrGeocodingUnavailable, err)
	}
	if !result.Usable() {
		// Geocoded, but too coarse: postcode-only, or no street at all.
		return nil, ErrInvalidAddress
	}
	return result, nil
}

// nearest returns the first stored record within radius meters of p, or
// nil. Linear scan; fine at this collection's scale, and the geohash
// field is there when a spatial index becomes worth it.
func (as *AddressService) nearest(ctx context.Context, p models.LatLng, radius float64) (*models.CanonicalAddress, error) {
	all, err := as.store.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if geo.DistanceMeters(p, all[i].Location) <= radius {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (as *AddressService) nearestOrNil(ctx context.Context, p models.LatLng) (*models.CanonicalAddress, error) {
	return as.nearest(ctx, p, as.proximityMeters)
}

func (as *AddressService) upsertIndex(addr *models.CanonicalAddress) {
	if as.index == nil {
		return
	}
	if err := as.index.Upsert(addr); err != nil {
		as.logger.Warn("search index upsert failed", zap.Error(err), zap.String("id", addr.ID))
	}
}
