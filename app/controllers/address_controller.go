package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-registry/app/requests"
	"github.com/address-registry/app/responses"
	"github.com/address-registry/app/services"
)

// AddressController handles the public address endpoints.
type AddressController struct {
	addressService *services.AddressService
	logger         *zap.Logger
}

// NewAddressController creates an AddressController.
func NewAddressController(addressService *services.AddressService, logger *zap.Logger) *AddressController {
	return &AddressController{
		addressService: addressService,
		logger:         logger,
	}
}

// ResolveAddress resolves a raw address string against the registry.
func (ac *AddressController) ResolveAddress(c *gin.Context) {
	var req requests.ResolveAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	startTime := time.Now()

	result, err := ac.addressService.Resolve(c.Request.Context(), req.Address)
	if err != nil {
		ac.respondServiceError(c, err, "resolve address")
		return
	}

	c.JSON(http.StatusOK, responses.ResolveAddressResponse{
		Found:            result.Found,
		Strategy:         string(result.Strategy),
		Reason:           result.Reason,
		Address:          result.Address,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// ValidateAddress registers a raw address string: the canonical record
// for its location is found or created and returned.
func (ac *AddressController) ValidateAddress(c *gin.Context) {
	var req requests.ValidateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	addr, err := ac.addressService.CreateOrUpdate(c.Request.Context(), req.Address)
	if err != nil {
		ac.respondServiceError(c, err, "validate address")
		return
	}

	c.JSON(http.StatusOK, responses.ValidateAddressResponse{Address: addr})
}

// AppendDescription attaches a contributed description to an address.
func (ac *AddressController) AppendDescription(c *gin.Context) {
	id := c.Param("id")

	var req requests.AppendDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	if err := ac.addressService.AppendDescription(c.Request.Context(), id, req.Content, req.ContributorID); err != nil {
		ac.respondServiceError(c, err, "append description")
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "description appended",
	})
}

// GetAddress fetches a canonical address by id.
func (ac *AddressController) GetAddress(c *gin.Context) {
	addr, err := ac.addressService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ac.respondServiceError(c, err, "get address")
		return
	}
	c.JSON(http.StatusOK, addr)
}

// SearchAddresses queries the formatted-address search index.
func (ac *AddressController) SearchAddresses(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "MISSING_QUERY",
			Message: "query parameter q is required",
		})
		return
	}

	limit := int64(20)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	hits, err := ac.addressService.Search(query, limit)
	if err != nil {
		ac.logger.Error("search failed", zap.Error(err), zap.String("query", query))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "SEARCH_ERROR",
			Message: "search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.SearchAddressResponse{
		Query: query,
		Hits:  hits,
		Total: len(hits),
	})
}

// HealthCheck reports service liveness.
func (ac *AddressController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// respondServiceError maps the service error taxonomy onto HTTP codes.
func (ac *AddressController) respondServiceError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, services.ErrInvalidAddress):
		c.JSON(http.StatusUnprocessableEntity, responses.ErrorResponse{
			Error:   "INVALID_ADDRESS",
			Message: "address could not be geocoded to a street-level location",
		})
	case errors.Is(err, services.ErrGeocodingUnavailable):
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:   "GEOCODING_UNAVAILABLE",
			Message: "geocoding provider is unreachable, retry later",
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "ADDRESS_NOT_FOUND",
			Message: "no address with that id",
		})
	default:
		ac.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "INTERNAL_ERROR",
			Message: op + " failed: " + err.Error(),
		})
	}
}
