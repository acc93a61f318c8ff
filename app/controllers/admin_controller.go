package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-registry/app/responses"
	"github.com/address-registry/app/services"
)

// AdminController handles the operator endpoints.
type AdminController struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

// NewAdminController creates an AdminController.
func NewAdminController(adminService *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// RunOptimization triggers a synchronous optimization pass and returns
// its report. Partial failure is a 200: the report carries the errors.
func (ac *AdminController) RunOptimization(c *gin.Context) {
	report, err := ac.adminService.RunOptimization(c.Request.Context())
	if err != nil {
		ac.logger.Error("optimization pass failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "OPTIMIZATION_ERROR",
			Message: "optimization pass failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.OptimizationResponse{
		RecordsScanned:   report.RecordsScanned,
		ClustersFound:    report.ClustersFound,
		ClustersMerged:   report.ClustersMerged,
		AddressesRemoved: report.AddressesRemoved,
		Errors:           report.Errors,
		DurationMs:       report.Duration.Milliseconds(),
	})
}

// PreviewDuplicates lists the duplicate clusters the next optimization
// pass would merge, without merging them.
func (ac *AdminController) PreviewDuplicates(c *gin.Context) {
	candidates, err := ac.adminService.PreviewDuplicates(c.Request.Context())
	if err != nil {
		ac.logger.Error("duplicate preview failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "PREVIEW_ERROR",
			Message: "duplicate preview failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Data:    candidates,
	})
}

// GetStats reports collection size and resolve-cache counters.
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.Stats(c.Request.Context())
	if err != nil {
		ac.logger.Error("stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "STATS_ERROR",
			Message: "stats failed: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// InvalidateCache drops every cached resolve result.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	if err := ac.adminService.InvalidateCache(c.Request.Context()); err != nil {
		ac.logger.Error("cache invalidation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "CACHE_ERROR",
			Message: "cache invalidation failed: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "resolve cache cleared",
	})
}

// Reindex pushes every stored record into the search index.
func (ac *AdminController) Reindex(c *gin.Context) {
	count, err := ac.adminService.Reindex(c.Request.Context())
	if err != nil {
		ac.logger.Error("reindex failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "REINDEX_ERROR",
			Message: "reindex failed: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Data:    gin.H{"indexed": count},
	})
}
