package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/address-registry/app/controllers"
)

// SetupAPIRoutes wires all versioned API routes.
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		addresses := v1.Group("/addresses")
		{
			addresses.POST("/resolve", addressController.ResolveAddress)
			addresses.POST("/validate", addressController.ValidateAddress)
			addresses.POST("/:id/descriptions", addressController.AppendDescription)
			addresses.GET("/search", addressController.SearchAddresses)
			addresses.GET("/:id", addressController.GetAddress)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/optimize", adminController.RunOptimization)
			admin.GET("/duplicates", adminController.PreviewDuplicates)
			admin.GET("/stats", adminController.GetStats)
			admin.POST("/cache/invalidate", adminController.InvalidateCache)
			admin.POST("/reindex", adminController.Reindex)
		}

		v1.GET("/health", addressController.HealthCheck)
	}
}

// SetupHealthRoutes wires the unversioned probe routes.
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", addressController.HealthCheck)
}

// SetupAllRoutes wires middleware and every route group.
func SetupAllRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	setupMiddleware(router)

	SetupHealthRoutes(router, addressController)
	SetupAPIRoutes(router, addressController, adminController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
}
