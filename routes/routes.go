package routes

// Package routes wires the HTTP routing for the Address Registry Service.
//
// Layout:
// - api.go: versioned API routes (/v1/*), health probes and middleware
//
// Usage:
// routes.SetupAllRoutes(router, addressController, adminController)
