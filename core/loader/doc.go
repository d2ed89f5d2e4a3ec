// Package loader provides the plugin-like feature loading system of the HTTP server.
//
// Each feature implements the Feature interface, which defines its lifecycle hooks
// and route registration logic.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager holds the registry of features and loads the enabled ones via LoadAll.
package loader
