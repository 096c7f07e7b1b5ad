// Package plugins hosts plugins that react to build lifecycle events.
//
// A plugin subscribes to named events through the Host handed to it on
// Initialize. The Manager delivers events synchronously, in registration
// order, and stops at the first handler error.
package plugins

import (
	"context"
	"path/filepath"
	"time"

	"github.com/conneroisu/transmerge/internal/logging"
)

// EventAssetsBaseStylesCopied is emitted once a module's assets have been
// staged.
const EventAssetsBaseStylesCopied = "ASSETS_BASE_STYLES_COPIED"

// Plugin represents a transmerge plugin
type Plugin interface {
	// Name returns the unique name of the plugin
	Name() string

	// Version returns the version of the plugin
	Version() string

	// Description returns a description of what the plugin does
	Description() string

	// Initialize subscribes the plugin to the events it handles
	Initialize(ctx context.Context, host Host) error

	// Shutdown gracefully shuts down the plugin
	Shutdown(ctx context.Context) error

	// Health returns the health status of the plugin
	Health() PluginHealth
}

// EventHandler handles one lifecycle event.
type EventHandler func(ctx context.Context, event Event) error

// Host is the plugin's view of the manager.
type Host interface {
	On(event string, handler EventHandler)
	Logger() logging.Logger
}

// Module identifies the module an event was raised for.
type Module struct {
	Name     string `json:"name"`
	BasePath string `json:"base_path"`
	IsHost   bool   `json:"is_host"`
}

// DisplayName is the directory name for the host module and the module
// name otherwise.
func (m Module) DisplayName() string {
	if m.IsHost && m.BasePath != "" {
		return filepath.Base(m.BasePath)
	}
	return m.Name
}

// Event is a lifecycle notification.
type Event struct {
	Name      string    `json:"name"`
	Module    Module    `json:"module"`
	Timestamp time.Time `json:"timestamp"`
}

// PluginHealth represents the health status of a plugin
type PluginHealth struct {
	// Status of the plugin
	Status HealthStatus `json:"status"`

	// Last check timestamp
	LastCheck time.Time `json:"last_check"`

	// Error message if unhealthy
	Error string `json:"error,omitempty"`

	// Additional health metrics
	Metrics map[string]interface{} `json:"metrics,omitempty"`
}

// HealthStatus represents the health status values
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnknown   HealthStatus = "unknown"
)

// PluginInfo contains information about a registered plugin
type PluginInfo struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description"`
	Initialized bool         `json:"initialized"`
	Events      []string     `json:"events"`
	Health      PluginHealth `json:"health"`
}
