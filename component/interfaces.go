package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed part of the nexus runtime.
type Component interface {
	// Name returns the unique registration name.
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources. It must be safe to call after a failed Start.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is the startup summary of a component.
type Description struct {
	// Name is the display name; Component.Name is used when empty.
	Name string
	// Type categorizes the component: "pipeline", "stream", "server".
	Type    string
	Details string
	Port    int
}

// Describable is optionally implemented by components that report a startup summary.
type Describable interface {
	Describe() Description
}
