package pipeline

import (
	"context"
	"fmt"

	"github.com/kbukum/codenexus/component"
	apperrors "github.com/kbukum/codenexus/errors"
	"github.com/kbukum/codenexus/logger"
)

var (
	_ component.Component   = (*Manager)(nil)
	_ component.Describable = (*Manager)(nil)
)

// Name implements component.Component.
func (m *Manager) Name() string { return managerComponent }

// Start fails when no pipeline is registered.
func (m *Manager) Start(ctx context.Context) error {
	n := len(m.Pipelines())
	if n == 0 {
		return apperrors.InvalidConfig("manager has no registered pipelines")
	}
	m.logger().Info("manager started", logger.Fields("pipelines", n, "workers", m.workers))
	return nil
}

// Stop logs the final counters.
func (m *Manager) Stop(ctx context.Context) error {
	s := m.Stats()
	m.logger().Info("manager stopped", logger.Fields(
		"processed", s.Processed,
		"chained", s.Chained,
		"errors", s.Errors,
	))
	return nil
}

// Health is unhealthy while no pipeline is registered.
func (m *Manager) Health(ctx context.Context) component.Health {
	s := m.Stats()
	h := component.Health{
		Name:    managerComponent,
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d pipelines, %d processed, %d chained, %d errors", s.TotalPipelines, s.Processed, s.Chained, s.Errors),
	}
	if s.TotalPipelines == 0 {
		h.Status = component.StatusUnhealthy
	}
	return h
}

// Describe implements component.Describable.
func (m *Manager) Describe() component.Description {
	return component.Description{
		Name:    "Pipeline Manager",
		Type:    "pipeline",
		Details: fmt.Sprintf("pipelines=%d workers=%d", len(m.Pipelines()), m.workers),
	}
}
