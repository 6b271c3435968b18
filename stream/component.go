package stream

import (
	"context"
	"fmt"

	"github.com/kbukum/codenexus/component"
	apperrors "github.com/kbukum/codenexus/errors"
	"github.com/kbukum/codenexus/logger"
)

const dispatcherName = "dispatcher"

var (
	_ component.Component   = (*Dispatcher)(nil)
	_ component.Describable = (*Dispatcher)(nil)
)

// Name implements component.Component.
func (d *Dispatcher) Name() string { return dispatcherName }

// Start fails when no handler is registered.
func (d *Dispatcher) Start(ctx context.Context) error {
	n := len(d.Handlers())
	if n == 0 {
		return apperrors.InvalidConfig("dispatcher has no registered handlers")
	}
	d.logger().Info("dispatcher started", logger.Fields("handlers", n, "workers", d.workers))
	return nil
}

// Stop implements component.Component.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.logger().Info("dispatcher stopped", logger.Fields("handlers", len(d.Handlers())))
	return nil
}

// Health is unhealthy while no handler is registered.
func (d *Dispatcher) Health(ctx context.Context) component.Health {
	n := len(d.Handlers())
	h := component.Health{
		Name:    dispatcherName,
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d handlers", n),
	}
	if n == 0 {
		h.Status = component.StatusUnhealthy
	}
	return h
}

// Describe implements component.Describable.
func (d *Dispatcher) Describe() component.Description {
	return component.Description{
		Name:    "Stream Dispatcher",
		Type:    "stream",
		Details: fmt.Sprintf("handlers=%d workers=%d", len(d.Handlers()), d.workers),
	}
}
