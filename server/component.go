package server

import (
	"context"
	"fmt"

	"github.com/kbukum/codenexus/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Server)(nil)
	_ component.Describable = (*Server)(nil)
)

// Name implements component.Component.
func (s *Server) Name() string { return componentName }

// Health is healthy once the listener is bound.
func (s *Server) Health(ctx context.Context) component.Health {
	s.mu.Lock()
	bound := s.listener != nil
	s.mu.Unlock()
	if !bound {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy, Message: s.Addr()}
}

// Describe implements component.Describable.
func (s *Server) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s:%d routes=%d", s.config.Host, s.config.Port, len(s.engine.Routes())),
		Port:    s.config.Port,
	}
}
