package widgets

import (
	core "github.com/edgekit/go-widgets/components/widgets"
)

// Service exposes the underlying components/widgets.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Registry re-exports the provider registry.
type Registry = core.Registry

// Controller re-exports the layout controller.
type Controller = core.Controller

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewRegistry proxies to the internal constructor.
func NewRegistry() *Registry {
	return core.NewRegistry()
}
