package console

import (
	"context"
	"errors"

	activitypkg "github.com/edgekit/go-widgets/pkg/activity"
	widgetspkg "github.com/edgekit/go-widgets/pkg/widgets"
)

// MenuBuilder ensures dashboard entries exist within the console navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures dashboard link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the widget service + feature flags into a console shell.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *widgetspkg.Service
	DefaultMenuItem MenuItem
	ActivityHooks   activitypkg.Hooks
	ActivityConfig  activitypkg.Config
}

// Console exposes helpers for admin-console style applications.
type Console struct {
	cfg Config
}

// New creates a Console helper that can seed dashboard menus.
func New(cfg Config) (*Console, error) {
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errors.New("console: widget service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "console.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Dashboard"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "console.dashboard"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "grid"
	}
	return &Console{cfg: cfg}, nil
}

// Dashboard exposes the configured widget service when enabled.
func (c *Console) Dashboard() *widgetspkg.Service {
	if !c.cfg.EnableDashboard {
		return nil
	}
	return c.cfg.Service
}

// Activity builds an emitter from the configured hooks.
func (c *Console) Activity() *activitypkg.Emitter {
	return activitypkg.NewEmitter(c.cfg.ActivityHooks, c.cfg.ActivityConfig)
}

// Bootstrap seeds menu entries when dashboard support is enabled.
func (c *Console) Bootstrap(ctx context.Context) error {
	if !c.cfg.EnableDashboard || c.cfg.MenuBuilder == nil {
		return nil
	}
	return c.cfg.MenuBuilder.EnsureMenuItem(ctx, c.cfg.MenuCode, c.cfg.DefaultMenuItem)
}
