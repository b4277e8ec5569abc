package activity

import "context"

// Config controls emitter behavior.
type Config struct {
	// Enabled gates all emission; an emitter without hooks is always
	// disabled.
	Enabled bool
	// Channel overrides the default channel stamped on events.
	Channel string
}

// Emitter delivers activity events to its hooks.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
}

// NewEmitter builds an emitter. It is disabled when no hooks are provided.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{
		hooks:   hooks,
		enabled: cfg.Enabled && len(hooks) > 0,
		channel: channel,
	}
}

// Enabled reports whether events will be delivered.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit stamps the configured channel on the event and notifies hooks. A
// disabled emitter silently drops events.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.channel
	}
	return e.hooks.Notify(ctx, evt)
}
