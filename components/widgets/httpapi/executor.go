package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	widgets "github.com/edgekit/go-widgets/components/widgets"
	"github.com/edgekit/go-widgets/components/widgets/commands"
)

// Executor is the command surface transports call into. It decouples route
// registration from the concrete command wiring.
type Executor interface {
	Assign(ctx context.Context, msg widgets.AddWidgetRequest) error
	Update(ctx context.Context, msg commands.UpdateWidgetInput) error
	Remove(ctx context.Context, msg commands.RemoveWidgetInput) error
	Reorder(ctx context.Context, msg commands.ReorderWidgetsInput) error
	Refresh(ctx context.Context, msg commands.RefreshWidgetInput) error
	Preferences(ctx context.Context, msg commands.SaveLayoutPreferencesInput) error
	Bind(ctx context.Context, msg commands.BindDataSourceInput) error
	SendCommand(ctx context.Context, msg commands.SendCommandInput) error
}

// CommandExecutor implements Executor over go-command commanders. Nil fields
// reject their operation.
type CommandExecutor struct {
	AssignCmd      gocommand.Commander[widgets.AddWidgetRequest]
	UpdateCmd      gocommand.Commander[commands.UpdateWidgetInput]
	RemoveCmd      gocommand.Commander[commands.RemoveWidgetInput]
	ReorderCmd     gocommand.Commander[commands.ReorderWidgetsInput]
	RefreshCmd     gocommand.Commander[commands.RefreshWidgetInput]
	PreferencesCmd gocommand.Commander[commands.SaveLayoutPreferencesInput]
	BindCmd        gocommand.Commander[commands.BindDataSourceInput]
	SendCommandCmd gocommand.Commander[commands.SendCommandInput]
}

var _ Executor = (*CommandExecutor)(nil)

var errNotConfigured = errors.New("httpapi: operation not configured")

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func (e *CommandExecutor) Assign(ctx context.Context, msg widgets.AddWidgetRequest) error {
	return execute(ctx, e.AssignCmd, msg)
}

func (e *CommandExecutor) Update(ctx context.Context, msg commands.UpdateWidgetInput) error {
	return execute(ctx, e.UpdateCmd, msg)
}

func (e *CommandExecutor) Remove(ctx context.Context, msg commands.RemoveWidgetInput) error {
	return execute(ctx, e.RemoveCmd, msg)
}

func (e *CommandExecutor) Reorder(ctx context.Context, msg commands.ReorderWidgetsInput) error {
	return execute(ctx, e.ReorderCmd, msg)
}

func (e *CommandExecutor) Refresh(ctx context.Context, msg commands.RefreshWidgetInput) error {
	return execute(ctx, e.RefreshCmd, msg)
}

func (e *CommandExecutor) Preferences(ctx context.Context, msg commands.SaveLayoutPreferencesInput) error {
	return execute(ctx, e.PreferencesCmd, msg)
}

func (e *CommandExecutor) Bind(ctx context.Context, msg commands.BindDataSourceInput) error {
	return execute(ctx, e.BindCmd, msg)
}

func (e *CommandExecutor) SendCommand(ctx context.Context, msg commands.SendCommandInput) error {
	return execute(ctx, e.SendCommandCmd, msg)
}
