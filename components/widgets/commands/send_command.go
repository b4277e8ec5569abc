package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/edgekit/go-widgets/components/datasource"
	widgets "github.com/edgekit/go-widgets/components/widgets"
)

// SendCommandInput dispatches a device or extension command. The target is a
// selection key, so only command-shaped sources are accepted.
type SendCommandInput struct {
	Item    datasource.SelectedItem `json:"item"`
	Payload map[string]any          `json:"payload"`
	UserID  string                  `json:"user_id"`
}

// SendCommandCommand forwards command invocations to the backend sender.
type SendCommandCommand struct {
	sender    widgets.CommandSender
	telemetry Telemetry
}

// NewSendCommandCommand creates the command.
func NewSendCommandCommand(sender widgets.CommandSender, telemetry Telemetry) *SendCommandCommand {
	return &SendCommandCommand{sender: sender, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SendCommandInput] = (*SendCommandCommand)(nil)

// Execute decodes the target and dispatches the command.
func (c *SendCommandCommand) Execute(ctx context.Context, msg SendCommandInput) error {
	if c.sender == nil {
		return errors.New("send command requires sender")
	}
	src, ok := datasource.DecodeKey(msg.Item)
	if !ok {
		return errors.New("send command requires a valid selection key")
	}
	if src.Type != datasource.TypeCommand && src.Type != datasource.TypeExtensionCommand {
		return errors.New("send command target must be a command source")
	}
	if err := c.sender.SendCommand(ctx, src, msg.Payload); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "widgets.command.send", map[string]any{
		"item": string(msg.Item),
	})
	return nil
}
