package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// logLevels orders the protocol levels from least to most severe.
var logLevels = []schema.LoggingLevel{
	schema.LoggingLevelDebug,
	schema.Info,
	schema.Notice,
	schema.Warning,
	schema.Err,
	schema.Critical,
	schema.Alert,
	schema.Emergency,
}

// LogLevels lists the valid logging levels in severity order.
func LogLevels() []string {
	ret := make([]string, 0, len(logLevels))
	for _, level := range logLevels {
		ret = append(ret, string(level))
	}
	return ret
}

func parseLogLevel(raw string) (schema.LoggingLevel, error) {
	for _, level := range logLevels {
		if string(level) == raw {
			return level, nil
		}
	}
	return "", fmt.Errorf("invalid logging level %q, valid levels: %v", raw, LogLevels())
}

// SetLoggingLevel changes the server logging verbosity. Invalid levels are
// rejected locally and nothing reaches the wire.
func (s *Session) SetLoggingLevel(ctx context.Context, raw string) error {
	level, err := parseLogLevel(raw)
	if err != nil {
		return err
	}
	rpcClient, err := s.readyClient()
	if err != nil {
		return err
	}
	_, err = rpcClient.SetLevel(ctx, &schema.SetLevelRequestParams{Level: level})
	return err
}

// initialLogLevel resolves the level announced right after the handshake:
// option, then MCP_LOG_LEVEL, then info. Unparseable values fall back to
// info rather than failing the connect.
func (s *Session) initialLogLevel() schema.LoggingLevel {
	raw := s.logLevel
	if raw == "" {
		raw = os.Getenv("MCP_LOG_LEVEL")
	}
	if raw == "" {
		return schema.Info
	}
	level, err := parseLogLevel(raw)
	if err != nil {
		s.warnf("%v, using info", err)
		return schema.Info
	}
	return level
}

var levelColors = map[schema.LoggingLevel]*color.Color{
	schema.LoggingLevelDebug: color.New(color.FgHiBlack),
	schema.Info:              color.New(color.FgCyan),
	schema.Notice:            color.New(color.FgGreen),
	schema.Warning:           color.New(color.FgYellow),
	schema.Err:               color.New(color.FgRed),
	schema.Critical:          color.New(color.FgRed, color.Bold),
	schema.Alert:             color.New(color.FgHiRed, color.Bold),
	schema.Emergency:         color.New(color.FgHiRed, color.Bold),
}

// onLogMessage renders a server log notification to the session output.
func (s *Session) onLogMessage(_ context.Context, notification *jsonrpc.Notification) {
	if s.quiet {
		return
	}
	params := &schema.LoggingMessageNotificationParams{}
	if err := json.Unmarshal(notification.Params, params); err != nil {
		s.warnf("malformed log notification: %v", err)
		return
	}
	label := string(params.Level)
	if painter, ok := levelColors[params.Level]; ok {
		label = painter.Sprint(label)
	}
	prefix := ""
	if params.Logger != nil && *params.Logger != "" {
		prefix = *params.Logger + ": "
	}
	data, _ := json.Marshal(params.Data)
	fmt.Fprintf(s.output, "[%s] %s%s\n", label, prefix, data)
}
