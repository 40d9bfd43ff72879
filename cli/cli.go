package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/viant/mcpcli/session"
	"github.com/viant/mcpcli/target"
)

// Run parses command line arguments, connects the session and executes the
// requested command.
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	if options.Args.Command == "" {
		return fmt.Errorf("missing command, expected one of: tools, describe, call, resources, resource, read, log-level, ping, info, shell")
	}

	env, err := pairs(options.Env, "--env")
	if err != nil {
		return err
	}
	headers, err := pairs(options.Headers, "--header")
	if err != nil {
		return err
	}
	serverTarget, err := target.Parse(options.Server, nil)
	if err != nil {
		return err
	}
	if httpTarget, ok := serverTarget.(*target.HTTP); ok {
		for k, v := range headers {
			httpTarget.Headers[k] = v
		}
	} else if len(headers) > 0 {
		return fmt.Errorf("--header applies to http(s) servers only")
	}

	sessionOptions := []session.Option{
		session.WithQuiet(options.Quiet),
		session.WithEnv(env),
	}
	if options.Token != "" {
		sessionOptions = append(sessionOptions, session.WithBearerToken(options.Token))
	}
	if options.LogLevel != "" {
		sessionOptions = append(sessionOptions, session.WithLogLevel(options.LogLevel))
	}

	ctx := context.Background()
	mcpSession := session.New(sessionOptions...)
	if err = mcpSession.Connect(ctx, serverTarget); err != nil {
		return err
	}
	defer mcpSession.Disconnect()

	a := &app{session: mcpSession, renderer: newRenderer(options.Output)}
	return a.execute(ctx, options.Args.Command, options.Args.Rest)
}

type app struct {
	session  *session.Session
	renderer *renderer
}

func (a *app) execute(ctx context.Context, command string, args []string) error {
	switch command {
	case "tools":
		return a.renderer.render(ctx, a.session.Tools())
	case "describe":
		if len(args) < 1 {
			return fmt.Errorf("usage: describe <tool>")
		}
		tool, ok := a.session.DescribeTool(args[0])
		if !ok {
			return fmt.Errorf("unknown tool: %v", args[0])
		}
		return a.renderer.render(ctx, tool)
	case "call":
		if len(args) < 1 {
			return fmt.Errorf("usage: call <tool> [json-arguments]")
		}
		var toolArgs map[string]interface{}
		if len(args) > 1 {
			raw := strings.Join(args[1:], " ")
			if err := json.Unmarshal([]byte(raw), &toolArgs); err != nil {
				return fmt.Errorf("invalid tool arguments %q: %w", raw, err)
			}
		}
		result, err := a.session.CallTool(ctx, args[0], toolArgs)
		if err != nil {
			return err
		}
		return a.renderer.render(ctx, result)
	case "resources":
		return a.renderer.render(ctx, a.session.Resources())
	case "resource":
		if len(args) < 1 {
			return fmt.Errorf("usage: resource <uri>")
		}
		resource, ok := a.session.Resource(args[0])
		if !ok {
			return fmt.Errorf("unknown resource: %v", args[0])
		}
		return a.renderer.render(ctx, resource)
	case "read":
		if len(args) < 1 {
			return fmt.Errorf("usage: read <uri>")
		}
		result, err := a.session.ReadResource(ctx, args[0])
		if err != nil {
			return err
		}
		return a.renderer.render(ctx, result)
	case "log-level":
		if len(args) < 1 {
			return fmt.Errorf("usage: log-level <%v>", strings.Join(session.LogLevels(), "|"))
		}
		return a.session.SetLoggingLevel(ctx, args[0])
	case "ping":
		if err := a.session.Ping(ctx); err != nil {
			return err
		}
		return a.renderer.render(ctx, map[string]string{"status": "ok"})
	case "info":
		if err := a.session.VerifyHandshake(); err != nil {
			return err
		}
		return a.renderer.render(ctx, a.session.Handshake())
	case "shell":
		return a.shell(ctx)
	default:
		return fmt.Errorf("unknown command: %v", command)
	}
}
