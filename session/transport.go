package session

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sort"

	"github.com/viant/jsonrpc/transport"
	"github.com/viant/jsonrpc/transport/client/http/streamable"
	"github.com/viant/jsonrpc/transport/client/stdio"
	"golang.org/x/oauth2"

	"github.com/viant/mcpcli/client"
	"github.com/viant/mcpcli/target"
)

const (
	transportKindStdio      = "stdio"
	transportKindStreamable = "streamable"
)

// buildTransport spawns or connects the JSON-RPC channel for a resolved
// target. The returned kind string feeds handshake introspection.
func (s *Session) buildTransport(ctx context.Context, t target.Target) (transport.Transport, string, error) {
	clientHandler := client.NewHandler(s)
	switch actual := t.(type) {
	case *target.Script:
		command, args := s.withEnvOverrides(interpreterBinary(actual.Interpreter), append([]string{actual.Path}, actual.Args...))
		ret, err := stdio.New(command,
			stdio.WithHandler(clientHandler),
			stdio.WithArguments(args...))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create stdio transport: %w", err)
		}
		return ret, transportKindStdio, nil
	case *target.Npx:
		env := map[string]string{"NPM_CONFIG_UPDATE_NOTIFIER": "false"}
		for k, v := range s.env {
			env[k] = v
		}
		command, args := envWrap(env, npxBinary(), npxArgs(actual))
		ret, err := stdio.New(command,
			stdio.WithHandler(clientHandler),
			stdio.WithArguments(args...))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create stdio transport: %w", err)
		}
		return ret, transportKindStdio, nil
	case *target.HTTP:
		opts := []streamable.Option{streamable.WithHandler(clientHandler)}
		if httpClient := s.httpClient(ctx, actual); httpClient != nil {
			opts = append(opts, streamable.WithHTTPClient(httpClient))
		}
		ret, err := streamable.New(ctx, actual.URL, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create streamable transport: %w", err)
		}
		return ret, transportKindStreamable, nil
	default:
		return nil, "", fmt.Errorf("unsupported target: %T", t)
	}
}

// interpreterBinary resolves the interpreter executable; MCP_PYTHON
// overrides the python binary.
func interpreterBinary(interpreter target.Interpreter) string {
	switch interpreter {
	case target.InterpreterPython:
		if custom := os.Getenv("MCP_PYTHON"); custom != "" {
			return custom
		}
		return "python3"
	default:
		return "node"
	}
}

func npxBinary() string {
	if runtime.GOOS == "windows" {
		return "npx.cmd"
	}
	return "npx"
}

// npxArgs assembles the runner invocation. When a bin name is present the
// package rides in via -p so the bin can be addressed directly.
func npxArgs(t *target.Npx) []string {
	args := append([]string{}, t.RunnerArgs...)
	if t.Bin != "" {
		args = append(args, "-p", t.PackageWithVersion(), t.Bin)
	} else {
		args = append(args, t.PackageWithVersion())
	}
	return append(args, t.Args...)
}

// withEnvOverrides applies session env overrides to a command line via an
// env(1) wrapper; stdio transports expose no environment option.
func (s *Session) withEnvOverrides(command string, args []string) (string, []string) {
	return envWrap(s.env, command, args)
}

// envWrap prefixes the command with env(1) and sorted Key=Value pairs. The
// wrapper is POSIX only; on Windows there is no env binary, so overrides are
// skipped and the spawned server inherits the parent environment unchanged.
func envWrap(env map[string]string, command string, args []string) (string, []string) {
	if len(env) == 0 || runtime.GOOS == "windows" {
		return command, args
	}
	pairs := make([]string, 0, len(env))
	for k, v := range env {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	wrapped := append(pairs, command)
	return "env", append(wrapped, args...)
}

// httpClient builds an HTTP client carrying the bearer token and any static
// headers; nil means the transport default is fine.
func (s *Session) httpClient(ctx context.Context, t *target.HTTP) *http.Client {
	var ret *http.Client
	if s.bearerToken != "" {
		ret = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.bearerToken}))
	}
	if len(t.Headers) == 0 {
		return ret
	}
	if ret == nil {
		ret = &http.Client{}
	}
	base := ret.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	ret.Transport = &headerRoundTripper{base: base, headers: t.Headers}
	return ret
}

// headerRoundTripper injects static headers into every outgoing request.
type headerRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range h.headers {
		clone.Header.Set(k, v)
	}
	return h.base.RoundTrip(clone)
}
