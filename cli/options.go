package cli

import (
	"fmt"
	"strings"
)

// Options defines the command line surface.
type Options struct {
	Server   string   `short:"s" long:"server" description:"server spec: http(s) URL, npx:package[@version][#bin] or a .js/.py script" required:"true"`
	Quiet    bool     `short:"q" long:"quiet" description:"suppress server log notifications"`
	LogLevel string   `short:"l" long:"log-level" description:"initial server logging level"`
	Headers  []string `short:"H" long:"header" description:"extra HTTP header, Key=Value, repeatable"`
	Token    string   `short:"t" long:"token" description:"bearer token for HTTP transports"`
	Env      []string `short:"e" long:"env" description:"environment override for spawned servers, Key=Value, repeatable"`
	Output   string   `short:"o" long:"output" description:"write command output to URL instead of stdout, e.g. file or s3://bucket/key"`

	Args struct {
		Command string   `positional-arg-name:"command" description:"tools | describe | call | resources | resource | read | log-level | ping | info | shell"`
		Rest    []string `positional-arg-name:"args"`
	} `positional-args:"yes"`
}

// pairs parses repeated Key=Value flags.
func pairs(raw []string, flag string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ret := make(map[string]string, len(raw))
	for _, item := range raw {
		index := strings.Index(item, "=")
		if index <= 0 {
			return nil, fmt.Errorf("invalid %v %q, expected Key=Value", flag, item)
		}
		ret[item[:index]] = item[index+1:]
	}
	return ret, nil
}
