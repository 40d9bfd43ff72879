package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

const shellHelp = `commands:
  tools                    list server tools
  describe <tool>          show a tool definition
  call <tool> [json]       invoke a tool
  resources                list cached resources
  resource <uri>           show a cached resource
  read <uri>               read resource contents
  log-level <level>        change server logging verbosity
  ping                     probe server liveness
  info                     show negotiated session state
  help                     show this help
  exit                     leave the shell`

// shell runs an interactive loop over the connected session.
func (a *app) shell(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(shellHelp)
	for {
		fmt.Print("mcp> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "exit", "quit":
			return nil
		case "help":
			fmt.Println(shellHelp)
			continue
		case "shell":
			continue
		}
		if err := a.execute(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}
