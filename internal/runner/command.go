package runner

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandKind identifies a learner command typed on stdin.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdHint
	CmdStatus
	CmdQuit
	CmdHelp
)

// Command is a parsed learner command. Slot is 0 when no slot was named.
type Command struct {
	Kind CommandKind
	Slot int
}

// Usage lists the accepted commands.
const Usage = "commands: hint [n], status, quit, help"

// ParseCommand parses one line of learner input. Blank lines parse to
// CmdUnknown with no error.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, nil
	}

	switch fields[0] {
	case "hint", "h":
		cmd := Command{Kind: CmdHint}
		if len(fields) > 1 {
			n, err := strconv.Atoi(strings.TrimPrefix(fields[1], "#"))
			if err != nil || n < 1 {
				return Command{}, fmt.Errorf("hint: %q is not a TODO number", fields[1])
			}
			cmd.Slot = n
		}
		return cmd, nil
	case "status", "s":
		return Command{Kind: CmdStatus}, nil
	case "quit", "q", "exit":
		return Command{Kind: CmdQuit}, nil
	case "help", "?":
		return Command{Kind: CmdHelp}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q (%s)", fields[0], Usage)
}
