package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd prints the command overview, or the usage of one command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskflow help [command]" }
func (c *HelpCmd) NeedsStore() bool  { return false }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		cmd, ok := DefaultRegistry.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "Usage:\n  %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
		}
		return exitcode.Success
	}

	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  taskflow                List tasks with the configured view")
	fmt.Fprintln(out, "  taskflow <command> [flags] [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range DefaultRegistry.All() {
		line := fmt.Sprintf("  %-10s %s", cmd.Name(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			line += fmt.Sprintf(" (alias: %s)", strings.Join(aliases, ", "))
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprint(out, helpFooter)
	return exitcode.Success
}

const helpFooter = `
Task references:
  <n>        number shown by list
  <id>       full task id or a unique prefix of it

Filters: all, pending, completed, overdue
Sort keys: created, dueDate, priority, title
Priorities: low, medium, high
Categories: personal, work, health, education, finance, other

Common flags:
  --config <dir>   Override config directory
  --quiet, -q      Suppress informational output
  --debug          Print debug logs to stderr
  --color          Force colored output

Run 'taskflow help <command>' for the flags of one command.
`
