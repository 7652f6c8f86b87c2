package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
	"taskflow/internal/output"
	"taskflow/internal/query"
)

func init() {
	Register(&StatsCmd{})
}

// StatsCmd prints collection totals.
type StatsCmd struct{}

func (c *StatsCmd) Name() string      { return "stats" }
func (c *StatsCmd) Aliases() []string { return nil }
func (c *StatsCmd) Synopsis() string  { return "Print task statistics" }
func (c *StatsCmd) Usage() string     { return "taskflow stats" }
func (c *StatsCmd) NeedsStore() bool  { return true }
func (c *StatsCmd) NeedsAuth() bool   { return false }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	tasks, st := env.Store.Tasks(ctx)
	warnStorage(errOut, st)

	output.FormatStats(out, query.Summarize(tasks, env.Now()), env.Styles)
	return exitcode.Success
}
