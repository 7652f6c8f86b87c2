package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
	"taskflow/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints every field of one task.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show task details" }
func (c *ShowCmd) Usage() string     { return "taskflow show <ref>" }
func (c *ShowCmd) NeedsStore() bool  { return true }
func (c *ShowCmd) NeedsAuth() bool   { return false }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	tasks, st := env.Store.Tasks(ctx)
	warnStorage(errOut, st)

	target, err := ResolveTaskRef(tasks, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	output.FormatTaskDetail(out, target, env.Now())
	return exitcode.Success
}
