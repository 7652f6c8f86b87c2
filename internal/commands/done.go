package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. Running it on a completed task
// reopens it.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task between open and completed" }
func (c *DoneCmd) Usage() string     { return "taskflow done <ref>" }
func (c *DoneCmd) NeedsStore() bool  { return true }
func (c *DoneCmd) NeedsAuth() bool   { return false }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	tasks, st := env.Store.Tasks(ctx)
	warnStorage(errOut, st)

	target, err := ResolveTaskRef(tasks, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	toggled, st := env.Store.ToggleComplete(ctx, target.ID)
	if toggled == nil {
		fmt.Fprintf(errOut, "error: %v: %s\n", ErrTaskNotFound, target.ID)
		return exitcode.UserError
	}
	warnStorage(errOut, st)

	if !env.quiet() {
		if toggled.Completed {
			fmt.Fprintln(out, "ok")
		} else {
			fmt.Fprintln(out, "reopened")
		}
	}
	return exitcode.Success
}
