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
	Register(&ListsCmd{})
}

// ListsCmd prints the remote task lists that import can read from.
type ListsCmd struct{}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Print Google Tasks lists" }
func (c *ListsCmd) Usage() string     { return "taskflow lists [common flags]" }
func (c *ListsCmd) NeedsStore() bool  { return false }
func (c *ListsCmd) NeedsAuth() bool   { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	lists, err := env.Service.ListLists(ctx)
	if err != nil {
		return reportRemoteError(errOut, err, "")
	}

	if len(lists) == 0 {
		if !env.quiet() {
			fmt.Fprintln(out, "no lists found")
		}
		return exitcode.Success
	}
	for _, list := range lists {
		output.FormatListName(out, list.Title, list.IsDefault)
	}
	return exitcode.Success
}
