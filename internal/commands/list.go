package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/exitcode"
	"taskflow/internal/output"
	"taskflow/internal/query"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskflow` (no args) and `taskflow list [search...]`.
type ListCmd struct {
	filter string
	sort   string
	search string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskflow list [--filter <f>] [--sort <key>] [--search <term>] [term...]"
}
func (c *ListCmd) NeedsStore() bool { return true }
func (c *ListCmd) NeedsAuth() bool  { return false }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
	fs.StringVar(&c.sort, "sort", "", "")
	fs.StringVar(&c.sort, "s", "", "")
	fs.StringVar(&c.search, "search", "", "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	params, err := c.params(env, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	tasks, st := env.Store.Tasks(ctx)
	warnStorage(errOut, st)

	now := env.Now()
	view := query.Apply(tasks, params, now)
	if len(view) == 0 {
		if !env.quiet() {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	pos := positions(tasks)
	for _, t := range view {
		output.FormatTask(out, pos[t.ID], t, now, env.Styles)
	}
	return exitcode.Success
}

// params merges flags, positional search words and configured defaults.
func (c *ListCmd) params(env *Env, args []string) (query.Params, error) {
	filterName, sortName := c.filter, c.sort
	if env.Cfg != nil {
		if filterName == "" {
			filterName = env.Cfg.Defaults.Filter
		}
		if sortName == "" {
			sortName = env.Cfg.Defaults.Sort
		}
	}

	filter, err := query.ParseFilter(filterName)
	if err != nil {
		return query.Params{}, err
	}
	sortKey, err := query.ParseSort(sortName)
	if err != nil {
		return query.Params{}, err
	}

	search := c.search
	if search == "" {
		search = strings.Join(args, " ")
	}

	return query.Params{
		Filter:   filter,
		Search:   search,
		SortBy:   sortKey,
		Language: env.Language,
	}, nil
}
