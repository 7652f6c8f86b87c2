package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/exitcode"
	"taskflow/internal/service"
	"taskflow/internal/store"
)

func init() {
	Register(&ImportCmd{})
}

// ImportCmd copies tasks from Google Tasks into the local store.
// Remote tasks whose title already exists locally are skipped.
type ImportCmd struct {
	listName  string
	allLists  bool
	completed bool
}

func (c *ImportCmd) Name() string      { return "import" }
func (c *ImportCmd) Aliases() []string { return nil }
func (c *ImportCmd) Synopsis() string  { return "Import tasks from Google Tasks" }
func (c *ImportCmd) Usage() string {
	return "taskflow import [--list <list-name> | --all] [--completed]"
}
func (c *ImportCmd) NeedsStore() bool { return true }
func (c *ImportCmd) NeedsAuth() bool  { return true }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.BoolVar(&c.allLists, "all", false, "")
	fs.BoolVar(&c.completed, "completed", false, "")
}

func (c *ImportCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.listName != "" && c.allLists {
		fmt.Fprintln(errOut, "error: cannot use both --list and --all")
		return exitcode.UserError
	}

	lists, err := c.lists(ctx, env.Service)
	if err != nil {
		return reportRemoteError(errOut, err, c.listName)
	}

	existing, st := env.Store.Tasks(ctx)
	warnStorage(errOut, st)
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[titleKey(t.Title)] = true
	}

	var imported, skipped int
	var storeErrs []error
	for _, list := range lists {
		remote, err := env.Service.ListTasks(ctx, list.ID, c.completed)
		if err != nil {
			return reportRemoteError(errOut, err, list.Title)
		}

		// Create prepends, so walk backwards to keep the remote order on top.
		for i := len(remote) - 1; i >= 0; i-- {
			draft := remote[i].Draft(list.Title)
			key := titleKey(draft.Title)
			if draft.Validate() != nil || seen[key] {
				skipped++
				continue
			}
			seen[key] = true

			created, st := env.Store.Create(ctx, draft)
			storeErrs = append(storeErrs, st.Err)
			if remote[i].Completed() {
				_, st = env.Store.ToggleComplete(ctx, created.ID)
				storeErrs = append(storeErrs, st.Err)
			}
			imported++
		}
		env.logger().Debug("list imported", "list", list.Title, "remote", len(remote))
	}
	warnStorage(errOut, store.Status{Err: errors.Join(storeErrs...)})

	if !env.quiet() {
		fmt.Fprintf(out, "imported %d, skipped %d\n", imported, skipped)
	}
	return exitcode.Success
}

func (c *ImportCmd) lists(ctx context.Context, svc service.Service) ([]service.TaskList, error) {
	switch {
	case c.allLists:
		return svc.ListLists(ctx)
	case c.listName != "":
		list, err := svc.ResolveList(ctx, c.listName)
		if err != nil {
			return nil, err
		}
		return []service.TaskList{list}, nil
	default:
		list, err := svc.DefaultList(ctx)
		if err != nil {
			return nil, err
		}
		return []service.TaskList{list}, nil
	}
}

// titleKey normalizes a title for duplicate detection.
func titleKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// reportRemoteError prints a remote failure and maps it to an exit code.
func reportRemoteError(errOut io.Writer, err error, listName string) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: list not found: %s\n", listName)
		return exitcode.UserError
	case errors.Is(err, service.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: ambiguous list name: %s\n", listName)
		return exitcode.UserError
	case errors.Is(err, service.ErrAuth):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
