package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/exitcode"
	"taskflow/internal/task"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	desc     string
	priority string
	category string
	due      string
	tags     string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskflow add [--desc <text>] [--priority <p>] [--category <c>] [--due <YYYY-MM-DD>] [--tags <a,b>] <title...>"
}
func (c *AddCmd) NeedsStore() bool { return true }
func (c *AddCmd) NeedsAuth() bool  { return false }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.desc, "d", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.category, "c", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.tags, "tags", "", "")
	fs.StringVar(&c.tags, "t", "", "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	draft, err := c.draft(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	created, st := env.Store.Create(ctx, draft)
	warnStorage(errOut, st)
	env.logger().Debug("task created", "id", created.ID)

	env.ok(out)
	return exitcode.Success
}

func (c *AddCmd) draft(args []string) (task.Draft, error) {
	d := task.Draft{
		Title:       strings.Join(args, " "),
		Description: c.desc,
		Tags:        task.ParseTags(c.tags),
	}

	var err error
	if c.priority != "" {
		if d.Priority, err = task.ParsePriority(c.priority); err != nil {
			return task.Draft{}, err
		}
	}
	if c.category != "" {
		if d.Category, err = task.ParseCategory(c.category); err != nil {
			return task.Draft{}, err
		}
	}
	if d.DueDate, err = task.ParseDate(c.due); err != nil {
		return task.Draft{}, err
	}

	if err := d.Validate(); err != nil {
		return task.Draft{}, err
	}
	return d, nil
}
