package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/exitcode"
	"taskflow/internal/task"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
// Only the flags given on the command line are changed.
type EditCmd struct {
	title    optString
	desc     optString
	priority optString
	category optString
	due      optString
	tags     optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "taskflow edit <ref> [--title <t>] [--desc <text>] [--priority <p>] [--category <c>] [--due <YYYY-MM-DD|none>] [--tags <a,b>]"
}
func (c *EditCmd) NeedsStore() bool { return true }
func (c *EditCmd) NeedsAuth() bool  { return false }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.desc, "d", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.Var(&c.category, "category", "")
	fs.Var(&c.category, "c", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.tags, "tags", "")
	fs.Var(&c.tags, "t", "")
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	patch, err := c.patch()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	tasks, st := env.Store.Tasks(ctx)
	warnStorage(errOut, st)

	target, err := ResolveTaskRef(tasks, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	updated, st := env.Store.Update(ctx, target.ID, patch)
	if updated == nil {
		fmt.Fprintf(errOut, "error: %v: %s\n", ErrTaskNotFound, target.ID)
		return exitcode.UserError
	}
	warnStorage(errOut, st)

	env.ok(out)
	return exitcode.Success
}

func (c *EditCmd) patch() (task.Patch, error) {
	p := task.Patch{
		Title:       c.title.ptr(),
		Description: c.desc.ptr(),
	}

	if c.priority.set {
		prio, err := task.ParsePriority(c.priority.value)
		if err != nil {
			return task.Patch{}, err
		}
		p.Priority = &prio
	}
	if c.category.set {
		cat, err := task.ParseCategory(c.category.value)
		if err != nil {
			return task.Patch{}, err
		}
		p.Category = &cat
	}
	if c.due.set {
		var due task.Date
		if v := strings.TrimSpace(c.due.value); !strings.EqualFold(v, "none") {
			d, err := task.ParseDate(v)
			if err != nil {
				return task.Patch{}, err
			}
			due = d
		}
		p.DueDate = &due
	}
	if c.tags.set {
		p.Tags = task.ParseTags(c.tags.value)
	}

	if p.IsEmpty() {
		return task.Patch{}, errors.New("nothing to change")
	}
	if err := p.Validate(); err != nil {
		return task.Patch{}, err
	}
	return p, nil
}
