package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"taskflow/internal/exitcode"
	"taskflow/internal/export"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd writes the collection as JSON, YAML, CSV or PDF.
type ExportCmd struct {
	format string
	out    string
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Export all tasks" }
func (c *ExportCmd) Usage() string {
	return "taskflow export [--format json|yaml|csv|pdf] [--out <file>]"
}
func (c *ExportCmd) NeedsStore() bool { return true }
func (c *ExportCmd) NeedsAuth() bool  { return false }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "", "")
	fs.StringVar(&c.out, "out", "", "")
	fs.StringVar(&c.out, "o", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	name := c.format
	if name == "" && c.out != "" {
		name = strings.TrimPrefix(filepath.Ext(c.out), ".")
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if c.out == "" && format == export.FormatPDF {
		fmt.Fprintln(errOut, "error: pdf export needs --out")
		return exitcode.UserError
	}

	tasks, st := env.Store.Tasks(ctx)
	warnStorage(errOut, st)

	if c.out == "" {
		if err := export.Write(out, format, tasks, env.Now()); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return exitcode.Success
	}

	f, err := os.Create(c.out)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := export.Write(f, format, tasks, env.Now()); err != nil {
		f.Close()
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !env.quiet() {
		fmt.Fprintf(out, "exported %d tasks to %s\n", len(tasks), c.out)
	}
	return exitcode.Success
}
