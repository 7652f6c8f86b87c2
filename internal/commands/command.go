// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"taskflow/internal/config"
	"taskflow/internal/output"
	"taskflow/internal/service"
	"taskflow/internal/store"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsStore returns true if the command reads or writes local tasks.
	NeedsStore() bool

	// NeedsAuth returns true if the command talks to the remote service.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// env.Cfg is always provided (config dir, paths).
	// env.Store is nil if NeedsStore() returns false.
	// env.Service is nil if NeedsAuth() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Env carries the dependencies a command runs against.
type Env struct {
	Cfg     *config.Config
	Store   *store.Store
	Service service.Service
	Styles  output.Styles
	Log     *slog.Logger

	// Language selects the collation for title sorting.
	Language language.Tag

	// Clock overrides time.Now when set.
	Clock func() time.Time
}

// Now returns the current time from Clock or the system clock.
func (e *Env) Now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

func (e *Env) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}

// quiet reports whether informational output is suppressed.
func (e *Env) quiet() bool {
	return e.Cfg != nil && e.Cfg.Quiet
}

// ok prints the acknowledgement line unless quiet.
func (e *Env) ok(out io.Writer) {
	if !e.quiet() {
		fmt.Fprintln(out, "ok")
	}
}

// warnStorage reports an absorbed storage failure. The command still succeeds.
func warnStorage(errOut io.Writer, st store.Status) {
	if !st.OK() {
		fmt.Fprintf(errOut, "warning: storage: %v\n", st.Err)
	}
}
