// Package cli parses the command line and runs the selected command.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/language"

	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/logging"
	"taskflow/internal/output"
	"taskflow/internal/service"
	"taskflow/internal/store"
)

// ServiceFactory creates the remote Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// StoreFactory opens the task store described by cfg. The returned close
// function releases the storage backend.
type StoreFactory func(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.Store, func() error, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	stores   StoreFactory
	services ServiceFactory

	// Terminal reports whether stdout is a terminal. The config color
	// setting only applies to terminals; --color always applies.
	Terminal bool

	// LogOutput receives log records. Defaults to errOut.
	LogOutput io.Writer

	// Language is the collation used for title sorting.
	Language language.Tag

	// Clock overrides time.Now for commands.
	Clock func() time.Time
}

// NewDispatcher creates a new dispatcher with the given registry and factories.
func NewDispatcher(registry *commands.Registry, stores StoreFactory, services ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		stores:   stores,
		services: services,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet, debug, color bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&quiet, "q", false, "")
	fs.BoolVar(&debug, "debug", false, "")
	fs.BoolVar(&color, "color", false, "")

	cmd.RegisterFlags(fs)

	positionalArgs, err := parseInterspersed(fs, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagErrorMessage(err))
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	logOut := d.LogOutput
	if logOut == nil {
		logOut = errOut
	}
	log := logging.Setup(logOut, debug)

	env := &commands.Env{
		Cfg:      cfg,
		Styles:   output.NewStyles(color || (cfg.Color && d.Terminal)),
		Log:      log,
		Language: d.Language,
		Clock:    d.Clock,
	}

	if cmd.NeedsStore() {
		if d.stores == nil {
			fmt.Fprintln(errOut, "error: storage not configured")
			return exitcode.BackendError
		}
		st, closeStore, err := d.stores(ctx, cfg, log)
		if err != nil {
			fmt.Fprintf(errOut, "error: storage error: %s\n", err)
			return exitcode.BackendError
		}
		defer func() {
			if err := closeStore(); err != nil {
				log.Warn("close storage failed", "error", err)
			}
		}()
		env.Store = st
	}

	if cmd.NeedsAuth() {
		if d.services == nil {
			fmt.Fprintln(errOut, "error: auth error: remote service not configured")
			return exitcode.AuthError
		}
		svc, err := d.services(ctx, cfg)
		if err != nil {
			if errors.Is(err, service.ErrAuth) {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		env.Service = svc
	}

	log.Debug("dispatch", "command", cmd.Name(), "args", positionalArgs)
	return cmd.Run(ctx, env, positionalArgs, out, errOut)
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments. Everything after "--" is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		consumed := len(args) - len(rest)
		if consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// flagErrorMessage rewrites flag package errors into the CLI's wording.
func flagErrorMessage(err error) string {
	errStr := err.Error()

	if strings.HasPrefix(errStr, "flag needs an argument:") {
		return "flag needs an argument: " + strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
	}
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		return "unknown flag: " + strings.TrimSpace(strings.TrimPrefix(errStr, "flag provided but not defined:"))
	}
	return errStr
}
