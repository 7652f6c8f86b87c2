// Package main is the entry point for the taskflow CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"
	"golang.org/x/text/language"

	"taskflow/internal/backend/googletasks"
	"taskflow/internal/cli"
	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/kv"
	"taskflow/internal/service"
	"taskflow/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, openStore, openService)
	dispatcher.Terminal = term.IsTerminal(int(os.Stdout.Fd()))
	dispatcher.Language = localeFromEnv()

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.Store, func() error, error) {
	// The file and sqlite drivers keep their data under the config dir
	if err := cfg.EnsureDir(); err != nil {
		return nil, nil, err
	}
	backend, err := kv.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, nil, err
	}
	st := store.New(backend,
		store.WithKey(cfg.Storage.Key),
		store.WithLogger(log),
	)
	return st, backend.Close, nil
}

func openService(ctx context.Context, cfg *config.Config) (service.Service, error) {
	return googletasks.New(ctx, cfg)
}

// localeFromEnv maps LC_ALL, LC_COLLATE or LANG (e.g. "de_DE.UTF-8") to a
// language tag. Unparseable values fall back to the root collation.
func localeFromEnv() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_COLLATE", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
		if err != nil {
			return language.Und
		}
		return tag
	}
	return language.Und
}
