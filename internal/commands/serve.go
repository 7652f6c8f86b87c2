package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"time"

	"taskflow/internal/exitcode"
	"taskflow/internal/httpapi"
)

// shutdownTimeout bounds graceful shutdown after the context is cancelled.
const shutdownTimeout = 5 * time.Second

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	addr string

	// Listen overrides net.Listen (for testing).
	Listen func(network, addr string) (net.Listener, error)
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve the JSON API" }
func (c *ServeCmd) Usage() string     { return "taskflow serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsStore() bool  { return true }
func (c *ServeCmd) NeedsAuth() bool   { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	addr := c.addr
	if addr == "" && env.Cfg != nil {
		addr = env.Cfg.Serve.Addr
	}

	listen := c.Listen
	if listen == nil {
		listen = net.Listen
	}
	ln, err := listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	srv := httpapi.NewServer(env.Store, addr,
		httpapi.WithClock(env.Now),
		httpapi.WithLanguage(env.Language),
		httpapi.WithLogger(env.logger()),
	)

	if !env.quiet() {
		fmt.Fprintf(out, "listening on http://%s\n", ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(errOut, "error: shutdown: %v\n", err)
		return exitcode.BackendError
	}
	<-errCh
	return exitcode.Success
}
