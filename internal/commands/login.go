package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/backend/googletasks"
	"taskflow/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd authorizes read access to Google Tasks for import.
type LoginCmd struct{}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with Google for import" }
func (c *LoginCmd) Usage() string     { return "taskflow login [common flags]" }
func (c *LoginCmd) NeedsStore() bool  { return false }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	cfg := env.Cfg
	if !cfg.HasOAuthClient() {
		printOAuthSetup(errOut, cfg.OAuthClientPath())
		return exitcode.AuthError
	}

	if cfg.HasToken() && googletasks.TokenUsable(ctx, cfg) {
		if !env.quiet() {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	token, err := googletasks.NewLoopbackFlow(oauthConfig, errOut).Token(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.AuthError
	case err != nil:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := googletasks.SaveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	env.logger().Debug("token saved", "path", cfg.TokenPath())

	env.ok(out)
	return exitcode.Success
}

func printOAuthSetup(w io.Writer, clientPath string) {
	fmt.Fprintf(w, "error: oauth_client.json not found: %s\n\n", clientPath)
	fmt.Fprint(w, `Importing from Google Tasks needs a desktop OAuth client:

  1. Open https://console.cloud.google.com/apis/credentials and pick a project.
  2. Enable the Tasks API:
     https://console.cloud.google.com/apis/library/tasks.googleapis.com
  3. Create Credentials > OAuth client ID, application type "Desktop app".
  4. Download the JSON and save it as the path above.

Then run 'taskflow login' again.
`)
}
