package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskflow/internal/cli"
	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
	"taskflow/internal/store"
	"taskflow/internal/testutil"
)

// testServices creates a service factory that returns the given FakeService.
func testServices(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

// testStores returns a store factory that hands out the same in-memory store
// on every call, so state survives across dispatches.
func testStores() cli.StoreFactory {
	st, _, _ := testutil.NewStore()
	return func(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.Store, func() error, error) {
		return st, func() error { return nil }, nil
	}
}

func newDispatcher() *cli.Dispatcher {
	d := cli.NewDispatcher(commands.DefaultRegistry, testStores(), testServices(testutil.NewFakeService()))
	d.Clock = testutil.NewClock().Peek
	return d
}

func writeConfig(dir, content string) error {
	return os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(content), 0600)
}

// run dispatches args with an isolated config directory.
func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		args = append([]string{args[0], "--config", t.TempDir()}, args[1:]...)
	}
	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, newDispatcher(), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, stderr, code := run(t, newDispatcher(), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := run(t, newDispatcher(), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, stderr, code := run(t, newDispatcher(), "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskflow 0.1.0\n" {
		t.Errorf("expected 'taskflow 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := run(t, newDispatcher(), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	_, stderr, code := run(t, newDispatcher(), "list", "--filter")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: flag needs an argument: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	d := newDispatcher()
	var outBuf, errBuf bytes.Buffer
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	code := d.Run(context.Background(), nil, &outBuf, &errBuf)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (stderr %q)", code, errBuf.String())
	}
	if outBuf.String() != "no tasks found\n" {
		t.Errorf("expected empty list, got %q", outBuf.String())
	}
}

func TestDispatcher_InterspersedFlags(t *testing.T) {
	d := newDispatcher()

	if _, stderr, code := run(t, d, "add", "Buy", "--priority", "high", "milk", "-t", "errands"); code != exitcode.Success {
		t.Fatalf("add failed: %d %q", code, stderr)
	}
	if _, stderr, code := run(t, d, "create", "--", "-5", "degrees"); code != exitcode.Success {
		t.Fatalf("create failed: %d %q", code, stderr)
	}

	stdout, _, _ := run(t, d, "ls", "milk", "-q")
	if !strings.Contains(stdout, "high") || !strings.Contains(stdout, "Buy milk  #errands") {
		t.Errorf("unexpected list output %q", stdout)
	}
	if strings.Contains(stdout, "-5 degrees") {
		t.Errorf("search should exclude other tasks, got %q", stdout)
	}

	stdout, _, _ = run(t, d, "list", "--sort", "title")
	if !strings.Contains(stdout, "-5 degrees") {
		t.Errorf("expected title after -- to be kept verbatim, got %q", stdout)
	}
}

func TestDispatcher_QuietSuppressesOK(t *testing.T) {
	d := newDispatcher()
	stdout, stderr, code := run(t, d, "add", "-q", "Walk dog")
	if code != exitcode.Success || stderr != "" {
		t.Fatalf("add failed: %d %q", code, stderr)
	}
	if stdout != "" {
		t.Errorf("expected no stdout with -q, got %q", stdout)
	}
}

func TestDispatcher_ConfigError(t *testing.T) {
	dir := t.TempDir()
	if err := writeConfig(dir, `{"storage": `); err != nil {
		t.Fatal(err)
	}
	var outBuf, errBuf bytes.Buffer
	code := newDispatcher().Run(context.Background(), []string{"list", "--config", dir}, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(errBuf.String(), "error: config error: ") {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}

func TestDispatcher_StorageError(t *testing.T) {
	failing := func(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.Store, func() error, error) {
		return nil, nil, errors.New("unknown storage driver: floppy")
	}
	d := cli.NewDispatcher(commands.DefaultRegistry, failing, testServices(testutil.NewFakeService()))

	_, stderr, code := run(t, d, "list")
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: storage error: unknown storage driver: floppy\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}

	// Commands without storage still work.
	if _, _, code := run(t, d, "version"); code != exitcode.Success {
		t.Errorf("version should not open storage, got %d", code)
	}
}

func TestDispatcher_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		want string
	}{
		{"auth", fmt.Errorf("%w: token.json not found", service.ErrAuth), exitcode.AuthError, "error: auth error: "},
		{"backend", errors.New("dial tcp: refused"), exitcode.BackendError, "error: backend error: dial tcp: refused\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
				return nil, tt.err
			}
			d := cli.NewDispatcher(commands.DefaultRegistry, testStores(), services)

			_, stderr, code := run(t, d, "import")
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if !strings.HasPrefix(stderr, tt.want) {
				t.Errorf("expected stderr starting %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestDispatcher_ImportThroughService(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask(testutil.DefaultListID, service.Task{Title: "Renew passport"})
	d := cli.NewDispatcher(commands.DefaultRegistry, testStores(), testServices(svc))

	stdout, stderr, code := run(t, d, "import")
	if code != exitcode.Success {
		t.Fatalf("import failed: %d %q", code, stderr)
	}
	if stdout != "imported 1, skipped 0\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	stdout, _, _ = run(t, d, "list")
	if !strings.Contains(stdout, "Renew passport") {
		t.Errorf("imported task missing from list: %q", stdout)
	}
}

func TestDispatcher_ColorFlag(t *testing.T) {
	d := newDispatcher()
	if _, stderr, code := run(t, d, "add", "--priority", "high", "Colorful"); code != exitcode.Success {
		t.Fatalf("add failed: %d %q", code, stderr)
	}

	plain, _, _ := run(t, d, "list")
	colored, _, _ := run(t, d, "list", "--color")
	if strings.Contains(plain, "\x1b[") {
		t.Errorf("expected no escapes without --color, got %q", plain)
	}
	if !strings.Contains(colored, "\x1b[") {
		t.Errorf("expected escapes with --color, got %q", colored)
	}
}
