// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion. Storage warnings still exit 0.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, ambiguous reference).
	UserError = 1

	// AuthError indicates an auth or config error (bad config.json, not logged in).
	AuthError = 2

	// BackendError indicates a storage backend that cannot be opened or a remote API failure.
	BackendError = 3
)
