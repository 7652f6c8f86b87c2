package googletasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Loopback flow defaults.
const (
	DefaultCallbackPort    = 8085
	DefaultCallbackTimeout = 5 * time.Minute
	maxPortAttempts        = 5
	exchangeTimeout        = 30 * time.Second
)

// ErrCallbackTimeout is returned when the browser never reaches the callback.
var ErrCallbackTimeout = errors.New("oauth callback timed out")

// LoopbackFlow runs the installed-app authorization flow: it prints the
// consent URL, waits for the redirect on a localhost port and exchanges the
// code using PKCE.
type LoopbackFlow struct {
	Config *oauth2.Config

	// Prompt receives the consent URL.
	Prompt io.Writer

	StartPort int
	Timeout   time.Duration
}

// NewLoopbackFlow returns a flow with the default port range and timeout.
func NewLoopbackFlow(cfg *oauth2.Config, prompt io.Writer) *LoopbackFlow {
	return &LoopbackFlow{
		Config:    cfg,
		Prompt:    prompt,
		StartPort: DefaultCallbackPort,
		Timeout:   DefaultCallbackTimeout,
	}
}

// Token blocks until the user completes consent, ctx is cancelled or the
// timeout expires.
func (f *LoopbackFlow) Token(ctx context.Context) (*oauth2.Token, error) {
	ln, port, err := listenLoopback(f.StartPort)
	if err != nil {
		return nil, err
	}
	defer ln.Close()

	// Copy so the caller's config keeps its redirect URL.
	conf := *f.Config
	conf.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	verifier := oauth2.GenerateVerifier()
	state := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	fmt.Fprintln(f.Prompt, "Open this URL in your browser:")
	fmt.Fprintln(f.Prompt, authURL)

	cb := newCallback(state)
	srv := &http.Server{Handler: cb, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cb.fail(err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}

	var code string
	select {
	case code = <-cb.codes:
	case err := <-cb.errs:
		return nil, err
	case <-time.After(timeout):
		return nil, ErrCallbackTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	token, err := conf.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code for token: %w", err)
	}
	return token, nil
}

func listenLoopback(start int) (net.Listener, int, error) {
	if start <= 0 {
		start = DefaultCallbackPort
	}
	for port := start; port < start+maxPortAttempts; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return ln, port, nil
		}
	}
	return nil, 0, fmt.Errorf("could not bind a local port for the oauth callback (tried %d-%d)", start, start+maxPortAttempts-1)
}

// callback receives the authorization redirect. Only the first outcome is kept.
type callback struct {
	state string
	codes chan string
	errs  chan error
}

func newCallback(state string) *callback {
	return &callback{
		state: state,
		codes: make(chan string, 1),
		errs:  make(chan error, 1),
	}
}

func (c *callback) fail(err error) {
	select {
	case c.errs <- err:
	default:
	}
}

func (c *callback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/callback" {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		http.Error(w, "Authorization denied", http.StatusBadRequest)
		c.fail(fmt.Errorf("authorization denied: %s", e))
		return
	}
	if q.Get("state") != c.state {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		c.fail(errors.New("oauth state mismatch"))
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Error(w, "No code in callback", http.StatusBadRequest)
		c.fail(errors.New("no code in callback"))
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, "<html><body><h1>taskflow can now import your tasks</h1><p>You may close this window.</p></body></html>")
	select {
	case c.codes <- code:
	default:
	}
}
