// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskflow/internal/config"
	"taskflow/internal/service"
	"taskflow/internal/task"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks requested per page.
	PageSize = 100

	// APITimeout is the timeout for single API calls.
	APITimeout = 5 * time.Second

	// ListTimeout bounds a full paginated task listing.
	ListTimeout = 30 * time.Second
)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc *tasks.Service
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
// Missing or unreadable credentials are reported as service.ErrAuth.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.HasOAuthClient() {
		return nil, fmt.Errorf("%w: %s not found in %s", service.ErrAuth, config.OAuthClientFile, cfg.Dir)
	}
	if !cfg.HasToken() {
		return nil, fmt.Errorf("%w: not logged in (run: taskflow login)", service.ErrAuth)
	}

	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrAuth, err)
	}

	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrAuth, err)
	}

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, token)
	httpClient := oauth2.NewClient(ctx, tokenSource)

	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// DefaultList returns the user's default task list.
func (c *Client) DefaultList(ctx context.Context) (service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	list, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return service.TaskList{}, wrapError(err)
	}

	return service.TaskList{
		ID:        DefaultListID,
		Title:     list.Title,
		IsDefault: true,
	}, nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// The default list is only reported by its real ID here
	defaultList, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	var result []service.TaskList
	err = c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			isDefault := list.Id == defaultList.Id
			id := list.Id
			if isDefault {
				id = DefaultListID
			}
			result = append(result, service.TaskList{
				ID:        id,
				Title:     list.Title,
				IsDefault: isDefault,
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	return result, nil
}

// ResolveList finds a list by name (case-insensitive, trimmed).
func (c *Client) ResolveList(ctx context.Context, name string) (service.TaskList, error) {
	name = strings.TrimSpace(name)

	lists, err := c.ListLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}
	return service.MatchList(lists, name)
}

// ListTasks returns every task of a list, following page tokens.
func (c *Client) ListTasks(ctx context.Context, listID string, includeCompleted bool) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, ListTimeout)
	defer cancel()

	// Completed tasks from the official apps are hidden, so both flags move together
	call := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(includeCompleted).
		ShowHidden(includeCompleted).
		ShowDeleted(false)

	var result []service.Task
	err := call.Pages(ctx, func(resp *tasks.Tasks) error {
		for _, t := range resp.Items {
			result = append(result, convertTask(t))
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

func convertTask(t *tasks.Task) service.Task {
	st := service.Task{
		ID:     t.Id,
		Title:  t.Title,
		Notes:  t.Notes,
		Status: t.Status,
	}
	// Due is RFC 3339 with the time portion always zero
	if d, err := task.ParseDate(t.Due); err == nil {
		st.Due = d
	}
	return st
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked (run: taskflow login)", service.ErrAuth)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", service.ErrNotFound, apiErr.Message)
		}
	}

	return err
}
