package habitica

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"recurd/pkg/logx"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://habitrpg.com/api/v2"

	// defaultRatePerMin matches the service's published request limit.
	defaultRatePerMin = 30
)

// Config holds connection settings for one user session.
type Config struct {
	BaseURL    string
	UserID     string
	APIToken   string
	RatePerMin int
	Timeout    time.Duration
}

// Client is a single-user API session. Authentication travels in headers on
// every request; there is no login handshake. The session is passed
// explicitly to everything that needs it rather than living in a package
// global.
type Client struct {
	base    string
	userID  string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	log     logx.Logger
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.UserID) == "" || strings.TrimSpace(cfg.APIToken) == "" {
		return nil, errors.New("habitica: user_id and api_token are required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	perMin := cfg.RatePerMin
	if perMin <= 0 {
		perMin = defaultRatePerMin
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		base:    base,
		userID:  cfg.UserID,
		token:   cfg.APIToken,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin),
		log:     log,
	}, nil
}

// FetchTask retrieves one task by ID. A 404 becomes ErrNotFound.
func (c *Client) FetchTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, "user/tasks/"+id, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTodo creates a new todo from the template.
func (c *Client) CreateTodo(ctx context.Context, todo NewTodo) (*Task, error) {
	req := createTodoRequest{
		Type:  "todo",
		Text:  todo.Title,
		Notes: todo.Notes,
	}
	for _, item := range todo.Checklist {
		req.Checklist = append(req.Checklist, checkItem{Text: item})
	}
	if len(todo.Tags) > 0 {
		req.Tags = make(map[string]bool, len(todo.Tags))
		for _, id := range todo.Tags {
			req.Tags[id] = true
		}
	}

	var task Task
	if err := c.do(ctx, http.MethodPost, "user/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTags returns the user's tags. There is no tags-only endpoint; they
// ride along on the user document.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var user userResponse
	if err := c.do(ctx, http.MethodGet, "user", nil, &user); err != nil {
		return nil, err
	}
	return user.Tags, nil
}

// CreateTag creates a tag. The API responds with the full tag list; the
// last entry is the tag just created.
func (c *Client) CreateTag(ctx context.Context, name string) (Tag, error) {
	var tags []Tag
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	if err := c.do(ctx, http.MethodPost, "user/tags", body, &tags); err != nil {
		return Tag{}, err
	}
	if len(tags) == 0 {
		return Tag{}, fmt.Errorf("%w: empty tag list after create", ErrUnavailable)
	}
	return tags[len(tags)-1], nil
}

// EnsureTag finds a tag by name, creating it if absent.
func (c *Client) EnsureTag(ctx context.Context, name string) (Tag, error) {
	tags, err := c.ListTags(ctx)
	if err != nil {
		return Tag{}, err
	}
	for _, t := range tags {
		if t.Name == name {
			return t, nil
		}
	}
	c.log.Info("creating marker tag", logx.String("tag", name))
	return c.CreateTag(ctx, name)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("habitica: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+path, reader)
	if err != nil {
		return fmt.Errorf("habitica: build %s %s: %w", method, path, err)
	}
	req.Header.Set("x-api-user", c.userID)
	req.Header.Set("x-api-key", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	c.log.Trace("api request",
		logx.String("method", method),
		logx.String("path", path),
		logx.Int("status", resp.StatusCode),
		logx.Duration("took", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s %s: http %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: decode: %v", ErrUnavailable, method, path, err)
	}
	return nil
}
