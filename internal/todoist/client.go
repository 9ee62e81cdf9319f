// Package todoist adds reading tasks to a Todoist project.
package todoist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the REST API root.
const DefaultBaseURL = "https://api.todoist.com/rest/v2"

// ErrMissingToken is returned by New when no API token is given.
var ErrMissingToken = errors.New("TODOIST_API_TOKEN is not set")

// Task is the subset of the task resource this tool reads back.
type Task struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	ProjectID string `json:"project_id"`
}

type createTask struct {
	Content   string `json:"content"`
	ProjectID string `json:"project_id,omitempty"`
	DueString string `json:"due_string,omitempty"`
}

// Client talks to the Todoist REST API.
type Client struct {
	http *resty.Client
}

// New returns a client authenticated with token. An empty baseURL selects
// DefaultBaseURL.
func New(token, baseURL string) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(token).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c}, nil
}

// AddReading creates a "Read {reading}" task in project due on the given
// civil date.
func (c *Client) AddReading(ctx context.Context, projectID, reading string, due time.Time) (Task, error) {
	var task Task
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(createTask{
			Content:   "Read " + reading,
			ProjectID: projectID,
			DueString: due.Format("2006-01-02"),
		}).
		SetResult(&task).
		Post("/tasks")
	if err != nil {
		return Task{}, fmt.Errorf("add task for %s: %w", reading, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return Task{}, fmt.Errorf("add task for %s: unexpected status %s: %s", reading, resp.Status(), strings.TrimSpace(resp.String()))
	}
	return task, nil
}
