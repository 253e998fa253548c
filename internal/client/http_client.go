package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

func init() {
	Register("http", NewHTTPClient)
}

// HTTPClient is a resty-backed DownloadClient for an NZBGet/SABnzbd-style
// download manager exposing submit/status/completed/delete over HTTP
// (spec §6.2).
type HTTPClient struct {
	name   string
	client *resty.Client
}

func NewHTTPClient(baseURL, apiKey string) DownloadClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPClient{name: baseURL, client: client}
}

func (c *HTTPClient) Name() string { return c.name }

type submitRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type submitResponse struct {
	JobID    string `json:"job_id"`
	Accepted bool   `json:"accepted"`
}

// Submit posts url+title to the client's queue endpoint. A rejected
// submission (accepted=false) is reported as ok=false, not an error —
// the caller maps that to SubmissionFailed per spec §4.4 step 5.
func (c *HTTPClient) Submit(ctx context.Context, url, title string) (string, bool, error) {
	var body submitResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(submitRequest{URL: url, Title: title}).
		SetResult(&body).
		Post("/queue")
	if err != nil {
		return "", false, fmt.Errorf("client %s: submit: %w", c.name, err)
	}
	if resp.IsError() {
		return "", false, fmt.Errorf("client %s: submit status %d", c.name, resp.StatusCode())
	}
	return body.JobID, body.Accepted, nil
}

type statusResponse struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	FilePath string `json:"file_path"`
	Error    string `json:"error"`
}

var statusMap = map[string]Status{
	"pending":     StatusPending,
	"downloading": StatusDownloading,
	"completed":   StatusCompleted,
	"failed":      StatusFailed,
	"error":       StatusError,
}

func (c *HTTPClient) GetStatus(ctx context.Context, jobID string) (JobStatus, error) {
	var body statusResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/queue/" + jobID)
	if err != nil {
		return JobStatus{}, fmt.Errorf("client %s: status: %w", c.name, err)
	}
	if resp.IsError() {
		return JobStatus{Status: StatusUnknown}, nil
	}

	status, ok := statusMap[body.Status]
	if !ok {
		status = StatusUnknown
	}
	return JobStatus{Status: status, Progress: body.Progress, FilePath: body.FilePath, Error: body.Error}, nil
}

func (c *HTTPClient) GetCompleted(ctx context.Context) ([]CompletedJob, error) {
	var body []CompletedJob
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/queue/completed")
	if err != nil {
		return nil, fmt.Errorf("client %s: completed: %w", c.name, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("client %s: completed status %d", c.name, resp.StatusCode())
	}
	return body, nil
}

func (c *HTTPClient) Delete(ctx context.Context, jobID string) (bool, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Delete("/queue/" + jobID)
	if err != nil {
		return false, fmt.Errorf("client %s: delete: %w", c.name, err)
	}
	return !resp.IsError(), nil
}
