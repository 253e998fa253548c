// Package client defines the Download Client capability (spec §6.2) and
// a concrete HTTP-backed reference implementation against an
// NZBGet/SABnzbd-style download manager API.
package client

import "context"

// Status is a normalized job status, already mapped from whatever
// vocabulary the concrete client speaks.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusError       Status = "error"
	StatusUnknown     Status = "unknown"
)

// JobStatus is the result of a GetStatus call.
type JobStatus struct {
	Status   Status
	Progress int
	FilePath string
	Error    string
}

// CompletedJob is one entry of GetCompleted's result.
type CompletedJob struct {
	JobID    string
	FilePath string
	Title    string
}

// DownloadClient is the capability interface every download-client
// adapter implements (spec §6.2, §9 Design Notes).
type DownloadClient interface {
	Name() string
	Submit(ctx context.Context, url, title string) (jobID string, ok bool, err error)
	GetStatus(ctx context.Context, jobID string) (JobStatus, error)
	GetCompleted(ctx context.Context) ([]CompletedJob, error)
	Delete(ctx context.Context, jobID string) (bool, error)
}

// Factory constructs a DownloadClient from its configuration.
type Factory func(baseURL, apiKey string) DownloadClient

var factories = map[string]Factory{}

// Register adds a client type to the static factory table (spec §9:
// static registration table populated at startup, not a name→import
// path registry).
func Register(clientType string, factory Factory) {
	factories[clientType] = factory
}

// New constructs a client by its configured type string, or nil if the
// type is unknown.
func New(clientType, baseURL, apiKey string) DownloadClient {
	factory, ok := factories[clientType]
	if !ok {
		return nil
	}
	return factory(baseURL, apiKey)
}
