package smartmailr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"
)

// DefaultHTTPTimeout defines the timeout used by clients created without a
// custom http.Client. It is intentionally short to avoid hanging network calls.
const DefaultHTTPTimeout = 15 * time.Second

// Client wraps the HTTP interactions with the SmartMailr REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Message mirrors the server side mail message payload.
type Message struct {
	ID         int64     `json:"id"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// DatetimeExtraction carries the datetime resolved for a meeting request.
type DatetimeExtraction struct {
	Datetime *time.Time `json:"datetime"`
}

// Event describes a calendar event created during triage.
type Event struct {
	EventID  string     `json:"event_id"`
	Status   string     `json:"status"`
	Summary  string     `json:"summary"`
	Datetime *time.Time `json:"datetime"`
}

// Actions aggregates the side effects of one triage run.
type Actions struct {
	ExtractDatetime *DatetimeExtraction `json:"extract_datetime,omitempty"`
	CreateEvent     *Event              `json:"create_event,omitempty"`
	Reply           string              `json:"reply"`
	Sent            bool                `json:"sent"`
}

// Plan lists the steps selected for an intent.
type Plan struct {
	Intent string   `json:"intent"`
	Steps  []string `json:"steps"`
}

// ActionResult is the outcome of processing a single message.
type ActionResult struct {
	MessageID int64   `json:"message_id"`
	Plan      Plan    `json:"plan"`
	Actions   Actions `json:"actions"`
	CreatedAt int64   `json:"created_at"`
}

// Job describes an asynchronous inbox job.
type Job struct {
	ID         string        `json:"id"`
	Message    Message       `json:"message"`
	Status     string        `json:"status"`
	Attempts   int           `json:"attempts"`
	MaxRetries int           `json:"max_retries"`
	LastError  string        `json:"last_error,omitempty"`
	ErrorCode  string        `json:"error_code,omitempty"`
	Result     *ActionResult `json:"result,omitempty"`
	CreatedAt  int64         `json:"created_at"`
	UpdatedAt  int64         `json:"updated_at"`
}

// JobStats aggregates job counters by status.
type JobStats struct {
	Total           int   `json:"total"`
	Pending         int   `json:"pending"`
	Running         int   `json:"running"`
	Succeeded       int   `json:"succeeded"`
	Failed          int   `json:"failed"`
	OldestUpdatedAt int64 `json:"oldest_updated_at,omitempty"`
	NewestUpdatedAt int64 `json:"newest_updated_at,omitempty"`
}

// ListQuery narrows the jobs returned by Messages.
type ListQuery struct {
	Limit  int
	Offset int
	Status string
	Intent string
	Sender string
}

// APIError represents server side validation or internal errors.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("smartmailr api error (%d): %s", e.StatusCode, e.Message)
}

// NewClient instantiates a client for the SmartMailr API. When httpClient is
// nil, a default client with a sensible timeout is used.
func NewClient(rawURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}, nil
}

// Process runs the triage pipeline synchronously for a single message.
func (c *Client) Process(ctx context.Context, msg Message) (ActionResult, error) {
	var result ActionResult
	if err := c.post(ctx, "/api/v1/process", msg, &result); err != nil {
		return ActionResult{}, err
	}
	return result, nil
}

// Submit enqueues a message for asynchronous processing.
func (c *Client) Submit(ctx context.Context, msg Message) (Job, error) {
	var job Job
	if err := c.post(ctx, "/api/v1/messages", msg, &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Message fetches a single job by identifier.
func (c *Client) Message(ctx context.Context, jobID string) (Job, error) {
	var job Job
	endpoint := "/api/v1/messages/" + url.PathEscape(jobID)
	if err := c.get(ctx, endpoint, &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Messages lists jobs matching the query.
func (c *Client) Messages(ctx context.Context, query ListQuery) ([]Job, error) {
	var jobs []Job
	if err := c.get(ctx, "/api/v1/messages"+query.encode(), &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Stats returns aggregate job counters.
func (c *Client) Stats(ctx context.Context, query ListQuery) (JobStats, error) {
	var stats JobStats
	if err := c.get(ctx, "/api/v1/messages/stats"+query.encode(), &stats); err != nil {
		return JobStats{}, err
	}
	return stats, nil
}

// WaitForResult polls a job until it reaches a terminal status or ctx expires.
func (c *Client) WaitForResult(ctx context.Context, jobID string, interval time.Duration) (Job, error) {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := c.Message(ctx, jobID)
		if err != nil {
			return Job{}, err
		}
		if job.Status == "succeeded" || job.Status == "failed" {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return Job{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (q ListQuery) encode() string {
	values := url.Values{}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.Intent != "" {
		values.Set("intent", q.Intent)
	}
	if q.Sender != "" {
		values.Set("sender", q.Sender)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	rel := &url.URL{Path: path.Join(c.baseURL.Path, parsed.Path), RawQuery: parsed.RawQuery}
	u := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(bytes.TrimSpace(data)),
		}
	}

	if out == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
