package conversion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ocwsync/internal/logging"
	"ocwsync/internal/ratelimit"
	"ocwsync/internal/services"
)

const (
	stageName           = "convert"
	defaultBaseURL      = "https://api.cloud.llamaindex.ai"
	defaultTier         = "cost_effective"
	defaultPollInterval = 5 * time.Second
	defaultTimeout      = 5 * time.Minute
	requestTimeout      = 60 * time.Second
	notCompletedDetail  = "Job not completed yet"
	maxErrorBody        = 4096
)

// Job statuses reported by the parse API.
const (
	statusCompleted = "COMPLETED"
	statusError     = "ERROR"
	statusFailed    = "FAILED"
)

// Config describes the LlamaParse client.
type Config struct {
	APIKey       string
	BaseURL      string
	Tier         string
	PollInterval time.Duration
	Timeout      time.Duration
}

// Client converts PDFs through the LlamaParse v2 API.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *ratelimit.Window
	clock   ratelimit.Clock
	logger  *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithClock overrides the clock used for polling and deadlines.
func WithClock(clock ratelimit.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a Client. limiter must be shared by every conversion of a
// run; a nil limiter disables throttling.
func NewClient(cfg Config, limiter *ratelimit.Window, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Tier == "" {
		cfg.Tier = defaultTier
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: limiter,
		clock:   ratelimit.SystemClock{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "llamaparse")
	return c
}

// Name implements Converter.
func (c *Client) Name() string { return "llamaparse" }

// Convert uploads the PDF at path and returns its markdown.
func (c *Client) Convert(ctx context.Context, path string) (string, error) {
	if c.limiter != nil {
		waited, err := c.limiter.Wait(ctx)
		if err != nil {
			return "", err
		}
		if waited > 0 {
			c.logger.Info("conversion rate limit reached; waited",
				logging.Duration("waited", waited),
				logging.String("file", filepath.Base(path)),
			)
		}
	}

	jobID, err := c.upload(ctx, path)
	if err != nil {
		return "", err
	}
	c.logger.Debug("conversion job created",
		logging.String("job_id", jobID),
		logging.String("file", filepath.Base(path)),
	)
	return c.poll(ctx, jobID)
}

func (c *Client) upload(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stageName, "read pdf", path, err)
	}
	configuration, err := json.Marshal(map[string]string{"tier": c.cfg.Tier, "version": "latest"})
	if err != nil {
		return "", fmt.Errorf("encode configuration: %w", err)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := form.WriteField("configuration", string(configuration)); err != nil {
		return "", fmt.Errorf("write configuration: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/v2/parse/upload", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, stageName, "upload", filepath.Base(path), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", services.Wrap(services.ErrExternalService, stageName, "upload",
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", services.Wrap(services.ErrExternalService, stageName, "upload", "decode response", err)
	}
	if created.ID == "" {
		return "", services.Wrap(services.ErrExternalService, stageName, "upload", "response missing job id", nil)
	}
	return created.ID, nil
}

type jobResponse struct {
	Job struct {
		Status string `json:"status"`
		Error  string `json:"error_message"`
	} `json:"job"`
	Markdown json.RawMessage `json:"markdown"`
}

func (c *Client) poll(ctx context.Context, jobID string) (string, error) {
	deadline := c.clock.Now().Add(c.cfg.Timeout)
	for c.clock.Now().Before(deadline) {
		if err := c.clock.Sleep(ctx, c.cfg.PollInterval); err != nil {
			return "", err
		}
		text, done, err := c.checkJob(ctx, jobID)
		if err != nil || done {
			return text, err
		}
	}
	return "", services.Wrap(services.ErrTimeout, stageName, "poll",
		fmt.Sprintf("job %s not completed after %s", jobID, c.cfg.Timeout), nil)
}

func (c *Client) checkJob(ctx context.Context, jobID string) (string, bool, error) {
	endpoint := c.cfg.BaseURL + "/api/v2/parse/" + jobID + "?expand=markdown"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, fmt.Errorf("build status request: %w", err)
	}
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, services.Wrap(services.ErrExternalService, stageName, "poll", jobID, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, services.Wrap(services.ErrExternalService, stageName, "poll", "read response", err)
	}

	if resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), notCompletedDetail) {
		return "", false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false, services.Wrap(services.ErrExternalService, stageName, "poll",
			fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(body)), nil)
	}

	var job jobResponse
	if err := json.Unmarshal(body, &job); err != nil {
		return "", false, services.Wrap(services.ErrExternalService, stageName, "poll", "decode response", err)
	}
	switch strings.ToUpper(job.Job.Status) {
	case statusError, statusFailed:
		return "", false, services.Wrap(services.ErrExternalService, stageName, "poll",
			fmt.Sprintf("job %s %s: %s", jobID, job.Job.Status, job.Job.Error), nil)
	case statusCompleted:
		return markdownText(job.Markdown), true, nil
	default:
		return "", false, nil
	}
}

// markdownText reads either {"pages":[{"markdown":...}]} or a plain string.
func markdownText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var paged struct {
		Pages []struct {
			Markdown string `json:"markdown"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(raw, &paged); err == nil && len(paged.Pages) > 0 {
		parts := make([]string, len(paged.Pages))
		for i, page := range paged.Pages {
			parts[i] = page.Markdown
		}
		return strings.Join(parts, "\n\n")
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return ""
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
}

func truncate(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}
