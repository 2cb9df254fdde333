package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"ocwsync/internal/config"
	"ocwsync/internal/services/llm"
	"ocwsync/internal/store"
)

const minScratchBytes = 2 << 30

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing (ordering falls back to archive order)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("API reachable (%s)", cfg.Model)}
}

// CheckLLMKey reports whether an API key is configured without calling out.
func CheckLLMKey(name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing (set llm.api_key or OPENROUTER_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Model}
}

// CheckConversion reports which converter a problems run would use.
func CheckConversion(cfg config.Conversion) Result {
	const name = "Document conversion"
	switch {
	case strings.TrimSpace(cfg.APIKey) != "":
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("LlamaParse (%s tier, %d per %ds)", cfg.Tier, cfg.RateLimit, cfg.RateWindowSeconds)}
	case cfg.LocalFallback:
		return Result{Name: name, Passed: true, Detail: "local text extraction (no API key)"}
	default:
		return Result{Name: name, Detail: "API key missing and local fallback disabled"}
	}
}

// CheckCatalog verifies the catalog API answers a one-item page.
func CheckCatalog(ctx context.Context, baseURL string) Result {
	const name = "Catalog API"

	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Result{Name: name, Detail: "invalid base url"}
	}
	q := u.Query()
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckStore opens the configured store and pings it.
func CheckStore(ctx context.Context, cfg *config.Config) Result {
	const name = "Store"

	s, err := store.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer s.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (ping failed: %v)", s.Target(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s %s", s.Dialect(), s.Target())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies that the filesystem holding path has at least
// minBytes available.
func CheckDiskSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	available := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s (%s free)", path, formatBytes(available))
	if available < minBytes {
		return Result{Name: name, Detail: detail + fmt.Sprintf(", need %s", formatBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// nearestExisting walks up from path to the first directory that exists.
func nearestExisting(path string) string {
	for p := filepath.Clean(path); ; p = filepath.Dir(p) {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		if parent := filepath.Dir(p); parent == p {
			return p
		}
	}
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
