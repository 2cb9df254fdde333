package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ocwsync/internal/config"
	"ocwsync/internal/store"
	"ocwsync/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("LLAMA_CLOUD_API_KEY", "")
	t.Setenv("OCWSYNC_DATABASE_URL", "")
	t.Chdir(base)

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
scratch_dir = %q
content_dir = %q
log_dir = %q
lock_dir = %q

[store]
driver = "sqlite"
path = %q

[catalog]
base_url = %q
retry_attempts = 1
retry_backoff_seconds = 0
page_delay_seconds = 0

[source]
lecture_delay_ms = 0
`,
		cfg.Paths.DataDir,
		cfg.Paths.ScratchDir,
		cfg.Paths.ContentDir,
		cfg.Paths.LogDir,
		cfg.Paths.LockDir,
		cfg.Store.Path,
		cfg.Catalog.BaseURL,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) openStore(t *testing.T) *store.Store {
	t.Helper()
	return testsupport.MustOpenStore(t, e.cfg)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
