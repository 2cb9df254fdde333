package preflight

import (
	"context"

	"ocwsync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Content directory", cfg.Paths.ContentDir),
		CheckDirectoryAccess("Lock directory", cfg.Paths.LockDir),
		CheckDiskSpace("Scratch space", nearestExisting(cfg.Paths.ScratchDir), minScratchBytes),
		CheckStore(ctx, cfg),
		CheckCatalog(ctx, cfg.Catalog.BaseURL),
	}

	results = append(results, CheckLLM(ctx, "Ordering LLM", cfg.OrderingLLM()))
	// The extraction model is only pinged separately when it differs.
	if extractionUsesDistinctLLM(cfg) {
		results = append(results, CheckLLM(ctx, "Extraction LLM", cfg.ExtractionLLM()))
	}
	results = append(results, CheckConversion(cfg.Conversion))
	return results
}

// RunDownload runs the checks a download needs.
func RunDownload(ctx context.Context, cfg *config.Config) []Result {
	return []Result{
		CheckDirectoryAccess("Content directory", cfg.Paths.ContentDir),
		CheckDiskSpace("Scratch space", nearestExisting(cfg.Paths.ScratchDir), minScratchBytes),
		CheckStore(ctx, cfg),
	}
}

// RunProblems runs the checks problem extraction needs.
func RunProblems(ctx context.Context, cfg *config.Config) []Result {
	return []Result{
		CheckStore(ctx, cfg),
		CheckLLMKey("Extraction LLM", cfg.ExtractionLLM()),
		CheckConversion(cfg.Conversion),
	}
}

func extractionUsesDistinctLLM(cfg *config.Config) bool {
	ordering := cfg.OrderingLLM()
	extraction := cfg.ExtractionLLM()
	return ordering.APIKey != extraction.APIKey ||
		ordering.BaseURL != extraction.BaseURL ||
		ordering.Model != extraction.Model
}
