// Package search implements the orchestration layer: the platform fan-out,
// result ranking, session recording and the answer streaming pipeline.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	searchModels "tabkeep/internal/domain/models/search"
	searchSvc "tabkeep/internal/domain/services/search"
)

// Executor fans one query out to every requested platform adapter
// concurrently and settles all of them. It implements
// search.FanOutExecutor.
type Executor struct {
	adapters map[searchModels.Platform]searchSvc.PlatformAdapter
	counts   func(platform searchModels.Platform) int
	timeout  time.Duration
	logger   *slog.Logger
}

// DefaultResultCount is how many results an adapter is asked for when no
// per-platform override is configured.
const DefaultResultCount = 8

// NewExecutor builds the fan-out executor over the given adapters. counts may
// be nil, in which case every platform gets DefaultResultCount.
func NewExecutor(adapters []searchSvc.PlatformAdapter, timeout time.Duration, counts func(platform searchModels.Platform) int, logger *slog.Logger) *Executor {
	byPlatform := make(map[searchModels.Platform]searchSvc.PlatformAdapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	if counts == nil {
		counts = func(searchModels.Platform) int { return DefaultResultCount }
	}
	return &Executor{
		adapters: byPlatform,
		counts:   counts,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run launches one goroutine per requested platform and waits for all of them
// to settle. The returned slice has exactly one PlatformResult per requested
// platform in request order; failures and deadline overruns become tagged
// results, never errors. Cancelling ctx abandons in-flight adapters.
func (e *Executor) Run(ctx context.Context, platforms []searchModels.Platform, query string) []searchModels.PlatformResult {
	results := make([]searchModels.PlatformResult, len(platforms))

	var wg sync.WaitGroup
	for i, platform := range platforms {
		adapter, ok := e.adapters[platform]
		if !ok {
			results[i] = searchModels.PlatformResult{
				Platform:     platform,
				Status:       searchModels.StatusError,
				ErrorMessage: fmt.Sprintf("platform %s not configured", platform),
			}
			continue
		}

		wg.Add(1)
		go func(slot int, platform searchModels.Platform, adapter searchSvc.PlatformAdapter) {
			defer wg.Done()
			results[slot] = e.searchOne(ctx, platform, adapter, query)
		}(i, platform, adapter)
	}
	wg.Wait()

	return results
}

// searchOne runs a single adapter under the per-platform budget and settles
// its outcome.
func (e *Executor) searchOne(ctx context.Context, platform searchModels.Platform, adapter searchSvc.PlatformAdapter, query string) searchModels.PlatformResult {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	found, err := adapter.Search(callCtx, query, e.counts(platform))
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		status := searchModels.StatusError
		if errors.Is(err, context.DeadlineExceeded) {
			status = searchModels.StatusTimeout
		}
		e.logger.Warn("platform search failed",
			"platform", platform,
			"status", status,
			"duration_ms", elapsed,
			"error", err,
		)
		return searchModels.PlatformResult{
			Platform:     platform,
			Status:       status,
			ErrorMessage: err.Error(),
			ElapsedMs:    elapsed,
		}
	}

	e.logger.Debug("platform search succeeded",
		"platform", platform,
		"results", len(found),
		"duration_ms", elapsed,
	)
	return searchModels.PlatformResult{
		Platform:  platform,
		Status:    searchModels.StatusOK,
		Results:   found,
		ElapsedMs: elapsed,
	}
}
