package main

import (
	"context"

	"github.com/sells-group/practice-intel/internal/feedback"
	"github.com/sells-group/practice-intel/internal/finder"
	"github.com/sells-group/practice-intel/internal/resilience"
	"github.com/sells-group/practice-intel/internal/store"
	"github.com/sells-group/practice-intel/internal/verify"
	"github.com/sells-group/practice-intel/pkg/brave"
	"github.com/sells-group/practice-intel/pkg/google"
	"github.com/sells-group/practice-intel/pkg/jina"
	"github.com/sells-group/practice-intel/pkg/npi"
)

// env wires the full pipeline from configuration. Shared by the verify,
// find, batch and serve commands.
type env struct {
	Store        store.Store
	Finder       *finder.Finder
	Orchestrator *verify.Orchestrator
	Feedback     *feedback.Service
}

func (e *env) Close() {
	_ = e.Store.Close()
}

func initEnv(ctx context.Context) (*env, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	limiter := resilience.NewSourceLimiter(
		cfg.RateLimit.RequestsPerSecond,
		cfg.RateLimit.Burst,
		cfg.RateLimit.FailFast,
	)

	registryClient := npi.NewClient(npi.WithBaseURL(cfg.Registry.BaseURL))
	webClient := brave.NewClient(cfg.Brave.Key, brave.WithBaseURL(cfg.Brave.BaseURL))

	var localClient google.Client
	if cfg.Google.Key != "" {
		localClient = google.NewClient(cfg.Google.Key, google.WithBaseURL(cfg.Google.BaseURL))
	}
	readerClient := jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))

	finderOpts := []finder.Option{
		finder.WithPatternStore(st),
		finder.WithConcurrency(cfg.Verify.SearchConcurrency),
		finder.WithResultCount(cfg.Brave.ResultCount),
	}
	if localClient != nil {
		finderOpts = append(finderOpts, finder.WithLocalSearch(localClient))
	}
	fdr := finder.New(webClient, limiter, finderOpts...)

	orchOpts := []verify.OrchestratorOption{
		verify.WithPageReader(readerClient),
		verify.WithWebSearch(webClient),
		verify.WithLimiter(limiter),
		verify.WithRunStore(st),
	}
	if localClient != nil {
		orchOpts = append(orchOpts, verify.WithLocalSearch(localClient))
	}
	orch := verify.NewOrchestrator(cfg.Verify, registryClient, fdr, orchOpts...)

	return &env{
		Store:        st,
		Finder:       fdr,
		Orchestrator: orch,
		Feedback:     feedback.New(st),
	}, nil
}
