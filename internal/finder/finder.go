// Package finder locates a practice's official website by fanning out
// weighted search strategies and reconciling the scored results.
package finder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/practice-intel/internal/model"
	"github.com/sells-group/practice-intel/internal/resilience"
	"github.com/sells-group/practice-intel/internal/scorer"
	"github.com/sells-group/practice-intel/internal/store"
	"github.com/sells-group/practice-intel/internal/strategy"
	"github.com/sells-group/practice-intel/pkg/brave"
	"github.com/sells-group/practice-intel/pkg/google"
)

// patternBoost is added to a candidate whose domain was previously
// confirmed by user feedback.
const patternBoost = 15

// Result is the outcome of one website discovery pass.
type Result struct {
	Primary        *model.Candidate    `json:"primary_candidate,omitempty"`
	Alternatives   []model.Candidate   `json:"alternatives,omitempty"`
	Recommendation string              `json:"recommendation"`
	Strategies     []strategy.Strategy `json:"strategies,omitempty"`
}

// Finder runs the discovery pipeline. The local search client is a
// fallback used only when every web search strategy fails.
type Finder struct {
	web         brave.Client
	local       google.Client
	patterns    store.Store
	limiter     *resilience.SourceLimiter
	concurrency int
	resultCount int
	timeout     time.Duration
}

// Option configures a Finder.
type Option func(*Finder)

// WithLocalSearch sets the local business search fallback.
func WithLocalSearch(c google.Client) Option {
	return func(f *Finder) { f.local = c }
}

// WithPatternStore enables learned-pattern score biasing.
func WithPatternStore(s store.Store) Option {
	return func(f *Finder) { f.patterns = s }
}

// WithConcurrency bounds how many strategies run at once.
func WithConcurrency(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithResultCount sets results requested per strategy.
func WithResultCount(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.resultCount = n
		}
	}
}

// WithTimeout bounds each adapter call.
func WithTimeout(d time.Duration) Option {
	return func(f *Finder) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// New creates a Finder over the given web search client and per-source
// limiter.
func New(web brave.Client, limiter *resilience.SourceLimiter, opts ...Option) *Finder {
	f := &Finder{
		web:         web,
		limiter:     limiter,
		concurrency: 3,
		resultCount: 10,
		timeout:     10 * time.Second,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Find runs every applicable strategy and returns the reconciled,
// ranked candidates. Adapter failures degrade to fewer candidates; only
// missing input is a hard error.
func (f *Finder) Find(ctx context.Context, searchTerms, knownPracticeName, location string) (*Result, error) {
	strategies, err := strategy.Generate(strategy.Input{
		SearchTerms:         searchTerms,
		KnownPracticeName:   knownPracticeName,
		Location:            location,
		IncludeAlternatives: true,
	})
	if err != nil {
		return nil, err
	}

	scoreCtx := scorer.Context{KnownPracticeName: knownPracticeName, Location: location}

	var (
		mu         sync.Mutex
		candidates []model.Candidate
		succeeded  int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, st := range strategies {
		g.Go(func() error {
			results, err := f.search(gCtx, st.Query)
			if err != nil {
				zap.L().Debug("finder: strategy failed",
					zap.String("query", st.Query),
					zap.Int("weight", st.Weight),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			succeeded++
			for _, r := range results {
				cand := scorer.Score(scorer.RawResult{
					URL:         r.URL,
					Title:       r.Title,
					Description: r.Description,
				}, scoreCtx, st.Weight)
				candidates = append(candidates, f.applyPatternBias(gCtx, cand, knownPracticeName))
			}
			return nil
		})
	}
	_ = g.Wait()

	// Local business search keeps the pipeline alive when the primary
	// web search is down or rate limited across the board.
	if succeeded == 0 && f.local != nil {
		candidates = append(candidates, f.localFallback(ctx, searchTerms, knownPracticeName, location, scoreCtx)...)
	}

	ranked := scorer.DedupeAndRank(candidates)

	res := &Result{Strategies: strategies}
	if len(ranked) > 0 {
		res.Primary = &ranked[0]
		if len(ranked) > 1 {
			n := len(ranked) - 1
			if n > 4 {
				n = 4
			}
			res.Alternatives = ranked[1 : 1+n]
		}
	}
	res.Recommendation = recommendation(res.Primary, len(ranked))

	return res, nil
}

// search runs one rate-limited, retried web search.
func (f *Finder) search(ctx context.Context, query string) ([]brave.Result, error) {
	if f.limiter != nil {
		if err := f.limiter.Acquire(ctx, "websearch"); err != nil {
			return nil, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("websearch", "search")
	return resilience.DoVal(callCtx, cfg, func(ctx context.Context) ([]brave.Result, error) {
		return f.web.Search(ctx, query, brave.WithCount(f.resultCount))
	})
}

// localFallback converts local business hits into scoreable candidates.
// Synthetic placeholder records from an adapter outage carry no URL and
// are skipped, so downstream scoring never sees them.
func (f *Finder) localFallback(ctx context.Context, searchTerms, knownPracticeName, location string, scoreCtx scorer.Context) []model.Candidate {
	query := strings.TrimSpace(searchTerms)
	if knownPracticeName != "" {
		query = knownPracticeName
	}
	if location != "" {
		query += " " + location
	}

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	places, err := f.local.TextSearch(callCtx, query, 5)
	if err != nil {
		zap.L().Warn("finder: local search fallback failed", zap.Error(err))
		places = google.SyntheticFallback(query)
	}

	var out []model.Candidate
	for _, p := range places {
		if p.Synthetic || p.WebsiteURL == "" {
			continue
		}
		cand := scorer.Score(scorer.RawResult{
			URL:   p.WebsiteURL,
			Title: p.Title,
		}, scoreCtx, 60)
		out = append(out, f.applyPatternBias(ctx, cand, knownPracticeName))
	}
	return out
}

// applyPatternBias boosts candidates whose domain was confirmed by past
// user feedback. The boost is part of the scoring phase: the candidate
// is still immutable once it leaves here.
func (f *Finder) applyPatternBias(ctx context.Context, cand model.Candidate, knownPracticeName string) model.Candidate {
	if f.patterns == nil || knownPracticeName == "" {
		return cand
	}
	key := "verified_" + PatternKey(knownPracticeName)
	p, err := f.patterns.GetPattern(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			zap.L().Debug("finder: pattern lookup failed", zap.String("key", key), zap.Error(err))
		}
		return cand
	}
	for _, ex := range p.Examples {
		if model.NormalizeDomain(ex) == cand.Domain {
			cand.Score += patternBoost
			if cand.Score > 100 {
				cand.Score = 100
			}
			cand.Indicators = append(cand.Indicators, "confirmed by prior user feedback")
			cand.IsPracticeWebsite = true
			break
		}
	}
	return cand
}

// PatternKey normalizes a practice name into a pattern-store key.
func PatternKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func recommendation(primary *model.Candidate, total int) string {
	switch {
	case primary == nil:
		return "No candidate websites found. Try adding a practice name or location."
	case primary.IsPracticeWebsite && primary.Score >= 70:
		return fmt.Sprintf("%s looks like the practice's official website (score %d).", primary.Domain, primary.Score)
	case primary.IsPracticeWebsite:
		return fmt.Sprintf("%s may be the practice's website (score %d). Verify before relying on it.", primary.Domain, primary.Score)
	default:
		return fmt.Sprintf("Only directory or low-confidence results found across %d candidates. The practice may not have its own website.", total)
	}
}
