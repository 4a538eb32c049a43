// Package verify coordinates evidence gathering across the registry,
// web search, local search and page-content adapters, then synthesizes
// a confidence-scored verification result.
package verify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/practice-intel/internal/confidence"
	"github.com/sells-group/practice-intel/internal/config"
	"github.com/sells-group/practice-intel/internal/finder"
	"github.com/sells-group/practice-intel/internal/model"
	"github.com/sells-group/practice-intel/internal/recommend"
	"github.com/sells-group/practice-intel/internal/resilience"
	"github.com/sells-group/practice-intel/internal/store"
	"github.com/sells-group/practice-intel/pkg/brave"
	"github.com/sells-group/practice-intel/pkg/google"
	"github.com/sells-group/practice-intel/pkg/jina"
	"github.com/sells-group/practice-intel/pkg/npi"
)

// npiPattern matches the 10-digit national provider identifier format.
var npiPattern = regexp.MustCompile(`^\d{10}$`)

// buyingSignalTerms are scanned in analyzed page content. Each distinct
// hit counts as one buying signal.
var buyingSignalTerms = []string{
	"now hiring",
	"we're hiring",
	"accepting new patients",
	"new location",
	"grand opening",
	"expanding",
	"join our team",
}

// Request is one verification job.
type Request struct {
	DoctorName string            `json:"doctor_name"`
	NPI        string            `json:"npi,omitempty"`
	Hints      model.SearchHints `json:"hints,omitempty"`
	Depth      model.Depth       `json:"depth,omitempty"`
}

// websiteFinder is the discovery capability the orchestrator consumes.
type websiteFinder interface {
	Find(ctx context.Context, searchTerms, knownPracticeName, location string) (*finder.Result, error)
}

// Orchestrator runs verification end to end. Every adapter is optional
// except the registry and the finder: a missing or failing adapter
// degrades the result instead of failing the run.
type Orchestrator struct {
	cfg      config.VerifyConfig
	registry npi.Client
	finder   websiteFinder
	local    google.Client
	reader   jina.Client
	web      brave.Client
	limiter  *resilience.SourceLimiter
	runs     store.Store

	now   func() time.Time
	newID func() string
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLocalSearch sets the local business search adapter.
func WithLocalSearch(c google.Client) OrchestratorOption {
	return func(o *Orchestrator) { o.local = c }
}

// WithPageReader sets the page-content adapter.
func WithPageReader(c jina.Client) OrchestratorOption {
	return func(o *Orchestrator) { o.reader = c }
}

// WithWebSearch sets the web search adapter used for social discovery.
func WithWebSearch(c brave.Client) OrchestratorOption {
	return func(o *Orchestrator) { o.web = c }
}

// WithLimiter sets the per-source rate limiter.
func WithLimiter(l *resilience.SourceLimiter) OrchestratorOption {
	return func(o *Orchestrator) { o.limiter = l }
}

// WithRunStore enables persistence of finished runs.
func WithRunStore(s store.Store) OrchestratorOption {
	return func(o *Orchestrator) { o.runs = s }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides run ID generation, used by tests.
func WithIDGenerator(gen func() string) OrchestratorOption {
	return func(o *Orchestrator) { o.newID = gen }
}

// NewOrchestrator creates an Orchestrator over the registry client and
// website finder.
func NewOrchestrator(cfg config.VerifyConfig, registry npi.Client, fdr websiteFinder, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		registry: registry,
		finder:   fdr,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, op := range opts {
		op(o)
	}
	return o
}

// Verify runs the pipeline for one practitioner. Only malformed input
// is a hard error; adapter failures are logged and the run continues
// with whatever evidence the remaining sources produce.
func (o *Orchestrator) Verify(ctx context.Context, req Request) (*model.VerificationResult, error) {
	name := strings.TrimSpace(req.DoctorName)
	if name == "" {
		return nil, eris.Wrap(model.ErrInvalidInput, "verify: doctor name is required")
	}
	if req.NPI != "" && !npiPattern.MatchString(req.NPI) {
		return nil, eris.Wrapf(model.ErrInvalidInput, "verify: malformed npi %q", req.NPI)
	}
	depth := req.Depth
	if depth == "" {
		depth = model.DepthStandard
	}
	if !depth.Valid() {
		return nil, eris.Wrapf(model.ErrInvalidInput, "verify: unknown depth %q", req.Depth)
	}

	started := o.now()
	result := &model.VerificationResult{
		VerificationID: o.newID(),
		Doctor:         model.Doctor{Name: name, NPI: req.NPI},
		CreatedAt:      started.UTC(),
	}

	zap.L().Info("verify: starting run",
		zap.String("verification_id", result.VerificationID),
		zap.String("doctor", name),
		zap.String("depth", string(depth)),
	)

	// Registry check runs at every depth when an NPI is given; without
	// one, quick runs skip the registry entirely.
	locationConfirmed := false
	if req.NPI != "" || depth != model.DepthQuick {
		if match := o.checkRegistry(ctx, name, req.NPI, req.Hints); match != nil {
			result.Doctor.NPI = match.provider.ID
			result.Doctor.Specialty = match.provider.Specialty
			result.Doctor.Credentials = match.provider.Credential
			if result.Practice.Name == "" {
				result.Practice.Name = match.provider.OrganizationName
			}
			if match.provider.Phone != "" {
				result.Practice.Phone = match.provider.Phone
			}
			result.Practice.Address = formatAddress(match.provider)
			locationConfirmed = match.locationMatched

			result.Sources = append(result.Sources, model.VerificationSource{
				Type:       model.SourceRegistry,
				Confidence: match.confidence(o.cfg.ConfidenceCap),
				Data: map[string]any{
					"npi":          match.provider.ID,
					"name":         match.provider.Name,
					"specialty":    match.provider.Specialty,
					"organization": match.provider.OrganizationName,
					"match_score":  match.score,
				},
				Timestamp: o.now().UTC(),
			})
		}
	}

	// Website discovery runs at every depth.
	websiteFound := false
	reviewCount := 0
	hasCompetitive := false
	if found := o.discoverWebsite(ctx, name, result, req.Hints); found != nil {
		websiteFound = true
		hasCompetitive = len(found.Alternatives) > 0
	}

	analyzed := false
	buyingSignals := 0
	if depth != model.DepthQuick {
		// Page analysis needs a website to read.
		if websiteFound && o.reader != nil {
			analyzed, buyingSignals = o.analyzeWebsite(ctx, name, result)
		}
		reviewCount = o.localPresence(ctx, name, result, req.Hints, &locationConfirmed)
	}

	if depth == model.DepthDeep && o.web != nil {
		o.socialPresence(ctx, name, result, req.Hints)
	}

	ev := confidence.Evidence{
		RegistryVerified: hasSource(result.Sources, model.SourceRegistry),
		SourceCount:      len(result.Sources),
		WebsiteFound:     websiteFound,
		WebsiteAnalyzed:  analyzed,
		ReviewCount:      reviewCount,
		HasCompetitive:   hasCompetitive,
		BuyingSignals:    buyingSignals,
		DataQuality:      dataQuality(result, websiteFound),
	}

	synth := confidence.New(o.cfg)
	result.OverallConfidence = synth.Overall(result)
	result.Breakdown, result.Factors = synth.Breakdown(ev)
	result.Status = synth.Status(result.OverallConfidence, ev)
	result.Flags = confidence.Flags(result.Sources, result.Practice, locationConfirmed, o.now())
	result.Recommendations = recommend.Build(result.Status, result.OverallConfidence, result.Flags, result.Practice)
	result.Clarification = recommend.Clarify(result.Status, result.Practice, len(result.Sources))

	if o.runs != nil {
		if err := o.runs.SaveResult(ctx, result); err != nil {
			zap.L().Warn("verify: persisting run failed",
				zap.String("verification_id", result.VerificationID),
				zap.Error(err),
			)
		}
	}

	zap.L().Info("verify: run finished",
		zap.String("verification_id", result.VerificationID),
		zap.String("status", string(result.Status)),
		zap.Int("confidence", result.OverallConfidence),
		zap.Int("sources", len(result.Sources)),
		zap.Duration("elapsed", o.now().Sub(started)),
	)

	return result, nil
}

// registryMatch is the accepted registry record with its match score.
type registryMatch struct {
	provider        npi.Provider
	score           float64
	locationMatched bool
}

// confidence converts the match score into a source confidence.
func (m *registryMatch) confidence(cap int) int {
	c := int(m.score*100 + 0.5)
	if c > cap {
		c = cap
	}
	return c
}

// checkRegistry queries the NPI registry and accepts the best record
// whose name similarity clears the configured threshold. A confirmed
// location adds the configured boost before clamping to 1.0.
func (o *Orchestrator) checkRegistry(ctx context.Context, name, number string, hints model.SearchHints) *registryMatch {
	first, last := splitName(name)
	req := npi.SearchRequest{Number: number, Limit: 10}
	if number == "" {
		req.FirstName = first
		req.LastName = last
		req.State = extractState(hints.Location)
	}

	providers, err := o.callRegistry(ctx, req)
	if err != nil {
		zap.L().Warn("verify: registry lookup failed", zap.Error(err))
		return nil
	}

	var best *registryMatch
	for _, p := range providers {
		sim := NameSimilarity(p.Name, name)
		if sim < o.cfg.NameMatchThreshold {
			continue
		}
		locMatched := locationMatches(p, hints.Location)
		score := sim
		if locMatched {
			score += o.cfg.LocationMatchBoost
		}
		if score > 1.0 {
			score = 1.0
		}
		if best == nil || score > best.score {
			best = &registryMatch{provider: p, score: score, locationMatched: locMatched}
		}
	}
	if best == nil && len(providers) > 0 {
		zap.L().Debug("verify: registry records rejected by name match",
			zap.String("doctor", name),
			zap.Int("records", len(providers)),
		)
	}
	return best
}

func (o *Orchestrator) callRegistry(ctx context.Context, req npi.SearchRequest) ([]npi.Provider, error) {
	if o.limiter != nil {
		if err := o.limiter.Acquire(ctx, "registry"); err != nil {
			return nil, err
		}
	}
	callCtx, cancel := o.adapterContext(ctx)
	defer cancel()

	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("registry", "search")
	return resilience.DoVal(callCtx, cfg, func(ctx context.Context) ([]npi.Provider, error) {
		return o.registry.Search(ctx, req)
	})
}

// discoverWebsite runs the finder and, when the primary candidate is a
// practice website, folds it into the result as a web source.
func (o *Orchestrator) discoverWebsite(ctx context.Context, name string, result *model.VerificationResult, hints model.SearchHints) *finder.Result {
	terms := name
	if hints.Specialty != "" {
		terms += " " + hints.Specialty
	} else if result.Doctor.Specialty != "" {
		terms += " " + result.Doctor.Specialty
	}

	practiceName := hints.PracticeName
	if practiceName == "" {
		practiceName = result.Practice.Name
	}

	found, err := o.finder.Find(ctx, terms, practiceName, hints.Location)
	if err != nil {
		zap.L().Warn("verify: website discovery failed", zap.Error(err))
		return nil
	}
	if found.Primary == nil {
		return nil
	}

	p := found.Primary
	if !p.IsPracticeWebsite {
		// A directory or listing page is not the practice's own site.
		// It contributes no evidence and must not suppress the
		// clarification question.
		zap.L().Debug("verify: best candidate is not a practice website",
			zap.String("url", p.URL),
		)
		return nil
	}
	result.Practice.Website = p.URL
	result.Practice.WebsiteVerified = true
	if result.Practice.Name == "" {
		result.Practice.Name = practiceName
	}

	conf := p.Score
	if conf > o.cfg.ConfidenceCap {
		conf = o.cfg.ConfidenceCap
	}
	result.Sources = append(result.Sources, model.VerificationSource{
		Type:       model.SourceWeb,
		Confidence: conf,
		Data: map[string]any{
			"url":        p.URL,
			"domain":     p.Domain,
			"score":      p.Score,
			"indicators": p.Indicators,
		},
		Timestamp: o.now().UTC(),
	})
	return found
}

// analyzeWebsite reads the discovered site and attaches a practice
// source when the content corroborates the practitioner.
func (o *Orchestrator) analyzeWebsite(ctx context.Context, name string, result *model.VerificationResult) (analyzed bool, buyingSignals int) {
	if o.limiter != nil {
		if err := o.limiter.Acquire(ctx, "reader"); err != nil {
			zap.L().Warn("verify: page read rate limited", zap.Error(err))
			return false, 0
		}
	}
	callCtx, cancel := o.adapterContext(ctx)
	defer cancel()

	page, err := o.reader.Read(callCtx, result.Practice.Website)
	if err != nil {
		zap.L().Warn("verify: page read failed",
			zap.String("url", result.Practice.Website),
			zap.Error(err),
		)
		return false, 0
	}
	if strings.TrimSpace(page.Content) == "" {
		return false, 0
	}

	content := strings.ToLower(page.Content)
	_, last := splitName(name)
	mentionsDoctor := last != "" && strings.Contains(content, last)

	for _, term := range buyingSignalTerms {
		if strings.Contains(content, term) {
			buyingSignals++
		}
	}

	conf := 50
	if mentionsDoctor {
		conf = 75
	}
	result.Sources = append(result.Sources, model.VerificationSource{
		Type:       model.SourcePractice,
		Confidence: conf,
		Data: map[string]any{
			"url":             page.URL,
			"title":           page.Title,
			"mentions_doctor": mentionsDoctor,
			"buying_signals":  buyingSignals,
		},
		Timestamp: o.now().UTC(),
	})
	return true, buyingSignals
}

// localPresence consults local business search for review volume and
// address corroboration. Returns the review count of the best match.
func (o *Orchestrator) localPresence(ctx context.Context, name string, result *model.VerificationResult, hints model.SearchHints, locationConfirmed *bool) int {
	if o.local == nil {
		return 0
	}
	query := name
	if result.Practice.Name != "" {
		query = result.Practice.Name
	}
	if hints.Location != "" {
		query += " " + hints.Location
	}

	if o.limiter != nil {
		if err := o.limiter.Acquire(ctx, "localsearch"); err != nil {
			zap.L().Warn("verify: local search rate limited", zap.Error(err))
			return 0
		}
	}
	callCtx, cancel := o.adapterContext(ctx)
	defer cancel()

	places, err := o.local.TextSearch(callCtx, query, 5)
	if err != nil {
		zap.L().Warn("verify: local search failed", zap.Error(err))
		return 0
	}

	for _, p := range places {
		if p.Synthetic {
			continue
		}
		if result.Practice.Phone == "" {
			result.Practice.Phone = p.Phone
		}
		if result.Practice.Address == "" {
			result.Practice.Address = p.Address
		}
		if hints.Location != "" && containsFold(p.Address, hints.Location) {
			*locationConfirmed = true
		}

		conf := 40
		if p.UserRatingCount >= 20 {
			conf = 60
		}
		result.Sources = append(result.Sources, model.VerificationSource{
			Type:       model.SourceWeb,
			Confidence: conf,
			Data: map[string]any{
				"listing": p.Title,
				"address": p.Address,
				"rating":  p.Rating,
				"reviews": p.UserRatingCount,
			},
			Timestamp: o.now().UTC(),
		})
		return p.UserRatingCount
	}
	return 0
}

// socialPresence searches for professional social profiles, deep runs
// only.
func (o *Orchestrator) socialPresence(ctx context.Context, name string, result *model.VerificationResult, hints model.SearchHints) {
	query := fmt.Sprintf("%q site:linkedin.com OR site:facebook.com OR site:instagram.com", name)
	if hints.Location != "" {
		query += " " + hints.Location
	}

	if o.limiter != nil {
		if err := o.limiter.Acquire(ctx, "websearch"); err != nil {
			zap.L().Warn("verify: social search rate limited", zap.Error(err))
			return
		}
	}
	callCtx, cancel := o.adapterContext(ctx)
	defer cancel()

	results, err := o.web.Search(callCtx, query, brave.WithCount(5))
	if err != nil {
		zap.L().Warn("verify: social search failed", zap.Error(err))
		return
	}

	var profiles []string
	_, last := splitName(name)
	for _, r := range results {
		if last != "" && !containsFold(r.Title, last) {
			continue
		}
		profiles = append(profiles, r.URL)
	}
	if len(profiles) == 0 {
		return
	}
	if len(profiles) > 3 {
		profiles = profiles[:3]
	}
	result.Practice.SocialProfiles = profiles
	result.Sources = append(result.Sources, model.VerificationSource{
		Type:       model.SourceSocial,
		Confidence: 45,
		Data: map[string]any{
			"profiles": profiles,
		},
		Timestamp: o.now().UTC(),
	})
}

func (o *Orchestrator) adapterContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(o.cfg.AdapterTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// dataQuality tiers the completeness of the assembled record.
func dataQuality(result *model.VerificationResult, websiteFound bool) confidence.DataQuality {
	points := 0
	if result.Doctor.NPI != "" {
		points++
	}
	if websiteFound {
		points++
	}
	if result.Practice.Phone != "" {
		points++
	}
	if result.Practice.Address != "" {
		points++
	}
	switch {
	case points >= 3:
		return confidence.QualityHigh
	case points == 2:
		return confidence.QualityMedium
	default:
		return confidence.QualityLow
	}
}

func hasSource(sources []model.VerificationSource, t model.SourceType) bool {
	for _, s := range sources {
		if s.Type == t {
			return true
		}
	}
	return false
}

// locationMatches reports whether the registry record's city or state
// appears in the caller-supplied location hint.
func locationMatches(p npi.Provider, location string) bool {
	if location == "" {
		return false
	}
	if p.City != "" && containsFold(location, p.City) {
		return true
	}
	return p.State != "" && extractState(location) == strings.ToUpper(p.State)
}

// extractState pulls a trailing two-letter state code from a location
// hint like "Austin, TX".
func extractState(location string) string {
	fields := strings.FieldsFunc(location, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	if len(last) == 2 && strings.ToUpper(last) == last {
		return last
	}
	return ""
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func formatAddress(p npi.Provider) string {
	parts := make([]string, 0, 3)
	if p.Street != "" {
		parts = append(parts, p.Street)
	}
	if p.City != "" {
		parts = append(parts, p.City)
	}
	if p.State != "" {
		parts = append(parts, p.State)
	}
	return strings.Join(parts, ", ")
}
