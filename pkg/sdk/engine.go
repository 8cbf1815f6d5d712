package matchdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/matchdex/internal/db"
	dbRedis "github.com/kailas-cloud/matchdex/internal/db/redis"
	"github.com/kailas-cloud/matchdex/internal/domain"
	domclient "github.com/kailas-cloud/matchdex/internal/domain/client"
	domfeedback "github.com/kailas-cloud/matchdex/internal/domain/feedback"
	dommatch "github.com/kailas-cloud/matchdex/internal/domain/match"
	"github.com/kailas-cloud/matchdex/internal/domain/resource"
	domslate "github.com/kailas-cloud/matchdex/internal/domain/slate"
	"github.com/kailas-cloud/matchdex/internal/domain/vertical"
	"github.com/kailas-cloud/matchdex/internal/domain/vertical/realestate"
	"github.com/kailas-cloud/matchdex/internal/index"
	feedbackrepo "github.com/kailas-cloud/matchdex/internal/repository/feedback"
	healthuc "github.com/kailas-cloud/matchdex/internal/usecase/health"
	matchuc "github.com/kailas-cloud/matchdex/internal/usecase/match"
	profileuc "github.com/kailas-cloud/matchdex/internal/usecase/profile"
	semanticuc "github.com/kailas-cloud/matchdex/internal/usecase/semantic"
	slateuc "github.com/kailas-cloud/matchdex/internal/usecase/slate"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type scoreUseCase interface {
	Score(ctx context.Context, c domclient.Profile, res resource.Candidate, policy vertical.ScoringPolicy) dommatch.Result
}

var _ slateuc.CandidateEmbedder = (*matchuc.Service)(nil)

type curateUseCase interface {
	Curate(ctx context.Context, c domclient.Profile, candidates []resource.Candidate) (domslate.Slate, bool)
	CurateBatch(ctx context.Context, clients []domclient.Profile, candidates []resource.Candidate) ([]domslate.Slate, error)
	Consolidate(ctx context.Context, c domclient.Profile, pool []resource.Candidate) (domslate.Slate, error)
	Merge(ctx context.Context, existing domslate.Slate, c domclient.Profile, arrivals []resource.Candidate) (domslate.Slate, error)
	Release()
}

type semanticUseCase interface {
	RebuildIndex(ctx context.Context, profiles []domclient.Profile) error
	SemanticSearch(ctx context.Context, text string, k int) ([]string, error)
}

type profileUseCase interface {
	Refresh(ctx context.Context, in profileuc.Input) ([]float32, error)
}

type feedbackUseCase interface {
	Dismiss(ctx context.Context, d domfeedback.Dismissed) error
	Undismiss(ctx context.Context, clientID, candidateID string) error
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Engine is the matchdex SDK entry point. It is safe for concurrent use.
type Engine struct {
	store     db.Store
	policy    vertical.ScoringPolicy
	dim       int
	scorer    scoreUseCase
	curator   curateUseCase
	semantic  semanticUseCase
	profiles  profileUseCase
	feedback  feedbackUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates an Engine. With WithRedis the provided context bounds the
// initial readiness check.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	cfg := &engineConfig{vertical: realestate.Name}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if len(cfg.addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return nil, fmt.Errorf("matchdex: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("matchdex: database not ready: %w", err)
		}
		store = s
	}

	e, err := wireEngine(store, cfg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	e.obs = obs
	return e, nil
}

func wireEngine(store db.Store, cfg *engineConfig) (*Engine, error) {
	policy, err := buildPolicy(cfg.vertical, cfg.weights)
	if err != nil {
		return nil, err
	}

	matchCfg := matchuc.DefaultConfig()
	if cfg.dismissedSimilarity != 0 || cfg.damping != 0 {
		matchCfg = matchuc.Config{DismissedSimilarity: cfg.dismissedSimilarity, Damping: cfg.damping}
	}
	if err := matchCfg.Validate(); err != nil {
		return nil, fmt.Errorf("matchdex: %w", err)
	}

	slateCfg := slateuc.DefaultConfig()
	if cfg.minScore > 0 {
		slateCfg.MinScore = cfg.minScore
	}
	if cfg.slateCap > 0 {
		slateCfg.Cap = cfg.slateCap
	}
	if cfg.workers > 0 {
		slateCfg.Workers = cfg.workers
	}

	logger := zapLogger(cfg.logger)

	var embedder domain.Embedder = noEmbedder
	if cfg.embedder != nil {
		embedder = adaptEmbedder(cfg.embedder)
	}

	e := &Engine{store: store, policy: policy, dim: cfg.vectorDimensions}

	scorer := matchuc.New(matchCfg, logger)
	if cfg.embedder != nil {
		scorer = scorer.WithEmbedder(embedder)
	}
	switch {
	case cfg.feedback != nil:
		scorer = scorer.WithFeedback(cfg.feedback)
	case store != nil:
		repo := feedbackrepo.New(store)
		scorer = scorer.WithFeedback(repo)
		e.feedback = repo
	}
	e.scorer = scorer

	curator, err := slateuc.New(scorer, policy, slateCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("matchdex: %w", err)
	}
	e.curator = curator

	idx := index.New()
	e.semantic = semanticuc.New(idx, embedder, cfg.indexFloor, logger)
	e.profiles = profileuc.New(embedder, discardWriter{}, cfg.vectorDimensions, logger)

	var pinger healthuc.DBPinger = alwaysUp{}
	if store != nil {
		pinger = store
	}
	var embChecker healthuc.EmbeddingChecker
	if hc, ok := cfg.embedder.(interface{ HealthCheck(context.Context) error }); ok {
		embChecker = hc
	}
	e.healthSvc = healthuc.New(pinger, embChecker, idx)

	return e, nil
}

func buildPolicy(name string, weights map[string]float64) (vertical.ScoringPolicy, error) {
	w, err := realestate.DefaultWeights().Override(weights)
	if err != nil {
		return nil, fmt.Errorf("matchdex: weights: %w", err)
	}
	re, err := realestate.New(w)
	if err != nil {
		return nil, fmt.Errorf("matchdex: %w", err)
	}
	policy, err := vertical.NewRegistry(re).Get(name)
	if err != nil {
		return nil, fmt.Errorf("matchdex: %w", err)
	}
	return policy, nil
}

// Close releases all resources.
func (e *Engine) Close() {
	if e.curator != nil {
		e.curator.Release()
	}
	if e.store != nil {
		e.store.Close()
	}
}

// Score evaluates one candidate for one client.
func (e *Engine) Score(ctx context.Context, c Client, cand Candidate) (Match, error) {
	start := time.Now()
	p, r, err := e.convertPair(c, cand)
	if err != nil {
		e.obs.observe("score", start, err)
		return Match{}, err
	}
	res := e.scorer.Score(ctx, p, r, e.policy)
	e.obs.observe("score", start, nil)
	return fromDomainMatch(res), nil
}

// CurateSlate builds one client's slate. ok is false when nothing qualifies.
func (e *Engine) CurateSlate(ctx context.Context, c Client, candidates []Candidate) (Slate, bool, error) {
	start := time.Now()
	p, err := toDomainClient(c, e.dim)
	if err != nil {
		e.obs.observe("slate.curate", start, err)
		return Slate{}, false, err
	}
	rs, err := toDomainCandidates(candidates)
	if err != nil {
		e.obs.observe("slate.curate", start, err)
		return Slate{}, false, err
	}
	sl, ok := e.curator.Curate(ctx, p, rs)
	e.obs.observe("slate.curate", start, nil)
	if !ok {
		return Slate{}, false, nil
	}
	out := fromDomainSlate(sl)
	e.obs.observeSlates("slate.curate", out)
	return out, true, nil
}

// CurateBatch curates slates for many clients concurrently. Clients with no
// qualifying match get no slate. When ctx ends the finished slates are
// returned together with the context error.
func (e *Engine) CurateBatch(ctx context.Context, clients []Client, candidates []Candidate) ([]Slate, error) {
	start := time.Now()
	ps, err := toDomainClients(clients, e.dim)
	if err != nil {
		e.obs.observe("slate.batch", start, err)
		return nil, err
	}
	rs, err := toDomainCandidates(candidates)
	if err != nil {
		e.obs.observe("slate.batch", start, err)
		return nil, err
	}
	slates, err := e.curator.CurateBatch(ctx, ps, rs)
	e.obs.observe("slate.batch", start, err)

	out := make([]Slate, len(slates))
	for i, s := range slates {
		out[i] = fromDomainSlate(s)
	}
	e.obs.observeSlates("slate.batch", out...)
	if err != nil {
		return out, fmt.Errorf("curate batch: %w", err)
	}
	return out, nil
}

// Consolidate rebuilds one client's slate from the full candidate pool.
// The result may be empty.
func (e *Engine) Consolidate(ctx context.Context, c Client, pool []Candidate) (Slate, error) {
	start := time.Now()
	p, err := toDomainClient(c, e.dim)
	if err != nil {
		e.obs.observe("slate.consolidate", start, err)
		return Slate{}, err
	}
	rs, err := toDomainCandidates(pool)
	if err != nil {
		e.obs.observe("slate.consolidate", start, err)
		return Slate{}, err
	}
	sl, err := e.curator.Consolidate(ctx, p, rs)
	e.obs.observe("slate.consolidate", start, err)
	if err != nil {
		return Slate{}, fmt.Errorf("consolidate: %w", err)
	}
	out := fromDomainSlate(sl)
	e.obs.observeSlates("slate.consolidate", out)
	return out, nil
}

// Merge folds newly arrived candidates into an existing slate, keeping the
// best entries up to the slate's cap.
func (e *Engine) Merge(ctx context.Context, existing Slate, c Client, arrivals []Candidate) (Slate, error) {
	start := time.Now()
	cur, err := toDomainSlate(existing)
	if err != nil {
		e.obs.observe("slate.merge", start, err)
		return Slate{}, err
	}
	p, err := toDomainClient(c, e.dim)
	if err != nil {
		e.obs.observe("slate.merge", start, err)
		return Slate{}, err
	}
	rs, err := toDomainCandidates(arrivals)
	if err != nil {
		e.obs.observe("slate.merge", start, err)
		return Slate{}, err
	}
	sl, err := e.curator.Merge(ctx, cur, p, rs)
	e.obs.observe("slate.merge", start, err)
	if err != nil {
		return Slate{}, fmt.Errorf("merge: %w", err)
	}
	out := fromDomainSlate(sl)
	e.obs.observeSlates("slate.merge", out)
	return out, nil
}

// RebuildIndex replaces the semantic index with the embedded clients.
// Clients without an embedding are skipped.
func (e *Engine) RebuildIndex(ctx context.Context, clients []Client) error {
	start := time.Now()
	ps, err := toDomainClients(clients, e.dim)
	if err == nil {
		err = e.semantic.RebuildIndex(ctx, ps)
	}
	e.obs.observe("index.rebuild", start, err)
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	return nil
}

// SemanticSearch returns up to k client IDs most similar to text.
// Before the first RebuildIndex it returns no IDs and no error.
func (e *Engine) SemanticSearch(ctx context.Context, text string, k int) ([]string, error) {
	start := time.Now()
	ids, err := e.semantic.SemanticSearch(ctx, text, k)
	e.obs.observe("index.search", start, err)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return ids, nil
}

// ProfileDocument returns the text a client's profile embedding is computed
// from. messages are in chronological order.
func ProfileDocument(c Client, messages []string) (string, error) {
	p, err := toDomainClient(c, 0)
	if err != nil {
		return "", err
	}
	return profileuc.Compose(profileuc.Input{Profile: p, Messages: messages}), nil
}

// RefreshProfile embeds the client's profile document and returns the
// vector. A client with no signal yields a nil vector and no error.
func (e *Engine) RefreshProfile(ctx context.Context, c Client, messages []string) ([]float32, error) {
	start := time.Now()
	p, err := toDomainClient(c, 0)
	if err != nil {
		e.obs.observe("profile.refresh", start, err)
		return nil, err
	}
	vec, err := e.profiles.Refresh(ctx, profileuc.Input{Profile: p, Messages: messages})
	e.obs.observe("profile.refresh", start, err)
	if err != nil {
		return nil, fmt.Errorf("refresh profile: %w", err)
	}
	return vec, nil
}

// Dismiss records that a client dismissed a candidate. Later candidates
// similar to embedding are penalized for that client. Requires WithRedis.
func (e *Engine) Dismiss(ctx context.Context, clientID, candidateID string, embedding []float32) error {
	start := time.Now()
	if e.feedback == nil {
		e.obs.observe("feedback.dismiss", start, ErrNoStore)
		return ErrNoStore
	}
	d, err := domfeedback.New(clientID, candidateID, clientID, embedding, time.Now().UnixMilli())
	if err == nil {
		err = e.feedback.Dismiss(ctx, d)
	}
	e.obs.observe("feedback.dismiss", start, err)
	if err != nil {
		return fmt.Errorf("dismiss: %w", err)
	}
	return nil
}

// Undismiss removes a dismissal. Requires WithRedis.
func (e *Engine) Undismiss(ctx context.Context, clientID, candidateID string) error {
	start := time.Now()
	if e.feedback == nil {
		e.obs.observe("feedback.undismiss", start, ErrNoStore)
		return ErrNoStore
	}
	err := e.feedback.Undismiss(ctx, clientID, candidateID)
	e.obs.observe("feedback.undismiss", start, err)
	if err != nil {
		return fmt.Errorf("undismiss: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (e *Engine) Ping(ctx context.Context) error {
	if e.store == nil {
		return ErrNoStore
	}
	if err := e.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (e *Engine) convertPair(c Client, cand Candidate) (domclient.Profile, resource.Candidate, error) {
	p, err := toDomainClient(c, e.dim)
	if err != nil {
		return domclient.Profile{}, resource.Candidate{}, err
	}
	r, err := toDomainCandidate(cand)
	if err != nil {
		return domclient.Profile{}, resource.Candidate{}, err
	}
	return p, r, nil
}

// adaptEmbedder exposes a public Embedder as a domain.Embedder.
func adaptEmbedder(inner Embedder) domain.EmbedderFunc {
	return func(ctx context.Context, text string) (domain.EmbeddingResult, error) {
		r, err := inner.Embed(ctx, text)
		if err != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
		}
		return domain.EmbeddingResult{
			Embedding:    r.Embedding,
			PromptTokens: r.PromptTokens,
			TotalTokens:  r.TotalTokens,
		}, nil
	}
}

// noEmbedder fails every call; it stands in when no Embedder is configured.
var noEmbedder = domain.EmbedderFunc(func(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, ErrNoEmbedder
})

// discardWriter drops profile vectors; SDK callers keep their own.
type discardWriter struct{}

func (discardWriter) SetEmbedding(context.Context, string, []float32) error { return nil }
func (discardWriter) ClearEmbedding(context.Context, string) error          { return nil }

type alwaysUp struct{}

func (alwaysUp) Ping(context.Context) error { return nil }
