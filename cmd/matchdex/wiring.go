package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/config"
	"github.com/kailas-cloud/matchdex/internal/db"
	dbRedis "github.com/kailas-cloud/matchdex/internal/db/redis"
	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/vertical"
	"github.com/kailas-cloud/matchdex/internal/domain/vertical/realestate"
	"github.com/kailas-cloud/matchdex/internal/index"
	logpkg "github.com/kailas-cloud/matchdex/internal/logger"
	"github.com/kailas-cloud/matchdex/internal/metrics"
	budgetrepo "github.com/kailas-cloud/matchdex/internal/repository/budget"
	candidaterepo "github.com/kailas-cloud/matchdex/internal/repository/candidate"
	clientrepo "github.com/kailas-cloud/matchdex/internal/repository/client"
	"github.com/kailas-cloud/matchdex/internal/repository/embcache"
	feedbackrepo "github.com/kailas-cloud/matchdex/internal/repository/feedback"
	slaterepo "github.com/kailas-cloud/matchdex/internal/repository/slate"
	geminiEmb "github.com/kailas-cloud/matchdex/internal/transport/gemini"
	openaiEmb "github.com/kailas-cloud/matchdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/matchdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/matchdex/internal/usecase/health"
	matchuc "github.com/kailas-cloud/matchdex/internal/usecase/match"
	passuc "github.com/kailas-cloud/matchdex/internal/usecase/pass"
	profileuc "github.com/kailas-cloud/matchdex/internal/usecase/profile"
	semanticuc "github.com/kailas-cloud/matchdex/internal/usecase/semantic"
	slateuc "github.com/kailas-cloud/matchdex/internal/usecase/slate"
	usageuc "github.com/kailas-cloud/matchdex/internal/usecase/usage"
	"github.com/kailas-cloud/matchdex/internal/version"
)

// engine is the composition root shared by every command.
type engine struct {
	cfg    config.Config
	logger *zap.Logger
	store  db.Store

	clients *clientrepo.Repo
	slates  *slaterepo.Repo

	curator  *slateuc.Service
	profiles *profileuc.Service
	semantic *semanticuc.Service
	passes   *passuc.Service
	health   *healthuc.Service
	usage    *usageuc.Service
}

func newEngine(ctx context.Context, env string) (*engine, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting matchdex",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("vertical", cfg.Matching.Vertical),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	// Register collectors explicitly (no init())
	metrics.Register()

	e, err := assemble(ctx, cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return e, nil
}

func assemble(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger) (*engine, error) {
	policy, err := buildPolicy(cfg.Matching)
	if err != nil {
		return nil, err
	}

	// Pass nil interfaces (not typed nil pointers!) if budget is not configured.
	var (
		budget       embeddinguc.BudgetChecker
		budgetReader usageuc.BudgetReader
	)
	if b := cfg.Embedding.Budget; b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0 {
		action := embeddinguc.BudgetActionWarn
		if b.Action == "reject" {
			action = embeddinguc.BudgetActionReject
		}
		tracker := embeddinguc.NewBudgetTracker(
			cfg.Embedding.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger,
		)
		tracker.WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultGrace))
		budget = tracker
		budgetReader = tracker
	}

	base, err := buildProvider(ctx, cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}
	cacheTTL := time.Duration(cfg.Database.CacheTTLHrs) * time.Hour
	docEmbedder := buildEmbedder(base, cfg.Embedding, cfg.Embedding.DocumentInstruction, store, cacheTTL, budget, logger)
	queryEmbedder := buildEmbedder(base, cfg.Embedding, cfg.Embedding.QueryInstruction, store, cacheTTL, budget, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	dim := cfg.Embedding.Dimensions
	clients := clientrepo.New(store, dim)
	candidates := candidaterepo.New(store, time.Duration(cfg.Database.CandidateTTLHrs)*time.Hour)
	feedback := feedbackrepo.New(store)
	slates := slaterepo.New(store)
	idx := index.New()

	scorer := matchuc.New(matchuc.Config{
		DismissedSimilarity: cfg.Matching.DismissedSimilarity,
		Damping:             cfg.Matching.Damping,
	}, logger).WithEmbedder(docEmbedder).WithFeedback(feedback)

	curator, err := slateuc.New(scorer, policy, slateuc.Config{
		MinScore: cfg.Matching.MinScore,
		Cap:      cfg.Matching.SlateCap,
		Workers:  cfg.Matching.Workers,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create curator: %w", err)
	}

	semantic := semanticuc.New(idx, queryEmbedder, cfg.Index.Floor, logger).WithProfiles(clients)
	profiles := profileuc.New(docEmbedder, clients, dim, logger).WithConcurrency(cfg.Matching.Workers)
	passes := passuc.New(candidates, clients, semantic, curator, slates, logger).
		WithTimeout(cfg.Matching.PassTimeout())

	return &engine{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		clients:  clients,
		slates:   slates,
		curator:  curator,
		profiles: profiles,
		semantic: semantic,
		passes:   passes,
		health:   healthuc.New(store, newEmbeddingHealthChecker(docEmbedder), idx),
		usage:    usageuc.New(budgetReader),
	}, nil
}

func (e *engine) Close() {
	e.curator.Release()
	e.store.Close()
	_ = e.logger.Sync()
}

// refreshProfiles recomputes every client's profile embedding from its
// current attributes, tags, notes and recent messages.
func (e *engine) refreshProfiles(ctx context.Context) error {
	all, err := e.clients.List(ctx)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	inputs := make([]profileuc.Input, 0, len(all))
	for _, p := range all {
		msgs, err := e.clients.Messages(ctx, p.ID())
		if err != nil {
			e.logger.Warn("load messages failed", zap.String("client_id", p.ID()), zap.Error(err))
		}
		inputs = append(inputs, profileuc.Input{Profile: p, Messages: msgs})
	}

	failures, err := e.profiles.RefreshAll(ctx, inputs)
	for id, ferr := range failures {
		e.logger.Warn("profile refresh failed", zap.String("client_id", id), zap.Error(ferr))
	}
	if err != nil {
		return fmt.Errorf("refresh profiles: %w", err)
	}
	e.logger.Info("profiles refreshed",
		zap.Int("clients", len(inputs)),
		zap.Int("failures", len(failures)),
	)
	return nil
}

// cycle refreshes profiles then runs a full curation pass.
func (e *engine) cycle(ctx context.Context) (passuc.Report, error) {
	if err := e.refreshProfiles(ctx); err != nil {
		return passuc.Report{}, err
	}
	report, err := e.passes.Run(ctx)
	if err != nil {
		return report, fmt.Errorf("curation pass: %w", err)
	}
	return report, nil
}

func buildPolicy(cfg config.MatchingConfig) (vertical.ScoringPolicy, error) {
	weights, err := realestate.DefaultWeights().Override(cfg.Weights)
	if err != nil {
		return nil, fmt.Errorf("matching.weights: %w", err)
	}
	re, err := realestate.New(weights)
	if err != nil {
		return nil, fmt.Errorf("realestate policy: %w", err)
	}
	policy, err := vertical.NewRegistry(re).Get(cfg.Vertical)
	if err != nil {
		return nil, fmt.Errorf("matching.vertical: %w", err)
	}
	return policy, nil
}

func buildProvider(ctx context.Context, cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.Provider {
	case "gemini":
		emb, err := geminiEmb.NewEmbedder(ctx, &geminiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini embedder: %w", err)
		}
		return emb, nil
	default:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		}), nil
	}
}

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	base domain.Embedder,
	cfg config.EmbeddingConfig,
	instruction string,
	store db.Store,
	cacheTTL time.Duration,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = embcache.New(
		base, store,
		embcache.Config{Model: cfg.Model, Dimensions: cfg.Dimensions, TTL: cacheTTL},
		metrics.EmbeddingCacheTotal, logger,
	)

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, embeddinguc.Meta{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
	}, budget, logger)

	// Instruction prefix (outermost, so the cache key includes it)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
