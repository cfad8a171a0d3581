package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"doc-qa/internal/answer"
	"doc-qa/internal/cache"
	"doc-qa/internal/config"
	"doc-qa/internal/document"
	"doc-qa/internal/events"
	"doc-qa/internal/llm"
	"doc-qa/internal/logger"
	"doc-qa/internal/responder"
	"doc-qa/internal/selector"
	"doc-qa/internal/session"
	"doc-qa/internal/tutor"
)

// Deps bundles the runtime dependencies of the server.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Loader    *document.Loader
	LLM       llm.Client
	Generator *answer.Generator
	Responder *responder.Responder
	Tutor     *tutor.Tutor

	closers []func() error
}

// Document returns the reference document, re-extracting it when the file
// changed.
func (d Deps) Document() (*document.Document, error) {
	return d.Loader.Load(d.Config.DocumentPath)
}

// Close releases connections in reverse order of creation.
func (d Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Log.Warn("close failed", "err", err)
		}
	}
}

// Build loads env, config, and shared components. A missing credential or
// an unreadable reference document is fatal.
func Build(ctx context.Context) (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	deps := Deps{Config: cfg, Log: log}

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	deps.LLM = llmClient

	deps.Loader = document.NewLoader(log)
	if _, err := deps.Document(); err != nil {
		return Deps{}, fmt.Errorf("failed to load reference document: %w", err)
	}

	candidates := cfg.LLMModels
	if cfg.ProbeModels {
		candidates, err = answer.Probe(ctx, log, llmClient, candidates)
		if err != nil {
			return Deps{}, fmt.Errorf("failed to probe models: %w", err)
		}
	}
	if len(candidates) == 0 {
		return Deps{}, fmt.Errorf("LLM_MODELS must list at least one model")
	}

	var rdb *redis.Client
	if cfg.SessionProvider == "redis" || cfg.CacheProvider == "redis" {
		rdb, err = connectRedis(ctx, cfg)
		if err != nil {
			return Deps{}, err
		}
		deps.closers = append(deps.closers, rdb.Close)
		log.Info("connected to Redis", "addr", cfg.RedisAddr)
	}

	sessions, err := buildSessions(cfg, rdb)
	if err != nil {
		deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize sessions: %w", err)
	}
	fileRefs, err := buildCache(cfg, rdb)
	if err != nil {
		deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	pub, err := buildEvents(cfg, log, &deps)
	if err != nil {
		deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize events: %w", err)
	}
	sel, err := buildSelector(cfg, log, llmClient, fileRefs)
	if err != nil {
		deps.Close()
		return Deps{}, err
	}

	deps.Generator = answer.NewGenerator(log, llmClient, answer.FallbackPolicy{
		Candidates:  candidates,
		MaxAttempts: cfg.RetryAttempts,
		BaseDelay:   cfg.RetryDelay,
	}, cfg.MaxOutputTokens)
	deps.Responder = responder.New(log, sessions, deps.Document, sel, deps.Generator, pub)
	deps.Tutor = tutor.New(deps.Generator)

	log.Info("dependencies ready",
		"policy", cfg.ContextPolicy,
		"models", candidates,
		"sessions", cfg.SessionProvider,
		"events", cfg.EventsProvider,
	)
	return deps, nil
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "models", cfg.LLMModels, "base_url", cfg.OpenAIBaseURL)
		return client, nil
	case "stub":
		log.Warn("using echo LLM stub; answers are not generated")
		return llm.NewEchoClient(), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: openai, stub)", cfg.LLMProvider)
	}
}

func connectRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required when a redis provider is selected")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

func buildSessions(cfg config.Config, rdb *redis.Client) (session.Store, error) {
	switch cfg.SessionProvider {
	case "memory":
		return session.NewMemoryStore(cfg.SessionTTL), nil
	case "redis":
		return session.NewRedisStore(rdb, cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("invalid SESSION_PROVIDER: %s (valid options: memory, redis)", cfg.SessionProvider)
	}
}

func buildCache(cfg config.Config, rdb *redis.Client) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		return cache.NewRedisCache(rdb), nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: memory, redis)", cfg.CacheProvider)
	}
}

func buildEvents(cfg config.Config, log *slog.Logger, deps *Deps) (events.Publisher, error) {
	switch cfg.EventsProvider {
	case "none":
		return events.Nop{}, nil
	case "nats":
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("NATS_URL is required when EVENTS_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		pub := events.NewNATS(nc)
		deps.closers = append(deps.closers, pub.Close)
		log.Info("publishing exchanges to NATS", "subject", events.SubjectExchange)
		return pub, nil
	default:
		return nil, fmt.Errorf("invalid EVENTS_PROVIDER: %s (valid options: none, nats)", cfg.EventsProvider)
	}
}

func buildSelector(cfg config.Config, log *slog.Logger, client llm.Client, refs cache.Cache) (selector.Selector, error) {
	switch cfg.ContextPolicy {
	case selector.PolicyFull:
		return selector.FullPolicy{}, nil
	case selector.PolicyRelevance:
		return selector.RelevancePolicy{TopK: cfg.TopK, FrontMatter: cfg.FrontMatterPages}, nil
	case selector.PolicyRemote:
		return selector.RemotePolicy{Log: log, Uploader: client, Cache: refs, TTL: cfg.FileRefTTL}, nil
	default:
		return nil, fmt.Errorf("invalid CONTEXT_POLICY: %s (valid options: full, relevance, remote)", cfg.ContextPolicy)
	}
}
