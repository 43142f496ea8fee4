// Package cli builds fully wired engines from configuration, shared by the
// serve and ask commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	concierge "github.com/campushq/concierge"
	"github.com/campushq/concierge/internal/config"
	"github.com/campushq/concierge/internal/logging"
	"github.com/campushq/concierge/internal/metrics"
	"github.com/campushq/concierge/pkg/adapters/llm"
	"github.com/campushq/concierge/pkg/adapters/mock"
	redisAdapter "github.com/campushq/concierge/pkg/adapters/redis"
	"github.com/campushq/concierge/pkg/adapters/sqlite"
	"github.com/campushq/concierge/pkg/trace"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// Runtime holds the wired engine and the resources the command must close
// on shutdown.
type Runtime struct {
	Engine    *concierge.Engine
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	directory *sqlite.Directory
	recorder  *trace.Recorder
	redis     *backend.Client
}

// Close releases everything the factory opened.
func (r *Runtime) Close() {
	if r.recorder != nil {
		r.recorder.Close()
	}
	if r.directory != nil {
		_ = r.directory.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg config.Config) *slog.Logger {
	if cfg.LogFormat == "json" {
		return logging.NewJSON(cfg.Level())
	}
	return logging.New(cfg.Level())
}

// CreateRuntime wires the engine with standard CLI conventions: the sqlite
// campus directory, mock delivery leaves, an OpenAI-compatible completion
// endpoint, and optionally Redis-backed sessions with distributed locking.
func CreateRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	directory, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening campus directory: %w", err)
	}
	rt.directory = directory
	if cfg.Database.Seed {
		if err := directory.Seed(ctx); err != nil {
			rt.Close()
			return nil, fmt.Errorf("error seeding campus directory: %w", err)
		}
	}

	completion, err := llm.New(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("error creating completion client: %w", err)
	}

	collector := metrics.New(rt.Registry)

	recorderOpts := []trace.Option{
		trace.WithLogger(logger),
		trace.WithDropHook(collector.TraceEventDropped),
	}
	if cfg.TraceDir != "" {
		recorderOpts = append(recorderOpts, trace.WithDir(cfg.TraceDir))
	}
	rt.recorder = trace.NewRecorder(recorderOpts...)

	engineOpts := []concierge.Option{
		concierge.WithLogger(logger),
		concierge.WithTraceSink(rt.recorder),
		concierge.WithMetrics(collector),
		concierge.WithHistoryCap(cfg.HistoryCap),
		concierge.WithLockTTL(cfg.LockTTL),
	}

	if cfg.Redis.Addr != "" {
		client := backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			rt.Close()
			return nil, fmt.Errorf("error connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		rt.redis = client

		storeOpts := []redisAdapter.StoreOption{}
		if cfg.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redisAdapter.WithTTL(cfg.Redis.TTL))
		}
		engineOpts = append(engineOpts,
			concierge.WithHistoryStore(redisAdapter.NewHistoryStore(client, cfg.Redis.Prefix, storeOpts...)),
			concierge.WithLocker(redisAdapter.NewLocker(client, cfg.Redis.Prefix)),
		)
		logger.Info("using redis session backend", "addr", cfg.Redis.Addr)
	}

	engine, err := concierge.New(completion, concierge.Specialists{
		Data:     directory,
		Chart:    mock.NewChartRenderer(),
		Mail:     mock.NewMailer(logger),
		Mutation: mock.NewMutator(),
		External: mock.NewExternalSystems(),
	}, engineOpts...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	rt.Engine = engine

	return rt, nil
}
