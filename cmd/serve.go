package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/zirakhr/zirak/internal/analytics"
	"github.com/zirakhr/zirak/internal/api"
	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/config"
	"github.com/zirakhr/zirak/internal/llm"
	"github.com/zirakhr/zirak/internal/profile"
	"github.com/zirakhr/zirak/internal/skills"
	"github.com/zirakhr/zirak/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		app := fx.New(
			fx.NopLogger,
			fx.Supply(cfg),
			fx.Provide(
				newServeStore,
				newRedisClient,
				newMetricsRegistry,
				newAnalyticsRecorder,
				loadCatalog,
				func(cfg *config.Config, st *store.Store) llm.Provider {
					return newLLMProvider(context.Background(), cfg, st.LLMEvents())
				},
				func(st *store.Store) *profile.Service {
					return profile.NewService(st.Profiles())
				},
				func(cfg *config.Config, st *store.Store, c *skills.Catalog, p *profile.Service, provider llm.Provider, rec analytics.Recorder) (*assessment.Service, error) {
					return newAssessmentService(cfg, st.Assessments(), c, p, provider, rec)
				},
				newAPIServer,
			),
			fx.Invoke(registerHTTPServer, registerSweeper),
		)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := app.Start(ctx); err != nil {
			return fmt.Errorf("start server: %w", err)
		}

		sig := <-app.Done()
		log.Info().Str("signal", sig.String()).Msg("shutting down")

		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return app.Stop(stopCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

func newServeStore(lc fx.Lifecycle, cfg *config.Config) (*store.Store, error) {
	st, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return closeStore() },
	})
	return st, nil
}

// newRedisClient returns nil when Redis is not configured.
func newRedisClient(lc fx.Lifecycle, cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled() {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, analytics mirror degraded")
			}
			return nil
		},
		OnStop: func(context.Context) error { return rdb.Close() },
	})
	return rdb
}

func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// newAnalyticsRecorder fans lifecycle events out to the database, the
// optional Redis mirror and Prometheus.
func newAnalyticsRecorder(st *store.Store, rdb *redis.Client, reg *prometheus.Registry) analytics.Recorder {
	rec := analytics.Multi{st.Analytics(), analytics.NewPrometheus(reg)}
	if rdb != nil {
		rec = append(rec, analytics.NewRedis(rdb))
	}
	return rec
}

func newAPIServer(cfg *config.Config, st *store.Store, svc *assessment.Service, profiles *profile.Service, c *skills.Catalog, reg *prometheus.Registry) (*api.Server, error) {
	keys, err := cfg.Auth.Principals()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		log.Warn().Msg("no API keys configured, every /api/v1 request will be rejected")
	}
	return api.NewServer(cfg.Server, api.Deps{
		Assessments: svc,
		Profiles:    profiles,
		Catalog:     c,
		Stats:       st.Analytics(),
		APIKeys:     keys,
		Registry:    reg,
		Ping:        st.Ping,
	}), nil
}

func registerHTTPServer(lc fx.Lifecycle, cfg *config.Config, srv *api.Server) {
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Str("addr", cfg.Server.Addr).Msg("API server starting")
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("API server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("API server shutting down")
			return server.Shutdown(ctx)
		},
	})
}

// registerSweeper expires overdue assessments in the background.
func registerSweeper(lc fx.Lifecycle, cfg *config.Config, svc *assessment.Service) {
	interval := cfg.Server.SweepInterval
	if interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				sweep(ctx, svc, interval)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func sweep(ctx context.Context, svc *assessment.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.ExpireOverdue(ctx)
			if err != nil {
				log.Error().Err(err).Msg("expire overdue assessments")
				continue
			}
			if n > 0 {
				log.Info().Int("count", n).Msg("expired overdue assessments")
			}
		}
	}
}
