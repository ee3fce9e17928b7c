package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zirakhr/zirak/internal/analytics"
	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/config"
	"github.com/zirakhr/zirak/internal/grader"
	"github.com/zirakhr/zirak/internal/llm"
	"github.com/zirakhr/zirak/internal/pgstore"
	"github.com/zirakhr/zirak/internal/profile"
	"github.com/zirakhr/zirak/internal/questionbank"
	"github.com/zirakhr/zirak/internal/skills"
	"github.com/zirakhr/zirak/internal/store"
)

// openStore opens the configured database. The returned close func
// releases everything opened.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, func() error, error) {
	if cfg.Store.Driver == config.DriverPostgres {
		db, err := pgstore.Open(ctx, pgstore.Config{DSN: cfg.Store.DSN, MaxConns: cfg.Store.MaxConns})
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return db.Store, db.Close, nil
	}

	if !strings.HasPrefix(cfg.Store.DSN, "file:") {
		if err := store.EnsureDir(cfg.Store.DSN); err != nil {
			return nil, nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	s, err := store.Open(cfg.Store.DSN)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func loadCatalog(cfg *config.Config) (*skills.Catalog, error) {
	if cfg.Assessment.CatalogFile == "" {
		return skills.DefaultCatalog(), nil
	}
	c, err := skills.LoadCatalogFile(cfg.Assessment.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load skill catalog: %w", err)
	}
	return c, nil
}

// newLLMProvider builds the provider, or returns nil when AI features are
// off or the provider cannot be created.
func newLLMProvider(ctx context.Context, cfg *config.Config, rec llm.EventRecorder) llm.Provider {
	p, err := llm.NewProvider(ctx, cfg.LLM, rec)
	if err != nil {
		log.Warn().Err(err).Msg("LLM provider not configured, AI features unavailable")
		return nil
	}
	if p != nil {
		log.Info().Str("provider", p.Name()).Str("model", p.ModelID()).Msg("LLM provider ready")
	}
	return p
}

// engine bundles the services one CLI invocation needs.
type engine struct {
	store       *store.Store
	catalog     *skills.Catalog
	profiles    *profile.Service
	assessments *assessment.Service
	close       func() error
}

func newEngine(ctx context.Context, cfg *config.Config) (*engine, error) {
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		closeStore()
		return nil, err
	}

	profiles := profile.NewService(st.Profiles())
	provider := newLLMProvider(ctx, cfg, st.LLMEvents())
	svc, err := newAssessmentService(cfg, st.Assessments(), catalog, profiles, provider, st.Analytics())
	if err != nil {
		closeStore()
		return nil, err
	}
	return &engine{
		store:       st,
		catalog:     catalog,
		profiles:    profiles,
		assessments: svc,
		close:       closeStore,
	}, nil
}

// newAssessmentService wires question generators and the code grader
// from config. provider may be nil.
func newAssessmentService(
	cfg *config.Config,
	repo assessment.Repository,
	catalog *skills.Catalog,
	profiles *profile.Service,
	provider llm.Provider,
	rec analytics.Recorder,
) (*assessment.Service, error) {
	d := assessment.Deps{
		Repo:      repo,
		Skills:    catalog,
		Profiles:  profiles,
		Analytics: rec,
	}

	if cfg.Assessment.BankFile != "" {
		bank, err := questionbank.LoadBankFile(cfg.Assessment.BankFile)
		if err != nil {
			return nil, fmt.Errorf("load question bank: %w", err)
		}
		d.Questions = questionbank.NewBankGenerator(bank, nil)
	}
	if provider != nil {
		if cfg.Assessment.AIQuestions {
			d.AIQuestions = questionbank.NewLLMGenerator(provider, questionbank.DefaultLLMConfig())
		}
		if cfg.Assessment.AIGrading {
			d.Grader = grader.NewLLMGrader(provider, grader.DefaultConfig())
		}
	}
	return assessment.NewService(d, cfg.Assessment.Service()), nil
}
