package cli

import (
	"context"
	"fmt"
	"time"

	"guidechat/internal/config"
	"guidechat/internal/extractor"
	"guidechat/internal/logging"
	"guidechat/internal/reference"
	"guidechat/internal/repository"
	"guidechat/internal/service"
	"guidechat/internal/upstream"
	"guidechat/internal/utils"
)

const referenceLoadTimeout = 30 * time.Second

// app holds the wired components shared by serve and chat.
type app struct {
	cache *reference.Cache
	chat  *service.ChatService
	repo  *repository.PostgresRepository
}

func (a *app) Close() error {
	if a.repo != nil {
		return a.repo.Close()
	}
	return nil
}

func newPlaceClient(cfg *config.Config) *upstream.PlaceClient {
	return upstream.NewPlaceClient(cfg.Upstream.PlacesAPIBase, cfg.Upstream.Timeout)
}

func newAmenityClient(cfg *config.Config) *upstream.AmenityClient {
	return upstream.NewAmenityClient(cfg.Upstream.BackendAPIBase, cfg.Upstream.Timeout)
}

func newReferenceCache(cfg *config.Config, log *logging.Logger) *reference.Cache {
	return reference.NewCache(newPlaceClient(cfg), newAmenityClient(cfg),
		reference.WithSnapshot(cfg.Reference.SnapshotPath),
		reference.WithLogger(log),
	)
}

// buildApp wires the dialogue engine and its collaborators from config.
func buildApp(ctx context.Context, cfg *config.Config, log *logging.Logger) (*app, error) {
	a := &app{cache: newReferenceCache(cfg, log)}

	loadCtx, cancel := context.WithTimeout(ctx, referenceLoadTimeout)
	defer cancel()
	if err := a.cache.Load(loadCtx); err != nil {
		log.Warn().Err(err).Msg("⚠️  reference data incomplete, using fallback lists")
	}
	log.Info().
		Int("provinces", len(a.cache.Provinces())).
		Int("amenities", len(a.cache.Amenities())).
		Msg("✅ Reference data loaded")

	var store repository.SessionStore
	var searchLogs repository.SearchLogger
	if cfg.PostgresEnabled() {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
			cfg.Session.TTL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		a.repo = repo
		store = repo
		searchLogs = repo
		log.Info().Msg("✅ Connected to PostgreSQL database")
	} else {
		store = repository.NewMemoryStore(cfg.Session.TTL)
		log.Info().Dur("ttl", cfg.Session.TTL).Msg("ℹ️  Using in-memory session store")
	}

	matcher := utils.NewFuzzyMatcher()
	extract := extractor.New(a.cache, matcher)
	composer := service.NewComposer(extract, a.cache, cfg.Search.PageLimit)
	ranker := service.NewRanker(
		cfg.Ranking.WeightPrice,
		cfg.Ranking.WeightArea,
		cfg.Ranking.WeightPosition,
		cfg.Ranking.Reorder,
	)
	backend := upstream.NewSearchClient(cfg.Upstream.BackendAPIBase, cfg.Upstream.SearchTimeout)
	search := service.NewSearchService(backend, composer, ranker, searchLogs, cfg.Search.DisplayLimit, log)
	engine := service.NewEngine(extract, search, log)
	a.chat = service.NewChatService(engine, store, log)

	log.Info().Msg("✅ Services initialized")
	return a, nil
}
