package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/secureworks/taegis-magic/internal/bootstrap/config"
	"github.com/secureworks/taegis-magic/internal/bootstrap/database"
	"github.com/secureworks/taegis-magic/internal/bootstrap/logging"
	cacheinfra "github.com/secureworks/taegis-magic/internal/infrastructure/cache"
	sqliterepo "github.com/secureworks/taegis-magic/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/secureworks/taegis-magic/internal/infrastructure/persistence/sqlite/uow"
	"github.com/secureworks/taegis-magic/internal/ports"
	evidenceuc "github.com/secureworks/taegis-magic/internal/usecase/evidence"
	investigationsuc "github.com/secureworks/taegis-magic/internal/usecase/investigations"
	searchuc "github.com/secureworks/taegis-magic/internal/usecase/search"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewEvidenceRepository,
			fx.As(new(ports.EvidenceRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewSearchQueryRepository,
			fx.As(new(ports.SearchQueryRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(evidenceuc.NewService),
	fx.Provide(provideSearchService),
	fx.Provide(provideInvestigationsService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

// taegisClients are the external GraphQL collaborators. They are optional:
// store-only commands run without any remote transport wired in.
type taegisClients struct {
	fx.In

	Alerts         ports.AlertsClient         `optional:"true"`
	Events         ports.EventsClient         `optional:"true"`
	Investigations ports.InvestigationsClient `optional:"true"`
}

func provideSearchService(store *evidenceuc.Service, cache ports.Cache, clients taegisClients) *searchuc.Service {
	return searchuc.NewService(store, cache, clients.Alerts, clients.Events)
}

func provideInvestigationsService(store *evidenceuc.Service, clients taegisClients) *investigationsuc.Service {
	return investigationsuc.NewService(store, clients.Investigations)
}
