package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"hikvision-integration/config"
	"hikvision-integration/models"
	"hikvision-integration/pkg/bitrix"
	"hikvision-integration/repository"
	"hikvision-integration/service/workday"
)

// loadSettings reads the environment and applies flag overrides.
func loadSettings(opts *RootOptions, logOut io.Writer) (*config.AppConfig, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if opts.CompaniesFile != "" {
		cfg.CompaniesFile = opts.CompaniesFile
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	return cfg, config.NewLogger(logOut, cfg.LogLevel), nil
}

// app is the service graph shared by serve, sweep and sync-employees.
type app struct {
	cfg       *config.AppConfig
	log       *slog.Logger
	registry  *config.Registry
	stores    *repository.Stores
	bitrix    *bitrix.Client
	backends  map[string]workday.Backend
	notifiers map[string]workday.Notifier
	sweeper   *workday.Sweeper
	mongo     *mongo.Client
}

func buildApp(ctx context.Context, opts *RootOptions, logOut io.Writer) (*app, error) {
	cfg, log, err := loadSettings(opts, logOut)
	if err != nil {
		return nil, err
	}

	registry, err := config.LoadRegistry(cfg.CompaniesFile)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, registry: registry}

	var db *mongo.Database
	if usesMongo(registry.All()) {
		client, err := config.MongoConnect(ctx, cfg.MongoString)
		if err != nil {
			return nil, err
		}
		a.mongo = client
		db = client.Database(cfg.MongoDatabase)
	}
	a.stores = repository.NewStores(cfg.DataDir, db)
	if m := a.stores.Mongo(); m != nil {
		if err := m.EnsureIndexes(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	httpClient := &http.Client{Timeout: cfg.BitrixTimeout}
	a.bitrix = bitrix.NewClient(httpClient)

	a.backends, err = workday.NewBackends(registry.All(), workday.Deps{
		Remote: a.bitrix,
		Stores: a.stores,
		Logger: log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.notifiers = workday.NewNotifiers(registry.All(), httpClient)
	a.sweeper = workday.NewSweeper(a.backends, log)

	log.Info("configuration loaded",
		"companies", len(registry.All()),
		"companies_file", cfg.CompaniesFile,
		"data_dir", cfg.DataDir,
		"mongo", a.mongo != nil,
	)
	return a, nil
}

func (a *app) engine() *workday.Engine {
	return workday.NewEngine(a.registry, a.backends, a.notifiers, a.log)
}

func (a *app) Close() {
	config.DisconnectDB(a.mongo)
}

func usesMongo(companies []*models.Company) bool {
	for _, c := range companies {
		if c.Storage == models.StorageMongo {
			return true
		}
	}
	return false
}
