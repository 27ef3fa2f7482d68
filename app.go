package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/kylycht/fxpad/controller/converter"
	_ "github.com/kylycht/fxpad/docs"
	"github.com/kylycht/fxpad/model"
	"github.com/kylycht/fxpad/service"
	"github.com/kylycht/fxpad/service/forex"
	"github.com/kylycht/fxpad/service/metrics"
	"github.com/kylycht/fxpad/service/state"
	"github.com/kylycht/fxpad/service/worker"
	"github.com/kylycht/fxpad/storage"
	"github.com/kylycht/fxpad/storage/cache"
	"github.com/kylycht/fxpad/storage/file"
	"github.com/kylycht/fxpad/storage/kv"
	"github.com/kylycht/fxpad/storage/persistence"
	"github.com/kylycht/fxpad/storage/preferences"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// New runs the HTTP server until interrupted
func New(cfg Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	return a.serve(ctx)
}

type Application struct {
	cfg            Config             // application configuration
	fiberApp       *fiber.App         // underlying fiber application
	blobs          storage.BlobStore  // persistence provider
	closeBlobs     func() error       // releases the underlying connection, if any
	exchangeClient service.Exchange   // exchange rates provider
	metrics        *metrics.Metrics   // prometheus collectors
	rates          *cache.RateStore   // rate table in use
	prefs          *preferences.Store // saved user preferences
	pool           *worker.Pool       // background jobs
	stopC          chan os.Signal     // handle interrupt for clean up(close connections, etc)
}

// open builds the storage, exchange and rate layers shared by every command
func open(ctx context.Context, cfg Config) (*Application, error) {
	a := &Application{cfg: cfg, metrics: metrics.New(), pool: worker.New(cfg.Workers)}

	blobs, closeBlobs, err := openBlobs(ctx, cfg.Storage)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Storage.Backend).Msg("unable to open storage")
		return nil, err
	}
	a.blobs = blobs
	a.closeBlobs = closeBlobs

	exchangeClient, err := forex.New(forex.Config{
		BaseURL:           cfg.Exchange.BaseURL,
		APIKey:            cfg.Exchange.APIKey,
		RequestsPerSecond: cfg.Exchange.RequestsPerSecond,
		Burst:             cfg.Exchange.Burst,
		Retries:           *cfg.Exchange.Retries,
		Timeout:           cfg.Exchange.Timeout,
	})
	if err != nil {
		log.Error().Err(err).Msg("unable to create exchange client")
		a.close()
		return nil, err
	}
	a.exchangeClient = exchangeClient

	a.rates = cache.New(ctx, a.exchangeClient, a.blobs,
		cache.WithMaxAge(cfg.Rates.MaxAge),
		cache.WithMetrics(a.metrics),
	)
	a.prefs = preferences.New(a.blobs, a.metrics)

	return a, nil
}

func openBlobs(ctx context.Context, cfg StorageConfig) (storage.BlobStore, func() error, error) {
	switch cfg.Backend {
	case backendPostgres:
		connStr := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.DBUsername,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		log.Debug().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("initialize db connection")

		dbConn, err := sql.Open("postgres", connStr)
		if err != nil {
			return nil, nil, err
		}

		p := persistence.New(dbConn)
		if err := p.EnsureSchema(ctx); err != nil {
			dbConn.Close()
			return nil, nil, fmt.Errorf("unable to prepare schema: %w", err)
		}
		return p, dbConn.Close, nil

	case backendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("unable to reach redis: %w", err)
		}
		return kv.New(client, cfg.RedisPrefix), client.Close, nil

	default:
		s, err := file.New(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	}
}

func (a *Application) serve(ctx context.Context) error {
	a.stopC = make(chan os.Signal, 1)
	signal.Notify(a.stopC, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(a.stopC)

	catalog := model.DefaultCatalog()
	initial := state.New(catalog, a.rates.Rates(), a.prefs.Load(ctx))

	autosave := worker.NewLatest(a.pool, "save preferences", func(ctx context.Context, p model.UserPreferences) error {
		_, err := a.prefs.Save(ctx, p)
		return err
	})

	machine := state.NewMachine(initial,
		state.WithPreferencesHook(autosave.Offer),
		state.WithTransitionHook(a.metrics.Transition),
	)

	machineCtx, stopMachine := context.WithCancel(ctx)
	defer stopMachine()
	go machine.Run(machineCtx)
	go logChanges(machine)

	a.rates.OnUpdate(func(rates model.RateTable) {
		if _, err := machine.Dispatch(machineCtx, state.RatesUpdated(rates)); err != nil {
			log.Error().Err(err).Msg("unable to apply refreshed rates")
		}
	})

	a.pool.Go("initial rate refresh", a.rates.FetchAndUpdate)
	a.rates.Start(a.cfg.Rates.RefreshInterval)

	a.fiberApp = fiber.New(fiber.Config{DisableStartupMessage: !a.cfg.Pretty})
	a.buildRoutes(machine, catalog)

	errC := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.cfg.HTTPPort).Msg("preparing fiber http server")
		errC <- a.fiberApp.Listen(a.cfg.HTTPPort)
	}()

	var err error
	select {
	case <-a.stopC:
		log.Info().Msg("shutting down")
	case err = <-errC:
		log.Error().Err(err).Msg("unable to start http server")
	}

	a.stop(autosave, stopMachine)
	return err
}

func (a *Application) buildRoutes(machine *state.Machine, catalog model.Catalog) {
	a.fiberApp.Use(recover.New())
	a.fiberApp.Get("/swagger/*", swagger.HandlerDefault)
	a.fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{})))
	converter.New(machine, a.rates, catalog).Register(a.fiberApp)
}

// stop flushes pending writes before releasing connections
func (a *Application) stop(autosave *worker.Latest[model.UserPreferences], stopMachine context.CancelFunc) {
	if err := a.fiberApp.Shutdown(); err != nil {
		log.Error().Err(err).Msg("unable to shut down http server")
	}

	a.rates.Stop()
	stopMachine()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := autosave.Wait(ctx); err != nil {
		log.Error().Err(err).Msg("preferences not flushed")
	}

	a.close()
}

func (a *Application) close() {
	a.pool.Drain()
	if a.closeBlobs == nil {
		return
	}
	if err := a.closeBlobs(); err != nil {
		log.Error().Err(err).Msg("unable to close storage")
	}
}

func logChanges(m *state.Machine) {
	changes, cancel := m.Subscribe()
	defer cancel()

	for s := range changes {
		log.Debug().Str("anchor", s.Anchor()).Float64("value", s.AnchorValue()).Msg("state changed")
	}
}
