package main

import (
	"context"
	"embed"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"
	"github.com/appetiteclub/apt/seed"
	"github.com/joho/godotenv"

	"github.com/appetiteclub/dinein/pkg"
	"github.com/appetiteclub/dinein/services/dinein/internal/dining"
	"github.com/appetiteclub/dinein/services/dinein/internal/menu"
	"github.com/appetiteclub/dinein/services/dinein/internal/mongo"
	"github.com/appetiteclub/dinein/services/dinein/internal/postgres"
)

const (
	appNamespace = "DINEIN"
	appName      = "dinein"
	appVersion   = "0.1.0"
)

//go:embed seed.json
var seedFS embed.FS

// catalog is a local menu store.
type catalog interface {
	dining.MenuLookup
	dining.MenuWriter
}

// store is everything a storage backend contributes.
type store struct {
	repos   dining.Repos
	tx      dining.TxRunner
	catalog catalog
	tracker seed.Tracker
	stop    func(context.Context) error
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	st, err := openStore(ctx, config, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot open store: %v", appName, appVersion, err)
	}

	lookup, writer, menuHooks, err := setupMenu(ctx, config, st.catalog, logger)
	if err != nil {
		_ = st.stop(context.Background())
		log.Fatalf("%s(%s) cannot setup menu: %v", appName, appVersion, err)
	}

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := pkg.NewNATSSubscriber(natsURL, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	service := dining.NewService(dining.ServiceDeps{
		Repos:     st.repos,
		Menu:      lookup,
		Tx:        st.tx,
		Publisher: pub,
	}, logger)

	kitchenSub := dining.NewKitchenTicketSubscriber(sub, service, logger)

	rateLimit, err := dining.NewRateLimit(config.GetStringOrDef("public.ratelimit", dining.DefaultPublicRate))
	if err != nil {
		log.Fatalf("%s(%s) cannot setup rate limit: %v", appName, appVersion, err)
	}

	handler := dining.NewHandler(dining.HandlerDeps{
		Service:   service,
		RateLimit: rateLimit,
	}, config, logger)

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: st.stop},
		kitchenSub,
		publisherLifecycle,
		subLifecycle,
	}
	if menuHooks.OnStop != nil {
		lifecycles = append(lifecycles, menuHooks)
	}

	// Tables always come from the seed file, demo seeding adds the local menu.
	stores := dining.SeedStores{
		Tables:  st.repos.TableRepo,
		Tracker: st.tracker,
	}
	demoEnabled, _ := config.GetString("seeding.demo")
	if demoEnabled == "true" {
		logger.Info("Demo seeding enabled for dinein service")
		stores.Menu = writer
	}
	lifecycles = append(lifecycles, apt.LifecycleHooks{
		OnStart: dining.SeedingFunc(seedCtx, stores, seedFS, logger),
		OnStop: func(context.Context) error {
			cancelSeeds()
			return nil
		},
	})

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true,
	})

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	err = ms.Run(ctx)
	if err != nil {
		_ = st.stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}

func openStore(ctx context.Context, config *apt.Config, logger apt.Logger) (store, error) {
	driver := config.GetStringOrDef("db.driver", "mongo")

	switch driver {
	case "mongo":
		baseRepo := mongo.NewBaseRepo(config, logger)
		if err := baseRepo.Start(ctx); err != nil {
			return store{}, err
		}

		db := baseRepo.GetDatabase()
		return store{
			repos: dining.Repos{
				TableRepo:   mongo.NewTableRepo(db),
				OrderRepo:   mongo.NewOrderRepo(db),
				ItemRepo:    mongo.NewItemRepo(db),
				PaymentRepo: mongo.NewPaymentRepo(db),
			},
			tx:      mongo.NewTxRunner(baseRepo.GetClient()),
			catalog: mongo.NewMenuRepo(db),
			tracker: seed.NewMongoTracker(db),
			stop:    baseRepo.Stop,
		}, nil

	case "postgres":
		pg := postgres.NewDB(config, logger)
		if err := pg.Start(ctx); err != nil {
			return store{}, err
		}

		db := pg.Gorm()
		return store{
			repos:   postgres.NewRepos(db),
			tx:      postgres.NewTxRunner(db),
			catalog: postgres.NewMenuRepo(db),
			stop:    pg.Stop,
		}, nil

	default:
		return store{}, fmt.Errorf("unknown db.driver %q, want mongo or postgres", driver)
	}
}

// setupMenu picks the menu source and puts the Redis cache in front of it
// when one is configured. The writer is nil when the menu service owns the
// catalog.
func setupMenu(ctx context.Context, config *apt.Config, local catalog, logger apt.Logger) (dining.MenuLookup, dining.MenuWriter, apt.LifecycleHooks, error) {
	var (
		lookup dining.MenuLookup = local
		writer dining.MenuWriter = local
		hooks  apt.LifecycleHooks
	)

	switch source := config.GetStringOrDef("menu.source", "local"); source {
	case "local":
	case "service":
		remote, err := menu.NewServiceLookup(config, logger)
		if err != nil {
			return nil, nil, hooks, err
		}
		lookup = remote
		writer = nil
	default:
		return nil, nil, hooks, fmt.Errorf("unknown menu.source %q, want local or service", source)
	}

	addr := config.GetStringOrDef("menu.cache.redis.addr", "")
	if addr == "" {
		return lookup, writer, hooks, nil
	}

	ttl, err := time.ParseDuration(config.GetStringOrDef("menu.cache.ttl", menu.DefaultCacheTTL.String()))
	if err != nil {
		return nil, nil, hooks, fmt.Errorf("invalid menu.cache.ttl: %w", err)
	}

	rdb, err := menu.NewRedisClient(ctx, addr, config.GetStringOrDef("menu.cache.redis.password", ""))
	if err != nil {
		return nil, nil, hooks, err
	}

	cache := menu.NewCache(lookup, rdb, ttl, logger)
	if writer != nil {
		writer = menu.InvalidatingWriter{Writer: writer, Cache: cache}
	}
	hooks.OnStop = func(context.Context) error {
		return rdb.Close()
	}

	logger.Info("Menu cache enabled", "addr", addr, "ttl", ttl.String())
	return cache, writer, hooks, nil
}
