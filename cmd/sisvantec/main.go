// sisvantec es el servicio HTTP de trámites municipales.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/sisvantec/sisvantec/internal/config"
	httpx "github.com/sisvantec/sisvantec/internal/http"
	authctl "github.com/sisvantec/sisvantec/internal/http/controllers/auth"
	formctl "github.com/sisvantec/sisvantec/internal/http/controllers/formularios"
	healthctl "github.com/sisvantec/sisvantec/internal/http/controllers/health"
	tramctl "github.com/sisvantec/sisvantec/internal/http/controllers/tramites"
	"github.com/sisvantec/sisvantec/internal/http/router"
	"github.com/sisvantec/sisvantec/internal/identity"
	"github.com/sisvantec/sisvantec/internal/observability/logger"
	"github.com/sisvantec/sisvantec/internal/policy"
	"github.com/sisvantec/sisvantec/internal/rate"
	svcformularios "github.com/sisvantec/sisvantec/internal/services/formularios"
	svctramites "github.com/sisvantec/sisvantec/internal/services/tramites"
	svcusuarios "github.com/sisvantec/sisvantec/internal/services/usuarios"
	"github.com/sisvantec/sisvantec/internal/store"
	"github.com/sisvantec/sisvantec/internal/store/memory"
	"github.com/sisvantec/sisvantec/internal/store/pg"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "ruta del config.yaml (opcional)")
	flag.Parse()

	// .env es opcional; los env reales pisan al archivo.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("cargar config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		ServiceName: "sisvantec",
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Almacén ──────────────────────────────────────────────────────────
	var (
		st     store.Store
		pgPool *pg.Store
	)
	switch cfg.Storage.Driver {
	case "postgres":
		ps, err := pg.Connect(ctx, cfg.Storage.DSN)
		if err != nil {
			return err
		}
		st, pgPool = ps, ps
		log.Info("almacén postgres conectado", logger.Component("store"))
	case "memory":
		st = memory.New()
		log.Warn("almacén en memoria: los datos no sobreviven un reinicio",
			logger.Component("store"))
	default:
		return fmt.Errorf("storage.driver desconocido: %q", cfg.Storage.Driver)
	}
	defer func() { _ = st.Close(context.Background()) }()

	// ── Identidad y política ─────────────────────────────────────────────
	usuariosRepo := svcusuarios.NewRepo(st)
	issuer := identity.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret))
	issuer.AccessTTL = cfg.AccessTTL()
	gateway := identity.NewGateway(issuer, issuer, usuariosRepo)

	engine := &policy.Engine{
		RestringirEliminarTramites: cfg.Policy.RestringirEliminarTramites,
	}

	// ── Servicios ────────────────────────────────────────────────────────
	usuariosSvc := svcusuarios.NewService(usuariosRepo, engine)
	formulariosRepo := svcformularios.NewRepo(st)
	formulariosSvc := svcformularios.NewService(formulariosRepo, engine)
	tramitesRepo := svctramites.NewRepo(st)
	tramitesSvc := svctramites.NewService(tramitesRepo, formulariosRepo, engine)

	// ── Rate limit ───────────────────────────────────────────────────────
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		switch cfg.Rate.Backend {
		case "redis":
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Rate.Redis.Addr, DB: cfg.Rate.Redis.DB})
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			limiter = rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.MaxRequests, cfg.RateWindow())
			log.Info("rate limit con backend redis", logger.Component("rate"))
		default:
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindow())
			log.Info("rate limit con backend en memoria", logger.Component("rate"))
		}
	}

	// ── Métricas ─────────────────────────────────────────────────────────
	metricsCfg := httpx.MetricsConfig{}
	if pgPool != nil {
		metricsCfg.Pool = pgPool.Pool
	}
	metricsHandler, err := httpx.RegisterMetrics(metricsCfg)
	if err != nil {
		return fmt.Errorf("registrar métricas: %w", err)
	}

	// ── Router y servidor ────────────────────────────────────────────────
	handler := router.New(router.Deps{
		Gateway:     gateway,
		Limiter:     limiter,
		Auth:        authctl.NewController(gateway, usuariosSvc, httpx.RecordLogin),
		Formularios: formctl.NewController(formulariosSvc),
		Tramites:    tramctl.NewController(tramitesSvc, httpx.RecordTramiteCreado),
		Health:      healthctl.NewController(st, cfg.App.Version),
		Metrics:     metricsHandler,
	}, cfg.Server.CORSAllowedOrigins)

	srv := httpx.NewServer(cfg.Server.Addr, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("servidor escuchando",
			logger.String("addr", cfg.Server.Addr),
			logger.String("env", cfg.App.Env),
		)
		return srv.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("apagando servidor")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
