package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ArkMaster123/arkagentic/config"
	"github.com/ArkMaster123/arkagentic/internal/agent"
	"github.com/ArkMaster123/arkagentic/internal/agent/telemetry"
	"github.com/ArkMaster123/arkagentic/internal/runtime"
	"github.com/ArkMaster123/arkagentic/internal/search"
	"github.com/ArkMaster123/arkagentic/internal/store"
	"github.com/ArkMaster123/arkagentic/internal/tools"
	"github.com/ArkMaster123/arkagentic/internal/tools/webfetch"
	"github.com/ArkMaster123/arkagentic/internal/tools/websearch"
)

// Run wires the full backend and serves until the listener stops.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Cookie"},
		AllowCredentials: true,
	}))

	ctx := context.Background()

	dsn, err := cfg.Storage.Postgres.DSN()
	if err != nil {
		return err
	}
	if err := Migrate("file://migrations", dsn, "up", 0); err != nil {
		baseLogger.Printf("migrations: %v", err)
	}
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	secret, err := runtime.LoadJWTSecret(cfg)
	if err != nil {
		return err
	}

	idx, err := search.NewIndex()
	if err != nil {
		return err
	}

	tel := telemetry.NewTelemetry(cfg.Telemetry)

	agent.SetDefaultModel(cfg.LLM.DefaultModel)
	if cfg.LLM.APIKey == "" {
		baseLogger.Printf("LLM API key not configured, queries will return errors until OPENROUTER_API_KEY or ANTHROPIC_API_KEY is set")
	}
	provider := agent.NewOpenRouterProvider(cfg.LLM)

	var belt []tools.Tool
	if t := websearch.New(cfg.Tools); t != nil {
		belt = append(belt, t)
	}
	if t := webfetch.New(cfg.Tools); t != nil {
		belt = append(belt, t)
	}

	factory := agent.NewFactory(provider, tel, belt)
	orch := agent.NewOrchestrator(factory, cfg.Swarm, tel, cfg.Swarm.Enabled)
	defer orch.Close()

	var rdb *redis.Client
	if cfg.Storage.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr(),
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			baseLogger.Printf("redis unavailable (%s), running without it: %v", cfg.Storage.Redis.Addr(), err)
			rdb = nil
		}
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Capability: orch.Capability()})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	sh := &StatsHandler{Telemetry: tel}
	sh.Register(e)

	chatLogger := log.New(log.Writer(), "[CHAT] ", log.LstdFlags)
	ch := &ChatHandler{Orch: orch, Store: st, Index: idx, Logger: chatLogger}
	ch.Register(e, secret)

	ah := &AgentsHandler{}
	ah.Register(e)

	api := e.Group("/api")
	uh := &UsersHandler{Store: st, Secret: secret, TTL: cfg.Server.SessionTTL, Logger: baseLogger}
	uh.Register(api)

	guarded := api.Group("", runtime.EchoAuthMiddleware(secret))
	uh.RegisterAPI(guarded)
	ch.RegisterAPI(guarded)

	rh := &RoomsHandler{Store: st, Rdb: rdb, Logger: baseLogger}
	rh.RegisterAPI(guarded)

	cleaner := &Cleaner{Store: st, Rdb: rdb, CronSpec: cfg.Server.CleanupCron, Stop: make(chan struct{})}
	cleaner.Start()

	addr := cfg.Server.Port
	if addr == "" {
		addr = "3001"
	}
	if addr[0] != ':' {
		addr = ":" + addr
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// optionalAuth resolves the caller identity when a token is present
// without requiring one.
func optionalAuth(secret []byte) echo.MiddlewareFunc {
	return runtime.EchoOptionalAuthMiddleware(secret)
}
