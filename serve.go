package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apirest "github.com/kasuganosora/sr5rules/api/rest"
	"github.com/kasuganosora/sr5rules/api/sse"
	"github.com/kasuganosora/sr5rules/audit"
	"github.com/kasuganosora/sr5rules/cache"
	"github.com/kasuganosora/sr5rules/config"
	dbadapter "github.com/kasuganosora/sr5rules/db"
	"github.com/kasuganosora/sr5rules/game/document"
	"github.com/kasuganosora/sr5rules/game/matrix"
	"github.com/kasuganosora/sr5rules/game/roll"
	"github.com/kasuganosora/sr5rules/game/rules"
	"github.com/kasuganosora/sr5rules/game/session"
	mw "github.com/kasuganosora/sr5rules/middleware"
	"github.com/kasuganosora/sr5rules/model"
	"github.com/kasuganosora/sr5rules/plugin/hook"
	"github.com/kasuganosora/sr5rules/scheduler"
)

const (
	taskPendingSweep = "pending_sweep"
	taskAuditPurge   = "audit_purge"
	taskLimiterGC    = time.Minute
	shutdownTimeout  = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The rules section reloads while running. Changes arriving before
	// the services exist are dropped.
	var reload atomic.Pointer[func(config.RulesConfig)]
	cfg, err := config.Watch(configPath(cmd), func(r config.RulesConfig) {
		if fn := reload.Load(); fn != nil {
			(*fn)(r)
		}
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// ---- Logger ----
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	var auditSvc *audit.Service
	if cfg.Audit.Enabled {
		auditSvc = audit.New(db, cfg.Audit, logger)
		defer auditSvc.Stop(context.Background())
	}

	// ---- Cache / PubSub ----
	c, pubsub, err := cache.Open(cfg.Cache)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer c.Close()
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Rules engine ----
	seed := cfg.Rules.DiceSeed
	if seed == 0 {
		if seed, err = rules.NewSeed(); err != nil {
			return fmt.Errorf("dice seed: %w", err)
		}
	}
	hooks := hook.NewHookCenter()
	engine := roll.NewEngine(rules.NewRoller(seed), hooks, logger)
	store := document.NewStore(db, logger)
	matrixSvc := matrix.NewService(store, hooks, logger)
	sess := session.New(engine, store, c, pubsub, auditSvc, cfg.Rules, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sweepEvery := cfg.Rules.SweepInterval
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	sched.Every(taskPendingSweep, sweepEvery, sess.SweepTask)
	if auditSvc != nil && cfg.Audit.RetentionDays > 0 {
		sched.Every(taskAuditPurge, 24*time.Hour, func(ctx context.Context) error {
			n, err := auditSvc.Purge(ctx, cfg.Audit.RetentionDays)
			if n > 0 {
				logger.Info("audit purged", zap.Int64("deleted", n))
			}
			return err
		})
	}

	applyRules := func(r config.RulesConfig) {
		sess.SetRules(r)
		if r.SweepInterval > 0 {
			sched.Reschedule(taskPendingSweep, r.SweepInterval)
		}
	}
	reload.Store(&applyRules)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := mw.NewRateLimiter(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst)
	go limiter.Run(ctx, taskLimiterGC)

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger), mw.Identity())
	r.Use(limiter.Middleware())

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	adminIPs, err := mw.IPWhitelist(cfg.Security.AdminIPs)
	if err != nil {
		return fmt.Errorf("security.admin_ips: %w", err)
	}
	apirest.Register(r.Group("/api"), apirest.Handlers{
		Documents: apirest.NewDocumentHandler(store, sess, auditSvc),
		Tests:     apirest.NewTestHandler(sess, store),
		Matrix:    apirest.NewMatrixHandler(matrixSvc, auditSvc),
		Rules:     apirest.NewRulesHandler(),
		Admin:     apirest.NewAdminHandler(sess, sched, auditSvc, logger),
	}, adminIPs, mw.AdminKey(cfg.Server.AdminKey))

	// ---- SSE ----
	sseH := sse.NewHandler(pubsub, sess, cfg.Security, logger)
	r.GET("/sse", sseH.ServeSSE)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
