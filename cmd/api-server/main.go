package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"lolapi/internal/auth"
	"lolapi/internal/champion"
	"lolapi/internal/middleware"
	"lolapi/internal/reviews"
	synchub "lolapi/internal/sync"
	"lolapi/pkg/database"
	"lolapi/pkg/utils"
)

func main() {
	cfg := utils.MustLoadConfig()
	logger := utils.NewLogger(cfg.Log)

	db, err := database.Open(database.Config{Path: cfg.Database.Path})
	if err != nil {
		logger.Error("open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	applied, err := database.Migrate(context.Background(), db)
	if err != nil {
		logger.Error("migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready", slog.String("path", cfg.Database.Path), slog.Int("migrations_applied", applied))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Recovery(logger))
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warn("trusted proxies", slog.Any("error", err))
	}

	hub := synchub.NewHub(logger)
	router.GET("/ws", synchub.WSHandler(hub))
	tcpSrv := synchub.NewServer(cfg.Server.SyncAddr, hub, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	api := router.Group("/api")

	// Auth
	tokens := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	auth.NewHandler(authRepo, tokens, logger).RegisterRoutes(api.Group("/auth"))
	users := auth.NewUserService(tokens, authRepo)

	// Champions (public)
	champRepo := champion.NewRepo(db)
	champion.NewHandler(champRepo).RegisterRoutes(api.Group("/champion"))

	// Reviews
	reviewSvc := reviews.NewService(logger, reviews.NewRepo(db), champRepo, users)
	reviewHandler := reviews.NewHandler(logger, reviewSvc, champRepo, users, hub, cfg.API.LegacyStatusCodes())
	reviewHandler.RegisterRoutes(api.Group("/review"),
		auth.AuthMiddleware(tokens, authRepo),
		auth.RequirePolicy(auth.PolicyUserAllowed),
	)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// bind the sync port first so a busy port fails fast
	if err := tcpSrv.Listen(); err != nil {
		logger.Error("tcp sync listen", slog.String("addr", cfg.Server.SyncAddr), slog.Any("error", err))
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("http api listening", slog.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", slog.Any("error", err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
	hub.Close()

	wg.Wait()
	logger.Info("servers stopped")
}
