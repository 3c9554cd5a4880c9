package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"yamdb/internal/admin"
	"yamdb/internal/auth"
	"yamdb/internal/catalog"
	"yamdb/internal/dataset"
	"yamdb/internal/logger"
	"yamdb/internal/metrics"
	"yamdb/internal/reviews"
	"yamdb/internal/store"
	"yamdb/pkg/database"
	"yamdb/pkg/utils"
)

func main() {
	utils.LoadEnv()
	srvCfg := utils.LoadServerConfig()
	_ = logger.Init(srvCfg.LogLevel)
	defer logger.Sync()
	log := logger.GetLogger("api-server")

	cfg := database.DefaultConfig()
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	st := store.New(db)

	router := gin.New()
	router.Use(gin.Recovery(), metrics.Middleware())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api/v1")

	catalog.NewHandler(catalog.NewRepo(st.DB)).RegisterRoutes(api)
	reviews.NewHandler(reviews.NewRepo(st.DB)).RegisterPublicRoutes(api)

	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	auth.NewHandler(authRepo, tokenSvc).RegisterRoutes(api)

	dataCfg := utils.LoadDataConfig()
	pipeline := dataset.New(dataCfg.Dir, st, dataset.WithBatchSize(dataCfg.BatchSize))

	adminGroup := api.Group("/admin")
	adminGroup.Use(auth.AuthMiddleware(tokenSvc, authRepo), auth.RequireAdmin())
	admin.NewHandler(pipeline, st).RegisterRoutes(adminGroup)

	httpSrv := &http.Server{
		Addr:    srvCfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP API server listening on %s", srvCfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Errorf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown error: %v", err)
	}
	log.Info("server stopped")
}
