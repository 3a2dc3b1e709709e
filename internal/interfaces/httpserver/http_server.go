package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/janhq/chat-engine/internal/config"
	"github.com/janhq/chat-engine/internal/domain/collection"
	middleware "github.com/janhq/chat-engine/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/chat-engine/internal/interfaces/httpserver/responses"
	collectionroute "github.com/janhq/chat-engine/internal/interfaces/httpserver/routes/collection"
	v1 "github.com/janhq/chat-engine/internal/interfaces/httpserver/routes/v1"
)

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	engine          *gin.Engine
	config          *config.Config
	logger          zerolog.Logger
	v1Route         *v1.V1Route
	collectionRoute *collectionroute.CollectionRoute
	collections     *collection.CollectionService
}

func NewHttpServer(
	v1Route *v1.V1Route,
	collectionRoute *collectionroute.CollectionRoute,
	collections *collection.CollectionService,
	cfg *config.Config,
	logger zerolog.Logger,
) *HTTPServer {
	if !config.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &HTTPServer{
		engine:          gin.New(),
		config:          cfg,
		logger:          logger,
		v1Route:         v1Route,
		collectionRoute: collectionRoute,
		collections:     collections,
	}
	server.engine.Use(gin.Recovery())
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.TracingMiddleware(cfg.ServiceName))
	server.engine.Use(middleware.LoggingMiddleware(logger))
	server.engine.Use(middleware.MetricsMiddleware())
	server.engine.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	server.engine.GET("/readyz", server.ready)
	server.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server.v1Route.RegisterRouter(server.engine)
	server.collectionRoute.RegisterRouter(server.engine)
	return server
}

func (httpServer *HTTPServer) ready(c *gin.Context) {
	if err := httpServer.collections.Ready(c.Request.Context()); err != nil {
		responses.HandleError(c, err, "database unreachable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Handler exposes the router, mainly for tests.
func (httpServer *HTTPServer) Handler() http.Handler {
	return httpServer.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (httpServer *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", httpServer.config.HTTPPort),
		Handler:           httpServer.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		httpServer.logger.Info().Int("port", httpServer.config.HTTPPort).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
