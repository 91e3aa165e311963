package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"guidechat/internal/config"
	"guidechat/internal/handler"
	"guidechat/internal/reference"
	"guidechat/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = 10 * time.Minute
)

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP chat server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}

			log.Info().
				Str("version", Version).
				Str("build_time", BuildTime).
				Str("git_commit", GitCommit).
				Msg("Guidechat dialogue server")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.repo != nil {
				go purgeSessions(ctx, a)
			}

			gin.SetMode(cfg.Server.GinMode)
			router := newRouter(cfg, a.chat, a.cache)

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			srv := &http.Server{Addr: addr, Handler: router}

			log.Info().Str("addr", addr).Msg("🚀 Starting server")
			log.Info().Msgf("📝 API: http://localhost:%d/api/v1", cfg.Server.Port)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("failed to start server: %w", err)
				}
			case <-ctx.Done():
			}

			log.Info().Msg("🛑 Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down server: %w", err)
			}
			log.Info().Msg("✅ Server stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override SERVER_PORT")
	cmd.Flags().StringVar(&host, "host", "", "override SERVER_HOST")
	return cmd
}

// newRouter builds the gin engine with middleware and all routes.
func newRouter(cfg *config.Config, chat *service.ChatService, cache *reference.Cache) *gin.Engine {
	chatHandler := handler.NewChatHandler(chat)
	referenceHandler := handler.NewReferenceHandler(cache)

	router := gin.New()
	router.Use(gin.Recovery())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "guidechat",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.GET("/sessions/:id", chatHandler.GetSession)
		apiV1.DELETE("/sessions/:id", chatHandler.DeleteSession)

		apiV1.GET("/reference", referenceHandler.Status)
		apiV1.POST("/reference/reload", referenceHandler.Reload)
	}

	return router
}

func purgeSessions(ctx context.Context, a *app) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.repo.PurgeExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("session purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("sessions", n).Msg("purged expired sessions")
			}
		}
	}
}
