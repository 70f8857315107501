package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/pranavnigade123/drawzzl-backend/internal/config"
	"github.com/pranavnigade123/drawzzl-backend/internal/engine"
	"github.com/pranavnigade123/drawzzl-backend/internal/gateway"
	"github.com/pranavnigade123/drawzzl-backend/internal/health"
	"github.com/pranavnigade123/drawzzl-backend/internal/idgen"
	"github.com/pranavnigade123/drawzzl-backend/internal/ratelimit"
	"github.com/pranavnigade123/drawzzl-backend/internal/store"
	"github.com/pranavnigade123/drawzzl-backend/internal/sweeper"
	"github.com/pranavnigade123/drawzzl-backend/internal/validate"
	"github.com/pranavnigade123/drawzzl-backend/internal/wordbank"
)

// createServer builds the gin engine with the origin allow-list and CORS
// middleware, the same two-layer shape as the teacher's main.CreateServer.
func createServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin) {
			c.Next()
			return
		}
		c.String(http.StatusForbidden, "forbidden origin")
		c.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type", "Authorization", "Upgrade", "Connection",
			"Sec-WebSocket-Key", "Sec-WebSocket-Version", "Sec-WebSocket-Extensions", "Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.MongoURI)
	if err != nil {
		// Binding the store is the one fatal startup condition (spec §7).
		zlog.Fatal().Err(err).Msg("server: could not bind persistent store")
	}

	words := wordbank.NewStatic()
	roomIDs := idgen.NewRoomIDGenerator()
	limiter := ratelimit.New()
	moderator := validate.PassthroughModerator{}

	gw := gateway.New(st, limiter, moderator, roomIDs)
	eng := engine.New(st, words, gw)
	gw.SetEngine(eng)

	sweeper.Run(ctx, st, eng, limiter, gw)

	startedAt := time.Now()
	r := createServer(cfg.AllowedOrigins)
	r.GET("/health", health.Handler(st, gw, startedAt))
	r.GET("/ws", gw.HandleWS)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		zlog.Info().Str("port", cfg.Port).Msg("server: listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("server: listen failed")
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("server: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("server: graceful shutdown failed")
	}
}
