// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/sitedeploy/internal/api"
	"github.com/andresuchdata/sitedeploy/internal/config"
	"github.com/andresuchdata/sitedeploy/internal/deploy"
	"github.com/andresuchdata/sitedeploy/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	logCfg := config.LoadLogging("")
	logger.SetFormat(logCfg.Format)
	logger.SetLevel(logCfg.Level)

	serverCfg := config.LoadServer()
	if serverCfg.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Deploy settings are read per request so the server can start before
	// the buckets are configured.
	router := api.NewRouter(deploy.NewHandler(), serverCfg.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + serverCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		logger.Log.Info().Str("port", serverCfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// An in-flight deploy gets 30 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
