package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "net/http/pprof"

	"resolver-service/internal/config"
	"resolver-service/internal/resolve/handler"
	"resolver-service/internal/resolve/service"
	"resolver-service/internal/resolve/store"
	serverhttp "resolver-service/server/http"
)

func main() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	holder := service.NewHolder()
	opt := service.DefaultOptions()
	opt.Threshold = cfg.Threshold
	matcher := service.NewMatcher(holder, opt)
	learner := service.NewLearner(st, logger)

	h := handler.New(cfg, logger, holder, matcher, learner, st)
	if _, err := h.RefreshCache(); err != nil {
		logger.Fatal().Err(err).Msg("initial cache load")
	}

	r := serverhttp.NewRouter(cfg, logger, h)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}
