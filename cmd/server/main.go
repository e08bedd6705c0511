package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "pollboard/docs"
	"pollboard/internal/config"
	"pollboard/internal/domain/poll"
	"pollboard/internal/domain/user"
	"pollboard/internal/domain/vote"
	api "pollboard/internal/http"
	"pollboard/internal/metrics"
	"pollboard/internal/platform/database"
	jwtpkg "pollboard/internal/platform/jwt"
	"pollboard/internal/ratelimit"
	"pollboard/internal/repository/postgres"
	"pollboard/internal/worker"
)

// @title           Pollboard API
// @version         1.0
// @description     Polling service: create polls, vote, manage your own polls
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	metrics.Register()

	db, err := database.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepo(db)
	pollRepo := postgres.NewPollRepo(db)
	voteRepo := postgres.NewVoteRepo(db)

	userSvc := user.NewService(userRepo)
	pollSvc := poll.NewService(pollRepo)
	voteSvc := vote.NewService(voteRepo)

	jwtMgr := jwtpkg.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	voteLimiter := ratelimit.NewSlidingWindow(cfg.VoteRateMax, cfg.VoteRateWindow)

	voteCh := make(chan worker.VoteEvent, 100)
	statsWorker := worker.NewStatsWorker(voteCh, voteRepo, logger)

	router := api.NewRouter(userSvc, pollSvc, voteSvc, jwtMgr, voteCh, voteLimiter, db)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go statsWorker.Run(ctx)

	go func() {
		for range time.Tick(cfg.VoteRateWindow) {
			voteLimiter.Prune()
		}
	}()

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	<-stop
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "err", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
