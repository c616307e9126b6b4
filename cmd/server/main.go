package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/momo-run/momo/internal/config"
	"github.com/momo-run/momo/internal/embeddings"
	"github.com/momo-run/momo/internal/graph"
	"github.com/momo-run/momo/internal/httpapi"
	"github.com/momo-run/momo/internal/llm"
	"github.com/momo-run/momo/internal/logging"
	"github.com/momo-run/momo/internal/managers"
	"github.com/momo-run/momo/internal/memory"
	"github.com/momo-run/momo/internal/migration"
	"github.com/momo-run/momo/internal/reranker"
	"github.com/momo-run/momo/internal/search"
	"github.com/momo-run/momo/internal/store/postgres"
)

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("momo dev build")
		return
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.DevLogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	st, err := postgres.New(ctx, cfg.Database.URL, cfg.Database.MaxConnections, cfg.Embed.Dimension)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer st.Close()

	embedder := embeddings.NewOllamaEmbedder(cfg.Embed.Host, cfg.Embed.IngestHost, cfg.Embed.Model, cfg.Embed.Dimension, 90*time.Second)
	model := llm.New(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.APIKey, cfg.LLM.Timeout, cfg.LLM.MaxRetries)
	rr := reranker.New(cfg.Reranker.Enabled, cfg.Reranker.Host, cfg.Reranker.Timeout)

	guard := migration.NewGuard(st, migrationPrompt(cfg), log)
	if err := guard.Check(ctx, cfg.Embed.Dimension); err != nil {
		return fmt.Errorf("migration guard: %w", err)
	}

	rewriteCache, err := search.NewRewriteCache(cfg.Search.QueryRewriteCacheSize)
	if err != nil {
		return fmt.Errorf("build query rewrite cache: %w", err)
	}

	memorySvc := memory.NewService(st, embedder, model, log)
	searchSvc := search.NewService(st, embedder, model, rr, rewriteCache, cfg.Search.EnableQueryRewrite, cfg.Search.QueryRewriteTimeout, log)
	graphSvc := graph.NewService(st)

	forgettingMgr := managers.NewForgettingManager(st, time.Duration(cfg.Managers.ForgettingIntervalSecs)*time.Second, log)
	decayMgr := managers.NewEpisodeDecayManager(st, time.Duration(cfg.Managers.EpisodeDecayIntervalSecs)*time.Second,
		cfg.Managers.EpisodeDecayDays, cfg.Managers.EpisodeDecayFactor, cfg.Managers.EpisodeDecayThreshold, cfg.Managers.EpisodeDecayGraceDays, log)
	profileMgr := managers.NewProfileRefreshManager(st, model, time.Duration(cfg.Managers.ProfileRefreshIntervalSecs)*time.Second, log)

	managerCtx, stopManagers := context.WithCancel(context.Background())
	defer stopManagers()
	go forgettingMgr.Run(managerCtx)
	go decayMgr.Run(managerCtx)
	go profileMgr.Run(managerCtx)

	srv := httpapi.New(memorySvc, searchSvc, graphSvc, forgettingMgr, cfg.AuthTokens, log)

	httpServer := &http.Server{
		Addr:    cfg.Address,
		Handler: srv,
	}

	log.Info("starting server", zap.String("address", cfg.Address))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	waitForShutdown(httpServer, log)
	return nil
}

// migrationPrompt picks the non-interactive force-rebuild approver
// when the operator has set it, otherwise an interactive stdin
// prompt.
func migrationPrompt(cfg *config.Config) migration.OperatorPrompt {
	if cfg.Migration.ForceRebuild {
		return migration.AlwaysApprove{}
	}
	return migration.NewStdioPrompt(bufio.NewReader(os.Stdin))
}

func waitForShutdown(srv *http.Server, log *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
		if err := srv.Close(); err != nil {
			log.Warn("forced close failed", zap.Error(err))
		}
	}

	log.Info("server stopped")
}
