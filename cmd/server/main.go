package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/annavdvet2000/chatbot11directanswers/internal/adapter/httpapi"
	"github.com/annavdvet2000/chatbot11directanswers/internal/adapter/provider"
	"github.com/annavdvet2000/chatbot11directanswers/internal/adapter/repository"
	"github.com/annavdvet2000/chatbot11directanswers/internal/corpus"
	"github.com/annavdvet2000/chatbot11directanswers/internal/infra"
	"github.com/annavdvet2000/chatbot11directanswers/internal/infra/config"
	"github.com/annavdvet2000/chatbot11directanswers/internal/infra/logger"
	"github.com/annavdvet2000/chatbot11directanswers/internal/session"
	"github.com/annavdvet2000/chatbot11directanswers/internal/usecase"
)

func main() {
	// 1. Config & Logger
	cfg := config.Load()
	log := logger.NewWithOTel(cfg.OTelLogsEnabled)
	slog.SetDefault(log)

	// 2. Corpus: loaded once, immutable, shared read-only. A load failure
	// is fatal; the engine must not serve from an inconsistent corpus.
	store, err := corpus.Load(cfg.CorpusPath, cfg.MetadataPath)
	if err != nil {
		log.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}
	log.Info("corpus loaded",
		"chunks", store.Len(),
		"people", len(store.Registry()),
		"dimension", store.Dimension())

	// 3. Providers
	embedder := provider.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, time.Duration(cfg.EmbedTimeout)*time.Second)
	encoder, err := provider.NewCachedEncoder(embedder, cfg.EmbedCacheSize)
	if err != nil {
		log.Error("failed to create embedding cache", "error", err)
		os.Exit(1)
	}
	generator := provider.NewOllamaGenerator(cfg.OllamaURL, cfg.GenerationModel, time.Duration(cfg.GenerateTimeout)*time.Second)

	// 4. Optional chat-log archive
	var archive usecase.ChatLogArchive
	if cfg.ChatArchiveDSN != "" {
		pool, err := infra.NewPostgresDB(context.Background(), cfg.ChatArchiveDSN)
		if err != nil {
			log.Error("failed to connect to chat archive db", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := repository.EnsureSchema(context.Background(), pool); err != nil {
			log.Error("failed to prepare chat archive schema", "error", err)
			os.Exit(1)
		}
		archive = repository.NewChatLogRepository(pool)
		log.Info("chat-log archive enabled")
	}

	// 5. Usecases
	sessions := session.NewStore()
	retrieveUsecase := usecase.NewRetrieveContextUsecase(store, encoder, cfg.TopK, cfg.HistoryWindow, log)
	answerUsecase := usecase.NewAnswerUsecase(
		sessions,
		retrieveUsecase,
		usecase.NewPromptBuilder(),
		generator,
		archive,
		cfg.HistoryWindow,
		cfg.AnswerMaxTokens,
		log,
	)

	// 6. HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	httpapi.NewHandler(answerUsecase, retrieveUsecase).Register(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if store.Len() == 0 {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "empty corpus"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("starting server", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
