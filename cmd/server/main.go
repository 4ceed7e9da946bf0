package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/hearthwise/homejourney/pkg/ai"
	"github.com/hearthwise/homejourney/pkg/api"
	"github.com/hearthwise/homejourney/pkg/bootstrap"
	"github.com/hearthwise/homejourney/pkg/config"
	"github.com/hearthwise/homejourney/pkg/content"
	"github.com/hearthwise/homejourney/pkg/personalize"
	"github.com/hearthwise/homejourney/pkg/retrieval"
	"github.com/hearthwise/homejourney/pkg/vectorstore"
)

func main() {
	logger := bootstrap.NewLogger()

	envs, _ := config.LoadConfig(true)
	logger.Info("Using database path", "path", envs.DBPath)

	if err := os.MkdirAll(filepath.Dir(envs.DBPath), 0o755); err != nil {
		panic(errors.Wrap(err, "Unable to create database directory"))
	}

	store, err := content.NewStore(context.Background(), envs.DBPath, logger)
	if err != nil {
		logger.Error("Unable to create or initialize content store", "error", err)
		panic(errors.Wrap(err, "Unable to create or initialize content store"))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing content store", slog.Any("error", err))
		}
	}()

	if envs.EmbeddedNats == "true" {
		natsServer, err := bootstrap.StartEmbeddedNATSServer(logger)
		if err != nil {
			panic(errors.Wrap(err, "Unable to start nats server"))
		}
		defer natsServer.Shutdown()
	}
	var nc *nats.Conn
	if conn, err := bootstrap.NewNatsClient(envs.NatsURL); err != nil {
		logger.Error("NATS unavailable, insight events disabled", "error", err)
	} else {
		nc = conn
		defer nc.Close()
	}

	weaviateClient, err := bootstrap.NewWeaviateClient(envs.WeaviateScheme, envs.WeaviateHost)
	if err != nil {
		panic(errors.Wrap(err, "Unable to create weaviate client"))
	}

	vectors := vectorstore.New(weaviateClient, logger)
	schemaCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := vectors.EnsureSchemaExists(schemaCtx); err != nil {
		logger.Error("Unable to ensure vector schema, semantic retrieval degraded", "error", err)
	}
	cancel()

	embeddings := ai.NewOpenAIService(logger, envs.EmbeddingsAPIKey, envs.EmbeddingsAPIURL)
	adviceRetriever := retrieval.NewAdviceRetriever(logger, embeddings, envs.EmbeddingsModel, vectors, store)

	service := personalize.NewService(logger, store, adviceRetriever, nc)
	server := api.NewServer(logger, service)

	httpServer := &http.Server{
		Addr:              ":" + envs.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Personalization engine listening", "port", envs.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", slog.Any("error", err))
	}
}
