// Command seed loads authored content from a JSON file into the content
// store and writes advice embeddings into the vector store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/hearthwise/homejourney/pkg/ai"
	"github.com/hearthwise/homejourney/pkg/bootstrap"
	"github.com/hearthwise/homejourney/pkg/config"
	"github.com/hearthwise/homejourney/pkg/content"
	"github.com/hearthwise/homejourney/pkg/vectorstore"
)

type seedAdvice struct {
	content.Candidate
	Flow string `json:"flow"`
}

type seedFile struct {
	Phases      []content.Phase     `json:"phases"`
	ActionSteps []content.Candidate `json:"actionSteps"`
	Advice      []seedAdvice        `json:"advice"`
}

func main() {
	var (
		seedPath = flag.String("file", "", "path to the seed JSON file (defaults to SEED_PATH)")
		reset    = flag.Bool("reset", false, "drop existing vectors before seeding")
	)
	flag.Parse()

	logger := bootstrap.NewLogger()
	envs, _ := config.LoadConfig(false)

	path := *seedPath
	if path == "" {
		path = envs.SeedPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		panic(errors.Wrap(err, "Unable to read seed file"))
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		panic(errors.Wrap(err, "Unable to parse seed file"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := content.NewStore(ctx, envs.DBPath, logger)
	if err != nil {
		panic(errors.Wrap(err, "Unable to open content store"))
	}
	defer func() { _ = store.Close() }()

	for _, p := range seed.Phases {
		if err := store.UpsertPhase(ctx, p); err != nil {
			panic(errors.Wrap(err, "Unable to upsert phase"))
		}
	}
	logger.Info("Seeded phases", "count", len(seed.Phases))

	for i := range seed.ActionSteps {
		if seed.ActionSteps[i].ID == "" {
			seed.ActionSteps[i].ID = uuid.NewString()
		}
		if err := store.UpsertActionStep(ctx, seed.ActionSteps[i]); err != nil {
			panic(errors.Wrap(err, "Unable to upsert action step"))
		}
	}
	logger.Info("Seeded action steps", "count", len(seed.ActionSteps))

	weaviateClient, err := bootstrap.NewWeaviateClient(envs.WeaviateScheme, envs.WeaviateHost)
	if err != nil {
		panic(errors.Wrap(err, "Unable to create weaviate client"))
	}
	vectors := vectorstore.New(weaviateClient, logger)

	if *reset {
		if err := vectors.DeleteAll(ctx); err != nil {
			panic(errors.Wrap(err, "Unable to reset vector store"))
		}
	} else if err := vectors.EnsureSchemaExists(ctx); err != nil {
		panic(errors.Wrap(err, "Unable to ensure vector schema"))
	}

	embeddings := ai.NewOpenAIService(logger, envs.EmbeddingsAPIKey, envs.EmbeddingsAPIURL)

	for i := range seed.Advice {
		if seed.Advice[i].ID == "" {
			seed.Advice[i].ID = uuid.NewString()
		}
		seed.Advice[i].EmbeddingRef = seed.Advice[i].ID
		flow := content.ParseFlow(seed.Advice[i].Flow)
		if err := store.UpsertAdvice(ctx, flow, seed.Advice[i].Candidate); err != nil {
			panic(errors.Wrap(err, "Unable to upsert advice"))
		}
	}

	bodies := lo.Map(seed.Advice, func(a seedAdvice, _ int) string { return a.Title + "\n" + a.Body })
	if len(bodies) > 0 {
		embedded, err := embeddings.Embeddings(ctx, bodies, envs.EmbeddingsModel)
		if err != nil {
			panic(errors.Wrap(err, "Unable to embed advice bodies"))
		}
		if len(embedded) != len(seed.Advice) {
			panic(errors.New("embeddings API returned mismatched vector count"))
		}

		objects := make([]*models.Object, 0, len(seed.Advice))
		for i, a := range seed.Advice {
			vector := make([]float32, len(embedded[i]))
			for j, v := range embedded[i] {
				vector[j] = float32(v)
			}
			objects = append(objects, vectorstore.BuildObject(a.Candidate, content.ParseFlow(a.Flow), vector))
		}
		if err := vectors.StoreBatch(ctx, objects); err != nil {
			panic(errors.Wrap(err, "Unable to store advice vectors"))
		}
	}
	logger.Info("Seeded advice", "count", len(seed.Advice))
}
