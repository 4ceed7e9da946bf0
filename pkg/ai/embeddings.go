package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

func (s *Service) Embeddings(ctx context.Context, inputs []string, model string) ([][]float64, error) {
	result, err := s.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: inputs,
		},
	})
	if err != nil {
		return nil, err
	}
	var embeddings [][]float64
	for _, data := range result.Data {
		embeddings = append(embeddings, data.Embedding)
	}
	return embeddings, nil
}

func (s *Service) Embedding(ctx context.Context, input string, model string) ([]float64, error) {
	embeddings, err := s.Embeddings(ctx, []string{input}, model)
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embeddings API returned no data")
	}
	return embeddings[0], nil
}
