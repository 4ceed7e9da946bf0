// Package ai wraps the external embedding API behind a small interface.
// The engine treats embedding vectors as opaque and passes them through.
package ai

import "context"

type Embedding interface {
	Embedding(ctx context.Context, input string, model string) ([]float64, error)
	Embeddings(ctx context.Context, inputs []string, model string) ([][]float64, error)
}
