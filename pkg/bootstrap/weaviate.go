package bootstrap

import (
	"github.com/pkg/errors"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
)

// NewWeaviateClient connects to the external Weaviate instance holding
// the advice vectors.
func NewWeaviateClient(scheme, host string) (*weaviate.Client, error) {
	client, err := weaviate.NewClient(weaviate.Config{
		Scheme: scheme,
		Host:   host,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating weaviate client")
	}
	return client, nil
}
