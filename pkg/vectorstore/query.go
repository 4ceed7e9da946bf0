package vectorstore

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// StoreBatch writes advice objects through the batch API.
func (s *Storage) StoreBatch(ctx context.Context, objects []*models.Object) error {
	if len(objects) == 0 {
		return nil
	}

	batcher := s.client.Batch().ObjectsBatcher()
	for _, obj := range objects {
		batcher = batcher.WithObjects(obj)
	}

	result, err := batcher.Do(ctx)
	if err != nil {
		return fmt.Errorf("batch storing objects: %w", err)
	}

	for _, obj := range result {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("object error: %s", obj.Result.Errors.Error[0].Message)
		}
	}

	s.logger.Info("Batch stored advice vectors", "count", len(objects))
	return nil
}

// NearestByFlow returns the nearest neighbors of the query vector,
// filtered server-side by flow tag. The filter is structural, not
// semantic: content from other flows never reaches the caller no matter
// how close its vector is. An empty flow disables the filter.
func (s *Storage) NearestByFlow(ctx context.Context, vector []float32, flow string, limit int) ([]Neighbor, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	query := s.client.GraphQL().Get().
		WithClassName(ClassName).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(
			graphql.Field{Name: contentProperty},
			graphql.Field{
				Name: "_additional",
				Fields: []graphql.Field{
					{Name: "certainty"},
				},
			})

	if flow != "" {
		query = query.WithWhere(filters.Where().
			WithPath([]string{flowProperty}).
			WithOperator(filters.Equal).
			WithValueText(flow))
	}

	resp, err := query.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("executing near-vector query: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql query errors: %v", resp.Errors)
	}

	data, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		s.logger.Warn("No 'Get' field in GraphQL response")
		return nil, nil
	}
	classData, ok := data[ClassName].([]interface{})
	if !ok {
		s.logger.Warn("No class data in GraphQL response", "class", ClassName)
		return nil, nil
	}

	neighbors := make([]Neighbor, 0, len(classData))
	for _, item := range classData {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := obj[contentProperty].(string)
		if id == "" {
			continue
		}
		additional, _ := obj["_additional"].(map[string]interface{})
		certainty, _ := additional["certainty"].(float64)
		neighbors = append(neighbors, Neighbor{ID: id, Similarity: certainty})
	}

	return neighbors, nil
}
