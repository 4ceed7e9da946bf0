package vectorstore

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate/entities/models"
)

// EnsureSchemaExists creates the advice class when missing. Vectors are
// supplied externally, so the class runs with no vectorizer.
func (s *Storage) EnsureSchemaExists(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("getting schema: %w", err)
	}

	for _, class := range schema.Classes {
		if class.Class == ClassName {
			return nil
		}
	}

	s.logger.Info("Creating vector schema", "class", ClassName)

	indexFilterable := true
	classObj := &models.Class{
		Class:       ClassName,
		Description: "Authored advice and story content with externally supplied embeddings",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:        titleProperty,
				DataType:    []string{"text"},
				Description: "Title of the advice content",
			},
			{
				Name:            flowProperty,
				DataType:        []string{"text"},
				Description:     "Conversation flow this content belongs to",
				IndexFilterable: &indexFilterable,
			},
			{
				Name:        tagsProperty,
				DataType:    []string{"text[]"},
				Description: "Tags associated with the content",
			},
			{
				Name:        phaseProperty,
				DataType:    []string{"text"},
				Description: "Phase the content is organized under",
			},
			{
				Name:        contentProperty,
				DataType:    []string{"text"},
				Description: "Content store ID this object was embedded from",
			},
		},
	}

	if err := s.client.Schema().ClassCreator().WithClass(classObj).Do(ctx); err != nil {
		return fmt.Errorf("creating class %s: %w", ClassName, err)
	}
	return nil
}

// DeleteAll drops and recreates the advice class, used before reseeding.
func (s *Storage) DeleteAll(ctx context.Context) error {
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(ClassName).Do(ctx)
	if err != nil {
		return fmt.Errorf("checking class existence for %s: %w", ClassName, err)
	}
	if !exists {
		return nil
	}

	if err := s.client.Schema().ClassDeleter().WithClassName(ClassName).Do(ctx); err != nil {
		return fmt.Errorf("deleting class %s: %w", ClassName, err)
	}

	return s.EnsureSchemaExists(ctx)
}
