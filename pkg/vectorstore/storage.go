// Package vectorstore wraps the Weaviate collaborator used for semantic
// advice retrieval. It stores advice vectors tagged with their flow and
// answers nearest-neighbor queries hard-filtered by that tag.
package vectorstore

import (
	"github.com/charmbracelet/log"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/hearthwise/homejourney/pkg/content"
)

const (
	ClassName = "AdviceContent"

	titleProperty   = "title"
	flowProperty    = "flow"
	tagsProperty    = "tags"
	phaseProperty   = "phaseId"
	contentProperty = "contentId"
)

// Neighbor is one nearest-neighbor hit: a candidate ID resolvable against
// the content store and a similarity already normalized to [0,1] by
// Weaviate. The engine performs no renormalization.
type Neighbor struct {
	ID         string
	Similarity float64
}

// Storage implements the vector store collaborator using Weaviate.
type Storage struct {
	client *weaviate.Client
	logger *log.Logger
}

// New creates a Storage over an existing Weaviate client.
func New(client *weaviate.Client, logger *log.Logger) *Storage {
	return &Storage{client: client, logger: logger}
}

// BuildObject assembles the Weaviate object for an advice candidate. The
// vector comes from the embeddings collaborator; Weaviate itself runs
// with no vectorizer. Weaviate accepts only RFC 4122 object IDs, so the
// object ID is derived deterministically from the candidate ID and the
// candidate ID itself travels as a property, resolved back to content
// store rows at query time. Re-seeding the same candidate overwrites its
// object instead of duplicating it.
func BuildObject(c content.Candidate, flow content.Flow, vector []float32) *models.Object {
	return &models.Object{
		Class: ClassName,
		ID:    strfmt.UUID(uuid.NewSHA1(uuid.NameSpaceDNS, []byte(c.ID)).String()),
		Properties: map[string]interface{}{
			titleProperty:   c.Title,
			flowProperty:    string(flow),
			tagsProperty:    c.Tags,
			phaseProperty:   c.PhaseID,
			contentProperty: c.ID,
		},
		Vector: vector,
	}
}
