package knowledge

import (
	"context"

	"github.com/mathmentor/mentor/internal/agents"
)

// Retriever is the capability the pipeline consumes: given a problem
// statement, return supporting passages in descending relevance. An
// empty result is a valid response, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]agents.Passage, error)
}
