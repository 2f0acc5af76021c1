package knowledge

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/mathmentor/mentor/internal/agents"
)

const collectionName = "knowledge"

// Entry is one ingestable piece of reference material.
type Entry struct {
	ID      string
	Content string
	Source  string // path of the originating file
	Section string // heading the passage was found under, if any
}

// Index is a chromem-go backed vector index over reference material.
// It implements Retriever.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   Embedder
	embedFunc  chromem.EmbeddingFunc
}

// NewIndex creates a new in-memory Index.
func NewIndex(embedder Embedder) (*Index, error) {
	db := chromem.NewDB()
	ef := toChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &Index{
		db:         db,
		collection: col,
		embedder:   embedder,
		embedFunc:  ef,
	}, nil
}

// Add embeds and stores the given entries.
func (ix *Index) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		docs[i] = chromem.Document{
			ID:      e.ID,
			Content: e.Content,
			Metadata: map[string]string{
				"source":  e.Source,
				"section": e.Section,
			},
		}
	}

	return ix.collection.AddDocuments(ctx, docs, 1)
}

// Retrieve returns up to limit passages relevant to the query, most
// relevant first.
func (ix *Index) Retrieve(ctx context.Context, query string, limit int) ([]agents.Passage, error) {
	if limit <= 0 {
		limit = 3
	}

	// chromem-go requires nResults <= collection size.
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := ix.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	passages := make([]agents.Passage, len(results))
	for i, r := range results {
		passages[i] = agents.Passage{
			Content: r.Content,
			Score:   float64(r.Similarity),
		}
	}
	return passages, nil
}

// Persist saves the index under the given directory.
func (ix *Index) Persist(ctx context.Context, dir string) error {
	return ix.db.ExportToFile(dir+"/chromem.gob.gz", true, "")
}

// Load restores the index from the given directory.
func (ix *Index) Load(ctx context.Context, dir string) error {
	if err := ix.db.ImportFromFile(dir+"/chromem.gob.gz", ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := ix.db.GetCollection(collectionName, ix.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	ix.collection = col
	return nil
}

// Count returns the number of stored passages.
func (ix *Index) Count() int {
	return ix.collection.Count()
}
