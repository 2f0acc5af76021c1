package knowledge

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockEmbedder returns deterministic embeddings based on text content.
// Shared characters contribute to the same vector positions, so similar
// texts produce similar vectors.
type mockEmbedder struct {
	dims int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = m.deterministicVector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

func (m *mockEmbedder) deterministicVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		idx := (int(ch) + i) % m.dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func setupIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := NewIndex(&mockEmbedder{dims: 64})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return ix
}

func TestIndexAddAndRetrieve(t *testing.T) {
	ctx := context.Background()
	ix := setupIndex(t)

	entries := []Entry{
		{ID: "a", Content: "quadratic equations are solved by factoring or the quadratic formula", Source: "algebra.md", Section: "Quadratics"},
		{ID: "b", Content: "the derivative of sine is cosine", Source: "calculus.md", Section: "Derivatives"},
	}
	if err := ix.Add(ctx, entries); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if ix.Count() != 2 {
		t.Errorf("Count = %d, want 2", ix.Count())
	}

	passages, err := ix.Retrieve(ctx, "quadratic equations are solved by factoring or the quadratic formula", 1)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("got %d passages, want 1", len(passages))
	}
	if !strings.Contains(passages[0].Content, "quadratic") {
		t.Errorf("unexpected top passage: %q", passages[0].Content)
	}
	if passages[0].Score <= 0 {
		t.Errorf("score should be positive, got %f", passages[0].Score)
	}
}

func TestRetrieveEmptyIndex(t *testing.T) {
	ix := setupIndex(t)

	passages, err := ix.Retrieve(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(passages) != 0 {
		t.Errorf("empty index returned %d passages", len(passages))
	}
}

func TestRetrieveLimitClampedToCollectionSize(t *testing.T) {
	ctx := context.Background()
	ix := setupIndex(t)
	if err := ix.Add(ctx, []Entry{{ID: "only", Content: "a single passage", Source: "s"}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	passages, err := ix.Retrieve(ctx, "passage", 10)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(passages) != 1 {
		t.Errorf("got %d passages, want 1", len(passages))
	}
}

func TestIndexPersistAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ix := setupIndex(t)
	if err := ix.Add(ctx, []Entry{{ID: "a", Content: "persist me", Source: "s"}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ix.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	restored := setupIndex(t)
	if err := restored.Load(ctx, dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Count() != 1 {
		t.Errorf("restored Count = %d, want 1", restored.Count())
	}
}

func TestSplitMarkdown(t *testing.T) {
	content := `intro paragraph

# Quadratics

factoring works when roots are rational

## Formula

use the quadratic formula otherwise`

	sections := SplitMarkdown(content)
	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}
	if sections[0].Heading != "" || sections[0].Text != "intro paragraph" {
		t.Errorf("preamble section = %+v", sections[0])
	}
	if sections[1].Heading != "Quadratics" {
		t.Errorf("heading = %q", sections[1].Heading)
	}
	if sections[2].Heading != "Formula" {
		t.Errorf("heading = %q", sections[2].Heading)
	}
}

func TestSplitMarkdownLongSection(t *testing.T) {
	long := strings.Repeat("word ", 1000) // ~5000 chars, no paragraph breaks
	sections := SplitMarkdown("# Big\n\n" + long)
	if len(sections) < 2 {
		t.Fatalf("oversized section should be split, got %d", len(sections))
	}
	for _, s := range sections {
		if len(s.Text) > maxChunkLen {
			t.Errorf("section exceeds max length: %d", len(s.Text))
		}
	}
}

func TestIngestFixtureLibrary(t *testing.T) {
	ix := setupIndex(t)
	stats, err := Ingest(context.Background(), ix, filepath.Join("testdata", "library"), []string{"**/*.md"}, nil, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if stats.Files != 2 {
		t.Errorf("Files = %d, want 2", stats.Files)
	}
	if stats.Passages < 6 {
		t.Errorf("Passages = %d, want at least 6", stats.Passages)
	}
}

func TestIngest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	write := func(name, content string) {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("algebra.md", "# Quadratics\n\nfactor or use the formula")
	write("sub/trig.md", "# Identities\n\nsin^2 + cos^2 = 1")
	write("notes.bin", "binary junk")
	write("skip/secret.md", "# Hidden\n\nexcluded")

	ix := setupIndex(t)
	stats, err := Ingest(ctx, ix, dir, []string{"**/*.md"}, []string{"skip/**"}, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if stats.Files != 2 {
		t.Errorf("Files = %d, want 2", stats.Files)
	}
	if stats.Passages != 2 {
		t.Errorf("Passages = %d, want 2", stats.Passages)
	}
	if ix.Count() != 2 {
		t.Errorf("Count = %d, want 2", ix.Count())
	}
}
