package casebank

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mathmentor/mentor/internal/agents"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cases.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store
}

func record(problemText string) CaseRecord {
	return CaseRecord{
		OriginalInput: problemText,
		InputType:     InputText,
		ParsedProblem: agents.ParsedProblem{ProblemText: problemText, Topic: "algebra"},
		Solution:      "x = 2",
		Verification:  agents.Verification{IsCorrect: true, Confidence: 0.9, Issues: []string{}},
		Feedback:      FeedbackCorrect,
	}
}

func TestOpenMissingFileYieldsEmptyStore(t *testing.T) {
	store := setupStore(t)
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d records", store.Len())
	}
}

func TestAppendAssignsUniqueIDs(t *testing.T) {
	store := setupStore(t)

	id1, err := store.Append(record("solve x squared"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	id2, err := store.Append(record("solve x squared"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if id1 == "" || id2 == "" {
		t.Fatal("ids must be non-empty")
	}
	if id1 == id2 {
		t.Errorf("ids must be unique, both were %q", id1)
	}
}

func TestTimestampsNonDecreasing(t *testing.T) {
	store := setupStore(t)
	for i := 0; i < 10; i++ {
		if _, err := store.Append(record("p")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	records := store.All()
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Errorf("timestamp at %d decreased: %v < %v", i, records[i].Timestamp, records[i-1].Timestamp)
		}
	}
}

func TestRoundTripThroughDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	r := record("solve x squared minus 4x plus 4")
	r.Feedback = FeedbackIncorrect
	r.UserComment = "the second root is wrong"
	if _, err := store.Append(r); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := store.Append(record("integrate cosine of x")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	want := store.All()
	got := reloaded.All()
	if len(got) != len(want) {
		t.Fatalf("reloaded %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("record %d: id %q != %q", i, got[i].ID, want[i].ID)
		}
		if got[i].ParsedProblem != want[i].ParsedProblem {
			t.Errorf("record %d: parsed problem mismatch", i)
		}
		if got[i].Feedback != want[i].Feedback {
			t.Errorf("record %d: feedback %q != %q", i, got[i].Feedback, want[i].Feedback)
		}
		if got[i].UserComment != want[i].UserComment {
			t.Errorf("record %d: comment %q != %q", i, got[i].UserComment, want[i].UserComment)
		}
		if !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("record %d: timestamp %v != %v", i, got[i].Timestamp, want[i].Timestamp)
		}
	}
}

func TestPersistedFileIsPrettyPrintedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	store, _ := Open(path)
	if _, err := store.Append(record("p")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("case file should be indented")
	}
	var records []CaseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("case file is not valid JSON: %v", err)
	}
}

func TestCorruptFileDiscardedOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open of corrupt file should recover, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("corrupt content should be discarded, got %d records", store.Len())
	}

	// The store stays usable afterwards.
	if _, err := store.Append(record("fresh start")); err != nil {
		t.Fatalf("Append after corruption: %v", err)
	}
	reloaded, _ := Open(path)
	if reloaded.Len() != 1 {
		t.Errorf("expected 1 record after recovery, got %d", reloaded.Len())
	}
}

func TestResetEmptiesStoreAndDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	store, _ := Open(path)

	for i := 0; i < 5; i++ {
		if _, err := store.Append(record("p")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store size after reset = %d, want 0", store.Len())
	}

	reloaded, _ := Open(path)
	if reloaded.Len() != 0 {
		t.Errorf("reloaded size after reset = %d, want 0", reloaded.Len())
	}
}

func TestFindSimilarExactMatchScoresOne(t *testing.T) {
	store := setupStore(t)
	text := "solve x squared minus 4x plus 4"
	if _, err := store.Append(record(text)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	matches := store.FindSimilar(text, 5)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Score != 1.0 {
		t.Errorf("exact match score = %f, want 1.0", matches[0].Score)
	}
}

func TestFindSimilarExcludesDisjointAndLowScores(t *testing.T) {
	store := setupStore(t)
	store.Append(record("solve quadratic"))
	store.Append(record("one two three four five six seven eight nine ten"))

	matches := store.FindSimilar("integrate cosine", 10)
	if len(matches) != 0 {
		t.Errorf("disjoint vocabulary should not match, got %d results", len(matches))
	}

	// Low (≤ threshold) overlap is excluded too: {a b c} vs {a x y}
	// scores 1/5 = 0.2.
	store.Append(record("a b c"))
	matches = store.FindSimilar("a x y", 10)
	for _, m := range matches {
		if m.Score <= SimilarityThreshold {
			t.Errorf("match with score %f should be excluded", m.Score)
		}
	}
}

func TestFindSimilarHonorsLimitAndOrdering(t *testing.T) {
	store := setupStore(t)
	// Descending expected score relative to query "a b c d".
	store.Append(record("a b c d"))     // 1.0
	store.Append(record("a b c d e f")) // 4/6
	store.Append(record("a b c"))       // 3/4
	store.Append(record("a b c d"))     // 1.0, ties with first

	matches := store.FindSimilar("a b c d", 3)
	if len(matches) != 3 {
		t.Fatalf("limit not honored: got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("scores not descending at %d: %f > %f", i, matches[i].Score, matches[i-1].Score)
		}
	}

	// The two exact matches tie at 1.0; insertion order breaks the tie.
	all := store.All()
	if matches[0].Record.ID != all[0].ID || matches[1].Record.ID != all[3].ID {
		t.Error("equal scores should keep insertion order")
	}
}

func TestFindSimilarEmptyStore(t *testing.T) {
	store := setupStore(t)
	if got := store.FindSimilar("anything", 3); len(got) != 0 {
		t.Errorf("empty store returned %d matches", len(got))
	}
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	store, _ := Open(path)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Append(record("concurrent case")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Append: %v", err)
	}

	if store.Len() != n {
		t.Errorf("in-memory size = %d, want %d", store.Len(), n)
	}
	reloaded, _ := Open(path)
	if reloaded.Len() != n {
		t.Errorf("reloaded size = %d, want %d", reloaded.Len(), n)
	}

	// All ids distinct.
	seen := map[string]bool{}
	for _, r := range reloaded.All() {
		if seen[r.ID] {
			t.Errorf("duplicate id %q", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestAppendPersistFailureKeepsRecordInMemory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.json")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Replace the parent directory with a read-only one so the temp
	// file creation fails.
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	id, err := store.Append(record("unwritable"))
	if err == nil {
		t.Skip("filesystem permits writing to read-only dir (running as root?)")
	}

	var perr *PersistError
	if !errors.As(err, &perr) {
		t.Errorf("expected *PersistError, got %T: %v", err, err)
	}
	if id == "" {
		t.Error("id should still be assigned on persist failure")
	}
	if store.Len() != 1 {
		t.Errorf("record should remain in memory, size = %d", store.Len())
	}
}
