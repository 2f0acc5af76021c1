package casebank

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrCorrupt marks a case file whose content could not be parsed. The
// store recovers by starting over with an empty sequence; prior history
// is lost.
var ErrCorrupt = errors.New("case memory file is corrupt")

// PersistError reports a failed write of the case file. The in-memory
// sequence still reflects the mutation; it is just not guaranteed to
// survive a restart until the next successful persist.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting case memory to %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Store is a durable, append-only sequence of case records with lexical
// similarity search. Mutations persist the entire sequence as one
// pretty-printed JSON snapshot, written to a temp file and renamed into
// place so a crash never leaves a truncated file behind.
type Store struct {
	path string

	mu      sync.RWMutex
	records []CaseRecord
	lastTS  time.Time
}

// Open loads the case store backed by the given file. A missing file
// yields an empty store. A corrupt file is discarded with a loud log
// line and the store starts empty; this favors availability over
// preserving unreadable history.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating case memory directory: %w", err)
		}
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		log.Printf("casebank: reading %s: %v; starting with empty case memory", path, err)
		return s, nil
	}

	var records []CaseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("casebank: DISCARDING %s: %v: %v; all prior cases are lost", path, ErrCorrupt, err)
		return s, nil
	}

	for i := range records {
		if records[i].Feedback == "" {
			records[i].Feedback = FeedbackNone
		}
		if records[i].Timestamp.After(s.lastTS) {
			s.lastTS = records[i].Timestamp
		}
	}
	s.records = records

	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns a copy of the stored sequence in insertion order.
func (s *Store) All() []CaseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CaseRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Append assigns the record an id and timestamp, adds it to the end of
// the sequence and persists the whole snapshot. The returned id is
// valid even when persistence fails; in that case the record lives in
// memory only and the error is a *PersistError.
func (s *Store) Append(rec CaseRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.New().String()
	rec.Timestamp = s.nextTimestamp()
	if rec.Feedback == "" {
		rec.Feedback = FeedbackNone
	}

	s.records = append(s.records, rec)

	if err := s.persistLocked(); err != nil {
		return rec.ID, err
	}
	return rec.ID, nil
}

// Reset atomically replaces the sequence with an empty one and persists it.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return s.persistLocked()
}

// FindSimilar returns up to limit records whose parsed problem text
// scores above SimilarityThreshold against the query, ordered by
// descending score; equal scores keep insertion order. The scan is
// O(N·L) in store size and text length, which is fine for the small
// histories this store is meant for; it is not an index.
func (s *Store) FindSimilar(query string, limit int) []Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Match
	for _, rec := range s.records {
		score := Similarity(query, rec.ParsedProblem.ProblemText)
		if score > SimilarityThreshold {
			matches = append(matches, Match{Record: rec, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// nextTimestamp returns the current time, clamped so timestamps never
// decrease across records even if the wall clock steps backwards.
func (s *Store) nextTimestamp() time.Time {
	now := time.Now().UTC()
	if now.Before(s.lastTS) {
		now = s.lastTS
	}
	s.lastTS = now
	return now
}

// persistLocked writes the full sequence as pretty-printed JSON via a
// temp file and rename. Callers must hold the write lock.
func (s *Store) persistLocked() error {
	records := s.records
	if records == nil {
		records = []CaseRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &PersistError{Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cases-*.json")
	if err != nil {
		return &PersistError{Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistError{Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistError{Path: s.path, Err: err}
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &PersistError{Path: s.path, Err: err}
	}
	return nil
}
