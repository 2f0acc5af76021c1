package knowledge

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mathmentor/mentor/internal/progress"
)

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	Files    int
	Passages int
}

// Ingest walks dir for files matching the include patterns (and not
// matching the exclude patterns), splits each into sections and adds
// them to the index. Patterns are doublestar globs matched against the
// path relative to dir.
func Ingest(ctx context.Context, ix *Index, dir string, include, exclude []string, rep progress.Reporter) (*IngestStats, error) {
	if rep == nil {
		rep = progress.NopReporter{}
	}

	files, err := collectFiles(dir, include, exclude)
	if err != nil {
		return nil, err
	}

	stats := &IngestStats{}
	rep.Start(len(files))
	defer rep.Finish()

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rep.Update(i+1, path)

		content, err := os.ReadFile(filepath.Join(dir, path))
		if err != nil {
			return stats, fmt.Errorf("reading %s: %w", path, err)
		}

		var entries []Entry
		for j, sec := range SplitMarkdown(string(content)) {
			entries = append(entries, Entry{
				ID:      fmt.Sprintf("%s#%d", path, j),
				Content: sec.Text,
				Source:  path,
				Section: sec.Heading,
			})
		}
		if err := ix.Add(ctx, entries); err != nil {
			return stats, fmt.Errorf("indexing %s: %w", path, err)
		}

		stats.Files++
		stats.Passages += len(entries)
	}

	return stats, nil
}

// collectFiles lists the relative paths under dir that pass the
// include/exclude filters, in walk order.
func collectFiles(dir string, include, exclude []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !matchesAny(rel, include) || matchesAny(rel, exclude) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return files, nil
}

// matchesAny returns true if the path matches any of the glob patterns.
// An empty pattern list matches nothing.
func matchesAny(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}
