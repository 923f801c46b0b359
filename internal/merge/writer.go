package merge

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"drivemerge/internal/events"
	"drivemerge/internal/storage"
)

// Writer persists planned chunks as sequentially numbered text files in
// a per-folder directory. Chunk files are regenerated in full on every
// run; stale part files beyond the current chunk count are pruned.
type Writer struct {
	store  *storage.LocalStore
	logger *events.Logger
}

// NewWriter creates a chunk writer rooted at the output store.
func NewWriter(store *storage.LocalStore, logger *events.Logger) *Writer {
	return &Writer{
		store:  store,
		logger: logger.WithField("component", "chunk_writer"),
	}
}

var partPattern = regexp.MustCompile(`^(.+)_part(\d+)\.txt$`)

// Write stores each chunk as <stem>_part<N>.txt (N starting at 1) under
// dir, then removes leftover part files from earlier, larger runs.
// Returns the written file names in sequence order.
func (w *Writer) Write(dir, stem string, chunks []Chunk) ([]string, error) {
	names := make([]string, 0, len(chunks))

	for _, chunk := range chunks {
		name := fmt.Sprintf("%s_part%d.txt", stem, chunk.SequenceIndex+1)
		if err := w.store.Write(filepath.Join(dir, name), []byte(chunk.Body)); err != nil {
			return nil, fmt.Errorf("write chunk %d: %w", chunk.SequenceIndex, err)
		}

		w.logger.WithFields(map[string]interface{}{
			"file":  name,
			"bytes": chunk.ByteSize,
			"words": chunk.WordCount,
			"docs":  len(chunk.MemberIDs),
		}).Info("Wrote merged chunk")

		names = append(names, name)
	}

	if err := w.prune(dir, stem, len(chunks)); err != nil {
		return nil, err
	}

	return names, nil
}

// prune removes <stem>_part<M>.txt files with M beyond the current count.
func (w *Writer) prune(dir, stem string, count int) error {
	existing, err := w.store.List(dir)
	if err != nil {
		return fmt.Errorf("list output directory: %w", err)
	}

	for _, name := range existing {
		m := partPattern.FindStringSubmatch(name)
		if m == nil || m[1] != stem {
			continue
		}

		n, err := strconv.Atoi(m[2])
		if err != nil || n <= count {
			continue
		}

		if err := w.store.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("prune stale chunk %s: %w", name, err)
		}
		w.logger.WithField("file", name).Info("Pruned stale chunk")
	}

	return nil
}
