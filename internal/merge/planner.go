// Package merge packs extracted document text into size-bounded output
// chunks. Packing is deterministic: the same documents in the same order
// always produce identical chunk membership.
package merge

import (
	"fmt"
	"strings"
	"time"

	"drivemerge/internal/models"
)

// Limits bound one merged output file. A single document whose rendered
// text alone exceeds a limit is still written whole into its own chunk;
// the limits bound aggregation, never truncate a document.
type Limits struct {
	MaxBytes int64
	MaxWords int
}

// Document pairs a ledger record with its extracted text.
type Document struct {
	Record *models.RemoteFileRecord
	Text   string
}

// Chunk is a planned output file: metadata plus the rendered body.
type Chunk struct {
	models.MergedChunk
	Body string
}

// Planner packs documents into chunks under the configured limits.
type Planner struct {
	limits Limits
}

// NewPlanner creates a planner with the given limits.
func NewPlanner(limits Limits) *Planner {
	return &Planner{limits: limits}
}

// Plan packs documents, in input order, into an ordered chunk sequence.
// Callers pass documents pre-sorted (path, name, identity) so repeated
// runs with no changes produce byte-identical output. The preamble is
// written at the top of every chunk and counts toward its totals. Zero
// documents yield zero chunks, not an empty chunk.
func (p *Planner) Plan(docs []Document, preamble string) []Chunk {
	var chunks []Chunk
	var cur *Chunk

	open := func() {
		chunks = append(chunks, Chunk{
			MergedChunk: models.MergedChunk{SequenceIndex: len(chunks)},
		})
		cur = &chunks[len(chunks)-1]
		cur.Body = preamble
		cur.ByteSize = int64(len(preamble))
		cur.WordCount = countWords(preamble)
	}

	for _, doc := range docs {
		section := RenderSection(doc)
		secBytes := int64(len(section))
		secWords := countWords(section)

		if cur == nil {
			open()
		} else if len(cur.MemberIDs) > 0 &&
			(cur.ByteSize+secBytes > p.limits.MaxBytes ||
				cur.WordCount+secWords > p.limits.MaxWords) {
			// Close before writing, never mid-document.
			open()
		}

		cur.Body += section
		cur.ByteSize += secBytes
		cur.WordCount += secWords
		cur.MemberIDs = append(cur.MemberIDs, doc.Record.ID)
	}

	return chunks
}

// RenderSection renders one document the way the merged files present
// it: a banner naming the source file, then the extracted text.
func RenderSection(doc Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n\n===== FILE: %s (%s) =====\n", doc.Record.Name, doc.Record.ID))
	sb.WriteString(fmt.Sprintf("Last modified: %s\n", doc.Record.ModifiedAt.UTC().Format(time.RFC3339)))
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n\n")
	sb.WriteString(doc.Text)
	sb.WriteString("\n\n")
	return sb.String()
}

// RenderPreamble renders the run header written at the top of each
// merged file.
func RenderPreamble(generatedAt time.Time, totalDocs, activeDocs, updated, deleted int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Merged Content - Generated on %s\n", generatedAt.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Total documents: %d\n", totalDocs))
	sb.WriteString(fmt.Sprintf("Active documents: %d\n", activeDocs))
	sb.WriteString(fmt.Sprintf("Files updated in this sync: %d\n", updated))
	sb.WriteString(fmt.Sprintf("Files deleted in this sync: %d\n", deleted))
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n\n")
	return sb.String()
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
