package merge_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivemerge/internal/merge"
	"drivemerge/internal/models"
)

func doc(id string, words int) merge.Document {
	return merge.Document{
		Record: &models.RemoteFileRecord{
			ID:         id,
			Name:       id + ".docx",
			Path:       id + ".docx",
			ModifiedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Status:     models.StatusActive,
		},
		Text: strings.TrimSpace(strings.Repeat("word ", words)),
	}
}

// sectionOverhead is the word count the banner adds around each document.
func sectionOverhead(t *testing.T) int {
	t.Helper()
	return countRenderedWords(t, doc("x", 0))
}

func countRenderedWords(t *testing.T, d merge.Document) int {
	t.Helper()
	return len(strings.Fields(merge.RenderSection(d)))
}

func TestPlannerPlan(t *testing.T) {
	loose := merge.Limits{MaxBytes: 1 << 30, MaxWords: 1 << 30}

	t.Run("no documents yields no chunks", func(t *testing.T) {
		planner := merge.NewPlanner(loose)
		chunks := planner.Plan(nil, "header\n")
		assert.Empty(t, chunks)
	})

	t.Run("everything fits in one chunk", func(t *testing.T) {
		planner := merge.NewPlanner(loose)
		chunks := planner.Plan([]merge.Document{
			doc("a", 100), doc("b", 100), doc("c", 100),
		}, "")

		require.Len(t, chunks, 1)
		assert.Equal(t, 0, chunks[0].SequenceIndex)
		assert.Equal(t, []string{"a", "b", "c"}, chunks[0].MemberIDs)
		assert.Equal(t, int64(len(chunks[0].Body)), chunks[0].ByteSize)
	})

	t.Run("word limit splits between documents", func(t *testing.T) {
		overhead := sectionOverhead(t)
		limit := 100_000 + 200_000 + 2*overhead

		planner := merge.NewPlanner(merge.Limits{MaxBytes: 1 << 40, MaxWords: limit})
		chunks := planner.Plan([]merge.Document{
			doc("a", 100_000), doc("b", 200_000), doc("c", 200_000),
		}, "")

		require.Len(t, chunks, 2)
		assert.Equal(t, []string{"a", "b"}, chunks[0].MemberIDs)
		assert.Equal(t, []string{"c"}, chunks[1].MemberIDs)
		assert.LessOrEqual(t, chunks[0].WordCount, limit)
	})

	t.Run("byte limit splits between documents", func(t *testing.T) {
		a, b := doc("a", 50), doc("b", 50)
		limit := int64(len(merge.RenderSection(a))) + 10

		planner := merge.NewPlanner(merge.Limits{MaxBytes: limit, MaxWords: 1 << 30})
		chunks := planner.Plan([]merge.Document{a, b}, "")

		require.Len(t, chunks, 2)
		assert.Equal(t, []string{"a"}, chunks[0].MemberIDs)
		assert.Equal(t, []string{"b"}, chunks[1].MemberIDs)
	})

	t.Run("oversized document gets its own chunk untruncated", func(t *testing.T) {
		big := doc("big", 10_000)
		planner := merge.NewPlanner(merge.Limits{MaxBytes: 1 << 30, MaxWords: 100})
		chunks := planner.Plan([]merge.Document{doc("a", 50), big, doc("b", 50)}, "")

		require.Len(t, chunks, 3)
		assert.Equal(t, []string{"big"}, chunks[1].MemberIDs)
		assert.Contains(t, chunks[1].Body, big.Text)
	})

	t.Run("preamble appears in every chunk and counts toward limits", func(t *testing.T) {
		preamble := merge.RenderPreamble(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 2, 2, 2, 0)
		planner := merge.NewPlanner(merge.Limits{MaxBytes: 1 << 30, MaxWords: 60})
		chunks := planner.Plan([]merge.Document{doc("a", 40), doc("b", 40)}, preamble)

		require.Len(t, chunks, 2)
		for _, chunk := range chunks {
			assert.True(t, strings.HasPrefix(chunk.Body, preamble))
			assert.GreaterOrEqual(t, chunk.WordCount, len(strings.Fields(preamble)))
		}
	})

	t.Run("identical input produces identical output", func(t *testing.T) {
		docs := []merge.Document{doc("a", 500), doc("b", 500), doc("c", 500)}
		planner := merge.NewPlanner(merge.Limits{MaxBytes: 1 << 30, MaxWords: 700})

		first := planner.Plan(docs, "header\n")
		second := planner.Plan(docs, "header\n")

		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].Body, second[i].Body)
			assert.Equal(t, first[i].MemberIDs, second[i].MemberIDs)
		}
	})

	t.Run("every document lands in exactly one chunk", func(t *testing.T) {
		docs := []merge.Document{
			doc("a", 300), doc("b", 900), doc("c", 100), doc("d", 2000), doc("e", 10),
		}
		planner := merge.NewPlanner(merge.Limits{MaxBytes: 1 << 30, MaxWords: 1000})
		chunks := planner.Plan(docs, "")

		var members []string
		for _, chunk := range chunks {
			members = append(members, chunk.MemberIDs...)
		}
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, members)
	})
}

func TestRenderSection(t *testing.T) {
	d := doc("file-1", 3)
	section := merge.RenderSection(d)

	assert.Contains(t, section, "===== FILE: file-1.docx (file-1) =====")
	assert.Contains(t, section, "Last modified: 2024-03-01T12:00:00Z")
	assert.Contains(t, section, d.Text)
}

func TestRenderPreamble(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	preamble := merge.RenderPreamble(at, 10, 8, 3, 1)

	assert.Contains(t, preamble, "Generated on 2024-03-01T12:00:00Z")
	assert.Contains(t, preamble, "Total documents: 10")
	assert.Contains(t, preamble, "Active documents: 8")
	assert.Contains(t, preamble, "Files updated in this sync: 3")
	assert.Contains(t, preamble, "Files deleted in this sync: 1")
}
