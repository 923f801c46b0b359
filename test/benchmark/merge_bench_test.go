package benchmark

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"drivemerge/internal/merge"
	"drivemerge/internal/models"
)

func benchDocs(count, wordsPerDoc int) []merge.Document {
	text := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", wordsPerDoc/5))
	docs := make([]merge.Document, count)
	for i := range docs {
		docs[i] = merge.Document{
			Record: &models.RemoteFileRecord{
				ID:         fmt.Sprintf("doc-%04d", i),
				Name:       fmt.Sprintf("doc-%04d.docx", i),
				Path:       fmt.Sprintf("doc-%04d.docx", i),
				ModifiedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				Status:     models.StatusActive,
			},
			Text: text,
		}
	}
	return docs
}

func BenchmarkPlannerPlan(b *testing.B) {
	cases := []struct {
		docs  int
		words int
	}{
		{10, 1000},
		{100, 1000},
		{100, 10000},
		{1000, 1000},
	}

	for _, c := range cases {
		b.Run(fmt.Sprintf("%ddocs_%dwords", c.docs, c.words), func(b *testing.B) {
			docs := benchDocs(c.docs, c.words)
			planner := merge.NewPlanner(merge.Limits{
				MaxBytes: 200 * 1024 * 1024,
				MaxWords: 450_000,
			})
			preamble := merge.RenderPreamble(time.Now(), c.docs, c.docs, c.docs, 0)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				chunks := planner.Plan(docs, preamble)
				if len(chunks) == 0 {
					b.Fatal("expected at least one chunk")
				}
			}
		})
	}
}

func BenchmarkRenderSection(b *testing.B) {
	doc := benchDocs(1, 10000)[0]

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = merge.RenderSection(doc)
	}
}
