package index

import (
	"fmt"
	"testing"
)

func benchTokens(i int) []string {
	terms := []string{"বন্যা", "ঢাকা", "নদী", "বই", "খবর", "সরকার", "ক্রিকেট", "বাজার"}
	return []string{terms[i%len(terms)], terms[(i+1)%len(terms)], terms[(i+3)%len(terms)]}
}

// BenchmarkAdd measures per-document insert throughput.
func BenchmarkAdd(b *testing.B) {
	x := New()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = x.Add(Document{
			ID:     fmt.Sprintf("doc-%d", i),
			Lang:   "bn",
			Tokens: benchTokens(i),
		})
	}
}

// BenchmarkPostings measures single-term lookup latency over 10 000 documents.
func BenchmarkPostings(b *testing.B) {
	x := New()
	for i := 0; i < 10000; i++ {
		_ = x.Add(Document{ID: fmt.Sprintf("doc-%d", i), Lang: "bn", Tokens: benchTokens(i)})
	}
	term := Term{Lang: "bn", Text: "বন্যা"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = x.Postings(term)
	}
}

// BenchmarkPostingsParallel measures concurrent read throughput.
func BenchmarkPostingsParallel(b *testing.B) {
	x := New()
	for i := 0; i < 10000; i++ {
		_ = x.Add(Document{ID: fmt.Sprintf("doc-%d", i), Lang: "bn", Tokens: benchTokens(i)})
	}
	term := Term{Lang: "bn", Text: "বন্যা"}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = x.Postings(term)
		}
	})
}

// BenchmarkSnapshot measures the cost of snapshotting before a checkpoint.
func BenchmarkSnapshot(b *testing.B) {
	x := New()
	for i := 0; i < 5000; i++ {
		_ = x.Add(Document{ID: fmt.Sprintf("doc-%d", i), Lang: "bn", Tokens: benchTokens(i)})
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		entries, docs := x.Snapshot()
		_, _ = entries, docs
	}
}
