package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/arefin-labs/clir-engine/internal/analytics/collector"
	"github.com/arefin-labs/clir-engine/internal/corpus"
	"github.com/arefin-labs/clir-engine/internal/ingestion"
	"github.com/arefin-labs/clir-engine/pkg/config"
	"github.com/arefin-labs/clir-engine/pkg/kafka"
)

func newCorpusCmd(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Work with crawled JSONL corpora",
	}
	cmd.AddCommand(newCorpusStatsCmd(), newCorpusLoadCmd(cfg))
	return cmd
}

func newCorpusStatsCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a corpus directory: files, articles, languages, duplicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			articles, stats, err := corpus.LoadDir(dir, slog.Default())
			if err != nil {
				return err
			}
			byLang := make(map[string]int)
			for _, a := range articles {
				byLang[a.Language]++
			}
			fmt.Printf("files:      %d\n", stats.Files)
			fmt.Printf("articles:   %d\n", len(articles))
			fmt.Printf("duplicates: %d\n", stats.Duplicates)
			fmt.Printf("malformed:  %d\n", stats.Malformed)
			fmt.Printf("empty:      %d\n", stats.Empty)
			for lang, n := range byLang {
				fmt.Printf("lang %s:    %d\n", lang, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "corpus directory of *.jsonl files")
	return cmd
}

func newCorpusLoadCmd(cfg func() *config.Config) *cobra.Command {
	var (
		dir       string
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Publish a corpus directory to the document ingest topic in batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			articles, stats, err := corpus.LoadDir(dir, slog.Default())
			if err != nil {
				return err
			}
			fmt.Printf("loaded %d articles (%d duplicates merged), publishing...\n",
				len(articles), stats.Duplicates)

			producer := kafka.NewProducer(cfg().Kafka, cfg().Kafka.Topics.DocumentIngest)
			defer producer.Close()
			batch := collector.NewBatchCollector(producer, batchSize, 2*time.Second)
			batch.Start(ctx)

			now := time.Now().UTC()
			for _, a := range articles {
				batch.Track(a.ID, ingestion.IngestEvent{
					DocumentID:  a.ID,
					Title:       a.Title,
					Body:        a.Body,
					Language:    a.Language,
					Source:      a.Source,
					PublishedAt: a.PublishedAt,
					IngestedAt:  now,
				})
			}

			// Let the batch collector drain, then stop its flush loop.
			for batch.BufferLen() > 0 {
				time.Sleep(100 * time.Millisecond)
			}
			cancel()
			batch.Close()

			fmt.Printf("published %d articles to %s\n", len(articles), cfg().Kafka.Topics.DocumentIngest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "corpus directory of *.jsonl files")
	cmd.Flags().IntVar(&batchSize, "batch-size", 200, "events per Kafka batch")
	return cmd
}
