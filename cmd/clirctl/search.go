package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arefin-labs/clir-engine/internal/analyzer"
	"github.com/arefin-labs/clir-engine/internal/corpus"
	"github.com/arefin-labs/clir-engine/internal/index"
	"github.com/arefin-labs/clir-engine/internal/lexicon"
	"github.com/arefin-labs/clir-engine/internal/pipeline"
	"github.com/arefin-labs/clir-engine/internal/retrieval"
	"github.com/arefin-labs/clir-engine/internal/translate"
	"github.com/arefin-labs/clir-engine/pkg/config"
)

// newSearchCmd runs the full ranking pipeline in-process: build an index
// from a corpus directory, load the configured lexicon, search. Useful for
// relevance debugging without Kafka, Redis, or Postgres.
func newSearchCmd(cfg func() *config.Config) *cobra.Command {
	var (
		dir         string
		sourceLang  string
		targetLangs []string
		k           int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search a local corpus directory offline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			articles, _, err := corpus.LoadDir(dir, slog.Default())
			if err != nil {
				return err
			}
			idx := index.New()
			for _, a := range articles {
				an, err := analyzer.For(a.Language)
				if err != nil {
					return err
				}
				doc := index.Document{ID: a.ID, Lang: a.Language, Tokens: an.Analyze(a.Text())}
				if err := idx.Add(doc); err != nil {
					return fmt.Errorf("indexing %s: %w", a.ID, err)
				}
			}
			stats := idx.Stats()
			fmt.Printf("indexed %d documents, %d terms\n", stats.Documents, stats.Terms)

			provider, _, err := lexicon.Build(cfg().Lexicon, nil)
			if err != nil {
				return err
			}
			translator := translate.NewTranslator(translate.NewResolver(provider), translate.IndexIDF(idx))
			params := retrieval.Params{K1: cfg().Search.BM25K1, B: cfg().Search.BM25B}
			pipe := pipeline.New(translator, idx, params, slog.Default())

			res, err := pipe.Run(cmd.Context(), pipeline.Request{
				Query:       query,
				SourceLang:  sourceLang,
				TargetLangs: targetLangs,
				K:           k,
			})
			if err != nil {
				return err
			}

			titles := make(map[string]string, len(articles))
			for _, a := range articles {
				titles[a.ID] = a.Title
			}
			fmt.Printf("%d results in %s\n", len(res.Docs), res.Elapsed)
			for i, doc := range res.Docs {
				fmt.Printf("%2d. %-16s %8.4f  %s\n", i+1, doc.DocID, doc.Score, titles[doc.DocID])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "corpus directory of *.jsonl files")
	cmd.Flags().StringVar(&sourceLang, "from", analyzer.LangBangla, "query language")
	cmd.Flags().StringSliceVar(&targetLangs, "to", []string{analyzer.LangBangla, analyzer.LangEnglish}, "target languages")
	cmd.Flags().IntVar(&k, "k", 10, "number of results")
	return cmd
}
