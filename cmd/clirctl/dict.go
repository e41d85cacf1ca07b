package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arefin-labs/clir-engine/internal/analyzer"
	"github.com/arefin-labs/clir-engine/internal/index"
	"github.com/arefin-labs/clir-engine/internal/lexicon"
	"github.com/arefin-labs/clir-engine/pkg/config"
)

func newDictCmd(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Inspect the translation dictionary",
	}
	cmd.AddCommand(newDictStatsCmd(cfg), newDictLookupCmd(cfg), newDictBuildCmd())
	return cmd
}

// newDictBuildCmd converts a tab-separated bilingual word list into the JSONL
// dictionary format, normalizing both sides with their language analyzers so
// build-time entries match query-time lookups.
func newDictBuildCmd() *cobra.Command {
	var (
		sourceLang string
		targetLang string
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "build <tsv-file>",
		Short: "Convert a tab-separated bilingual list into dictionary JSONL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcAn, err := analyzer.For(sourceLang)
			if err != nil {
				return err
			}
			tgtAn, err := analyzer.For(targetLang)
			if err != nil {
				return err
			}

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			enc := json.NewEncoder(out)
			scanner := bufio.NewScanner(in)
			var written, skipped int
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				fields := strings.Split(line, "\t")
				if len(fields) < 2 {
					skipped++
					continue
				}
				weight := 1.0
				if len(fields) >= 3 {
					w, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
					if err != nil || w < 0 {
						skipped++
						continue
					}
					weight = w
				}
				srcTokens := srcAn.Analyze(fields[0])
				tgtTokens := tgtAn.Analyze(fields[1])
				if len(srcTokens) != 1 || len(tgtTokens) != 1 {
					// Multi-word or stop-word-only entries do not fit the
					// single-term dictionary model.
					skipped++
					continue
				}
				if err := enc.Encode(lexicon.Entry{
					Source:     srcTokens[0],
					SourceLang: sourceLang,
					Target:     tgtTokens[0],
					TargetLang: targetLang,
					Weight:     weight,
				}); err != nil {
					return err
				}
				written++
			}
			if err := scanner.Err(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "written: %d skipped: %d\n", written, skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceLang, "from", analyzer.LangEnglish, "source language of the first column")
	cmd.Flags().StringVar(&targetLang, "to", analyzer.LangBangla, "target language of the second column")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

func newDictStatsCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dictionary entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := lexicon.LoadDictionary(cfg().Lexicon.DictionaryPath)
			if err != nil {
				return err
			}
			fmt.Printf("path:    %s\n", cfg().Lexicon.DictionaryPath)
			fmt.Printf("entries: %d\n", dict.Size())
			return nil
		},
	}
}

func newDictLookupCmd(cfg func() *config.Config) *cobra.Command {
	var (
		sourceLang string
		targetLang string
	)
	cmd := &cobra.Command{
		Use:   "lookup <word>",
		Short: "Show translation candidates for one word, after analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := lexicon.LoadDictionary(cfg().Lexicon.DictionaryPath)
			if err != nil {
				return err
			}
			an, err := analyzer.For(sourceLang)
			if err != nil {
				return err
			}
			tokens := an.Analyze(args[0])
			if len(tokens) == 0 {
				return fmt.Errorf("%q normalizes to zero tokens", args[0])
			}
			for _, tok := range tokens {
				term := index.Term{Lang: sourceLang, Text: tok}
				cands, err := dict.Lookup(cmd.Context(), term, targetLang)
				if err != nil {
					return err
				}
				if len(cands) == 0 {
					fmt.Printf("%s: no candidates\n", term)
					continue
				}
				parts := make([]string, len(cands))
				for i, c := range cands {
					parts[i] = fmt.Sprintf("%s (%.3f)", c.Term.Text, c.Weight)
				}
				fmt.Printf("%s: %s\n", term, strings.Join(parts, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceLang, "from", analyzer.LangBangla, "source language")
	cmd.Flags().StringVar(&targetLang, "to", analyzer.LangEnglish, "target language")
	return cmd
}
