// Package pipeline drives one cross-lingual search request through its
// stages: normalize the raw query with the source-language analyzer,
// translate it into each target language, retrieve per language, and merge
// the per-language rankings into a single top-k list. The pipeline is an
// explicit state machine so callers and tests can observe exactly where a
// request failed.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arefin-labs/clir-engine/internal/analyzer"
	"github.com/arefin-labs/clir-engine/internal/index"
	"github.com/arefin-labs/clir-engine/internal/retrieval"
	"github.com/arefin-labs/clir-engine/internal/translate"
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
)

// State is a stage of the ranking pipeline.
type State string

const (
	StateIdle        State = "idle"
	StateNormalizing State = "normalizing"
	StateTranslating State = "translating"
	StateRetrieving  State = "retrieving"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Request is one cross-lingual search.
type Request struct {
	Query       string
	SourceLang  string
	TargetLangs []string
	K           int
}

// Result carries the final ranking together with per-stage timings.
type Result struct {
	Docs       []retrieval.ScoredDoc
	Tokens     []index.Term
	Elapsed    time.Duration
	StageTimes map[State]time.Duration
}

// Pipeline executes search requests against a shared index. A single
// Pipeline value serves concurrent requests; all per-request state lives in
// the run, never in the Pipeline itself.
type Pipeline struct {
	translator *translate.Translator
	idx        *index.Inverted
	params     retrieval.Params
	logger     *slog.Logger
}

// New creates a Pipeline over the given translator and index.
func New(translator *translate.Translator, idx *index.Inverted, params retrieval.Params, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{translator: translator, idx: idx, params: params, logger: logger}
}

// run tracks the state of one request. The mutex exists only for observers
// calling State concurrently with Run; Run itself is single-goroutine except
// for the retrieval fan-out.
type run struct {
	mu    sync.Mutex
	state State
	err   error
	times map[State]time.Duration
}

func (r *run) transition(to State) {
	r.mu.Lock()
	r.state = to
	r.mu.Unlock()
}

func (r *run) fail(err error) {
	r.mu.Lock()
	r.state = StateFailed
	r.err = err
	r.mu.Unlock()
}

// Run executes the request to completion. Cancellation is honored at every
// stage boundary and inside the per-language retrieval fan-out, and the
// pipeline ends in StateFailed carrying the originating error whenever any
// stage fails. The Failed state is terminal; a new request starts a new run.
func (p *Pipeline) Run(ctx context.Context, req Request) (res *Result, retErr error) {
	started := time.Now()
	r := &run{state: StateIdle, times: make(map[State]time.Duration)}
	defer func() {
		if retErr != nil {
			r.fail(retErr)
			p.logger.Warn("search pipeline failed",
				"state", string(r.state),
				"source_lang", req.SourceLang,
				"error", retErr)
		}
	}()

	if err := validate(req); err != nil {
		return nil, err
	}

	// Normalizing.
	if err := ctx.Err(); err != nil {
		return nil, apperrors.New(apperrors.ErrTimeout, 503, "request canceled before normalization")
	}
	r.transition(StateNormalizing)
	stageStart := time.Now()
	tokens, err := p.normalize(req.Query, req.SourceLang)
	if err != nil {
		return nil, err
	}
	r.times[StateNormalizing] = time.Since(stageStart)

	// Translating.
	if err := ctx.Err(); err != nil {
		return nil, apperrors.New(apperrors.ErrTimeout, 503, "request canceled before translation")
	}
	r.transition(StateTranslating)
	stageStart = time.Now()
	vectors := make(map[string]translate.Vector, len(req.TargetLangs))
	for _, lang := range req.TargetLangs {
		vec, err := p.translator.Translate(ctx, tokens, lang)
		if err != nil {
			return nil, err
		}
		vectors[lang] = vec
	}
	r.times[StateTranslating] = time.Since(stageStart)

	// Retrieving: each target language scores independently, then the
	// per-language rankings merge into one list. Retrieval is a pure read on
	// the index, so the fan-out needs no coordination beyond the errgroup.
	if err := ctx.Err(); err != nil {
		return nil, apperrors.New(apperrors.ErrTimeout, 503, "request canceled before retrieval")
	}
	r.transition(StateRetrieving)
	stageStart = time.Now()
	rankings := make([][]retrieval.ScoredDoc, len(req.TargetLangs))
	g, gctx := errgroup.WithContext(ctx)
	for i, lang := range req.TargetLangs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs, err := retrieval.Retrieve(vectors[lang], p.idx, req.K, p.params)
			if err != nil {
				return err
			}
			rankings[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	docs := retrieval.Merge(rankings, req.K)
	r.times[StateRetrieving] = time.Since(stageStart)

	r.transition(StateDone)
	return &Result{
		Docs:       docs,
		Tokens:     tokens,
		Elapsed:    time.Since(started),
		StageTimes: r.times,
	}, nil
}

// normalize runs the source-language analyzer and tags each token with its
// language so downstream stages never confuse same-spelling terms across
// languages.
func (p *Pipeline) normalize(query, sourceLang string) ([]index.Term, error) {
	an, err := analyzer.For(sourceLang)
	if err != nil {
		return nil, err
	}
	raw := an.Analyze(query)
	if len(raw) == 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 400,
			"query %q normalizes to zero tokens", query)
	}
	tokens := make([]index.Term, len(raw))
	for i, text := range raw {
		tokens[i] = index.Term{Lang: sourceLang, Text: text}
	}
	return tokens, nil
}

func validate(req Request) error {
	if req.Query == "" {
		return apperrors.New(apperrors.ErrInvalidInput, 400, "empty query")
	}
	if req.SourceLang == "" {
		return apperrors.New(apperrors.ErrInvalidInput, 400, "missing source language")
	}
	if len(req.TargetLangs) == 0 {
		return apperrors.New(apperrors.ErrInvalidInput, 400, "at least one target language required")
	}
	seen := make(map[string]struct{}, len(req.TargetLangs))
	for _, lang := range req.TargetLangs {
		if _, dup := seen[lang]; dup {
			return apperrors.Newf(apperrors.ErrInvalidInput, 400, "duplicate target language %q", lang)
		}
		seen[lang] = struct{}{}
	}
	if req.K < 1 {
		return apperrors.Newf(apperrors.ErrInvalidInput, 400, "k must be >= 1, got %d", req.K)
	}
	return nil
}

// Describe renders a request for logs without dumping the full query text.
func Describe(req Request) string {
	q := req.Query
	if len(q) > 64 {
		q = q[:64] + "..."
	}
	return fmt.Sprintf("%s->%v q=%q k=%d", req.SourceLang, req.TargetLangs, q, req.K)
}
