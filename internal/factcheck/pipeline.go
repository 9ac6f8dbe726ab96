package factcheck

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/models"
	"github.com/snappy-loop/veritas/internal/search"
)

// ErrMissingInput is returned for an empty text before any model or search call.
var ErrMissingInput = errors.New("text is required")

// Stage names a step of a fact-check run.
type Stage string

const (
	StageReceived   Stage = "received"
	StageExtracting Stage = "extracting"
	StageSearching  Stage = "searching"
	StageValidating Stage = "validating"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// Event reports progress. Index is 1-based within Total claims and is zero
// for stages that are not about a single claim.
type Event struct {
	Stage Stage
	Index int
	Total int
	Err   error // set for StageFailed
}

// Observer receives events synchronously, in order, on the goroutine running the pipeline.
type Observer func(Event)

// PipelineError wraps a failure with the stage it happened in.
// Its message is the underlying error's message.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string { return e.Err.Error() }

func (e *PipelineError) Unwrap() error { return e.Err }

// Options tune a Pipeline.
type Options struct {
	// MaxResults bounds the sources used per claim (1..5, default 5).
	MaxResults int
	// PartialResults keeps going when a claim's search fails, recording the claim with an
	// unknown outcome and a searchError instead of failing the whole run.
	PartialResults bool
}

// Pipeline runs extraction, then search and validation for each claim, one claim at a time.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	extractor *Extractor
	validator *Validator
	searcher  search.Searcher
	opts      Options
}

// NewPipeline creates a Pipeline that uses gen for both extraction and validation.
func NewPipeline(gen Generator, searcher search.Searcher, opts Options) *Pipeline {
	if opts.MaxResults < 1 || opts.MaxResults > search.MaxResults {
		opts.MaxResults = search.MaxResults
	}
	return &Pipeline{
		extractor: NewExtractor(gen),
		validator: NewValidator(gen),
		searcher:  searcher,
		opts:      opts,
	}
}

// Run checks every claim in text.
func (p *Pipeline) Run(ctx context.Context, text string) (*models.FactCheckResponse, error) {
	return p.RunObserved(ctx, text, nil)
}

// RunObserved is Run with a progress observer. obs may be nil.
func (p *Pipeline) RunObserved(ctx context.Context, text string, obs Observer) (*models.FactCheckResponse, error) {
	if text == "" {
		return nil, ErrMissingInput
	}
	emit := func(ev Event) {
		if obs != nil {
			obs(ev)
		}
	}
	fail := func(stage Stage, err error) (*models.FactCheckResponse, error) {
		perr := &PipelineError{Stage: stage, Err: err}
		emit(Event{Stage: StageFailed, Err: perr})
		log.Error().Err(err).Str("stage", string(stage)).Msg("Fact-check failed")
		return nil, perr
	}

	start := time.Now()
	log.Info().Int("text_len", len(text)).Msg("Starting fact-check")
	emit(Event{Stage: StageReceived})

	emit(Event{Stage: StageExtracting})
	claims, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return fail(StageExtracting, err)
	}

	total := len(claims)
	results := make([]models.ClaimResult, 0, total)
	for i, claim := range claims {
		emit(Event{Stage: StageSearching, Index: i + 1, Total: total})
		found, err := p.searcher.Search(ctx, claim)
		if err != nil {
			if !p.opts.PartialResults {
				return fail(StageSearching, err)
			}
			log.Warn().Err(err).Int("claim", i+1).Msg("Search failed, recording claim without sources")
			results = append(results, models.ClaimResult{
				Claim:             claim,
				IsLikelyTrue:      models.Unknown,
				SupportingSources: []models.Source{},
				SearchError:       err.Error(),
			})
			continue
		}
		if len(found) > p.opts.MaxResults {
			found = found[:p.opts.MaxResults]
		}

		emit(Event{Stage: StageValidating, Index: i + 1, Total: total})
		outcome := p.validator.Validate(ctx, claim, found)

		results = append(results, models.ClaimResult{
			Claim:             claim,
			IsLikelyTrue:      outcome,
			SupportingSources: sourcesOf(found),
		})
	}

	emit(Event{Stage: StageCompleted, Total: total})
	log.Info().
		Int("claims", total).
		Dur("duration", time.Since(start)).
		Msg("Fact-check complete")
	return &models.FactCheckResponse{Claims: results}, nil
}

func sourcesOf(results []models.SearchResult) []models.Source {
	out := make([]models.Source, len(results))
	for i, r := range results {
		out[i] = models.Source{Title: r.Title, Link: r.Link}
	}
	return out
}
