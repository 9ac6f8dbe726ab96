package agents

import (
	"context"

	"github.com/snappy-loop/veritas/internal/factcheck"
	"github.com/snappy-loop/veritas/internal/models"
)

// FactCheckAgentImpl wraps the fact-check pipeline.
type FactCheckAgentImpl struct {
	Pipeline *factcheck.Pipeline
}

// NewFactCheckAgent returns a FactCheckAgent that delegates to the pipeline.
func NewFactCheckAgent(p *factcheck.Pipeline) FactCheckAgent {
	return &FactCheckAgentImpl{Pipeline: p}
}

// FactCheck delegates to factcheck.Pipeline.RunObserved.
func (a *FactCheckAgentImpl) FactCheck(ctx context.Context, text string, obs factcheck.Observer) (*models.FactCheckResponse, error) {
	return a.Pipeline.RunObserved(ctx, text, obs)
}
