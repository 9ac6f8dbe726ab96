package agents

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/llm"
	"github.com/snappy-loop/veritas/internal/media"
	"github.com/snappy-loop/veritas/internal/models"
)

// ImageFetcher downloads an image. *media.Fetcher implements it.
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*media.Image, error)
}

// ImageDetectAgentImpl downloads an image and asks a vision model to score it.
type ImageDetectAgentImpl struct {
	Fetcher ImageFetcher
	Scorer  llm.ImageScorer
}

// NewImageDetectAgent returns an ImageDetectAgent.
func NewImageDetectAgent(fetcher ImageFetcher, scorer llm.ImageScorer) ImageDetectAgent {
	return &ImageDetectAgentImpl{Fetcher: fetcher, Scorer: scorer}
}

// DetectAI returns the parsed likelihood and the model's raw reply.
// Errors wrap media.ErrNotImage, media.ErrTooLarge or llm.ErrImageTooLarge where they apply.
func (a *ImageDetectAgentImpl) DetectAI(ctx context.Context, imageURL string) (*models.ImageDetectResponse, error) {
	img, err := a.Fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	reply, err := a.Scorer.ScoreImage(ctx, img.MIMEType, img.Data)
	if err != nil {
		return nil, err
	}
	log.Info().Str("model", a.Scorer.Model()).Str("reply", reply).Msg("Vision model replied")

	return &models.ImageDetectResponse{
		AILikelihoodPercent: llm.ParseLikelihood(reply),
		RawModelReply:       reply,
	}, nil
}
