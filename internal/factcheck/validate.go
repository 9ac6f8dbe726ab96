package factcheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/models"
)

const validatePromptTemplate = `
You are an AI fact-checking assistant.

A claim has been made, and here are 3-5 web snippets found via search engines.
Decide whether the sources support the claim.

Respond with ONLY "true" or "false".

Claim: "%s"

Sources:
%s

Answer:
`

// Validator judges a claim against search snippets.
type Validator struct {
	gen Generator
}

// NewValidator creates a Validator.
func NewValidator(gen Generator) *Validator {
	return &Validator{gen: gen}
}

// Validate returns True when the model's reply contains "true" (case-insensitive), False otherwise,
// and Unknown when both models fail. It never returns an error.
func (v *Validator) Validate(ctx context.Context, claim string, sources []models.SearchResult) models.Outcome {
	prompt := validatePrompt(claim, sources)

	reply, err := v.gen.Generate(ctx, prompt, true)
	if err == nil {
		log.Info().Str("model", "primary").Str("reply", reply).Msg("Validation decision")
		return decide(reply)
	}
	log.Warn().Err(err).Msg("Validation failed on primary model, retrying with fallback")

	reply, err = v.gen.Generate(ctx, prompt, false)
	if err != nil {
		log.Error().Err(err).Msg("Validation failed on fallback model, outcome unknown")
		return models.Unknown
	}
	log.Info().Str("model", "fallback").Str("reply", reply).Msg("Validation decision")
	return decide(reply)
}

func validatePrompt(claim string, sources []models.SearchResult) string {
	lines := make([]string, len(sources))
	for i, s := range sources {
		lines[i] = fmt.Sprintf("%d. %s", i+1, s.Snippet)
	}
	return fmt.Sprintf(validatePromptTemplate, claim, strings.Join(lines, "\n"))
}

// decide is a substring test: "untrue" counts as true and "Unable to determine" as false.
func decide(reply string) models.Outcome {
	return models.OutcomeOf(strings.Contains(strings.ToLower(reply), "true"))
}
