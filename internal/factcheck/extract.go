// Package factcheck turns free text into checked claims: extract, search each claim, validate.
package factcheck

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

const extractPromptTemplate = `
Extract clear factual claims from this text. Return them as a plain numbered list:
"""%s"""
`

var (
	claimLineRe   = regexp.MustCompile(`^\d+[).]`)
	claimPrefixRe = regexp.MustCompile(`^\d+[).]\s*`)
)

// Generator produces a completion for a prompt on the primary or fallback model.
// *llm.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string, preferPrimary bool) (string, error)
}

// BothModelsFailedError is returned when extraction fails on the primary and then on the fallback model.
type BothModelsFailedError struct {
	Primary  error
	Fallback error
}

func (e *BothModelsFailedError) Error() string {
	return fmt.Sprintf("Both primary and fallback models failed: %v (fallback: %v)", e.Primary, e.Fallback)
}

func (e *BothModelsFailedError) Unwrap() []error { return []error{e.Primary, e.Fallback} }

// Extractor asks the model for a numbered list of claims.
type Extractor struct {
	gen Generator
}

// NewExtractor creates an Extractor.
func NewExtractor(gen Generator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract returns the claims found in text, in the order the model listed them.
// An empty list is a valid result.
func (e *Extractor) Extract(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(extractPromptTemplate, text)

	raw, err := e.gen.Generate(ctx, prompt, true)
	if err != nil {
		log.Warn().Err(err).Msg("Claim extraction failed on primary model, retrying with fallback")
		raw, fbErr := e.gen.Generate(ctx, prompt, false)
		if fbErr != nil {
			log.Error().Err(fbErr).Msg("Claim extraction failed on fallback model")
			return nil, &BothModelsFailedError{Primary: err, Fallback: fbErr}
		}
		claims := ParseClaims(raw)
		log.Info().Int("claims", len(claims)).Msg("Claims extracted using fallback model")
		return claims, nil
	}

	claims := ParseClaims(raw)
	log.Info().Int("claims", len(claims)).Msg("Claims extracted")
	return claims, nil
}

// ParseClaims keeps lines that start with a number followed by ")" or "." and strips that marker.
// Lines are tested as-is, so an indented item does not count.
func ParseClaims(raw string) []string {
	claims := []string{}
	for _, line := range strings.Split(raw, "\n") {
		if !claimLineRe.MatchString(line) {
			continue
		}
		claims = append(claims, strings.TrimSpace(claimPrefixRe.ReplaceAllString(line, "")))
	}
	return claims
}
