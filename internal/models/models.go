package models

import (
	"bytes"
	"fmt"
	"strings"
)

// Outcome is the tri-state result of validating one claim.
// Unknown is not the same as False: it means no model produced an answer.
type Outcome int

const (
	Unknown Outcome = iota
	False
	True
)

// OutcomeOf converts a definitive boolean answer.
func OutcomeOf(b bool) Outcome {
	if b {
		return True
	}
	return False
}

func (o Outcome) String() string {
	switch o {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes True/False as JSON booleans and Unknown as null.
func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false or null.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*o = True
	case "false":
		*o = False
	case "null":
		*o = Unknown
	default:
		return fmt.Errorf("invalid outcome %s", data)
	}
	return nil
}

// SearchResult is one item returned by a web search provider.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Source is a search result as exposed to clients (snippet dropped).
type Source struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// ClaimResult is the fact-check verdict for one extracted claim.
type ClaimResult struct {
	Claim             string   `json:"claim"`
	IsLikelyTrue      Outcome  `json:"isLikelyTrue"`
	SupportingSources []Source `json:"supportingSources"`
	// SearchError is only set when partial results are enabled and the search for this claim failed.
	SearchError string `json:"searchError,omitempty"`
}

// FactCheckResponse lists claim results in extraction order.
type FactCheckResponse struct {
	Claims []ClaimResult `json:"claims"`
}

// FactCheckRequest is the body of POST /api/factcheck.
type FactCheckRequest struct {
	Text string `json:"text"`
}

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	Content string `json:"content"`
}

// SummarizeResponse is returned by POST /api/summarize.
type SummarizeResponse struct {
	Success       bool   `json:"success"`
	Summary       string `json:"summary"`
	Model         string `json:"model"`
	InputLength   int    `json:"input_length"`
	SummaryLength int    `json:"summary_length"`
}

// QARequest is the body of POST /api/qa.
type QARequest struct {
	Question string `json:"question"`
	Content  string `json:"content"`
}

// QAResponse is returned by POST /api/qa.
type QAResponse struct {
	Success       bool   `json:"success"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Model         string `json:"model"`
	ContentLength int    `json:"content_length"`
	AnswerLength  int    `json:"answer_length"`
}

// ImageDetectRequest is the body of POST /api/image-detect-ai.
type ImageDetectRequest struct {
	URL string `json:"url"`
}

// ImageDetectResponse is returned by POST /api/image-detect-ai.
// AILikelihoodPercent is nil when the model reply contained no number.
type ImageDetectResponse struct {
	AILikelihoodPercent *int   `json:"aiLikelihoodPercent"`
	RawModelReply       string `json:"rawModelReply"`
}

// ScrapeRequest is the body of POST /api/scrape.
type ScrapeRequest struct {
	URL string `json:"url"`
}

// Link is an anchor harvested from a scraped page.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// ScrapeResponse is returned by POST /api/scrape.
type ScrapeResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Byline   string `json:"byline"`
	Excerpt  string `json:"excerpt"`
	SiteName string `json:"site_name"`
	Text     string `json:"text"`
	Length   int    `json:"length"`
	Links    []Link `json:"links"`
}

// ErrorResponse is the error body shared by all endpoints.
type ErrorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// String renders a plain-text report: one block per claim with its verdict and numbered sources.
func (r *FactCheckResponse) String() string {
	if len(r.Claims) == 0 {
		return "No factual claims found.\n"
	}
	var b strings.Builder
	for i, c := range r.Claims {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Claim)
		fmt.Fprintf(&b, "   Verdict: %s\n", c.IsLikelyTrue)
		if c.SearchError != "" {
			fmt.Fprintf(&b, "   Search error: %s\n", c.SearchError)
		}
		if len(c.SupportingSources) == 0 {
			b.WriteString("   Sources: none\n")
			continue
		}
		b.WriteString("   Sources:\n")
		for j, src := range c.SupportingSources {
			fmt.Fprintf(&b, "     %d. %s <%s>\n", j+1, src.Title, src.Link)
		}
	}
	return b.String()
}
