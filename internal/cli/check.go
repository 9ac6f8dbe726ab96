package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/snappy-loop/veritas/internal/bootstrap"
	"github.com/snappy-loop/veritas/internal/factcheck"
	"github.com/snappy-loop/veritas/internal/models"
	"github.com/spf13/cobra"
)

var (
	checkText    string
	checkFile    string
	checkJSON    bool
	checkTimeout time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fact-check text",
	Long: `Check extracts the claims in a text and validates each against web search results.

The text comes from --text, --file, or standard input.

Example:
  veritas check --text "The Eiffel Tower is in Berlin."
  veritas check --file article.txt --json`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkText, "text", "", "text to check")
	checkCmd.Flags().StringVar(&checkFile, "file", "", "read text from file")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the JSON response instead of a report")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Minute, "overall timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, err := readInput(checkText, checkFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if text == "" {
		return factcheck.ErrMissingInput
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	agent, err := bootstrap.FactCheckAgent(ctx, cfg)
	if err != nil {
		return err
	}

	progress := func(ev factcheck.Event) {
		if verbose && ev.Stage == factcheck.StageSearching {
			fmt.Fprintf(cmd.ErrOrStderr(), "checking claim %d/%d\n", ev.Index, ev.Total)
		}
	}
	resp, err := agent.FactCheck(ctx, text, progress)
	if err != nil {
		return fmt.Errorf("fact-checking failed: %w", err)
	}

	return writeReport(cmd.OutOrStdout(), resp, checkJSON)
}

// writeReport prints resp as a text report, or as indented JSON when asJSON is set.
func writeReport(out io.Writer, resp *models.FactCheckResponse, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	_, err := fmt.Fprint(out, resp.String())
	return err
}

// readInput picks the text from the flag, the file, or r, in that order.
func readInput(text, file string, r io.Reader) (string, error) {
	if text != "" && file != "" {
		return "", errors.New("--text and --file are mutually exclusive")
	}
	if text != "" {
		return text, nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
