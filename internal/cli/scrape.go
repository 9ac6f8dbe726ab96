package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/snappy-loop/veritas/internal/scrape"
	"github.com/spf13/cobra"
)

var scrapeTimeout time.Duration

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Extract the readable article and links from a page",
	Long: `Scrape fetches a page (honouring robots.txt), extracts its main article
and prints the result as JSON.

Example:
  veritas scrape https://example.com/news/story`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), scrapeTimeout)
		defer cancel()

		resp, err := scrape.New(cfg.ScrapeUserAgent, cfg.ScrapeTimeout).Scrape(ctx, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().DurationVar(&scrapeTimeout, "timeout", time.Minute, "overall timeout")
}
