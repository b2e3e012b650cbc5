package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ethanqli/item1c-analysis/pkg/edgar"
	"github.com/ethanqli/item1c-analysis/pkg/fetch"
	"github.com/ethanqli/item1c-analysis/pkg/htmltext"
	"github.com/ethanqli/item1c-analysis/pkg/pipeline"
	"github.com/ethanqli/item1c-analysis/pkg/section"
)

var version = "0.1.0"

// defaultUserAgent identifies this client to SEC EDGAR, which requires a
// contact string in the User-Agent of automated requests. Override with
// --user-agent or the EDGAR_USER_AGENT environment variable.
const defaultUserAgent = "Ethan Li (ethanli@uchicago.edu)"

func main() {
	// Optional .env for the EDGAR contact string.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "item1c",
		Short: "SEC EDGAR 10-K Item 1C acquisition and extraction",
		Long: `item1c downloads SEC EDGAR 10-K annual report filings for a quarter,
locates each filing's primary document, converts it to plain text, and
extracts the Item 1C (Cybersecurity) section when present.

Artifacts land in three areas under the output directory:
  raw_html/   the fetched primary documents
  text/       the normalized plain text
  extracted/  the Item 1C excerpts`,
		Version: version,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(resolveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveUserAgent picks the identifying client string: flag, then
// environment, then the built-in default.
func resolveUserAgent(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv("EDGAR_USER_AGENT"); envValue != "" {
		return envValue
	}
	return defaultUserAgent
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a quarter's 10-K filings end to end",
		Long: `Load the master index, filter to the target form type, take a
deterministic sample, and run each filing through URL resolution, download,
text normalization, and Item 1C extraction.

Example:
  item1c run --index-url https://www.sec.gov/Archives/edgar/daily-index/2026/QTR1/master.20260206.idx --output data --sample 10 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			config := pipeline.DefaultConfig()
			if configPath != "" {
				loaded, err := pipeline.LoadConfigFile(configPath)
				if err != nil {
					return err
				}
				config = loaded
			}

			// Flags override the config file only when set explicitly.
			if cmd.Flags().Changed("index-url") {
				config.IndexURL, _ = cmd.Flags().GetString("index-url")
			}
			if cmd.Flags().Changed("output") {
				config.OutputDir, _ = cmd.Flags().GetString("output")
			}
			if cmd.Flags().Changed("sample") {
				config.SampleSize, _ = cmd.Flags().GetInt("sample")
			}
			if cmd.Flags().Changed("seed") {
				config.Seed, _ = cmd.Flags().GetInt64("seed")
			}
			if cmd.Flags().Changed("form") {
				config.FormType, _ = cmd.Flags().GetString("form")
			}
			if cmd.Flags().Changed("rate") {
				config.RequestInterval, _ = cmd.Flags().GetDuration("rate")
			}
			if cmd.Flags().Changed("timeout") {
				config.Timeout, _ = cmd.Flags().GetDuration("timeout")
			}
			userAgentFlag, _ := cmd.Flags().GetString("user-agent")
			if userAgentFlag != "" {
				config.UserAgent = userAgentFlag
			} else if config.UserAgent == "" {
				config.UserAgent = resolveUserAgent("")
			}

			logger := zap.Must(zap.NewProduction())
			defer logger.Sync()

			client := fetch.NewClient(config.UserAgent, config.RequestInterval, config.Timeout)
			p := pipeline.New(config, client, pipeline.DirStore{}, logger)

			ctx := context.Background()
			fmt.Printf("Loading master index: %s\n", config.IndexURL)
			records, err := p.LoadRecords(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Processing %d %s filing(s) into %s/\n", len(records), config.FormType, config.OutputDir)

			report := p.Run(ctx, records)
			fmt.Print(report.Format())
			return nil
		},
	}

	cmd.Flags().String("config", "", "YAML config file (flags override)")
	cmd.Flags().String("index-url", pipeline.DefaultIndexURL, "master index URL to load filings from")
	cmd.Flags().String("output", pipeline.DefaultOutputDir, "output root directory")
	cmd.Flags().Int("sample", pipeline.DefaultSampleSize, "number of filings to sample (0 = all)")
	cmd.Flags().Int64("seed", pipeline.DefaultSeed, "random seed for deterministic sampling")
	cmd.Flags().String("form", pipeline.DefaultFormType, "form type to process")
	cmd.Flags().Duration("rate", pipeline.DefaultRequestInterval, "minimum interval between requests")
	cmd.Flags().Duration("timeout", pipeline.DefaultTimeout, "per-request HTTP timeout")
	cmd.Flags().String("user-agent", "", "identifying User-Agent (default from EDGAR_USER_AGENT)")

	return cmd
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract Item 1C from a local filing file",
		Long: `Run the section extraction heuristic over a local file. HTML files
(.htm, .html) are normalized to plain text first; anything else is treated as
already-normalized text. Useful for debugging boundary detection offline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			raw, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", inputPath, err)
			}

			text := string(raw)
			lowered := strings.ToLower(inputPath)
			if strings.HasSuffix(lowered, ".htm") || strings.HasSuffix(lowered, ".html") {
				text, err = htmltext.Normalize(text)
				if err != nil {
					return fmt.Errorf("failed to normalize %s: %w", inputPath, err)
				}
			}

			extractor := section.NewItem1CExtractor()
			excerpt, found := extractor.Extract(text)
			if !found {
				fmt.Printf("%s not found in %s\n", extractor.SectionName, inputPath)
				os.Exit(1)
			}

			outputPath, _ := cmd.Flags().GetString("output")
			if outputPath != "" {
				if err := (pipeline.DirStore{}).Save(excerpt, outputPath); err != nil {
					return err
				}
				fmt.Printf("Saved %s (%d chars) to %s\n", extractor.SectionName, len(excerpt), outputPath)
				return nil
			}

			fmt.Println(excerpt)
			return nil
		},
	}

	cmd.Flags().String("output", "", "write the excerpt to this file instead of stdout")

	return cmd
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [master-index-filename]",
		Short: "Resolve the URLs for one master-index filename",
		Long: `Derive the filing index page URL from a master-index Filename value
such as edgar/data/1035443/0001035443-26-000013.txt. With --fetch, also fetch
the index page and resolve the primary document URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := edgar.ParseAccession(args[0])
			if err != nil {
				return err
			}

			indexURL := edgar.FilingIndexURL(ref)
			fmt.Printf("CIK:        %s\n", ref.CIK)
			fmt.Printf("Accession:  %s\n", ref.WithDashes)
			fmt.Printf("Index page: %s\n", indexURL)

			shouldFetch, _ := cmd.Flags().GetBool("fetch")
			if !shouldFetch {
				return nil
			}

			userAgentFlag, _ := cmd.Flags().GetString("user-agent")
			client := fetch.NewClient(resolveUserAgent(userAgentFlag), pipeline.DefaultRequestInterval, pipeline.DefaultTimeout)

			indexPage, err := client.FetchText(context.Background(), indexURL)
			if err != nil {
				return err
			}

			documentURL, found, err := edgar.ResolvePrimaryDocumentURL(strings.NewReader(indexPage))
			if err != nil {
				return err
			}
			if !found {
				fmt.Println("Primary document: not found on index page")
				return nil
			}
			fmt.Printf("Primary document: %s\n", edgar.NormalizeViewerURL(documentURL))
			return nil
		},
	}

	cmd.Flags().Bool("fetch", false, "fetch the index page and resolve the primary document")
	cmd.Flags().String("user-agent", "", "identifying User-Agent (default from EDGAR_USER_AGENT)")

	return cmd
}
