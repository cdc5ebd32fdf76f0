package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/content-relay/internal/relay"
)

type extractOptions struct {
	notify bool
}

// newExtractCmd creates the 'extract' subcommand. It prints the extracted
// content as JSON and, with --notify, forwards it like the HTTP API does.
func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Extracts one page and prints the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtractCommand(cmd, args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "forward the result through the configured notifier")
	return cmd
}

func runExtractCommand(cmd *cobra.Command, rawURL string, opts *extractOptions) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	var out any
	if opts.notify {
		result, err := appInstance.Service().Process(cmd.Context(), rawURL)
		if err != nil {
			return extractFailed(logger, rawURL, err)
		}
		out = result
	} else {
		content, err := appInstance.Extractor().Extract(cmd.Context(), rawURL)
		if err != nil {
			return extractFailed(logger, rawURL, err)
		}
		out = content
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func extractFailed(logger *zap.Logger, rawURL string, err error) error {
	logger.Error("extraction failed",
		zap.String("url", rawURL),
		zap.String("kind", relay.ErrorKind(err)),
		zap.Error(err),
	)
	return fmt.Errorf("extract %s: %w", rawURL, err)
}
