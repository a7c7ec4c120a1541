package cli

import (
	"context"
	"time"

	"hirescope/internal/ai"
	"hirescope/internal/common"
	"hirescope/internal/config"
	"hirescope/internal/errors"
	"hirescope/internal/feedback"
	"hirescope/internal/interview"
	"hirescope/internal/matcher"
	"hirescope/internal/observability"

	"github.com/spf13/cobra"
)

// newObservability returns the manager and a function flushing it.
func newObservability(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*observability.Manager, func(), error) {
	om, err := observability.NewManager(ctx, cfg.Observability, Version, logger)
	if err != nil {
		return nil, nil, err
	}
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}
	return om, shutdown, nil
}

// newInterviewService wires the interview operations to gen and opens the
// configured feedback store.
func newInterviewService(ctx context.Context, cfg *config.Config, logger *errors.Logger, gen interview.Generator, om *observability.Manager) (*interview.Service, error) {
	store, err := feedback.Open(ctx, cfg.Feedback, logger)
	if err != nil {
		return nil, err
	}
	return interview.NewService(gen, cfg, logger,
		interview.WithRecorder(om),
		interview.WithFeedbackStore(store),
	), nil
}

// newMatcher loads the skills catalogue and builds a matcher. aiSvc and om
// may be nil for operations that never call the model.
func newMatcher(cfg *config.Config, logger *errors.Logger, aiSvc *ai.Service, om *observability.Manager) (*matcher.Matcher, error) {
	catalog, err := matcher.LoadCatalog(cfg.Matcher.SkillsFile)
	if err != nil {
		return nil, errors.NewConfigError(errors.CodeInvalidConfig, "failed to load skills catalogue", err)
	}

	var opts []matcher.Option
	if om != nil {
		opts = append(opts, matcher.WithRecorder(om))
	}
	var gen matcher.Generator
	if aiSvc != nil {
		gen = aiSvc
		if aiSvc.HasEmbedder() {
			opts = append(opts, matcher.WithEmbedder(aiSvc))
		}
	}
	return matcher.New(gen, catalog, cfg, logger, opts...), nil
}

// addOutputFlags registers --output and --format on cmd.
func addOutputFlags(cmd *cobra.Command, cc *common.CommandConfig) {
	cmd.Flags().StringVarP(&cc.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cc.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return common.NewOutputHandler(nil).GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// prepareOutput applies the configured default format and file size limit.
func prepareOutput(cmd *cobra.Command, cc *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	if cc.OutputFormat == "" {
		cc.OutputFormat = cfg.App.DefaultFormat
	}
	cc.OutputFormat = common.NormalizeFormat(cc.OutputFormat)
	cc.MaxFileSize = cfg.App.MaxFileSize
	return common.ValidateOutputFormat(cc.OutputFormat, cfg.App.SupportedFormats)
}
