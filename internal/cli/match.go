package cli

import (
	"context"
	"fmt"

	"hirescope/internal/ai"
	"hirescope/internal/common"
	"hirescope/internal/matcher"
	"hirescope/internal/types"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match --job <job-description> <resume>...",
	Short: "Score resumes against a job description",
	Long: `Score one or more resumes (PDF, DOCX, TXT or Markdown) against a job
description. Each resume gets a combined skill and semantic match score, a
status band and short written feedback.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return prepareOutput(cmd, &matchConfig)
	},
	RunE: runMatch,
}

var (
	matchConfig  common.CommandConfig
	matchJobFile string
)

type matchInput struct {
	job     matcher.Document
	resumes []matcher.Document
}

func init() {
	matchCmd.Flags().StringVarP(&matchJobFile, "job", "j", "", "Job description file")
	_ = matchCmd.MarkFlagRequired("job")
	addOutputFlags(matchCmd, &matchConfig)
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	om, shutdownObservability, err := newObservability(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownObservability()

	aiSvc, err := ai.NewService(ctx, cfg, logger, om)
	if err != nil {
		return err
	}
	defer func() { _ = aiSvc.Close() }()

	m, err := newMatcher(cfg, logger, aiSvc, om)
	if err != nil {
		return err
	}

	createInput := func(files []common.File) (matchInput, error) {
		if len(files) < 2 {
			return matchInput{}, fmt.Errorf("expected a job description and at least one resume, got %d files", len(files))
		}
		in := matchInput{job: matcher.Document{FileName: files[0].Name(), Data: files[0].Data}}
		for _, f := range files[1:] {
			if !matcher.Supported(f.Name()) {
				logger.Warn("Skipping unsupported resume", "file", f.Path)
			}
			in.resumes = append(in.resumes, matcher.Document{FileName: f.Name(), Data: f.Data})
		}
		return in, nil
	}

	return common.RunCommand(ctx, logger, matchConfig, append([]string{matchJobFile}, args...),
		createInput,
		func(ctx context.Context, in matchInput) (types.MatchOutput, error) {
			return m.Match(ctx, in.job, in.resumes)
		},
		func(in matchInput, cc common.CommandConfig) {
			logger.Info("Matching resumes",
				"job", in.job.FileName,
				"resumes", len(in.resumes),
				"output_format", cc.OutputFormat)
		})
}
