package cli

import (
	"context"

	"hirescope/internal/ai"
	"hirescope/internal/common"
	"hirescope/internal/interview"
	"hirescope/internal/types"

	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Generate interview questions for a role",
	Long: `Generate tailored interview questions for a job role, industry and
experience level. Known roles and industries add extra context to the prompt.`,
	Example: `  hirescope questions --role "Software Engineer" --industry Finance --level Senior --count 5`,
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return prepareOutput(cmd, &questionsConfig)
	},
	RunE: runQuestions,
}

var (
	questionsConfig common.CommandConfig
	questionsInput  types.QuestionsInput
)

func init() {
	questionsCmd.Flags().StringVar(&questionsInput.JobRole, "role", "", "Job role, e.g. \"Software Engineer\"")
	questionsCmd.Flags().StringVar(&questionsInput.Industry, "industry", "", "Industry, e.g. Healthcare")
	questionsCmd.Flags().StringVar(&questionsInput.ExperienceLevel, "level", "", "Experience level: Entry, Mid or Senior")
	questionsCmd.Flags().StringVar(&questionsInput.CandidateBackground, "background", "", "Optional notes on the candidate")
	questionsCmd.Flags().IntVar(&questionsInput.QuestionCount, "count", 0, "Number of questions (default 5)")
	_ = questionsCmd.MarkFlagRequired("role")
	_ = questionsCmd.MarkFlagRequired("industry")
	_ = questionsCmd.MarkFlagRequired("level")
	addOutputFlags(questionsCmd, &questionsConfig)
}

func runQuestions(cmd *cobra.Command, _ []string) error {
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

	svc := interview.NewService(aiSvc, cfg, logger, interview.WithRecorder(om))

	generate := func(ctx context.Context, in types.QuestionsInput) ([]interview.Question, error) {
		result, err := svc.GenerateQuestions(ctx, in)
		if err != nil {
			return nil, err
		}
		if !result.IsParsed() {
			logger.Warn("Model output could not be parsed, showing placeholder questions")
		}
		return interview.QuestionsFrom(result.Value), nil
	}

	return common.RunCommand(ctx, logger, questionsConfig, nil,
		func([]common.File) (types.QuestionsInput, error) { return questionsInput, nil },
		generate,
		func(in types.QuestionsInput, cc common.CommandConfig) {
			logger.Info("Generating interview questions",
				"role", in.JobRole,
				"industry", in.Industry,
				"level", in.ExperienceLevel,
				"output_format", cc.OutputFormat)
		})
}
