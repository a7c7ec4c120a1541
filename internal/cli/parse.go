package cli

import (
	"context"

	"hirescope/internal/common"
	"hirescope/internal/matcher"
	"hirescope/internal/types"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <resume>",
	Short: "Extract contact details and skills from a resume",
	Long: `Read a resume (PDF, DOCX, TXT or Markdown) and print the candidate's name,
email address and the catalogue skills it mentions. No AI calls are made.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return prepareOutput(cmd, &parseConfig)
	},
	RunE: runParse,
}

var parseConfig common.CommandConfig

func init() {
	addOutputFlags(parseCmd, &parseConfig)
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	m, err := newMatcher(cfg, logger, nil, nil)
	if err != nil {
		return err
	}

	return common.RunCommand(ctx, logger, parseConfig, args,
		func(files []common.File) (matcher.Document, error) {
			return matcher.Document{FileName: files[0].Name(), Data: files[0].Data}, nil
		},
		func(ctx context.Context, doc matcher.Document) (types.ParsedResume, error) {
			return m.Parse(ctx, doc)
		},
		func(doc matcher.Document, cc common.CommandConfig) {
			logger.Info("Parsing resume", "file", doc.FileName, "output_format", cc.OutputFormat)
		})
}
