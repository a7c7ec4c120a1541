package cli

import (
	"context"
	"fmt"

	"hirescope/internal/config"
	"hirescope/internal/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type configKeyType struct{}
type loggerKeyType struct{}

var (
	configKey = configKeyType{}
	loggerKey = loggerKeyType{}
)

// v collects flag bindings before the configuration is loaded.
var v = viper.New()

var configFile string

var rootCmd = &cobra.Command{
	Use:   "hirescope",
	Short: "AI-assisted interviewing and resume matching",
	Long: `Hirescope generates interview questions, evaluates candidate answers and
matches resumes against job descriptions using a Gemini model.
Run "hirescope serve" to expose the same operations over HTTP.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadRuntime,
}

// Execute runs the root command. ctx is cancelled on shutdown signals.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadRuntime loads the configuration once, after flags are parsed so that
// bound flags take effect, and attaches it and the logger to the context.
func loadRuntime(cmd *cobra.Command, _ []string) error {
	if cmd == versionCmd {
		return nil
	}

	cfg, err := config.LoadConfig(v, configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return err
	}

	logger.Debug("Configuration loaded",
		"version", Version,
		"config_file", cfg.ConfigFile,
		"ai_provider", cfg.AI.Provider)

	ctx := context.WithValue(cmd.Context(), configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	cmd.SetContext(ctx)
	return nil
}

func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

func bindFlag(cmd *cobra.Command, key, flagName string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(flagName)); err != nil {
		panic(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./config.yaml, $HOME/.hirescope, /etc/hirescope)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("skills-file", "", "Skills catalogue JSON file (overrides config)")
	for key, flag := range map[string]string{
		"app.logLevel":       "log-level",
		"matcher.skillsFile": "skills-file",
	} {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(versionCmd)
}
