package cli

import (
	"hirescope/internal/ai"
	"hirescope/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the interview, feedback and resume matching
operations. See GET /health and GET /stats for service status.

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
	serveCmd.Flags().Bool("watch-skills", false, "Reload the skills file when it changes")

	bindFlag(serveCmd, "server.port", "port")
	bindFlag(serveCmd, "server.host", "host")
	bindFlag(serveCmd, "server.tls.mode", "tls-mode")
	bindFlag(serveCmd, "server.tls.certFile", "cert-file")
	bindFlag(serveCmd, "server.tls.keyFile", "key-file")
	bindFlag(serveCmd, "server.tls.caFile", "ca-file")
	bindFlag(serveCmd, "matcher.watchSkills", "watch-skills")
}

func runServe(cmd *cobra.Command, _ []string) error {
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

	interviews, err := newInterviewService(ctx, cfg, logger, aiSvc, om)
	if err != nil {
		return err
	}
	defer func() {
		if err := interviews.Close(); err != nil {
			logger.LogError(err, "Failed to close feedback store")
		}
	}()

	m, err := newMatcher(cfg, logger, aiSvc, om)
	if err != nil {
		return err
	}
	if cfg.Matcher.WatchSkills && cfg.Matcher.SkillsFile != "" {
		if err := m.Catalog().Watch(ctx, cfg.Matcher.SkillsFile, logger); err != nil {
			logger.LogError(err, "Skills hot reload disabled")
		}
	}

	srv := server.New(cfg, Version, server.Deps{
		Interview:     interviews,
		Matcher:       m,
		AI:            aiSvc,
		Observability: om,
	}, logger)
	return srv.Start(ctx)
}
