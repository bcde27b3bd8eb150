package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/config"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/handler"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/logging"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/metrics"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/provider"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/rpc"
)

const version = "1.0.0"

var (
	debugFlag  bool
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taserver",
		Short: "Cryptocurrency technical-analysis engine over JSON-RPC",
		Long: `taserver speaks line-delimited JSON-RPC 2.0 over stdin/stdout,
exposing technical indicators, chart pattern recognition, support/resistance
analysis, composite trading signals and DEX liquidity tools as callable tools.`,
		RunE: runServe,
	}
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", os.Getenv("TASERVER_DEBUG") == "1", "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an optional YAML config override")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("taserver %s\n", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// runServe wires the engine and runs the JSON-RPC stdio loop. It is the
// default action: a bare `taserver` invocation starts serving.
func runServe(cmd *cobra.Command, args []string) error {
	logging.Init(debugFlag)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "taserver reads JSON-RPC requests from stdin — pipe a client, don't type here.")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	primaryCfg := provider.Config{
		BaseURL:        cfg.PrimaryBaseURL,
		APIKey:         cfg.PrimaryAPIKey,
		RequestsPerSec: cfg.RateLimit.PrimaryRPS,
		Burst:          cfg.RateLimit.PrimaryBurst,
	}
	secondaryCfg := provider.Config{
		BaseURL:        cfg.SecondaryBaseURL,
		RequestsPerSec: cfg.RateLimit.SecondaryRPS,
		Burst:          cfg.RateLimit.SecondaryBurst,
	}

	p := provider.New(primaryCfg, secondaryCfg)
	m := metrics.NewCollector()
	h := handler.New(p, m, cfg)
	server := rpc.NewServer(h, m)

	log.Info().Str("version", version).Msg("taserver starting")
	if err := server.Serve(context.Background(), os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
