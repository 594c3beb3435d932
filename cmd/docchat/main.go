// Package main is the docchat CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/chat"
	"github.com/hyperjump/docchat/internal/cli"
	"github.com/hyperjump/docchat/internal/config"
	"github.com/hyperjump/docchat/internal/server"
	"github.com/hyperjump/docchat/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/docchat/config.yaml"

var (
	configPath string
	debugFlag  bool
	envFile    string

	askFile   string
	askOutput string
)

var rootCmd = &cobra.Command{
	Use:           "docchat",
	Short:         "Chat with your documents",
	Long:          `docchat answers questions about uploaded documents using retrieval-augmented generation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var askCmd = &cobra.Command{
	Use:   "ask --file <path> <question>",
	Short: "Upload one document and ask a question about it",
	Long: `Runs a single upload and question in-process, without a server.
The question is all remaining arguments joined by spaces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("docchat version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with API keys")

	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "document to upload (pdf, docx, xlsx, txt, md)")
	askCmd.Flags().StringVarP(&askOutput, "output", "o", "text", "output format: text or json")
	_ = askCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd, askCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the .env file and the config. When path is the default and does not exist,
// config.yaml in the current directory is used if present. Returns the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, "", fmt.Errorf("load %s: %w", envFile, err)
	}
	if path == defaultConfigPath {
		if _, err := os.Stat(path); err != nil {
			if cwd, cwdErr := os.Getwd(); cwdErr == nil {
				fallback := filepath.Join(cwd, "config.yaml")
				if _, statErr := os.Stat(fallback); statErr == nil {
					path = fallback
				}
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func setup() (*config.Config, string, *zap.Logger, error) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag, cfg.LogLevel)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, resolved, logger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, resolved, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("config loaded",
		zap.String("config_path", resolved),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.Bool("generator_enabled", cfg.Generator.Enabled()))

	components, err := cli.NewComponents(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer func() { _ = components.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, statErr := os.Stat(resolved); statErr == nil {
		stopWatch, err := config.Watch(ctx, resolved, logger, func(next *config.Config) {
			components.Service.UpdateRetrieval(chat.TuningFromConfig(next.Retrieval))
		})
		if err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		} else {
			defer stopWatch()
		}
	}

	srv := server.NewServer(components.Service, cfg.Server, cfg.Upload.MaxBytes, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func runAsk(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(askOutput)
	if err != nil {
		return err
	}
	question := strings.TrimSpace(strings.Join(args, " "))

	cfg, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(askFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", askFile, err)
	}
	components, err := cli.NewComponents(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer func() { _ = components.Close() }()

	timeout := cfg.Generator.Timeout + time.Minute
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	svc := components.Service
	up, err := svc.UploadDocument(ctx, "", filepath.Base(askFile), data)
	if err != nil {
		return err
	}
	resp, err := svc.Chat(ctx, up.ConversationID, question)
	if err != nil {
		return err
	}
	if format == cli.OutputText {
		if err := cli.WriteUploadResponse(cmd.OutOrStdout(), up, format); err != nil {
			return err
		}
		cmd.Println()
	}
	return cli.WriteChatResponse(cmd.OutOrStdout(), resp, format)
}
