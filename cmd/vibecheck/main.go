package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kmatsu/vibecheck/internal/aggregate"
	"github.com/kmatsu/vibecheck/internal/alert"
	"github.com/kmatsu/vibecheck/internal/config"
	"github.com/kmatsu/vibecheck/internal/logger"
	"github.com/kmatsu/vibecheck/internal/mood"
	"github.com/kmatsu/vibecheck/internal/poll"
	"github.com/kmatsu/vibecheck/internal/server"
	"github.com/kmatsu/vibecheck/internal/slackapi"
)

var rootCmd = &cobra.Command{
	Use:   "vibecheck",
	Short: "vibecheck - team mood dashboard backend",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (and poller, if enabled)",
	RunE:  runServe,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the pipeline once and print the mood report",
	RunE:  runCheck,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize the config file",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vibecheck configuration status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(serveCmd, checkCmd, onboardCmd, statusCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildService wires the pipeline: slack client, aggregator,
// classifier, emoji cache, orchestrating service.
func buildService(cfg *config.Config) (*mood.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New("vibecheck")
	slackClient := slackapi.New(cfg.Slack.Token, cfg.Slack.APIURL)
	aggregator := aggregate.New(
		slackClient,
		cfg.Slack.Channels,
		time.Duration(cfg.Slack.LookbackHours)*time.Hour,
		log,
	)
	classifier := mood.NewClassifier(cfg.OpenAI, nil, log)
	emoji := mood.NewEmojiDirectory(slackClient, log)

	return mood.NewService(aggregator, classifier, emoji, log), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}
	log := logger.New("vibecheck")

	var snapshots server.SnapshotSource
	var poller *poll.Service
	if cfg.Poll.Enabled {
		poller = poll.NewService(cfg.Poll.Schedule, svc.Report, log)

		if cfg.Alerts.Telegram.Enabled {
			notifier, err := alert.NewNotifier(cfg.Alerts.Telegram, log)
			if err != nil {
				return fmt.Errorf("create telegram notifier: %w", err)
			}
			poller.OnReport = func(_, cur *mood.Report) {
				notifier.Observe(cur)
			}
		}
		snapshots = poller
	}

	srv := server.New(cfg.Server, svc, snapshots, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if poller != nil {
		if err := poller.Start(ctx); err != nil {
			return err
		}
		defer poller.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	report, err := svc.Report(context.Background())
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgPath := config.ConfigPath()

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to set the slack token and channels\n", cfgPath)
	fmt.Println("  2. Or set VIBECHECK_SLACK_TOKEN, SLACK_CHANNEL_IDS and OPENAI_API_KEY")
	fmt.Println("  3. Run 'vibecheck check' to test the pipeline")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Channels: %d configured\n", len(cfg.Slack.Channels))
	fmt.Printf("Lookback: %dh\n", cfg.Slack.LookbackHours)
	fmt.Printf("Model: %s\n", cfg.OpenAI.Model)
	fmt.Printf("Slack token: %s\n", maskKey(cfg.Slack.Token))
	fmt.Printf("OpenAI key: %s\n", maskKey(cfg.OpenAI.APIKey))
	fmt.Printf("Poll: enabled=%v schedule=%s\n", cfg.Poll.Enabled, cfg.Poll.Schedule)
	fmt.Printf("Telegram alerts: enabled=%v\n", cfg.Alerts.Telegram.Enabled)
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) > 8 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return "set"
}
