package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chivis/survey-relay/internal/client"
	"github.com/chivis/survey-relay/internal/config"
	"github.com/chivis/survey-relay/internal/questionnaire"
	"github.com/chivis/survey-relay/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	relayURL      string
	questionsFile string
	timeout       time.Duration
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "survey",
	Short: "Answer the customer questionnaire from a terminal",
	Long: `survey walks through the questionnaire one step at a time and posts the
answers to the submission relay once the closing step is reached.

Type "<" on any step to go back.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "error"
		if verbose {
			level = "debug"
		}
		return utils.InitLogger(level, "development")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer utils.SyncLogger()
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&relayURL, "relay", "", "relay base URL (default RELAY_BASE_URL)")
	rootCmd.Flags().StringVar(&questionsFile, "questions", "", "YAML questionnaire (default built-in)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "submission timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log submission outcome")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if relayURL == "" {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		relayURL = cfg.RelayBaseURL
	}

	relay, err := client.NewRelayClient(relayURL, timeout)
	if err != nil {
		return err
	}

	questions, err := loadQuestions()
	if err != nil {
		return err
	}

	session, err := questionnaire.NewSession(questions, relay)
	if err != nil {
		return err
	}

	if err := questionnaire.NewTerminal(os.Stdin, os.Stdout).Run(session); err != nil {
		return err
	}

	// The closing screen is already shown; the outcome is only logged.
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := session.Wait(waitCtx); err != nil {
		utils.Zlog.Error("Submission failed", zap.Error(err))
		if verbose {
			fmt.Fprintf(os.Stderr, "submission failed: %v\n", err)
		}
		return nil
	}
	utils.Zlog.Debug("Submission saved", zap.String("relay", relayURL))
	return nil
}

func loadQuestions() ([]questionnaire.Question, error) {
	if questionsFile != "" {
		return questionnaire.LoadQuestions(questionsFile)
	}
	return questionnaire.DefaultQuestions()
}
