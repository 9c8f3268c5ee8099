package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chivis/survey-relay/internal/api"
	"github.com/chivis/survey-relay/internal/api/submission"
	"github.com/chivis/survey-relay/internal/config"
	"github.com/chivis/survey-relay/internal/loaders"
	"github.com/chivis/survey-relay/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "survey-relay",
	Short: "Relay questionnaire submissions into a Google spreadsheet",
	Long: `survey-relay serves the questionnaire bundle and appends every
submission posted to /api/submit-form as one spreadsheet row.

Sink credentials come from GOOGLE_CLIENT_EMAIL, GOOGLE_PRIVATE_KEY and
SPREADSHEET_ID. The server starts without them and rejects submissions
until they are set.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if err := utils.InitLogger(cfg.LogLevel, cfg.Environment); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer utils.SyncLogger()

	if err := submission.ValidateColumns(cfg.SheetColumns); err != nil {
		utils.Zlog.Error("Invalid SHEET_COLUMNS", zap.Error(err))
		return err
	}
	if name := cfg.MissingSecret(); name != "" {
		utils.Zlog.Warn("Sink secret missing; submissions will fail until it is set", zap.String("name", name))
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(cfg, loaders.NewSheetsClient),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			utils.Zlog.Error("Shutdown failed", zap.Error(err))
		}
	}()

	utils.Zlog.Info("Server running",
		zap.String("addr", server.Addr),
		zap.String("range", cfg.SheetRange),
		zap.Strings("origins", cfg.AllowedOrigins))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		utils.Zlog.Error("Server closed", zap.Error(err))
		return err
	}
	utils.Zlog.Info("Server closed")
	return nil
}
