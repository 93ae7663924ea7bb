// Package main provides a command line interface for one-off predictions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sharpeye/internal/app"
	"github.com/yourusername/sharpeye/internal/config"
	"github.com/yourusername/sharpeye/internal/logger"
	"github.com/yourusername/sharpeye/internal/models"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	logLevel   string

	playerID  int64
	opponent  string
	location  string
	gameDate  string
	propLine  float64
	overOdds  int
	underOdds int
	seed      int64

	boardFile  string
	boardLimit int
)

var rootCmd = &cobra.Command{
	Use:     "sharpeye",
	Short:   "NBA player points predictions",
	Long:    `Runs the prediction engine against the configured feature store and model, printing JSON to stdout.`,
	Version: Version + " (" + GitCommit + ")",
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict points for one player and game",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		resp, err := a.Engine.Predict(cmd.Context(), predictionRequest(cmd))
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

var distributionCmd = &cobra.Command{
	Use:   "distribution",
	Short: "Print the simulated points distribution for one prop",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		dist, err := a.Engine.Distribution(cmd.Context(), predictionRequest(cmd))
		if err != nil {
			return err
		}
		return printJSON(dist)
	},
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Rank a slate of props read from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(boardFile)
		if err != nil {
			return fmt.Errorf("failed to read board file: %w", err)
		}
		var req models.BoardRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("failed to parse board file %s: %w", boardFile, err)
		}
		if cmd.Flags().Changed("limit") {
			req.Limit = boardLimit
		}
		if cmd.Flags().Changed("seed") {
			req.Seed = &seed
		}

		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		resp, err := a.Engine.Board(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level for diagnostics on stderr")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Random seed for reproducible simulations")

	for _, cmd := range []*cobra.Command{predictCmd, distributionCmd} {
		f := cmd.Flags()
		f.Int64VarP(&playerID, "player", "p", 0, "Player id")
		f.StringVarP(&opponent, "opponent", "o", "", "Opponent team abbreviation")
		f.StringVarP(&location, "location", "l", string(models.LocationHome), "HOME or AWAY")
		f.StringVarP(&gameDate, "date", "d", time.Now().UTC().Format(models.GameDateLayout), "Game date (YYYY-MM-DD)")
		f.Float64Var(&propLine, "line", 0, "Sportsbook points line")
		f.IntVar(&overOdds, "over", 0, "American odds for the over")
		f.IntVar(&underOdds, "under", 0, "American odds for the under")
		_ = cmd.MarkFlagRequired("player")
		_ = cmd.MarkFlagRequired("opponent")
	}
	_ = distributionCmd.MarkFlagRequired("line")

	boardCmd.Flags().StringVarP(&boardFile, "file", "f", "", "JSON file holding a board request")
	boardCmd.Flags().IntVar(&boardLimit, "limit", 0, "Maximum entries to return")
	_ = boardCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(predictCmd, distributionCmd, boardCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// setup loads configuration and builds the engine with a fresh snapshot
func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := logger.NewLogger(logLevel, cfg.App.Environment)
	appLog.SetOutput(os.Stderr)
	appLog.WithFields(logrus.Fields{
		"backend": cfg.Model.Backend,
		"source":  cfg.Features.Source,
	}).Debug("Building prediction engine")

	a, err := app.Build(ctx, cfg, appLog)
	if err != nil {
		return nil, err
	}
	if err := a.LoadSnapshot(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// predictionRequest maps flags to a request; unset optional flags stay nil
func predictionRequest(cmd *cobra.Command) models.PredictionRequest {
	req := models.PredictionRequest{
		PlayerID:   playerID,
		OpponentID: opponent,
		Location:   models.Location(strings.ToUpper(location)),
		GameDate:   gameDate,
	}
	flags := cmd.Flags()
	if flags.Changed("line") {
		req.PropLine = &propLine
	}
	if flags.Changed("over") {
		req.OverOdds = &overOdds
	}
	if flags.Changed("under") {
		req.UnderOdds = &underOdds
	}
	if flags.Changed("seed") {
		req.Seed = &seed
	}
	return req
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
