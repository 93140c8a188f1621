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

	"cropwise/config"
	"cropwise/controllers"
	"cropwise/disease"
	"cropwise/jobs"
	"cropwise/predict"
	"cropwise/realtime"
	"cropwise/services"
	"cropwise/weather"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cropwise",
	Short: "Farm management backend: soil monitoring, crop advice, yield and disease analysis",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = config.InitLogger(cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the device sweep",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "cropwise.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, sweepCmd, promoteCmd, diagnoseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB connects and migrates the relational store and publishes it on
// config.DB.
func openDB() error {
	db, err := config.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	config.DB = db
	return nil
}

func weatherProvider() weather.Provider {
	if cfg.Weather.Mode == "api" {
		return weather.NewWeatherAPI(cfg.Weather.APIURL, cfg.Weather.APIKey, cfg.HTTPTimeout)
	}
	return weather.DefaultStatic()
}

func newHandler(sweeper *jobs.Sweeper) *controllers.Handler {
	broker := realtime.NewMessageBroker(logger.Named("broker"))
	soil := realtime.NewSoilStore(config.DB, broker, logger.Named("soil"))

	var remote *predict.Remote
	if cfg.ML.BaseURL != "" {
		remote = predict.NewRemote(cfg.ML.BaseURL, cfg.HTTPTimeout)
	}

	recommender := &services.Recommender{
		Soil:    soil,
		Weather: weatherProvider(),
		Farm: services.Coordinates{
			Latitude:  cfg.Weather.Latitude,
			Longitude: cfg.Weather.Longitude,
		},
		Crops: services.CropPolicy(remote, logger),
		Log:   logger.Named("recommender"),
	}
	if remote != nil {
		recommender.Analyze = remote.AnalyzeCrop
	}

	return &controllers.Handler{
		Secret:          []byte(cfg.JWTSecret),
		TokenTTL:        cfg.TokenTTL,
		DefaultDeviceID: cfg.DefaultDeviceID,
		Soil:            soil,
		Recommender:     recommender,
		Remote:          remote,
		Heuristic:       predict.NewHeuristicYield(nil),
		Disease:         disease.NewClient(cfg.Disease.URL, cfg.HTTPTimeout),
		Sweeper:         sweeper,
		Log:             logger,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := openDB(); err != nil {
		return err
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	sweeper := jobs.NewSweeper(config.DB, nil, cfg.Devices.StaleAfter, logger.Named("sweep"))
	if err := sweeper.Start(cfg.Devices.SweepSchedule); err != nil {
		return err
	}
	defer sweeper.Stop()

	r := gin.New()
	controllers.Register(r, newHandler(sweeper), cfg.AllowOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
