package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"cropwise/config"
	"cropwise/controllers"
	"cropwise/disease"
	"cropwise/jobs"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openDB(); err != nil {
			return err
		}
		logger.Info("database migrated")
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark devices that stopped reporting as inactive and purge expired tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openDB(); err != nil {
			return err
		}
		rep, err := jobs.NewSweeper(config.DB, nil, cfg.Devices.StaleAfter, logger).RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d device(s) marked inactive, %d expired token(s) purged\n", rep.Deactivated, rep.Purged)
		return nil
	},
}

var promoteEmail string

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Give an account the admin role",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openDB(); err != nil {
			return err
		}
		n, err := controllers.SetRole(strings.ToLower(strings.TrimSpace(promoteEmail)), controllers.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to update user role: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("no account with email %s", promoteEmail)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", promoteEmail)
		return nil
	},
}

var imagePath string

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Capture a plant photo and send it to the disease detector",
	Long: `Runs the capture flow over a still image: the file is opened as a
camera stream, one frame is captured as JPEG and sent for analysis.

Example:
  cropwise diagnose --image leaf.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		capture := disease.NewCapture(
			disease.StillCamera{Path: imagePath},
			disease.NewClient(cfg.Disease.URL, cfg.HTTPTimeout),
		)
		defer capture.Stop()

		if err := capture.Start(cmd.Context()); err != nil {
			return err
		}
		if err := capture.Capture(); err != nil {
			return err
		}
		result, err := capture.Analyze(cmd.Context())
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "email of the account to promote")
	_ = promoteCmd.MarkFlagRequired("email")

	diagnoseCmd.Flags().StringVar(&imagePath, "image", "", "path to a JPEG or PNG plant photo")
	_ = diagnoseCmd.MarkFlagRequired("image")
}
